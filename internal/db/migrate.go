package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var embeddedMigrations embed.FS

type migrationFile struct {
	name string
	data []byte
}

func (d Dialect) migrationsSubdir() string {
	if d == DialectPostgres {
		return "postgres"
	}
	return "sqlite"
}

// RunMigrations executes migrations from the dialect's subdirectory of
// migrationsDir (sqlite/ or postgres/), falling back to the embedded files. Every statement is idempotent, so the
// whole set runs on each start.
func RunMigrations(ctx context.Context, db *sql.DB, d Dialect, migrationsDir string, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	files, source, err := loadMigrations(d, migrationsDir)
	if err != nil {
		return err
	}
	for _, mf := range files {
		if len(mf.data) == 0 {
			continue
		}
		if _, err := db.ExecContext(ctx, string(mf.data)); err != nil {
			return fmt.Errorf("exec migration %s: %w", mf.name, err)
		}
		log.Debug("migration applied", zap.String("name", mf.name), zap.String("source", source))
	}
	log.Info("migrations complete", zap.Int("files", len(files)), zap.String("dialect", string(d)))
	return nil
}

func loadMigrations(d Dialect, dir string) ([]migrationFile, string, error) {
	if dir != "" {
		files, err := readMigrationDir(os.DirFS(dir), d.migrationsSubdir())
		if err == nil {
			return files, filepath.Join(dir, d.migrationsSubdir()), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, "", fmt.Errorf("read migrations: %w", err)
		}
	}
	files, err := readMigrationDir(embeddedMigrations, path.Join("migrations", d.migrationsSubdir()))
	if err != nil {
		return nil, "", fmt.Errorf("read embedded migrations: %w", err)
	}
	return files, "embedded", nil
}

func readMigrationDir(fsys fs.FS, dir string) ([]migrationFile, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	var files []migrationFile
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".sql" {
			continue
		}
		content, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		files = append(files, migrationFile{name: entry.Name(), data: content})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].name < files[j].name })
	return files, nil
}
