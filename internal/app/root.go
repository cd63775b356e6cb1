// Package app contains the cobra command tree of the clima binary.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/soaringjerry/clima/internal/api"
	"github.com/soaringjerry/clima/internal/config"
	"github.com/soaringjerry/clima/internal/db"
	"github.com/soaringjerry/clima/internal/logging"
)

var (
	appVersion = "dev"
	buildTime  = ""
)

// SetVersion is called from main with ldflags values.
func SetVersion(version, built string) {
	appVersion = version
	buildTime = built
	rootCmd.Version = version
}

var (
	flagConfig  string
	flagEnvFile string
	flagNoColor bool
)

var rootCmd = &cobra.Command{
	Use:   "clima",
	Short: "Anonymous organizational climate survey service",
	Long: `clima collects anonymous climate survey submissions and serves the
aggregated statistics, comments and reports used by the dashboard.

Run 'clima' with no arguments to start the HTTP server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ./clima.yaml or /etc/clima/clima.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", "", "dotenv file loaded before the environment (default: .env)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
}

// environment is what every command needs after configuration is loaded.
type environment struct {
	cfg *config.Config
	log *zap.Logger
}

func loadEnvironment() (*environment, error) {
	cfg, err := config.Load(flagConfig, flagEnvFile)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	return &environment{cfg: cfg, log: log}, nil
}

// openStore connects to the configured database and applies migrations.
// The memory driver keeps everything in process.
func (e *environment) openStore(ctx context.Context) (api.Store, func() error, error) {
	if e.cfg.Database.Driver == "memory" {
		e.log.Warn("using in-memory store, responses are lost on restart")
		return api.NewMemoryStore(), func() error { return nil }, nil
	}
	dialect, err := db.ParseDialect(e.cfg.Database.Driver)
	if err != nil {
		return nil, nil, err
	}
	conn, err := db.Open(ctx, dialect, e.cfg.Database.DSN, e.cfg.Database.MaxOpenConns)
	if err != nil {
		return nil, nil, err
	}
	if err := db.RunMigrations(ctx, conn, dialect, e.cfg.Database.MigrationsDir, e.log.Named("migrate")); err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	store, err := db.NewStore(conn, dialect)
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	total, err := store.RecountStats(ctx)
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	e.log.Info("database ready", zap.String("driver", string(dialect)), zap.Int64("responses", total))
	return store, store.Close, nil
}
