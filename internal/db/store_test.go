package db

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/soaringjerry/clima/internal/models"
	"github.com/soaringjerry/clima/internal/services"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	conn, err := Open(ctx, DialectSQLite, filepath.Join(t.TempDir(), "clima.db"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, RunMigrations(ctx, conn, DialectSQLite, "", zaptest.NewLogger(t)))
	st, err := NewStore(conn, DialectSQLite)
	require.NoError(t, err)
	return st
}

func insert(t *testing.T, st *Store, at time.Time, answers map[models.QuestionKey]string) int64 {
	t.Helper()
	id, err := st.InsertResponse(context.Background(), &models.SurveyResponse{Answers: answers, CreatedAt: at, IPAddress: "127.0.0.1"})
	require.NoError(t, err)
	return id
}

func TestSchemaMatchesTaxonomy(t *testing.T) {
	st := newTestStore(t)
	rows, err := st.DB().Query("SELECT name FROM pragma_table_info('survey_responses')")
	require.NoError(t, err)
	defer rows.Close()
	cols := map[string]bool{}
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		cols[name] = true
	}
	require.NoError(t, rows.Err())
	for _, k := range models.Keys() {
		assert.True(t, cols[k.String()], "missing column %s", k)
	}
	for _, extra := range []string{"id", "ip_address", "created_at"} {
		assert.True(t, cols[extra], "missing column %s", extra)
	}
	assert.Len(t, cols, len(models.Keys())+3)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, RunMigrations(context.Background(), st.DB(), DialectSQLite, "", nil))
}

func TestMigrationsDirUsesDialectSubdir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sqlite"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "postgres"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sqlite", "0001_marker.sql"),
		[]byte("CREATE TABLE IF NOT EXISTS migration_marker (id INTEGER PRIMARY KEY);"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "postgres", "0001_marker.sql"),
		[]byte("CREATE EXTENSION IF NOT EXISTS pgcrypto;"), 0o644))

	conn, err := Open(context.Background(), DialectSQLite, filepath.Join(t.TempDir(), "m.db"), 1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, RunMigrations(context.Background(), conn, DialectSQLite, dir, nil))

	var n int
	require.NoError(t, conn.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE name = 'migration_marker'").Scan(&n))
	assert.Equal(t, 1, n)

	// no subdirectory for the dialect: embedded files apply
	conn2, err := Open(context.Background(), DialectSQLite, filepath.Join(t.TempDir(), "e.db"), 1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn2.Close() })
	require.NoError(t, RunMigrations(context.Background(), conn2, DialectSQLite, t.TempDir(), nil))
	require.NoError(t, conn2.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE name = 'survey_responses'").Scan(&n))
	assert.Equal(t, 1, n)
}

func TestInsertUpdatesStats(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	stats, err := st.GetStats(ctx)
	require.NoError(t, err)
	assert.Nil(t, stats)

	t0 := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	id1 := insert(t, st, t0, map[models.QuestionKey]string{models.KeySetor: "PAPEM-10"})
	id2 := insert(t, st, t0.Add(time.Minute), map[models.QuestionKey]string{models.KeySetor: "PAPEM-20"})
	assert.Greater(t, id2, id1)

	stats, err = st.GetStats(ctx)
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, int64(2), stats.TotalResponses)
	assert.True(t, stats.LastUpdated.Equal(t0.Add(time.Minute)))

	// submissions increment, a recount corrects a drifted row
	_, err = st.DB().Exec("UPDATE survey_stats SET total_responses = 99 WHERE id = 1")
	require.NoError(t, err)
	insert(t, st, t0.Add(2*time.Minute), map[models.QuestionKey]string{models.KeySetor: "PAPEM-10"})
	stats, err = st.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(100), stats.TotalResponses)

	total, err := st.RecountStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	stats, err = st.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalResponses)
	assert.True(t, stats.LastUpdated.Equal(t0.Add(2*time.Minute)))

	var rowsInStats int
	require.NoError(t, st.DB().QueryRow("SELECT COUNT(*) FROM survey_stats").Scan(&rowsInStats))
	assert.Equal(t, 1, rowsInStats)
}

func TestRecountStatsSeedsMissingRow(t *testing.T) {
	st := newTestStore(t)
	total, err := st.RecountStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestStatsRowRejectsSecondID(t *testing.T) {
	st := newTestStore(t)
	_, err := st.DB().Exec("INSERT INTO survey_stats (id, total_responses, last_updated) VALUES (2, 0, CURRENT_TIMESTAMP)")
	assert.Error(t, err)
}

func TestConcurrentInsertsKeepCount(t *testing.T) {
	st := newTestStore(t)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := st.InsertResponse(context.Background(), &models.SurveyResponse{
				Answers:   map[models.QuestionKey]string{"vinculo": "Praça"},
				CreatedAt: time.Now().UTC(),
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	stats, err := st.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(10), stats.TotalResponses)
}

func TestCountAnswersWithFilters(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	t0 := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	insert(t, st, t0, map[models.QuestionKey]string{models.KeySetor: "PAPEM-10", "materiais_fornecidos": "Concordo", models.KeyRancho: "Rancho Central"})
	insert(t, st, t0, map[models.QuestionKey]string{models.KeySetor: "PAPEM-10", "materiais_fornecidos": "Concordo"})
	insert(t, st, t0, map[models.QuestionKey]string{models.KeySetor: "PAPEM-20", "materiais_fornecidos": "Discordo"})
	insert(t, st, t0, map[models.QuestionKey]string{models.KeySetor: "PAPEM-20", "materiais_fornecidos": "   "})

	all, err := st.CountAnswers(ctx, "materiais_fornecidos", nil)
	require.NoError(t, err)
	assert.Equal(t, []models.AnswerCount{{Value: "Concordo", Count: 2}, {Value: "Discordo", Count: 1}}, all)

	preds := services.Filters{services.FilterSetor: "PAPEM-20"}.Predicates()
	filtered, err := st.CountAnswers(ctx, "materiais_fornecidos", preds)
	require.NoError(t, err)
	assert.Equal(t, []models.AnswerCount{{Value: "Discordo", Count: 1}}, filtered)

	n, err := st.CountResponses(ctx, preds)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	both := services.Filters{services.FilterSetor: "PAPEM-10", services.FilterRancho: "Rancho Central"}.Predicates()
	n, err = st.CountResponses(ctx, both)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	none, err := st.CountAnswers(ctx, "materiais_fornecidos", services.Filters{services.FilterSetor: "PAPEM-99"}.Predicates())
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	_, err = st.CountAnswers(ctx, "salario; DROP TABLE survey_responses", nil)
	assert.ErrorIs(t, err, models.ErrUnknownQuestion)
}

func TestListCommentsNewestFirst(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	t0 := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	insert(t, st, t0, map[models.QuestionKey]string{models.KeySetor: "PAPEM-10", models.KeyComentarioAmbiente: "Falta ar-condicionado"})
	insert(t, st, t0.Add(time.Hour), map[models.QuestionKey]string{models.KeySetor: "PAPEM-20", models.KeySugestoesGerais: "Mais cursos"})
	insert(t, st, t0.Add(2*time.Hour), map[models.QuestionKey]string{models.KeySetor: "PAPEM-20", models.KeyComentarioMotivacao: "  "})

	got, err := st.ListComments(ctx, nil, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Mais cursos", got[0].SugestoesGerais)
	assert.Equal(t, "PAPEM-20", got[0].Setor)
	assert.Equal(t, "Falta ar-condicionado", got[1].ComentarioAmbiente)
	assert.True(t, got[1].CreatedAt.Equal(t0))

	got, err = st.ListComments(ctx, services.Filters{services.FilterSetor: "PAPEM-10"}.Predicates(), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = st.ListComments(ctx, nil, 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestListAnswerRowsAndResponses(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	t0 := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	insert(t, st, t0, map[models.QuestionKey]string{"respeito_mutuo": "Concordo", "trabalho_equipe": "Concordo totalmente"})
	insert(t, st, t0, map[models.QuestionKey]string{"respeito_mutuo": "Discordo"})

	rows, err := st.ListAnswerRows(ctx, []models.QuestionKey{"respeito_mutuo", "trabalho_equipe"})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Concordo", "Concordo totalmente"}}, rows)

	all, err := st.ListResponses(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "127.0.0.1", all[0].IPAddress)
	assert.Equal(t, map[models.QuestionKey]string{"respeito_mutuo": "Discordo"}, all[1].Answers)
	assert.True(t, all[0].CreatedAt.Equal(t0))
}

func TestParseDialectAndRebind(t *testing.T) {
	d, err := ParseDialect("postgres")
	require.NoError(t, err)
	assert.Equal(t, DialectPostgres, d)
	d, err = ParseDialect("")
	require.NoError(t, err)
	assert.Equal(t, DialectSQLite, d)
	_, err = ParseDialect("mysql")
	assert.Error(t, err)

	assert.Equal(t, "a = $1 AND b = $2 LIMIT $3", DialectPostgres.rebind("a = ? AND b = ? LIMIT ?"))
	assert.Equal(t, "a = ?", DialectSQLite.rebind("a = ?"))
}
