package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/soaringjerry/clima/internal/models"
	"github.com/soaringjerry/clima/internal/services"
)

// Store runs the survey queries against SQLite or Postgres. Column names
// come only from the taxonomy; values are always bound.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

var (
	_ services.AnalyticsStore  = (*Store)(nil)
	_ services.SubmissionStore = (*Store)(nil)
	_ services.ExportStore     = (*Store)(nil)
)

func NewStore(db *sql.DB, d Dialect) (*Store, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	return &Store{db: db, dialect: d}, nil
}

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Close() error { return s.db.Close() }

// column validates a key before it is interpolated into SQL.
func column(key models.QuestionKey) (string, error) {
	if _, ok := models.Lookup(key.String()); !ok {
		return "", fmt.Errorf("%w: %q", models.ErrUnknownQuestion, key)
	}
	return key.String(), nil
}

// where renders the filter predicates plus any extra conditions.
func where(preds []services.Predicate, extra ...string) (string, []any, error) {
	conds := append([]string{}, extra...)
	args := make([]any, 0, len(preds))
	for _, p := range preds {
		col, err := column(p.Column)
		if err != nil {
			return "", nil, err
		}
		conds = append(conds, col+" = ?")
		args = append(args, p.Value)
	}
	if len(conds) == 0 {
		return "", args, nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func answered(col string) string {
	return col + " IS NOT NULL AND TRIM(" + col + ") <> ''"
}

func (s *Store) CountAnswers(ctx context.Context, key models.QuestionKey, preds []services.Predicate) ([]models.AnswerCount, error) {
	col, err := column(key)
	if err != nil {
		return nil, err
	}
	cond, args, err := where(preds, answered(col))
	if err != nil {
		return nil, err
	}
	q := "SELECT " + col + ", COUNT(*) AS n FROM survey_responses" + cond +
		" GROUP BY " + col + " ORDER BY n DESC, " + col
	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("count %s: %w", col, err)
	}
	defer rows.Close()
	out := []models.AnswerCount{}
	for rows.Next() {
		var c models.AnswerCount
		if err := rows.Scan(&c.Value, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) CountResponses(ctx context.Context, preds []services.Predicate) (int64, error) {
	cond, args, err := where(preds)
	if err != nil {
		return 0, err
	}
	var n int64
	err = s.db.QueryRowContext(ctx, s.dialect.rebind("SELECT COUNT(*) FROM survey_responses"+cond), args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count responses: %w", err)
	}
	return n, nil
}

// ListComments returns the newest responses with at least one non-blank
// free-text field.
func (s *Store) ListComments(ctx context.Context, preds []services.Predicate, limit int) ([]models.CommentRecord, error) {
	hasText := make([]string, 0, len(models.CommentFields))
	for _, k := range models.CommentFields {
		hasText = append(hasText, "TRIM(COALESCE("+k.String()+", '')) <> ''")
	}
	cond, args, err := where(preds, "("+strings.Join(hasText, " OR ")+")")
	if err != nil {
		return nil, err
	}
	q := "SELECT id, setor_trabalho, comentario_ambiente, comentario_relacionamento, comentario_motivacao, sugestoes_gerais, created_at" +
		" FROM survey_responses" + cond + " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)
	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()
	out := []models.CommentRecord{}
	for rows.Next() {
		var (
			rec                    models.CommentRecord
			setor, amb, rel, motiv sql.NullString
			sug                    sql.NullString
		)
		if err := rows.Scan(&rec.ID, &setor, &amb, &rel, &motiv, &sug, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Setor = setor.String
		rec.ComentarioAmbiente = amb.String
		rec.ComentarioRelacionamento = rel.String
		rec.ComentarioMotivacao = motiv.String
		rec.SugestoesGerais = sug.String
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GetStats returns nil when the stats row has not been written yet.
func (s *Store) GetStats(ctx context.Context) (*models.SurveyStats, error) {
	var st models.SurveyStats
	err := s.db.QueryRowContext(ctx, "SELECT total_responses, last_updated FROM survey_stats WHERE id = 1").
		Scan(&st.TotalResponses, &st.LastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}
	return &st, nil
}

// ListAnswerRows returns the values of keys for every response that answered
// all of them.
func (s *Store) ListAnswerRows(ctx context.Context, keys []models.QuestionKey) ([][]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	cols := make([]string, 0, len(keys))
	conds := make([]string, 0, len(keys))
	for _, k := range keys {
		col, err := column(k)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
		conds = append(conds, answered(col))
	}
	q := "SELECT " + strings.Join(cols, ", ") + " FROM survey_responses WHERE " + strings.Join(conds, " AND ")
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list answer rows: %w", err)
	}
	defer rows.Close()
	var out [][]string
	for rows.Next() {
		vals := make([]string, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		out = append(out, vals)
	}
	return out, rows.Err()
}

// The first write seeds the row with a full count. Later writes increment
// under the row lock taken by ON CONFLICT, so concurrent transactions never
// overwrite each other's count.
const upsertStats = "INSERT INTO survey_stats (id, total_responses, last_updated)" +
	" VALUES (1, (SELECT COUNT(*) FROM survey_responses), ?)" +
	" ON CONFLICT (id) DO UPDATE SET total_responses = survey_stats.total_responses + 1, last_updated = excluded.last_updated"

const recountStats = "INSERT INTO survey_stats (id, total_responses, last_updated)" +
	" VALUES (1, (SELECT COUNT(*) FROM survey_responses), ?)" +
	" ON CONFLICT (id) DO UPDATE SET total_responses = excluded.total_responses"

// RecountStats replaces the stored total with a live count. It runs at
// startup so a row that drifted (manual edits, restored backups) is corrected.
func (s *Store) RecountStats(ctx context.Context) (int64, error) {
	if _, err := s.db.ExecContext(ctx, s.dialect.rebind(recountStats), time.Now().UTC()); err != nil {
		return 0, fmt.Errorf("recount stats: %w", err)
	}
	st, err := s.GetStats(ctx)
	if err != nil {
		return 0, err
	}
	return st.TotalResponses, nil
}

// InsertResponse stores one submission and bumps the stats row in the same
// transaction.
func (s *Store) InsertResponse(ctx context.Context, r *models.SurveyResponse) (int64, error) {
	cols := []string{"ip_address", "created_at"}
	args := []any{nullString(r.IPAddress), r.CreatedAt}
	for _, k := range models.Keys() {
		v, ok := r.Answers[k]
		if !ok {
			continue
		}
		cols = append(cols, k.String())
		args = append(args, nullString(v))
	}
	for k := range r.Answers {
		if _, ok := models.Lookup(k.String()); !ok {
			return 0, fmt.Errorf("%w: %q", models.ErrUnknownQuestion, k)
		}
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	insert := "INSERT INTO survey_responses (" + strings.Join(cols, ", ") + ") VALUES (" + marks + ") RETURNING id"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var id int64
	if err := tx.QueryRowContext(ctx, s.dialect.rebind(insert), args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert response: %w", err)
	}
	if _, err := tx.ExecContext(ctx, s.dialect.rebind(upsertStats), r.CreatedAt); err != nil {
		return 0, fmt.Errorf("update stats: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	committed = true
	r.ID = id
	return id, nil
}

// ListResponses returns every stored response in insertion order.
func (s *Store) ListResponses(ctx context.Context) ([]*models.SurveyResponse, error) {
	keys := models.Keys()
	cols := make([]string, 0, len(keys))
	for _, k := range keys {
		cols = append(cols, k.String())
	}
	q := "SELECT id, ip_address, created_at, " + strings.Join(cols, ", ") + " FROM survey_responses ORDER BY id"
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	defer rows.Close()
	out := []*models.SurveyResponse{}
	for rows.Next() {
		var (
			r  = &models.SurveyResponse{Answers: map[models.QuestionKey]string{}}
			ip sql.NullString
		)
		vals := make([]sql.NullString, len(keys))
		dest := make([]any, 0, 3+len(keys))
		dest = append(dest, &r.ID, &ip, &r.CreatedAt)
		for i := range vals {
			dest = append(dest, &vals[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		r.IPAddress = ip.String
		for i, k := range keys {
			if vals[i].Valid {
				r.Answers[k] = vals[i].String
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
