package api

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/soaringjerry/clima/internal/models"
	"github.com/soaringjerry/clima/internal/services"
)

// MemoryStore keeps responses in process. It backs the "memory" database
// driver for demos and the handler tests; nothing survives a restart.
type MemoryStore struct {
	mu        sync.RWMutex
	responses []*models.SurveyResponse
	stats     *models.SurveyStats
	nextID    int64
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{responses: []*models.SurveyResponse{}, nextID: 1}
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) InsertResponse(_ context.Context, r *models.SurveyResponse) (int64, error) {
	cp := &models.SurveyResponse{
		IPAddress: r.IPAddress,
		CreatedAt: r.CreatedAt,
		Answers:   make(map[models.QuestionKey]string, len(r.Answers)),
	}
	for k, v := range r.Answers {
		if _, ok := models.Lookup(k.String()); !ok {
			return 0, models.ErrUnknownQuestion
		}
		if v = strings.TrimSpace(v); v != "" {
			cp.Answers[k] = v
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp.ID = s.nextID
	s.nextID++
	s.responses = append(s.responses, cp)
	s.stats = &models.SurveyStats{TotalResponses: int64(len(s.responses)), LastUpdated: cp.CreatedAt}
	r.ID = cp.ID
	return cp.ID, nil
}

func matches(r *models.SurveyResponse, preds []services.Predicate) bool {
	for _, p := range preds {
		if r.Answers[p.Column] != p.Value {
			return false
		}
	}
	return true
}

func (s *MemoryStore) CountAnswers(_ context.Context, key models.QuestionKey, preds []services.Predicate) ([]models.AnswerCount, error) {
	if _, ok := models.Lookup(key.String()); !ok {
		return nil, models.ErrUnknownQuestion
	}
	s.mu.RLock()
	counts := map[string]int{}
	for _, r := range s.responses {
		if v := r.Answers[key]; v != "" && matches(r, preds) {
			counts[v]++
		}
	}
	s.mu.RUnlock()
	out := make([]models.AnswerCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, models.AnswerCount{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Value < out[j].Value
		}
		return out[i].Count > out[j].Count
	})
	return out, nil
}

func (s *MemoryStore) CountResponses(_ context.Context, preds []services.Predicate) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, r := range s.responses {
		if matches(r, preds) {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) ListComments(_ context.Context, preds []services.Predicate, limit int) ([]models.CommentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.CommentRecord{}
	for i := len(s.responses) - 1; i >= 0 && len(out) < limit; i-- {
		r := s.responses[i]
		if !matches(r, preds) {
			continue
		}
		rec := models.CommentRecord{
			ID:                       r.ID,
			Setor:                    r.Answers[models.KeySetor],
			ComentarioAmbiente:       r.Answers[models.KeyComentarioAmbiente],
			ComentarioRelacionamento: r.Answers[models.KeyComentarioRelacionamento],
			ComentarioMotivacao:      r.Answers[models.KeyComentarioMotivacao],
			SugestoesGerais:          r.Answers[models.KeySugestoesGerais],
			CreatedAt:                r.CreatedAt,
		}
		if rec.ComentarioAmbiente+rec.ComentarioRelacionamento+rec.ComentarioMotivacao+rec.SugestoesGerais == "" {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *MemoryStore) GetStats(context.Context) (*models.SurveyStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stats == nil {
		return nil, nil
	}
	cp := *s.stats
	return &cp, nil
}

func (s *MemoryStore) ListAnswerRows(_ context.Context, keys []models.QuestionKey) ([][]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out [][]string
	for _, r := range s.responses {
		row := make([]string, 0, len(keys))
		for _, k := range keys {
			if v := r.Answers[k]; v != "" {
				row = append(row, v)
			}
		}
		if len(row) == len(keys) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListResponses(context.Context) ([]*models.SurveyResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.SurveyResponse, 0, len(s.responses))
	for _, r := range s.responses {
		cp := *r
		cp.Answers = make(map[models.QuestionKey]string, len(r.Answers))
		for k, v := range r.Answers {
			cp.Answers[k] = v
		}
		out = append(out, &cp)
	}
	return out, nil
}
