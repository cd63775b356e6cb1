package services

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/soaringjerry/clima/internal/models"
)

// AnalyticsStore abstracts the aggregate queries run against survey_responses.
type AnalyticsStore interface {
	CountAnswers(ctx context.Context, key models.QuestionKey, preds []Predicate) ([]models.AnswerCount, error)
	CountResponses(ctx context.Context, preds []Predicate) (int64, error)
	ListComments(ctx context.Context, preds []Predicate, limit int) ([]models.CommentRecord, error)
	GetStats(ctx context.Context) (*models.SurveyStats, error)
	ListAnswerRows(ctx context.Context, keys []models.QuestionKey) ([][]string, error)
}

const (
	defaultQueryParallelism = 8
	defaultCommentLimit     = 100
	maxCommentLimit         = 500
)

type AnalyticsService struct {
	store       AnalyticsStore
	ratings     *RatingMapper
	log         *zap.Logger
	parallelism int
	now         func() time.Time
}

func NewAnalyticsService(store AnalyticsStore, log *zap.Logger) *AnalyticsService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AnalyticsService{
		store:       store,
		ratings:     NewRatingMapper(log),
		log:         log,
		parallelism: defaultQueryParallelism,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// countAll runs one grouped count per key concurrently. Any failure cancels
// the remaining queries and fails the whole call.
func (s *AnalyticsService) countAll(ctx context.Context, keys []models.QuestionKey, preds []Predicate) ([][]models.AnswerCount, error) {
	out := make([][]models.AnswerCount, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)
	for i, key := range keys {
		g.Go(func() error {
			counts, err := s.store.CountAnswers(gctx, key, preds)
			if err != nil {
				return err
			}
			out[i] = counts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, NewInternalError("aggregate answers", err)
	}
	return out, nil
}

// SectionStats aggregates every non-text question of a section.
func (s *AnalyticsService) SectionStats(ctx context.Context, sec models.Section, filters Filters) (*SectionStatsResponse, error) {
	questions := make([]models.Question, 0)
	for _, q := range models.SectionQuestions(sec) {
		if q.Kind != models.KindText {
			questions = append(questions, q)
		}
	}
	if len(questions) == 0 {
		return nil, NewNotFoundError("section has no aggregatable questions")
	}
	keys := make([]models.QuestionKey, len(questions))
	for i, q := range questions {
		keys[i] = q.Key
	}
	preds := filters.Predicates()

	var (
		counts [][]models.AnswerCount
		total  int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = s.countAll(gctx, keys, preds)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.store.CountResponses(gctx, preds)
		if err != nil {
			return NewInternalError("count responses", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp := &SectionStatsResponse{
		Section:   sec,
		Filters:   filters,
		Questions: make([]QuestionStats, 0, len(questions)),
		Summary:   SectionSummary{TotalResponses: total},
	}
	var avgSum float64
	var avgN int
	for i, q := range questions {
		qs := buildQuestionStats(q, counts[i])
		if q.Kind == models.KindLikert {
			qs.Average = s.ratings.WeightedAverage(q.Key, counts[i])
			if qs.Average != nil {
				avgSum += *qs.Average
				avgN++
			}
		}
		if qs.Total > 0 {
			resp.Summary.AnsweredQuestions++
		}
		resp.Questions = append(resp.Questions, qs)
	}
	if avgN > 0 {
		v := avgSum / float64(avgN)
		resp.Summary.AverageScore = &v
	}
	return resp, nil
}

func buildQuestionStats(q models.Question, counts []models.AnswerCount) QuestionStats {
	qs := QuestionStats{
		Question:  q.Key,
		Label:     q.Label,
		Type:      q.Kind,
		Scale:     q.Scale,
		Responses: make([]AnswerStat, 0, len(counts)),
	}
	for _, c := range counts {
		qs.Total += c.Count
	}
	for _, c := range counts {
		qs.Responses = append(qs.Responses, AnswerStat{
			Answer:     c.Value,
			Count:      c.Count,
			Percentage: percentOf(c.Count, qs.Total),
		})
	}
	return qs
}

// percentOf returns part/total as a percentage rounded to one decimal.
func percentOf(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(part)*1000/float64(total)) / 10
}

// Comments lists responses that carry at least one non-blank free-text field.
func (s *AnalyticsService) Comments(ctx context.Context, filters Filters, limit int) (*CommentsResponse, error) {
	if limit <= 0 {
		limit = defaultCommentLimit
	}
	if limit > maxCommentLimit {
		limit = maxCommentLimit
	}
	rows, err := s.store.ListComments(ctx, filters.Predicates(), limit)
	if err != nil {
		return nil, NewInternalError("list comments", err)
	}
	if rows == nil {
		rows = []models.CommentRecord{}
	}
	return &CommentsResponse{Filters: filters, Comments: rows}, nil
}

// Stats builds the overview panel: totals, location distributions and the
// rating histogram of every area field.
func (s *AnalyticsService) Stats(ctx context.Context) (*StatsResponse, error) {
	distKeys := []models.QuestionKey{models.KeySetor, models.KeyAlojamento, models.KeyRancho}
	keys := append(append([]models.QuestionKey{}, distKeys...), models.AreaFields...)

	var (
		counts [][]models.AnswerCount
		stats  *models.SurveyStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = s.countAll(gctx, keys, nil)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = s.totals(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &StatsResponse{
		TotalResponses:         stats.TotalResponses,
		SetorDistribution:      toCategoryCounts(counts[0]),
		AlojamentoDistribution: toCategoryCounts(counts[1]),
		RanchoDistribution:     toCategoryCounts(counts[2]),
		RatingDistributions:    make(map[string]map[string]int, len(models.AreaFields)),
		LastUpdated:            stats.LastUpdated.UTC().Format(time.RFC3339),
	}
	for i, key := range models.AreaFields {
		hist := map[string]int{}
		for _, c := range counts[len(distKeys)+i] {
			hist[c.Value] = c.Count
		}
		out.RatingDistributions[key.String()] = hist
	}
	return out, nil
}

// totals prefers the denormalised stats row and falls back to a live count
// when it has not been written yet.
func (s *AnalyticsService) totals(ctx context.Context) (*models.SurveyStats, error) {
	st, err := s.store.GetStats(ctx)
	if err != nil {
		return nil, NewInternalError("load stats", err)
	}
	if st != nil {
		return st, nil
	}
	n, err := s.store.CountResponses(ctx, nil)
	if err != nil {
		return nil, NewInternalError("count responses", err)
	}
	return &models.SurveyStats{TotalResponses: n, LastUpdated: s.now()}, nil
}

func toCategoryCounts(counts []models.AnswerCount) []CategoryCount {
	out := make([]CategoryCount, 0, len(counts))
	for _, c := range counts {
		out = append(out, CategoryCount{Category: c.Value, Count: c.Count})
	}
	return out
}

// Analytics returns the weighted average of every area field and the
// internal consistency of each Likert section.
func (s *AnalyticsService) Analytics(ctx context.Context) (*AnalyticsResponse, error) {
	counts, err := s.countAll(ctx, models.AreaFields, nil)
	if err != nil {
		return nil, err
	}
	out := &AnalyticsResponse{
		SatisfactionAverages: make(map[string]*float64, len(models.AreaFields)),
		SectionReliability:   map[models.Section]Reliability{},
	}
	for i, key := range models.AreaFields {
		out.SatisfactionAverages[key.String()] = s.ratings.WeightedAverage(key, counts[i])
	}
	for _, sec := range models.Sections {
		keys := models.SectionKeys(sec, models.KindLikert)
		if len(keys) < 2 {
			continue
		}
		rel, err := s.reliability(ctx, keys)
		if err != nil {
			return nil, err
		}
		out.SectionReliability[sec] = rel
	}
	return out, nil
}

func (s *AnalyticsService) reliability(ctx context.Context, keys []models.QuestionKey) (Reliability, error) {
	rows, err := s.store.ListAnswerRows(ctx, keys)
	if err != nil {
		return Reliability{}, NewInternalError("load answer rows", err)
	}
	matrix := make([][]float64, 0, len(rows))
	for _, row := range rows {
		if len(row) != len(keys) {
			continue
		}
		vals := make([]float64, len(row))
		for j, label := range row {
			vals[j] = float64(s.ratings.Score(keys[j], label))
		}
		matrix = append(matrix, vals)
	}
	rel := Reliability{N: len(matrix)}
	if rel.N >= 2 {
		alpha := CronbachAlpha(matrix)
		rel.Alpha = &alpha
	}
	return rel, nil
}

// ReportInput gathers the aggregates consumed by BuildReport.
func (s *AnalyticsService) ReportInput(ctx context.Context) (*ReportInput, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return nil, err
	}
	in := &ReportInput{
		GeneratedAt:       s.now(),
		TotalResponses:    stats.TotalResponses,
		SetorDistribution: stats.SetorDistribution,
		Alojamento:        stats.AlojamentoDistribution,
		Rancho:            stats.RanchoDistribution,
	}
	for _, key := range models.AreaFields {
		hist := stats.RatingDistributions[key.String()]
		counts := make([]models.AnswerCount, 0, len(hist))
		answers := 0
		for label, n := range hist {
			counts = append(counts, models.AnswerCount{Value: label, Count: n})
			answers += n
		}
		q, _ := models.Lookup(key.String())
		in.Areas = append(in.Areas, AreaAverage{
			Field:   key,
			Label:   q.Label,
			Average: s.ratings.WeightedAverage(key, counts),
			Answers: answers,
		})
	}
	return in, nil
}
