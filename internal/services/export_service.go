package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/soaringjerry/clima/internal/models"
)

type ExportStore interface {
	ListResponses(ctx context.Context) ([]*models.SurveyResponse, error)
}

const (
	ExportWide      = "wide"
	ExportLong      = "long"
	ExportQuestions = "questions"
)

type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

type ExportService struct {
	store   ExportStore
	ratings *RatingMapper
	now     func() time.Time
}

func NewExportService(store ExportStore, log *zap.Logger) *ExportService {
	return &ExportService{
		store:   store,
		ratings: NewRatingMapper(log),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *ExportService) ExportCSV(ctx context.Context, format string) (*ExportResult, error) {
	if format == "" {
		format = ExportWide
	}
	var (
		data []byte
		err  error
	)
	switch format {
	case ExportQuestions:
		data, err = ExportQuestionsCSV(allQuestions())
	case ExportWide, ExportLong:
		rs, lerr := s.store.ListResponses(ctx)
		if lerr != nil {
			return nil, NewInternalError("list responses", lerr)
		}
		if format == ExportWide {
			data, err = ExportWideCSV(rs)
		} else {
			data, err = ExportLongCSV(s.buildLongRows(rs))
		}
	default:
		return nil, NewInvalidError("unsupported format " + format)
	}
	if err != nil {
		return nil, NewInternalError("render csv", err)
	}
	day := s.now().Format("2006-01-02")
	return &ExportResult{
		Filename:    "clima-" + format + "-" + day + ".csv",
		ContentType: "text/csv; charset=utf-8",
		Data:        data,
	}, nil
}

func (s *ExportService) buildLongRows(rs []*models.SurveyResponse) []LongRow {
	keys := models.Keys()
	rows := make([]LongRow, 0, len(rs)*8)
	for _, r := range rs {
		for _, k := range keys {
			v, ok := r.Answers[k]
			if !ok || v == "" {
				continue
			}
			row := LongRow{ResponseID: r.ID, Field: k, Value: v, CreatedAt: r.CreatedAt}
			if q, _ := models.Lookup(k.String()); q.Kind == models.KindLikert {
				score := s.ratings.Score(k, v)
				row.Score = &score
			}
			rows = append(rows, row)
		}
	}
	return rows
}

func allQuestions() []models.Question {
	out := make([]models.Question, 0, len(models.Keys()))
	for _, sec := range models.Sections {
		out = append(out, models.SectionQuestions(sec)...)
	}
	return out
}
