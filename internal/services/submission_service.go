package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/soaringjerry/clima/internal/models"
)

// SubmissionStore persists a response and refreshes the stats row.
type SubmissionStore interface {
	InsertResponse(ctx context.Context, r *models.SurveyResponse) (int64, error)
}

// SubmissionRequest is the wizard payload after JSON decoding.
type SubmissionRequest struct {
	Answers   map[string]string
	IPAddress string
}

// SubmissionResult identifies the stored row.
type SubmissionResult struct {
	ID        int64
	CreatedAt time.Time
}

// ErrEmptySubmission is returned when the payload carries no answer at all.
var ErrEmptySubmission = errors.New("empty submission")

type SubmissionService struct {
	store SubmissionStore
	log   *zap.Logger
	now   func() time.Time
}

func NewSubmissionService(store SubmissionStore, log *zap.Logger) *SubmissionService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SubmissionService{
		store: store,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Submit validates field names against the taxonomy and stores one row.
// Required fields are a wizard concern; partially filled payloads are accepted.
func (s *SubmissionService) Submit(ctx context.Context, req SubmissionRequest) (*SubmissionResult, error) {
	if s.store == nil {
		return nil, errors.New("submission service store is nil")
	}
	answers, err := s.normalizeAnswers(req.Answers)
	if err != nil {
		return nil, err
	}
	resp := &models.SurveyResponse{
		Answers:   answers,
		IPAddress: strings.TrimSpace(req.IPAddress),
		CreatedAt: s.now(),
	}
	id, err := s.store.InsertResponse(ctx, resp)
	if err != nil {
		return nil, NewInternalError("save response", err)
	}
	s.log.Info("survey response stored", zap.Int64("id", id), zap.Int("fields", len(answers)))
	return &SubmissionResult{ID: id, CreatedAt: resp.CreatedAt}, nil
}

func (s *SubmissionService) normalizeAnswers(raw map[string]string) (map[models.QuestionKey]string, error) {
	if len(raw) == 0 {
		return nil, &ServiceError{Code: ErrorInvalid, Message: "no answers submitted", Err: ErrEmptySubmission}
	}
	out := make(map[models.QuestionKey]string, len(raw))
	for field, value := range raw {
		key, err := models.ParseKey(field)
		if err != nil {
			canonical, legacy := models.CanonicalKey(field)
			if !legacy {
				return nil, &ServiceError{Code: ErrorInvalid, Message: "unknown field " + field, Err: err}
			}
			s.log.Warn("legacy field name in submission",
				zap.String("field", field),
				zap.String("canonical", canonical.String()))
			key = canonical
			// a non-blank canonical spelling wins when both arrive
			if strings.TrimSpace(raw[canonical.String()]) != "" {
				continue
			}
		}
		v := strings.TrimSpace(value)
		if v == "" {
			continue
		}
		out[key] = v
	}
	return out, nil
}
