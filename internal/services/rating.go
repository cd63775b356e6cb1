package services

import (
	"strings"

	"go.uber.org/zap"

	"github.com/soaringjerry/clima/internal/models"
)

// NeutralRating is assigned to labels outside both label families.
const NeutralRating = 3

// ratingLabels covers the 5-point satisfaction wording and the 4-point
// agreement wording. The agreement family has no midpoint.
var ratingLabels = map[string]int{
	"muito satisfeito":    5,
	"satisfeito":          4,
	"neutro":              3,
	"insatisfeito":        2,
	"muito insatisfeito":  1,
	"concordo totalmente": 5,
	"concordo":            4,
	"discordo":            2,
	"discordo totalmente": 1,
}

// ScaleLabels returns the labels of a Likert family from best to worst.
func ScaleLabels(scale models.Scale) []string {
	switch scale {
	case models.ScaleSatisfaction:
		return []string{"Muito satisfeito", "Satisfeito", "Neutro", "Insatisfeito", "Muito insatisfeito"}
	case models.ScaleAgreement:
		return []string{"Concordo totalmente", "Concordo", "Discordo", "Discordo totalmente"}
	}
	return nil
}

// RatingToNumber maps a rating label onto the 1..5 ordinal. Unknown labels
// yield NeutralRating and false.
func RatingToNumber(label string) (int, bool) {
	if v, ok := ratingLabels[strings.ToLower(strings.TrimSpace(label))]; ok {
		return v, true
	}
	return NeutralRating, false
}

// RatingMapper converts labels and reports the ones that fell back to neutral.
type RatingMapper struct {
	log *zap.Logger
}

func NewRatingMapper(log *zap.Logger) *RatingMapper {
	if log == nil {
		log = zap.NewNop()
	}
	return &RatingMapper{log: log}
}

// Score returns the ordinal for label, logging unrecognized labels.
func (m *RatingMapper) Score(field models.QuestionKey, label string) int {
	v, ok := RatingToNumber(label)
	if !ok {
		m.log.Warn("unrecognized rating label, using neutral value",
			zap.String("field", field.String()),
			zap.String("label", label),
			zap.Int("value", NeutralRating))
	}
	return v
}

// WeightedAverage is the count-weighted mean of the mapped ordinals. It
// returns nil when there is nothing to average.
func (m *RatingMapper) WeightedAverage(field models.QuestionKey, counts []models.AnswerCount) *float64 {
	var sum, total float64
	for _, c := range counts {
		if c.Count <= 0 {
			continue
		}
		sum += float64(m.Score(field, c.Value) * c.Count)
		total += float64(c.Count)
	}
	if total == 0 {
		return nil
	}
	avg := sum / total
	return &avg
}
