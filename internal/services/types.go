package services

import (
	"time"

	"github.com/soaringjerry/clima/internal/models"
)

// AnswerStat is one distinct answer of a question with its share of the total.
type AnswerStat struct {
	Answer     string  `json:"answer"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// QuestionStats aggregates the answers of a single question under a filter set.
type QuestionStats struct {
	Question  models.QuestionKey `json:"question"`
	Label     string             `json:"label"`
	Type      models.Kind        `json:"type"`
	Scale     models.Scale       `json:"scale,omitempty"`
	Responses []AnswerStat       `json:"responses"`
	Total     int                `json:"total"`
	Average   *float64           `json:"average,omitempty"`
}

// SectionSummary is the section-level rollup.
type SectionSummary struct {
	TotalResponses    int64    `json:"totalResponses"`
	AnsweredQuestions int      `json:"answeredQuestions"`
	AverageScore      *float64 `json:"averageScore"`
}

// SectionStatsResponse is returned by the per-section dashboard panels.
type SectionStatsResponse struct {
	Section   models.Section  `json:"section"`
	Filters   Filters         `json:"filters"`
	Questions []QuestionStats `json:"questions"`
	Summary   SectionSummary  `json:"summary"`
}

// CategoryCount is one bar of a categorical distribution.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// StatsResponse backs GET /api/stats.
type StatsResponse struct {
	TotalResponses         int64                     `json:"totalResponses"`
	SetorDistribution      []CategoryCount           `json:"setorDistribution"`
	AlojamentoDistribution []CategoryCount           `json:"alojamentoDistribution"`
	RanchoDistribution     []CategoryCount           `json:"ranchoDistribution"`
	RatingDistributions    map[string]map[string]int `json:"ratingDistributions"`
	LastUpdated            string                    `json:"lastUpdated"`
}

// Reliability is Cronbach's alpha over the Likert items of a section.
// Alpha is nil until at least two responses answered every item.
type Reliability struct {
	Alpha *float64 `json:"alpha"`
	N     int     `json:"n"`
}

// AnalyticsResponse backs GET /api/analytics.
type AnalyticsResponse struct {
	SatisfactionAverages map[string]*float64            `json:"satisfactionAverages"`
	SectionReliability   map[models.Section]Reliability `json:"sectionReliability"`
}

// CommentsResponse backs GET /api/comments.
type CommentsResponse struct {
	Filters  Filters                `json:"filters"`
	Comments []models.CommentRecord `json:"comments"`
}

// ReportInput is everything the report assembler needs. It is gathered by
// AnalyticsService.ReportInput and consumed by BuildReport without any I/O.
type ReportInput struct {
	GeneratedAt       time.Time
	TotalResponses    int64
	Areas             []AreaAverage
	SetorDistribution []CategoryCount
	Alojamento        []CategoryCount
	Rancho            []CategoryCount
}

// AreaAverage is the weighted average of one per-area satisfaction field.
type AreaAverage struct {
	Field   models.QuestionKey
	Label   string
	Average *float64
	Answers int
}
