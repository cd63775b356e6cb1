package models

import "time"

// SurveyResponse is one anonymous submission. Answers holds only the fields
// that were filled in; every other column stays NULL.
type SurveyResponse struct {
	ID        int64
	Answers   map[QuestionKey]string
	IPAddress string
	CreatedAt time.Time
}

// SurveyStats is the denormalised single-row summary.
type SurveyStats struct {
	TotalResponses int64
	LastUpdated    time.Time
}

// CommentRecord carries the sector plus the four free-text fields of a response.
type CommentRecord struct {
	ID                       int64     `json:"id"`
	Setor                    string    `json:"setor_trabalho"`
	ComentarioAmbiente       string    `json:"comentario_ambiente"`
	ComentarioRelacionamento string    `json:"comentario_relacionamento"`
	ComentarioMotivacao      string    `json:"comentario_motivacao"`
	SugestoesGerais          string    `json:"sugestoes_gerais"`
	CreatedAt                time.Time `json:"createdAt"`
}

// AnswerCount is the number of rows holding one distinct answer value.
type AnswerCount struct {
	Value string
	Count int
}
