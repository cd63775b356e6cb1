package services

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"time"

	"github.com/soaringjerry/clima/internal/models"
)

// utf8BOM lets spreadsheet tools detect the encoding of the accented labels.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type LongRow struct {
	ResponseID int64
	Field      models.QuestionKey
	Value      string
	Score      *int
	CreatedAt  time.Time
}

func newCSVWriter() (*bytes.Buffer, *csv.Writer) {
	buf := &bytes.Buffer{}
	buf.Write(utf8BOM)
	return buf, csv.NewWriter(buf)
}

// ExportWideCSV renders one row per response and one column per taxonomy key.
// Unanswered questions are empty cells. The client address is never exported.
func ExportWideCSV(responses []*models.SurveyResponse) ([]byte, error) {
	keys := models.Keys()
	buf, w := newCSVWriter()
	header := make([]string, 0, 2+len(keys))
	header = append(header, "id", "created_at")
	for _, k := range keys {
		header = append(header, k.String())
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range responses {
		row := make([]string, 0, len(header))
		row = append(row, strconv.FormatInt(r.ID, 10), r.CreatedAt.UTC().Format(time.RFC3339))
		for _, k := range keys {
			row = append(row, r.Answers[k])
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// ExportLongCSV renders one row per answered question. Likert answers carry
// their 1..5 score.
func ExportLongCSV(rows []LongRow) ([]byte, error) {
	buf, w := newCSVWriter()
	if err := w.Write([]string{"response_id", "field", "value", "score", "created_at"}); err != nil {
		return nil, err
	}
	for _, r := range rows {
		score := ""
		if r.Score != nil {
			score = strconv.Itoa(*r.Score)
		}
		rec := []string{
			strconv.FormatInt(r.ResponseID, 10),
			r.Field.String(),
			r.Value,
			score,
			r.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// ExportQuestionsCSV renders the taxonomy to aid analysis and review.
func ExportQuestionsCSV(questions []models.Question) ([]byte, error) {
	buf, w := newCSVWriter()
	if err := w.Write([]string{"key", "section", "type", "scale", "label", "options"}); err != nil {
		return nil, err
	}
	for _, q := range questions {
		options := q.Options
		if q.Kind == models.KindLikert {
			options = ScaleLabels(q.Scale)
		}
		rec := []string{
			q.Key.String(),
			string(q.Section),
			string(q.Kind),
			string(q.Scale),
			q.Label,
			strings.Join(options, " | "),
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
