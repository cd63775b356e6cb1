package services

import (
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/soaringjerry/clima/internal/models"
)

// FilterDimension is one of the query parameters accepted by the dashboard panels.
type FilterDimension string

const (
	FilterSetor      FilterDimension = "setor"
	FilterAlojamento FilterDimension = "alojamento"
	FilterRancho     FilterDimension = "rancho"
	FilterEscala     FilterDimension = "escala"
)

// FilterDimensions lists the dimensions in the order predicates are applied.
var FilterDimensions = []FilterDimension{FilterSetor, FilterAlojamento, FilterRancho, FilterEscala}

var filterColumns = map[FilterDimension]models.QuestionKey{
	FilterSetor:      models.KeySetor,
	FilterAlojamento: models.KeyAlojamento,
	FilterRancho:     models.KeyRancho,
	FilterEscala:     models.KeyEscala,
}

// Column returns the response column a dimension filters on.
func (d FilterDimension) Column() models.QuestionKey { return filterColumns[d] }

// Filters holds the dimensions that resolved to a concrete value.
type Filters map[FilterDimension]string

// Predicate is an equality constraint against a response column.
type Predicate struct {
	Column models.QuestionKey
	Value  string
}

// Predicates returns the filter set as column equalities in a stable order.
func (f Filters) Predicates() []Predicate {
	out := make([]Predicate, 0, len(f))
	for _, d := range FilterDimensions {
		if v, ok := f[d]; ok {
			out = append(out, Predicate{Column: d.Column(), Value: v})
		}
	}
	return out
}

// NormalizeFilterValue reduces a possibly repeated query parameter to a
// single value. Blank entries and the "all" sentinel mean no filter.
func NormalizeFilterValue(values []string) (string, bool) {
	for _, raw := range values {
		v := strings.TrimSpace(raw)
		if v == "" || strings.EqualFold(v, "all") {
			continue
		}
		return v, true
	}
	return "", false
}

// NormalizeFilters builds the canonical filter set from request query values.
// Values that are not declared options are kept, since they simply match no
// rows, but they are logged so taxonomy drift shows up.
func NormalizeFilters(q url.Values, log *zap.Logger) Filters {
	out := Filters{}
	for _, d := range FilterDimensions {
		v, ok := NormalizeFilterValue(q[string(d)])
		if !ok {
			continue
		}
		out[d] = v
		if log == nil {
			continue
		}
		if question, found := models.Lookup(string(d.Column())); found && !question.IsKnownOption(v) {
			log.Warn("unrecognized filter value",
				zap.String("dimension", string(d)),
				zap.String("value", v))
		}
	}
	return out
}
