package services

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/soaringjerry/clima/internal/models"
)

// Average thresholds on the 1..5 scale. Percentage thresholds are derived
// from these through PercentPerPoint so both tables stay aligned.
const (
	ThresholdExcellent = 4.0
	ThresholdGood      = 3.5
	ThresholdRegular   = 3.0
	PercentPerPoint    = 20.0
)

// Status names used by the dashboard and the report.
const (
	StatusExcellent      = "Excellent"
	StatusGood           = "Good"
	StatusRegular        = "Regular"
	StatusNeedsAttention = "Needs Attention"
	StatusNoData         = "No Data"
)

// StatusForAverage classifies a weighted average.
func StatusForAverage(avg float64) string {
	switch {
	case avg >= ThresholdExcellent:
		return StatusExcellent
	case avg >= ThresholdGood:
		return StatusGood
	case avg >= ThresholdRegular:
		return StatusRegular
	default:
		return StatusNeedsAttention
	}
}

// StatusForPercentage classifies a 0..100 score using the average thresholds.
func StatusForPercentage(pct float64) string {
	switch {
	case pct >= ThresholdExcellent*PercentPerPoint:
		return StatusExcellent
	case pct >= ThresholdGood*PercentPerPoint:
		return StatusGood
	case pct >= ThresholdRegular*PercentPerPoint:
		return StatusRegular
	default:
		return StatusNeedsAttention
	}
}

// GeneralSatisfaction averages the areas that have data and maps the result
// onto 0..100. Areas without data are left out of the mean.
func GeneralSatisfaction(averages []*float64) float64 {
	var sum float64
	n := 0
	for _, a := range averages {
		if a == nil || math.IsNaN(*a) {
			continue
		}
		sum += *a
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n) * PercentPerPoint
}

type AreaReport struct {
	Field      models.QuestionKey `json:"field"`
	Label      string             `json:"label"`
	Average    *float64           `json:"average"`
	Percentage float64            `json:"percentage"`
	Status     string             `json:"status"`
	Answers    int                `json:"answers"`
	BarWidth   float64            `json:"barWidth"`
}

type DistributionRow struct {
	Category   string  `json:"category"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
	BarWidth   float64 `json:"barWidth"`
}

// PieSlice is one segment of the sector chart. Angles are in degrees,
// clockwise from twelve o'clock.
type PieSlice struct {
	Category   string  `json:"category"`
	Percentage float64 `json:"percentage"`
	StartAngle float64 `json:"startAngle"`
	EndAngle   float64 `json:"endAngle"`
	Color      string  `json:"color"`
	Path       string  `json:"-"`
	Full       bool    `json:"-"`
}

// Report is the computed structure behind the HTML export and the summary panels.
type Report struct {
	GeneratedAt         time.Time         `json:"generatedAt"`
	TotalResponses      int64             `json:"totalResponses"`
	GeneralSatisfaction float64           `json:"generalSatisfaction"`
	GeneralStatus       string            `json:"generalStatus"`
	Areas               []AreaReport      `json:"areas"`
	Sectors             []DistributionRow `json:"sectors"`
	Alojamento          []DistributionRow `json:"alojamento"`
	Rancho              []DistributionRow `json:"rancho"`
	SectorPie           []PieSlice        `json:"sectorPie"`
	TopCategory         string            `json:"topCategory"`
	TopCategoryCount    int               `json:"topCategoryCount"`
}

var pieColors = []string{"#1565c0", "#2e7d32", "#f9a825", "#c62828", "#6a1b9a", "#00838f", "#ef6c00", "#4e342e"}

const (
	pieCenter = 100.0
	pieRadius = 90.0
)

// BuildReport derives every report metric from the gathered aggregates.
func BuildReport(in ReportInput) *Report {
	r := &Report{
		GeneratedAt:    in.GeneratedAt,
		TotalResponses: in.TotalResponses,
		Areas:          make([]AreaReport, 0, len(in.Areas)),
	}

	avgs := make([]*float64, 0, len(in.Areas))
	for _, a := range in.Areas {
		avgs = append(avgs, a.Average)
	}
	if in.TotalResponses > 0 {
		r.GeneralSatisfaction = GeneralSatisfaction(avgs)
	}
	if r.GeneralSatisfaction > 0 {
		r.GeneralStatus = StatusForPercentage(r.GeneralSatisfaction)
	} else {
		r.GeneralStatus = StatusNoData
	}

	for _, a := range in.Areas {
		ar := AreaReport{Field: a.Field, Label: a.Label, Average: a.Average, Answers: a.Answers, Status: StatusNoData}
		if a.Average != nil {
			ar.Percentage = *a.Average * PercentPerPoint
			ar.Status = StatusForAverage(*a.Average)
			ar.BarWidth = ar.Percentage
		}
		r.Areas = append(r.Areas, ar)
	}

	r.Sectors = rankDistribution(in.SetorDistribution)
	r.Alojamento = rankDistribution(in.Alojamento)
	r.Rancho = rankDistribution(in.Rancho)
	if len(r.Sectors) > 0 {
		r.TopCategory = r.Sectors[0].Category
		r.TopCategoryCount = r.Sectors[0].Count
	}
	r.SectorPie = PieSlices(r.Sectors)
	return r
}

// rankDistribution sorts by count (ties by name) and fills each row's share
// of the total and its bar width relative to the largest row.
func rankDistribution(in []CategoryCount) []DistributionRow {
	rows := make([]DistributionRow, 0, len(in))
	total, largest := 0, 0
	for _, c := range in {
		total += c.Count
		if c.Count > largest {
			largest = c.Count
		}
		rows = append(rows, DistributionRow{Category: c.Category, Count: c.Count})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Count == rows[j].Count {
			return rows[i].Category < rows[j].Category
		}
		return rows[i].Count > rows[j].Count
	})
	for i := range rows {
		rows[i].Percentage = percentOf(rows[i].Count, total)
		rows[i].BarWidth = BarWidth(float64(rows[i].Count), float64(largest))
	}
	return rows
}

// BarWidth scales value against the series maximum as a 0..100 width.
func BarWidth(value, seriesMax float64) float64 {
	if seriesMax <= 0 || value <= 0 {
		return 0
	}
	return math.Min(100, value/seriesMax*100)
}

// PieSlices converts cumulative percentages into arc angles.
func PieSlices(rows []DistributionRow) []PieSlice {
	total := 0
	for _, r := range rows {
		total += r.Count
	}
	if total == 0 {
		return nil
	}
	slices := make([]PieSlice, 0, len(rows))
	cumulative := 0.0
	for i, r := range rows {
		if r.Count == 0 {
			continue
		}
		pct := float64(r.Count) / float64(total) * 100
		s := PieSlice{
			Category:   r.Category,
			Percentage: math.Round(pct*10) / 10,
			StartAngle: cumulative / 100 * 360,
			EndAngle:   (cumulative + pct) / 100 * 360,
			Color:      pieColors[i%len(pieColors)],
		}
		cumulative += pct
		if s.EndAngle-s.StartAngle >= 359.999 {
			s.Full = true
		} else {
			s.Path = arcPath(s.StartAngle, s.EndAngle)
		}
		slices = append(slices, s)
	}
	return slices
}

func arcPath(start, end float64) string {
	x1, y1 := polar(start)
	x2, y2 := polar(end)
	large := 0
	if end-start > 180 {
		large = 1
	}
	return fmt.Sprintf("M %.2f %.2f L %.2f %.2f A %.2f %.2f 0 %d 1 %.2f %.2f Z",
		pieCenter, pieCenter, x1, y1, pieRadius, pieRadius, large, x2, y2)
}

func polar(deg float64) (float64, float64) {
	rad := deg * math.Pi / 180
	return pieCenter + pieRadius*math.Sin(rad), pieCenter - pieRadius*math.Cos(rad)
}
