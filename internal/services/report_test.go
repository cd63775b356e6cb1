package services

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fp(v float64) *float64 { return &v }

func TestStatusForAverageBoundaries(t *testing.T) {
	cases := []struct {
		avg  float64
		want string
	}{
		{5, StatusExcellent},
		{4.0, StatusExcellent},
		{3.99, StatusGood},
		{3.5, StatusGood},
		{3.49, StatusRegular},
		{3.0, StatusRegular},
		{2.99, StatusNeedsAttention},
		{1, StatusNeedsAttention},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, StatusForAverage(c.avg), "avg %v", c.avg)
	}
}

func TestStatusTablesAgree(t *testing.T) {
	for avg := 1.0; avg <= 5.0; avg += 0.05 {
		assert.Equal(t, StatusForAverage(avg), StatusForPercentage(avg*PercentPerPoint), "avg %v", avg)
	}
	assert.Equal(t, StatusExcellent, StatusForPercentage(80))
	assert.Equal(t, StatusGood, StatusForPercentage(70))
	assert.Equal(t, StatusRegular, StatusForPercentage(60))
	assert.Equal(t, StatusNeedsAttention, StatusForPercentage(59.9))
}

func TestGeneralSatisfactionExcludesMissingAreas(t *testing.T) {
	got := GeneralSatisfaction([]*float64{fp(4.0), fp(3.0), nil})
	assert.InDelta(t, 70.0, got, 1e-9)

	assert.Equal(t, 0.0, GeneralSatisfaction(nil))
	assert.Equal(t, 0.0, GeneralSatisfaction([]*float64{nil, nil}))
	assert.InDelta(t, 100.0, GeneralSatisfaction([]*float64{fp(5), fp(5)}), 1e-9)
	assert.InDelta(t, 20.0, GeneralSatisfaction([]*float64{fp(1)}), 1e-9)
}

func TestBuildReportWithoutResponses(t *testing.T) {
	r := BuildReport(ReportInput{
		GeneratedAt: time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC),
		Areas:       []AreaAverage{{Field: "satisfacao_geral", Label: "Satisfação geral"}},
	})
	assert.Equal(t, 0.0, r.GeneralSatisfaction)
	assert.False(t, math.IsNaN(r.GeneralSatisfaction))
	assert.Equal(t, StatusNoData, r.GeneralStatus)
	assert.Empty(t, r.Sectors)
	assert.Nil(t, r.SectorPie)
	require.Len(t, r.Areas, 1)
	assert.Equal(t, StatusNoData, r.Areas[0].Status)

	html, err := RenderReportHTML(r, ReportScreen)
	require.NoError(t, err)
	assert.Contains(t, string(html), "0.0%")
	assert.NotContains(t, string(html), "NaN")
	assert.NotContains(t, string(html), "Inf")
}

func TestBuildReportRanksSectors(t *testing.T) {
	r := BuildReport(ReportInput{
		GeneratedAt:    time.Now(),
		TotalResponses: 10,
		Areas: []AreaAverage{
			{Field: "satisfacao_ambiente", Label: "Ambiente", Average: fp(4.2), Answers: 5},
			{Field: "satisfacao_rancho", Label: "Rancho", Average: fp(2.5), Answers: 5},
			{Field: "satisfacao_alojamento", Label: "Alojamento"},
		},
		SetorDistribution: []CategoryCount{
			{Category: "PAPEM-20", Count: 2},
			{Category: "PAPEM-10", Count: 6},
			{Category: "PAPEM-30", Count: 2},
		},
	})
	assert.InDelta(t, 67.0, r.GeneralSatisfaction, 1e-9)
	assert.Equal(t, StatusRegular, r.GeneralStatus)
	assert.Equal(t, "PAPEM-10", r.TopCategory)
	assert.Equal(t, 6, r.TopCategoryCount)

	require.Len(t, r.Sectors, 3)
	assert.Equal(t, "PAPEM-10", r.Sectors[0].Category)
	assert.Equal(t, 60.0, r.Sectors[0].Percentage)
	assert.Equal(t, 100.0, r.Sectors[0].BarWidth)
	// equal counts fall back to name order
	assert.Equal(t, "PAPEM-20", r.Sectors[1].Category)
	assert.Equal(t, "PAPEM-30", r.Sectors[2].Category)
	assert.InDelta(t, 33.33, r.Sectors[1].BarWidth, 0.01)

	assert.Equal(t, StatusExcellent, r.Areas[0].Status)
	assert.InDelta(t, 84.0, r.Areas[0].Percentage, 1e-9)
	assert.Equal(t, StatusNeedsAttention, r.Areas[1].Status)
	assert.Equal(t, StatusNoData, r.Areas[2].Status)
}

func TestPieSlicesCoverFullCircle(t *testing.T) {
	slices := PieSlices([]DistributionRow{
		{Category: "A", Count: 1},
		{Category: "B", Count: 1},
		{Category: "C", Count: 2},
	})
	require.Len(t, slices, 3)
	assert.Equal(t, 0.0, slices[0].StartAngle)
	assert.InDelta(t, 90.0, slices[0].EndAngle, 1e-9)
	assert.InDelta(t, 90.0, slices[1].StartAngle, 1e-9)
	assert.InDelta(t, 180.0, slices[1].EndAngle, 1e-9)
	assert.InDelta(t, 360.0, slices[2].EndAngle, 1e-9)
	assert.True(t, strings.HasPrefix(slices[0].Path, "M 100.00 100.00 L 100.00 10.00"))
	assert.Contains(t, slices[2].Path, " 0 0 1 ")

	single := PieSlices([]DistributionRow{{Category: "only", Count: 3}})
	require.Len(t, single, 1)
	assert.True(t, single[0].Full)
	assert.Empty(t, single[0].Path)
}

func TestBarWidth(t *testing.T) {
	assert.Equal(t, 0.0, BarWidth(5, 0))
	assert.Equal(t, 0.0, BarWidth(0, 10))
	assert.Equal(t, 50.0, BarWidth(5, 10))
	assert.Equal(t, 100.0, BarWidth(12, 10))
}

func TestRenderReportHTMLVariants(t *testing.T) {
	r := BuildReport(ReportInput{
		GeneratedAt:       time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC),
		TotalResponses:    3,
		Areas:             []AreaAverage{{Field: "satisfacao_geral", Label: "Satisfação geral", Average: fp(4)}},
		SetorDistribution: []CategoryCount{{Category: "PAPEM-10", Count: 3}},
		Rancho:            []CategoryCount{{Category: "Rancho <Central>", Count: 1}},
	})

	screen, err := RenderReportHTML(r, ReportScreen)
	require.NoError(t, err)
	doc := string(screen)
	assert.True(t, strings.HasPrefix(doc, "<!DOCTYPE html>"))
	assert.Contains(t, doc, "</html>")
	assert.Contains(t, doc, "PAPEM-10")
	assert.Contains(t, doc, "80.0%")
	assert.Contains(t, doc, "Excelente")
	assert.Contains(t, doc, "Rancho &lt;Central&gt;")
	assert.NotContains(t, doc, "window.print")

	printed, err := RenderReportHTML(r, ReportPrint)
	require.NoError(t, err)
	assert.Contains(t, string(printed), "window.print")
	assert.Contains(t, string(printed), "@page")

	assert.Equal(t, "relatorio-clima-organizacional-2026-03-01.html", ReportFilename(r, ReportScreen))
	assert.Equal(t, "relatorio-clima-organizacional-impressao-2026-03-01.html", ReportFilename(r, ReportPrint))
}
