package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/soaringjerry/clima/internal/services"
)

// Bar renders a 0..100 value as a fixed-width block bar.
func Bar(pct float64, width int) string {
	if width <= 0 {
		width = 20
	}
	filled := int(pct / 100 * float64(width))
	filled = max(0, min(width, filled))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func statusStyle(status string) func(...string) string {
	switch status {
	case services.StatusExcellent:
		return StyleSuccess.Render
	case services.StatusGood:
		return StyleGood.Render
	case services.StatusRegular:
		return StyleWarning.Render
	case services.StatusNeedsAttention:
		return StyleError.Render
	}
	return StyleMuted.Render
}

// WriteSummary prints the report headline, the area table and the sector ranking.
func WriteSummary(w io.Writer, r *services.Report) error {
	var sb strings.Builder
	sb.WriteString(StyleHeader.Render("Clima organizacional") + "\n\n")
	fmt.Fprintf(&sb, "%s %d\n", StyleBold.Render("Respostas:"), r.TotalResponses)
	fmt.Fprintf(&sb, "%s %s %s\n",
		StyleBold.Render("Satisfação geral:"),
		statusStyle(r.GeneralStatus)(fmt.Sprintf("%.1f%%", r.GeneralSatisfaction)),
		StyleMuted.Render("("+r.GeneralStatus+")"))
	if r.TopCategory != "" {
		fmt.Fprintf(&sb, "%s %s (%d)\n", StyleBold.Render("Setor com mais respostas:"), r.TopCategory, r.TopCategoryCount)
	}
	sb.WriteString("\n")

	areas := NewTable("Área", "Média", "Índice", "", "Situação")
	for _, a := range r.Areas {
		avg := "—"
		if a.Average != nil {
			avg = fmt.Sprintf("%.2f", *a.Average)
		}
		style := statusStyle(a.Status)
		areas.AddRow(a.Label, avg, fmt.Sprintf("%.1f%%", a.Percentage), style(Bar(a.Percentage, 20)), style(a.Status))
	}
	sb.WriteString(areas.Render())

	if len(r.Sectors) > 0 {
		sb.WriteString("\n")
		sectors := NewTable("#", "Setor", "Respostas", "%")
		for i, s := range r.Sectors {
			sectors.AddRow(fmt.Sprint(i+1), s.Category, fmt.Sprint(s.Count), fmt.Sprintf("%.1f%%", s.Percentage))
		}
		sb.WriteString(sectors.Render())
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
