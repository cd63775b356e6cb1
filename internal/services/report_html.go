package services

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

// ReportVariant selects the stylesheet of the rendered document.
type ReportVariant string

const (
	ReportScreen ReportVariant = "screen"
	ReportPrint  ReportVariant = "print"
)

var statusLabels = map[string]string{
	StatusExcellent:      "Excelente",
	StatusGood:           "Bom",
	StatusRegular:        "Regular",
	StatusNeedsAttention: "Necessita Atenção",
	StatusNoData:         "Sem dados",
}

var statusClasses = map[string]string{
	StatusExcellent:      "excellent",
	StatusGood:           "good",
	StatusRegular:        "regular",
	StatusNeedsAttention: "attention",
	StatusNoData:         "nodata",
}

var reportLocation = func() *time.Location {
	if loc, err := time.LoadLocation("America/Sao_Paulo"); err == nil {
		return loc
	}
	return time.UTC
}()

var reportFuncs = template.FuncMap{
	"pct": func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
	"width": func(v float64) string {
		return fmt.Sprintf("%.1f%%", v)
	},
	"avg": func(v *float64) string {
		if v == nil {
			return "—"
		}
		return fmt.Sprintf("%.2f", *v)
	},
	"statusLabel": func(s string) string {
		if l, ok := statusLabels[s]; ok {
			return l
		}
		return s
	},
	"statusClass": func(s string) string { return statusClasses[s] },
	"pctStatusClass": func(v float64) string {
		return statusClasses[StatusForPercentage(v)]
	},
	"inc":  func(i int) int { return i + 1 },
	"date": func(t time.Time) string { return t.In(reportLocation).Format("02/01/2006 15:04") },
}

var reportTemplate = template.Must(template.New("report").Funcs(reportFuncs).Parse(reportHTML))

type reportView struct {
	*Report
	Print bool
}

// RenderReportHTML renders a complete, self-contained HTML document.
func RenderReportHTML(r *Report, variant ReportVariant) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := reportTemplate.Execute(buf, reportView{Report: r, Print: variant == ReportPrint}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReportFilename stamps the export file name with the report date.
func ReportFilename(r *Report, variant ReportVariant) string {
	day := r.GeneratedAt.In(reportLocation).Format("2006-01-02")
	if variant == ReportPrint {
		return "relatorio-clima-organizacional-impressao-" + day + ".html"
	}
	return "relatorio-clima-organizacional-" + day + ".html"
}

const reportHTML = `<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Relatório de Clima Organizacional</title>
<style>
body { font-family: "Segoe UI", Arial, sans-serif; color: #263238; margin: 0; background: #f5f7fa; }
main { max-width: 960px; margin: 0 auto; padding: 32px 24px; }
h1 { color: #0d47a1; margin-bottom: 4px; }
h2 { color: #1565c0; border-bottom: 2px solid #e3f2fd; padding-bottom: 6px; margin-top: 36px; }
.meta { color: #607d8b; font-size: 14px; }
.cards { display: flex; gap: 16px; flex-wrap: wrap; margin-top: 24px; }
.card { flex: 1 1 200px; background: #fff; border-radius: 8px; padding: 16px; box-shadow: 0 1px 3px rgba(0,0,0,.12); }
.card .value { font-size: 28px; font-weight: 600; }
.card .label { color: #607d8b; font-size: 13px; text-transform: uppercase; }
table { width: 100%; border-collapse: collapse; background: #fff; margin-top: 12px; }
th, td { text-align: left; padding: 8px 10px; border-bottom: 1px solid #eceff1; font-size: 14px; }
th { background: #e3f2fd; }
.bar { background: #eceff1; border-radius: 4px; height: 12px; width: 100%; }
.bar span { display: block; height: 12px; border-radius: 4px; background: #1565c0; }
.excellent { color: #2e7d32; } .bar .excellent { background: #2e7d32; }
.good { color: #558b2f; } .bar .good { background: #7cb342; }
.regular { color: #f9a825; } .bar .regular { background: #fbc02d; }
.attention { color: #c62828; } .bar .attention { background: #e53935; }
.nodata { color: #90a4ae; }
.chart { display: flex; gap: 24px; align-items: center; flex-wrap: wrap; }
.legend div { font-size: 13px; margin: 4px 0; }
.swatch { display: inline-block; width: 12px; height: 12px; margin-right: 6px; vertical-align: middle; }
footer { margin-top: 40px; color: #90a4ae; font-size: 12px; }
{{if .Print}}
@page { size: A4; margin: 16mm; }
@media print { body { background: #fff; } .card, table { box-shadow: none; } h2 { page-break-after: avoid; } table { page-break-inside: avoid; } }
{{end}}
</style>
</head>
<body>
<main>
<h1>Relatório de Clima Organizacional</h1>
<div class="meta">Gerado em {{date .GeneratedAt}}</div>

<div class="cards">
  <div class="card"><div class="label">Total de respostas</div><div class="value">{{.TotalResponses}}</div></div>
  <div class="card"><div class="label">Satisfação geral</div><div class="value {{pctStatusClass .GeneralSatisfaction}}">{{pct .GeneralSatisfaction}}</div><div class="{{statusClass .GeneralStatus}}">{{statusLabel .GeneralStatus}}</div></div>
  <div class="card"><div class="label">Setor com mais respostas</div><div class="value">{{if .TopCategory}}{{.TopCategory}}{{else}}—{{end}}</div>{{if .TopCategory}}<div class="meta">{{.TopCategoryCount}} respostas</div>{{end}}</div>
</div>

<h2>Satisfação por área</h2>
<table>
  <thead><tr><th>Área</th><th>Média (1–5)</th><th>Índice</th><th style="width:35%">Gráfico</th><th>Situação</th></tr></thead>
  <tbody>
  {{range .Areas}}
  <tr>
    <td>{{.Label}}</td>
    <td>{{avg .Average}}</td>
    <td>{{pct .Percentage}}</td>
    <td><div class="bar"><span class="{{statusClass .Status}}" style="width: {{width .BarWidth}}"></span></div></td>
    <td class="{{statusClass .Status}}">{{statusLabel .Status}}</td>
  </tr>
  {{end}}
  </tbody>
</table>

<h2>Distribuição por setor</h2>
{{if .Sectors}}
<div class="chart">
  <svg width="200" height="200" viewBox="0 0 200 200" role="img" aria-label="Distribuição por setor">
  {{range .SectorPie}}{{if .Full}}<circle cx="100" cy="100" r="90" fill="{{.Color}}"></circle>{{else}}<path d="{{.Path}}" fill="{{.Color}}" stroke="#fff" stroke-width="1"></path>{{end}}{{end}}
  </svg>
  <div class="legend">
  {{range .SectorPie}}<div><span class="swatch" style="background: {{.Color}}"></span>{{.Category}} ({{pct .Percentage}})</div>{{end}}
  </div>
</div>
<table>
  <thead><tr><th>#</th><th>Setor</th><th>Respostas</th><th>Percentual</th></tr></thead>
  <tbody>
  {{range $i, $row := .Sectors}}<tr><td>{{inc $i}}</td><td>{{$row.Category}}</td><td>{{$row.Count}}</td><td>{{pct $row.Percentage}}</td></tr>{{end}}
  </tbody>
</table>
{{else}}<p class="nodata">Nenhuma resposta registrada.</p>{{end}}

<h2>Alojamentos</h2>
{{template "distribution" .Alojamento}}

<h2>Ranchos</h2>
{{template "distribution" .Rancho}}

<footer>Pesquisa anônima de clima organizacional. Os dados são apresentados de forma agregada.</footer>
</main>
{{if .Print}}<script>window.addEventListener("load", function () { window.print(); });</script>{{end}}
</body>
</html>
{{define "distribution"}}
{{if .}}
<table>
  <thead><tr><th>Local</th><th>Respostas</th><th>Percentual</th><th style="width:40%">Gráfico</th></tr></thead>
  <tbody>
  {{range .}}<tr><td>{{.Category}}</td><td>{{.Count}}</td><td>{{pct .Percentage}}</td><td><div class="bar"><span style="width: {{width .BarWidth}}"></span></div></td></tr>{{end}}
  </tbody>
</table>
{{else}}<p class="nodata">Sem respostas.</p>{{end}}
{{end}}`
