package dashboard

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/poiesic/foodfacts/analysis"
	"github.com/poiesic/foodfacts/core"
	"github.com/spf13/cast"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed templates/*.html
var templateFS embed.FS

func printer() *message.Printer {
	return message.NewPrinter(language.English)
}

var pageTemplate = template.Must(template.New("index.html").Funcs(template.FuncMap{
	"count": func(n int) string { return printer().Sprintf("%d", n) },
	"num":   func(v float64) string { return printer().Sprintf("%.1f", v) },
	"pct":   barWidth,
	"inc":   func(i int) int { return i + 1 },
}).ParseFS(templateFS, "templates/index.html"))

// barWidth scales v against the largest value of a table to a CSS width.
func barWidth(v, peak any) string {
	top := cast.ToFloat64(peak)
	if top <= 0 {
		return "0%"
	}
	return printer().Sprintf("%.1f%%", cast.ToFloat64(v)/top*100)
}

type averageTable struct {
	Metric core.Metric
	Unit   string
	Max    float64
	Rows   []analysis.CountryAverage
}

type topTable struct {
	Metric core.Metric
	Unit   string
	Rows   []analysis.TopProduct
}

type indexPage struct {
	Summary   *analysis.Summary
	Averages  []averageTable
	Counts    []analysis.CountryCount
	MaxCount  float64
	Profiles  []analysis.CountryProfile
	Top       []topTable
	MaxEnergy float64
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := indexPage{MaxEnergy: s.analyzer.MaxEnergy()}

	var err error
	if page.Summary, err = s.analyzer.Summary(ctx, 5); err != nil {
		s.fail(w, r, err)
		return
	}
	for _, m := range analysis.ReportMetrics {
		rows, err := s.analyzer.AverageByCountry(ctx, m, s.cfg.Limit)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		table := averageTable{Metric: m, Unit: m.Unit(), Rows: rows}
		if len(rows) > 0 {
			table.Max = rows[0].Average
		}
		page.Averages = append(page.Averages, table)
	}
	if page.Counts, err = s.analyzer.ProductCountByCountry(ctx, 10); err != nil {
		s.fail(w, r, err)
		return
	}
	if len(page.Counts) > 0 {
		page.MaxCount = float64(page.Counts[0].Count)
	}
	top5 := make([]string, 0, 5)
	for _, c := range page.Summary.Countries {
		top5 = append(top5, c.Country)
	}
	if page.Profiles, err = s.analyzer.CountryProfiles(ctx, top5...); err != nil {
		s.fail(w, r, err)
		return
	}
	for _, m := range analysis.RankedMetrics {
		rows, err := s.analyzer.TopProducts(ctx, m, s.cfg.TopN)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		page.Top = append(page.Top, topTable{Metric: m, Unit: m.Unit(), Rows: rows})
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, page); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
