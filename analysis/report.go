package analysis

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/poiesic/foodfacts/core"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Report collects the full set of analyses.
type Report struct {
	Averages     map[core.Metric][]CountryAverage
	CountryCount []CountryCount
	Top          map[core.Metric][]TopProduct
	Summary      *Summary
}

// ReportMetrics are the metrics averaged per country in a Report.
var ReportMetrics = []core.Metric{core.MetricSugars, core.MetricFat, core.MetricEnergy}

// RankedMetrics are the metrics ranked by product in a Report.
var RankedMetrics = []core.Metric{core.MetricSugars, core.MetricEnergy}

// Run executes every analysis. limit bounds the per country tables and
// topN the product rankings.
func (a *Analyzer) Run(ctx context.Context, limit, topN int) (*Report, error) {
	r := &Report{
		Averages: make(map[core.Metric][]CountryAverage),
		Top:      make(map[core.Metric][]TopProduct),
	}
	for _, m := range ReportMetrics {
		rows, err := a.AverageByCountry(ctx, m, limit)
		if err != nil {
			return nil, fmt.Errorf("average %s by country: %w", m, err)
		}
		r.Averages[m] = rows
	}

	var err error
	if r.CountryCount, err = a.ProductCountByCountry(ctx, limit); err != nil {
		return nil, fmt.Errorf("product count by country: %w", err)
	}
	for _, m := range RankedMetrics {
		rows, err := a.TopProducts(ctx, m, topN)
		if err != nil {
			return nil, fmt.Errorf("top products by %s: %w", m, err)
		}
		r.Top[m] = rows
	}
	if r.Summary, err = a.Summary(ctx, 5); err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	return r, nil
}

// cell truncates s to width display columns and pads it on the right.
func cell(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}

const rule = "======================================================================"

// WriteCountryAverages renders one average-by-country table.
func WriteCountryAverages(w io.Writer, metric core.Metric, rows []CountryAverage) error {
	p := message.NewPrinter(language.English)
	var b strings.Builder
	p.Fprintf(&b, "\nAverage %s per country\n%s\n", strings.ToLower(metric.Label()), rule)
	for i, r := range rows {
		p.Fprintf(&b, "  %2d. %s  avg %.2f %s (from %d products)\n",
			i+1, cell(r.Country, 30), r.Average, metric.Unit(), r.Count)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteCountryCounts renders the product distribution table.
func WriteCountryCounts(w io.Writer, rows []CountryCount) error {
	p := message.NewPrinter(language.English)
	var b strings.Builder
	p.Fprintf(&b, "\nProducts per country\n%s\n", rule)
	for i, r := range rows {
		p.Fprintf(&b, "  %2d. %s  %d products\n", i+1, cell(r.Country, 30), r.Count)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteTopProducts renders a product ranking.
func WriteTopProducts(w io.Writer, metric core.Metric, rows []TopProduct) error {
	p := message.NewPrinter(language.English)
	var b strings.Builder
	p.Fprintf(&b, "\nTop %d products by %s\n%s\n", len(rows), strings.ToLower(metric.Label()), rule)
	for i, r := range rows {
		brands := r.Brands
		if brands == "" {
			brands = "N/A"
		}
		p.Fprintf(&b, "  %2d. %s | %8.1f %-2s | %s | %s\n",
			i+1, cell(r.ProductName, 40), r.Value, metric.Unit(), cell(brands, 20), cell(r.Countries, 15))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteSummary renders collection statistics.
func WriteSummary(w io.Writer, s *Summary) error {
	p := message.NewPrinter(language.English)
	var b strings.Builder
	p.Fprintf(&b, "\nCollection summary\n%s\n", rule)
	p.Fprintf(&b, "  Total documents:  %d\n", s.Total)
	p.Fprintf(&b, "  Average energy:   %.2f kJ\n", s.AvgEnergy)
	p.Fprintf(&b, "  Average fat:      %.2f g\n", s.AvgFat)
	p.Fprintf(&b, "  Average sugars:   %.2f g\n", s.AvgSugars)
	p.Fprintf(&b, "  Average proteins: %.2f g\n", s.AvgProteins)
	p.Fprintf(&b, "  Max energy:       %.0f kJ\n", s.MaxEnergy)
	p.Fprintf(&b, "  Max sugars:       %.0f g\n", s.MaxSugars)
	if len(s.Countries) > 0 {
		p.Fprintf(&b, "\n  Top %d countries by product count:\n", len(s.Countries))
		for i, c := range s.Countries {
			p.Fprintf(&b, "  %2d. %s  %d products\n", i+1, cell(c.Country, 30), c.Count)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Write renders every section of the report followed by the key insights.
func (r *Report) Write(w io.Writer) error {
	for _, m := range ReportMetrics {
		if err := WriteCountryAverages(w, m, r.Averages[m]); err != nil {
			return err
		}
	}
	if err := WriteCountryCounts(w, r.CountryCount); err != nil {
		return err
	}
	for _, m := range RankedMetrics {
		if err := WriteTopProducts(w, m, r.Top[m]); err != nil {
			return err
		}
	}
	if r.Summary != nil {
		if err := WriteSummary(w, r.Summary); err != nil {
			return err
		}
	}

	p := message.NewPrinter(language.English)
	var b strings.Builder
	p.Fprintf(&b, "\nKey insights\n%s\n", rule)
	if len(r.CountryCount) > 0 {
		top := r.CountryCount[0]
		p.Fprintf(&b, "  Most products:         %s (%d)\n", top.Country, top.Count)
	}
	for _, m := range ReportMetrics {
		if rows := r.Averages[m]; len(rows) > 0 {
			label := fmt.Sprintf("Highest avg %s:", strings.ToLower(m.Label()))
			p.Fprintf(&b, "  %s %s (%.2f %s)\n", runewidth.FillRight(label, 22), rows[0].Country, rows[0].Average, m.Unit())
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
