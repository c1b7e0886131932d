package preprocess

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/poiesic/foodfacts/core"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CountryCount is the number of sampled products for one countries value.
type CountryCount struct {
	Country string
	Count   int
}

// Summary describes the outcome of a preprocessing run.
type Summary struct {
	Read       ReadStats
	Clean      CleanStats
	Final      int
	OutputPath string
	SizeBytes  int64
	Columns    int

	AvgEnergy   float64
	AvgSugars   float64
	AvgFat      float64
	AvgProteins float64

	TopCountries []CountryCount
}

// ReductionPercent is the share of source rows not present in the artifact.
func (s *Summary) ReductionPercent() float64 {
	if s.Read.Rows == 0 {
		return 0
	}
	return float64(s.Read.Rows-s.Final) / float64(s.Read.Rows) * 100
}

// Summarize computes the averages and the most common countries values of
// products. Empty countries values are not counted; ties are ordered by
// country name.
func Summarize(products []*core.Product, topN int) *Summary {
	s := &Summary{Final: len(products), Columns: len(core.Projection())}
	counts := make(map[string]int)
	for _, p := range products {
		s.AvgEnergy += p.Energy
		s.AvgSugars += p.Sugars
		s.AvgFat += p.Fat
		s.AvgProteins += p.Proteins
		if p.Countries != "" {
			counts[p.Countries]++
		}
	}
	if n := float64(len(products)); n > 0 {
		s.AvgEnergy /= n
		s.AvgSugars /= n
		s.AvgFat /= n
		s.AvgProteins /= n
	}

	top := make([]CountryCount, 0, len(counts))
	for country, count := range counts {
		top = append(top, CountryCount{Country: country, Count: count})
	}
	slices.SortFunc(top, func(a, b CountryCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return strings.Compare(a.Country, b.Country)
	})
	if len(top) > topN {
		top = top[:topN]
	}
	s.TopCountries = top
	return s
}

// WriteReport renders the summary as human readable text.
func (s *Summary) WriteReport(w io.Writer) error {
	p := message.NewPrinter(language.English)
	rule := strings.Repeat("=", 70)

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\nPREPROCESSING SUMMARY\n%s\n", rule, rule)

	b.WriteString("\nData reduction:\n")
	p.Fprintf(&b, "  Original records:        %d\n", s.Read.Rows)
	p.Fprintf(&b, "  Malformed rows skipped:  %d\n", s.Read.Malformed)
	p.Fprintf(&b, "  After name filter:       %d\n", s.Clean.AfterName)
	p.Fprintf(&b, "  After nutrition filter:  %d\n", s.Clean.AfterNutrition)
	p.Fprintf(&b, "  After dedupe:            %d\n", s.Clean.AfterDedupe)
	p.Fprintf(&b, "  Final records:           %d\n", s.Final)
	p.Fprintf(&b, "  Reduction:               %.2f%%\n", s.ReductionPercent())

	b.WriteString("\nFile information:\n")
	fmt.Fprintf(&b, "  Output file: %s\n", s.OutputPath)
	fmt.Fprintf(&b, "  File size:   %.2f MB\n", float64(s.SizeBytes)/(1024*1024))
	fmt.Fprintf(&b, "  Columns:     %d\n", s.Columns)

	b.WriteString("\nNutrition summary:\n")
	fmt.Fprintf(&b, "  Average energy:  %.2f kJ\n", s.AvgEnergy)
	fmt.Fprintf(&b, "  Average sugars:  %.2f g\n", s.AvgSugars)
	fmt.Fprintf(&b, "  Average fat:     %.2f g\n", s.AvgFat)
	fmt.Fprintf(&b, "  Average protein: %.2f g\n", s.AvgProteins)

	if len(s.TopCountries) > 0 {
		fmt.Fprintf(&b, "\nTop %d countries:\n", len(s.TopCountries))
		for _, c := range s.TopCountries {
			p.Fprintf(&b, "  %s: %d products\n", c.Country, c.Count)
		}
	}
	fmt.Fprintf(&b, "\n%s\n", rule)

	_, err := io.WriteString(w, b.String())
	return err
}
