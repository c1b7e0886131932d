package analysis

import (
	"context"
	"errors"
	"strings"

	"github.com/poiesic/foodfacts/core"
	"github.com/poiesic/foodfacts/storage"
)

// CountryProfile holds the nutrition averages of one countries value.
type CountryProfile struct {
	Country     string  `json:"country"`
	Count       int     `json:"count"`
	AvgEnergy   float64 `json:"avg_energy"`
	AvgSugars   float64 `json:"avg_sugars"`
	AvgFat      float64 `json:"avg_fat"`
	AvgProteins float64 `json:"avg_proteins"`
}

// CountryProfiles returns the averages for each exact countries value, in
// the order given. A value with no products yields a zero profile.
func (a *Analyzer) CountryProfiles(ctx context.Context, countries ...string) ([]CountryProfile, error) {
	const query = "country_profiles"
	a.monitor.Start(query)

	profiles := make([]CountryProfile, len(countries))
	byCountry := make(map[string]*CountryProfile, len(countries))
	for i, c := range countries {
		profiles[i].Country = c
		byCountry[c] = &profiles[i]
	}
	add := func(p *core.Product) {
		prof := byCountry[p.Countries]
		if prof == nil {
			return
		}
		prof.Count++
		prof.AvgEnergy += p.Energy
		prof.AvgSugars += p.Sugars
		prof.AvgFat += p.Fat
		prof.AvgProteins += p.Proteins
	}

	scanned, err := a.profilesFromIndex(ctx, countries, add)
	if errors.Is(err, storage.ErrIndexNotFound) {
		scanned = 0
		err = a.products.ForEachProduct(ctx, func(p *core.Product) error {
			scanned++
			add(p)
			return nil
		})
	}
	a.monitor.Finish(query, scanned, len(profiles), err)
	if err != nil {
		return nil, err
	}

	for i := range profiles {
		if n := float64(profiles[i].Count); n > 0 {
			profiles[i].AvgEnergy /= n
			profiles[i].AvgSugars /= n
			profiles[i].AvgFat /= n
			profiles[i].AvgProteins /= n
		}
	}
	return profiles, nil
}

func (a *Analyzer) profilesFromIndex(ctx context.Context, countries []string, add func(*core.Product)) (int, error) {
	scanned := 0
	seen := make(map[string]bool, len(countries))
	for _, country := range countries {
		if seen[country] {
			continue
		}
		seen[country] = true
		ids, err := a.products.FindByText(ctx, core.FieldCountries, country)
		if err != nil {
			return scanned, err
		}
		for _, id := range ids {
			p, err := a.products.GetProduct(ctx, id)
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			if err != nil {
				return scanned, err
			}
			scanned++
			add(p)
		}
	}
	return scanned, nil
}

// Filter selects products for Explore. Zero values disable a criterion.
type Filter struct {
	// Country matches the countries value exactly.
	Country string
	// Query must have all its non stop words in the product name.
	Query     string
	MaxSugars float64
	MaxEnergy float64
	Limit     int
}

// Exploration is the result of Explore.
type Exploration struct {
	// Matched counts every product passing the filter; Products holds at
	// most Filter.Limit of them in insertion order.
	Matched  int             `json:"matched"`
	Total    int             `json:"total"`
	Products []*core.Product `json:"products"`
}

// Explore scans the collection for products matching f.
func (a *Analyzer) Explore(ctx context.Context, f Filter) (*Exploration, error) {
	if f.Limit < 1 {
		return nil, ErrInvalidLimit
	}
	const query = "explore"
	a.monitor.Start(query)

	words := tokenizeAndFilter(f.Query)
	result := &Exploration{Products: []*core.Product{}}
	err := a.products.ForEachProduct(ctx, func(p *core.Product) error {
		result.Total++
		if !f.matches(p, words) {
			return nil
		}
		result.Matched++
		if len(result.Products) < f.Limit {
			result.Products = append(result.Products, p)
		}
		return nil
	})
	a.monitor.Finish(query, result.Total, len(result.Products), err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (f *Filter) matches(p *core.Product, words []string) bool {
	if f.Country != "" && p.Countries != f.Country {
		return false
	}
	if f.MaxSugars > 0 && p.Sugars > f.MaxSugars {
		return false
	}
	if f.MaxEnergy > 0 && p.Energy > f.MaxEnergy {
		return false
	}
	if len(words) > 0 && !containsAllWords(p.ProductName, words) {
		return false
	}
	return true
}

// Stop words ignored when matching product names
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "of": true, "with": true,
	"in": true, "for": true, "de": true, "la": true, "le": true, "et": true,
	"du": true, "des": true, "au": true, "aux": true,
}

// tokenizeAndFilter splits text into lowercase words without surrounding
// punctuation, dropping stop words.
func tokenizeAndFilter(text string) []string {
	words := strings.Fields(text)
	filtered := make([]string, 0, len(words))
	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}"))
		if cleaned != "" && !stopWords[cleaned] {
			filtered = append(filtered, cleaned)
		}
	}
	return filtered
}

func containsAllWords(name string, words []string) bool {
	present := make(map[string]bool)
	for _, w := range tokenizeAndFilter(name) {
		present[w] = true
	}
	for _, w := range words {
		if !present[w] {
			return false
		}
	}
	return true
}
