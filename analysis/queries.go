// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package analysis

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/poiesic/foodfacts/core"
	"github.com/poiesic/foodfacts/storage"
)

// CountryAverage is the mean of a metric over one countries value.
type CountryAverage struct {
	Country string  `json:"country"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// CountryCount is the number of products for one countries value.
type CountryCount struct {
	Country string `json:"country"`
	Count   int    `json:"count"`
}

// TopProduct is one row of a ranking query.
type TopProduct struct {
	ProductName string  `json:"product_name"`
	Brands      string  `json:"brands"`
	Countries   string  `json:"countries"`
	Value       float64 `json:"value"`
}

// Summary holds collection wide statistics.
type Summary struct {
	Total       int            `json:"total"`
	AvgEnergy   float64        `json:"avg_energy"`
	AvgFat      float64        `json:"avg_fat"`
	AvgSugars   float64        `json:"avg_sugars"`
	AvgProteins float64        `json:"avg_proteins"`
	MaxEnergy   float64        `json:"max_energy"`
	MaxSugars   float64        `json:"max_sugars"`
	Countries   []CountryCount `json:"top_countries"`
}

// AverageByCountry groups products with a non-empty countries value and a
// metric that passes the filter, and returns the limit groups with the
// highest average.
func (a *Analyzer) AverageByCountry(ctx context.Context, metric core.Metric, limit int) ([]CountryAverage, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	query := "average_by_country:" + string(metric)
	a.monitor.Start(query)

	type acc struct {
		sum   float64
		count int
	}
	groups := make(map[string]*acc)
	scanned := 0
	err := a.products.ForEachProduct(ctx, func(p *core.Product) error {
		scanned++
		if p.Countries == "" {
			return nil
		}
		v, _ := p.Number(string(metric))
		if !a.accepts(metric, v) {
			return nil
		}
		g := groups[p.Countries]
		if g == nil {
			g = &acc{}
			groups[p.Countries] = g
		}
		g.sum += v
		g.count++
		return nil
	})
	if err != nil {
		a.monitor.Finish(query, scanned, 0, err)
		return nil, err
	}

	rows := make([]CountryAverage, 0, len(groups))
	for country, g := range groups {
		rows = append(rows, CountryAverage{Country: country, Average: g.sum / float64(g.count), Count: g.count})
	}
	slices.SortFunc(rows, func(x, y CountryAverage) int {
		if c := cmp.Compare(y.Average, x.Average); c != 0 {
			return c
		}
		return strings.Compare(x.Country, y.Country)
	})
	rows = rows[:min(limit, len(rows))]

	a.monitor.Finish(query, scanned, len(rows), nil)
	a.logger.Debug("average by country", "metric", metric, "groups", len(groups), "scanned", scanned)
	return rows, nil
}

// ProductCountByCountry returns the limit countries values with the most
// products. Products with an empty countries value are not counted.
func (a *Analyzer) ProductCountByCountry(ctx context.Context, limit int) ([]CountryCount, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	const query = "product_count_by_country"
	a.monitor.Start(query)

	counts := make(map[string]int)
	scanned := 0
	err := a.products.ForEachProduct(ctx, func(p *core.Product) error {
		scanned++
		if p.Countries != "" {
			counts[p.Countries]++
		}
		return nil
	})
	if err != nil {
		a.monitor.Finish(query, scanned, 0, err)
		return nil, err
	}

	rows := rankCounts(counts, limit)
	a.monitor.Finish(query, scanned, len(rows), nil)
	return rows, nil
}

func rankCounts(counts map[string]int, limit int) []CountryCount {
	rows := make([]CountryCount, 0, len(counts))
	for country, count := range counts {
		rows = append(rows, CountryCount{Country: country, Count: count})
	}
	slices.SortFunc(rows, func(x, y CountryCount) int {
		if c := cmp.Compare(y.Count, x.Count); c != 0 {
			return c
		}
		return strings.Compare(x.Country, y.Country)
	})
	return rows[:min(limit, len(rows))]
}

// TopProducts returns the limit products with the highest metric value.
// Equal values are ordered by most recently inserted first.
func (a *Analyzer) TopProducts(ctx context.Context, metric core.Metric, limit int) ([]TopProduct, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	query := "top_products:" + string(metric)
	a.monitor.Start(query)

	rows, scanned, err := a.topFromIndex(ctx, metric, limit)
	if errors.Is(err, storage.ErrIndexNotFound) {
		a.logger.Debug("no index, scanning collection", "field", metric)
		rows, scanned, err = a.topFromScan(ctx, metric, limit)
	}
	a.monitor.Finish(query, scanned, len(rows), err)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (a *Analyzer) topFromIndex(ctx context.Context, metric core.Metric, limit int) ([]TopProduct, int, error) {
	rows := make([]TopProduct, 0, limit)
	scanned := 0
	err := a.products.ScanIndexDescending(ctx, string(metric), func(p *core.Product) bool {
		scanned++
		v, _ := p.Number(string(metric))
		if v <= 0 {
			return false
		}
		if a.accepts(metric, v) {
			rows = append(rows, topRow(p, v))
		}
		return len(rows) < limit
	})
	return rows, scanned, err
}

func (a *Analyzer) topFromScan(ctx context.Context, metric core.Metric, limit int) ([]TopProduct, int, error) {
	type hit struct {
		id    core.ID
		value float64
		row   TopProduct
	}
	var hits []hit
	scanned := 0
	err := a.products.ForEachProduct(ctx, func(p *core.Product) error {
		scanned++
		v, _ := p.Number(string(metric))
		if a.accepts(metric, v) {
			hits = append(hits, hit{id: p.Id, value: v, row: topRow(p, v)})
		}
		return nil
	})
	if err != nil {
		return nil, scanned, err
	}

	slices.SortFunc(hits, func(x, y hit) int {
		if c := cmp.Compare(y.value, x.value); c != 0 {
			return c
		}
		return cmp.Compare(y.id, x.id)
	})
	hits = hits[:min(limit, len(hits))]
	rows := make([]TopProduct, len(hits))
	for i, h := range hits {
		rows[i] = h.row
	}
	return rows, scanned, nil
}

func topRow(p *core.Product, v float64) TopProduct {
	return TopProduct{
		ProductName: p.ProductName,
		Brands:      p.Brands,
		Countries:   p.Countries,
		Value:       v,
	}
}

// Summary computes averages over every product, the energy and sugar
// maxima, and the topN countries by product count.
func (a *Analyzer) Summary(ctx context.Context, topN int) (*Summary, error) {
	if topN < 1 {
		return nil, ErrInvalidLimit
	}
	const query = "summary"
	a.monitor.Start(query)

	s := &Summary{}
	counts := make(map[string]int)
	err := a.products.ForEachProduct(ctx, func(p *core.Product) error {
		if s.Total == 0 {
			s.MaxEnergy = p.Energy
			s.MaxSugars = p.Sugars
		}
		s.Total++
		s.AvgEnergy += p.Energy
		s.AvgFat += p.Fat
		s.AvgSugars += p.Sugars
		s.AvgProteins += p.Proteins
		s.MaxEnergy = max(s.MaxEnergy, p.Energy)
		s.MaxSugars = max(s.MaxSugars, p.Sugars)
		if p.Countries != "" {
			counts[p.Countries]++
		}
		return nil
	})
	if err != nil {
		a.monitor.Finish(query, s.Total, 0, err)
		return nil, err
	}

	if s.Total > 0 {
		n := float64(s.Total)
		s.AvgEnergy /= n
		s.AvgFat /= n
		s.AvgSugars /= n
		s.AvgProteins /= n
	}
	s.Countries = rankCounts(counts, topN)
	a.monitor.Finish(query, s.Total, 1, nil)
	return s, nil
}
