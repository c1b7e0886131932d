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

package dashboard

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/poiesic/foodfacts/analysis"
	"github.com/poiesic/foodfacts/core"
	"github.com/spf13/cast"
)

// errResponse is the JSON body of a failed request.
type errResponse struct {
	Error string `json:"error"`
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrInvalidParameter),
		errors.Is(err, core.ErrUnsupportedMetric),
		errors.Is(err, analysis.ErrInvalidLimit):
		status = http.StatusBadRequest
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	render.Status(r, status)
	render.JSON(w, r, errResponse{Error: err.Error()})
}

// intParam reads a positive decimal integer. Leading zeros are dropped so
// cast does not read the value as octal; signs and base prefixes are
// rejected.
func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	digits := strings.TrimLeft(raw, "0")
	if digits == "" || strings.TrimLeft(digits, "0123456789") != "" {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidParameter, name, raw)
	}
	v, err := cast.ToIntE(digits)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidParameter, name, raw)
	}
	return v, nil
}

func floatParam(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := cast.ToFloat64E(raw)
	if err != nil || !core.IsFinite(v) || v < 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidParameter, name, raw)
	}
	return v, nil
}

type healthResponse struct {
	Status    string `json:"status"`
	Documents int    `json:"documents"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	count, err := s.products.CountProducts(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, healthResponse{Status: "ok", Documents: count})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.analyzer.Summary(r.Context(), 5)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, summary)
}

type countryAveragesResponse struct {
	Metric core.Metric               `json:"metric"`
	Unit   string                    `json:"unit"`
	Rows   []analysis.CountryAverage `json:"rows"`
}

func (s *Server) handleCountryAverages(w http.ResponseWriter, r *http.Request) {
	metric, err := core.ParseMetric(chi.URLParam(r, "metric"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	limit, err := intParam(r, "limit", s.cfg.Limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	rows, err := s.analyzer.AverageByCountry(r.Context(), metric, limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, countryAveragesResponse{Metric: metric, Unit: metric.Unit(), Rows: rows})
}

func (s *Server) handleCountryCounts(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", 10)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	rows, err := s.analyzer.ProductCountByCountry(r.Context(), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, rows)
}

// handleCountryProfiles compares the countries named by repeated country
// parameters, or the five largest countries when none are given.
func (s *Server) handleCountryProfiles(w http.ResponseWriter, r *http.Request) {
	countries := r.URL.Query()["country"]
	if len(countries) == 0 {
		top, err := s.analyzer.ProductCountByCountry(r.Context(), 5)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		for _, c := range top {
			countries = append(countries, c.Country)
		}
	}
	profiles, err := s.analyzer.CountryProfiles(r.Context(), countries...)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, profiles)
}

type topProductsResponse struct {
	Metric core.Metric           `json:"metric"`
	Unit   string                `json:"unit"`
	Rows   []analysis.TopProduct `json:"rows"`
}

func (s *Server) handleTopProducts(w http.ResponseWriter, r *http.Request) {
	metric, err := core.ParseMetric(chi.URLParam(r, "metric"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	limit, err := intParam(r, "limit", s.cfg.TopN)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	rows, err := s.analyzer.TopProducts(r.Context(), metric, limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, topProductsResponse{Metric: metric, Unit: metric.Unit(), Rows: rows})
}

func filterParams(r *http.Request, defLimit int) (analysis.Filter, error) {
	f := analysis.Filter{
		Country: r.URL.Query().Get("country"),
		Query:   r.URL.Query().Get("q"),
	}
	var err error
	if f.MaxSugars, err = floatParam(r, "max_sugars"); err != nil {
		return f, err
	}
	if f.MaxEnergy, err = floatParam(r, "max_energy"); err != nil {
		return f, err
	}
	if f.Limit, err = intParam(r, "limit", defLimit); err != nil {
		return f, err
	}
	return f, nil
}

func (s *Server) handleExplore(w http.ResponseWriter, r *http.Request) {
	f, err := filterParams(r, 100)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	result, err := s.analyzer.Explore(r.Context(), f)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

var exportColumns = []string{
	core.FieldProductName, core.FieldBrands, core.FieldCountries,
	core.FieldEnergy, core.FieldSugars, core.FieldFat, core.FieldProteins,
}

// handleExportCSV writes the filtered products as a CSV download.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	f, err := filterParams(r, 10000)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	result, err := s.analyzer.Explore(r.Context(), f)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="filtered_food_data.csv"`)
	cw := csv.NewWriter(w)
	cw.Write(exportColumns)
	row := make([]string, len(exportColumns))
	for _, p := range result.Products {
		for i, col := range exportColumns {
			if v, ok := p.Number(col); ok {
				row[i] = strconv.FormatFloat(v, 'f', -1, 64)
			} else {
				row[i], _ = p.Text(col)
			}
		}
		cw.Write(row)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		s.logger.Warn("csv export interrupted", "error", err)
	}
}
