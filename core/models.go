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

package core

//go:generate go run ../cmd/musgen

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// ID is a unique identifier for stored documents.
// It is allocated from database sequences.
type ID uint64

// Projected field names. The order of TextFields followed by NumericFields
// is the order used for source lookup and for JSON output.
const (
	FieldCode            = "code"
	FieldProductName     = "product_name"
	FieldBrands          = "brands"
	FieldCategories      = "categories"
	FieldCategoriesTags  = "categories_tags"
	FieldCountries       = "countries"
	FieldCountriesTags   = "countries_tags"
	FieldIngredientsText = "ingredients_text"
	FieldAllergens       = "allergens"
	FieldAdditivesTags   = "additives_tags"
	FieldServingSize     = "serving_size"

	FieldEnergy         = "energy_100g"
	FieldFat            = "fat_100g"
	FieldSaturatedFat   = "saturated-fat_100g"
	FieldCarbohydrates  = "carbohydrates_100g"
	FieldSugars         = "sugars_100g"
	FieldFiber          = "fiber_100g"
	FieldProteins       = "proteins_100g"
	FieldSalt           = "salt_100g"
	FieldSodium         = "sodium_100g"
	FieldNutritionScore = "nutrition-score-fr_100g"
)

var (
	// TextFields lists the free-text fields in projection order.
	TextFields = []string{
		FieldCode, FieldProductName, FieldBrands, FieldCategories, FieldCategoriesTags,
		FieldCountries, FieldCountriesTags, FieldIngredientsText, FieldAllergens,
		FieldAdditivesTags, FieldServingSize,
	}

	// NumericFields lists the nutrition fields in projection order.
	NumericFields = []string{
		FieldEnergy, FieldFat, FieldSaturatedFat, FieldCarbohydrates, FieldSugars,
		FieldFiber, FieldProteins, FieldSalt, FieldSodium, FieldNutritionScore,
	}

	// CoreNutritionFields must have at least one non-missing value for a
	// record to be kept.
	CoreNutritionFields = []string{
		FieldEnergy, FieldFat, FieldCarbohydrates, FieldSugars, FieldProteins,
	}
)

// Projection returns every projected field name in output order.
func Projection() []string {
	return slices.Concat(TextFields, NumericFields)
}

// IsNumericField reports whether name is one of the nutrition fields.
func IsNumericField(name string) bool {
	return slices.Contains(NumericFields, name)
}

// IsProjectedField reports whether name is part of the projection.
func IsProjectedField(name string) bool {
	return IsNumericField(name) || slices.Contains(TextFields, name)
}

// Product is one cleaned food product. Struct field order matches the
// projection so JSON output keys come out in projection order.
type Product struct {
	Id              ID      `json:"-"`
	Code            string  `json:"code"`
	ProductName     string  `json:"product_name"`
	Brands          string  `json:"brands"`
	Categories      string  `json:"categories"`
	CategoriesTags  string  `json:"categories_tags"`
	Countries       string  `json:"countries"`
	CountriesTags   string  `json:"countries_tags"`
	IngredientsText string  `json:"ingredients_text"`
	Allergens       string  `json:"allergens"`
	AdditivesTags   string  `json:"additives_tags"`
	ServingSize     string  `json:"serving_size"`
	Energy          float64 `json:"energy_100g"`
	Fat             float64 `json:"fat_100g"`
	SaturatedFat    float64 `json:"saturated-fat_100g"`
	Carbohydrates   float64 `json:"carbohydrates_100g"`
	Sugars          float64 `json:"sugars_100g"`
	Fiber           float64 `json:"fiber_100g"`
	Proteins        float64 `json:"proteins_100g"`
	Salt            float64 `json:"salt_100g"`
	Sodium          float64 `json:"sodium_100g"`
	NutritionScore  float64 `json:"nutrition-score-fr_100g"`
}

func (p *Product) textRef(field string) *string {
	switch field {
	case FieldCode:
		return &p.Code
	case FieldProductName:
		return &p.ProductName
	case FieldBrands:
		return &p.Brands
	case FieldCategories:
		return &p.Categories
	case FieldCategoriesTags:
		return &p.CategoriesTags
	case FieldCountries:
		return &p.Countries
	case FieldCountriesTags:
		return &p.CountriesTags
	case FieldIngredientsText:
		return &p.IngredientsText
	case FieldAllergens:
		return &p.Allergens
	case FieldAdditivesTags:
		return &p.AdditivesTags
	case FieldServingSize:
		return &p.ServingSize
	}
	return nil
}

func (p *Product) numberRef(field string) *float64 {
	switch field {
	case FieldEnergy:
		return &p.Energy
	case FieldFat:
		return &p.Fat
	case FieldSaturatedFat:
		return &p.SaturatedFat
	case FieldCarbohydrates:
		return &p.Carbohydrates
	case FieldSugars:
		return &p.Sugars
	case FieldFiber:
		return &p.Fiber
	case FieldProteins:
		return &p.Proteins
	case FieldSalt:
		return &p.Salt
	case FieldSodium:
		return &p.Sodium
	case FieldNutritionScore:
		return &p.NutritionScore
	}
	return nil
}

// Text returns the value of a text field.
func (p *Product) Text(field string) (string, bool) {
	if ref := p.textRef(field); ref != nil {
		return *ref, true
	}
	return "", false
}

// SetText assigns a text field. It returns false for unknown fields.
func (p *Product) SetText(field, value string) bool {
	ref := p.textRef(field)
	if ref == nil {
		return false
	}
	*ref = value
	return true
}

// Number returns the value of a nutrition field.
func (p *Product) Number(field string) (float64, bool) {
	if ref := p.numberRef(field); ref != nil {
		return *ref, true
	}
	return 0, false
}

// SetNumber assigns a nutrition field. It returns false for unknown fields.
func (p *Product) SetNumber(field string, value float64) bool {
	ref := p.numberRef(field)
	if ref == nil {
		return false
	}
	*ref = value
	return true
}

// Metric names a nutrition field that aggregation queries can rank by.
type Metric string

const (
	MetricEnergy   Metric = FieldEnergy
	MetricFat      Metric = FieldFat
	MetricSugars   Metric = FieldSugars
	MetricProteins Metric = FieldProteins
	MetricSalt     Metric = FieldSalt
)

// Label returns a short human readable name for the metric.
func (m Metric) Label() string {
	switch m {
	case MetricEnergy:
		return "Energy"
	case MetricFat:
		return "Fat"
	case MetricSugars:
		return "Sugars"
	case MetricProteins:
		return "Proteins"
	case MetricSalt:
		return "Salt"
	}
	return string(m)
}

// Unit returns the display unit of the metric.
func (m Metric) Unit() string {
	if m == MetricEnergy {
		return "kJ"
	}
	return "g"
}

// ParseMetric accepts either the field name or the short label
// ("sugars", "energy_100g"), ignoring case.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case FieldEnergy, "energy":
		return MetricEnergy, nil
	case FieldFat, "fat":
		return MetricFat, nil
	case FieldSugars, "sugars", "sugar":
		return MetricSugars, nil
	case FieldProteins, "proteins", "protein":
		return MetricProteins, nil
	case FieldSalt, "salt":
		return MetricSalt, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedMetric, s)
}

// ImportManifest records the outcome of one bulk load.
type ImportManifest struct {
	RunID       string
	Artifact    string
	Digest      string
	RecordsRead int64
	Inserted    int64
	Failed      int64
	StartedAt   time.Time
	FinishedAt  time.Time
}
