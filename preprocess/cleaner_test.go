package preprocess

import (
	"math"
	"testing"

	"github.com/poiesic/foodfacts/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean_DuplicateIdentifierKeepsFirst(t *testing.T) {
	products, c, _ := cleanString(t, tsv(
		map[string]string{"code": "ABC", "product_name": "X", "fat_100g": "1"},
		map[string]string{"code": "ABC", "product_name": "Y", "fat_100g": "2"},
	))

	require.Len(t, products, 1)
	assert.Equal(t, "ABC", products[0].Code)
	assert.Equal(t, "X", products[0].ProductName)
	assert.Equal(t, 2, c.Stats().AfterNutrition)
	assert.Equal(t, 1, c.Stats().AfterDedupe)
}

func TestClean_DropsRowWithoutNutrition(t *testing.T) {
	products, c, _ := cleanString(t, tsv(
		map[string]string{"code": "1", "product_name": "Widget", "salt_100g": "1", "fiber_100g": "3"},
	))

	assert.Empty(t, products)
	assert.Equal(t, 1, c.Stats().AfterName)
	assert.Equal(t, 0, c.Stats().AfterNutrition)
}

func TestClean_CoercesAfterPresenceFilter(t *testing.T) {
	products, _, _ := cleanString(t, tsv(
		map[string]string{"code": "1", "product_name": "Bar", "sugars_100g": "12.5", "energy_100g": ""},
	))

	require.Len(t, products, 1)
	assert.Equal(t, 12.5, products[0].Sugars)
	assert.Equal(t, 0.0, products[0].Energy)
}

func TestClean_NameFilter(t *testing.T) {
	products, c, _ := cleanString(t, tsv(
		map[string]string{"code": "1", "product_name": "", "fat_100g": "1"},
		map[string]string{"code": "2", "product_name": "   ", "fat_100g": "1"},
		map[string]string{"code": "3", "product_name": "NaN", "fat_100g": "1"},
		map[string]string{"code": "4", "product_name": "Kept", "fat_100g": "1"},
	))

	require.Len(t, products, 1)
	assert.Equal(t, "Kept", products[0].ProductName)
	assert.Equal(t, 4, c.Stats().Rows)
	assert.Equal(t, 1, c.Stats().AfterName)
}

func TestClean_MissingIdentifierNeverMerged(t *testing.T) {
	products, c, _ := cleanString(t, tsv(
		map[string]string{"code": "", "product_name": "A", "fat_100g": "1"},
		map[string]string{"code": "", "product_name": "B", "fat_100g": "1"},
		map[string]string{"code": "NA", "product_name": "C", "fat_100g": "1"},
	))

	require.Len(t, products, 3)
	for _, p := range products {
		assert.Equal(t, "", p.Code)
	}
	assert.Equal(t, 3, c.Stats().MissingCode)
}

func TestClean_IdentifierComparedTrimmedAndCaseSensitive(t *testing.T) {
	products, _, _ := cleanString(t, tsv(
		map[string]string{"code": " abc ", "product_name": "first", "fat_100g": "1"},
		map[string]string{"code": "abc", "product_name": "trimmed duplicate", "fat_100g": "1"},
		map[string]string{"code": "ABC", "product_name": "different case", "fat_100g": "1"},
	))

	require.Len(t, products, 2)
	assert.Equal(t, "abc", products[0].Code)
	assert.Equal(t, "first", products[0].ProductName)
	assert.Equal(t, "ABC", products[1].Code)
}

func TestClean_DedupeAppliesAfterFilters(t *testing.T) {
	products, _, _ := cleanString(t, tsv(
		map[string]string{"code": "7", "product_name": "no nutrition"},
		map[string]string{"code": "7", "product_name": "has nutrition", "proteins_100g": "3"},
	))

	require.Len(t, products, 1)
	assert.Equal(t, "has nutrition", products[0].ProductName)
}

func TestClean_TextDefaultingAndNumericCoercion(t *testing.T) {
	products, c, _ := cleanString(t, tsv(
		map[string]string{
			"code":          "1",
			"product_name":  "Bar",
			"brands":        "NaN",
			"countries":     "France",
			"fat_100g":      "abc",
			"sugars_100g":   " 3.25 ",
			"salt_100g":     "inf",
			"sodium_100g":   "1e999",
			"proteins_100g": "-2",
		},
	))

	require.Len(t, products, 1)
	p := products[0]
	assert.Equal(t, "", p.Brands)
	assert.Equal(t, "France", p.Countries)
	assert.Equal(t, "", p.IngredientsText)
	assert.Equal(t, 0.0, p.Fat)
	assert.Equal(t, 3.25, p.Sugars)
	assert.Equal(t, 0.0, p.Salt)
	assert.Equal(t, 0.0, p.Sodium)
	assert.Equal(t, -2.0, p.Proteins)
	assert.Equal(t, 3, c.Stats().Coerced)
}

func TestClean_OutputInvariants(t *testing.T) {
	var rows []map[string]string
	for i := 0; i < 50; i++ {
		r := map[string]string{
			"code":         itoaMod(i, 20),
			"product_name": "name",
			"energy_100g":  "x",
		}
		if i%7 == 0 {
			r["product_name"] = ""
		}
		if i%5 == 0 {
			r["code"] = ""
		}
		rows = append(rows, r)
	}
	products, _, _ := cleanString(t, tsv(rows...))

	seen := map[string]bool{}
	for _, p := range products {
		assert.NotEmpty(t, p.ProductName)
		if p.Code != "" {
			assert.False(t, seen[p.Code], "duplicate code %s", p.Code)
			seen[p.Code] = true
		}
		for _, field := range core.NumericFields {
			v, _ := p.Number(field)
			assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
		}
	}
}

func TestCoerceNumber(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"12.5", 12.5, true},
		{" 7 ", 7, true},
		{"1e3", 1000, true},
		{"", 0, false},
		{"NaN", 0, false},
		{"-inf", 0, false},
		{"12,5", 0, false},
	}
	for _, tt := range tests {
		got, ok := CoerceNumber(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
	}
}

func itoaMod(i, m int) string {
	return string(rune('a' + i%m))
}
