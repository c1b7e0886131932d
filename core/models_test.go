package core

import (
	"errors"
	"strings"
	"testing"
)

func TestProjection_Order(t *testing.T) {
	got := strings.Join(Projection(), ",")
	want := "code,product_name,brands,categories,categories_tags,countries,countries_tags," +
		"ingredients_text,allergens,additives_tags,serving_size,energy_100g,fat_100g," +
		"saturated-fat_100g,carbohydrates_100g,sugars_100g,fiber_100g,proteins_100g," +
		"salt_100g,sodium_100g,nutrition-score-fr_100g"
	if got != want {
		t.Errorf("Projection() = %s, want %s", got, want)
	}
}

func TestProduct_FieldAccessors(t *testing.T) {
	var p Product
	for _, field := range TextFields {
		if !p.SetText(field, "v-"+field) {
			t.Fatalf("SetText(%q) returned false", field)
		}
	}
	for i, field := range NumericFields {
		if !p.SetNumber(field, float64(i)+0.5) {
			t.Fatalf("SetNumber(%q) returned false", field)
		}
	}

	if p.Countries != "v-countries" {
		t.Errorf("Countries = %q", p.Countries)
	}
	if p.NutritionScore != 9.5 {
		t.Errorf("NutritionScore = %v", p.NutritionScore)
	}

	if _, ok := p.Text(FieldEnergy); ok {
		t.Errorf("Text() accepted a numeric field")
	}
	if _, ok := p.Number(FieldBrands); ok {
		t.Errorf("Number() accepted a text field")
	}
	if p.SetText("unknown", "x") || p.SetNumber("unknown", 1) {
		t.Errorf("setters accepted an unknown field")
	}
}

func TestIsNumericField(t *testing.T) {
	tests := []struct {
		field string
		want  bool
	}{
		{FieldEnergy, true},
		{FieldSaturatedFat, true},
		{FieldNutritionScore, true},
		{FieldCode, false},
		{"energy", false},
	}
	for _, tt := range tests {
		if got := IsNumericField(tt.field); got != tt.want {
			t.Errorf("IsNumericField(%q) = %v, want %v", tt.field, got, tt.want)
		}
	}
}

func TestParseMetric(t *testing.T) {
	tests := []struct {
		in      string
		want    Metric
		wantErr bool
	}{
		{"energy_100g", MetricEnergy, false},
		{"Sugars", MetricSugars, false},
		{" fat ", MetricFat, false},
		{"protein", MetricProteins, false},
		{"salt_100g", MetricSalt, false},
		{"fiber_100g", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMetric(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnsupportedMetric) {
				t.Errorf("ParseMetric(%q) error = %v, want ErrUnsupportedMetric", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseMetric(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestMetric_Unit(t *testing.T) {
	if MetricEnergy.Unit() != "kJ" {
		t.Errorf("energy unit = %s", MetricEnergy.Unit())
	}
	if MetricSugars.Unit() != "g" {
		t.Errorf("sugars unit = %s", MetricSugars.Unit())
	}
}

func TestDigest(t *testing.T) {
	a, err := Digest(strings.NewReader("[]"))
	if err != nil {
		t.Fatalf("Digest() error = %v", err)
	}
	b, _ := Digest(strings.NewReader("[]"))
	c, _ := Digest(strings.NewReader("[ ]"))

	if a != b {
		t.Errorf("Digest() not deterministic: %s vs %s", a, b)
	}
	if a == c {
		t.Errorf("Digest() produced same digest for different content")
	}
	if len(a) != 64 {
		t.Errorf("Digest() length = %d, want 64", len(a))
	}
}
