package preprocess

import (
	"iter"
	"log/slog"
	"strings"

	"github.com/poiesic/foodfacts/core"
	"github.com/spf13/cast"
)

// CleanStats counts records surviving each cleaning stage.
type CleanStats struct {
	Rows           int
	AfterName      int
	AfterNutrition int
	AfterDedupe    int
	MissingCode    int
	Coerced        int
}

// Cleaner filters, deduplicates and coerces projected records.
//
// Stages, in order:
//   - drop records whose product name is missing
//   - drop records whose five core nutrients are all missing, judged on the
//     raw values before coercion
//   - keep the first record per identifier; identifiers are compared after
//     trimming whitespace and case-sensitively, and records without an
//     identifier are never merged
//   - coerce nutrition values to float64, using 0 for missing, unparsable
//     or non-finite values, and default missing text to ""
type Cleaner struct {
	schema *Schema
	logger *slog.Logger
	stats  CleanStats

	codeIdx      int
	nameIdx      int
	nutrientIdxs []int
}

// CleanerOption configures a Cleaner.
type CleanerOption func(*Cleaner)

// WithCleanerLogger sets the logger.
func WithCleanerLogger(logger *slog.Logger) CleanerOption {
	return func(c *Cleaner) {
		c.logger = logger
	}
}

// NewCleaner creates a Cleaner for records projected onto schema.
func NewCleaner(schema *Schema, opts ...CleanerOption) *Cleaner {
	c := &Cleaner{
		schema:  schema,
		logger:  slog.Default(),
		codeIdx: schema.Index(core.FieldCode),
		nameIdx: schema.Index(core.FieldProductName),
	}
	for _, field := range core.CoreNutritionFields {
		if idx := schema.Index(field); idx >= 0 {
			c.nutrientIdxs = append(c.nutrientIdxs, idx)
		}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Clean consumes records in a single pass and returns the survivors in
// source order.
func (c *Cleaner) Clean(records iter.Seq[RawRecord]) []*core.Product {
	c.stats = CleanStats{}
	seen := make(map[string]struct{})
	products := make([]*core.Product, 0)

	for rec := range records {
		c.stats.Rows++

		if c.nameIdx < 0 || IsMissing(rec.Values[c.nameIdx]) {
			continue
		}
		c.stats.AfterName++

		if !c.hasNutrition(rec) {
			continue
		}
		c.stats.AfterNutrition++

		code := ""
		if c.codeIdx >= 0 && !IsMissing(rec.Values[c.codeIdx]) {
			code = strings.TrimSpace(rec.Values[c.codeIdx])
		}
		if code == "" {
			c.stats.MissingCode++
		} else {
			if _, dup := seen[code]; dup {
				continue
			}
			seen[code] = struct{}{}
		}
		c.stats.AfterDedupe++

		products = append(products, c.toProduct(rec, code))
	}

	c.logger.Debug("cleaning complete",
		"rows", c.stats.Rows,
		"after_name", c.stats.AfterName,
		"after_nutrition", c.stats.AfterNutrition,
		"after_dedupe", c.stats.AfterDedupe)
	return products
}

func (c *Cleaner) hasNutrition(rec RawRecord) bool {
	for _, idx := range c.nutrientIdxs {
		if !IsMissing(rec.Values[idx]) {
			return true
		}
	}
	return false
}

func (c *Cleaner) toProduct(rec RawRecord, code string) *core.Product {
	p := &core.Product{}
	for i, col := range c.schema.Columns {
		raw := rec.Values[i]
		switch col.Kind {
		case KindNumeric:
			v, ok := CoerceNumber(raw)
			if !ok && !IsMissing(raw) {
				c.stats.Coerced++
			}
			p.SetNumber(col.Name, v)
		default:
			if IsMissing(raw) {
				raw = ""
			}
			p.SetText(col.Name, raw)
		}
	}
	p.Code = code
	return p
}

// Stats returns the stage counters of the last Clean call.
func (c *Cleaner) Stats() CleanStats {
	return c.stats
}

// CoerceNumber parses a raw cell as float64. It returns 0 and false for
// missing, unparsable or non-finite values.
func CoerceNumber(raw string) (float64, bool) {
	if IsMissing(raw) {
		return 0, false
	}
	v, err := cast.ToFloat64E(strings.TrimSpace(raw))
	if err != nil || !core.IsFinite(v) {
		return 0, false
	}
	return v, true
}
