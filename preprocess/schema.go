package preprocess

import (
	"fmt"
	"slices"
	"strings"

	"github.com/poiesic/foodfacts/core"
)

// ColumnKind tells the cleaner how to treat a column's values.
type ColumnKind int

const (
	// KindText columns are kept verbatim; missing values become "".
	KindText ColumnKind = iota + 1
	// KindNumeric columns are coerced to float64; failures become 0.
	KindNumeric
)

// Column is one projected source column.
type Column struct {
	Name     string
	Kind     ColumnKind
	Required bool
}

// Schema is the ordered projection read from the source.
type Schema struct {
	Columns []Column
}

var requiredColumns = []string{
	core.FieldCode,
	core.FieldProductName,
	core.FieldEnergy,
	core.FieldFat,
	core.FieldCarbohydrates,
	core.FieldSugars,
	core.FieldProteins,
}

// DefaultSchema returns the 21 column food product projection. The
// identifier, the name and the five core nutrients are required.
func DefaultSchema() *Schema {
	s := &Schema{}
	for _, name := range core.TextFields {
		s.Columns = append(s.Columns, Column{
			Name:     name,
			Kind:     KindText,
			Required: slices.Contains(requiredColumns, name),
		})
	}
	for _, name := range core.NumericFields {
		s.Columns = append(s.Columns, Column{
			Name:     name,
			Kind:     KindNumeric,
			Required: slices.Contains(requiredColumns, name),
		})
	}
	return s
}

// Index returns the position of the named column, or -1.
func (s *Schema) Index(name string) int {
	return slices.IndexFunc(s.Columns, func(c Column) bool { return c.Name == name })
}

// Binding maps schema columns to positions in source records.
type Binding struct {
	schema    *Schema
	positions []int
	width     int
	absent    []string
}

// Bind resolves every schema column against a header row. Header names are
// compared after trimming surrounding whitespace; when a name repeats, the
// first occurrence wins. A missing required column is an error naming it.
func (s *Schema) Bind(header []string) (*Binding, error) {
	lookup := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if _, dup := lookup[name]; !dup {
			lookup[name] = i
		}
	}

	b := &Binding{
		schema:    s,
		positions: make([]int, len(s.Columns)),
		width:     len(header),
	}
	for i, col := range s.Columns {
		pos, ok := lookup[col.Name]
		if !ok {
			if col.Required {
				return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col.Name)
			}
			pos = -1
			b.absent = append(b.absent, col.Name)
		}
		b.positions[i] = pos
	}
	return b, nil
}

// Absent lists the optional columns the header did not provide.
func (b *Binding) Absent() []string {
	return b.absent
}

// Project selects the schema columns from a source record. Records shorter
// than the header are padded with missing values. Records longer than the
// header are rejected.
func (b *Binding) Project(record []string) ([]string, bool) {
	if len(record) > b.width {
		return nil, false
	}
	values := make([]string, len(b.positions))
	for i, pos := range b.positions {
		if pos >= 0 && pos < len(record) {
			values[i] = record[pos]
		}
	}
	return values, true
}

// naTokens are the cell values read as missing, in addition to blank cells.
var naTokens = map[string]struct{}{
	"#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {},
	"N/A": {}, "NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {},
	"nan": {}, "null": {},
}

// IsMissing reports whether a raw cell value counts as missing: empty,
// whitespace only, or one of the conventional NA tokens.
func IsMissing(v string) bool {
	t := strings.TrimSpace(v)
	if t == "" {
		return true
	}
	_, na := naTokens[t]
	return na
}
