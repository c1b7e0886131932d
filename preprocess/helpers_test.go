package preprocess

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/poiesic/foodfacts/core"
	"github.com/stretchr/testify/require"
)

// row builds one tab separated line in projection order.
func row(values map[string]string) string {
	cells := make([]string, 0, len(core.Projection()))
	for _, field := range core.Projection() {
		cells = append(cells, values[field])
	}
	return strings.Join(cells, "\t")
}

func tsv(rows ...map[string]string) string {
	lines := []string{strings.Join(core.Projection(), "\t")}
	for _, r := range rows {
		lines = append(lines, row(r))
	}
	return strings.Join(lines, "\n") + "\n"
}

func writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.tsv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func cleanString(t *testing.T, content string) ([]*core.Product, *Cleaner, *Reader) {
	t.Helper()
	schema := DefaultSchema()
	r, err := NewReader(strings.NewReader(content), schema)
	require.NoError(t, err)
	c := NewCleaner(schema)
	products := c.Clean(r.Records())
	require.NoError(t, r.Err())
	return products, c, r
}

func numbered(n int) []*core.Product {
	out := make([]*core.Product, n)
	for i := range out {
		out[i] = &core.Product{Code: strconv.Itoa(i), ProductName: "p" + strconv.Itoa(i)}
	}
	return out
}
