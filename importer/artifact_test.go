package importer

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArtifact(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "artifact.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestArtifactReader_Next(t *testing.T) {
	r, err := NewArtifactReader(strings.NewReader(`[
		{"code": "1", "product_name": "Crème brûlée", "energy_100g": 1200.5},
		{"code": "2", "product_name": "Oat bar", "countries": "France"}
	]`))
	require.NoError(t, err)

	p, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "Crème brûlée", p.ProductName)
	assert.Equal(t, 1200.5, p.Energy)

	p, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, "France", p.Countries)

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, 2, r.Position())
}

func TestArtifactReader_TypeErrorIsPerDocument(t *testing.T) {
	r, err := NewArtifactReader(strings.NewReader(`[
		{"code": "1", "product_name": "A", "energy_100g": "lots"},
		{"code": "2", "product_name": "B"}
	]`))
	require.NoError(t, err)

	_, err = r.Next()
	var docErr *DocumentError
	require.True(t, errors.As(err, &docErr))
	assert.Equal(t, 0, docErr.Position)

	p, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "B", p.ProductName)
}

func TestArtifactReader_NotAnArray(t *testing.T) {
	_, err := NewArtifactReader(strings.NewReader(`{"code": "1"}`))
	assert.ErrorIs(t, err, ErrInvalidArtifact)

	_, err = NewArtifactReader(strings.NewReader(``))
	assert.ErrorIs(t, err, ErrInvalidArtifact)
}

func TestArtifactReader_Truncated(t *testing.T) {
	r, err := NewArtifactReader(strings.NewReader(`[{"code": "1", "product_name": "A"}, {"code": `))
	require.NoError(t, err)

	_, err = r.Next()
	require.NoError(t, err)
	_, err = r.Next()
	assert.ErrorIs(t, err, ErrInvalidArtifact)
}

func TestArtifactReader_Batches(t *testing.T) {
	var b strings.Builder
	b.WriteString("[")
	for i := range 7 {
		if i > 0 {
			b.WriteString(",")
		}
		if i == 4 {
			b.WriteString(`{"product_name": 12}`)
			continue
		}
		b.WriteString(`{"product_name": "p"}`)
	}
	b.WriteString("]")

	r, err := NewArtifactReader(strings.NewReader(b.String()))
	require.NoError(t, err)

	var batches []*Batch
	err = r.Batches(context.Background(), 3, func(batch *Batch) error {
		batches = append(batches, batch)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, batches, 3)

	assert.Equal(t, 0, batches[0].Start)
	assert.Equal(t, []int{0, 1, 2}, batches[0].Positions)

	assert.Equal(t, 3, batches[1].Start)
	assert.Equal(t, []int{3, 5}, batches[1].Positions)
	require.Len(t, batches[1].Failures, 1)
	assert.Equal(t, 4, batches[1].Failures[0].Index)

	assert.Equal(t, 6, batches[2].Start)
	assert.Equal(t, 1, batches[2].Size())
}

func TestArtifactReader_BatchesStopsOnCallbackError(t *testing.T) {
	r, err := NewArtifactReader(strings.NewReader(`[{}, {}, {}]`))
	require.NoError(t, err)

	boom := errors.New("boom")
	calls := 0
	err = r.Batches(context.Background(), 1, func(*Batch) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestArtifactReader_BatchesInvalidSize(t *testing.T) {
	r, err := NewArtifactReader(strings.NewReader(`[]`))
	require.NoError(t, err)
	err = r.Batches(context.Background(), 0, func(*Batch) error { return nil })
	assert.ErrorIs(t, err, ErrInvalidBatchSize)
}

func TestCountArtifact(t *testing.T) {
	count, err := CountArtifact(writeArtifact(t, `[{"a": 1}, {"b": [1, 2]}, {}]`))
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	count, err = CountArtifact(writeArtifact(t, `[]`))
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	_, err = CountArtifact(writeArtifact(t, `[{"a": 1},`))
	assert.ErrorIs(t, err, ErrInvalidArtifact)

	_, err = CountArtifact(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
