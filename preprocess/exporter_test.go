package preprocess

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/foodfacts/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON_Shape(t *testing.T) {
	products := []*core.Product{
		{Id: 9, Code: "1", ProductName: "Crème <brûlée>", Countries: "France", Sugars: 12.5},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, products, 2))
	out := buf.String()

	assert.Contains(t, out, "Crème <brûlée>", "non-ASCII and HTML characters are not escaped")
	assert.Contains(t, out, `"sugars_100g": 12.5`)
	assert.Contains(t, out, `"energy_100g": 0`)
	assert.Contains(t, out, `"brands": ""`)
	assert.NotContains(t, out, "null")
	assert.NotContains(t, out, `"Id"`)

	// keys appear in projection order
	last := -1
	for _, field := range core.Projection() {
		idx := strings.Index(out, `"`+field+`"`)
		require.GreaterOrEqual(t, idx, 0, field)
		assert.Greater(t, idx, last, field)
		last = idx
	}

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Len(t, decoded[0], 21)
}

func TestWriteJSON_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil, 2))
	assert.Equal(t, "[]\n", buf.String())
}

func TestExport_AtomicWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "cleaned.json")

	size, err := Export(path, numbered(3), 2)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, info.Size(), size)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files are left behind")
}

func TestExport_FailureLeavesExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cleaned.json")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0644))

	// a directory at the target path makes the rename fail
	blocked := filepath.Join(dir, "blocked")
	require.NoError(t, os.MkdirAll(filepath.Join(blocked, "child"), 0755))

	_, err := Export(blocked, numbered(2), 2)
	require.ErrorIs(t, err, ErrExportFailed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestExport_InvalidDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	_, err := Export(filepath.Join(file, "cleaned.json"), numbered(1), 2)
	assert.ErrorIs(t, err, ErrExportFailed)
}
