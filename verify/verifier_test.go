package verify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/foodfacts/core"
	"github.com/poiesic/foodfacts/importer"
	"github.com/poiesic/foodfacts/preprocess"
	"github.com/poiesic/foodfacts/storage"
	"github.com/poiesic/foodfacts/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (storage.ProductRepository, storage.ManifestRepository) {
	t.Helper()
	products, manifests, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		products.Close()
		manifests.Close()
		backend.Close()
	})
	return products, manifests
}

func writeArtifact(t *testing.T, n int) string {
	t.Helper()
	products := make([]*core.Product, n)
	for i := range products {
		products[i] = &core.Product{Code: fmt.Sprint(i), ProductName: fmt.Sprintf("Product %d", i)}
	}
	path := filepath.Join(t.TempDir(), "artifact.json")
	_, err := preprocess.Export(path, products, 2)
	require.NoError(t, err)
	return path
}

func load(t *testing.T, products storage.ProductRepository, manifests storage.ManifestRepository, path string) {
	t.Helper()
	cfg := importer.DefaultConfig()
	cfg.DropExisting = true
	im, err := importer.New(products, manifests, cfg)
	require.NoError(t, err)
	defer im.Release()
	_, err = im.Run(context.Background(), path)
	require.NoError(t, err)
}

func TestVerify_Match(t *testing.T) {
	products, manifests := newStore(t)
	path := writeArtifact(t, 25)
	load(t, products, manifests, path)

	v, err := NewVerifier(products, manifests)
	require.NoError(t, err)
	report, err := v.Verify(context.Background(), path)
	require.NoError(t, err)

	assert.True(t, report.Match())
	assert.True(t, report.DigestMatch())
	assert.NoError(t, report.Err())
	assert.Equal(t, 25, report.ArtifactCount)
	assert.Greater(t, report.SizeBytes, int64(0))

	var out strings.Builder
	require.NoError(t, report.Write(&out))
	assert.Contains(t, out.String(), "Match: YES")
	assert.Contains(t, out.String(), "Matches import "+report.Manifest.RunID)
}

func TestVerify_MissingInStore(t *testing.T) {
	products, manifests := newStore(t)
	path := writeArtifact(t, 5)
	load(t, products, manifests, path)

	bigger := writeArtifact(t, 1500)
	v, err := NewVerifier(products, manifests)
	require.NoError(t, err)
	report, err := v.Verify(context.Background(), bigger)
	require.NoError(t, err)

	assert.False(t, report.Match())
	assert.Equal(t, -1495, report.Difference())
	assert.ErrorIs(t, report.Err(), ErrCountMismatch)

	var out strings.Builder
	require.NoError(t, report.Write(&out))
	assert.Contains(t, out.String(), "Missing in store: 1,495 records")
}

func TestVerify_DigestChanged(t *testing.T) {
	products, manifests := newStore(t)
	path := writeArtifact(t, 3)
	load(t, products, manifests, path)

	// same count, different content
	require.NoError(t, os.WriteFile(path, []byte(`[{"product_name":"x"},{"product_name":"y"},{"product_name":"z"}]`), 0o644))

	v, err := NewVerifier(products, manifests)
	require.NoError(t, err)
	report, err := v.Verify(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, report.Match())
	assert.False(t, report.DigestMatch())
	assert.ErrorIs(t, report.Err(), ErrDigestMismatch)
}

func TestVerify_NoManifest(t *testing.T) {
	products, manifests := newStore(t)
	path := writeArtifact(t, 0)

	v, err := NewVerifier(products, manifests)
	require.NoError(t, err)
	report, err := v.Verify(context.Background(), path)
	require.NoError(t, err)
	assert.Nil(t, report.Manifest)
	assert.NoError(t, report.Err())

	var out strings.Builder
	require.NoError(t, report.Write(&out))
	assert.Contains(t, out.String(), "No import recorded")
}

func TestVerify_Errors(t *testing.T) {
	products, _ := newStore(t)

	_, err := NewVerifier(nil, nil)
	assert.ErrorIs(t, err, ErrProductRepositoryRequired)

	v, err := NewVerifier(products, nil)
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"code": 1}`), 0o644))
	_, err = v.Verify(context.Background(), bad)
	assert.ErrorIs(t, err, importer.ErrInvalidArtifact)
}
