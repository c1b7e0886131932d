package importer

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/foodfacts/core"
	"github.com/poiesic/foodfacts/preprocess"
	"github.com/poiesic/foodfacts/storage"
	"github.com/poiesic/foodfacts/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (storage.ProductRepository, storage.ManifestRepository) {
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

func exportProducts(t *testing.T, n int) string {
	t.Helper()
	products := make([]*core.Product, n)
	for i := range products {
		products[i] = &core.Product{
			Code:        fmt.Sprintf("%08d", i),
			ProductName: fmt.Sprintf("Product %d", i),
			Countries:   []string{"France", "Germany", "Spain"}[i%3],
			Energy:      float64(100 + i),
			Sugars:      float64(i % 50),
		}
	}
	path := filepath.Join(t.TempDir(), "artifact.json")
	_, err := preprocess.Export(path, products, 0)
	require.NoError(t, err)
	return path
}

func newTestImporter(t *testing.T, products storage.ProductRepository, manifests storage.ManifestRepository, cfg Config, opts ...Option) *Importer {
	t.Helper()
	im, err := New(products, manifests, cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(im.Release)
	return im
}

func TestNew_RequiresRepositories(t *testing.T) {
	products, manifests := newTestStore(t)

	_, err := New(nil, manifests, DefaultConfig())
	assert.ErrorIs(t, err, ErrProductRepositoryRequired)

	_, err = New(products, nil, DefaultConfig())
	assert.ErrorIs(t, err, ErrManifestRepositoryRequired)

	cfg := DefaultConfig()
	cfg.BatchSize = 0
	_, err = New(products, manifests, cfg)
	assert.ErrorIs(t, err, ErrInvalidBatchSize)

	cfg = DefaultConfig()
	cfg.MaxAttempts = -1
	_, err = New(products, manifests, cfg)
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
}

func TestRun_LoadsArtifact(t *testing.T) {
	ctx := context.Background()
	products, manifests := newTestStore(t)
	path := exportProducts(t, 2500)

	var progress bytes.Buffer
	cfg := DefaultConfig()
	cfg.BatchSize = 1000
	im := newTestImporter(t, products, manifests, cfg, WithPoolSize(4), WithProgress(&progress))

	result, err := im.Run(ctx, path)
	require.NoError(t, err)
	assert.False(t, result.Skipped)

	m := result.Manifest
	assert.EqualValues(t, 2500, m.RecordsRead)
	assert.EqualValues(t, 2500, m.Inserted)
	assert.EqualValues(t, 0, m.Failed)
	assert.NotEmpty(t, m.RunID)
	assert.True(t, filepath.IsAbs(m.Artifact))

	digest, err := core.DigestFile(path)
	require.NoError(t, err)
	assert.Equal(t, digest, m.Digest)

	count, err := products.CountProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2500, count)
	assert.Equal(t, 2500, result.Stats.Documents)
	require.NotNil(t, result.Sample)
	assert.NoError(t, result.IndexErr)
	assert.ElementsMatch(t, DefaultConfig().IndexFields, result.Indexes)

	saved, err := manifests.LoadManifest(ctx)
	require.NoError(t, err)
	assert.Equal(t, m.RunID, saved.RunID)
	assert.Equal(t, m.Digest, saved.Digest)

	assert.Contains(t, progress.String(), "2,500/2,500")
}

func TestRun_UnorderedFailures(t *testing.T) {
	ctx := context.Background()
	products, manifests := newTestStore(t)
	path := writeArtifact(t, `[
		{"code": "1", "product_name": "Kept"},
		{"code": "2", "product_name": "   "},
		{"code": "3", "product_name": "Bad energy", "energy_100g": "high"},
		{"code": "4", "product_name": "Also kept"}
	]`)

	cfg := DefaultConfig()
	cfg.BatchSize = 2
	im := newTestImporter(t, products, manifests, cfg)

	result, err := im.Run(ctx, path)
	require.NoError(t, err)

	assert.EqualValues(t, 4, result.Manifest.RecordsRead)
	assert.EqualValues(t, 2, result.Manifest.Inserted)
	assert.EqualValues(t, 2, result.Manifest.Failed)

	positions := make([]int, 0, len(result.Failures))
	for _, f := range result.Failures {
		positions = append(positions, f.Index)
	}
	assert.ElementsMatch(t, []int{1, 2}, positions)
}

func TestRun_SkipsNonEmptyCollection(t *testing.T) {
	ctx := context.Background()
	products, manifests := newTestStore(t)
	path := exportProducts(t, 10)

	im := newTestImporter(t, products, manifests, DefaultConfig())
	_, err := im.Run(ctx, path)
	require.NoError(t, err)

	result, err := im.Run(ctx, path)
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Equal(t, 10, result.Existing)

	count, err := products.CountProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, count)
}

func TestRun_DropExisting(t *testing.T) {
	ctx := context.Background()
	products, manifests := newTestStore(t)

	im := newTestImporter(t, products, manifests, DefaultConfig())
	_, err := im.Run(ctx, exportProducts(t, 10))
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.DropExisting = true
	im = newTestImporter(t, products, manifests, cfg)
	result, err := im.Run(ctx, exportProducts(t, 4))
	require.NoError(t, err)
	assert.False(t, result.Skipped)

	count, err := products.CountProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	// index entries from the first load must be gone
	var energies []float64
	err = products.ScanIndexDescending(ctx, core.FieldEnergy, func(p *core.Product) bool {
		energies = append(energies, p.Energy)
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{103, 102, 101, 100}, energies)
}

func TestRun_InvalidArtifact(t *testing.T) {
	products, manifests := newTestStore(t)
	im := newTestImporter(t, products, manifests, DefaultConfig())

	_, err := im.Run(context.Background(), writeArtifact(t, `{"not": "an array"}`))
	assert.ErrorIs(t, err, ErrInvalidArtifact)

	_, err = manifests.LoadManifest(context.Background())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRun_IndexFailureIsWarning(t *testing.T) {
	products, manifests := newTestStore(t)
	cfg := DefaultConfig()
	cfg.IndexFields = []string{"no_such_field"}
	im := newTestImporter(t, products, manifests, cfg)

	result, err := im.Run(context.Background(), exportProducts(t, 3))
	require.NoError(t, err)
	assert.ErrorIs(t, result.IndexErr, storage.ErrUnknownField)
	assert.EqualValues(t, 3, result.Manifest.Inserted)
}

// busyProducts rejects the first insert calls as if the store were dropping keys.
type busyProducts struct {
	storage.ProductRepository
	mu    sync.Mutex
	busy  int
	calls int
}

func (b *busyProducts) InsertProducts(ctx context.Context, products ...*core.Product) (*storage.InsertResult, error) {
	b.mu.Lock()
	b.calls++
	reject := b.calls <= b.busy
	b.mu.Unlock()
	if reject {
		return nil, fmt.Errorf("%w: writes blocked", storage.ErrBusy)
	}
	return b.ProductRepository.InsertProducts(ctx, products...)
}

func TestRun_RetriesBusyStore(t *testing.T) {
	products, manifests := newTestStore(t)
	busy := &busyProducts{ProductRepository: products, busy: 2}
	cfg := DefaultConfig()
	cfg.RetryDelay = time.Millisecond
	im := newTestImporter(t, busy, manifests, cfg, WithPoolSize(1))

	result, err := im.Run(context.Background(), exportProducts(t, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 10, result.Manifest.Inserted)
	assert.Equal(t, 3, busy.calls)
}

func TestRun_BusyStoreExhaustsAttempts(t *testing.T) {
	products, manifests := newTestStore(t)
	busy := &busyProducts{ProductRepository: products, busy: 100}
	cfg := DefaultConfig()
	cfg.MaxAttempts = 2
	cfg.RetryDelay = time.Millisecond
	im := newTestImporter(t, busy, manifests, cfg, WithPoolSize(1))

	_, err := im.Run(context.Background(), exportProducts(t, 10))
	assert.ErrorIs(t, err, storage.ErrBusy)
	assert.Equal(t, 2, busy.calls)
}

func TestRun_CanceledContext(t *testing.T) {
	products, manifests := newTestStore(t)
	im := newTestImporter(t, products, manifests, DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := im.Run(ctx, exportProducts(t, 3))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResult_WriteReport(t *testing.T) {
	products, manifests := newTestStore(t)
	im := newTestImporter(t, products, manifests, DefaultConfig())

	result, err := im.Run(context.Background(), exportProducts(t, 1200))
	require.NoError(t, err)

	var out strings.Builder
	require.NoError(t, result.WriteReport(&out))
	assert.Contains(t, out.String(), "Inserted:  1,200")
	assert.Contains(t, out.String(), "Sample document:")
	assert.Contains(t, out.String(), "energy_100g")

	skipped := &Result{Skipped: true, Existing: 1200}
	out.Reset()
	require.NoError(t, skipped.WriteReport(&out))
	assert.Contains(t, out.String(), "1,200 documents")
}
