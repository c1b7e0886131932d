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

package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/foodfacts/core"
	"github.com/poiesic/foodfacts/storage"
)

// maxKeptFailures bounds the failures retained in Result.Failures. All
// failures are still counted in the manifest.
const maxKeptFailures = 100

// Config controls a bulk load.
type Config struct {
	BatchSize    int
	DropExisting bool
	IndexFields  []string
	// ReportEvery is the number of documents between progress lines.
	ReportEvery int
	// MaxAttempts bounds inserts of one batch while the store is busy.
	// Zero means defaultMaxAttempts.
	MaxAttempts int
	RetryDelay  time.Duration
}

const (
	defaultMaxAttempts = 3
	defaultRetryDelay  = 50 * time.Millisecond
)

// DefaultConfig returns the standard load settings.
func DefaultConfig() Config {
	return Config{
		BatchSize: 1000,
		IndexFields: []string{
			core.FieldProductName,
			core.FieldCategories,
			core.FieldCountries,
			core.FieldEnergy,
			core.FieldSugars,
			core.FieldFat,
		},
		ReportEvery: 10000,
		MaxAttempts: defaultMaxAttempts,
		RetryDelay:  defaultRetryDelay,
	}
}

// Importer loads artifacts into a product repository.
type Importer struct {
	products  storage.ProductRepository
	manifests storage.ManifestRepository
	pool      *ants.Pool
	cfg       Config
	progress  io.Writer
	logger    *slog.Logger
}

// Option configures an Importer.
type Option func(*Importer) error

// WithPoolSize sets the number of concurrent batch inserts.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(im *Importer) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if im.pool != nil {
			im.pool.Release()
		}
		im.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(im *Importer) error {
		if logger == nil {
			logger = slog.Default()
		}
		im.logger = logger
		return nil
	}
}

// WithProgress sets where progress lines are written. Default is none.
func WithProgress(w io.Writer) Option {
	return func(im *Importer) error {
		im.progress = w
		return nil
	}
}

// New creates an Importer.
func New(products storage.ProductRepository, manifests storage.ManifestRepository, cfg Config, opts ...Option) (*Importer, error) {
	if products == nil {
		return nil, ErrProductRepositoryRequired
	}
	if manifests == nil {
		return nil, ErrManifestRepositoryRequired
	}
	if cfg.BatchSize < 1 {
		return nil, ErrInvalidBatchSize
	}
	if cfg.MaxAttempts < 0 {
		return nil, ErrInvalidMaxAttempts
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	im := &Importer{
		products:  products,
		manifests: manifests,
		pool:      pool,
		cfg:       cfg,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(im); err != nil {
			im.Release()
			return nil, err
		}
	}
	return im, nil
}

// Release stops the worker pool.
func (im *Importer) Release() {
	if im.pool != nil {
		im.pool.Release()
		im.pool = nil
	}
}

// Result describes one bulk load.
type Result struct {
	// Skipped is set when the store already held Existing products and
	// DropExisting was not requested. Nothing else is populated.
	Skipped  bool
	Existing int

	Manifest *core.ImportManifest
	Failures []storage.InsertFailure
	Sample   *core.Product
	Stats    storage.Stats
	Indexes  []string
	// IndexErr is set when index creation failed. The load itself stands.
	IndexErr error
	Elapsed  time.Duration
}

// Run loads the artifact at path.
func (im *Importer) Run(ctx context.Context, path string) (*Result, error) {
	start := time.Now()

	existing, err := im.products.CountProducts(ctx)
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		if !im.cfg.DropExisting {
			im.logger.Warn("collection is not empty, skipping import", "documents", existing)
			return &Result{Skipped: true, Existing: existing}, nil
		}
		im.logger.Info("dropping existing collection", "documents", existing)
		if err := im.products.DropProducts(ctx); err != nil {
			return nil, fmt.Errorf("dropping collection: %w", err)
		}
	}

	digest, err := core.DigestFile(path)
	if err != nil {
		return nil, err
	}
	total, err := CountArtifact(path)
	if err != nil {
		return nil, err
	}
	im.logger.Info("importing artifact", "path", path, "documents", total, "batch_size", im.cfg.BatchSize)

	manifest := &core.ImportManifest{
		RunID:     uuid.NewString(),
		Artifact:  artifactName(path),
		Digest:    digest,
		StartedAt: start.UTC(),
	}
	result := &Result{Manifest: manifest}
	if err := im.load(ctx, path, total, result); err != nil {
		return nil, err
	}

	count, err := im.products.CountProducts(ctx)
	if err != nil {
		return nil, err
	}
	im.logger.Info("import complete",
		"read", manifest.RecordsRead,
		"inserted", manifest.Inserted,
		"failed", manifest.Failed,
		"documents", count)

	result.Sample, err = im.products.FirstProduct(ctx)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	if result.Stats, err = im.products.Stats(ctx); err != nil {
		return nil, err
	}

	if len(im.cfg.IndexFields) > 0 {
		if err := im.products.CreateIndexes(ctx, im.cfg.IndexFields...); err != nil {
			im.logger.Warn("index creation failed", "error", err)
			result.IndexErr = err
		}
	}
	if result.Indexes, err = im.products.ListIndexes(ctx); err != nil {
		return nil, err
	}

	manifest.FinishedAt = time.Now().UTC()
	if err := im.manifests.SaveManifest(ctx, manifest); err != nil {
		return nil, fmt.Errorf("saving manifest: %w", err)
	}
	result.Elapsed = time.Since(start)
	return result, nil
}

// load streams the artifact into the repository, one pool task per batch.
func (im *Importer) load(ctx context.Context, path string, total int, result *Result) error {
	reader, err := OpenArtifact(path)
	if err != nil {
		return err
	}
	defer reader.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	progress := NewProgress(im.progress, total, im.cfg.ReportEvery)
	manifest := result.Manifest

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		mu.Unlock()
	}
	record := func(failures []storage.InsertFailure) {
		for _, f := range failures {
			im.logger.Debug("document rejected", "position", f.Index, "code", f.Code, "error", f.Err)
			if len(result.Failures) < maxKeptFailures {
				result.Failures = append(result.Failures, f)
			}
		}
		manifest.Failed += int64(len(failures))
	}

	readErr := reader.Batches(ctx, im.cfg.BatchSize, func(batch *Batch) error {
		mu.Lock()
		manifest.RecordsRead += int64(batch.Size())
		record(batch.Failures)
		mu.Unlock()
		if len(batch.Failures) > 0 {
			progress.Add(0, len(batch.Failures))
		}
		if len(batch.Products) == 0 {
			return nil
		}

		wg.Add(1)
		err := im.pool.Submit(func() {
			defer wg.Done()
			var res *storage.InsertResult
			err := retryBusy(ctx, im.logger, func() error {
				var err error
				res, err = im.products.InsertProducts(ctx, batch.Products...)
				return err
			}, im.cfg.MaxAttempts, im.cfg.RetryDelay)
			if err != nil {
				fail(fmt.Errorf("inserting batch at %d: %w", batch.Start, err))
				return
			}
			failures := make([]storage.InsertFailure, len(res.Failures))
			for i, f := range res.Failures {
				f.Index = batch.Positions[f.Index]
				failures[i] = f
			}
			mu.Lock()
			manifest.Inserted += int64(res.Inserted)
			record(failures)
			mu.Unlock()
			progress.Add(res.Inserted, len(failures))
		})
		if err != nil {
			wg.Done()
			return err
		}
		return nil
	})
	wg.Wait()
	progress.Finish()

	if firstErr != nil {
		return firstErr
	}
	if readErr != nil {
		return readErr
	}
	return nil
}

func artifactName(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
