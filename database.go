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

package foodfacts

import (
	"log/slog"

	"github.com/poiesic/foodfacts/analysis"
	"github.com/poiesic/foodfacts/dashboard"
	"github.com/poiesic/foodfacts/importer"
	"github.com/poiesic/foodfacts/storage"
	"github.com/poiesic/foodfacts/storage/badger"
	"github.com/poiesic/foodfacts/verify"
)

// Database is an open product store together with the collaborators that
// work on it.
type Database struct {
	backend      *badger.Backend
	productRepo  storage.ProductRepository
	manifestRepo storage.ManifestRepository
	logger       *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	inMemory bool
	logger   *slog.Logger
}

// InMemory keeps the store in memory. The path is ignored.
func InMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// WithLogger sets the logger used for shutdown errors.
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewDatabase opens the store at filePath, creating it if needed.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	productRepo, err := badger.NewProductRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:      backend,
		productRepo:  productRepo,
		manifestRepo: badger.NewManifestRepository(backend),
		logger:       options.logger,
	}, nil
}

func (db *Database) Close() error {
	if err := db.manifestRepo.Close(); err != nil {
		db.logger.Error("error closing manifest repository", "err", err)
		return err
	}
	if err := db.productRepo.Close(); err != nil {
		db.logger.Error("error closing product repository", "err", err)
		return err
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) ProductRepository() storage.ProductRepository {
	return db.productRepo
}

func (db *Database) ManifestRepository() storage.ManifestRepository {
	return db.manifestRepo
}

func (db *Database) NewImporter(cfg importer.Config, opts ...importer.Option) (*importer.Importer, error) {
	return importer.New(db.productRepo, db.manifestRepo, cfg, opts...)
}

func (db *Database) NewAnalyzer(opts ...analysis.Option) (*analysis.Analyzer, error) {
	return analysis.NewAnalyzer(db.productRepo, opts...)
}

func (db *Database) NewVerifier(opts ...verify.Option) (*verify.Verifier, error) {
	return verify.NewVerifier(db.productRepo, db.manifestRepo, opts...)
}

func (db *Database) NewDashboard(cfg dashboard.Config, opts ...dashboard.Option) (*dashboard.Server, error) {
	return dashboard.New(db.productRepo, cfg, opts...)
}
