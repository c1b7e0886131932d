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

package badger

import "github.com/poiesic/foodfacts/storage"

// NewRepositories opens a BadgerDB database and creates the product and
// manifest repositories on it. Caller must close both repos and backend.
func NewRepositories(path string, inMemory bool) (storage.ProductRepository, storage.ManifestRepository, *Backend, error) {
	backend, err := OpenBackend(path, inMemory)
	if err != nil {
		return nil, nil, nil, err
	}

	productRepo, err := NewProductRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, err
	}

	return productRepo, NewManifestRepository(backend), backend, nil
}

// NewMemoryRepositories creates in-memory product and manifest repositories for testing.
// Returns productRepo, manifestRepo, backend, and error.
// Caller must close both repos and backend when done.
func NewMemoryRepositories() (storage.ProductRepository, storage.ManifestRepository, *Backend, error) {
	return NewRepositories("", true)
}
