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

// Package storage provides the storage abstraction layer for foodfacts.
//
// This package defines repository interfaces that decouple the document
// store from the loader, the aggregation queries and the dashboard.
//
// # Constructor Return Type Pattern
//
// Public constructors in backend packages return these interfaces:
//
//	products, manifests, backend, err := badger.NewMemoryRepositories()
//
// Internal constructors may return concrete types since they're only used
// within the implementation package.
//
// # Architecture
//
//   - ProductRepository: bulk insert, scans and secondary indexes for products
//   - ManifestRepository: the record of the last bulk load
//
// # Indexes
//
// Secondary indexes are created explicitly with CreateIndexes and are
// maintained by later inserts. Text fields are indexed by exact value,
// nutrition fields by numeric order so they can be scanned highest first.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent InsertProducts calls from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context. Long scans check it
// between documents and stop with ctx.Err() once it is done.
package storage
