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

// Package importer bulk loads a cleaned product artifact into the document
// store.
//
// The artifact is streamed, never loaded whole, and cut into fixed size
// batches (1000 by default). Batches are inserted concurrently on a worker
// pool with unordered semantics: a document that fails validation or
// decoding is counted and logged without aborting its batch. After the
// load the importer reports the document count, a sample document and the
// store size, then builds the secondary indexes and records an import
// manifest that the verify command checks against.
//
// An import into a store that already holds products is skipped unless
// Config.DropExisting is set, in which case products and indexes are
// dropped first.
package importer
