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

// Package preprocess turns a raw Open Food Facts style export into a
// cleaned, reproducibly sampled JSON artifact.
//
// The pipeline runs single-threaded in one pass over the source:
//
//	source rows -> name filter -> nutrition filter -> dedupe by code
//	            -> numeric coercion -> sample -> JSON export
//
// Rows are read lazily with Reader, cleaned with Cleaner, reduced with
// Sample and written with Export. Run wires the stages together from an
// Options value; re-running with the same source, target and seed
// produces a byte-identical artifact.
package preprocess
