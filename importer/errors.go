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

import "errors"

var (
	// ErrProductRepositoryRequired is returned when a nil product repository is provided.
	ErrProductRepositoryRequired = errors.New("product repository is required")

	// ErrManifestRepositoryRequired is returned when a nil manifest repository is provided.
	ErrManifestRepositoryRequired = errors.New("manifest repository is required")

	// ErrInvalidArtifact indicates the artifact is not a JSON array of objects.
	ErrInvalidArtifact = errors.New("invalid artifact")

	// ErrInvalidBatchSize indicates a non-positive batch size.
	ErrInvalidBatchSize = errors.New("batch size must be at least 1")

	// ErrInvalidMaxAttempts indicates a non-positive attempt count.
	ErrInvalidMaxAttempts = errors.New("max attempts must be at least 1")
)
