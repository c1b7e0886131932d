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

package verify

import "errors"

var (
	// ErrCountMismatch is returned when the artifact and the store disagree.
	ErrCountMismatch = errors.New("record count mismatch")

	// ErrDigestMismatch is returned when the artifact changed since it was imported.
	ErrDigestMismatch = errors.New("artifact digest does not match the last import")

	// ErrProductRepositoryRequired is returned when a product repository is not provided.
	ErrProductRepositoryRequired = errors.New("product repository required")
)
