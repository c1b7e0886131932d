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

package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidProduct indicates a Product failed validation.
	ErrInvalidProduct = errors.New("invalid product")

	// ErrEmptyProductName indicates the product name is empty.
	ErrEmptyProductName = errors.New("product name cannot be empty")

	// ErrNonFiniteValue indicates a nutrition value is NaN or infinite.
	ErrNonFiniteValue = errors.New("nutrition value must be finite")

	// ErrInvalidManifest indicates an ImportManifest failed validation.
	ErrInvalidManifest = errors.New("invalid import manifest")

	// ErrUnsupportedMetric indicates a metric name that cannot be ranked.
	ErrUnsupportedMetric = errors.New("unsupported metric")
)
