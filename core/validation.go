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

import (
	"fmt"
	"math"
	"strings"
)

// ValidateProduct validates a Product according to domain rules.
//
// Validation rules:
//   - ProductName must not be empty or whitespace
//   - Every nutrition value must be finite
//
// NOT validated:
//   - Code (a missing identifier is stored as "")
//   - ID (0 is valid until a sequence assigns one)
func ValidateProduct(product *Product) error {
	if product == nil {
		return fmt.Errorf("%w: product is nil", ErrInvalidProduct)
	}

	if strings.TrimSpace(product.ProductName) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidProduct, ErrEmptyProductName)
	}

	for _, field := range NumericFields {
		v, _ := product.Number(field)
		if !IsFinite(v) {
			return fmt.Errorf("%w: %w: %s", ErrInvalidProduct, ErrNonFiniteValue, field)
		}
	}

	return nil
}

// ValidateManifest validates an ImportManifest.
func ValidateManifest(manifest *ImportManifest) error {
	if manifest == nil {
		return fmt.Errorf("%w: manifest is nil", ErrInvalidManifest)
	}
	if manifest.RunID == "" {
		return fmt.Errorf("%w: run id is empty", ErrInvalidManifest)
	}
	if manifest.Inserted+manifest.Failed > manifest.RecordsRead {
		return fmt.Errorf("%w: %d inserted and %d failed exceed %d read",
			ErrInvalidManifest, manifest.Inserted, manifest.Failed, manifest.RecordsRead)
	}
	return nil
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
