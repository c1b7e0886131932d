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

package preprocess

import "errors"

var (
	// ErrMissingColumn indicates a required column is absent from the source header.
	ErrMissingColumn = errors.New("missing required column")

	// ErrEmptySource indicates the source has no header row.
	ErrEmptySource = errors.New("source has no header row")

	// ErrSourceUnreadable indicates the source could not be opened or read.
	ErrSourceUnreadable = errors.New("source unreadable")

	// ErrExportFailed indicates the artifact could not be written.
	ErrExportFailed = errors.New("export failed")

	// ErrInvalidOptions indicates the pipeline options failed validation.
	ErrInvalidOptions = errors.New("invalid preprocess options")
)
