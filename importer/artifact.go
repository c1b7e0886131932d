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

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/poiesic/foodfacts/core"
	"github.com/poiesic/foodfacts/storage"
)

// Batch is a run of consecutive documents from the artifact.
type Batch struct {
	// Start is the artifact position of the first document in the batch.
	Start int
	// Products holds the documents that decoded; Positions[i] is the
	// artifact position of Products[i].
	Products  []*core.Product
	Positions []int
	// Failures are documents that could not be decoded into a product.
	Failures []storage.InsertFailure
}

// Size is the number of artifact documents the batch covers.
func (b *Batch) Size() int {
	return len(b.Products) + len(b.Failures)
}

// ArtifactReader streams a JSON array of product objects.
type ArtifactReader struct {
	dec    *json.Decoder
	closer io.Closer
	pos    int
	done   bool
}

// OpenArtifact opens the artifact at path and consumes the opening bracket.
func OpenArtifact(path string) (*ArtifactReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := NewArtifactReader(bufio.NewReaderSize(f, 1<<20))
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// NewArtifactReader reads an artifact from r.
func NewArtifactReader(r io.Reader) (*ArtifactReader, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArtifact, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, fmt.Errorf("%w: expected '[', got %v", ErrInvalidArtifact, tok)
	}
	return &ArtifactReader{dec: dec}, nil
}

// Next decodes the next document. It returns io.EOF after the closing
// bracket. A document whose values have the wrong type is returned as a
// *DocumentError and the reader stays usable; any other error is fatal.
func (r *ArtifactReader) Next() (*core.Product, error) {
	if r.done {
		return nil, io.EOF
	}
	if !r.dec.More() {
		if _, err := r.dec.Token(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidArtifact, err)
		}
		r.done = true
		return nil, io.EOF
	}

	pos := r.pos
	r.pos++
	var product core.Product
	if err := r.dec.Decode(&product); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &DocumentError{Position: pos, Err: err}
		}
		return nil, fmt.Errorf("%w: document %d: %w", ErrInvalidArtifact, pos, err)
	}
	return &product, nil
}

// Position is the number of documents read so far.
func (r *ArtifactReader) Position() int {
	return r.pos
}

// Batches cuts the remaining documents into batches of size and calls fn
// for each one. It stops at the first error returned by fn or by the
// reader.
func (r *ArtifactReader) Batches(ctx context.Context, size int, fn func(*Batch) error) error {
	if size < 1 {
		return ErrInvalidBatchSize
	}
	batch := &Batch{Start: r.pos}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		product, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			var docErr *DocumentError
			if !errors.As(err, &docErr) {
				return err
			}
			batch.Failures = append(batch.Failures, storage.InsertFailure{Index: docErr.Position, Err: docErr.Err})
		} else {
			batch.Products = append(batch.Products, product)
			batch.Positions = append(batch.Positions, r.pos-1)
		}

		if batch.Size() == size {
			if err := fn(batch); err != nil {
				return err
			}
			batch = &Batch{Start: r.pos}
		}
	}
	if batch.Size() > 0 {
		return fn(batch)
	}
	return nil
}

// Close closes the underlying file, if any.
func (r *ArtifactReader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// DocumentError reports an artifact document that could not be decoded.
type DocumentError struct {
	Position int
	Err      error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("document %d: %v", e.Position, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// CountArtifact returns the number of documents in the artifact at path
// without decoding them into products.
func CountArtifact(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	dec := json.NewDecoder(bufio.NewReaderSize(f, 1<<20))
	tok, err := dec.Token()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidArtifact, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return 0, fmt.Errorf("%w: expected '[', got %v", ErrInvalidArtifact, tok)
	}

	count := 0
	for dec.More() {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return count, fmt.Errorf("%w: document %d: %w", ErrInvalidArtifact, count, err)
		}
		count++
	}
	if _, err := dec.Token(); err != nil {
		return count, fmt.Errorf("%w: %w", ErrInvalidArtifact, err)
	}
	return count, nil
}
