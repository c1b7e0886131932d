package storage

import (
	"context"

	"github.com/poiesic/foodfacts/core"
)

// Repository is the base interface for all storage operations.
type Repository interface {
	// Close closes the storage backend and releases resources.
	Close() error
}

// InsertFailure describes one document rejected by InsertProducts.
type InsertFailure struct {
	// Index is the position of the document in the InsertProducts call.
	Index int
	Code  string
	Err   error
}

// InsertResult reports the outcome of an unordered bulk insert.
type InsertResult struct {
	Inserted int
	Failures []InsertFailure
}

// Stats describes the size of the product collection.
type Stats struct {
	Documents int
	LSMBytes  int64
	VLogBytes int64
}

// TotalBytes is the on-disk size of the store.
func (s Stats) TotalBytes() int64 {
	return s.LSMBytes + s.VLogBytes
}

// ProductRepository provides operations for managing stored products.
type ProductRepository interface {
	Repository

	// InsertProducts stores products with unordered semantics: a document
	// that fails validation is reported in InsertResult.Failures and does not
	// prevent the others from being stored. IDs are assigned from a sequence.
	// The returned error is reserved for store failures.
	InsertProducts(ctx context.Context, products ...*core.Product) (*InsertResult, error)

	// GetProduct retrieves a single product by ID.
	// Returns ErrNotFound if the product doesn't exist.
	GetProduct(ctx context.Context, id core.ID) (*core.Product, error)

	// CountProducts returns the number of stored products.
	CountProducts(ctx context.Context) (int, error)

	// ForEachProduct calls fn for every product in insertion order until fn
	// returns an error, which is then returned.
	ForEachProduct(ctx context.Context, fn func(*core.Product) error) error

	// FirstProduct returns the earliest inserted product, or ErrNotFound.
	FirstProduct(ctx context.Context) (*core.Product, error)

	// DropProducts removes every product and every index.
	DropProducts(ctx context.Context) error

	// CreateIndexes builds secondary indexes over the named fields, replacing
	// any existing index on the same field. Returns ErrUnknownField for
	// names outside the projection.
	CreateIndexes(ctx context.Context, fields ...string) error

	// ListIndexes returns the indexed field names in sorted order.
	ListIndexes(ctx context.Context) ([]string, error)

	// ScanIndexDescending visits products in descending order of a numeric
	// indexed field until fn returns false. Products with equal values are
	// visited in descending ID order. Returns ErrIndexNotFound when the index
	// has not been built.
	ScanIndexDescending(ctx context.Context, field string, fn func(*core.Product) bool) error

	// FindByText returns the IDs of products whose indexed text field equals
	// value exactly.
	FindByText(ctx context.Context, field, value string) ([]core.ID, error)

	// Stats returns document count and on-disk size.
	Stats(ctx context.Context) (Stats, error)
}

// ManifestRepository stores the record of the last bulk load.
type ManifestRepository interface {
	Repository

	// SaveManifest replaces the stored manifest.
	SaveManifest(ctx context.Context, manifest *core.ImportManifest) error

	// LoadManifest returns the stored manifest.
	// Returns ErrNotFound if no load has completed.
	LoadManifest(ctx context.Context) (*core.ImportManifest, error)
}
