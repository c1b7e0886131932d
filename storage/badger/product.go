package badger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/foodfacts/core"
	"github.com/poiesic/foodfacts/storage"
)

// ProductRepository implements storage.ProductRepository for BadgerDB.
type ProductRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.ProductRepository = (*ProductRepository)(nil)

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(backend *Backend) (*ProductRepository, error) {
	idSeq, err := backend.GetSequence(productIDSeq)
	if err != nil {
		return nil, err
	}

	return &ProductRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *ProductRepository) Close() error {
	return r.idSeq.Release()
}

func (r *ProductRepository) nextID() (core.ID, error) {
	nextID, err := r.idSeq.Next()
	if err != nil {
		return 0, err
	}
	// BadgerDB sequences can return 0 on first call, so we skip it
	if nextID == 0 {
		nextID, err = r.idSeq.Next()
		if err != nil {
			return 0, err
		}
	}
	return core.ID(nextID), nil
}

// InsertProducts stores products with unordered semantics.
func (r *ProductRepository) InsertProducts(ctx context.Context, products ...*core.Product) (*storage.InsertResult, error) {
	indexed, err := r.ListIndexes(ctx)
	if err != nil {
		return nil, err
	}

	result := &storage.InsertResult{}
	err = r.backend.WithWriteBatch(func(wb *badger.WriteBatch) error {
		for i, product := range products {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := core.ValidateProduct(product); err != nil {
				failure := storage.InsertFailure{Index: i, Err: err}
				if product != nil {
					failure.Code = product.Code
				}
				result.Failures = append(result.Failures, failure)
				continue
			}

			id, err := r.nextID()
			if err != nil {
				return err
			}
			product.Id = id

			// Store primary record
			if err := wb.Set(makeProductKey(id), storage.MarshalProduct(product)); err != nil {
				return err
			}

			// Maintain existing indexes
			for _, field := range indexed {
				if err := wb.Set(makeIndexKey(field, product), storage.MarshalID(id)); err != nil {
					return err
				}
			}
			result.Inserted++
		}
		return nil
	})
	if errors.Is(err, badger.ErrBlockedWrites) {
		return nil, fmt.Errorf("%w: %w", storage.ErrBusy, err)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetProduct retrieves a single product by ID.
func (r *ProductRepository) GetProduct(ctx context.Context, id core.ID) (*core.Product, error) {
	var result *core.Product
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readProduct(tx, id)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, storage.ErrNotFound
	}
	return result, nil
}

// CountProducts returns the number of stored products.
func (r *ProductRepository) CountProducts(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(productPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
			if count%10000 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
		}
		return nil
	}, false)
	return count, err
}

// ForEachProduct calls fn for every product in insertion order.
func (r *ProductRepository) ForEachProduct(ctx context.Context, fn func(*core.Product) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(productPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var product *core.Product
			err := iter.Item().Value(func(val []byte) error {
				var err error
				product, err = storage.UnmarshalProduct(val)
				return err
			})
			if err != nil {
				return err
			}
			if err := fn(product); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// FirstProduct returns the earliest inserted product.
func (r *ProductRepository) FirstProduct(ctx context.Context) (*core.Product, error) {
	var first *core.Product
	err := r.ForEachProduct(ctx, func(p *core.Product) error {
		first = p
		return errStopScan
	})
	if err != nil && !errors.Is(err, errStopScan) {
		return nil, err
	}
	if first == nil {
		return nil, storage.ErrNotFound
	}
	return first, nil
}

var errStopScan = errors.New("stop scan")

// DropProducts removes every product and every index.
func (r *ProductRepository) DropProducts(ctx context.Context) error {
	return r.backend.DropPrefix(
		[]byte(productPrefix+":"),
		[]byte(productIndex+":"),
		[]byte(productIndexDef+":"),
	)
}

// CreateIndexes builds secondary indexes over the named fields. Each field
// is built on its own: a failing field is reported in the joined error and
// the remaining fields are still built.
func (r *ProductRepository) CreateIndexes(ctx context.Context, fields ...string) error {
	var errs []error
	for _, field := range fields {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(errs, err)...)
		}
		if !core.IsProjectedField(field) {
			errs = append(errs, fmt.Errorf("%w: %s", storage.ErrUnknownField, field))
			continue
		}
		if err := r.createIndex(ctx, field); err != nil {
			errs = append(errs, fmt.Errorf("building index %s: %w", field, err))
		}
	}
	return errors.Join(errs...)
}

func (r *ProductRepository) createIndex(ctx context.Context, field string) error {
	// Rebuild from scratch
	if err := r.backend.DropPrefix(makeIndexFieldPrefix(field)); err != nil {
		return err
	}

	err := r.backend.WithWriteBatch(func(wb *badger.WriteBatch) error {
		return r.ForEachProduct(ctx, func(p *core.Product) error {
			return wb.Set(makeIndexKey(field, p), storage.MarshalID(p.Id))
		})
	})
	if err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeIndexDefKey(field), []byte{}); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// ListIndexes returns the indexed field names in sorted order.
func (r *ProductRepository) ListIndexes(ctx context.Context) ([]string, error) {
	var fields []string
	prefix := productIndexDef + ":"
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			fields = append(fields, strings.TrimPrefix(string(iter.Item().Key()), prefix))
		}
		return nil
	}, false)
	return fields, err
}

func (r *ProductRepository) hasIndex(tx *badger.Txn, field string) (bool, error) {
	_, err := tx.Get(makeIndexDefKey(field))
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	return err == nil, err
}

// ScanIndexDescending visits products in descending order of a numeric field.
func (r *ProductRepository) ScanIndexDescending(ctx context.Context, field string, fn func(*core.Product) bool) error {
	if !core.IsNumericField(field) {
		return fmt.Errorf("%w: %s is not a numeric field", storage.ErrInvalidQuery, field)
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		ok, err := r.hasIndex(tx, field)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s", storage.ErrIndexNotFound, field)
		}

		prefix := makeIndexFieldPrefix(field)
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Reverse = true
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(seekPastPrefix(prefix, 16)); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			id := productIDFromKey(iter.Item().Key())
			product, err := r.readProduct(tx, id)
			if err != nil {
				return err
			}
			if product == nil {
				// stale entry
				continue
			}
			if !fn(product) {
				return nil
			}
		}
		return nil
	}, false)
}

// FindByText returns the IDs of products whose indexed text field equals value.
func (r *ProductRepository) FindByText(ctx context.Context, field, value string) ([]core.ID, error) {
	if !core.IsProjectedField(field) || core.IsNumericField(field) {
		return nil, fmt.Errorf("%w: %s is not a text field", storage.ErrInvalidQuery, field)
	}

	var ids []core.ID
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		ok, err := r.hasIndex(tx, field)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s", storage.ErrIndexNotFound, field)
		}

		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = makeTextIndexPrefix(field, value)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		capped := isCappedText(value)
		for iter.Rewind(); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			// value\x00 followed by exactly the 8 byte ID
			if len(key) != len(opts.Prefix)+8 {
				continue
			}
			id := productIDFromKey(key)
			if capped {
				product, err := r.readProduct(tx, id)
				if err != nil {
					return err
				}
				if product == nil {
					continue
				}
				if stored, _ := product.Text(field); stored != value {
					continue
				}
			}
			ids = append(ids, id)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Stats returns document count and on-disk size.
func (r *ProductRepository) Stats(ctx context.Context) (storage.Stats, error) {
	count, err := r.CountProducts(ctx)
	if err != nil {
		return storage.Stats{}, err
	}
	lsm, vlog := r.backend.Size()
	return storage.Stats{Documents: count, LSMBytes: lsm, VLogBytes: vlog}, nil
}

// readProduct reads a product by ID within a transaction.
// Returns nil, nil if the product doesn't exist.
func (r *ProductRepository) readProduct(tx *badger.Txn, id core.ID) (*core.Product, error) {
	item, err := tx.Get(makeProductKey(id))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var product *core.Product
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		product, unmarshalErr = storage.UnmarshalProduct(val)
		return unmarshalErr
	})
	return product, err
}
