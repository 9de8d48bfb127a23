package badger

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/lexemic/recall/core"
	"github.com/lexemic/recall/storage"
)

// EmbeddingRepository implements storage.EmbeddingRepository for BadgerDB.
type EmbeddingRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.EmbeddingRepository = (*EmbeddingRepository)(nil)

// NewEmbeddingRepository creates a new EmbeddingRepository.
func NewEmbeddingRepository(backend *Backend) (storage.EmbeddingRepository, error) {
	idSeq, err := backend.GetSequence(embeddingIDSeq)
	if err != nil {
		return nil, err
	}

	return &EmbeddingRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *EmbeddingRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *EmbeddingRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// FindSimilar delegates to the backend.
func (r *EmbeddingRepository) FindSimilar(ctx context.Context, vector []float32, threshold float32, limit int) ([]*core.SearchResult, error) {
	return r.backend.FindSimilar(ctx, vector, threshold, limit)
}

// AddEmbeddings adds one or more embedding records as a batch.
// Every record must reference a stored resource, and every vector must
// match the store's established dimensionality; the first batch ever
// inserted establishes it.
func (r *EmbeddingRepository) AddEmbeddings(ctx context.Context, records ...*core.EmbeddingRecord) ([]*core.EmbeddingRecord, error) {
	for _, record := range records {
		if err := core.ValidateEmbeddingRecord(record); err != nil {
			return nil, err
		}
	}

	err := r.backend.withWriteTx(ctx, func(tx *badger.Txn) error {
		dim, err := readDimension(tx)
		if err != nil {
			return err
		}

		for _, record := range records {
			// No orphans: the owning resource must already be committed
			// or be part of this same transaction.
			if _, err := tx.Get(makeResourceKey(record.ResourceID)); err != nil {
				if err == badger.ErrKeyNotFound {
					return fmt.Errorf("%w: resource %q", storage.ErrUnknownResource, record.ResourceID)
				}
				return err
			}

			if dim == 0 {
				dim = len(record.Vector)
				if err := writeDimension(tx, dim); err != nil {
					return err
				}
			}
			if len(record.Vector) != dim {
				return fmt.Errorf("%w: got %d, store has %d", storage.ErrDimensionMismatch, len(record.Vector), dim)
			}

			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			// BadgerDB sequences can return 0 on first call, so we skip it
			if nextID == 0 {
				nextID, err = r.idSeq.Next()
				if err != nil {
					return err
				}
			}
			record.ID = core.ID(nextID)

			if err := tx.Set(makeEmbeddingKey(record.ID), storage.MarshalEmbeddingRecord(record)); err != nil {
				return err
			}
			if err := tx.Set(makeEmbeddingResourceKey(record.ResourceID, record.ID), storage.MarshalID(record.ID)); err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return records, nil
}

// Dimension returns the store's established vector dimensionality,
// or 0 if no embedding has been inserted yet.
func (r *EmbeddingRepository) Dimension(ctx context.Context) (int, error) {
	var dim int
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		dim, err = readDimension(tx)
		return err
	}, false)
	return dim, err
}

// CountEmbeddings returns the number of stored embedding records.
func (r *EmbeddingRepository) CountEmbeddings(ctx context.Context) (int, error) {
	var count int
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(embeddingPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// GetEmbeddingsByResource retrieves all embedding records owned by a
// resource, in insertion order.
func (r *EmbeddingRepository) GetEmbeddingsByResource(ctx context.Context, resourceID string) ([]*core.EmbeddingRecord, error) {
	var result []*core.EmbeddingRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialEmbeddingResourceKey(resourceID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		var ids []core.ID
		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				id, err := storage.UnmarshalID(val)
				if err != nil {
					return err
				}
				ids = append(ids, id)
				return nil
			})
			if err != nil {
				return err
			}
		}
		iter.Close()

		for _, id := range ids {
			record, err := readEmbeddingRecord(tx, id)
			if err != nil {
				return err
			}
			result = append(result, record)
		}
		return nil
	}, false)
	return result, err
}

// ListEmbeddings retrieves up to limit records with IDs strictly greater
// than afterID, in insertion order.
func (r *EmbeddingRepository) ListEmbeddings(ctx context.Context, afterID core.ID, limit int) ([]*core.EmbeddingRecord, error) {
	if limit <= 0 {
		return nil, nil
	}

	var result []*core.EmbeddingRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(embeddingPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(makeEmbeddingKey(afterID + 1)); iter.Valid() && len(result) < limit; iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				record, err := storage.UnmarshalEmbeddingRecord(val)
				if err != nil {
					return err
				}
				result = append(result, record)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	return result, err
}

// UpdateVectors rewrites the vectors of existing records, keyed by record
// ID. All vectors in one call must share a dimensionality; the store's
// established dimension follows them, which is what an offline model
// change needs.
func (r *EmbeddingRepository) UpdateVectors(ctx context.Context, records ...*core.EmbeddingRecord) error {
	if len(records) == 0 {
		return nil
	}

	dim := len(records[0].Vector)
	for _, record := range records {
		if len(record.Vector) == 0 {
			return fmt.Errorf("%w: record %d", core.ErrEmptyVector, record.ID)
		}
		if len(record.Vector) != dim {
			return fmt.Errorf("%w: got %d, batch has %d", storage.ErrDimensionMismatch, len(record.Vector), dim)
		}
	}

	return r.backend.withWriteTx(ctx, func(tx *badger.Txn) error {
		for _, record := range records {
			stored, err := readEmbeddingRecord(tx, record.ID)
			if err != nil {
				return err
			}

			stored.Vector = record.Vector
			if err := tx.Set(makeEmbeddingKey(stored.ID), storage.MarshalEmbeddingRecord(stored)); err != nil {
				return err
			}
		}
		return writeDimension(tx, dim)
	})
}

// readEmbeddingRecord reads one record by ID within a transaction.
func readEmbeddingRecord(tx *badger.Txn, id core.ID) (*core.EmbeddingRecord, error) {
	item, err := tx.Get(makeEmbeddingKey(id))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, fmt.Errorf("%w: embedding record %d", storage.ErrNotFound, id)
		}
		return nil, err
	}

	var record *core.EmbeddingRecord
	err = item.Value(func(val []byte) error {
		record, err = storage.UnmarshalEmbeddingRecord(val)
		return err
	})
	return record, err
}

// readDimension reads the store's established dimensionality, 0 if unset.
func readDimension(tx *badger.Txn) (int, error) {
	item, err := tx.Get([]byte(dimensionKey))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return 0, nil
		}
		return 0, err
	}

	var dim int
	err = item.Value(func(val []byte) error {
		id, err := storage.UnmarshalID(val)
		if err != nil {
			return err
		}
		dim = int(id)
		return nil
	})
	return dim, err
}

// writeDimension persists the store's established dimensionality.
func writeDimension(tx *badger.Txn, dim int) error {
	return tx.Set([]byte(dimensionKey), storage.MarshalID(core.ID(dim)))
}
