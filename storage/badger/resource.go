package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/lexemic/recall/core"
	"github.com/lexemic/recall/storage"
)

// ResourceRepository implements storage.ResourceRepository for BadgerDB.
type ResourceRepository struct {
	backend *Backend
}

var _ storage.ResourceRepository = (*ResourceRepository)(nil)

// NewResourceRepository creates a new ResourceRepository.
func NewResourceRepository(backend *Backend) (storage.ResourceRepository, error) {
	return &ResourceRepository{
		backend: backend,
	}, nil
}

// Close releases resources. ResourceRepository has no resources to release.
func (r *ResourceRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *ResourceRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddResource adds a resource to storage.
// Malformed resources are rejected at this boundary rather than trusted.
func (r *ResourceRepository) AddResource(ctx context.Context, resource *core.Resource) (*core.Resource, error) {
	if err := core.ValidateResource(resource); err != nil {
		return nil, err
	}

	err := r.backend.withWriteTx(ctx, func(tx *badger.Txn) error {
		key := makeResourceKey(resource.ID)

		_, err := tx.Get(key)
		if err == nil {
			return fmt.Errorf("%w: resource %q", storage.ErrDuplicateKey, resource.ID)
		}
		if err != badger.ErrKeyNotFound {
			return err
		}

		if resource.CreatedAt.IsZero() {
			resource.CreatedAt = time.Now().UTC()
		}

		return tx.Set(key, storage.MarshalResource(resource))
	})

	if err != nil {
		return nil, err
	}
	return resource, nil
}

// GetResource retrieves a single resource by ID.
func (r *ResourceRepository) GetResource(ctx context.Context, id string) (*core.Resource, error) {
	var result *core.Resource
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeResourceKey(id))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return fmt.Errorf("%w: resource %q", storage.ErrNotFound, id)
			}
			return err
		}
		return item.Value(func(val []byte) error {
			result, err = storage.UnmarshalResource(val)
			return err
		})
	}, false)
	return result, err
}

// HasResources reports whether any resource exists in the store.
func (r *ResourceRepository) HasResources(ctx context.Context) (bool, error) {
	var found bool
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(resourcePrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		iter.Rewind()
		found = iter.Valid()
		return nil
	}, false)
	return found, err
}

// CountResources returns the number of stored resources.
func (r *ResourceRepository) CountResources(ctx context.Context) (int, error) {
	var count int
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(resourcePrefix + ":")
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

// DeleteResource removes a resource and cascades to its embedding records.
func (r *ResourceRepository) DeleteResource(ctx context.Context, id string) error {
	return r.backend.withWriteTx(ctx, func(tx *badger.Txn) error {
		key := makeResourceKey(id)
		if _, err := tx.Get(key); err != nil {
			if err == badger.ErrKeyNotFound {
				return fmt.Errorf("%w: resource %q", storage.ErrNotFound, id)
			}
			return err
		}

		// Cascade: walk the resource-to-embedding index and delete every
		// owned record together with its index entry.
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialEmbeddingResourceKey(id)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		var indexKeys [][]byte
		var recordIDs []core.ID
		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			indexKeys = append(indexKeys, item.KeyCopy(nil))

			err := item.Value(func(val []byte) error {
				recordID, err := storage.UnmarshalID(val)
				if err != nil {
					return err
				}
				recordIDs = append(recordIDs, recordID)
				return nil
			})
			if err != nil {
				return err
			}
		}
		iter.Close()

		for i, indexKey := range indexKeys {
			if err := tx.Delete(makeEmbeddingKey(recordIDs[i])); err != nil {
				return err
			}
			if err := tx.Delete(indexKey); err != nil {
				return err
			}
		}

		return tx.Delete(key)
	})
}
