package storage

import (
	"context"

	"github.com/lexemic/recall/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back and nothing
	// written inside it is visible.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn carries the transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// ResourceRepository provides operations for managing resources.
type ResourceRepository interface {
	Repository

	// AddResource adds a resource to storage.
	// Sets CreatedAt if not already set.
	// Returns ErrDuplicateKey if the resource ID already exists.
	AddResource(ctx context.Context, resource *core.Resource) (*core.Resource, error)

	// GetResource retrieves a single resource by ID.
	// Returns ErrNotFound if the resource doesn't exist.
	GetResource(ctx context.Context, id string) (*core.Resource, error)

	// HasResources reports whether any resource exists in the store.
	HasResources(ctx context.Context) (bool, error)

	// CountResources returns the number of stored resources.
	CountResources(ctx context.Context) (int, error)

	// DeleteResource removes a resource and, as a cascade, every
	// embedding record that references it.
	// Returns ErrNotFound if the resource doesn't exist.
	DeleteResource(ctx context.Context, id string) error
}

// EmbeddingRepository provides operations for managing embedding records
// and similarity search over them.
type EmbeddingRepository interface {
	Repository

	// AddEmbeddings adds one or more embedding records as a batch.
	// Record IDs are assigned from a sequence; insertion order is the
	// argument order. Returns the records with IDs populated.
	//
	// Fails with ErrUnknownResource if any record references a resource
	// not present in the store, and with ErrDimensionMismatch if any
	// vector's length differs from the store's established dimensionality.
	// The first batch ever inserted establishes that dimensionality.
	AddEmbeddings(ctx context.Context, records ...*core.EmbeddingRecord) ([]*core.EmbeddingRecord, error)

	// FindSimilar computes exact cosine similarity between the query
	// vector and every stored record, keeps records with similarity
	// strictly greater than threshold, and returns at most limit results
	// ordered by descending similarity. Equal scores keep insertion order.
	FindSimilar(ctx context.Context, vector []float32, threshold float32, limit int) ([]*core.SearchResult, error)

	// Dimension returns the store's established vector dimensionality,
	// or 0 if no embedding has been inserted yet.
	Dimension(ctx context.Context) (int, error)

	// CountEmbeddings returns the number of stored embedding records.
	CountEmbeddings(ctx context.Context) (int, error)

	// GetEmbeddingsByResource retrieves all embedding records owned by a
	// resource, in insertion order.
	GetEmbeddingsByResource(ctx context.Context, resourceID string) ([]*core.EmbeddingRecord, error)

	// ListEmbeddings retrieves up to limit records with IDs strictly
	// greater than afterID, in insertion order. Pass afterID 0 to start
	// from the beginning; an empty result means the end was reached.
	ListEmbeddings(ctx context.Context, afterID core.ID, limit int) ([]*core.EmbeddingRecord, error)

	// UpdateVectors rewrites the vectors of existing records, keyed by
	// record ID. Used by offline re-embedding after a model change; the
	// new vectors may have a different dimensionality, and the store's
	// established dimension follows them.
	// Returns ErrNotFound if any record doesn't exist.
	UpdateVectors(ctx context.Context, records ...*core.EmbeddingRecord) error
}
