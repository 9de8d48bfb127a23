package ingestion

import "errors"

var (
	// ErrResourceRepositoryRequired is returned when a resource repository is not provided.
	ErrResourceRepositoryRequired = errors.New("resource repository required")

	// ErrEmbeddingRepositoryRequired is returned when an embedding repository is not provided.
	ErrEmbeddingRepositoryRequired = errors.New("embedding repository required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrEmbeddingCountMismatch is returned when the embedding provider returns
	// a different number of vectors than chunks sent.
	ErrEmbeddingCountMismatch = errors.New("embedding count does not match chunk count")
)
