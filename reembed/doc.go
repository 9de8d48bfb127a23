// Package reembed rewrites the vectors of stored embedding records with a
// new or updated embedding model.
//
// Changing the embedding model invalidates every stored vector, so the
// whole store must be re-embedded before retrieval is meaningful again.
// The package walks all records in batches, regenerates their embeddings
// with retry and exponential backoff, and reports progress as it goes.
package reembed
