// Package ingestion provides the pipeline that turns raw content into
// retrievable knowledge.
//
// The Pipeline type manages the ingestion workflow for a resource:
//   - Splitting content into chunks
//   - Generating embeddings in one batched provider call
//   - Storing the resource and its embedding records in a single transaction
//
// Ingestion is synchronous: when Ingest returns without error, the resource
// is retrievable. IngestMany runs many resources concurrently over a worker
// pool, each committing independently.
package ingestion
