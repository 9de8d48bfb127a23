package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Literal backslash-n escape sequences in the input are normalized to
	// single spaces before embedding, guarding against improperly escaped
	// newlines from upstream callers.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times;
	// all chunks of one resource go through a single batched call.
	// The returned slice contains embeddings in the same order as the input texts,
	// all with the same dimensionality.
	// Returns an error if any embedding generation fails. Failures are
	// propagated, never retried here; retry policy belongs to the caller.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
