package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/lexemic/recall/ai"
	"github.com/lexemic/recall/core"
	"github.com/lexemic/recall/storage"
)

// BatchProcessor regenerates embeddings for batches of records.
type BatchProcessor struct {
	repo           storage.EmbeddingRepository
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(repo storage.EmbeddingRepository, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		repo:           repo,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process regenerates embeddings for a batch of records and rewrites their
// stored vectors. Vectors are normalized after embedding so cosine
// similarity stays well-behaved.
func (bp *BatchProcessor) Process(ctx context.Context, records []*core.EmbeddingRecord) error {
	if len(records) == 0 {
		return nil
	}

	texts := make([]string, len(records))
	for i, record := range records {
		texts[i] = record.Content
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)

	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(records) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(records), len(embeddings))
	}

	updates := make([]*core.EmbeddingRecord, len(records))
	for i, record := range records {
		updates[i] = &core.EmbeddingRecord{
			ID:     record.ID,
			Vector: NormalizeVector(embeddings[i]),
		}
	}

	if err := bp.repo.UpdateVectors(ctx, updates...); err != nil {
		return fmt.Errorf("failed to update records: %w", err)
	}

	return nil
}
