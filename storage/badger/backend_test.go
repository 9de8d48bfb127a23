package badger

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/lexemic/recall/core"
	"github.com/lexemic/recall/storage"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float32
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0.0},
		{"both zero", []float32{0, 0}, []float32{0, 0}, 0.0},
		{"scaled", []float32{1, 1}, []float32{5, 5}, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if math.Abs(float64(got-tt.want)) > 1e-6 {
				t.Fatalf("cosineSimilarity(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestFindSimilarOrderingAndLimit(t *testing.T) {
	resourceRepo, embeddingRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() {
		embeddingRepo.Close()
		resourceRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	if _, err := resourceRepo.AddResource(ctx, &core.Resource{
		ID:      "res-1",
		Content: "content",
	}); err != nil {
		t.Fatalf("Failed to add resource: %v", err)
	}

	// Unit vectors at increasing angles from the x axis. The query is
	// the x axis itself, so similarity decreases with the angle.
	angles := []float64{0.1, 0.7, 0.3, 0.5, 0.9}
	var records []*core.EmbeddingRecord
	for i, angle := range angles {
		records = append(records, &core.EmbeddingRecord{
			ResourceID: "res-1",
			Content:    "an embedded chunk of text " + string(rune('a'+i)),
			Vector:     []float32{float32(math.Cos(angle)), float32(math.Sin(angle))},
		})
	}
	if _, err := embeddingRepo.AddEmbeddings(ctx, records...); err != nil {
		t.Fatalf("Failed to add embeddings: %v", err)
	}

	results, err := embeddingRepo.FindSimilar(ctx, []float32{1, 0}, 0.0, 3)
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Fatalf("Results out of order: score[%d]=%v > score[%d]=%v",
				i, results[i].Score, i-1, results[i-1].Score)
		}
	}
	// Smallest angles win.
	if results[0].Record.Content != records[0].Content {
		t.Fatalf("Expected best match %q, got %q", records[0].Content, results[0].Record.Content)
	}
	if results[1].Record.Content != records[2].Content {
		t.Fatalf("Expected second match %q, got %q", records[2].Content, results[1].Record.Content)
	}
}

func TestFindSimilarThresholdIsStrict(t *testing.T) {
	resourceRepo, embeddingRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() {
		embeddingRepo.Close()
		resourceRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	if _, err := resourceRepo.AddResource(ctx, &core.Resource{ID: "res-1", Content: "content"}); err != nil {
		t.Fatalf("Failed to add resource: %v", err)
	}

	// Orthogonal to the query: similarity exactly 0.
	if _, err := embeddingRepo.AddEmbeddings(ctx, &core.EmbeddingRecord{
		ResourceID: "res-1",
		Content:    "orthogonal chunk content here",
		Vector:     []float32{0, 1},
	}); err != nil {
		t.Fatalf("Failed to add embedding: %v", err)
	}

	results, err := embeddingRepo.FindSimilar(ctx, []float32{1, 0}, 0.0, 10)
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("Score equal to threshold must be excluded, got %d results", len(results))
	}
}

func TestFindSimilarStableTieBreak(t *testing.T) {
	resourceRepo, embeddingRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() {
		embeddingRepo.Close()
		resourceRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	if _, err := resourceRepo.AddResource(ctx, &core.Resource{ID: "res-1", Content: "content"}); err != nil {
		t.Fatalf("Failed to add resource: %v", err)
	}

	// Identical vectors score identically; insertion order decides.
	contents := []string{
		"first inserted tied chunk",
		"second inserted tied chunk",
		"third inserted tied chunk",
	}
	for _, content := range contents {
		if _, err := embeddingRepo.AddEmbeddings(ctx, &core.EmbeddingRecord{
			ResourceID: "res-1",
			Content:    content,
			Vector:     []float32{1, 0},
		}); err != nil {
			t.Fatalf("Failed to add embedding: %v", err)
		}
	}

	results, err := embeddingRepo.FindSimilar(ctx, []float32{1, 0}, 0.5, 10)
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(results) != len(contents) {
		t.Fatalf("Expected %d results, got %d", len(contents), len(results))
	}
	for i, content := range contents {
		if results[i].Record.Content != content {
			t.Fatalf("Tie-break broke insertion order at %d: got %q, want %q",
				i, results[i].Record.Content, content)
		}
	}
}

func TestFindSimilarEmptyStore(t *testing.T) {
	resourceRepo, embeddingRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() {
		embeddingRepo.Close()
		resourceRepo.Close()
		backend.Close()
	}()

	results, err := embeddingRepo.FindSimilar(context.Background(), []float32{1, 0}, 0.75, 4)
	if err != nil {
		t.Fatalf("Search on empty store failed: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("Expected no results, got %d", len(results))
	}
}

func TestWithTransactionRollsBackOnError(t *testing.T) {
	resourceRepo, embeddingRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() {
		embeddingRepo.Close()
		resourceRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	boom := errors.New("boom")

	err = backend.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := resourceRepo.AddResource(ctx, &core.Resource{
			ID:      "res-rollback",
			Content: "content",
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected transaction error, got %v", err)
	}

	if _, err := resourceRepo.GetResource(ctx, "res-rollback"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Resource must not survive a failed transaction, got %v", err)
	}
}

func TestWithTransactionCommitsResourceAndEmbeddings(t *testing.T) {
	resourceRepo, embeddingRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() {
		embeddingRepo.Close()
		resourceRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	err = backend.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := resourceRepo.AddResource(ctx, &core.Resource{
			ID:      "res-tx",
			Content: "content",
		}); err != nil {
			return err
		}
		_, err := embeddingRepo.AddEmbeddings(ctx, &core.EmbeddingRecord{
			ResourceID: "res-tx",
			Content:    "a chunk inside the transaction",
			Vector:     []float32{1, 2, 3},
		})
		return err
	})
	if err != nil {
		t.Fatalf("Transaction failed: %v", err)
	}

	if _, err := resourceRepo.GetResource(ctx, "res-tx"); err != nil {
		t.Fatalf("Committed resource missing: %v", err)
	}
	records, err := embeddingRepo.GetEmbeddingsByResource(ctx, "res-tx")
	if err != nil {
		t.Fatalf("Failed to get embeddings: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 embedding, got %d", len(records))
	}
}

func TestWithTransactionRetriesDimensionRace(t *testing.T) {
	resourceRepo, embeddingRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() {
		embeddingRepo.Close()
		resourceRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	for _, id := range []string{"res-a", "res-b"} {
		if _, err := resourceRepo.AddResource(ctx, &core.Resource{ID: id, Content: "content"}); err != nil {
			t.Fatalf("Failed to add resource %s: %v", id, err)
		}
	}

	// An empty store: the first insert reads the unset dimension key and
	// writes it. A competing insert for a different resource that commits
	// in between does the same, so the first commit loses the conflict
	// race and must be retried, not surfaced to the caller.
	attempts := 0
	raced := false
	err = backend.WithTransaction(ctx, func(txCtx context.Context) error {
		attempts++
		if _, err := embeddingRepo.AddEmbeddings(txCtx, &core.EmbeddingRecord{
			ResourceID: "res-a",
			Content:    "a chunk from the first writer",
			Vector:     []float32{1, 0, 0},
		}); err != nil {
			return err
		}
		if !raced {
			raced = true
			if _, err := embeddingRepo.AddEmbeddings(ctx, &core.EmbeddingRecord{
				ResourceID: "res-b",
				Content:    "a chunk from the competing writer",
				Vector:     []float32{0, 1, 0},
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Conflicted first insert must succeed after retry, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("Expected 2 attempts, got %d", attempts)
	}

	count, err := embeddingRepo.CountEmbeddings(ctx)
	if err != nil {
		t.Fatalf("Failed to count embeddings: %v", err)
	}
	if count != 2 {
		t.Fatalf("Expected 2 embeddings, got %d", count)
	}
	records, err := embeddingRepo.GetEmbeddingsByResource(ctx, "res-a")
	if err != nil {
		t.Fatalf("Failed to get embeddings: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 embedding for res-a, got %d", len(records))
	}
}

func TestWithTransactionConflictExhaustsRetries(t *testing.T) {
	resourceRepo, embeddingRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() {
		embeddingRepo.Close()
		resourceRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	resource := &core.Resource{ID: "res-race", Content: "content"}
	if _, err := resourceRepo.AddResource(ctx, resource); err != nil {
		t.Fatalf("Failed to add resource: %v", err)
	}

	// Every attempt reads the resource key, and a competitor rewrites it
	// before the commit, so the transaction never wins the race.
	err = backend.WithTransaction(ctx, func(txCtx context.Context) error {
		if _, err := embeddingRepo.AddEmbeddings(txCtx, &core.EmbeddingRecord{
			ResourceID: "res-race",
			Content:    "a chunk that never lands",
			Vector:     []float32{1, 0},
		}); err != nil {
			return err
		}
		return backend.WithTx(func(tx *badger.Txn) error {
			if err := tx.Set(makeResourceKey("res-race"), storage.MarshalResource(resource)); err != nil {
				return err
			}
			return tx.Commit()
		}, true)
	})
	if !errors.Is(err, storage.ErrTransactionFailed) {
		t.Fatalf("Expected ErrTransactionFailed after exhausted retries, got %v", err)
	}

	records, err := embeddingRepo.GetEmbeddingsByResource(ctx, "res-race")
	if err != nil {
		t.Fatalf("Failed to get embeddings: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("Conflicted transaction must not commit, got %d embeddings", len(records))
	}
}
