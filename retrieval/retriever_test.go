package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/lexemic/recall/ai/mock"
	"github.com/lexemic/recall/core"
	"github.com/lexemic/recall/storage"
	"github.com/lexemic/recall/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedEmbedder maps exact texts to fixed vectors, so tests control
// similarity scores precisely.
type fixedEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (f *fixedEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.vectors[text]
	if !ok {
		return nil, fmt.Errorf("no fixture vector for %q", text)
	}
	return v, nil
}

func (f *fixedEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := f.EmbedText(ctx, text)
		if err != nil {
			return nil, err
		}
		result[i] = v
	}
	return result, nil
}

func newTestStore(t *testing.T) (storage.ResourceRepository, storage.EmbeddingRepository) {
	t.Helper()

	resourceRepo, embeddingRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		embeddingRepo.Close()
		resourceRepo.Close()
		backend.Close()
	})
	return resourceRepo, embeddingRepo
}

func seedChunks(t *testing.T, resourceRepo storage.ResourceRepository, embeddingRepo storage.EmbeddingRepository, chunks map[string][]float32, order []string) {
	t.Helper()

	ctx := context.Background()
	_, err := resourceRepo.AddResource(ctx, &core.Resource{ID: "res-1", Content: "content"})
	require.NoError(t, err)

	for _, content := range order {
		_, err := embeddingRepo.AddEmbeddings(ctx, &core.EmbeddingRecord{
			ResourceID: "res-1",
			Content:    content,
			Vector:     chunks[content],
		})
		require.NoError(t, err)
	}
}

func TestNewRetrieverRequiresDependencies(t *testing.T) {
	_, embeddingRepo := newTestStore(t)

	_, err := NewRetriever(nil, mock.NewMockEmbedder())
	assert.ErrorIs(t, err, ErrEmbeddingRepositoryRequired)

	_, err = NewRetriever(embeddingRepo, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}

func TestRetrieverOptionValidation(t *testing.T) {
	_, embeddingRepo := newTestStore(t)
	embedder := mock.NewMockEmbedder()

	_, err := NewRetriever(embeddingRepo, embedder, WithThreshold(1.5))
	assert.ErrorIs(t, err, ErrInvalidThreshold)

	_, err = NewRetriever(embeddingRepo, embedder, WithTopK(0))
	assert.ErrorIs(t, err, ErrInvalidTopK)
}

func TestRetrieveFormatsRankedResults(t *testing.T) {
	resourceRepo, embeddingRepo := newTestStore(t)

	// Cosine similarity against the query {1, 0}: 1.0, ~0.8944, ~0.7071.
	chunks := map[string][]float32{
		"the perfectly matching chunk": {1, 0},
		"the close second best chunk":  {2, 1},
		"the below threshold chunk":    {1, 1},
	}
	seedChunks(t, resourceRepo, embeddingRepo, chunks,
		[]string{"the below threshold chunk", "the perfectly matching chunk", "the close second best chunk"})

	embedder := &fixedEmbedder{vectors: map[string][]float32{"what matches": {1, 0}}}
	retriever, err := NewRetriever(embeddingRepo, embedder)
	require.NoError(t, err)

	answer, err := retriever.Retrieve(context.Background(), "what matches")
	require.NoError(t, err)

	parts := strings.Split(answer, "\n\n")
	require.Len(t, parts, 2)
	assert.Equal(t, "[Score: 1.0000] the perfectly matching chunk", parts[0])
	assert.Equal(t, "[Score: 0.8944] the close second best chunk", parts[1])
}

func TestRetrieveSentinelOnNoMatch(t *testing.T) {
	resourceRepo, embeddingRepo := newTestStore(t)

	chunks := map[string][]float32{
		"an entirely unrelated chunk": {0, 1},
	}
	seedChunks(t, resourceRepo, embeddingRepo, chunks, []string{"an entirely unrelated chunk"})

	embedder := &fixedEmbedder{vectors: map[string][]float32{"unrelated query": {1, 0}}}
	retriever, err := NewRetriever(embeddingRepo, embedder)
	require.NoError(t, err)

	answer, err := retriever.Retrieve(context.Background(), "unrelated query")
	require.NoError(t, err)
	assert.Equal(t, NoRelevantInformation, answer)
}

func TestRetrieveSentinelOnEmptyStore(t *testing.T) {
	_, embeddingRepo := newTestStore(t)

	embedder := &fixedEmbedder{vectors: map[string][]float32{"any query": {1, 0}}}
	retriever, err := NewRetriever(embeddingRepo, embedder)
	require.NoError(t, err)

	answer, err := retriever.Retrieve(context.Background(), "any query")
	require.NoError(t, err)
	assert.Equal(t, NoRelevantInformation, answer)
}

func TestRetrieveTopKCapsResults(t *testing.T) {
	resourceRepo, embeddingRepo := newTestStore(t)

	chunks := make(map[string][]float32)
	var order []string
	for i := 0; i < 6; i++ {
		content := fmt.Sprintf("highly similar chunk number %d", i)
		chunks[content] = []float32{1, 0}
		order = append(order, content)
	}
	seedChunks(t, resourceRepo, embeddingRepo, chunks, order)

	embedder := &fixedEmbedder{vectors: map[string][]float32{"the query": {1, 0}}}
	retriever, err := NewRetriever(embeddingRepo, embedder)
	require.NoError(t, err)

	answer, err := retriever.Retrieve(context.Background(), "the query")
	require.NoError(t, err)
	assert.Len(t, strings.Split(answer, "\n\n"), DefaultTopK)

	// A tighter cap applies too.
	retriever, err = NewRetriever(embeddingRepo, embedder, WithTopK(2))
	require.NoError(t, err)
	answer, err = retriever.Retrieve(context.Background(), "the query")
	require.NoError(t, err)
	assert.Len(t, strings.Split(answer, "\n\n"), 2)
}

func TestRetrieveErrorIsNotSentinel(t *testing.T) {
	_, embeddingRepo := newTestStore(t)

	boom := errors.New("provider down")
	retriever, err := NewRetriever(embeddingRepo, &fixedEmbedder{err: boom})
	require.NoError(t, err)

	answer, err := retriever.Retrieve(context.Background(), "any query")
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, answer)
}

func TestSearchReturnsStructuredResults(t *testing.T) {
	resourceRepo, embeddingRepo := newTestStore(t)

	chunks := map[string][]float32{
		"the structured result chunk": {1, 0},
	}
	seedChunks(t, resourceRepo, embeddingRepo, chunks, []string{"the structured result chunk"})

	embedder := &fixedEmbedder{vectors: map[string][]float32{"the query": {1, 0}}}
	retriever, err := NewRetriever(embeddingRepo, embedder)
	require.NoError(t, err)

	results, err := retriever.Search(context.Background(), "the query")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "the structured result chunk", results[0].Record.Content)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
}

// recordingMonitor captures the stages it saw.
type recordingMonitor struct {
	stages []string
}

func (m *recordingMonitor) Start(query string)         { m.stages = append(m.stages, "start") }
func (m *recordingMonitor) AfterQueryEmbedding([]float32) {
	m.stages = append(m.stages, "embed")
}
func (m *recordingMonitor) AfterSimilaritySearch([]*core.SearchResult) {
	m.stages = append(m.stages, "search")
}
func (m *recordingMonitor) Finish(string) { m.stages = append(m.stages, "finish") }

func TestMonitorReceivesStages(t *testing.T) {
	_, embeddingRepo := newTestStore(t)

	monitor := &recordingMonitor{}
	embedder := &fixedEmbedder{vectors: map[string][]float32{"the query": {1, 0}}}
	retriever, err := NewRetriever(embeddingRepo, embedder, WithMonitor(monitor))
	require.NoError(t, err)

	_, err = retriever.Retrieve(context.Background(), "the query")
	require.NoError(t, err)
	assert.Equal(t, []string{"start", "embed", "search", "finish"}, monitor.stages)
}
