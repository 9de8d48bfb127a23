// Copyright 2025 Lexemic Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lexemic/recall/ai"
	"github.com/lexemic/recall/core"
	"github.com/lexemic/recall/storage"
)

// NoRelevantInformation is returned by Retrieve when no stored chunk
// scores above the similarity threshold. Callers pass it downstream
// verbatim, so its wording is part of the contract.
const NoRelevantInformation = "No relevant information found in the knowledge base."

const (
	// DefaultThreshold is the minimum cosine similarity a chunk must
	// exceed to be considered relevant.
	DefaultThreshold float32 = 0.75

	// DefaultTopK is the maximum number of chunks returned per query.
	DefaultTopK = 4
)

// Retriever answers natural-language queries from the embedding store.
type Retriever struct {
	embeddingRepository storage.EmbeddingRepository
	embedder            ai.Embedder
	threshold           float32
	topK                int
	monitor             RetrievalMonitor
	logger              *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithThreshold sets the similarity threshold.
// Default is DefaultThreshold.
func WithThreshold(threshold float32) Option {
	return func(r *Retriever) error {
		if threshold < -1 || threshold > 1 {
			return fmt.Errorf("%w: %v", ErrInvalidThreshold, threshold)
		}
		r.threshold = threshold
		return nil
	}
}

// WithTopK sets the maximum number of results per query.
// Default is DefaultTopK.
func WithTopK(topK int) Option {
	return func(r *Retriever) error {
		if topK < 1 {
			return fmt.Errorf("%w: %d", ErrInvalidTopK, topK)
		}
		r.topK = topK
		return nil
	}
}

// WithMonitor sets a monitor receiving callbacks at each retrieval stage.
func WithMonitor(monitor RetrievalMonitor) Option {
	return func(r *Retriever) error {
		if monitor != nil {
			r.monitor = monitor
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRetriever creates a new retriever.
func NewRetriever(
	embeddingRepository storage.EmbeddingRepository,
	embedder ai.Embedder,
	opts ...Option,
) (*Retriever, error) {
	if embeddingRepository == nil {
		return nil, ErrEmbeddingRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	r := &Retriever{
		embeddingRepository: embeddingRepository,
		embedder:            embedder,
		threshold:           DefaultThreshold,
		topK:                DefaultTopK,
		monitor:             &noopMonitor{},
		logger:              slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Search returns the raw ranked matches for a query, most similar first.
// An empty slice means nothing scored above the threshold.
func (r *Retriever) Search(ctx context.Context, query string) ([]*core.SearchResult, error) {
	r.monitor.Start(query)

	embedding, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		r.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}
	r.monitor.AfterQueryEmbedding(embedding)

	results, err := r.embeddingRepository.FindSimilar(ctx, embedding, r.threshold, r.topK)
	if err != nil {
		r.logger.Error("error querying for similar chunks", "err", err)
		return nil, err
	}
	r.monitor.AfterSimilaritySearch(results)

	return results, nil
}

// Retrieve answers a query with a formatted context block: each relevant
// chunk prefixed with its score, most similar first. When nothing is
// relevant it returns NoRelevantInformation; errors are never folded into
// that sentinel.
func (r *Retriever) Retrieve(ctx context.Context, query string) (string, error) {
	results, err := r.Search(ctx, query)
	if err != nil {
		return "", err
	}

	if len(results) == 0 {
		r.monitor.Finish(NoRelevantInformation)
		return NoRelevantInformation, nil
	}

	parts := make([]string, len(results))
	for i, result := range results {
		parts[i] = fmt.Sprintf("[Score: %.4f] %s", result.Score, result.Record.Content)
	}
	formatted := strings.Join(parts, "\n\n")

	r.monitor.Finish(formatted)
	return formatted, nil
}
