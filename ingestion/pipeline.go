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


package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"

	"github.com/lexemic/recall/ai"
	"github.com/lexemic/recall/chunk"
	"github.com/lexemic/recall/core"
	"github.com/lexemic/recall/storage"
	"github.com/panjf2000/ants/v2"
)

// Pipeline orchestrates the ingestion of resources: it chunks content,
// generates embeddings, and stores the resource together with its
// embedding records in a single transaction.
type Pipeline struct {
	resourceRepository  storage.ResourceRepository
	embeddingRepository storage.EmbeddingRepository
	embedder            ai.Embedder
	splitter            *chunk.Splitter
	pool                *ants.Pool
	logger              *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for IngestMany.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithSplitter sets a custom chunk splitter.
func WithSplitter(splitter *chunk.Splitter) Option {
	return func(p *Pipeline) error {
		if splitter != nil {
			p.splitter = splitter
		}
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	resourceRepository storage.ResourceRepository,
	embeddingRepository storage.EmbeddingRepository,
	embedder ai.Embedder,
	opts ...Option,
) (*Pipeline, error) {
	if resourceRepository == nil {
		return nil, ErrResourceRepositoryRequired
	}
	if embeddingRepository == nil {
		return nil, ErrEmbeddingRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		resourceRepository:  resourceRepository,
		embeddingRepository: embeddingRepository,
		embedder:            embedder,
		splitter:            chunk.NewSplitter(),
		pool:                pool,
		logger:              slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Ingest chunks content, embeds every chunk, and stores the resource with
// its embedding records atomically. A mid-pipeline failure stores nothing.
//
// An empty resourceID derives a deterministic one from the content, so
// re-ingesting identical content yields storage.ErrDuplicateKey rather
// than a duplicate. Content that yields no chunks (blank, or everything
// filtered as too short) stores the resource alone.
func (p *Pipeline) Ingest(ctx context.Context, resourceID, content string) (*core.Resource, error) {
	if resourceID == "" {
		resourceID = core.ResourceIDFromContent(content)
	}
	return p.ingest(ctx, resourceID, content, p.splitter.Split(content))
}

// IngestChunks stores pre-chunked content, skipping the splitter. Chunks
// shorter than the minimum length are dropped, and the resource content is
// the chunks joined with blank lines.
func (p *Pipeline) IngestChunks(ctx context.Context, resourceID string, chunks []string) (*core.Resource, error) {
	kept := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if len(c) >= core.MinChunkLen {
			kept = append(kept, c)
		}
	}

	content := strings.Join(chunks, "\n\n")
	if resourceID == "" {
		resourceID = core.ResourceIDFromContent(content)
	}
	return p.ingest(ctx, resourceID, content, kept)
}

func (p *Pipeline) ingest(ctx context.Context, resourceID, content string, chunks []string) (*core.Resource, error) {
	resource := &core.Resource{
		ID:      resourceID,
		Content: content,
	}

	if len(chunks) == 0 {
		p.logger.Warn("content produced no chunks, storing resource alone",
			"resource_id", resourceID)
		return p.resourceRepository.AddResource(ctx, resource)
	}

	// One batched provider call for the whole resource.
	vectors, err := p.embedder.EmbedTexts(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("embedding chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: %d vectors for %d chunks",
			ErrEmbeddingCountMismatch, len(vectors), len(chunks))
	}

	records := make([]*core.EmbeddingRecord, len(chunks))
	for i, c := range chunks {
		records[i] = &core.EmbeddingRecord{
			ResourceID: resourceID,
			Content:    c,
			Vector:     vectors[i],
		}
	}

	err = p.resourceRepository.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := p.resourceRepository.AddResource(ctx, resource); err != nil {
			return err
		}
		_, err := p.embeddingRepository.AddEmbeddings(ctx, records...)
		return err
	})
	if err != nil {
		return nil, err
	}

	p.logger.Debug("ingested resource",
		"resource_id", resourceID, "chunks", len(records))
	return resource, nil
}

// Item is one unit of work for IngestMany.
type Item struct {
	ResourceID string
	Content    string
}

// IngestMany ingests items concurrently over the worker pool. Each item
// commits independently; errors are collected and joined. Ordering across
// items is unspecified.
func (p *Pipeline) IngestMany(ctx context.Context, items []Item) error {
	var (
		mu   sync.Mutex
		errs []error
		wg   sync.WaitGroup
	)

	for _, item := range items {
		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			if _, err := p.Ingest(ctx, item.ResourceID, item.Content); err != nil {
				p.logger.Error("error ingesting item",
					"resource_id", item.ResourceID, "err", err)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			errs = append(errs, submitErr)
			mu.Unlock()
		}
	}

	wg.Wait()
	return errors.Join(errs...)
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
