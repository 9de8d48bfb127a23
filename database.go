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


package recall

import (
	"io"
	"log/slog"

	"github.com/lexemic/recall/ai"
	"github.com/lexemic/recall/ai/openai"
	"github.com/lexemic/recall/ingestion"
	"github.com/lexemic/recall/reembed"
	"github.com/lexemic/recall/retrieval"
	"github.com/lexemic/recall/seed"
	"github.com/lexemic/recall/storage"
	"github.com/lexemic/recall/storage/badger"
)

// Database bundles the storage backend, the repositories, and the
// embedding provider behind one handle.
type Database struct {
	backend       *badger.Backend
	resourceRepo  storage.ResourceRepository
	embeddingRepo storage.EmbeddingRepository
	embedder      ai.Embedder
	logger        *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	embedder ai.Embedder
	inMemory bool
}

// WithAIConfig sets the embedding provider configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithEmbedder injects an embedder directly, bypassing the provider
// configuration. Intended for tests.
func WithEmbedder(embedder ai.Embedder) DatabaseOption {
	return func(o *databaseOptions) {
		o.embedder = embedder
	}
}

// WithInMemory opens the store in memory, without touching disk.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// NewDatabase opens (or creates) a knowledge base at filePath.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	resourceRepo, err := badger.NewResourceRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	embeddingRepo, err := badger.NewEmbeddingRepository(backend)
	if err != nil {
		resourceRepo.Close()
		backend.Close()
		return nil, err
	}

	embedder := options.embedder
	if embedder == nil {
		embedder, err = openai.NewEmbedder(options.aiConfig)
		if err != nil {
			embeddingRepo.Close()
			resourceRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Database{
		backend:       backend,
		resourceRepo:  resourceRepo,
		embeddingRepo: embeddingRepo,
		embedder:      embedder,
		logger:        slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	if err := db.embeddingRepo.Close(); err != nil {
		db.logger.Error("error closing embedding repository", "err", err)
		return err
	}
	if err := db.resourceRepo.Close(); err != nil {
		db.logger.Error("error closing resource repository", "err", err)
		return err
	}
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) ResourceRepository() storage.ResourceRepository {
	return db.resourceRepo
}

func (db *Database) EmbeddingRepository() storage.EmbeddingRepository {
	return db.embeddingRepo
}

func (db *Database) Embedder() ai.Embedder {
	return db.embedder
}

func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(db.resourceRepo, db.embeddingRepo, db.embedder, opts...)
}

func (db *Database) NewRetriever(opts ...retrieval.Option) (*retrieval.Retriever, error) {
	return retrieval.NewRetriever(db.embeddingRepo, db.embedder, opts...)
}

// NewSeeder creates a seeder sharing the database's pipeline dependencies.
// The returned pipeline must be released by the caller via its Release
// method; the seeder itself holds no resources.
func (db *Database) NewSeeder(opts ...ingestion.Option) (*seed.Seeder, *ingestion.Pipeline, error) {
	pipeline, err := db.NewIngestionPipeline(opts...)
	if err != nil {
		return nil, nil, err
	}
	seeder, err := seed.NewSeeder(db.resourceRepo, pipeline)
	if err != nil {
		pipeline.Release()
		return nil, nil, err
	}
	return seeder, pipeline, nil
}

// NewReembedder creates a reembedder writing progress to the given writer.
func (db *Database) NewReembedder(config *reembed.Config, progress io.Writer) *reembed.Reembedder {
	return reembed.NewReembedder(db.embeddingRepo, db.embedder, config, progress)
}
