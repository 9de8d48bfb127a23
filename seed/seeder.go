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


package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lexemic/recall/ingestion"
	"github.com/lexemic/recall/storage"
)

// Seeder loads fixtures into an empty store. It is globally idempotent:
// if any resource exists at all, seeding is a no-op, even if the store
// holds none of the fixtures. Concurrent seeds of an empty store may
// race; that is accepted for fixture loading.
type Seeder struct {
	resourceRepository storage.ResourceRepository
	pipeline           *ingestion.Pipeline
	logger             *slog.Logger
}

// Option configures a Seeder.
type Option func(*Seeder)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Seeder) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSeeder creates a new seeder.
func NewSeeder(resourceRepository storage.ResourceRepository, pipeline *ingestion.Pipeline, opts ...Option) (*Seeder, error) {
	if resourceRepository == nil {
		return nil, ingestion.ErrResourceRepositoryRequired
	}
	if pipeline == nil {
		return nil, ErrPipelineRequired
	}

	s := &Seeder{
		resourceRepository: resourceRepository,
		pipeline:           pipeline,
		logger:             slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Seed ingests the fixtures in order unless the store already holds any
// resource. The first failing fixture aborts the run; fixtures ingested
// before it stay committed.
func (s *Seeder) Seed(ctx context.Context, fixtures []Fixture) error {
	has, err := s.resourceRepository.HasResources(ctx)
	if err != nil {
		return err
	}
	if has {
		s.logger.Info("store already populated, skipping seeding")
		return nil
	}

	for _, fixture := range fixtures {
		s.logger.Debug("seeding fixture", "id", fixture.ID)
		if _, err := s.pipeline.Ingest(ctx, fixture.ID, fixture.Content); err != nil {
			return fmt.Errorf("seeding fixture %q: %w", fixture.ID, err)
		}
	}

	s.logger.Info("seeded fixtures", "count", len(fixtures))
	return nil
}
