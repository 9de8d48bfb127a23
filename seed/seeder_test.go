package seed

import (
	"context"
	"testing"

	"github.com/lexemic/recall/ai/mock"
	"github.com/lexemic/recall/core"
	"github.com/lexemic/recall/ingestion"
	"github.com/lexemic/recall/storage"
	"github.com/lexemic/recall/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSeeder(t *testing.T) (*Seeder, storage.ResourceRepository, storage.EmbeddingRepository) {
	t.Helper()

	resourceRepo, embeddingRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		embeddingRepo.Close()
		resourceRepo.Close()
		backend.Close()
	})

	pipeline, err := ingestion.NewPipeline(resourceRepo, embeddingRepo, mock.NewMockEmbedder())
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	seeder, err := NewSeeder(resourceRepo, pipeline)
	require.NoError(t, err)

	return seeder, resourceRepo, embeddingRepo
}

func TestSeedPopulatesEmptyStore(t *testing.T) {
	seeder, resourceRepo, embeddingRepo := newTestSeeder(t)
	ctx := context.Background()

	fixtures := DefaultFixtures()
	require.NoError(t, seeder.Seed(ctx, fixtures))

	count, err := resourceRepo.CountResources(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(fixtures), count)

	// Every fixture is retrievable by its ID and has embeddings.
	for _, fixture := range fixtures {
		resource, err := resourceRepo.GetResource(ctx, fixture.ID)
		require.NoError(t, err)
		assert.Equal(t, fixture.Content, resource.Content)

		records, err := embeddingRepo.GetEmbeddingsByResource(ctx, fixture.ID)
		require.NoError(t, err)
		assert.NotEmpty(t, records, "fixture %s has no embeddings", fixture.ID)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	seeder, resourceRepo, _ := newTestSeeder(t)
	ctx := context.Background()

	require.NoError(t, seeder.Seed(ctx, DefaultFixtures()))
	require.NoError(t, seeder.Seed(ctx, DefaultFixtures()))

	count, err := resourceRepo.CountResources(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultFixtures()), count)
}

func TestSeedSkipsNonEmptyStore(t *testing.T) {
	seeder, resourceRepo, _ := newTestSeeder(t)
	ctx := context.Background()

	// A store holding anything at all is never seeded, fixtures or not.
	_, err := resourceRepo.AddResource(ctx, &core.Resource{
		ID:      "pre-existing",
		Content: "content that arrived before seeding",
	})
	require.NoError(t, err)

	require.NoError(t, seeder.Seed(ctx, DefaultFixtures()))

	count, err := resourceRepo.CountResources(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
