//go:build integration

package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupQdrant connects to a local Qdrant instance, skipping when absent.
func setupQdrant(t *testing.T) *Qdrant {
	store, err := NewQdrant(context.Background(), "localhost", 6334, nil)
	if err != nil {
		t.Skipf("Qdrant not available: %v", err)
	}
	return store
}

func TestQdrant_AddSearchRoundTrip(t *testing.T) {
	store := setupQdrant(t)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Add(ctx, testRecords()))

	results, err := store.Search(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	best := results[0]
	assert.Equal(t, "eligibility rules", best.Chunk.Text)
	assert.Equal(t, "docs/policy.pdf", best.Chunk.Source)
	assert.Equal(t, 2, best.Chunk.Page)
	assert.NotEmpty(t, best.Embedding, "search results must carry embeddings for MMR")
}

func TestQdrant_CountAfterAdd(t *testing.T) {
	store := setupQdrant(t)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Add(ctx, testRecords()))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, count, len(testRecords()))
}

func TestQdrant_DimensionMismatchRejected(t *testing.T) {
	store := setupQdrant(t)
	defer store.Close()

	records := testRecords()
	records[1].Embedding = []float32{1, 2}

	err := store.Add(context.Background(), records)
	require.ErrorIs(t, err, ErrDimensionMismatch)
}
