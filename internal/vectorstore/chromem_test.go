package vectorstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicquery/civicquery/internal/splitter"
)

func testRecords() []Record {
	return []Record{
		{
			Chunk:     splitter.Chunk{Text: "eligibility rules", Source: "docs/policy.pdf", Page: 2, Index: 0},
			Embedding: []float32{1, 0, 0},
		},
		{
			Chunk:     splitter.Chunk{Text: "submission deadline", Source: "docs/policy.pdf", Page: 3, Index: 1},
			Embedding: []float32{0, 1, 0},
		},
		{
			Chunk:     splitter.Chunk{Text: "evaluation criteria", Source: "docs/criteria.md", Page: 0, Index: 0},
			Embedding: []float32{0, 0, 1},
		},
	}
}

func TestChromem_AddAndSearch(t *testing.T) {
	ctx := context.Background()
	store, err := NewChromem(t.TempDir(), nil)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Add(ctx, testRecords()))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	results, err := store.Search(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	best := results[0]
	assert.Equal(t, "eligibility rules", best.Chunk.Text)
	assert.Equal(t, "docs/policy.pdf", best.Chunk.Source)
	assert.Equal(t, 2, best.Chunk.Page)
	assert.Equal(t, 0, best.Chunk.Index)
	assert.NotEmpty(t, best.Embedding, "search results must carry embeddings for MMR")
	assert.Greater(t, best.Similarity, results[1].Similarity)
}

func TestChromem_EmptyStoreReturnsNoResults(t *testing.T) {
	store, err := NewChromem(t.TempDir(), nil)
	require.NoError(t, err)
	defer store.Close()

	results, err := store.Search(context.Background(), []float32{1, 0, 0}, 5)
	require.NoError(t, err, "empty store must not error")
	assert.Empty(t, results)
}

func TestChromem_KCappedAtCount(t *testing.T) {
	ctx := context.Background()
	store, err := NewChromem(t.TempDir(), nil)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Add(ctx, testRecords()))

	results, err := store.Search(ctx, []float32{1, 1, 1}, 50)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestChromem_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewChromem(dir, nil)
	require.NoError(t, err)
	require.NoError(t, store.Add(ctx, testRecords()))
	require.NoError(t, store.Close())

	reopened, err := NewChromem(dir, nil)
	require.NoError(t, err)
	defer reopened.Close()

	count, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count, "records must survive restart")

	results, err := reopened.Search(ctx, []float32{0, 1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "submission deadline", results[0].Chunk.Text)
}

func TestChromem_PathIsFileNotDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store")
	require.NoError(t, os.WriteFile(path, []byte("not a store"), 0o644))

	_, err := NewChromem(path, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStoreCorrupt), "expected ErrStoreCorrupt, got %v", err)
}

func TestManifest_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	m := Manifest{
		EmbeddingProvider: "ollama",
		EmbeddingModel:    "nomic-embed-text",
		ChunkSize:         1500,
		ChunkOverlap:      200,
		Documents:         4,
		Chunks:            37,
		IngestedAt:        time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, WriteManifest(dir, m))

	got, err := ReadManifest(dir)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, m, *got)
}

func TestManifest_MissingIsNotAnError(t *testing.T) {
	got, err := ReadManifest(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, got)
}

// TestChromem_ManifestCoexists ensures the manifest file does not confuse
// the persisted database on reload.
func TestChromem_ManifestCoexists(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewChromem(dir, nil)
	require.NoError(t, err)
	require.NoError(t, store.Add(ctx, testRecords()))
	require.NoError(t, WriteManifest(dir, Manifest{EmbeddingModel: "nomic-embed-text"}))
	require.NoError(t, store.Close())

	reopened, err := NewChromem(dir, nil)
	require.NoError(t, err)
	defer reopened.Close()

	count, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
