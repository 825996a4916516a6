package indexer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicquery/civicquery/internal/document"
	"github.com/civicquery/civicquery/internal/splitter"
	"github.com/civicquery/civicquery/internal/vectorstore"
)

type fakeEmbedder struct {
	calls [][]string
	err   error
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (f *fakeEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.calls = append(f.calls, texts)
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func (f *fakeEmbedder) Model() string { return "fake-embed" }

type recordingStore struct {
	records []vectorstore.Record
	err     error
}

func (s *recordingStore) Add(_ context.Context, records []vectorstore.Record) error {
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, records...)
	return nil
}

func (s *recordingStore) Search(context.Context, []float32, int) ([]vectorstore.Result, error) {
	return nil, nil
}

func (s *recordingStore) Count(context.Context) (int, error) { return len(s.records), nil }
func (s *recordingStore) Close() error                       { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeCorpus(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rules.md"),
		[]byte("# Rules\n\nSubmissions close on March 1.\n\nTeams may have up to five members."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "faq.txt"),
		[]byte("The prize pool is announced at the kickoff event."), 0o644))
	return dir
}

func newPipeline(t *testing.T, embedder *fakeEmbedder, store *recordingStore) *Pipeline {
	t.Helper()
	split, err := splitter.New(200, 20)
	require.NoError(t, err)
	return NewPipeline(document.NewLoader(discardLogger()), split, embedder, store, discardLogger())
}

func TestPipeline_Ingest(t *testing.T) {
	dir := writeCorpus(t)
	embedder := &fakeEmbedder{}
	store := &recordingStore{}

	result, err := newPipeline(t, embedder, store).Ingest(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Documents)
	assert.Equal(t, result.Chunks, len(store.records))
	assert.NotEmpty(t, store.records)

	for _, rec := range store.records {
		assert.NotEmpty(t, rec.Chunk.Text)
		assert.NotEmpty(t, rec.Chunk.Source)
		assert.Equal(t, []float32{1, 0}, rec.Embedding)
	}
}

func TestPipeline_IngestEmptyDir(t *testing.T) {
	_, err := newPipeline(t, &fakeEmbedder{}, &recordingStore{}).Ingest(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, document.ErrNoDocuments))
}

func TestPipeline_IngestEmbedderFailure(t *testing.T) {
	dir := writeCorpus(t)
	embedder := &fakeEmbedder{err: errors.New("backend offline")}
	store := &recordingStore{}

	_, err := newPipeline(t, embedder, store).Ingest(context.Background(), dir)
	require.Error(t, err)
	assert.Empty(t, store.records)
}

func TestPipeline_IngestStoreFailure(t *testing.T) {
	dir := writeCorpus(t)
	store := &recordingStore{err: errors.New("disk full")}

	_, err := newPipeline(t, &fakeEmbedder{}, store).Ingest(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store chunks")
}
