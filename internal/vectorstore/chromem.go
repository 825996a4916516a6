package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	chromem "github.com/philippgille/chromem-go"
	"github.com/google/uuid"

	"github.com/civicquery/civicquery/internal/splitter"
)

// collectionName is the single chromem collection holding the corpus.
const collectionName = "civicquery_chunks"

// Chromem is an embedded vector store persisted to a local directory.
// It survives process restarts without any external service.
type Chromem struct {
	db         *chromem.DB
	collection *chromem.Collection
	logger     *slog.Logger
}

// NewChromem opens (or creates) a persistent store at dir. A missing or
// empty directory yields an empty store; a directory that exists but cannot
// be loaded yields ErrStoreCorrupt.
func NewChromem(dir string, logger *slog.Logger) (*Chromem, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrStoreCorrupt, dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating %s: %v", ErrStoreCorrupt, dir, err)
	}

	db, err := chromem.NewPersistentDB(dir, false)
	if err != nil {
		return nil, fmt.Errorf("%w: loading %s: %v", ErrStoreCorrupt, dir, err)
	}

	// Records always carry precomputed embeddings, so the collection's
	// embedding function must never be called.
	collection, err := db.GetOrCreateCollection(collectionName, nil, rejectEmbedding)
	if err != nil {
		return nil, fmt.Errorf("%w: opening collection: %v", ErrStoreCorrupt, err)
	}

	logger.Info("vector store opened", "backend", "chromem", "path", dir,
		"records", collection.Count())

	return &Chromem{db: db, collection: collection, logger: logger}, nil
}

func rejectEmbedding(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("store has no embedding function; records must carry precomputed embeddings")
}

func (s *Chromem) Add(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	docs := make([]chromem.Document, len(records))
	for i, rec := range records {
		docs[i] = chromem.Document{
			ID:        uuid.New().String(),
			Content:   rec.Chunk.Text,
			Embedding: rec.Embedding,
			Metadata: map[string]string{
				"source":      rec.Chunk.Source,
				"page":        strconv.Itoa(rec.Chunk.Page),
				"chunk_index": strconv.Itoa(rec.Chunk.Index),
			},
		}
	}

	// Concurrency 1: embeddings are precomputed, so there is no work to
	// parallelize, and writes stay ordered.
	if err := s.collection.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("adding records: %w", err)
	}

	s.logger.Debug("added records", "count", len(records))
	return nil
}

func (s *Chromem) Search(ctx context.Context, vector []float32, k int) ([]Result, error) {
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	// chromem requires k <= document count.
	if k > count {
		k = count
	}

	hits, err := s.collection.QueryEmbedding(ctx, vector, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying collection: %w", err)
	}

	results := make([]Result, len(hits))
	for i, hit := range hits {
		results[i] = Result{
			Chunk:      chunkFromMetadata(hit.Content, hit.Metadata),
			Embedding:  hit.Embedding,
			Similarity: hit.Similarity,
		}
	}
	return results, nil
}

func (s *Chromem) Count(ctx context.Context) (int, error) {
	return s.collection.Count(), nil
}

// Close is a no-op: chromem persists on every write.
func (s *Chromem) Close() error { return nil }

func chunkFromMetadata(content string, meta map[string]string) splitter.Chunk {
	page, _ := strconv.Atoi(meta["page"])
	index, _ := strconv.Atoi(meta["chunk_index"])
	return splitter.Chunk{
		Text:   content,
		Source: meta["source"],
		Page:   page,
		Index:  index,
	}
}
