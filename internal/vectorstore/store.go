// Package vectorstore persists chunk embeddings and serves similarity search.
package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/civicquery/civicquery/internal/config"
	"github.com/civicquery/civicquery/internal/splitter"
)

var (
	// ErrStoreCorrupt indicates the persisted store directory exists but
	// cannot be read. An empty store is not an error; it returns zero results.
	ErrStoreCorrupt = errors.New("vector store directory unreadable or corrupt")

	// ErrUnreachable indicates a remote vector store backend is down.
	ErrUnreachable = errors.New("vector store unreachable")

	// ErrDimensionMismatch indicates an embedding whose dimension differs
	// from the vectors already in the store.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// Record pairs a chunk with its embedding for storage.
type Record struct {
	Chunk     splitter.Chunk
	Embedding []float32
}

// Result is a similarity search hit. The embedding is returned so the
// retriever can compute pairwise similarity between candidates.
type Result struct {
	Chunk      splitter.Chunk
	Embedding  []float32
	Similarity float32
}

// Store is the vector storage contract. Implementations must be safe for
// concurrent reads; writes only happen during offline ingestion.
type Store interface {
	// Add persists records in bulk.
	Add(ctx context.Context, records []Record) error

	// Search returns the k nearest records by cosine similarity, best
	// first. An empty store returns zero results and no error.
	Search(ctx context.Context, vector []float32, k int) ([]Result, error)

	// Count reports the number of stored records.
	Count(ctx context.Context) (int, error)

	Close() error
}

// Open constructs the configured store implementation.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, error) {
	switch cfg.VectorStore {
	case config.StoreChromem:
		return NewChromem(cfg.PersistDir, logger)
	case config.StoreQdrant:
		return NewQdrant(ctx, cfg.QdrantHost, cfg.QdrantPort, logger)
	default:
		return nil, fmt.Errorf("%w: unsupported vector store %q",
			config.ErrInvalidConfig, cfg.VectorStore)
	}
}
