// Package indexer orchestrates corpus ingestion: load, split, embed, store.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/civicquery/civicquery/internal/document"
	"github.com/civicquery/civicquery/internal/embedding"
	"github.com/civicquery/civicquery/internal/splitter"
	"github.com/civicquery/civicquery/internal/vectorstore"
)

// embedBatchSize bounds the number of chunk texts sent to the embedding
// backend in one call.
const embedBatchSize = 64

// Result contains statistics about one ingestion run.
type Result struct {
	Documents int
	Chunks    int
	Duration  time.Duration
}

// Pipeline wires the ingestion stages together.
type Pipeline struct {
	loader   *document.Loader
	splitter *splitter.Splitter
	embedder embedding.Provider
	store    vectorstore.Store
	logger   *slog.Logger
}

// NewPipeline creates an ingestion pipeline with the given components.
func NewPipeline(
	loader *document.Loader,
	split *splitter.Splitter,
	embedder embedding.Provider,
	store vectorstore.Store,
	logger *slog.Logger,
) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		loader:   loader,
		splitter: split,
		embedder: embedder,
		store:    store,
		logger:   logger,
	}
}

// Ingest loads every supported file under docsDir, splits the documents
// into chunks, embeds them, and persists the records.
func (p *Pipeline) Ingest(ctx context.Context, docsDir string) (*Result, error) {
	start := time.Now()

	docs, err := p.loader.LoadDir(docsDir)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	p.logger.Info("Loaded documents", "dir", docsDir, "count", len(docs))

	chunks := p.splitter.SplitDocuments(docs)
	p.logger.Info("Split documents", "chunks", len(chunks))

	for offset := 0; offset < len(chunks); offset += embedBatchSize {
		end := offset + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[offset:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		vectors, err := p.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed chunks %d-%d: %w", offset, end-1, err)
		}

		records := make([]vectorstore.Record, len(batch))
		for i, c := range batch {
			records[i] = vectorstore.Record{Chunk: c, Embedding: vectors[i]}
		}
		if err := p.store.Add(ctx, records); err != nil {
			return nil, fmt.Errorf("store chunks %d-%d: %w", offset, end-1, err)
		}

		p.logger.Debug("Stored batch", "from", offset, "to", end-1)
	}

	result := &Result{
		Documents: len(docs),
		Chunks:    len(chunks),
		Duration:  time.Since(start),
	}
	p.logger.Info("Ingestion complete",
		"documents", result.Documents,
		"chunks", result.Chunks,
		"duration", result.Duration,
	)
	return result, nil
}
