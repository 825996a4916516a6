// Package retriever selects grounding chunks for a query using
// maximal-marginal-relevance over a similarity candidate pool.
package retriever

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/civicquery/civicquery/internal/embedding"
	"github.com/civicquery/civicquery/internal/splitter"
	"github.com/civicquery/civicquery/internal/vectorstore"
)

// Defaults for the relevance/diversity trade-off.
const (
	DefaultK      = 4
	DefaultFetchK = 20
	DefaultLambda = 0.5
)

// Retriever embeds a query, fetches a candidate pool by pure similarity,
// and narrows it with MMR to reduce near-duplicate chunks.
type Retriever struct {
	store    vectorstore.Store
	embedder embedding.Provider
	k        int
	fetchK   int
	lambda   float64
	logger   *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithK sets the number of chunks returned.
func WithK(k int) Option { return func(r *Retriever) { r.k = k } }

// WithFetchK sets the similarity candidate pool size.
func WithFetchK(fetchK int) Option { return func(r *Retriever) { r.fetchK = fetchK } }

// WithLambda sets the MMR relevance/diversity trade-off in [0,1];
// 1 is pure relevance.
func WithLambda(lambda float64) Option { return func(r *Retriever) { r.lambda = lambda } }

// New creates a Retriever with the given store and embedder.
func New(store vectorstore.Store, embedder embedding.Provider, logger *slog.Logger, opts ...Option) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Retriever{
		store:    store,
		embedder: embedder,
		k:        DefaultK,
		fetchK:   DefaultFetchK,
		lambda:   DefaultLambda,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.fetchK < r.k {
		r.fetchK = r.k
	}
	return r
}

// Retrieve returns up to k chunks relevant to the query, ordered as MMR
// selected them. An empty store yields zero chunks and no error.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]splitter.Chunk, error) {
	vector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	candidates, err := r.store.Search(ctx, vector, r.fetchK)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	selected := maximalMarginalRelevance(vector, candidates, r.k, r.lambda)

	chunks := make([]splitter.Chunk, len(selected))
	for i, s := range selected {
		chunks[i] = s.Chunk
	}

	r.logger.Debug("retrieved chunks",
		"candidates", len(candidates),
		"selected", len(chunks),
	)
	return chunks, nil
}
