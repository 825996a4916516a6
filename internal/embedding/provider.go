// Package embedding converts text into fixed-dimension vectors. The same
// provider configuration must be used at ingest time and query time; mixing
// providers silently corrupts similarity scores.
package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/civicquery/civicquery/internal/config"
)

// ErrUnavailable indicates the embedding backend could not be reached.
var ErrUnavailable = errors.New("embedding backend unavailable")

// Provider generates embeddings for text.
type Provider interface {
	// EmbedQuery embeds a single query string.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// EmbedDocuments embeds a batch of document chunks. The result is
	// index-aligned with the input.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// Model returns the model identifier, recorded alongside the persisted
	// vector store so later query-time embedding uses the identical model.
	Model() string
}

// New constructs the configured embedding provider. Selection happens once
// at startup; an unknown provider is a configuration error.
func New(cfg *config.Config) (Provider, error) {
	switch cfg.EmbeddingProvider {
	case config.ProviderOllama:
		return NewOllama(cfg.OllamaBaseURL, cfg.EmbeddingModel), nil
	case config.ProviderOpenAI:
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.EmbeddingModel)
	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider %q",
			config.ErrInvalidConfig, cfg.EmbeddingProvider)
	}
}
