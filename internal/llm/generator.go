// Package llm generates answers from assembled prompts using a chat model.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/civicquery/civicquery/internal/config"
)

// ErrUnavailable indicates the model backend could not be reached.
var ErrUnavailable = errors.New("llm: backend unavailable")

// Generator produces a completion for a fully assembled prompt.
type Generator interface {
	// Generate returns the model's answer text for the prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// Model returns the identifier of the underlying model.
	Model() string
}

// New builds the generator selected by the configuration.
func New(cfg *config.Config) (Generator, error) {
	switch cfg.LLMProvider {
	case config.ProviderOllama:
		return NewOllama(cfg.OllamaBaseURL, cfg.LLMModel, cfg.Temperature), nil
	case config.ProviderOpenAI:
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.LLMModel, cfg.Temperature)
	default:
		return nil, fmt.Errorf("%w: unknown llm provider %q", config.ErrInvalidConfig, cfg.LLMProvider)
	}
}
