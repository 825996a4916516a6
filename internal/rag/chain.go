// Package rag composes retrieval, prompt assembly and generation into a
// single question-answering chain.
package rag

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/civicquery/civicquery/internal/llm"
	"github.com/civicquery/civicquery/internal/prompt"
	"github.com/civicquery/civicquery/internal/splitter"
)

// ChunkRetriever fetches the chunks most relevant to a query.
type ChunkRetriever interface {
	Retrieve(ctx context.Context, query string) ([]splitter.Chunk, error)
}

// Answer is the result of running the chain for one question.
type Answer struct {
	Text    string
	Sources []Citation
}

// Chain answers questions grounded in retrieved document chunks.
type Chain struct {
	retriever ChunkRetriever
	generator llm.Generator
	logger    *slog.Logger
}

// NewChain wires a retriever and a generator into a chain.
func NewChain(retriever ChunkRetriever, generator llm.Generator, logger *slog.Logger) *Chain {
	return &Chain{
		retriever: retriever,
		generator: generator,
		logger:    logger,
	}
}

// Ask retrieves context for the question, assembles the prompt, and returns
// the generated answer with deduplicated citations. Citations reflect what
// was retrieved, not what the model chose to use.
func (c *Chain) Ask(ctx context.Context, question string) (*Answer, error) {
	start := time.Now()

	chunks, err := c.retriever.Retrieve(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}

	text, err := c.generator.Generate(ctx, prompt.Assemble(question, chunks))
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	c.logger.Info("answered question",
		"chunks", len(chunks),
		"model", c.generator.Model(),
		"duration", time.Since(start))

	return &Answer{
		Text:    text,
		Sources: citationsFrom(chunks),
	}, nil
}
