package rag

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicquery/civicquery/internal/splitter"
)

type fakeRetriever struct {
	chunks []splitter.Chunk
	err    error
	query  string
}

func (f *fakeRetriever) Retrieve(_ context.Context, query string) ([]splitter.Chunk, error) {
	f.query = query
	return f.chunks, f.err
}

type fakeGenerator struct {
	answer string
	err    error
	prompt string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.answer, f.err
}

func (f *fakeGenerator) Model() string { return "fake-model" }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestChain_Ask(t *testing.T) {
	ret := &fakeRetriever{chunks: []splitter.Chunk{
		{Text: "Submissions close on March 1.", Source: "docs/rules.pdf", Page: 2},
	}}
	gen := &fakeGenerator{answer: "Submissions close on March 1."}

	chain := NewChain(ret, gen, discardLogger())
	ans, err := chain.Ask(context.Background(), "When do submissions close?")
	require.NoError(t, err)

	assert.Equal(t, "When do submissions close?", ret.query)
	assert.Contains(t, gen.prompt, "Submissions close on March 1.")
	assert.Contains(t, gen.prompt, "Question: When do submissions close?")
	assert.Equal(t, "Submissions close on March 1.", ans.Text)
	assert.Equal(t, []Citation{{Name: "rules.pdf", Page: 3}}, ans.Sources)
}

func TestChain_AskRetrieverError(t *testing.T) {
	ret := &fakeRetriever{err: errors.New("store offline")}
	chain := NewChain(ret, &fakeGenerator{}, discardLogger())

	_, err := chain.Ask(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retrieve context")
}

func TestChain_AskGeneratorError(t *testing.T) {
	ret := &fakeRetriever{chunks: []splitter.Chunk{{Text: "ctx"}}}
	gen := &fakeGenerator{err: errors.New("model timeout")}
	chain := NewChain(ret, gen, discardLogger())

	_, err := chain.Ask(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generate answer")
}

func TestCitations_DedupeSamePage(t *testing.T) {
	chunks := []splitter.Chunk{
		{Source: "docs/policy.pdf", Page: 3},
		{Source: "docs/policy.pdf", Page: 3},
	}
	got := citationsFrom(chunks)
	assert.Equal(t, []Citation{{Name: "policy.pdf", Page: 4}}, got)
}

func TestCitations_FirstOccurrenceOrder(t *testing.T) {
	chunks := []splitter.Chunk{
		{Source: "b.pdf", Page: 9},
		{Source: "a.md", Page: 0},
		{Source: "b.pdf", Page: 9},
		{Source: "b.pdf", Page: 1},
	}
	got := citationsFrom(chunks)
	assert.Equal(t, []Citation{
		{Name: "b.pdf", Page: 10},
		{Name: "a.md", Page: 1},
		{Name: "b.pdf", Page: 2},
	}, got)
}

func TestCitations_BasenameOnly(t *testing.T) {
	got := citationsFrom([]splitter.Chunk{{Source: "/srv/corpus/guidelines.md", Page: 0}})
	require.Len(t, got, 1)
	assert.Equal(t, "guidelines.md", got[0].Name)
	assert.False(t, strings.Contains(got[0].Name, "/"))
}
