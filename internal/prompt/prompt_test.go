package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/civicquery/civicquery/internal/splitter"
)

func TestAssemble_SubstitutesContextAndQuestion(t *testing.T) {
	chunks := []splitter.Chunk{
		{Text: "Submissions close on March 1.", Source: "rules.pdf", Page: 2},
		{Text: "Teams may have up to five members.", Source: "rules.pdf", Page: 4},
	}

	out := Assemble("When do submissions close?", chunks)

	assert.Contains(t, out, "Submissions close on March 1.\n\nTeams may have up to five members.")
	assert.Contains(t, out, "Question: When do submissions close?")
	assert.NotContains(t, out, "{context}")
	assert.NotContains(t, out, "{question}")
}

func TestAssemble_EmptyChunks(t *testing.T) {
	out := Assemble("What is the prize?", nil)

	assert.Contains(t, out, "Context:\n\n")
	assert.Contains(t, out, "Question: What is the prize?")
}

func TestAssemble_CarriesFallbackInstruction(t *testing.T) {
	out := Assemble("anything", nil)
	assert.Contains(t, out, FallbackAnswer)
}

func TestAssemble_PreservesChunkOrder(t *testing.T) {
	chunks := []splitter.Chunk{
		{Text: "first"},
		{Text: "second"},
		{Text: "third"},
	}
	out := Assemble("q", chunks)

	i1 := strings.Index(out, "first")
	i2 := strings.Index(out, "second")
	i3 := strings.Index(out, "third")
	assert.True(t, i1 < i2 && i2 < i3)
}
