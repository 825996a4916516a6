// Package prompt assembles the grounding prompt sent to the language model.
package prompt

import (
	"strings"

	"github.com/civicquery/civicquery/internal/splitter"
)

// FallbackAnswer is the sentence the model is instructed to emit when the
// retrieved context does not contain the answer.
const FallbackAnswer = "I cannot find this information in the official documents."

// chunkDelimiter separates retrieved chunk texts inside the context block.
const chunkDelimiter = "\n\n"

// template constrains the model to answer only from the provided context.
// This is a soft guardrail: the model can still hallucinate.
const template = `You are 'CivicQuery', an AI assistant for the G7 GovAI Challenge.

INSTRUCTIONS:
1. If the user input is a GREETING (e.g., "Hello", "Hi") or COMPLIMENT, respond politely and briefly WITHOUT using the context.
2. For specific questions, base your answer ONLY on the provided Context.
3. If the answer is not in the context, say: "` + FallbackAnswer + `"

Context:
{context}

Question: {question}

Helpful Answer:`

// Assemble merges retrieved chunk texts (in retrieval order) and the raw
// question into the fixed instruction template.
func Assemble(question string, chunks []splitter.Chunk) string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	context := strings.Join(texts, chunkDelimiter)

	out := strings.Replace(template, "{context}", context, 1)
	return strings.Replace(out, "{question}", question, 1)
}
