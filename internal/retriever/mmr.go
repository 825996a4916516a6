package retriever

import (
	"math"

	"github.com/civicquery/civicquery/internal/vectorstore"
)

// maximalMarginalRelevance greedily selects up to k candidates, balancing
// similarity to the query against similarity to what is already selected:
//
//	score = lambda*sim(c, query) - (1-lambda)*max(sim(c, s) for s in selected)
//
// Ties break stably: the earliest candidate in the input order wins. The
// input order is the store's similarity ranking, so the first pick is always
// the most relevant candidate.
func maximalMarginalRelevance(query []float32, candidates []vectorstore.Result, k int, lambda float64) []vectorstore.Result {
	if k <= 0 || len(candidates) == 0 {
		return nil
	}
	if k > len(candidates) {
		k = len(candidates)
	}

	type candidate struct {
		vectorstore.Result
		querySim float64
		selected bool
	}
	pool := make([]candidate, len(candidates))
	for i, c := range candidates {
		pool[i] = candidate{Result: c, querySim: cosineSimilarity(query, c.Embedding)}
	}

	selected := make([]vectorstore.Result, 0, k)
	for len(selected) < k {
		bestIdx := -1
		bestScore := math.Inf(-1)

		for i := range pool {
			if pool[i].selected {
				continue
			}

			penalty := 0.0
			for j, s := range selected {
				sim := cosineSimilarity(pool[i].Embedding, s.Embedding)
				if j == 0 || sim > penalty {
					penalty = sim
				}
			}

			score := lambda*pool[i].querySim - (1-lambda)*penalty
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}

		if bestIdx < 0 {
			break
		}
		pool[bestIdx].selected = true
		selected = append(selected, pool[bestIdx].Result)
	}

	return selected
}

// cosineSimilarity returns the cosine of the angle between two vectors,
// or 0 when either vector is zero or lengths differ.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
