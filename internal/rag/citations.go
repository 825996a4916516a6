package rag

import (
	"path/filepath"

	"github.com/civicquery/civicquery/internal/splitter"
)

// Citation identifies one source location backing an answer. Page is
// 1-based for display; chunks store 0-based pages internally.
type Citation struct {
	Name string `json:"name"`
	Page int    `json:"page"`
}

// citationsFrom deduplicates the chunks' origins by (file name, page),
// preserving first-occurrence order.
func citationsFrom(chunks []splitter.Chunk) []Citation {
	seen := make(map[Citation]struct{}, len(chunks))
	out := make([]Citation, 0, len(chunks))
	for _, c := range chunks {
		cit := Citation{
			Name: filepath.Base(c.Source),
			Page: c.Page + 1,
		}
		if _, ok := seen[cit]; ok {
			continue
		}
		seen[cit] = struct{}{}
		out = append(out, cit)
	}
	return out
}
