// Package splitter cuts loaded documents into overlapping text windows,
// the unit of embedding and retrieval.
package splitter

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/civicquery/civicquery/internal/document"
)

// ErrInvalidSplit indicates chunking parameters that cannot make progress.
var ErrInvalidSplit = errors.New("invalid split configuration")

// defaultSeparators is the split priority: paragraph break, line break,
// sentence boundary, word boundary, then single characters as a last resort.
var defaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Chunk is a contiguous text window derived from a Document.
type Chunk struct {
	Text   string
	Source string
	Page   int // 0-based page number inherited from the source document
	Index  int // position of this chunk within its source file
}

// Splitter recursively splits text on prioritized separators and reassembles
// pieces into windows of at most chunkSize characters, where consecutive
// windows share chunkOverlap characters.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
}

// New creates a Splitter. chunkOverlap must be smaller than chunkSize,
// otherwise the merge step cannot advance.
func New(chunkSize, chunkOverlap int) (*Splitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidSplit, chunkSize)
	}
	if chunkOverlap < 0 {
		return nil, fmt.Errorf("%w: chunk overlap must not be negative, got %d", ErrInvalidSplit, chunkOverlap)
	}
	if chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("%w: chunk overlap (%d) must be smaller than chunk size (%d)",
			ErrInvalidSplit, chunkOverlap, chunkSize)
	}
	return &Splitter{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		separators:   defaultSeparators,
	}, nil
}

// SplitDocuments splits every document, carrying source path and page number
// onto each chunk. Chunk indexes count per source file across its pages.
func (s *Splitter) SplitDocuments(docs []document.Document) []Chunk {
	var chunks []Chunk
	perSource := make(map[string]int)

	for _, doc := range docs {
		for _, text := range s.SplitText(doc.Text) {
			chunks = append(chunks, Chunk{
				Text:   text,
				Source: doc.Source,
				Page:   doc.Page,
				Index:  perSource[doc.Source],
			})
			perSource[doc.Source]++
		}
	}
	return chunks
}

// SplitText splits a single text into overlapping windows.
func (s *Splitter) SplitText(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.split(text, s.separators)
}

func (s *Splitter) split(text string, separators []string) []string {
	// Pick the highest-priority separator present in the text.
	sep := ""
	var rest []string
	for i, cand := range separators {
		if cand == "" {
			sep = ""
			rest = nil
			break
		}
		if strings.Contains(text, cand) {
			sep = cand
			rest = separators[i+1:]
			break
		}
	}

	var final, good []string
	for _, piece := range splitOn(text, sep) {
		if charLen(piece) < s.chunkSize {
			good = append(good, piece)
			continue
		}
		// Oversized piece: flush accumulated pieces, then recurse into it
		// with the remaining separators.
		if len(good) > 0 {
			final = append(final, s.merge(good, sep)...)
			good = nil
		}
		if len(rest) == 0 {
			// A single unit larger than chunkSize with nothing left to
			// split on is kept whole.
			final = append(final, piece)
		} else {
			final = append(final, s.split(piece, rest)...)
		}
	}
	if len(good) > 0 {
		final = append(final, s.merge(good, sep)...)
	}
	return final
}

// merge greedily packs pieces into windows of at most chunkSize characters.
// When a window is emitted, leading pieces are dropped until at most
// chunkOverlap characters remain; those become the head of the next window.
func (s *Splitter) merge(pieces []string, sep string) []string {
	sepLen := charLen(sep)

	var out []string
	var window []string
	total := 0

	for _, piece := range pieces {
		l := charLen(piece)
		if total+l+sepIf(sepLen, len(window) > 0) > s.chunkSize {
			if len(window) > 0 {
				if doc := joinPieces(window, sep); doc != "" {
					out = append(out, doc)
				}
				for total > s.chunkOverlap ||
					(total+l+sepIf(sepLen, len(window) > 0) > s.chunkSize && total > 0) {
					total -= charLen(window[0]) + sepIf(sepLen, len(window) > 1)
					window = window[1:]
				}
			}
		}
		window = append(window, piece)
		total += l + sepIf(sepLen, len(window) > 1)
	}

	if doc := joinPieces(window, sep); doc != "" {
		out = append(out, doc)
	}
	return out
}

// splitOn splits text on sep, dropping empty pieces. The empty separator
// splits into individual characters.
func splitOn(text, sep string) []string {
	var raw []string
	if sep == "" {
		raw = strings.Split(text, "")
	} else {
		raw = strings.Split(text, sep)
	}
	pieces := raw[:0]
	for _, p := range raw {
		if p != "" {
			pieces = append(pieces, p)
		}
	}
	return pieces
}

func joinPieces(pieces []string, sep string) string {
	return strings.TrimSpace(strings.Join(pieces, sep))
}

func sepIf(sepLen int, cond bool) int {
	if cond {
		return sepLen
	}
	return 0
}

func charLen(s string) int {
	return utf8.RuneCountInString(s)
}
