// Package document loads the source corpus into page-level plain text.
package document

// Document is one source file's worth of raw text. For paginated formats
// (PDF) there is one Document per page; for everything else Page is 0.
// Immutable after load.
type Document struct {
	Text   string
	Source string // path of the originating file
	Page   int    // 0-based page number within the source
}
