package document

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNoDocuments indicates the corpus directory contained nothing loadable.
var ErrNoDocuments = errors.New("no loadable documents in directory")

// Loader reads a directory of source documents. Files that fail to parse are
// logged and skipped so one bad file does not abort ingestion.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a Loader. A nil logger falls back to slog.Default.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// LoadDir walks dir and loads every supported file (.pdf, .md, .txt).
// PDF files produce one Document per page with a 0-based page number.
func (l *Loader) LoadDir(dir string) ([]Document, error) {
	var docs []Document

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		loaded, err := l.LoadFile(path)
		if err != nil {
			l.logger.Warn("skipping unreadable document", "path", path, "error", err)
			return nil
		}
		docs = append(docs, loaded...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoDocuments, dir)
	}
	return docs, nil
}

// LoadFile loads a single file based on its extension. Unsupported
// extensions return an error so LoadDir can log and move on.
func (l *Loader) LoadFile(path string) ([]Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return loadPDF(path)
	case ".md", ".markdown":
		return loadMarkdown(path)
	case ".txt":
		return loadText(path)
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
}

// loadPDF extracts plain text per page.
func loadPDF(path string) ([]Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var docs []Document
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		docs = append(docs, Document{
			Text:   text,
			Source: path,
			Page:   i - 1, // pdf pages are 1-based, the corpus model is 0-based
		})
	}
	return docs, nil
}

func loadMarkdown(path string) ([]Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(ExtractMarkdownText(raw))
	if text == "" {
		return nil, nil
	}
	return []Document{{Text: text, Source: path, Page: 0}}, nil
}

func loadText(path string) ([]Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return nil, nil
	}
	return []Document{{Text: text, Source: path, Page: 0}}, nil
}
