package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// corpusExtensions are the file types the ingestion pipeline understands.
var corpusExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".txt":      true,
	".pdf":      true,
}

// Fetcher mirrors a directory of policy documents from a GitHub
// repository to local disk so the ingestion pipeline can pick them up.
type Fetcher struct {
	client   *Client
	owner    string
	repo     string
	basePath string
	logger   *slog.Logger
}

// NewFetcher creates a corpus fetcher for one repository directory.
func NewFetcher(client *Client, owner, repo, basePath string, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		client:   client,
		owner:    owner,
		repo:     repo,
		basePath: basePath,
		logger:   logger,
	}
}

// List recursively lists all supported corpus files under the base path.
// Paths are relative to the base path.
func (f *Fetcher) List(ctx context.Context) ([]string, error) {
	return f.listRecursive(ctx, f.basePath, "")
}

func (f *Fetcher) listRecursive(ctx context.Context, fullPath, relativePath string) ([]string, error) {
	var files []string

	_, dirContents, _, err := f.client.Repositories.GetContents(ctx, f.owner, f.repo, fullPath, nil)
	if err != nil {
		return nil, fmt.Errorf("get contents of %s: %w", fullPath, err)
	}

	for _, item := range dirContents {
		if item.Type == nil || item.Name == nil {
			continue
		}

		itemRelPath := path.Join(relativePath, *item.Name)

		switch *item.Type {
		case "file":
			if corpusExtensions[strings.ToLower(path.Ext(*item.Name))] {
				files = append(files, itemRelPath)
			}
		case "dir":
			sub, err := f.listRecursive(ctx, path.Join(fullPath, *item.Name), itemRelPath)
			if err != nil {
				return nil, err
			}
			files = append(files, sub...)
		}
	}

	return files, nil
}

// Fetch downloads one corpus file and returns its raw bytes.
func (f *Fetcher) Fetch(ctx context.Context, relativePath string) ([]byte, error) {
	fullPath := path.Join(f.basePath, relativePath)

	fileContent, _, _, err := f.client.Repositories.GetContents(ctx, f.owner, f.repo, fullPath, nil)
	if err != nil {
		return nil, fmt.Errorf("get content of %s: %w", fullPath, err)
	}
	if fileContent == nil {
		return nil, fmt.Errorf("no file content returned for %s", fullPath)
	}

	content, err := base64.StdEncoding.DecodeString(*fileContent.Content)
	if err != nil {
		return nil, fmt.Errorf("decode content of %s: %w", fullPath, err)
	}

	return content, nil
}

// Mirror downloads every supported file under the base path into destDir,
// preserving the relative directory layout. Returns the number of files
// written.
func (f *Fetcher) Mirror(ctx context.Context, destDir string) (int, error) {
	files, err := f.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list corpus: %w", err)
	}
	if len(files) == 0 {
		return 0, fmt.Errorf("no corpus files under %s/%s/%s", f.owner, f.repo, f.basePath)
	}

	for _, rel := range files {
		content, err := f.Fetch(ctx, rel)
		if err != nil {
			return 0, err
		}

		dest := filepath.Join(destDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return 0, fmt.Errorf("create directory for %s: %w", rel, err)
		}
		if err := os.WriteFile(dest, content, 0o644); err != nil {
			return 0, fmt.Errorf("write %s: %w", rel, err)
		}
		f.logger.Info("Fetched corpus file", "path", rel, "bytes", len(content))
	}

	return len(files), nil
}
