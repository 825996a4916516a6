package vectorstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// manifestFile sits beside the persisted vectors and records how they were
// produced. chromem ignores plain files in its directory.
const manifestFile = "manifest.json"

// Manifest records the configuration a store was ingested with. Query-time
// embedding must use the identical provider and model; a mismatch is logged
// as a warning but not enforced.
type Manifest struct {
	EmbeddingProvider string    `json:"embedding_provider"`
	EmbeddingModel    string    `json:"embedding_model"`
	ChunkSize         int       `json:"chunk_size"`
	ChunkOverlap      int       `json:"chunk_overlap"`
	Documents         int       `json:"documents"`
	Chunks            int       `json:"chunks"`
	IngestedAt        time.Time `json:"ingested_at"`
}

// WriteManifest persists the manifest into the store directory.
func WriteManifest(dir string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, manifestFile), data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// ReadManifest loads the manifest from the store directory. A missing
// manifest returns (nil, nil): stores ingested before manifests existed are
// still usable.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}
