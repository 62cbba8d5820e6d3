package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/scheme-research/internal/core/domain"
	"github.com/custodia-labs/scheme-research/internal/core/ports/driven"
)

// Ensure IndexStore implements the interface.
var _ driven.IndexStore = (*IndexStore)(nil)

// DefaultFileName is the snapshot file name inside the data directory.
const DefaultFileName = "index.json"

// IndexStore persists index snapshots as a single JSON file.
// Writes go to a temporary file in the same directory which is synced and
// renamed over the target, so a reader never sees a half-written snapshot.
type IndexStore struct {
	mu   sync.Mutex
	path string
}

// NewIndexStore creates a store backed by the file at path.
// If path is empty, defaults to ~/.scheme-research/index.json.
func NewIndexStore(path string) (*IndexStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, ".scheme-research", DefaultFileName)
	}
	return &IndexStore{path: path}, nil
}

// Save writes snapshot, replacing whatever was stored before.
func (s *IndexStore) Save(ctx context.Context, snapshot *domain.IndexSnapshot) error {
	if snapshot == nil {
		return fmt.Errorf("%w: nil snapshot", domain.ErrInvalidInput)
	}
	if err := snapshot.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".index-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, 0600); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return err
	}
	committed = true

	syncDir(dir)
	return nil
}

// Load reads the stored snapshot.
func (s *IndexStore) Load(ctx context.Context) (*domain.IndexSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	data, err := os.ReadFile(s.path)
	s.mu.Unlock()
	if errors.Is(err, os.ErrNotExist) {
		return nil, domain.ErrStoreNotFound
	}
	if err != nil {
		return nil, err
	}

	var snapshot domain.IndexSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreCorrupt, err)
	}
	if err := snapshot.Validate(); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// Path returns the snapshot file path.
func (s *IndexStore) Path() string {
	return s.path
}

// syncDir flushes the directory entry after a rename. Not every platform
// supports syncing a directory, so failures are ignored.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
