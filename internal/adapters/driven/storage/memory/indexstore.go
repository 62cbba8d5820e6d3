package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/scheme-research/internal/core/domain"
	"github.com/custodia-labs/scheme-research/internal/core/ports/driven"
)

// Ensure IndexStore implements the interface.
var _ driven.IndexStore = (*IndexStore)(nil)

// IndexStore keeps the last saved snapshot in memory.
type IndexStore struct {
	mu       sync.RWMutex
	snapshot *domain.IndexSnapshot
	saves    int
}

// NewIndexStore creates an empty in-memory index store.
func NewIndexStore() *IndexStore {
	return &IndexStore{}
}

// Save replaces the stored snapshot with a copy of snapshot.
// Invalid snapshots are rejected and the previous one is kept.
func (s *IndexStore) Save(_ context.Context, snapshot *domain.IndexSnapshot) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = copySnapshot(snapshot)
	s.saves++
	return nil
}

// Load returns a copy of the stored snapshot.
func (s *IndexStore) Load(_ context.Context) (*domain.IndexSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil, domain.ErrStoreNotFound
	}
	return copySnapshot(s.snapshot), nil
}

// Path returns a marker for the in-memory location.
func (s *IndexStore) Path() string {
	return ":memory:"
}

// Saves returns how many snapshots have been saved.
func (s *IndexStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

func copySnapshot(in *domain.IndexSnapshot) *domain.IndexSnapshot {
	out := *in
	out.Documents = make([]domain.Document, len(in.Documents))
	copy(out.Documents, in.Documents)
	return &out
}
