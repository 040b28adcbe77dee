package guard

import "sync"

// UnsavedStore is the shared "there are unsaved edits" flag read by other
// parts of the application.
type UnsavedStore struct {
	mu      sync.RWMutex
	unsaved bool
}

// NewUnsavedStore returns a clean store.
func NewUnsavedStore() *UnsavedStore { return &UnsavedStore{} }

func (s *UnsavedStore) Set(v bool) {
	s.mu.Lock()
	s.unsaved = v
	s.mu.Unlock()
}

func (s *UnsavedStore) Unsaved() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unsaved
}

func (s *UnsavedStore) Clear() { s.Set(false) }
