package tracker

import "sync/atomic"

// Store holds the latest published snapshot. Publish swaps the whole
// snapshot atomically, so readers never block writers, writers never block
// readers, and nobody observes a half-merged state.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore creates an empty store. Current reports ok=false until the first
// successful publish.
func NewStore() *Store { return &Store{} }

// Publish atomically replaces the visible snapshot.
func (s *Store) Publish(snap *Snapshot) {
	s.current.Store(snap)
}

// Current returns the latest published snapshot, or ok=false before the
// first publish.
func (s *Store) Current() (*Snapshot, bool) {
	snap := s.current.Load()
	return snap, snap != nil
}
