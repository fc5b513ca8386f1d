// Package state holds rolling per-run state in memory.
package state

import (
	"sync"

	"github.com/afikmenashe/dungeon-monitor/internal/events"
)

// Store maps run IDs to their rolling state. States are stored by value; callers
// commit changes back with Put. Entries live for the lifetime of the process.
type Store struct {
	mu   sync.RWMutex
	runs map[string]events.RunState
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{runs: make(map[string]events.RunState)}
}

// GetOrCreate returns the state for runID, inserting a fresh default state on first sight.
func (s *Store) GetOrCreate(runID string) events.RunState {
	s.mu.RLock()
	st, ok := s.runs[runID]
	s.mu.RUnlock()
	if ok {
		return st
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Double-check after acquiring write lock
	if st, ok = s.runs[runID]; !ok {
		st = events.NewRunState()
		s.runs[runID] = st
	}
	return st
}

// Get returns the state for runID without creating it.
func (s *Store) Get(runID string) (events.RunState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.runs[runID]
	return st, ok
}

// Put overwrites the state for runID unconditionally.
func (s *Store) Put(runID string, st events.RunState) {
	s.mu.Lock()
	s.runs[runID] = st
	s.mu.Unlock()
}

// Len returns the number of runs tracked.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}
