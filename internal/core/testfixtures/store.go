package testfixtures

import (
	"context"
	"sync"

	"kilometers.ai/loader/internal/core/domain/extension"
	"kilometers.ai/loader/internal/core/ports"
)

// MemoryStore is an in-memory ports.EnablementStore
type MemoryStore struct {
	mu      sync.Mutex
	data    extension.EnablementMap
	saves   int
	clears  int
	saveErr error
}

// NewMemoryStore seeds the store with initial overrides
func NewMemoryStore(initial extension.EnablementMap) *MemoryStore {
	return &MemoryStore{data: initial.Clone()}
}

func (s *MemoryStore) Load(ctx context.Context) extension.EnablementMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Clone()
}

func (s *MemoryStore) Save(ctx context.Context, m extension.EnablementMap) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.data = m.Clone()
	s.saves++
	return nil
}

// Clear empties the store; it fails with the same error as Save
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.data = extension.NewEnablementMap()
	s.clears++
	return nil
}

// Clears counts successful Clear calls
func (s *MemoryStore) Clears() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clears
}

// SetSaveError makes Save and Clear fail
func (s *MemoryStore) SetSaveError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}

// Saved returns the persisted copy
func (s *MemoryStore) Saved() extension.EnablementMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Clone()
}

// Saves counts successful Save calls
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

var _ ports.EnablementStore = (*MemoryStore)(nil)
