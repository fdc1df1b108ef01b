// Package operator provides OperatorStore implementations answering fleet
// quota questions.
package operator

import (
	"context"
	"sync"
)

// MemoryStore is a concurrency-safe in-memory OperatorStore keyed by operator.
type MemoryStore struct {
	mu     sync.RWMutex
	counts map[string]int
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counts: make(map[string]int)}
}

// SetActiveCount fixes the active vehicle count for an operator. Test helper.
func (s *MemoryStore) SetActiveCount(operatorID string, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[operatorID] = count
}

// ActiveVehicleCount returns the operator's active fleet size; unknown
// operators have zero vehicles.
func (s *MemoryStore) ActiveVehicleCount(_ context.Context, operatorID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counts[operatorID], nil
}
