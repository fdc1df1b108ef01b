// Package snapshot provides SnapshotStore implementations over the append-only
// provider response log.
package snapshot

import (
	"context"
	"sync"

	"fleetgate/internal/domain"
	"fleetgate/pkg/platform/sentinel"
)

type entry struct {
	registrationNumber string
	response           domain.ProviderResponse
}

// MemoryStore is a concurrency-safe in-memory SnapshotStore. Entries are kept
// in append order.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []entry
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append records one provider response.
func (s *MemoryStore) Append(_ context.Context, registrationNumber string, resp domain.ProviderResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry{registrationNumber: registrationNumber, response: resp})
	return nil
}

// LatestSuccessFromOtherProvider returns the most recently appended successful
// response for the registration number from any other provider.
func (s *MemoryStore) LatestSuccessFromOtherProvider(_ context.Context, registrationNumber, excludeProvider string) (*domain.ProviderResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if e.registrationNumber != registrationNumber {
			continue
		}
		if !e.response.Success || e.response.Provider == excludeProvider {
			continue
		}
		out := e.response
		return &out, nil
	}
	return nil, sentinel.ErrNotFound
}

// CountFor returns the number of appended responses for the registration
// number. Test helper.
func (s *MemoryStore) CountFor(registrationNumber string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, e := range s.entries {
		if e.registrationNumber == registrationNumber {
			n++
		}
	}
	return n
}
