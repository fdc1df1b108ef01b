// Package decision provides DecisionStore implementations: an in-memory map
// for tests and single-node use, a Postgres store for durability, and a Redis
// read-through cache layered on top of either.
package decision

import (
	"context"
	"sync"

	"fleetgate/internal/domain"
	"fleetgate/pkg/platform/sentinel"
)

// MemoryStore is a concurrency-safe in-memory DecisionStore.
type MemoryStore struct {
	mu        sync.RWMutex
	decisions map[string]domain.ComplianceDecision
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{decisions: make(map[string]domain.ComplianceDecision)}
}

func key(registrationNumber, operatorID string) string {
	return registrationNumber + "|" + operatorID
}

// Upsert stores or replaces the decision for its (registration, operator) pair.
func (s *MemoryStore) Upsert(_ context.Context, decision domain.ComplianceDecision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decisions[key(decision.RegistrationNumber, decision.OperatorID)] = decision
	return nil
}

// Get returns the cached decision or sentinel.ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, registrationNumber, operatorID string) (*domain.ComplianceDecision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.decisions[key(registrationNumber, operatorID)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := d
	return &out, nil
}

// FindByFingerprint scans for a decision from a different pair sharing either
// identity hash.
func (s *MemoryStore) FindByFingerprint(_ context.Context, chassisHash, engineHash, excludeRC, excludeOperator string) (*domain.ComplianceDecision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, d := range s.decisions {
		if d.RegistrationNumber == excludeRC && d.OperatorID == excludeOperator {
			continue
		}
		if d.ChassisHash == chassisHash || d.EngineHash == engineHash {
			out := d
			return &out, nil
		}
	}
	return nil, sentinel.ErrNotFound
}
