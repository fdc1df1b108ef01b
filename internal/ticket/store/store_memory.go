// Package store provides TicketStore implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"fleetgate/internal/domain"
	"fleetgate/internal/ticket/ports"
	"fleetgate/pkg/platform/sentinel"
)

// MemoryStore is a concurrency-safe in-memory TicketStore.
type MemoryStore struct {
	mu      sync.RWMutex
	tickets map[string]domain.Ticket
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tickets: make(map[string]domain.Ticket)}
}

func (s *MemoryStore) Create(_ context.Context, ticket domain.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tickets[ticket.ID]; ok {
		return sentinel.ErrConflict
	}
	s.tickets[ticket.ID] = ticket
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*domain.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tickets[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := t
	return &out, nil
}

func (s *MemoryStore) Update(_ context.Context, ticket domain.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tickets[ticket.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.tickets[ticket.ID] = ticket
	return nil
}

func (s *MemoryStore) List(_ context.Context, filter ports.Filter) ([]domain.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]domain.Ticket, 0, len(s.tickets))
	for _, t := range s.tickets {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.Type != "" && t.Type != filter.Type {
			continue
		}
		matched = append(matched, t)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if filter.Offset >= len(matched) {
		return []domain.Ticket{}, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}
