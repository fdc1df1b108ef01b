// Package vehicle provides VehicleStore implementations.
package vehicle

import (
	"context"
	"sync"
	"time"

	"fleetgate/internal/domain"
	"fleetgate/internal/trailer/ports"
	"fleetgate/pkg/platform/sentinel"
)

// MemoryStore is a concurrency-safe in-memory VehicleStore. UpdateLinks is
// atomic under the store mutex.
type MemoryStore struct {
	mu       sync.RWMutex
	vehicles map[string]domain.FleetVehicle
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{vehicles: make(map[string]domain.FleetVehicle)}
}

func (s *MemoryStore) Get(_ context.Context, registrationNumber string) (*domain.FleetVehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.vehicles[registrationNumber]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := v
	return &out, nil
}

func (s *MemoryStore) Upsert(_ context.Context, vehicle domain.FleetVehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vehicles[vehicle.RegistrationNumber] = vehicle
	return nil
}

func (s *MemoryStore) UpdateLinks(_ context.Context, updates []ports.LinkUpdate, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate every target first so the batch applies all-or-nothing.
	for _, u := range updates {
		if _, ok := s.vehicles[u.RegistrationNumber]; !ok {
			return sentinel.ErrNotFound
		}
	}
	for _, u := range updates {
		v := s.vehicles[u.RegistrationNumber]
		if u.TractorRC != nil {
			v.LinkedTractorRC = *u.TractorRC
		}
		if u.TrailerRC != nil {
			v.LinkedTrailerRC = *u.TrailerRC
		}
		v.UpdatedAt = at
		s.vehicles[u.RegistrationNumber] = v
	}
	return nil
}

func (s *MemoryStore) RecordGPSPing(_ context.Context, registrationNumber string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.vehicles[registrationNumber]
	if !ok {
		return sentinel.ErrNotFound
	}
	ping := at
	v.GPSLastPing = &ping
	v.UpdatedAt = at
	s.vehicles[registrationNumber] = v
	return nil
}
