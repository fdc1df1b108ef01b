// Package trailer manages tractor↔trailer pairing. The forward link on the
// trailer and the backward link on the tractor always change together; the
// store guarantees the both-or-neither write, this service guarantees nobody
// asks it to write an invalid pair.
package trailer

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"fleetgate/internal/audit"
	complianceports "fleetgate/internal/compliance/ports"
	"fleetgate/internal/domain"
	"fleetgate/internal/trailer/ports"
	dErrors "fleetgate/pkg/domain-errors"
	"fleetgate/pkg/platform/sentinel"
)

// Service exposes the pairing operations and the bidding eligibility gate.
type Service struct {
	vehicles  ports.VehicleStore
	publisher audit.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures optional Service collaborators.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithPublisher sets the audit publisher.
func WithPublisher(p audit.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithClock overrides the service clock. Test hook.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService wires a Service over the vehicle store.
func NewService(vehicles ports.VehicleStore, opts ...Option) *Service {
	s := &Service{
		vehicles:  vehicles,
		publisher: audit.NopPublisher{},
		logger:    slog.New(slog.DiscardHandler),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Link pairs a trailer with a tractor owned by the same operator. Linking an
// already-linked trailer re-links it: the previous pair on either side is
// cleared in the same atomic write.
func (s *Service) Link(ctx context.Context, operatorID, trailerRC, tractorRC string) error {
	trailerRC = canonicalRC(trailerRC)
	tractorRC = canonicalRC(tractorRC)
	if trailerRC == "" || tractorRC == "" {
		return dErrors.New(dErrors.CodeBadRequest, "trailer and tractor registration numbers are required")
	}
	if trailerRC == tractorRC {
		return dErrors.New(dErrors.CodeBadRequest, "a vehicle cannot be linked to itself")
	}

	trailer, err := s.ownedVehicle(ctx, trailerRC, operatorID)
	if err != nil {
		return err
	}
	tractor, err := s.ownedVehicle(ctx, tractorRC, operatorID)
	if err != nil {
		return err
	}
	if !trailer.IsTrailer {
		return dErrors.New(dErrors.CodeBadRequest, "vehicle is not flagged as a trailer")
	}
	if !tractor.IsTractor {
		return dErrors.New(dErrors.CodeBadRequest, "vehicle is not flagged as a tractor")
	}

	updates := []ports.LinkUpdate{
		{RegistrationNumber: trailerRC, TractorRC: ptr(tractorRC)},
		{RegistrationNumber: tractorRC, TrailerRC: ptr(trailerRC)},
	}
	// Last write wins: detach whatever either side was previously paired
	// with, in the same transaction.
	if prev := trailer.LinkedTractorRC; prev != "" && prev != tractorRC {
		updates = append(updates, ports.LinkUpdate{RegistrationNumber: prev, TrailerRC: ptr("")})
	}
	if prev := tractor.LinkedTrailerRC; prev != "" && prev != trailerRC {
		updates = append(updates, ports.LinkUpdate{RegistrationNumber: prev, TractorRC: ptr("")})
	}

	if err := s.vehicles.UpdateLinks(ctx, updates, s.now()); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "apply trailer link")
	}

	s.publish(ctx, audit.NewEvent(audit.EventTrailerLinked, trailerRC, operatorID, map[string]any{
		"tractor_rc": tractorRC,
	}))
	s.logger.InfoContext(ctx, "trailer linked",
		"trailer_rc", trailerRC, "tractor_rc", tractorRC, "operator_id", operatorID)
	return nil
}

// Unlink detaches a trailer from its tractor. Unlinking a trailer with no
// link is a no-op success.
func (s *Service) Unlink(ctx context.Context, operatorID, trailerRC string) error {
	trailerRC = canonicalRC(trailerRC)

	trailer, err := s.ownedVehicle(ctx, trailerRC, operatorID)
	if err != nil {
		return err
	}
	if !trailer.IsTrailer {
		return dErrors.New(dErrors.CodeBadRequest, "vehicle is not flagged as a trailer")
	}
	if trailer.LinkedTractorRC == "" {
		return nil
	}

	updates := []ports.LinkUpdate{
		{RegistrationNumber: trailerRC, TractorRC: ptr("")},
		{RegistrationNumber: trailer.LinkedTractorRC, TrailerRC: ptr("")},
	}
	if err := s.vehicles.UpdateLinks(ctx, updates, s.now()); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "apply trailer unlink")
	}

	s.publish(ctx, audit.NewEvent(audit.EventTrailerUnlinked, trailerRC, operatorID, map[string]any{
		"tractor_rc": trailer.LinkedTractorRC,
	}))
	s.logger.InfoContext(ctx, "trailer unlinked",
		"trailer_rc", trailerRC, "operator_id", operatorID)
	return nil
}

// CanBid reports whether a trailer may take part in bidding: it must be
// ACTIVE and have a tractor link.
func (s *Service) CanBid(ctx context.Context, operatorID, trailerRC string) (bool, error) {
	trailer, err := s.ownedVehicle(ctx, canonicalRC(trailerRC), operatorID)
	if err != nil {
		return false, err
	}
	return trailer.Status == domain.VehicleActive && trailer.LinkedTractorRC != "", nil
}

// RecordPing stamps the vehicle's latest GPS ping.
func (s *Service) RecordPing(ctx context.Context, registrationNumber string, at time.Time) error {
	if err := s.vehicles.RecordGPSPing(ctx, canonicalRC(registrationNumber), at); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "vehicle not found")
		}
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "record gps ping")
	}
	return nil
}

// VehicleContext resolves the operational context the compliance engine
// needs. Vehicles the fleet registry has never seen yield a zero context.
func (s *Service) VehicleContext(ctx context.Context, registrationNumber, operatorID string) (complianceports.VehicleContext, error) {
	vehicle, err := s.vehicles.Get(ctx, canonicalRC(registrationNumber))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return complianceports.VehicleContext{}, nil
		}
		return complianceports.VehicleContext{}, err
	}
	if vehicle.OperatorID != operatorID {
		return complianceports.VehicleContext{}, nil
	}
	return complianceports.VehicleContext{
		GPSLastPing:     vehicle.GPSLastPing,
		IsTrailer:       vehicle.IsTrailer,
		LinkedTractorRC: vehicle.LinkedTractorRC,
	}, nil
}

func (s *Service) ownedVehicle(ctx context.Context, registrationNumber, operatorID string) (*domain.FleetVehicle, error) {
	vehicle, err := s.vehicles.Get(ctx, registrationNumber)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "vehicle "+registrationNumber+" not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "vehicle lookup failed")
	}
	if vehicle.OperatorID != operatorID {
		return nil, dErrors.New(dErrors.CodeForbidden, "vehicle "+registrationNumber+" does not belong to operator")
	}
	return vehicle, nil
}

func (s *Service) publish(ctx context.Context, event audit.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit publish failed", "event_type", string(event.Type), "error", err)
	}
}

func canonicalRC(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func ptr(s string) *string { return &s }
