package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vishwas-droid/ai-healthcare-emergency/internal/directory"
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/geo"
)

// Service starts and reads tracking sessions for dispatched providers.
type Service struct {
	doctors     directory.DoctorRepository
	ambulances  directory.AmbulanceRepository
	sessions    SessionStore
	broadcaster *Broadcaster
	estimator   *Estimator
	logger      *slog.Logger
	now         func() time.Time
}

// NewService creates a dispatch service. broadcaster may be nil when no
// realtime push is wanted; estimator may be nil to always use the
// provider's advertised response time.
func NewService(doctors directory.DoctorRepository, ambulances directory.AmbulanceRepository, sessions SessionStore, broadcaster *Broadcaster, estimator *Estimator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		doctors:     doctors,
		ambulances:  ambulances,
		sessions:    sessions,
		broadcaster: broadcaster,
		estimator:   estimator,
		logger:      logger,
		now:         time.Now,
	}
}

// baseETASeconds derives the initial ETA. When both the provider and the
// patient have known locations and an estimator is configured, travel time
// is estimated from the route; otherwise the provider's advertised response
// time is used. The result is floored at minBaseETASeconds.
func (s *Service) baseETASeconds(ctx context.Context, kind directory.Kind, providerID int64, dest geo.Point) (int, error) {
	var (
		seconds  int
		location geo.Point
	)
	switch kind {
	case directory.KindDoctor:
		d, err := s.doctors.GetByID(ctx, providerID)
		if err != nil {
			return 0, err
		}
		seconds, location = d.ResponseSeconds(), d.Location
	case directory.KindAmbulance:
		a, err := s.ambulances.GetByID(ctx, providerID)
		if err != nil {
			return 0, err
		}
		seconds, location = a.ResponseSeconds(), a.Location
	default:
		return 0, ErrInvalidProviderKind
	}

	if s.estimator != nil && !dest.IsZero() && !location.IsZero() {
		seconds = s.estimator.EstimateTravelSeconds(ctx, location, dest)
	}
	if seconds < minBaseETASeconds {
		seconds = minBaseETASeconds
	}
	return seconds, nil
}

// Start opens a tracking session for a dispatched provider. dest is the
// patient's location; pass the zero Point when unknown.
func (s *Service) Start(ctx context.Context, kind directory.Kind, providerID int64, city string, dest geo.Point) (*Session, error) {
	eta, err := s.baseETASeconds(ctx, kind, providerID, dest)
	if err != nil {
		return nil, err
	}

	session := &Session{
		ProviderKind:      kind,
		ProviderID:        providerID,
		City:              city,
		ETASecondsInitial: eta,
		Status:            StatusEnRoute,
		StartedAt:         s.now().UTC(),
	}
	if err := s.sessions.Insert(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create tracking session: %w", err)
	}

	s.logger.Info("tracking session started",
		slog.String("tracking_id", session.ID),
		slog.String("provider_type", string(kind)),
		slog.Int64("provider_id", providerID),
		slog.Int("eta_seconds", eta))
	return session, nil
}

// Status reads a session's current progress. Crossing the finish line
// transitions the stored status to ARRIVED and notifies subscribers.
func (s *Service) Status(ctx context.Context, trackingID string) (*StatusUpdate, error) {
	session, err := s.sessions.GetByID(ctx, trackingID)
	if err != nil {
		return nil, err
	}

	update := statusAt(session, s.now())
	if update.Status == StatusArrived && session.Status != StatusArrived {
		if err := s.sessions.UpdateStatus(ctx, session.ID, StatusArrived); err != nil {
			return nil, fmt.Errorf("failed to mark session arrived: %w", err)
		}
		s.logger.Info("provider arrived", slog.String("tracking_id", session.ID))
	}

	if s.broadcaster != nil {
		s.broadcaster.Broadcast(session.ID, &update)
	}
	return &update, nil
}
