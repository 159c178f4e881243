package dispatch

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vishwas-droid/ai-healthcare-emergency/internal/directory"
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/geo"
)

// Tracking session statuses.
const (
	StatusEnRoute = "EN_ROUTE"
	StatusArrived = "ARRIVED"
)

// minBaseETASeconds floors the initial ETA so a session always shows some
// progress window.
const minBaseETASeconds = 180

// Tracking errors.
var (
	ErrSessionNotFound     = errors.New("tracking session not found")
	ErrInvalidProviderKind = errors.New("provider type must be doctor or ambulance")
)

// cityBaseCoords anchor the simulated provider position per city.
var cityBaseCoords = map[string]geo.Point{
	"mumbai":    {Lat: 19.0760, Lng: 72.8777},
	"delhi":     {Lat: 28.6139, Lng: 77.2090},
	"bengaluru": {Lat: 12.9716, Lng: 77.5946},
}

// defaultBaseCoord is the country centroid used for unknown cities.
var defaultBaseCoord = geo.Point{Lat: 20.5937, Lng: 78.9629}

// Session is one en-route provider being tracked.
type Session struct {
	ID                string         `json:"tracking_id"`
	ProviderKind      directory.Kind `json:"provider_type"`
	ProviderID        int64          `json:"provider_id"`
	City              string         `json:"city"`
	ETASecondsInitial int            `json:"eta_seconds_initial"`
	Status            string         `json:"status"`
	StartedAt         time.Time      `json:"started_at"`
}

// StatusUpdate is a point-in-time view of a session's progress.
type StatusUpdate struct {
	TrackingID        string    `json:"tracking_id"`
	Status            string    `json:"status"`
	ETASeconds        int       `json:"eta_seconds"`
	ProgressPercent   float64   `json:"progress_percent"`
	SimulatedLocation geo.Point `json:"simulated_location"`
}

// SessionStore persists tracking sessions.
type SessionStore interface {
	Insert(ctx context.Context, s *Session) error
	GetByID(ctx context.Context, id string) (*Session, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

// InMemorySessionStore is a thread-safe in-memory SessionStore.
type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewInMemorySessionStore creates an empty in-memory session store.
func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{sessions: make(map[string]Session)}
}

// Insert stores a session, assigning an ID if unset.
func (s *InMemorySessionStore) Insert(_ context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now().UTC()
	}
	s.sessions[session.ID] = *session
	return nil
}

// GetByID retrieves a session.
func (s *InMemorySessionStore) GetByID(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	copied := session
	return &copied, nil
}

// UpdateStatus transitions a session's status.
func (s *InMemorySessionStore) UpdateStatus(_ context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	session.Status = status
	s.sessions[id] = session
	return nil
}

// PostgresSessionStore persists tracking sessions in PostgreSQL.
type PostgresSessionStore struct {
	db *sql.DB
}

// NewPostgresSessionStore creates a SessionStore backed by the database.
func NewPostgresSessionStore(db *sql.DB) *PostgresSessionStore {
	return &PostgresSessionStore{db: db}
}

// Insert stores a session.
func (s *PostgresSessionStore) Insert(ctx context.Context, session *Session) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now().UTC()
	}

	const query = `
		INSERT INTO tracking_sessions (id, provider_type, provider_id, city, eta_seconds_initial, status, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := s.db.ExecContext(ctx, query,
		session.ID, string(session.ProviderKind), session.ProviderID,
		session.City, session.ETASecondsInitial, session.Status, session.StartedAt,
	); err != nil {
		return fmt.Errorf("failed to insert tracking session: %w", err)
	}
	return nil
}

// GetByID retrieves a session.
func (s *PostgresSessionStore) GetByID(ctx context.Context, id string) (*Session, error) {
	const query = `
		SELECT id, provider_type, provider_id, city, eta_seconds_initial, status, started_at
		FROM tracking_sessions
		WHERE id = $1
	`

	var (
		session Session
		kindRaw string
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID, &kindRaw, &session.ProviderID, &session.City,
		&session.ETASecondsInitial, &session.Status, &session.StartedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query tracking session: %w", err)
	}
	session.ProviderKind = directory.Kind(kindRaw)
	return &session, nil
}

// UpdateStatus transitions a session's status.
func (s *PostgresSessionStore) UpdateStatus(ctx context.Context, id, status string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE tracking_sessions SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update tracking session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check tracking update: %w", err)
	}
	if affected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// statusAt computes the session's progress view at the given instant.
// Progress moves the simulated position linearly toward the city anchor.
func statusAt(session *Session, now time.Time) StatusUpdate {
	elapsed := int(now.Sub(session.StartedAt).Seconds())
	remaining := session.ETASecondsInitial - elapsed
	if remaining < 0 {
		remaining = 0
	}

	progress := 100 * (1 - float64(remaining)/float64(session.ETASecondsInitial))
	progress = math.Round(progress*100) / 100

	status := session.Status
	if remaining == 0 {
		status = StatusArrived
	}

	base, ok := cityBaseCoords[strings.ToLower(strings.TrimSpace(session.City))]
	if !ok {
		base = defaultBaseCoord
	}
	offset := 0.02 * (1 - progress/100)
	simulated := geo.Point{
		Lat: math.Round((base.Lat+offset)*1e6) / 1e6,
		Lng: math.Round((base.Lng+offset)*1e6) / 1e6,
	}

	return StatusUpdate{
		TrackingID:        session.ID,
		Status:            status,
		ETASeconds:        remaining,
		ProgressPercent:   progress,
		SimulatedLocation: simulated,
	}
}
