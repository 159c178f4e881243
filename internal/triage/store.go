package triage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Log is the audit record of one triage run, kept separate from the
// emergency row so assessments can be re-run without losing history.
type Log struct {
	ID          string    `json:"id"`
	EmergencyID string    `json:"emergency_id"`
	Entities    Entities  `json:"entities"`
	RiskFlags   []string  `json:"risk_flags"`
	Confidence  float64   `json:"confidence"`
	CreatedAt   time.Time `json:"created_at"`
}

// LogStore persists triage audit records.
type LogStore interface {
	Insert(ctx context.Context, l *Log) error
}

// InMemoryLogStore is a thread-safe in-memory LogStore.
type InMemoryLogStore struct {
	mu   sync.RWMutex
	logs []Log
}

// NewInMemoryLogStore creates an empty in-memory log store.
func NewInMemoryLogStore() *InMemoryLogStore {
	return &InMemoryLogStore{}
}

// Insert stores a log record, assigning an ID if unset.
func (s *InMemoryLogStore) Insert(_ context.Context, l *Log) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	s.logs = append(s.logs, *l)
	return nil
}

// All returns a copy of the stored logs.
func (s *InMemoryLogStore) All() []Log {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Log, len(s.logs))
	copy(out, s.logs)
	return out
}

// PostgresLogStore persists triage logs in PostgreSQL.
type PostgresLogStore struct {
	db *sql.DB
}

// NewPostgresLogStore creates a LogStore backed by the given database.
func NewPostgresLogStore(db *sql.DB) *PostgresLogStore {
	return &PostgresLogStore{db: db}
}

// Insert stores a log record.
func (s *PostgresLogStore) Insert(ctx context.Context, l *Log) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}

	entities, err := json.Marshal(l.Entities)
	if err != nil {
		return fmt.Errorf("failed to marshal triage entities: %w", err)
	}
	flags, err := json.Marshal(l.RiskFlags)
	if err != nil {
		return fmt.Errorf("failed to marshal risk flags: %w", err)
	}

	const query = `
		INSERT INTO triage_logs (id, emergency_id, entities, risk_flags, confidence, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := s.db.ExecContext(ctx, query, l.ID, l.EmergencyID, entities, flags, l.Confidence, l.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert triage log: %w", err)
	}
	return nil
}
