package feedback

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// weightUpdateEventType tags adjustment snapshots in the analytics event log.
const weightUpdateEventType = "weight_update"

// PostgresSnapshotStore implements SnapshotStore on the analytics_events
// table: each snapshot is one append-only row with a JSON payload.
type PostgresSnapshotStore struct {
	db *sql.DB
}

// NewPostgresSnapshotStore creates a new Postgres-backed snapshot store.
func NewPostgresSnapshotStore(db *sql.DB) *PostgresSnapshotStore {
	return &PostgresSnapshotStore{db: db}
}

// Latest returns the newest weight_update payload merged over defaults.
// Malformed or missing payload fields resolve to the 1.0 baseline.
func (s *PostgresSnapshotStore) Latest(ctx context.Context) (Adjustments, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM analytics_events
		WHERE event_type = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, weightUpdateEventType).Scan(&payload)
	if err == sql.ErrNoRows {
		return DefaultAdjustments(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load adjustment snapshot: %w", err)
	}

	var snapshot Adjustments
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		// A corrupt snapshot must not break ranking; fall back to defaults.
		return DefaultAdjustments(), nil
	}
	return MergeOverDefaults(snapshot), nil
}

// Append writes a new full-vector snapshot row.
func (s *PostgresSnapshotStore) Append(ctx context.Context, adj Adjustments) error {
	payload, err := json.Marshal(adj)
	if err != nil {
		return fmt.Errorf("failed to marshal adjustment snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analytics_events (id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4)
	`, uuid.New().String(), weightUpdateEventType, payload, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to append adjustment snapshot: %w", err)
	}
	return nil
}

// PostgresOutcomeStore implements OutcomeStore using PostgreSQL.
type PostgresOutcomeStore struct {
	db *sql.DB
}

// NewPostgresOutcomeStore creates a new Postgres-backed outcome store.
func NewPostgresOutcomeStore(db *sql.DB) *PostgresOutcomeStore {
	return &PostgresOutcomeStore{db: db}
}

// Insert stores an outcome, assigning an ID if unset.
func (s *PostgresOutcomeStore) Insert(ctx context.Context, o *Outcome) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO feedback_outcomes (
			id, emergency_id, outcome, response_time_seconds,
			satisfaction_score, survival, notes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, o.ID, o.EmergencyID, o.Outcome, o.ResponseTimeSeconds,
		o.SatisfactionScore, o.Survival, o.Notes, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert feedback outcome: %w", err)
	}
	return nil
}
