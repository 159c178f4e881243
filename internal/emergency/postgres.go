package emergency

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new Postgres-backed emergency repository.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert stores a new emergency, assigning an ID if unset.
func (r *PostgresRepository) Insert(ctx context.Context, e *Emergency) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if e.Status == "" {
		e.Status = StatusOpen
	}

	query := `
		INSERT INTO emergencies (
			id, patient_user_id, complaint_text, severity, severity_score,
			emergency_type, status, latitude, longitude, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.PatientUserID, e.ComplaintText, string(e.Severity), e.SeverityScore,
		string(e.Type), e.Status, e.Location.Lat, e.Location.Lng, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert emergency: %w", err)
	}
	return nil
}

// GetByID retrieves an emergency by its ID.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Emergency, error) {
	query := `
		SELECT id, patient_user_id, complaint_text, severity, severity_score,
		       emergency_type, status, latitude, longitude, created_at
		FROM emergencies
		WHERE id = $1
	`
	var (
		e        Emergency
		severity string
		etype    string
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.PatientUserID, &e.ComplaintText, &severity, &e.SeverityScore,
		&etype, &e.Status, &e.Location.Lat, &e.Location.Lng, &e.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get emergency: %w", err)
	}
	e.Severity = ParseSeverity(severity)
	e.Type = ParseType(etype)
	return &e, nil
}

// UpdateStatus sets the status of an existing emergency.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE emergencies SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update emergency status: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
