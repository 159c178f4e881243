package ranking

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vishwas-droid/ai-healthcare-emergency/internal/directory"
)

// PostgresResultStore persists ranking results in PostgreSQL. Score cache
// refreshes and explanation inserts for one pass share a transaction.
type PostgresResultStore struct {
	db *sql.DB
}

// NewPostgresResultStore creates a ResultStore backed by the given database.
func NewPostgresResultStore(db *sql.DB) *PostgresResultStore {
	return &PostgresResultStore{db: db}
}

func scoreTableFor(kind directory.Kind) (string, error) {
	switch kind {
	case directory.KindDoctor:
		return "doctors", nil
	case directory.KindAmbulance:
		return "ambulances", nil
	case directory.KindHospital:
		return "hospitals", nil
	default:
		return "", fmt.Errorf("unknown target kind %q", kind)
	}
}

// SaveRankings writes score cache updates and explanation records in a
// single transaction.
func (s *PostgresResultStore) SaveRankings(ctx context.Context, kind directory.Kind, scores []ScoreUpdate, explanations []Explanation) error {
	table, err := scoreTableFor(kind)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Always attempt rollback on function exit (no-op after successful commit)
	defer func() {
		_ = tx.Rollback()
	}()

	updateQuery := fmt.Sprintf(`UPDATE %s SET ai_score = $1 WHERE id = $2`, table)
	for _, u := range scores {
		if _, err := tx.ExecContext(ctx, updateQuery, u.Score, u.TargetID); err != nil {
			return fmt.Errorf("failed to refresh %s score: %w", kind, err)
		}
	}

	const insertQuery = `
		INSERT INTO ranking_scores (id, emergency_id, target_type, target_id, score_total, breakdown, why_ranked_1, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for _, e := range explanations {
		id := e.ID
		if id == "" {
			id = uuid.NewString()
		}
		createdAt := e.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		payload, err := json.Marshal(e.Breakdown)
		if err != nil {
			return fmt.Errorf("failed to marshal score breakdown: %w", err)
		}
		var why sql.NullString
		if e.WhyRanked1 != nil {
			why = sql.NullString{String: *e.WhyRanked1, Valid: true}
		}
		if _, err := tx.ExecContext(ctx, insertQuery,
			id, e.EmergencyID, string(e.Kind), e.TargetID, e.ScoreTotal, payload, why, createdAt,
		); err != nil {
			return fmt.Errorf("failed to insert ranking explanation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ranking results: %w", err)
	}
	return nil
}

// LatestExplanation returns the newest explanation record for the triple.
func (s *PostgresResultStore) LatestExplanation(ctx context.Context, emergencyID string, kind directory.Kind, targetID int64) (*Explanation, error) {
	const query = `
		SELECT id, emergency_id, target_type, target_id, score_total, breakdown, why_ranked_1, created_at
		FROM ranking_scores
		WHERE emergency_id = $1 AND target_type = $2 AND target_id = $3
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	var (
		e       Explanation
		kindRaw string
		payload []byte
		why     sql.NullString
	)
	err := s.db.QueryRowContext(ctx, query, emergencyID, string(kind), targetID).Scan(
		&e.ID, &e.EmergencyID, &kindRaw, &e.TargetID, &e.ScoreTotal, &payload, &why, &e.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrExplanationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query ranking explanation: %w", err)
	}

	e.Kind = directory.Kind(kindRaw)
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &e.Breakdown); err != nil {
			return nil, fmt.Errorf("failed to decode score breakdown: %w", err)
		}
	}
	if why.Valid {
		e.WhyRanked1 = &why.String
	}
	return &e, nil
}
