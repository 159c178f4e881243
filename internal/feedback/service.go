package feedback

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vishwas-droid/ai-healthcare-emergency/internal/emergency"
)

// Service runs the feedback loop: it persists reported outcomes and nudges
// the global adjustment vector.
type Service struct {
	emergencies emergency.Repository
	outcomes    OutcomeStore
	snapshots   SnapshotStore
	metrics     *Metrics
	logger      *slog.Logger

	// mu serializes the read-modify-append on the snapshot log within
	// this process. Concurrent submissions from separate processes can
	// still lose an update; the log stays auditable either way.
	mu sync.Mutex
}

// NewService creates a feedback service. metrics may be nil to disable
// instrumentation.
func NewService(emergencies emergency.Repository, outcomes OutcomeStore, snapshots SnapshotStore, metrics *Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		emergencies: emergencies,
		outcomes:    outcomes,
		snapshots:   snapshots,
		metrics:     metrics,
		logger:      logger,
	}
}

// RecordOutcome stores the outcome for an emergency, updates the adjustment
// vector and returns the new vector. The referenced emergency must exist.
// An emergency with a reported survival result is marked resolved.
func (s *Service) RecordOutcome(ctx context.Context, o *Outcome) (Adjustments, error) {
	if _, err := s.emergencies.GetByID(ctx, o.EmergencyID); err != nil {
		return nil, err
	}

	if err := s.outcomes.Insert(ctx, o); err != nil {
		return nil, fmt.Errorf("failed to store outcome: %w", err)
	}

	if o.Survival != nil {
		if err := s.emergencies.UpdateStatus(ctx, o.EmergencyID, emergency.StatusResolved); err != nil {
			return nil, fmt.Errorf("failed to resolve emergency: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	adj, err := s.snapshots.Latest(ctx)
	if err != nil {
		s.observeSnapshotError()
		return nil, fmt.Errorf("failed to load adjustments: %w", err)
	}

	ApplyOutcome(adj, o)

	if err := s.snapshots.Append(ctx, adj); err != nil {
		s.observeSnapshotError()
		return nil, fmt.Errorf("failed to append adjustment snapshot: %w", err)
	}

	branch := classifyBranch(o)
	if s.metrics != nil {
		s.metrics.ObserveOutcome(branch)
		s.metrics.ObserveSnapshotAppend(adj)
	}
	s.logger.Info("feedback outcome recorded",
		"emergency_id", o.EmergencyID,
		"satisfaction", o.SatisfactionScore,
		"branch", branch)

	return adj, nil
}

// classifyBranch mirrors the branch order of ApplyOutcome for metric labels.
func classifyBranch(o *Outcome) string {
	switch {
	case o.SatisfactionScore >= satisfactionHigh && o.Survival != nil && *o.Survival:
		return BranchPositive
	case o.SatisfactionScore <= satisfactionLow:
		return BranchNegative
	default:
		return BranchNeutral
	}
}

func (s *Service) observeSnapshotError() {
	if s.metrics != nil {
		s.metrics.ObserveSnapshotError()
	}
}
