package feedback

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SnapshotStore persists the append-only adjustment snapshot log.
// Snapshots are never mutated in place; "the adjustment vector" always
// means the most recent snapshot merged over defaults.
type SnapshotStore interface {
	// Latest returns the newest snapshot's vector merged over defaults,
	// or the default all-1.0 vector if no snapshot exists.
	Latest(ctx context.Context) (Adjustments, error)

	// Append writes a new full-vector snapshot to the log.
	Append(ctx context.Context, adj Adjustments) error
}

// OutcomeStore persists reported feedback outcomes.
type OutcomeStore interface {
	// Insert stores an outcome, assigning an ID if unset.
	Insert(ctx context.Context, o *Outcome) error
}

// InMemorySnapshotStore is an in-memory implementation of SnapshotStore.
// Used for testing and development. Thread-safe via RWMutex.
type InMemorySnapshotStore struct {
	mu        sync.RWMutex
	snapshots []Snapshot
}

// NewInMemorySnapshotStore creates a new in-memory snapshot store.
func NewInMemorySnapshotStore() *InMemorySnapshotStore {
	return &InMemorySnapshotStore{}
}

// Latest returns the newest snapshot merged over defaults.
func (s *InMemorySnapshotStore) Latest(_ context.Context) (Adjustments, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.snapshots) == 0 {
		return DefaultAdjustments(), nil
	}
	return MergeOverDefaults(s.snapshots[len(s.snapshots)-1].Adjustments), nil
}

// Append writes a new snapshot to the log.
func (s *InMemorySnapshotStore) Append(_ context.Context, adj Adjustments) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots = append(s.snapshots, Snapshot{
		ID:          uuid.New().String(),
		Adjustments: adj.Clone(),
		CreatedAt:   time.Now().UTC(),
	})
	return nil
}

// Len returns the number of snapshots in the log (for testing).
func (s *InMemorySnapshotStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshots)
}

// InMemoryOutcomeStore is an in-memory implementation of OutcomeStore.
type InMemoryOutcomeStore struct {
	mu       sync.RWMutex
	outcomes []Outcome
}

// NewInMemoryOutcomeStore creates a new in-memory outcome store.
func NewInMemoryOutcomeStore() *InMemoryOutcomeStore {
	return &InMemoryOutcomeStore{}
}

// Insert stores an outcome, assigning an ID if unset.
func (s *InMemoryOutcomeStore) Insert(_ context.Context, o *Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	s.outcomes = append(s.outcomes, *o)
	return nil
}

// All returns stored outcomes (for testing).
func (s *InMemoryOutcomeStore) All() []Outcome {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]Outcome, len(s.outcomes))
	copy(result, s.outcomes)
	return result
}
