package ranking

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vishwas-droid/ai-healthcare-emergency/internal/directory"
)

// ResultStore persists the outcome of a ranking pass: refreshed candidate
// score caches plus one explanation record per returned candidate. Both
// writes happen atomically so a partially persisted pass is never visible.
type ResultStore interface {
	SaveRankings(ctx context.Context, kind directory.Kind, scores []ScoreUpdate, explanations []Explanation) error
	LatestExplanation(ctx context.Context, emergencyID string, kind directory.Kind, targetID int64) (*Explanation, error)
}

// InMemoryResultStore is a thread-safe in-memory ResultStore for tests and
// local development.
type InMemoryResultStore struct {
	mu           sync.RWMutex
	explanations []Explanation
	scores       map[directory.Kind]map[int64]float64
}

// NewInMemoryResultStore creates an empty in-memory result store.
func NewInMemoryResultStore() *InMemoryResultStore {
	return &InMemoryResultStore{
		scores: make(map[directory.Kind]map[int64]float64),
	}
}

// SaveRankings appends explanation records and refreshes the score cache.
func (s *InMemoryResultStore) SaveRankings(ctx context.Context, kind directory.Kind, scores []ScoreUpdate, explanations []Explanation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID := s.scores[kind]
	if byID == nil {
		byID = make(map[int64]float64)
		s.scores[kind] = byID
	}
	for _, u := range scores {
		byID[u.TargetID] = u.Score
	}

	for _, e := range explanations {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = time.Now().UTC()
		}
		e.Breakdown = copyBreakdown(e.Breakdown)
		s.explanations = append(s.explanations, e)
	}
	return nil
}

// LatestExplanation returns the most recently appended record for the
// triple, or ErrExplanationNotFound.
func (s *InMemoryResultStore) LatestExplanation(ctx context.Context, emergencyID string, kind directory.Kind, targetID int64) (*Explanation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.explanations) - 1; i >= 0; i-- {
		e := s.explanations[i]
		if e.EmergencyID == emergencyID && e.Kind == kind && e.TargetID == targetID {
			out := e
			out.Breakdown = copyBreakdown(e.Breakdown)
			return &out, nil
		}
	}
	return nil, ErrExplanationNotFound
}

// CachedScore reports the refreshed score for a candidate, if any.
func (s *InMemoryResultStore) CachedScore(kind directory.Kind, targetID int64) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.scores[kind][targetID]
	return v, ok
}

// ExplanationCount reports how many explanation records have been stored.
func (s *InMemoryResultStore) ExplanationCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.explanations)
}

func copyBreakdown(in map[string]float64) map[string]float64 {
	if in == nil {
		return nil
	}
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
