// Package feedback provides the outcome feedback loop that nudges ranking
// factor adjustments over time. Adjustments are global per-factor
// multipliers persisted as an append-only log of full-vector snapshots.
package feedback

import (
	"time"

	"github.com/vishwas-droid/ai-healthcare-emergency/internal/scoring"
)

// Multiplier bounds. The loop only ever increases weight on
// under-performing factors; it never drops below the 1.0 baseline.
const (
	BaselineMultiplier = 1.0
	MaxMultiplier      = 1.25

	// MaxNeutralMultiplier is the lower cap used by the neutral branch,
	// keeping its slow drift tighter than the outcome-driven branches.
	MaxNeutralMultiplier = 1.20
)

// Satisfaction thresholds delimiting the three feedback branches.
const (
	satisfactionHigh = 8
	satisfactionLow  = 4
)

// Adjustments maps a factor name to its multiplier.
type Adjustments map[string]float64

// knownFactors is every factor that carries an adjustment, across all
// provider kinds.
var knownFactors = []string{
	scoring.FactorExperience,
	scoring.FactorBayesian,
	scoring.FactorDistance,
	scoring.FactorResponse,
	scoring.FactorAvailability,
	scoring.FactorEmergencyMatch,
	scoring.FactorBudget,
	scoring.FactorSuccess,
	scoring.FactorEquipment,
	scoring.FactorDriver,
	scoring.FactorCost,
	scoring.FactorICU,
	scoring.FactorWait,
	scoring.FactorSpecialty,
}

// DefaultAdjustments returns the all-1.0 baseline vector.
func DefaultAdjustments() Adjustments {
	adj := make(Adjustments, len(knownFactors))
	for _, f := range knownFactors {
		adj[f] = BaselineMultiplier
	}
	return adj
}

// MergeOverDefaults overlays a stored snapshot onto the defaults, so
// factors introduced after the snapshot was written still resolve to 1.0.
// Unknown keys in the snapshot are preserved.
func MergeOverDefaults(snapshot Adjustments) Adjustments {
	merged := DefaultAdjustments()
	for factor, mult := range snapshot {
		merged[factor] = mult
	}
	return merged
}

// Get returns the multiplier for a factor, defaulting to the baseline.
func (a Adjustments) Get(factor string) float64 {
	if m, ok := a[factor]; ok {
		return m
	}
	return BaselineMultiplier
}

// Clone returns an independent copy of the vector.
func (a Adjustments) Clone() Adjustments {
	copied := make(Adjustments, len(a))
	for k, v := range a {
		copied[k] = v
	}
	return copied
}

// bump raises a factor's multiplier by delta, capped at max.
func (a Adjustments) bump(factor string, delta, max float64) {
	next := a.Get(factor) + delta
	if next > max {
		next = max
	}
	a[factor] = next
}

// Outcome is a reported result for a dispatched emergency.
type Outcome struct {
	ID                  string    `json:"id"`
	EmergencyID         string    `json:"emergency_id"`
	Outcome             string    `json:"outcome"`
	ResponseTimeSeconds int       `json:"response_time_seconds"`
	SatisfactionScore   int       `json:"satisfaction_score"`
	Survival            *bool     `json:"survival,omitempty"`
	Notes               string    `json:"notes"`
	CreatedAt           time.Time `json:"created_at"`
}

// ApplyOutcome mutates the vector according to the outcome. Exactly one
// branch fires per event, first match wins:
//
//  1. satisfied (>=8) with confirmed survival: reward speed factors.
//  2. dissatisfied (<=4): boost the factors patients complain about.
//  3. neutral band, or high satisfaction without confirmed survival:
//     drift specialty matching up slightly.
func ApplyOutcome(adj Adjustments, o *Outcome) {
	switch {
	case o.SatisfactionScore >= satisfactionHigh && o.Survival != nil && *o.Survival:
		adj.bump(scoring.FactorResponse, 0.03, MaxMultiplier)
		adj.bump(scoring.FactorAvailability, 0.03, MaxMultiplier)
		adj.bump(scoring.FactorSuccess, 0.02, MaxMultiplier)
	case o.SatisfactionScore <= satisfactionLow:
		adj.bump(scoring.FactorBudget, 0.04, MaxMultiplier)
		adj.bump(scoring.FactorDistance, 0.03, MaxMultiplier)
		adj.bump(scoring.FactorWait, 0.03, MaxMultiplier)
	default:
		adj.bump(scoring.FactorEmergencyMatch, 0.01, MaxNeutralMultiplier)
	}
}

// Snapshot is one persisted full-vector state of the adjustment log.
type Snapshot struct {
	ID          string      `json:"id"`
	Adjustments Adjustments `json:"adjustments"`
	CreatedAt   time.Time   `json:"created_at"`
}
