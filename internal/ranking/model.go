// Package ranking provides the severity-weighted ranking orchestrator:
// it scores a candidate set for an emergency, applies feedback
// adjustments, sorts, truncates and persists explanation records.
package ranking

import (
	"errors"
	"time"

	"github.com/vishwas-droid/ai-healthcare-emergency/internal/directory"
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/geo"
)

// Result list bounds.
const (
	DefaultMaxResults = 20
	MaxResultsCap     = 100
)

// ErrExplanationNotFound is returned when no explanation record exists for
// an (emergency, kind, target) triple.
var ErrExplanationNotFound = errors.New("ranking explanation not found")

// Request describes one ranking pass over a candidate set.
type Request struct {
	// EmergencyID references the triaged case; it must exist.
	EmergencyID string `json:"emergency_id"`

	// Severity is a fallback used only when the emergency record carries
	// no severity of its own.
	Severity string `json:"severity,omitempty"`

	// Budget in currency units; <= 0 means unconstrained.
	Budget float64 `json:"budget"`

	// Location optionally overrides the emergency's stored patient
	// location.
	Location *geo.Point `json:"location,omitempty"`

	// City filters candidates by exact city match when non-empty.
	City string `json:"city,omitempty"`

	// MaxResults truncates the ranked list; defaults to
	// DefaultMaxResults, capped at MaxResultsCap.
	MaxResults int `json:"max_results,omitempty"`
}

// Limit resolves the effective result limit.
func (r *Request) Limit() int {
	if r.MaxResults <= 0 {
		return DefaultMaxResults
	}
	if r.MaxResults > MaxResultsCap {
		return MaxResultsCap
	}
	return r.MaxResults
}

// Explanation records why one candidate scored what it did in one ranking
// pass. One record is persisted per returned candidate; querying "why was
// X ranked" returns the most recent record for the triple.
type Explanation struct {
	ID          string             `json:"id"`
	EmergencyID string             `json:"emergency_id"`
	Kind        directory.Kind     `json:"target_type"`
	TargetID    int64              `json:"target_id"`
	ScoreTotal  float64            `json:"score_total"`
	Breakdown   map[string]float64 `json:"breakdown"`

	// WhyRanked1 is set only on the top-ranked entry of a response.
	WhyRanked1 *string   `json:"why_ranked_1,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ScoreUpdate refreshes a candidate's denormalized score cache.
type ScoreUpdate struct {
	TargetID int64
	Score    float64
}

// DoctorRanking is the response of a doctor ranking pass.
type DoctorRanking struct {
	Doctors      []directory.Doctor `json:"doctors"`
	Explanations []Explanation      `json:"explanations"`
}

// AmbulanceRanking is the response of an ambulance ranking pass.
type AmbulanceRanking struct {
	Ambulances   []directory.Ambulance `json:"ambulances"`
	Explanations []Explanation         `json:"explanations"`
}

// HospitalRanking is the response of a hospital ranking pass.
type HospitalRanking struct {
	Hospitals    []directory.Hospital `json:"hospitals"`
	Explanations []Explanation        `json:"explanations"`
}
