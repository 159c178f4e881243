package listing

import (
	"context"
	"errors"
	"fmt"

	"github.com/vishwas-droid/ai-healthcare-emergency/internal/directory"
)

// ErrNoCandidates is returned when none of the requested IDs resolve to a
// provider of the requested kind.
var ErrNoCandidates = errors.New("no candidates matched the requested ids")

// CompareQuery selects a set of same-kind providers to rank head to head.
// City and Budget together switch the scoring to the contextual variant;
// Category only sharpens the doctor keyword boost and the recommendation.
type CompareQuery struct {
	Kind     directory.Kind
	IDs      []int64
	City     string
	Category string
	Budget   float64
}

// contextual mirrors the listing queries: the boosted scorer needs both a
// city and a budget to have anything to anchor on.
func (q *CompareQuery) contextual() bool {
	return q.City != "" && q.Budget > 0
}

// CompareResult names the winner of a comparison and explains the pick.
type CompareResult struct {
	WinnerID   int64   `json:"winner_id"`
	WinnerName string  `json:"winner_name"`
	Score      float64 `json:"score"`
	Reason     string  `json:"reason"`
}

// DoctorRecommendation renders the one-line pitch for a winning doctor.
func DoctorRecommendation(d *directory.Doctor, category string) string {
	catText := ""
	if category != "" {
		catText = " " + category
	}
	return fmt.Sprintf(
		"Based on affordability, %d years of experience, and %d-minute response time, %s is the most optimal%s specialist in %s.",
		d.ExperienceYears, d.ResponseTimeMinutes, d.Name, catText, d.City)
}

// AmbulanceRecommendation renders the one-line pitch for a winning ambulance.
func AmbulanceRecommendation(a *directory.Ambulance, withinBudget bool) string {
	budgetText := ""
	if withinBudget {
		budgetText = " within your budget"
	}
	return fmt.Sprintf(
		"%s offers a fast %d-minute response and critical-care equipment%s in %s.",
		a.ProviderName, a.ResponseTimeMinutes, budgetText, a.City)
}

// Compare ranks the named providers against each other and returns the
// winner with a recommendation. Only doctors and ambulances compare;
// hospitals are ranked per emergency, not browsed head to head.
func (s *Service) Compare(ctx context.Context, q *CompareQuery) (*CompareResult, error) {
	idSet := make(map[int64]struct{}, len(q.IDs))
	for _, id := range q.IDs {
		idSet[id] = struct{}{}
	}

	switch q.Kind {
	case directory.KindDoctor:
		pool, err := s.doctors.List(ctx, "")
		if err != nil {
			return nil, fmt.Errorf("failed to list doctors: %w", err)
		}
		candidates := pool[:0:0]
		for _, d := range pool {
			if _, ok := idSet[d.ID]; ok {
				candidates = append(candidates, d)
			}
		}
		if len(candidates) == 0 {
			return nil, ErrNoCandidates
		}

		var ranked []directory.Doctor
		if q.contextual() {
			ranked = ScoreDoctorsContextual(candidates, q.City, q.Category, q.Budget)
		} else {
			ranked = ScoreDoctors(candidates)
		}
		winner := ranked[0]
		return &CompareResult{
			WinnerID:   winner.ID,
			WinnerName: winner.Name,
			Score:      winner.AIScore,
			Reason:     DoctorRecommendation(&winner, q.Category),
		}, nil

	case directory.KindAmbulance:
		pool, err := s.ambulances.List(ctx, "")
		if err != nil {
			return nil, fmt.Errorf("failed to list ambulances: %w", err)
		}
		candidates := pool[:0:0]
		for _, a := range pool {
			if _, ok := idSet[a.ID]; ok {
				candidates = append(candidates, a)
			}
		}
		if len(candidates) == 0 {
			return nil, ErrNoCandidates
		}

		var ranked []directory.Ambulance
		if q.contextual() {
			ranked = ScoreAmbulancesContextual(candidates, q.City, q.Budget, "")
		} else {
			ranked = ScoreAmbulances(candidates)
		}
		winner := ranked[0]
		return &CompareResult{
			WinnerID:   winner.ID,
			WinnerName: winner.ProviderName,
			Score:      winner.AIScore,
			Reason:     AmbulanceRecommendation(&winner, q.Budget > 0),
		}, nil
	}

	return nil, fmt.Errorf("cannot compare kind %q", q.Kind)
}

// HospitalQuery filters the plain hospital listing.
type HospitalQuery struct {
	City   string `json:"city,omitempty"`
	MinICU int    `json:"min_icu,omitempty"`
}

// ListHospitals returns hospitals, optionally restricted to a city and a
// minimum count of free ICU beds. Hospitals are not browse-scored; their
// ranking is always per emergency.
func (s *Service) ListHospitals(ctx context.Context, q *HospitalQuery) ([]directory.Hospital, error) {
	city := ""
	minICU := 0
	if q != nil {
		city, minICU = q.City, q.MinICU
	}

	pool, err := s.hospitals.List(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("failed to list hospitals: %w", err)
	}
	if pool == nil {
		pool = []directory.Hospital{}
	}
	if minICU <= 0 {
		return pool, nil
	}

	filtered := pool[:0:0]
	for _, h := range pool {
		if h.ICUBedsAvailable >= minICU {
			filtered = append(filtered, h)
		}
	}
	return filtered, nil
}
