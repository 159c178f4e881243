package listing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vishwas-droid/ai-healthcare-emergency/internal/directory"
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/ranking"
)

// Service serves browse/search listings over the provider directory. The
// ai_score column is a denormalized cache; every listing pass recomputes
// scores for the returned pool and refreshes the cache when a result
// store is configured.
type Service struct {
	doctors    directory.DoctorRepository
	ambulances directory.AmbulanceRepository
	hospitals  directory.HospitalRepository
	results    ranking.ResultStore
	logger     *slog.Logger
}

// NewService creates a listing service. results may be nil to skip cache
// refreshes (tests, read-only replicas).
func NewService(doctors directory.DoctorRepository, ambulances directory.AmbulanceRepository, hospitals directory.HospitalRepository, results ranking.ResultStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		doctors:    doctors,
		ambulances: ambulances,
		hospitals:  hospitals,
		results:    results,
		logger:     logger,
	}
}

// DoctorQuery selects and contextualizes a doctor listing.
type DoctorQuery struct {
	City    string  `json:"city,omitempty"`
	Problem string  `json:"problem,omitempty"`
	Budget  float64 `json:"budget,omitempty"`
}

// contextual reports whether any boost input was supplied.
func (q *DoctorQuery) contextual() bool {
	return q.City != "" || q.Problem != "" || q.Budget > 0
}

// AmbulanceQuery selects and contextualizes an ambulance listing.
type AmbulanceQuery struct {
	City    string  `json:"city,omitempty"`
	Budget  float64 `json:"budget,omitempty"`
	Urgency string  `json:"urgency,omitempty"`
}

func (q *AmbulanceQuery) contextual() bool {
	return q.City != "" || q.Budget > 0 || q.Urgency != ""
}

// ListDoctors returns the doctor pool scored and sorted for browsing.
// When contextual inputs are present the boosted variant is used. The
// pool is not filtered by city; the city only drives the same-city boost.
func (s *Service) ListDoctors(ctx context.Context, q *DoctorQuery) ([]directory.Doctor, error) {
	pool, err := s.doctors.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}

	var scored []directory.Doctor
	if q != nil && q.contextual() {
		scored = ScoreDoctorsContextual(pool, q.City, q.Problem, q.Budget)
	} else {
		scored = ScoreDoctors(pool)
	}

	s.refreshCache(ctx, directory.KindDoctor, func(i int) ranking.ScoreUpdate {
		return ranking.ScoreUpdate{TargetID: scored[i].ID, Score: scored[i].AIScore}
	}, len(scored))
	return scored, nil
}

// ListAmbulances returns the ambulance pool scored and sorted for
// browsing.
func (s *Service) ListAmbulances(ctx context.Context, q *AmbulanceQuery) ([]directory.Ambulance, error) {
	pool, err := s.ambulances.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list ambulances: %w", err)
	}

	var scored []directory.Ambulance
	if q != nil && q.contextual() {
		scored = ScoreAmbulancesContextual(pool, q.City, q.Budget, q.Urgency)
	} else {
		scored = ScoreAmbulances(pool)
	}

	s.refreshCache(ctx, directory.KindAmbulance, func(i int) ranking.ScoreUpdate {
		return ranking.ScoreUpdate{TargetID: scored[i].ID, Score: scored[i].AIScore}
	}, len(scored))
	return scored, nil
}

// refreshCache best-effort refreshes the denormalized score cache. A
// failed refresh is logged, never surfaced: listings must not fail on a
// cache write.
func (s *Service) refreshCache(ctx context.Context, kind directory.Kind, at func(i int) ranking.ScoreUpdate, n int) {
	if s.results == nil || n == 0 {
		return
	}
	updates := make([]ranking.ScoreUpdate, n)
	for i := 0; i < n; i++ {
		updates[i] = at(i)
	}
	if err := s.results.SaveRankings(ctx, kind, updates, nil); err != nil {
		s.logger.Warn("failed to refresh score cache",
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()))
	}
}
