package ranking

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/vishwas-droid/ai-healthcare-emergency/internal/directory"
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/emergency"
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/feedback"
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/geo"
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/scoring"
)

// Service runs ranking passes over the provider directory. Per pass it
// resolves the emergency context, loads the current adjustment vector,
// scores every candidate, applies severity weights and adjustments exactly
// once against the raw breakdown, sorts, truncates and persists an
// explanation per returned candidate.
type Service struct {
	emergencies emergency.Repository
	doctors     directory.DoctorRepository
	ambulances  directory.AmbulanceRepository
	hospitals   directory.HospitalRepository
	snapshots   feedback.SnapshotStore
	results     ResultStore
	metrics     *Metrics
	logger      *slog.Logger
}

// NewService creates a ranking service. metrics may be nil when metrics
// collection is disabled.
func NewService(
	emergencies emergency.Repository,
	doctors directory.DoctorRepository,
	ambulances directory.AmbulanceRepository,
	hospitals directory.HospitalRepository,
	snapshots feedback.SnapshotStore,
	results ResultStore,
	metrics *Metrics,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		emergencies: emergencies,
		doctors:     doctors,
		ambulances:  ambulances,
		hospitals:   hospitals,
		snapshots:   snapshots,
		results:     results,
		metrics:     metrics,
		logger:      logger,
	}
}

// passContext is the resolved per-pass scoring context.
type passContext struct {
	severity emergency.Severity
	etype    emergency.Type
	patient  geo.Point
	adj      feedback.Adjustments
}

// resolve loads the emergency and adjustment vector for a request. The
// emergency's own severity wins; the request severity is a fallback for
// legacy records created without one. An explicit request location
// overrides the stored patient location.
func (s *Service) resolve(ctx context.Context, req *Request) (*passContext, error) {
	e, err := s.emergencies.GetByID(ctx, req.EmergencyID)
	if err != nil {
		return nil, err
	}

	severity := e.Severity
	if severity == "" {
		severity = emergency.ParseSeverity(req.Severity)
	}

	patient := e.Location
	if req.Location != nil {
		patient = *req.Location
	}

	adj, err := s.snapshots.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load adjustment vector: %w", err)
	}

	return &passContext{
		severity: severity,
		etype:    e.Type,
		patient:  patient,
		adj:      adj,
	}, nil
}

// adjustedTotal recomputes the authoritative total from the raw breakdown:
// sub-score times severity weight times feedback adjustment, summed over
// the factor set, then the availability penalty, clamped to 100.
func adjustedTotal(breakdown map[string]float64, weights scoring.Weights, adj feedback.Adjustments, penalty float64) float64 {
	var total float64
	for factor, w := range weights {
		total += breakdown[factor] * w * adj.Get(factor)
	}
	total *= penalty
	if total > 100 {
		total = 100
	}
	return scoring.Round2(total)
}

// ranked pairs an index into the candidate slice with its scoring result.
// The index keeps the sort stable relative to repository order.
type ranked struct {
	idx    int
	total  float64
	result scoring.Result
}

// sortRanked orders candidates by adjusted total descending, preserving
// repository order among equals.
func sortRanked(entries []ranked) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].total > entries[j].total
	})
}

func (s *Service) buildExplanations(req *Request, kind directory.Kind, entries []ranked, targetID func(i int) int64) ([]Explanation, []ScoreUpdate) {
	now := time.Now().UTC()
	explanations := make([]Explanation, 0, len(entries))
	updates := make([]ScoreUpdate, 0, len(entries))
	for rank, e := range entries {
		ex := Explanation{
			EmergencyID: req.EmergencyID,
			Kind:        kind,
			TargetID:    targetID(e.idx),
			ScoreTotal:  e.total,
			Breakdown:   copyBreakdown(e.result.Breakdown),
			CreatedAt:   now,
		}
		if rank == 0 {
			why := scoring.ExplainTopFactor(kind, e.result.Breakdown)
			ex.WhyRanked1 = &why
		}
		explanations = append(explanations, ex)
		updates = append(updates, ScoreUpdate{TargetID: ex.TargetID, Score: e.total})
	}
	return explanations, updates
}

func (s *Service) finishPass(ctx context.Context, kind directory.Kind, pc *passContext, pool int, returned int, explanations []Explanation, updates []ScoreUpdate, started time.Time) error {
	if err := s.results.SaveRankings(ctx, kind, updates, explanations); err != nil {
		return fmt.Errorf("failed to persist ranking results: %w", err)
	}
	if s.metrics != nil {
		s.metrics.ObservePass(string(kind), string(pc.severity), pool, time.Since(started))
	}
	s.logger.Info("ranking pass completed",
		slog.String("kind", string(kind)),
		slog.String("severity", string(pc.severity)),
		slog.Int("candidates", pool),
		slog.Int("returned", returned))
	return nil
}

// RankDoctors scores and ranks doctors for an emergency.
func (s *Service) RankDoctors(ctx context.Context, req *Request) (*DoctorRanking, error) {
	started := time.Now()
	pc, err := s.resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	candidates, err := s.doctors.List(ctx, req.City)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}

	weights := scoring.WeightsFor(directory.KindDoctor, pc.severity)
	entries := make([]ranked, 0, len(candidates))
	for i := range candidates {
		res := scoring.ScoreDoctor(pc.severity, &candidates[i], pc.patient, req.Budget, pc.etype)
		total := adjustedTotal(res.Breakdown, weights, pc.adj, 1.0)
		entries = append(entries, ranked{idx: i, total: total, result: res})
	}
	sortRanked(entries)
	if limit := req.Limit(); len(entries) > limit {
		entries = entries[:limit]
	}

	explanations, updates := s.buildExplanations(req, directory.KindDoctor, entries, func(i int) int64 {
		return candidates[i].ID
	})

	out := make([]directory.Doctor, 0, len(entries))
	for _, e := range entries {
		d := candidates[e.idx]
		d.AIScore = e.total
		out = append(out, d)
	}

	if err := s.finishPass(ctx, directory.KindDoctor, pc, len(candidates), len(out), explanations, updates, started); err != nil {
		return nil, err
	}
	return &DoctorRanking{Doctors: out, Explanations: explanations}, nil
}

// RankAmbulances scores and ranks ambulances for an emergency.
func (s *Service) RankAmbulances(ctx context.Context, req *Request) (*AmbulanceRanking, error) {
	started := time.Now()
	pc, err := s.resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	candidates, err := s.ambulances.List(ctx, req.City)
	if err != nil {
		return nil, fmt.Errorf("failed to list ambulances: %w", err)
	}

	weights := scoring.WeightsFor(directory.KindAmbulance, pc.severity)
	entries := make([]ranked, 0, len(candidates))
	for i := range candidates {
		res := scoring.ScoreAmbulance(pc.severity, &candidates[i], pc.patient, req.Budget)
		total := adjustedTotal(res.Breakdown, weights, pc.adj, 1.0)
		entries = append(entries, ranked{idx: i, total: total, result: res})
	}
	sortRanked(entries)
	if limit := req.Limit(); len(entries) > limit {
		entries = entries[:limit]
	}

	explanations, updates := s.buildExplanations(req, directory.KindAmbulance, entries, func(i int) int64 {
		return candidates[i].ID
	})

	out := make([]directory.Ambulance, 0, len(entries))
	for _, e := range entries {
		a := candidates[e.idx]
		a.AIScore = e.total
		out = append(out, a)
	}

	if err := s.finishPass(ctx, directory.KindAmbulance, pc, len(candidates), len(out), explanations, updates, started); err != nil {
		return nil, err
	}
	return &AmbulanceRanking{Ambulances: out, Explanations: explanations}, nil
}

// RankHospitals scores and ranks hospitals for an emergency. An
// unavailable hospital keeps its raw breakdown; the soft penalty applies
// to the adjusted total only.
func (s *Service) RankHospitals(ctx context.Context, req *Request) (*HospitalRanking, error) {
	started := time.Now()
	pc, err := s.resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	candidates, err := s.hospitals.List(ctx, req.City)
	if err != nil {
		return nil, fmt.Errorf("failed to list hospitals: %w", err)
	}

	weights := scoring.WeightsFor(directory.KindHospital, pc.severity)
	entries := make([]ranked, 0, len(candidates))
	for i := range candidates {
		res := scoring.ScoreHospital(pc.severity, &candidates[i], pc.patient, req.Budget, pc.etype)
		penalty := scoring.AvailabilityPenalty(directory.KindHospital, candidates[i].IsAvailable)
		total := adjustedTotal(res.Breakdown, weights, pc.adj, penalty)
		entries = append(entries, ranked{idx: i, total: total, result: res})
	}
	sortRanked(entries)
	if limit := req.Limit(); len(entries) > limit {
		entries = entries[:limit]
	}

	explanations, updates := s.buildExplanations(req, directory.KindHospital, entries, func(i int) int64 {
		return candidates[i].ID
	})

	out := make([]directory.Hospital, 0, len(entries))
	for _, e := range entries {
		h := candidates[e.idx]
		h.AIScore = e.total
		out = append(out, h)
	}

	if err := s.finishPass(ctx, directory.KindHospital, pc, len(candidates), len(out), explanations, updates, started); err != nil {
		return nil, err
	}
	return &HospitalRanking{Hospitals: out, Explanations: explanations}, nil
}

// Explain returns why a candidate was ranked the way it was in its most
// recent ranking pass for the given emergency.
func (s *Service) Explain(ctx context.Context, emergencyID string, kind directory.Kind, targetID int64) (*Explanation, error) {
	return s.results.LatestExplanation(ctx, emergencyID, kind, targetID)
}
