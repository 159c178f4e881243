package scoring

import (
	"fmt"
	"math"

	"github.com/vishwas-droid/ai-healthcare-emergency/internal/directory"
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/emergency"
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/geo"
)

// minBillableKm is the distance floor used when estimating an ambulance
// trip cost, so an unknown distance still produces a plausible fare.
const minBillableKm = 3.0

// hospitalUnavailablePenalty is the multiplicative soft penalty applied to
// a hospital's total when it reports unavailable. Unavailability demotes
// rather than excludes: a closed ED may still be the best option.
const hospitalUnavailablePenalty = 0.85

// Result is the outcome of scoring a single candidate.
type Result struct {
	// Total is the severity-weighted sum of the breakdown, rounded to
	// two decimals. The ranking layer recomputes the authoritative
	// adjusted total from the raw breakdown; this value is the
	// unadjusted reference.
	Total float64 `json:"score_total"`

	// Breakdown holds the raw 0-100 sub-score per factor. Its key set is
	// exactly the factor set of the kind's weight vector.
	Breakdown map[string]float64 `json:"breakdown"`

	// DistanceKm is the haversine distance used for the distance factor,
	// 0 when either location is unknown.
	DistanceKm float64 `json:"distance_km"`
}

// weightedTotal sums breakdown[f] * weights[f] over the factor set.
func weightedTotal(breakdown map[string]float64, weights Weights) float64 {
	var total float64
	for factor, w := range weights {
		total += breakdown[factor] * w
	}
	return total
}

// ScoreDoctor scores one doctor for an emergency context.
func ScoreDoctor(severity emergency.Severity, d *directory.Doctor, patient geo.Point, budget float64, etype emergency.Type) Result {
	weights := WeightsFor(directory.KindDoctor, severity)
	km := geo.DistanceKm(patient, d.Location)

	breakdown := map[string]float64{
		FactorExperience:     ExperienceScore(d.ExperienceYears),
		FactorBayesian:       Clamp(BayesianRating(d.Rating, ratingCount(d)) * 20),
		FactorDistance:       DistanceScore(km, DefaultMaxKm),
		FactorResponse:       ResponseScore(d.ResponseSeconds()),
		FactorAvailability:   AvailabilityScore(d.IsAvailable, d.AvailabilityStatus),
		FactorEmergencyMatch: EmergencyMatchScore(etype, d.Category),
		FactorBudget:         BudgetScore(d.ConsultationFee, budget),
		FactorSuccess:        Clamp(d.SuccessRate),
	}
	roundBreakdown(breakdown)

	return Result{
		Total:      Round2(weightedTotal(breakdown, weights)),
		Breakdown:  breakdown,
		DistanceKm: Round2(km),
	}
}

// ratingCount prefers the dedicated rating_count column, falling back to
// the legacy reviews_count.
func ratingCount(d *directory.Doctor) int {
	if d.RatingCount > 0 {
		return d.RatingCount
	}
	return d.ReviewsCount
}

// ScoreAmbulance scores one ambulance for an emergency context. The cost
// factor estimates the fare as base price plus per-km cost over at least
// minBillableKm.
func ScoreAmbulance(severity emergency.Severity, a *directory.Ambulance, patient geo.Point, budget float64) Result {
	weights := WeightsFor(directory.KindAmbulance, severity)
	km := geo.DistanceKm(patient, a.Location)

	fare := a.BasePrice + a.CostPerKm*math.Max(km, minBillableKm)
	breakdown := map[string]float64{
		FactorDistance:     DistanceScore(km, DefaultMaxKm),
		FactorResponse:     ResponseScore(a.ResponseSeconds()),
		FactorAvailability: AvailabilityScore(a.IsAvailable, a.AvailabilityStatus),
		FactorEquipment:    EquipmentScore(a.HasICU, a.HasVentilator, a.HasOxygen),
		FactorDriver:       Clamp(a.DriverScore),
		FactorCost:         BudgetScore(fare, budget),
	}
	roundBreakdown(breakdown)

	return Result{
		Total:      Round2(weightedTotal(breakdown, weights)),
		Breakdown:  breakdown,
		DistanceKm: Round2(km),
	}
}

// ScoreHospital scores one hospital for an emergency context. An
// unavailable hospital keeps its raw breakdown but its total is softly
// penalized by hospitalUnavailablePenalty.
func ScoreHospital(severity emergency.Severity, h *directory.Hospital, patient geo.Point, budget float64, etype emergency.Type) Result {
	weights := WeightsFor(directory.KindHospital, severity)
	km := geo.DistanceKm(patient, h.Location)

	breakdown := map[string]float64{
		FactorICU:       ICUScore(h.ICUBedsAvailable),
		FactorWait:      WaitScore(h.EmergencyWaitMinutes),
		FactorSuccess:   Clamp(h.SuccessRate),
		FactorDistance:  DistanceScore(km, HospitalMaxKm),
		FactorSpecialty: SpecialtyScore(etype, h.Specializations),
		FactorCost:      CostIndexScore(h.AvgCostIndex),
	}
	roundBreakdown(breakdown)

	total := weightedTotal(breakdown, weights)
	if !h.IsAvailable {
		total *= hospitalUnavailablePenalty
	}

	return Result{
		Total:      Round2(total),
		Breakdown:  breakdown,
		DistanceKm: Round2(km),
	}
}

// AvailabilityPenalty exposes the hospital soft-penalty multiplier so the
// ranking layer can apply it to adjusted totals consistently.
func AvailabilityPenalty(kind directory.Kind, isAvailable bool) float64 {
	if kind == directory.KindHospital && !isAvailable {
		return hospitalUnavailablePenalty
	}
	return 1.0
}

// TopFactor returns the breakdown entry with the highest sub-score,
// breaking ties by the kind's canonical factor order.
func TopFactor(kind directory.Kind, breakdown map[string]float64) (string, float64) {
	var (
		bestName  string
		bestScore = math.Inf(-1)
	)
	for _, factor := range FactorOrder(kind) {
		if score, ok := breakdown[factor]; ok && score > bestScore {
			bestName = factor
			bestScore = score
		}
	}
	return bestName, bestScore
}

// ExplainTopFactor renders the top factor as a human-readable reason for
// the top-ranked candidate.
func ExplainTopFactor(kind directory.Kind, breakdown map[string]float64) string {
	name, score := TopFactor(kind, breakdown)
	return fmt.Sprintf("Top factor was %s with score %g", name, score)
}

func roundBreakdown(breakdown map[string]float64) {
	for k, v := range breakdown {
		breakdown[k] = Round2(v)
	}
}
