// Package scoring provides the severity-weighted multi-criteria scoring
// engine used to rank doctors, ambulances and hospitals for an emergency.
//
// Every factor scorer maps one raw provider attribute to a 0-100 sub-score.
// Scorers are pure functions; the engine combines them with a per-severity
// weight vector and the ranking layer applies feedback adjustments on top.
package scoring

import (
	"math"
	"strings"

	"github.com/vishwas-droid/ai-healthcare-emergency/internal/emergency"
)

// Scoring constants.
const (
	// NeutralScore is returned when an attribute is unknown (e.g. the
	// distance sentinel). It deliberately sits above the floor but below
	// a good score so unknown never beats known-good.
	NeutralScore = 60.0

	// DefaultMaxKm caps the distance normalization for doctors and
	// ambulances; HospitalMaxKm allows a wider catchment.
	DefaultMaxKm  = 30.0
	HospitalMaxKm = 40.0

	// ResponseTargetSeconds is the response time that earns a full score.
	ResponseTargetSeconds = 180

	// ExperienceCapYears is where additional experience stops counting.
	ExperienceCapYears = 20

	// BayesianPriorRating and BayesianPriorWeight shrink sparse ratings
	// toward the marketplace-wide prior.
	BayesianPriorRating = 4.2
	BayesianPriorWeight = 50
)

// softAvailableStatuses are status strings that still earn partial
// availability credit when the boolean flag says unavailable.
var softAvailableStatuses = map[string]bool{
	"online":    true,
	"available": true,
	"on_call":   true,
	"24x7":      true,
}

// emergencySpecialties maps an emergency type to the doctor specialties
// considered a direct match.
var emergencySpecialties = map[emergency.Type][]string{
	emergency.TypeCardiac:     {"Cardiologist"},
	emergency.TypeNeuro:       {"Neurologist"},
	emergency.TypeTrauma:      {"Orthopedic", "General Physician"},
	emergency.TypeRespiratory: {"Pulmonologist", "General Physician"},
	emergency.TypeToxicology:  {"General Physician"},
	emergency.TypeObGyn:       {"Gynecologist"},
	emergency.TypePsych:       {"Psychiatrist"},
	emergency.TypeOther:       {"General Physician"},
}

// Clamp limits v to the [0, 100] sub-score range.
func Clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

// Round2 rounds to two decimal places, the precision persisted for scores.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// MinMaxNormalize linearly scales value into [0,1] over [min, max].
// A degenerate range (min == max) returns 1.0 for every member: with no
// discrimination possible the attribute is treated as maximal, never as
// a divide-by-zero.
// invert flips the scale for lower-is-better attributes such as fees.
func MinMaxNormalize(value, min, max float64, invert bool) float64 {
	if max == min {
		return 1.0
	}
	raw := (value - min) / (max - min)
	if invert {
		return 1 - raw
	}
	return raw
}

// DistanceScore maps a distance in kilometers to a sub-score.
// km <= 0 means "distance unknown" (the geo sentinel) and earns the
// neutral score, even for a genuinely co-located patient.
func DistanceScore(km, maxKm float64) float64 {
	if km <= 0 {
		return NeutralScore
	}
	return Clamp(100 * (1 - math.Min(km, maxKm)/maxKm))
}

// ResponseScore maps a response time in seconds to a sub-score against the
// 180s target. Zero or negative means "unknown" and earns the neutral
// score; times under 30s are floored to keep the score bounded.
func ResponseScore(seconds int) float64 {
	if seconds <= 0 {
		return NeutralScore
	}
	return Clamp(100 * float64(ResponseTargetSeconds) / math.Max(float64(seconds), 30))
}

// AvailabilityScore scores the availability signal. A provider flagged
// unavailable still earns partial credit when its status string suggests it
// could be reached (online, available, on_call, 24x7).
func AvailabilityScore(isAvailable bool, status string) float64 {
	if isAvailable {
		return 100
	}
	if softAvailableStatuses[strings.ToLower(strings.TrimSpace(status))] {
		return 80
	}
	return 20
}

// BudgetScore scores cost against the patient's budget. budget <= 0 means
// no constraint was given and scores a flat 50. The score is non-increasing
// in cost for a fixed positive budget.
func BudgetScore(cost, budget float64) float64 {
	if budget <= 0 {
		return 50
	}
	ratio := budget / math.Max(cost, 1)
	return Clamp(100 * math.Min(1, ratio))
}

// ExperienceScore scores years of experience, capped at ExperienceCapYears.
func ExperienceScore(years int) float64 {
	capped := math.Min(float64(years), ExperienceCapYears)
	return Clamp(100 * capped / ExperienceCapYears)
}

// BayesianRating shrinks an average rating toward the marketplace prior in
// proportion to how few ratings back it. Returns a value on the rating's
// own 0-5 scale; doctor scoring rescales by 20 to reach 0-100.
func BayesianRating(avg float64, count int) float64 {
	n := float64(count)
	m := float64(BayesianPriorWeight)
	return n/(n+m)*avg + m/(n+m)*BayesianPriorRating
}

// EmergencyMatchScore scores how well a doctor's category matches the
// specialties desired for the emergency type. Matching is case-insensitive
// and exact; unknown emergency types fall back to the General Physician set.
func EmergencyMatchScore(etype emergency.Type, category string) float64 {
	desired, ok := emergencySpecialties[etype]
	if !ok {
		desired = emergencySpecialties[emergency.TypeOther]
	}
	cat := strings.TrimSpace(category)
	for _, d := range desired {
		if strings.EqualFold(cat, d) {
			return 95
		}
	}
	return 55
}

// EquipmentScore scores ambulance equipment: base 50, +20 ICU,
// +20 ventilator, +10 oxygen.
func EquipmentScore(hasICU, hasVentilator, hasOxygen bool) float64 {
	score := 50.0
	if hasICU {
		score += 20
	}
	if hasVentilator {
		score += 20
	}
	if hasOxygen {
		score += 10
	}
	return Clamp(score)
}

// ICUScore scores hospital ICU capacity, 4 points per available bed.
func ICUScore(bedsAvailable int) float64 {
	return Clamp(float64(bedsAvailable) * 4)
}

// WaitScore scores emergency department wait time, losing 2 points per minute.
func WaitScore(waitMinutes int) float64 {
	return Clamp(100 - float64(waitMinutes)*2)
}

// CostIndexScore scores the hospital cost index (1.0 = market average).
// The index is floored at 0.6 so unusually cheap facilities cannot exceed
// the scale.
func CostIndexScore(avgCostIndex float64) float64 {
	return Clamp(100 / math.Max(avgCostIndex, 0.6))
}

// SpecialtyScore scores whether the hospital lists the emergency type among
// its specialization tags (case-insensitive).
func SpecialtyScore(etype emergency.Type, tags []string) float64 {
	for _, tag := range tags {
		if strings.EqualFold(tag, string(etype)) {
			return 95
		}
	}
	return 60
}
