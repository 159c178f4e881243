// Package listing implements the browse/search scorer used outside the
// severity-ranking path. It is a fixed-coefficient linear combination of
// pool-normalized attributes plus flat contextual boosts, independent of
// the severity weight tables and the feedback adjustment store.
package listing

import (
	"sort"
	"strings"

	"github.com/vishwas-droid/ai-healthcare-emergency/internal/directory"
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/scoring"
)

// Contextual boost points, added to the 0-100 base score and clamped.
const (
	DoctorCityBoost      = 7.0
	DoctorCategoryBoost  = 5.0
	DoctorBudgetBoost    = 5.0
	AmbulanceCityBoost   = 8.0
	AmbulanceBudgetBoost = 5.0
	UrgencyBoostHigh     = 4.0
	UrgencyBoostLow      = 2.0
)

// problemCategories maps complaint keywords to the doctor categories they
// indicate. Matching is substring on the problem, exact on the category.
var problemCategories = map[string][]string{
	"heart":      {"Cardiologist"},
	"chest pain": {"Cardiologist", "General Physician"},
	"brain":      {"Neurologist"},
	"stroke":     {"Neurologist"},
	"child":      {"Pediatrician"},
	"fever":      {"General Physician"},
	"injury":     {"Orthopedic"},
}

// urgentVehicleTypes are ambulance classes that earn the urgency boost.
var urgentVehicleTypes = map[string]struct{}{
	"ICU":        {},
	"ALS":        {},
	"Ventilator": {},
}

// listingAvailableStatuses earn the ambulance availability coefficient.
var listingAvailableStatuses = map[string]struct{}{
	"AVAILABLE": {},
	"ON_CALL":   {},
}

type bounds struct {
	min, max float64
}

// poolBounds computes the min/max of one attribute across the pool. An
// empty pool yields [0,1] so normalization stays defined.
func poolBounds(n int, at func(i int) float64) bounds {
	if n == 0 {
		return bounds{0, 1}
	}
	b := bounds{at(0), at(0)}
	for i := 1; i < n; i++ {
		v := at(i)
		if v < b.min {
			b.min = v
		}
		if v > b.max {
			b.max = v
		}
	}
	return b
}

func norm(v float64, b bounds, invert bool) float64 {
	return scoring.MinMaxNormalize(v, b.min, b.max, invert)
}

func boolCoef(v bool) float64 {
	if v {
		return 1.0
	}
	return 0.0
}

// ScoreDoctors computes the base listing score for every doctor in the
// pool and returns the pool sorted by score descending. Scores are
// relative to this pool: normalization bounds come from the pool itself.
// Input order breaks ties.
func ScoreDoctors(doctors []directory.Doctor) []directory.Doctor {
	n := len(doctors)
	rating := poolBounds(n, func(i int) float64 { return doctors[i].Rating })
	exp := poolBounds(n, func(i int) float64 { return float64(doctors[i].ExperienceYears) })
	resp := poolBounds(n, func(i int) float64 { return float64(doctors[i].ResponseTimeMinutes) })
	fee := poolBounds(n, func(i int) float64 { return doctors[i].ConsultationFee })
	reviews := poolBounds(n, func(i int) float64 { return float64(doctors[i].ReviewsCount) })
	patients := poolBounds(n, func(i int) float64 { return float64(doctors[i].TotalPatientsServed) })

	out := make([]directory.Doctor, n)
	copy(out, doctors)
	for i := range out {
		d := &out[i]
		score := (0.30*norm(d.Rating, rating, false) +
			0.20*norm(float64(d.ExperienceYears), exp, false) +
			0.15*norm(float64(d.ResponseTimeMinutes), resp, true) +
			0.15*norm(d.ConsultationFee, fee, true) +
			0.10*norm(float64(d.ReviewsCount), reviews, false) +
			0.05*norm(float64(d.TotalPatientsServed), patients, false) +
			0.05*boolCoef(d.VerifiedStatus)) * 100
		d.AIScore = scoring.Round2(score)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].AIScore > out[j].AIScore })
	return out
}

// ScoreAmbulances computes the base listing score for every ambulance in
// the pool, sorted by score descending.
func ScoreAmbulances(ambulances []directory.Ambulance) []directory.Ambulance {
	n := len(ambulances)
	resp := poolBounds(n, func(i int) float64 { return float64(ambulances[i].ResponseTimeMinutes) })
	rating := poolBounds(n, func(i int) float64 { return ambulances[i].Rating })
	perKm := poolBounds(n, func(i int) float64 { return ambulances[i].CostPerKm })
	base := poolBounds(n, func(i int) float64 { return ambulances[i].BasePrice })

	out := make([]directory.Ambulance, n)
	copy(out, ambulances)
	for i := range out {
		a := &out[i]
		affordability := 0.6*norm(a.CostPerKm, perKm, true) + 0.4*norm(a.BasePrice, base, true)
		_, available := listingAvailableStatuses[a.AvailabilityStatus]
		score := (0.35*norm(float64(a.ResponseTimeMinutes), resp, true) +
			0.25*norm(a.Rating, rating, false) +
			0.20*affordability +
			0.10*boolCoef(available) +
			0.10*boolCoef(a.VerifiedStatus)) * 100
		a.AIScore = scoring.Round2(score)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].AIScore > out[j].AIScore })
	return out
}

// CategoryMatches reports whether the doctor category matches a keyword
// found in the free-text problem description.
func CategoryMatches(problem, category string) bool {
	p := strings.ToLower(strings.TrimSpace(problem))
	cat := strings.ToLower(strings.TrimSpace(category))
	for keyword, categories := range problemCategories {
		if !strings.Contains(p, keyword) {
			continue
		}
		for _, c := range categories {
			if cat == strings.ToLower(c) {
				return true
			}
		}
	}
	return false
}

// ScoreDoctorsContextual layers flat contextual boosts over the base
// listing score: same city, problem-keyword category match and budget
// fit. Boosts are additive points, clamped to 100, never re-normalized.
func ScoreDoctorsContextual(doctors []directory.Doctor, city, problem string, budget float64) []directory.Doctor {
	ranked := ScoreDoctors(doctors)
	cityLower := strings.ToLower(strings.TrimSpace(city))
	for i := range ranked {
		d := &ranked[i]
		var boost float64
		if strings.ToLower(strings.TrimSpace(d.City)) == cityLower {
			boost += DoctorCityBoost
		}
		if CategoryMatches(problem, d.Category) {
			boost += DoctorCategoryBoost
		}
		if d.ConsultationFee <= budget {
			boost += DoctorBudgetBoost
		}
		d.AIScore = scoring.Round2(scoring.Clamp(d.AIScore + boost))
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].AIScore > ranked[j].AIScore })
	return ranked
}

// ScoreAmbulancesContextual layers contextual boosts over the base
// ambulance listing score: same city, budget fit and an urgency bonus for
// ICU-class vehicles.
func ScoreAmbulancesContextual(ambulances []directory.Ambulance, city string, budget float64, urgency string) []directory.Ambulance {
	ranked := ScoreAmbulances(ambulances)
	cityLower := strings.ToLower(strings.TrimSpace(city))

	urgencyBoost := UrgencyBoostLow
	switch strings.ToLower(urgency) {
	case "critical", "high":
		urgencyBoost = UrgencyBoostHigh
	}

	for i := range ranked {
		a := &ranked[i]
		var boost float64
		if strings.ToLower(strings.TrimSpace(a.City)) == cityLower {
			boost += AmbulanceCityBoost
		}
		if a.BasePrice <= budget {
			boost += AmbulanceBudgetBoost
		}
		if _, ok := urgentVehicleTypes[a.VehicleType]; ok {
			boost += urgencyBoost
		}
		a.AIScore = scoring.Round2(scoring.Clamp(a.AIScore + boost))
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].AIScore > ranked[j].AIScore })
	return ranked
}
