// Package directory provides models and repositories for the care provider
// directory: doctors, ambulances and hospitals.
package directory

import (
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/geo"
)

// Kind identifies a provider type in ranking and explanation records.
type Kind string

// Provider kinds.
const (
	KindDoctor    Kind = "doctor"
	KindAmbulance Kind = "ambulance"
	KindHospital  Kind = "hospital"
)

// ParseKind parses a provider kind string. The second return value is
// false for unknown kinds.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindDoctor, KindAmbulance, KindHospital:
		return Kind(s), true
	default:
		return "", false
	}
}

// Doctor is a consulting physician available for emergency matching.
type Doctor struct {
	ID                  int64     `json:"id"`
	Name                string    `json:"name"`
	Category            string    `json:"category"`
	City                string    `json:"city"`
	ExperienceYears     int       `json:"experience_years"`
	Rating              float64   `json:"rating"`
	RatingCount         int       `json:"rating_count"`
	ReviewsCount        int       `json:"reviews_count"`
	ConsultationFee     float64   `json:"consultation_fee"`
	TotalPatientsServed int       `json:"total_patients_served"`
	ResponseTimeMinutes int       `json:"response_time_minutes"`
	ResponseTimeSeconds int       `json:"response_time_seconds"`
	VerifiedStatus      bool      `json:"verified_status"`
	AvailabilityStatus  string    `json:"availability_status"`
	IsAvailable         bool      `json:"is_available"`
	SuccessRate         float64   `json:"success_rate"`
	Location            geo.Point `json:"location"`

	// AIScore is a denormalized cache of the last computed total,
	// refreshed on every listing or ranking pass. The scorer never
	// reads it back.
	AIScore float64 `json:"ai_score"`
}

// ResponseSeconds returns the doctor's response time in seconds, falling
// back to the minutes column when the seconds column was never populated.
func (d *Doctor) ResponseSeconds() int {
	if d.ResponseTimeSeconds > 0 {
		return d.ResponseTimeSeconds
	}
	return d.ResponseTimeMinutes * 60
}

// Ambulance is an emergency transport unit.
type Ambulance struct {
	ID                  int64     `json:"id"`
	ProviderName        string    `json:"provider_name"`
	City                string    `json:"city"`
	VehicleType         string    `json:"vehicle_type"`
	ResponseTimeMinutes int       `json:"response_time_minutes"`
	ResponseTimeSeconds int       `json:"response_time_seconds"`
	CostPerKm           float64   `json:"cost_per_km"`
	BasePrice           float64   `json:"base_price"`
	AvailabilityStatus  string    `json:"availability_status"`
	Rating              float64   `json:"rating"`
	VerifiedStatus      bool      `json:"verified_status"`
	DriverScore         float64   `json:"driver_score"`
	HasICU              bool      `json:"has_icu"`
	HasOxygen           bool      `json:"has_oxygen"`
	HasVentilator       bool      `json:"has_ventilator"`
	IsAvailable         bool      `json:"is_available"`
	Location            geo.Point `json:"location"`

	// AIScore is a denormalized cache, see Doctor.AIScore.
	AIScore float64 `json:"ai_score"`
}

// ResponseSeconds returns the ambulance's response time in seconds, falling
// back to the minutes column when the seconds column was never populated.
func (a *Ambulance) ResponseSeconds() int {
	if a.ResponseTimeSeconds > 0 {
		return a.ResponseTimeSeconds
	}
	return a.ResponseTimeMinutes * 60
}

// Hospital is an emergency care facility.
type Hospital struct {
	ID                   int64     `json:"id"`
	Name                 string    `json:"name"`
	City                 string    `json:"city"`
	ICUBedsAvailable     int       `json:"icu_beds_available"`
	EmergencyWaitMinutes int       `json:"emergency_wait_minutes"`
	SuccessRate          float64   `json:"success_rate"`
	AvgCostIndex         float64   `json:"avg_cost_index"`
	IsAvailable          bool      `json:"is_available"`
	Specializations      []string  `json:"specializations"`
	Location             geo.Point `json:"location"`

	// AIScore is a denormalized cache, see Doctor.AIScore.
	AIScore float64 `json:"ai_score"`
}
