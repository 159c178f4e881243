// Package emergency provides models and repository for emergency cases
// created by patient triage.
package emergency

import (
	"strings"
	"time"

	"github.com/vishwas-droid/ai-healthcare-emergency/internal/geo"
)

// Severity classifies how urgent an emergency is. It selects the weight
// vector used when ranking providers.
type Severity string

// Severity levels in escalating order.
const (
	SeverityLow      Severity = "LOW"
	SeverityModerate Severity = "MODERATE"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// ParseSeverity normalizes a severity string. Unknown or empty values fall
// back to LOW rather than erroring; ranking must never fail on bad input.
func ParseSeverity(s string) Severity {
	switch Severity(strings.ToUpper(strings.TrimSpace(s))) {
	case SeverityModerate:
		return SeverityModerate
	case SeverityHigh:
		return SeverityHigh
	case SeverityCritical:
		return SeverityCritical
	case SeverityLow:
		return SeverityLow
	default:
		return SeverityLow
	}
}

// Type is the emergency taxonomy used for specialty matching.
type Type string

// Emergency type taxonomy.
const (
	TypeCardiac     Type = "Cardiac"
	TypeNeuro       Type = "Neuro"
	TypeTrauma      Type = "Trauma"
	TypeRespiratory Type = "Respiratory"
	TypeToxicology  Type = "Toxicology"
	TypeObGyn       Type = "ObGyn"
	TypePsych       Type = "Psych"
	TypeOther       Type = "Other"
)

// ParseType normalizes an emergency type string, falling back to Other.
func ParseType(s string) Type {
	for _, t := range []Type{
		TypeCardiac, TypeNeuro, TypeTrauma, TypeRespiratory,
		TypeToxicology, TypeObGyn, TypePsych, TypeOther,
	} {
		if strings.EqualFold(strings.TrimSpace(s), string(t)) {
			return t
		}
	}
	return TypeOther
}

// Status values for an emergency case.
const (
	StatusOpen     = "OPEN"
	StatusResolved = "RESOLVED"
)

// Emergency is a triaged patient case awaiting or undergoing dispatch.
type Emergency struct {
	ID            string    `json:"id"`
	PatientUserID *string   `json:"patient_user_id,omitempty"`
	ComplaintText string    `json:"complaint_text"`
	Severity      Severity  `json:"severity"`
	SeverityScore int       `json:"severity_score"`
	Type          Type      `json:"emergency_type"`
	Status        string    `json:"status"`
	Location      geo.Point `json:"location"`
	CreatedAt     time.Time `json:"created_at"`
}
