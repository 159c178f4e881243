package scoring

import (
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/directory"
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/emergency"
)

// Factor names shared between weight vectors, breakdowns and feedback
// adjustments. Every breakdown for a provider kind contains exactly the
// factors of that kind's weight vector.
const (
	FactorExperience     = "experience"
	FactorBayesian       = "bayesian"
	FactorDistance       = "distance"
	FactorResponse       = "response"
	FactorAvailability   = "availability"
	FactorEmergencyMatch = "emergency_match"
	FactorBudget         = "budget"
	FactorSuccess        = "success"
	FactorEquipment      = "equipment"
	FactorDriver         = "driver"
	FactorCost           = "cost"
	FactorICU            = "icu"
	FactorWait           = "wait"
	FactorSpecialty      = "specialty"
)

// doctorFactors, ambulanceFactors and hospitalFactors fix the canonical
// factor order per kind. The order matters for top-factor tie-breaking,
// which picks the first-encountered factor on equal sub-scores.
var (
	doctorFactors = []string{
		FactorExperience, FactorBayesian, FactorDistance, FactorResponse,
		FactorAvailability, FactorEmergencyMatch, FactorBudget, FactorSuccess,
	}
	ambulanceFactors = []string{
		FactorDistance, FactorResponse, FactorAvailability,
		FactorEquipment, FactorDriver, FactorCost,
	}
	hospitalFactors = []string{
		FactorICU, FactorWait, FactorSuccess,
		FactorDistance, FactorSpecialty, FactorCost,
	}
)

// Weights is a factor-name to weight mapping. Each severity row sums to 1.0.
type Weights map[string]float64

// doctorWeights escalates distance, response and specialty match with
// severity while shrinking the budget weight toward zero: at higher acuity
// speed and capability dominate affordability.
var doctorWeights = map[emergency.Severity]Weights{
	emergency.SeverityLow: {
		FactorExperience: 0.10, FactorBayesian: 0.15, FactorDistance: 0.10,
		FactorResponse: 0.10, FactorAvailability: 0.20, FactorEmergencyMatch: 0.10,
		FactorBudget: 0.20, FactorSuccess: 0.05,
	},
	emergency.SeverityModerate: {
		FactorExperience: 0.12, FactorBayesian: 0.15, FactorDistance: 0.12,
		FactorResponse: 0.12, FactorAvailability: 0.15, FactorEmergencyMatch: 0.15,
		FactorBudget: 0.10, FactorSuccess: 0.09,
	},
	emergency.SeverityHigh: {
		FactorExperience: 0.12, FactorBayesian: 0.18, FactorDistance: 0.18,
		FactorResponse: 0.15, FactorAvailability: 0.10, FactorEmergencyMatch: 0.18,
		FactorBudget: 0.04, FactorSuccess: 0.05,
	},
	emergency.SeverityCritical: {
		FactorExperience: 0.10, FactorBayesian: 0.18, FactorDistance: 0.22,
		FactorResponse: 0.18, FactorAvailability: 0.08, FactorEmergencyMatch: 0.20,
		FactorBudget: 0.01, FactorSuccess: 0.03,
	},
}

var ambulanceWeights = map[emergency.Severity]Weights{
	emergency.SeverityLow: {
		FactorDistance: 0.20, FactorResponse: 0.20, FactorAvailability: 0.20,
		FactorEquipment: 0.10, FactorDriver: 0.15, FactorCost: 0.15,
	},
	emergency.SeverityModerate: {
		FactorDistance: 0.22, FactorResponse: 0.22, FactorAvailability: 0.18,
		FactorEquipment: 0.14, FactorDriver: 0.14, FactorCost: 0.10,
	},
	emergency.SeverityHigh: {
		FactorDistance: 0.25, FactorResponse: 0.25, FactorAvailability: 0.18,
		FactorEquipment: 0.18, FactorDriver: 0.10, FactorCost: 0.04,
	},
	emergency.SeverityCritical: {
		FactorDistance: 0.28, FactorResponse: 0.26, FactorAvailability: 0.16,
		FactorEquipment: 0.22, FactorDriver: 0.06, FactorCost: 0.02,
	},
}

var hospitalWeights = map[emergency.Severity]Weights{
	emergency.SeverityLow: {
		FactorICU: 0.15, FactorWait: 0.20, FactorSuccess: 0.20,
		FactorDistance: 0.20, FactorSpecialty: 0.10, FactorCost: 0.15,
	},
	emergency.SeverityModerate: {
		FactorICU: 0.18, FactorWait: 0.20, FactorSuccess: 0.22,
		FactorDistance: 0.18, FactorSpecialty: 0.12, FactorCost: 0.10,
	},
	emergency.SeverityHigh: {
		FactorICU: 0.25, FactorWait: 0.18, FactorSuccess: 0.22,
		FactorDistance: 0.18, FactorSpecialty: 0.12, FactorCost: 0.05,
	},
	emergency.SeverityCritical: {
		FactorICU: 0.30, FactorWait: 0.15, FactorSuccess: 0.25,
		FactorDistance: 0.18, FactorSpecialty: 0.10, FactorCost: 0.02,
	},
}

// WeightsFor returns the weight vector for a provider kind and severity.
// Unrecognized severities fall back to the LOW row.
func WeightsFor(kind directory.Kind, severity emergency.Severity) Weights {
	var table map[emergency.Severity]Weights
	switch kind {
	case directory.KindAmbulance:
		table = ambulanceWeights
	case directory.KindHospital:
		table = hospitalWeights
	default:
		table = doctorWeights
	}
	if w, ok := table[severity]; ok {
		return w
	}
	return table[emergency.SeverityLow]
}

// FactorOrder returns the canonical factor order for a provider kind.
func FactorOrder(kind directory.Kind) []string {
	switch kind {
	case directory.KindAmbulance:
		return ambulanceFactors
	case directory.KindHospital:
		return hospitalFactors
	default:
		return doctorFactors
	}
}

// AllSeverities lists every severity level, for iteration in validation
// and tests.
func AllSeverities() []emergency.Severity {
	return []emergency.Severity{
		emergency.SeverityLow,
		emergency.SeverityModerate,
		emergency.SeverityHigh,
		emergency.SeverityCritical,
	}
}
