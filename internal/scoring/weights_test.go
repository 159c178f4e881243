package scoring

import (
	"math"
	"testing"

	"github.com/vishwas-droid/ai-healthcare-emergency/internal/directory"
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/emergency"
)

// TestWeightVectorsSumToOne tests that every kind/severity weight vector
// sums to 1.0 within tolerance.
func TestWeightVectorsSumToOne(t *testing.T) {
	kinds := []directory.Kind{directory.KindDoctor, directory.KindAmbulance, directory.KindHospital}

	for _, kind := range kinds {
		for _, sev := range AllSeverities() {
			t.Run(string(kind)+"/"+string(sev), func(t *testing.T) {
				var sum float64
				for _, w := range WeightsFor(kind, sev) {
					sum += w
				}
				if math.Abs(sum-1.0) > 1e-6 {
					t.Errorf("weights for %s/%s sum to %f, expected 1.0", kind, sev, sum)
				}
			})
		}
	}
}

// TestWeightVectorFactorSets tests that each weight vector's key set is
// exactly the kind's canonical factor order.
func TestWeightVectorFactorSets(t *testing.T) {
	kinds := []directory.Kind{directory.KindDoctor, directory.KindAmbulance, directory.KindHospital}

	for _, kind := range kinds {
		order := FactorOrder(kind)
		for _, sev := range AllSeverities() {
			t.Run(string(kind)+"/"+string(sev), func(t *testing.T) {
				weights := WeightsFor(kind, sev)
				if len(weights) != len(order) {
					t.Fatalf("weight vector has %d factors, canonical order has %d", len(weights), len(order))
				}
				for _, factor := range order {
					if _, ok := weights[factor]; !ok {
						t.Errorf("weight vector missing factor %q", factor)
					}
				}
			})
		}
	}
}

// TestWeightsForUnknownSeverity tests the LOW fallback.
func TestWeightsForUnknownSeverity(t *testing.T) {
	low := WeightsFor(directory.KindDoctor, emergency.SeverityLow)
	unknown := WeightsFor(directory.KindDoctor, emergency.Severity("PANIC"))

	for factor, w := range low {
		if unknown[factor] != w {
			t.Errorf("unknown severity weight for %q = %f, expected LOW's %f", factor, unknown[factor], w)
		}
	}
}

// TestSeverityEscalationShiftsWeights tests the design intent: as severity
// escalates, cost-related weight shrinks and speed/capability weight grows.
func TestSeverityEscalationShiftsWeights(t *testing.T) {
	t.Run("doctor budget shrinks", func(t *testing.T) {
		low := WeightsFor(directory.KindDoctor, emergency.SeverityLow)[FactorBudget]
		crit := WeightsFor(directory.KindDoctor, emergency.SeverityCritical)[FactorBudget]
		if crit >= low {
			t.Errorf("critical budget weight %f not below low %f", crit, low)
		}
	})

	t.Run("ambulance equipment grows", func(t *testing.T) {
		low := WeightsFor(directory.KindAmbulance, emergency.SeverityLow)[FactorEquipment]
		crit := WeightsFor(directory.KindAmbulance, emergency.SeverityCritical)[FactorEquipment]
		if crit <= low {
			t.Errorf("critical equipment weight %f not above low %f", crit, low)
		}
	})

	t.Run("hospital icu grows and cost shrinks", func(t *testing.T) {
		lowICU := WeightsFor(directory.KindHospital, emergency.SeverityLow)[FactorICU]
		critICU := WeightsFor(directory.KindHospital, emergency.SeverityCritical)[FactorICU]
		lowCost := WeightsFor(directory.KindHospital, emergency.SeverityLow)[FactorCost]
		critCost := WeightsFor(directory.KindHospital, emergency.SeverityCritical)[FactorCost]
		if critICU <= lowICU {
			t.Errorf("critical icu weight %f not above low %f", critICU, lowICU)
		}
		if critCost >= lowCost {
			t.Errorf("critical cost weight %f not below low %f", critCost, lowCost)
		}
	})
}
