package feedback

import (
	"context"
	"testing"

	"github.com/vishwas-droid/ai-healthcare-emergency/internal/emergency"
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/scoring"
)

func boolPtr(b bool) *bool { return &b }

// TestDefaultAdjustments tests the all-1.0 baseline.
func TestDefaultAdjustments(t *testing.T) {
	adj := DefaultAdjustments()
	if len(adj) != 14 {
		t.Fatalf("expected 14 known factors, got %d", len(adj))
	}
	for factor, mult := range adj {
		if mult != BaselineMultiplier {
			t.Errorf("factor %q default = %f, expected 1.0", factor, mult)
		}
	}
}

// TestMergeOverDefaults tests that stale snapshots gain newly introduced
// factors at baseline and keep their stored values.
func TestMergeOverDefaults(t *testing.T) {
	snapshot := Adjustments{
		scoring.FactorResponse: 1.12,
		"legacy_factor":        1.05,
	}
	merged := MergeOverDefaults(snapshot)

	if merged[scoring.FactorResponse] != 1.12 {
		t.Errorf("stored value lost in merge: %f", merged[scoring.FactorResponse])
	}
	if merged[scoring.FactorWait] != BaselineMultiplier {
		t.Errorf("missing factor should default to 1.0, got %f", merged[scoring.FactorWait])
	}
	if merged["legacy_factor"] != 1.05 {
		t.Errorf("unknown snapshot keys should be preserved, got %f", merged["legacy_factor"])
	}
}

// TestApplyOutcomeBranches tests that exactly one branch fires per outcome.
func TestApplyOutcomeBranches(t *testing.T) {
	tests := []struct {
		name    string
		outcome Outcome
		changed map[string]float64
	}{
		{
			name:    "satisfied with survival rewards speed factors",
			outcome: Outcome{SatisfactionScore: 9, Survival: boolPtr(true)},
			changed: map[string]float64{
				scoring.FactorResponse:     1.03,
				scoring.FactorAvailability: 1.03,
				scoring.FactorSuccess:      1.02,
			},
		},
		{
			name:    "dissatisfied boosts complaint factors",
			outcome: Outcome{SatisfactionScore: 2, Survival: boolPtr(true)},
			changed: map[string]float64{
				scoring.FactorBudget:   1.04,
				scoring.FactorDistance: 1.03,
				scoring.FactorWait:     1.03,
			},
		},
		{
			name:    "neutral band drifts specialty matching",
			outcome: Outcome{SatisfactionScore: 6},
			changed: map[string]float64{
				scoring.FactorEmergencyMatch: 1.01,
			},
		},
		{
			name:    "high satisfaction without confirmed survival is neutral",
			outcome: Outcome{SatisfactionScore: 10},
			changed: map[string]float64{
				scoring.FactorEmergencyMatch: 1.01,
			},
		},
		{
			name:    "high satisfaction with survival false is neutral",
			outcome: Outcome{SatisfactionScore: 9, Survival: boolPtr(false)},
			changed: map[string]float64{
				scoring.FactorEmergencyMatch: 1.01,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adj := DefaultAdjustments()
			ApplyOutcome(adj, &tt.outcome)

			for factor, mult := range adj {
				expected, ok := tt.changed[factor]
				if !ok {
					expected = BaselineMultiplier
				}
				if mult != expected {
					t.Errorf("factor %q = %f, expected %f", factor, mult, expected)
				}
			}
		})
	}
}

// TestAdjustmentsBounded tests that no sequence of feedback events pushes
// a multiplier outside [1.0, 1.25].
func TestAdjustmentsBounded(t *testing.T) {
	adj := DefaultAdjustments()
	outcomes := []Outcome{
		{SatisfactionScore: 9, Survival: boolPtr(true)},
		{SatisfactionScore: 1},
		{SatisfactionScore: 5},
	}

	for i := 0; i < 100; i++ {
		for j := range outcomes {
			ApplyOutcome(adj, &outcomes[j])
		}
	}

	for factor, mult := range adj {
		if mult < BaselineMultiplier || mult > MaxMultiplier {
			t.Errorf("factor %q multiplier %f left [1.0, 1.25]", factor, mult)
		}
	}
	if adj[scoring.FactorResponse] != MaxMultiplier {
		t.Errorf("response should saturate at %f, got %f", MaxMultiplier, adj[scoring.FactorResponse])
	}
	if adj[scoring.FactorEmergencyMatch] != MaxNeutralMultiplier {
		t.Errorf("emergency_match should saturate at %f, got %f", MaxNeutralMultiplier, adj[scoring.FactorEmergencyMatch])
	}
}

// TestSnapshotStoreAppendOnly tests that appends never mutate earlier
// snapshots and Latest always reflects the newest one.
func TestSnapshotStoreAppendOnly(t *testing.T) {
	ctx := context.Background()
	store := NewInMemorySnapshotStore()

	first, err := store.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if first[scoring.FactorResponse] != BaselineMultiplier {
		t.Errorf("empty log should yield defaults")
	}

	first[scoring.FactorResponse] = 1.10
	if err := store.Append(ctx, first); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	second, err := store.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if second[scoring.FactorResponse] != 1.10 {
		t.Errorf("Latest did not reflect appended snapshot: %f", second[scoring.FactorResponse])
	}

	// Mutating the returned vector must not change the stored snapshot.
	second[scoring.FactorResponse] = 9.99
	third, err := store.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if third[scoring.FactorResponse] != 1.10 {
		t.Errorf("stored snapshot was mutated through a returned copy: %f", third[scoring.FactorResponse])
	}

	if store.Len() != 1 {
		t.Errorf("expected 1 snapshot, got %d", store.Len())
	}
}

// TestServiceRecordOutcome tests the full loop: outcome persisted, vector
// nudged, snapshot appended, emergency resolved on survival.
func TestServiceRecordOutcome(t *testing.T) {
	ctx := context.Background()
	emergencies := emergency.NewInMemoryRepository()
	outcomes := NewInMemoryOutcomeStore()
	snapshots := NewInMemorySnapshotStore()
	svc := NewService(emergencies, outcomes, snapshots, nil, nil)

	e := &emergency.Emergency{ComplaintText: "chest pain", Severity: emergency.SeverityHigh}
	if err := emergencies.Insert(ctx, e); err != nil {
		t.Fatalf("Insert emergency failed: %v", err)
	}

	adj, err := svc.RecordOutcome(ctx, &Outcome{
		EmergencyID:       e.ID,
		SatisfactionScore: 9,
		Survival:          boolPtr(true),
	})
	if err != nil {
		t.Fatalf("RecordOutcome failed: %v", err)
	}

	if adj[scoring.FactorResponse] != 1.03 {
		t.Errorf("response multiplier = %f, expected 1.03", adj[scoring.FactorResponse])
	}
	if len(outcomes.All()) != 1 {
		t.Errorf("expected 1 stored outcome, got %d", len(outcomes.All()))
	}
	if snapshots.Len() != 1 {
		t.Errorf("expected 1 appended snapshot, got %d", snapshots.Len())
	}

	resolved, err := emergencies.GetByID(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if resolved.Status != emergency.StatusResolved {
		t.Errorf("expected RESOLVED after survival report, got %q", resolved.Status)
	}

	t.Run("unknown emergency is rejected", func(t *testing.T) {
		_, err := svc.RecordOutcome(ctx, &Outcome{EmergencyID: "missing", SatisfactionScore: 5})
		if err != emergency.ErrNotFound {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("successive outcomes accumulate", func(t *testing.T) {
		adj2, err := svc.RecordOutcome(ctx, &Outcome{
			EmergencyID:       e.ID,
			SatisfactionScore: 9,
			Survival:          boolPtr(true),
		})
		if err != nil {
			t.Fatalf("RecordOutcome failed: %v", err)
		}
		if adj2[scoring.FactorResponse] != 1.06 {
			t.Errorf("response multiplier = %f, expected 1.06 after two positive outcomes", adj2[scoring.FactorResponse])
		}
	})
}
