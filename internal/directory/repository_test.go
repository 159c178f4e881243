package directory

import (
	"context"
	"testing"

	"github.com/vishwas-droid/ai-healthcare-emergency/internal/geo"
)

// TestInMemoryDoctorRepository tests insert, city filtering and lookup.
func TestInMemoryDoctorRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryDoctorRepository()

	docs := []Doctor{
		{Name: "Dr. Mehta", Category: "Cardiologist", City: "Mumbai"},
		{Name: "Dr. Rao", Category: "Neurologist", City: "Delhi"},
		{Name: "Dr. Iyer", Category: "Cardiologist", City: "Mumbai"},
	}
	for i := range docs {
		if err := repo.Insert(ctx, &docs[i]); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	t.Run("list all preserves insertion order", func(t *testing.T) {
		all, err := repo.List(ctx, "")
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("expected 3 doctors, got %d", len(all))
		}
		if all[0].Name != "Dr. Mehta" || all[2].Name != "Dr. Iyer" {
			t.Errorf("insertion order not preserved: %v", all)
		}
	})

	t.Run("city filter is exact match", func(t *testing.T) {
		mumbai, err := repo.List(ctx, "Mumbai")
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(mumbai) != 2 {
			t.Errorf("expected 2 Mumbai doctors, got %d", len(mumbai))
		}
		// Lowercase does not match; filter is exact, not fuzzy.
		none, err := repo.List(ctx, "mumbai")
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(none) != 0 {
			t.Errorf("expected exact-match filter to exclude lowercase city, got %d", len(none))
		}
	})

	t.Run("get by id", func(t *testing.T) {
		d, err := repo.GetByID(ctx, docs[1].ID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if d.Name != "Dr. Rao" {
			t.Errorf("expected Dr. Rao, got %s", d.Name)
		}
		if _, err := repo.GetByID(ctx, 999); err != ErrDoctorNotFound {
			t.Errorf("expected ErrDoctorNotFound, got %v", err)
		}
	})
}

// TestInMemoryAmbulanceRepository tests insert and lookup.
func TestInMemoryAmbulanceRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryAmbulanceRepository()

	a := Ambulance{ProviderName: "Lifeline", City: "Mumbai", HasICU: true}
	if err := repo.Insert(ctx, &a); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if a.ID == 0 {
		t.Fatal("expected an ID to be assigned")
	}

	got, err := repo.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !got.HasICU {
		t.Error("expected ICU flag to round-trip")
	}
	if _, err := repo.GetByID(ctx, 42); err != ErrAmbulanceNotFound {
		t.Errorf("expected ErrAmbulanceNotFound, got %v", err)
	}
}

// TestInMemoryHospitalRepository tests that specializations are copied,
// not shared, between the store and callers.
func TestInMemoryHospitalRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryHospitalRepository()

	h := Hospital{
		Name:            "City Care",
		City:            "Delhi",
		Specializations: []string{"Cardiac", "Trauma"},
		Location:        geo.Point{Lat: 28.6139, Lng: 77.2090},
	}
	if err := repo.Insert(ctx, &h); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := repo.GetByID(ctx, h.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	got.Specializations[0] = "mutated"

	again, err := repo.GetByID(ctx, h.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if again.Specializations[0] != "Cardiac" {
		t.Error("stored specializations were mutated through a returned copy")
	}
}

// TestHospitalHasSpecialization tests case-insensitive tag matching.
func TestHospitalHasSpecialization(t *testing.T) {
	h := Hospital{Specializations: []string{"Cardiac", "Neuro"}}

	tests := []struct {
		name     string
		tag      string
		expected bool
	}{
		{name: "exact match", tag: "Cardiac", expected: true},
		{name: "case-insensitive match", tag: "cardiac", expected: true},
		{name: "no match", tag: "Trauma", expected: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.HasSpecialization(tt.tag); got != tt.expected {
				t.Errorf("HasSpecialization(%q) = %v, expected %v", tt.tag, got, tt.expected)
			}
		})
	}
}

// TestDoctorResponseSeconds tests the minutes fallback.
func TestDoctorResponseSeconds(t *testing.T) {
	tests := []struct {
		name     string
		doctor   Doctor
		expected int
	}{
		{
			name:     "seconds column populated",
			doctor:   Doctor{ResponseTimeSeconds: 360, ResponseTimeMinutes: 30},
			expected: 360,
		},
		{
			name:     "falls back to minutes",
			doctor:   Doctor{ResponseTimeMinutes: 30},
			expected: 1800,
		},
		{
			name:     "both unset",
			doctor:   Doctor{},
			expected: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.doctor.ResponseSeconds(); got != tt.expected {
				t.Errorf("ResponseSeconds() = %d, expected %d", got, tt.expected)
			}
		})
	}
}
