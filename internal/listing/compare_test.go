package listing

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/vishwas-droid/ai-healthcare-emergency/internal/directory"
)

func newCompareFixture(t *testing.T) (*Service, *directory.InMemoryDoctorRepository, *directory.InMemoryAmbulanceRepository, *directory.InMemoryHospitalRepository) {
	t.Helper()
	doctors := directory.NewInMemoryDoctorRepository()
	ambulances := directory.NewInMemoryAmbulanceRepository()
	hospitals := directory.NewInMemoryHospitalRepository()
	svc := NewService(doctors, ambulances, hospitals, nil, nil)
	return svc, doctors, ambulances, hospitals
}

func TestCompareDoctorsPicksWinner(t *testing.T) {
	svc, doctors, _, _ := newCompareFixture(t)
	for _, d := range doctorPool() {
		d.ID = 0
		if err := doctors.Insert(context.Background(), &d); err != nil {
			t.Fatalf("seed doctor: %v", err)
		}
	}

	result, err := svc.Compare(context.Background(), &CompareQuery{
		Kind: directory.KindDoctor,
		IDs:  []int64{1, 2, 3},
	})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if result.WinnerID != 1 {
		t.Errorf("winner = %d, want 1", result.WinnerID)
	}
	if result.WinnerName != "Best" {
		t.Errorf("winner name = %q, want Best", result.WinnerName)
	}
	if result.Score != 100 {
		t.Errorf("winner score = %g, want 100", result.Score)
	}
	if !strings.Contains(result.Reason, "Best") || !strings.Contains(result.Reason, "Delhi") {
		t.Errorf("reason %q should name the winner and their city", result.Reason)
	}
}

func TestCompareRestrictsToRequestedIDs(t *testing.T) {
	svc, doctors, _, _ := newCompareFixture(t)
	for _, d := range doctorPool() {
		d.ID = 0
		if err := doctors.Insert(context.Background(), &d); err != nil {
			t.Fatalf("seed doctor: %v", err)
		}
	}

	// Doctor 1 dominates the pool but is excluded from the comparison.
	result, err := svc.Compare(context.Background(), &CompareQuery{
		Kind: directory.KindDoctor,
		IDs:  []int64{2, 3},
	})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if result.WinnerID != 2 {
		t.Errorf("winner = %d, want 2", result.WinnerID)
	}
}

func TestCompareDoctorsContextualBoost(t *testing.T) {
	svc, doctors, _, _ := newCompareFixture(t)
	// Identical profiles apart from city: the contextual city boost must
	// decide the comparison.
	for _, d := range []directory.Doctor{
		{Name: "Dr. Delhi", Category: "Cardiologist", City: "Delhi",
			Rating: 4.5, ExperienceYears: 10, ResponseTimeMinutes: 10,
			ConsultationFee: 800, ReviewsCount: 100, TotalPatientsServed: 500},
		{Name: "Dr. Mumbai", Category: "Cardiologist", City: "Mumbai",
			Rating: 4.5, ExperienceYears: 10, ResponseTimeMinutes: 10,
			ConsultationFee: 800, ReviewsCount: 100, TotalPatientsServed: 500},
	} {
		doc := d
		if err := doctors.Insert(context.Background(), &doc); err != nil {
			t.Fatalf("seed doctor: %v", err)
		}
	}

	result, err := svc.Compare(context.Background(), &CompareQuery{
		Kind:     directory.KindDoctor,
		IDs:      []int64{1, 2},
		City:     "Mumbai",
		Category: "heart",
		Budget:   1000,
	})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if result.WinnerName != "Dr. Mumbai" {
		t.Errorf("winner = %q, want Dr. Mumbai", result.WinnerName)
	}
}

func TestCompareAmbulancesPicksWinner(t *testing.T) {
	svc, _, ambulances, _ := newCompareFixture(t)
	for _, a := range ambulancePool() {
		a.ID = 0
		if err := ambulances.Insert(context.Background(), &a); err != nil {
			t.Fatalf("seed ambulance: %v", err)
		}
	}

	result, err := svc.Compare(context.Background(), &CompareQuery{
		Kind:   directory.KindAmbulance,
		IDs:    []int64{1, 2},
		City:   "Delhi",
		Budget: 500,
	})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if result.WinnerName != "Rapid" {
		t.Errorf("winner = %q, want Rapid", result.WinnerName)
	}
	if !strings.Contains(result.Reason, "within your budget") {
		t.Errorf("reason %q should mention the budget", result.Reason)
	}
}

func TestCompareUnknownIDs(t *testing.T) {
	svc, doctors, _, _ := newCompareFixture(t)
	d := directory.Doctor{Name: "Only", City: "Delhi", Rating: 4.0}
	if err := doctors.Insert(context.Background(), &d); err != nil {
		t.Fatalf("seed doctor: %v", err)
	}

	_, err := svc.Compare(context.Background(), &CompareQuery{
		Kind: directory.KindDoctor,
		IDs:  []int64{99, 100},
	})
	if !errors.Is(err, ErrNoCandidates) {
		t.Errorf("expected ErrNoCandidates, got %v", err)
	}
}

func TestListHospitalsFilters(t *testing.T) {
	svc, _, _, hospitals := newCompareFixture(t)
	for _, h := range []directory.Hospital{
		{Name: "Metro ICU", City: "Delhi", ICUBedsAvailable: 12},
		{Name: "Metro General", City: "Delhi", ICUBedsAvailable: 2},
		{Name: "Coastal Care", City: "Mumbai", ICUBedsAvailable: 8},
	} {
		hosp := h
		if err := hospitals.Insert(context.Background(), &hosp); err != nil {
			t.Fatalf("seed hospital: %v", err)
		}
	}

	got, err := svc.ListHospitals(context.Background(), &HospitalQuery{City: "Delhi", MinICU: 5})
	if err != nil {
		t.Fatalf("ListHospitals: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Metro ICU" {
		t.Fatalf("expected only Metro ICU, got %+v", got)
	}

	all, err := svc.ListHospitals(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListHospitals: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 hospitals, got %d", len(all))
	}
}
