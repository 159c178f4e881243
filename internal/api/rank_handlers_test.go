package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vishwas-droid/ai-healthcare-emergency/internal/directory"
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/emergency"
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/feedback"
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/geo"
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/ranking"
)

// rankTestEnv bundles the in-memory stores backing a ranking handler test.
type rankTestEnv struct {
	handlers    *RankHandlers
	emergencies *emergency.InMemoryRepository
	doctors     *directory.InMemoryDoctorRepository
	ambulances  *directory.InMemoryAmbulanceRepository
	hospitals   *directory.InMemoryHospitalRepository
	results     *ranking.InMemoryResultStore
}

func newRankTestEnv() *rankTestEnv {
	emergencies := emergency.NewInMemoryRepository()
	doctors := directory.NewInMemoryDoctorRepository()
	ambulances := directory.NewInMemoryAmbulanceRepository()
	hospitals := directory.NewInMemoryHospitalRepository()
	snapshots := feedback.NewInMemorySnapshotStore()
	results := ranking.NewInMemoryResultStore()
	svc := ranking.NewService(emergencies, doctors, ambulances, hospitals, snapshots, results, nil, nil)
	return &rankTestEnv{
		handlers:    NewRankHandlers(svc),
		emergencies: emergencies,
		doctors:     doctors,
		ambulances:  ambulances,
		hospitals:   hospitals,
		results:     results,
	}
}

func (env *rankTestEnv) seedEmergency(t *testing.T) *emergency.Emergency {
	t.Helper()
	e := &emergency.Emergency{
		ComplaintText: "severe chest pain",
		Severity:      emergency.SeverityCritical,
		Type:          emergency.TypeCardiac,
		Location:      geo.Point{Lat: 28.61, Lng: 77.21},
	}
	if err := env.emergencies.Insert(context.Background(), e); err != nil {
		t.Fatalf("Failed to insert emergency: %v", err)
	}
	return e
}

func (env *rankTestEnv) seedDoctor(t *testing.T, name, city string) *directory.Doctor {
	t.Helper()
	d := &directory.Doctor{
		Name:                name,
		Category:            "Cardiologist",
		City:                city,
		ExperienceYears:     12,
		Rating:              4.6,
		RatingCount:         210,
		ConsultationFee:     900,
		ResponseTimeMinutes: 10,
		IsAvailable:         true,
		SuccessRate:         0.93,
		Location:            geo.Point{Lat: 28.62, Lng: 77.22},
	}
	if err := env.doctors.Insert(context.Background(), d); err != nil {
		t.Fatalf("Failed to insert doctor: %v", err)
	}
	return d
}

func rankRequestBody(t *testing.T, emergencyID string) *bytes.Reader {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"emergency_id": emergencyID,
		"max_results":  5,
	})
	if err != nil {
		t.Fatalf("Failed to marshal request: %v", err)
	}
	return bytes.NewReader(body)
}

func TestRankDoctors_Success(t *testing.T) {
	env := newRankTestEnv()
	e := env.seedEmergency(t)
	env.seedDoctor(t, "Dr. Mehta", "Delhi")
	env.seedDoctor(t, "Dr. Rao", "Mumbai")

	req := httptest.NewRequest("POST", "/api/rank/doctors", rankRequestBody(t, e.ID))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	env.handlers.RankDoctors(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp ranking.DoctorRanking
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(resp.Doctors) != 2 {
		t.Fatalf("Expected 2 ranked doctors, got %d", len(resp.Doctors))
	}
	if len(resp.Explanations) != 2 {
		t.Errorf("Expected 2 explanations, got %d", len(resp.Explanations))
	}
	if resp.Doctors[0].AIScore < resp.Doctors[1].AIScore {
		t.Errorf("Expected descending scores, got %f before %f",
			resp.Doctors[0].AIScore, resp.Doctors[1].AIScore)
	}
}

func TestRankDoctors_EmergencyNotFound(t *testing.T) {
	env := newRankTestEnv()
	env.seedDoctor(t, "Dr. Mehta", "Delhi")

	req := httptest.NewRequest("POST", "/api/rank/doctors", rankRequestBody(t, "missing-id"))
	w := httptest.NewRecorder()

	env.handlers.RankDoctors(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d: %s", w.Code, w.Body.String())
	}
	var errResp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("Failed to unmarshal error: %v", err)
	}
	if errResp.Error.Code != ErrCodeEmergencyNotFound {
		t.Errorf("Expected code %q, got %q", ErrCodeEmergencyNotFound, errResp.Error.Code)
	}
}

func TestRankDoctors_MissingEmergencyID(t *testing.T) {
	env := newRankTestEnv()

	req := httptest.NewRequest("POST", "/api/rank/doctors", bytes.NewReader([]byte(`{"max_results":5}`)))
	w := httptest.NewRecorder()

	env.handlers.RankDoctors(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestRankDoctors_InvalidJSON(t *testing.T) {
	env := newRankTestEnv()

	req := httptest.NewRequest("POST", "/api/rank/doctors", bytes.NewReader([]byte(`{not json`)))
	w := httptest.NewRecorder()

	env.handlers.RankDoctors(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestRankDoctors_MethodNotAllowed(t *testing.T) {
	env := newRankTestEnv()

	req := httptest.NewRequest("GET", "/api/rank/doctors", nil)
	w := httptest.NewRecorder()

	env.handlers.RankDoctors(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", w.Code)
	}
}

func TestRankAmbulances_Success(t *testing.T) {
	env := newRankTestEnv()
	e := env.seedEmergency(t)
	a := &directory.Ambulance{
		ProviderName:        "City EMS",
		City:                "Delhi",
		VehicleType:         "ALS",
		ResponseTimeMinutes: 8,
		CostPerKm:           40,
		Rating:              4.2,
		DriverScore:         0.9,
		HasICU:              true,
		IsAvailable:         true,
		Location:            geo.Point{Lat: 28.63, Lng: 77.20},
	}
	if err := env.ambulances.Insert(context.Background(), a); err != nil {
		t.Fatalf("Failed to insert ambulance: %v", err)
	}

	req := httptest.NewRequest("POST", "/api/rank/ambulances", rankRequestBody(t, e.ID))
	w := httptest.NewRecorder()

	env.handlers.RankAmbulances(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp ranking.AmbulanceRanking
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(resp.Ambulances) != 1 {
		t.Errorf("Expected 1 ranked ambulance, got %d", len(resp.Ambulances))
	}
}

func TestRankHospitals_Success(t *testing.T) {
	env := newRankTestEnv()
	e := env.seedEmergency(t)
	h := &directory.Hospital{
		Name:                 "Metro Heart Institute",
		City:                 "Delhi",
		ICUBedsAvailable:     6,
		EmergencyWaitMinutes: 12,
		SuccessRate:          0.95,
		AvgCostIndex:         0.6,
		IsAvailable:          true,
		Specializations:      []string{"Cardiac"},
		Location:             geo.Point{Lat: 28.60, Lng: 77.23},
	}
	if err := env.hospitals.Insert(context.Background(), h); err != nil {
		t.Fatalf("Failed to insert hospital: %v", err)
	}

	req := httptest.NewRequest("POST", "/api/rank/hospitals", rankRequestBody(t, e.ID))
	w := httptest.NewRecorder()

	env.handlers.RankHospitals(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp ranking.HospitalRanking
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(resp.Hospitals) != 1 {
		t.Errorf("Expected 1 ranked hospital, got %d", len(resp.Hospitals))
	}
}

func TestWhyRanked_Success(t *testing.T) {
	env := newRankTestEnv()
	e := env.seedEmergency(t)
	d := env.seedDoctor(t, "Dr. Mehta", "Delhi")

	// Run a pass so an explanation exists
	req := httptest.NewRequest("POST", "/api/rank/doctors", rankRequestBody(t, e.ID))
	env.handlers.RankDoctors(httptest.NewRecorder(), req)

	path := "/api/why-ranked/" + e.ID + "/doctor/1"
	getReq := httptest.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()

	env.handlers.WhyRanked(w, getReq)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var expl ranking.Explanation
	if err := json.Unmarshal(w.Body.Bytes(), &expl); err != nil {
		t.Fatalf("Failed to unmarshal explanation: %v", err)
	}
	if expl.TargetID != d.ID {
		t.Errorf("Expected target_id %d, got %d", d.ID, expl.TargetID)
	}
	if len(expl.Breakdown) == 0 {
		t.Error("Expected a non-empty factor breakdown")
	}
}

func TestWhyRanked_NotFound(t *testing.T) {
	env := newRankTestEnv()
	e := env.seedEmergency(t)

	req := httptest.NewRequest("GET", "/api/why-ranked/"+e.ID+"/doctor/99", nil)
	w := httptest.NewRecorder()

	env.handlers.WhyRanked(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d: %s", w.Code, w.Body.String())
	}
	var errResp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("Failed to unmarshal error: %v", err)
	}
	if errResp.Error.Code != ErrCodeExplanationNotFound {
		t.Errorf("Expected code %q, got %q", ErrCodeExplanationNotFound, errResp.Error.Code)
	}
}

func TestWhyRanked_InvalidKind(t *testing.T) {
	env := newRankTestEnv()

	req := httptest.NewRequest("GET", "/api/why-ranked/em-1/clinic/1", nil)
	w := httptest.NewRecorder()

	env.handlers.WhyRanked(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", w.Code)
	}
	var errResp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("Failed to unmarshal error: %v", err)
	}
	if errResp.Error.Code != ErrCodeInvalidKind {
		t.Errorf("Expected code %q, got %q", ErrCodeInvalidKind, errResp.Error.Code)
	}
}

func TestWhyRanked_InvalidTargetID(t *testing.T) {
	env := newRankTestEnv()

	req := httptest.NewRequest("GET", "/api/why-ranked/em-1/doctor/not-a-number", nil)
	w := httptest.NewRecorder()

	env.handlers.WhyRanked(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestWhyRanked_MalformedPath(t *testing.T) {
	env := newRankTestEnv()

	req := httptest.NewRequest("GET", "/api/why-ranked/em-1", nil)
	w := httptest.NewRecorder()

	env.handlers.WhyRanked(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}
