package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vishwas-droid/ai-healthcare-emergency/internal/emergency"
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/feedback"
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/scoring"
)

func newFeedbackTestHandlers(t *testing.T) (*FeedbackHandlers, *emergency.InMemoryRepository) {
	t.Helper()
	emergencies := emergency.NewInMemoryRepository()
	outcomes := feedback.NewInMemoryOutcomeStore()
	snapshots := feedback.NewInMemorySnapshotStore()
	svc := feedback.NewService(emergencies, outcomes, snapshots, nil, nil)
	return NewFeedbackHandlers(svc), emergencies
}

func seedFeedbackEmergency(t *testing.T, emergencies *emergency.InMemoryRepository) *emergency.Emergency {
	t.Helper()
	e := &emergency.Emergency{
		ComplaintText: "severe bleeding after accident",
		Severity:      emergency.SeverityHigh,
		Type:          emergency.TypeTrauma,
	}
	if err := emergencies.Insert(context.Background(), e); err != nil {
		t.Fatalf("Failed to insert emergency: %v", err)
	}
	return e
}

func TestSubmitFeedback_Success(t *testing.T) {
	handlers, emergencies := newFeedbackTestHandlers(t)
	e := seedFeedbackEmergency(t, emergencies)

	survived := true
	body, _ := json.Marshal(map[string]any{
		"emergency_id":          e.ID,
		"outcome":               "treated",
		"response_time_seconds": 420,
		"satisfaction_score":    9,
		"survival":              survived,
	})
	req := httptest.NewRequest("POST", "/api/feedback", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handlers.SubmitFeedback(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp feedbackResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	// Satisfied + survived rewards speed factors above baseline
	if resp.Adjustments[scoring.FactorResponse] <= feedback.BaselineMultiplier {
		t.Errorf("Expected response factor above baseline, got %f",
			resp.Adjustments[scoring.FactorResponse])
	}

	// A reported survival resolves the case
	stored, err := emergencies.GetByID(context.Background(), e.ID)
	if err != nil {
		t.Fatalf("Failed to load emergency: %v", err)
	}
	if stored.Status != emergency.StatusResolved {
		t.Errorf("Expected status RESOLVED, got %s", stored.Status)
	}
}

func TestSubmitFeedback_EmergencyNotFound(t *testing.T) {
	handlers, _ := newFeedbackTestHandlers(t)

	body, _ := json.Marshal(map[string]any{
		"emergency_id":       "missing-id",
		"satisfaction_score": 5,
	})
	req := httptest.NewRequest("POST", "/api/feedback", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handlers.SubmitFeedback(w, req)

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

func TestSubmitFeedback_InvalidSatisfaction(t *testing.T) {
	handlers, emergencies := newFeedbackTestHandlers(t)
	e := seedFeedbackEmergency(t, emergencies)

	for _, score := range []int{0, 11, -3} {
		body, _ := json.Marshal(map[string]any{
			"emergency_id":       e.ID,
			"satisfaction_score": score,
		})
		req := httptest.NewRequest("POST", "/api/feedback", bytes.NewReader(body))
		w := httptest.NewRecorder()

		handlers.SubmitFeedback(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("score %d: expected status 400, got %d", score, w.Code)
		}
	}
}

func TestSubmitFeedback_NegativeResponseTime(t *testing.T) {
	handlers, emergencies := newFeedbackTestHandlers(t)
	e := seedFeedbackEmergency(t, emergencies)

	body, _ := json.Marshal(map[string]any{
		"emergency_id":          e.ID,
		"satisfaction_score":    5,
		"response_time_seconds": -10,
	})
	req := httptest.NewRequest("POST", "/api/feedback", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handlers.SubmitFeedback(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestSubmitFeedback_MissingEmergencyID(t *testing.T) {
	handlers, _ := newFeedbackTestHandlers(t)

	body := []byte(`{"satisfaction_score": 5}`)
	req := httptest.NewRequest("POST", "/api/feedback", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handlers.SubmitFeedback(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestSubmitFeedback_MethodNotAllowed(t *testing.T) {
	handlers, _ := newFeedbackTestHandlers(t)

	req := httptest.NewRequest("GET", "/api/feedback", nil)
	w := httptest.NewRecorder()

	handlers.SubmitFeedback(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", w.Code)
	}
}
