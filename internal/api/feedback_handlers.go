package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vishwas-droid/ai-healthcare-emergency/internal/emergency"
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/feedback"
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/middleware"
)

// FeedbackHandlers holds dependencies for feedback HTTP handlers.
type FeedbackHandlers struct {
	svc *feedback.Service
}

// NewFeedbackHandlers creates a new FeedbackHandlers instance.
func NewFeedbackHandlers(svc *feedback.Service) *FeedbackHandlers {
	return &FeedbackHandlers{svc: svc}
}

// feedbackResponse echoes the stored outcome alongside the adjustment
// vector it produced.
type feedbackResponse struct {
	Outcome     *feedback.Outcome    `json:"outcome"`
	Adjustments feedback.Adjustments `json:"adjustments"`
}

// SubmitFeedback handles POST /api/feedback. It records a reported
// outcome for an emergency and returns the updated adjustment vector.
func (h *FeedbackHandlers) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	var o feedback.Outcome
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	if strings.TrimSpace(o.EmergencyID) == "" {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "emergency_id is required")
		return
	}
	if o.SatisfactionScore < 1 || o.SatisfactionScore > 10 {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInvalidOutcome)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeInvalidOutcome, "satisfaction_score must be between 1 and 10")
		return
	}
	if o.ResponseTimeSeconds < 0 {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInvalidOutcome)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeInvalidOutcome, "response_time_seconds must not be negative")
		return
	}

	adj, err := h.svc.RecordOutcome(r.Context(), &o)
	if err != nil {
		if errors.Is(err, emergency.ErrNotFound) {
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeEmergencyNotFound)
			WriteError(w, ctx, http.StatusNotFound, ErrCodeEmergencyNotFound, "Emergency not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to record feedback", "error", err, "emergency_id", o.EmergencyID)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to record feedback")
		return
	}

	writeJSON(w, r, http.StatusCreated, feedbackResponse{Outcome: &o, Adjustments: adj})
}
