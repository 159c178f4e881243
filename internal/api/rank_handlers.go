package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/vishwas-droid/ai-healthcare-emergency/internal/directory"
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/emergency"
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/middleware"
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/ranking"
)

// RankHandlers holds dependencies for ranking HTTP handlers.
type RankHandlers struct {
	svc *ranking.Service
}

// NewRankHandlers creates a new RankHandlers instance.
func NewRankHandlers(svc *ranking.Service) *RankHandlers {
	return &RankHandlers{svc: svc}
}

// decodeRankRequest parses and validates the shared ranking request body.
func decodeRankRequest(w http.ResponseWriter, r *http.Request) (*ranking.Request, bool) {
	if r.Method != http.MethodPost {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return nil, false
	}

	var req ranking.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return nil, false
	}

	if strings.TrimSpace(req.EmergencyID) == "" {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "emergency_id is required")
		return nil, false
	}

	return &req, true
}

// writeRankError maps ranking service errors onto the API envelope.
func writeRankError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, emergency.ErrNotFound) {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeEmergencyNotFound)
		WriteError(w, ctx, http.StatusNotFound, ErrCodeEmergencyNotFound, "Emergency not found")
		return
	}
	slog.ErrorContext(r.Context(), "ranking pass failed", "error", err)
	ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
	WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to rank candidates")
}

// RankDoctors handles POST /api/rank/doctors.
func (h *RankHandlers) RankDoctors(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRankRequest(w, r)
	if !ok {
		return
	}

	resp, err := h.svc.RankDoctors(r.Context(), req)
	if err != nil {
		writeRankError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, resp)
}

// RankAmbulances handles POST /api/rank/ambulances.
func (h *RankHandlers) RankAmbulances(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRankRequest(w, r)
	if !ok {
		return
	}

	resp, err := h.svc.RankAmbulances(r.Context(), req)
	if err != nil {
		writeRankError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, resp)
}

// RankHospitals handles POST /api/rank/hospitals.
func (h *RankHandlers) RankHospitals(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRankRequest(w, r)
	if !ok {
		return
	}

	resp, err := h.svc.RankHospitals(r.Context(), req)
	if err != nil {
		writeRankError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, resp)
}

// WhyRanked handles GET /api/why-ranked/{emergencyID}/{kind}/{targetID}.
// It returns the most recent explanation for the target in the given
// emergency's ranking history.
func (h *RankHandlers) WhyRanked(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/why-ranked/"), "/")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Expected /api/why-ranked/{emergency_id}/{kind}/{target_id}")
		return
	}

	emergencyID := parts[0]

	kind, ok := directory.ParseKind(parts[1])
	if !ok {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInvalidKind)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeInvalidKind, "kind must be doctor, ambulance, or hospital")
		return
	}

	targetID, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "target_id must be an integer")
		return
	}

	explanation, err := h.svc.Explain(r.Context(), emergencyID, kind, targetID)
	if err != nil {
		if errors.Is(err, ranking.ErrExplanationNotFound) {
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeExplanationNotFound)
			WriteError(w, ctx, http.StatusNotFound, ErrCodeExplanationNotFound, "No explanation recorded for this target")
			return
		}
		slog.ErrorContext(r.Context(), "failed to load explanation", "error", err,
			"emergency_id", emergencyID, "kind", kind, "target_id", targetID)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to load explanation")
		return
	}

	writeJSON(w, r, http.StatusOK, explanation)
}
