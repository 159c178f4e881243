package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/vishwas-droid/ai-healthcare-emergency/internal/directory"
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/listing"
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/middleware"
)

// ListingHandlers holds dependencies for directory listing HTTP handlers.
type ListingHandlers struct {
	svc *listing.Service
}

// NewListingHandlers creates a new ListingHandlers instance.
func NewListingHandlers(svc *listing.Service) *ListingHandlers {
	return &ListingHandlers{svc: svc}
}

type doctorListResponse struct {
	Doctors []directory.Doctor `json:"doctors"`
	Count   int                `json:"count"`
}

type ambulanceListResponse struct {
	Ambulances []directory.Ambulance `json:"ambulances"`
	Count      int                   `json:"count"`
}

// parseBudget reads an optional budget query parameter. A missing or
// empty value is zero; a malformed one is an error.
func parseBudget(r *http.Request) (float64, bool) {
	raw := r.URL.Query().Get("budget")
	if raw == "" {
		return 0, true
	}
	budget, err := strconv.ParseFloat(raw, 64)
	if err != nil || budget < 0 {
		return 0, false
	}
	return budget, true
}

// ListDoctors handles GET /api/doctors?city=&problem=&budget=.
func (h *ListingHandlers) ListDoctors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	budget, ok := parseBudget(r)
	if !ok {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "budget must be a non-negative number")
		return
	}

	q := &listing.DoctorQuery{
		City:    r.URL.Query().Get("city"),
		Problem: r.URL.Query().Get("problem"),
		Budget:  budget,
	}

	doctors, err := h.svc.ListDoctors(r.Context(), q)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list doctors", "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to list doctors")
		return
	}

	writeJSON(w, r, http.StatusOK, doctorListResponse{Doctors: doctors, Count: len(doctors)})
}

// ListAmbulances handles GET /api/ambulances?city=&budget=&urgency=.
func (h *ListingHandlers) ListAmbulances(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	budget, ok := parseBudget(r)
	if !ok {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "budget must be a non-negative number")
		return
	}

	q := &listing.AmbulanceQuery{
		City:    r.URL.Query().Get("city"),
		Budget:  budget,
		Urgency: r.URL.Query().Get("urgency"),
	}

	ambulances, err := h.svc.ListAmbulances(r.Context(), q)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list ambulances", "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to list ambulances")
		return
	}

	writeJSON(w, r, http.StatusOK, ambulanceListResponse{Ambulances: ambulances, Count: len(ambulances)})
}

type hospitalListResponse struct {
	Hospitals []directory.Hospital `json:"hospitals"`
	Count     int                  `json:"count"`
}

// ListHospitals handles GET /api/hospitals?city=&min_icu=.
func (h *ListingHandlers) ListHospitals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	minICU := 0
	if raw := r.URL.Query().Get("min_icu"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
			WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "min_icu must be a non-negative integer")
			return
		}
		minICU = parsed
	}

	q := &listing.HospitalQuery{
		City:   r.URL.Query().Get("city"),
		MinICU: minICU,
	}

	hospitals, err := h.svc.ListHospitals(r.Context(), q)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list hospitals", "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to list hospitals")
		return
	}

	writeJSON(w, r, http.StatusOK, hospitalListResponse{Hospitals: hospitals, Count: len(hospitals)})
}

// compareRequest is the body for POST /api/compare.
type compareRequest struct {
	EntityType string  `json:"entity_type"`
	IDs        []int64 `json:"ids"`
	City       string  `json:"city"`
	Category   string  `json:"category"`
	Budget     float64 `json:"budget"`
}

// Compare handles POST /api/compare. It ranks the named doctors or
// ambulances against each other and returns the winner with a
// recommendation.
func (h *ListingHandlers) Compare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	kind, ok := directory.ParseKind(req.EntityType)
	if !ok || kind == directory.KindHospital {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInvalidKind)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeInvalidKind, "entity_type must be doctor or ambulance")
		return
	}
	if len(req.IDs) == 0 {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "ids is required")
		return
	}
	if req.Budget < 0 {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "budget must be a non-negative number")
		return
	}

	result, err := h.svc.Compare(r.Context(), &listing.CompareQuery{
		Kind:     kind,
		IDs:      req.IDs,
		City:     req.City,
		Category: req.Category,
		Budget:   req.Budget,
	})
	if err != nil {
		if errors.Is(err, listing.ErrNoCandidates) {
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeProviderNotFound)
			WriteError(w, ctx, http.StatusNotFound, ErrCodeProviderNotFound, "No providers matched the requested ids")
			return
		}
		slog.ErrorContext(r.Context(), "failed to compare providers", "error", err,
			"entity_type", req.EntityType)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to compare providers")
		return
	}

	writeJSON(w, r, http.StatusOK, result)
}
