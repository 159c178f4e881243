package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vishwas-droid/ai-healthcare-emergency/internal/middleware"
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/triage"
)

// TriageHandlers holds dependencies for triage HTTP handlers.
type TriageHandlers struct {
	svc *triage.Service
}

// NewTriageHandlers creates a new TriageHandlers instance.
func NewTriageHandlers(svc *triage.Service) *TriageHandlers {
	return &TriageHandlers{svc: svc}
}

// Triage handles POST /api/triage. It classifies the free-text complaint,
// opens an emergency case, and returns the severity assessment together
// with the new emergency ID.
func (h *TriageHandlers) Triage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	var req triage.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	if strings.TrimSpace(req.ComplaintText) == "" {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeEmptyComplaint)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeEmptyComplaint, "complaint_text is required")
		return
	}

	resp, err := h.svc.Run(r.Context(), &req)
	if err != nil {
		slog.ErrorContext(r.Context(), "triage failed", "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to triage complaint")
		return
	}

	writeJSON(w, r, http.StatusCreated, resp)
}
