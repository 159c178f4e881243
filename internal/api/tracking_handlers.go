package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/directory"
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/dispatch"
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/geo"
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/middleware"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: Implement proper CORS checking based on configuration
		// For now, allow all origins (should be restricted in production)
		return true
	},
}

// TrackingHandlers holds dependencies for dispatch tracking HTTP handlers.
type TrackingHandlers struct {
	svc         *dispatch.Service
	broadcaster *dispatch.Broadcaster
}

// NewTrackingHandlers creates a new TrackingHandlers instance.
func NewTrackingHandlers(svc *dispatch.Service, broadcaster *dispatch.Broadcaster) *TrackingHandlers {
	return &TrackingHandlers{svc: svc, broadcaster: broadcaster}
}

// startTrackingRequest is the body for POST /api/tracking/start.
// Lat/Lng are the patient's location and are optional; when present they
// let the ETA come from the travel-time estimate instead of the provider's
// advertised response time.
type startTrackingRequest struct {
	ProviderType string  `json:"provider_type"`
	ProviderID   int64   `json:"provider_id"`
	City         string  `json:"city"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
}

// StartTracking handles POST /api/tracking/start. It opens a tracking
// session for a dispatched doctor or ambulance.
func (h *TrackingHandlers) StartTracking(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	var req startTrackingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	kind, ok := directory.ParseKind(req.ProviderType)
	if !ok || kind == directory.KindHospital {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInvalidKind)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeInvalidKind, "provider_type must be doctor or ambulance")
		return
	}
	if req.ProviderID <= 0 {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "provider_id is required")
		return
	}

	session, err := h.svc.Start(r.Context(), kind, req.ProviderID, req.City, geo.Point{Lat: req.Lat, Lng: req.Lng})
	if err != nil {
		switch {
		case errors.Is(err, dispatch.ErrInvalidProviderKind):
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeInvalidKind)
			WriteError(w, ctx, http.StatusBadRequest, ErrCodeInvalidKind, "provider_type must be doctor or ambulance")
		case errors.Is(err, directory.ErrDoctorNotFound), errors.Is(err, directory.ErrAmbulanceNotFound):
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeProviderNotFound)
			WriteError(w, ctx, http.StatusNotFound, ErrCodeProviderNotFound, "Provider not found")
		default:
			slog.ErrorContext(r.Context(), "failed to start tracking session", "error", err,
				"provider_type", req.ProviderType, "provider_id", req.ProviderID)
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
			WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to start tracking")
		}
		return
	}

	writeJSON(w, r, http.StatusCreated, session)
}

// TrackingStatus handles GET /api/tracking/{id}. It returns the current
// simulated progress of the session.
func (h *TrackingHandlers) TrackingStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	trackingID := strings.TrimPrefix(r.URL.Path, "/api/tracking/")
	if trackingID == "" || strings.Contains(trackingID, "/") {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Expected /api/tracking/{id}")
		return
	}

	update, err := h.svc.Status(r.Context(), trackingID)
	if err != nil {
		if errors.Is(err, dispatch.ErrSessionNotFound) {
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeSessionNotFound)
			WriteError(w, ctx, http.StatusNotFound, ErrCodeSessionNotFound, "Tracking session not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to read tracking status", "error", err, "tracking_id", trackingID)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to read tracking status")
		return
	}

	writeJSON(w, r, http.StatusOK, update)
}

// SubscribeToTracking handles WebSocket connections for real-time tracking updates.
// GET /api/tracking/{id}/ws
func (h *TrackingHandlers) SubscribeToTracking(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Expected: /api/tracking/{id}/ws
	pathParts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/tracking/"), "/")
	if len(pathParts) != 2 || pathParts[0] == "" || pathParts[1] != "ws" {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid URL path")
		return
	}
	trackingID := pathParts[0]

	// Verify the session exists before upgrading
	update, err := h.svc.Status(ctx, trackingID)
	if err != nil {
		if errors.Is(err, dispatch.ErrSessionNotFound) {
			WriteError(w, ctx, http.StatusNotFound, ErrCodeSessionNotFound, "Tracking session not found")
		} else {
			slog.ErrorContext(ctx, "failed to read tracking status", "error", err)
			WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Internal server error")
		}
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.ErrorContext(ctx, "failed to upgrade websocket connection",
			"error", err,
			"tracking_id", trackingID,
		)
		return
	}

	h.broadcaster.Subscribe(trackingID, conn)

	requestID := middleware.GetRequestID(ctx)
	slog.InfoContext(ctx, "websocket client subscribed to tracking updates",
		"tracking_id", trackingID,
		"request_id", requestID,
	)

	defer func() {
		h.broadcaster.Unsubscribe(conn)
		conn.Close()
		slog.InfoContext(ctx, "websocket client unsubscribed",
			"tracking_id", trackingID,
			"request_id", requestID,
		)
	}()

	// Push the current state so subscribers don't wait for the next poll
	if data, err := json.Marshal(update); err == nil {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}

	// Keep connection alive - read messages to detect disconnection
	// We don't expect clients to send messages, but we need to read to detect when they disconnect
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.WarnContext(ctx, "websocket connection closed unexpectedly",
					"error", err,
					"tracking_id", trackingID,
				)
			}
			break
		}
	}
}
