package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/vishwas-droid/ai-healthcare-emergency/internal/middleware"
)

// RouterConfig collects the handler groups and cross-cutting pieces the
// router wires together.
type RouterConfig struct {
	Rank     *RankHandlers
	Triage   *TriageHandlers
	Feedback *FeedbackHandlers
	Listing  *ListingHandlers
	Tracking *TrackingHandlers
	Health   *HealthHandlers

	// RateLimitStore may be nil to disable rate limiting (tests).
	RateLimitStore middleware.RateLimitStore
	// Metrics may be nil to disable rate-limit instrumentation.
	Metrics *middleware.Metrics
	// MetricsHandler serves GET /metrics when set (promhttp).
	MetricsHandler http.Handler
}

// NewRouter builds the ServeMux for the emergency API. Triage and ranking
// carry tighter per-route limits than the global default; everything else
// shares the global window.
func NewRouter(cfg RouterConfig) *http.ServeMux {
	ipKey := middleware.IPKeyFunc()
	limit := func(scope string, rl middleware.RateLimitConfig) func(http.Handler) http.Handler {
		if cfg.RateLimitStore == nil {
			return func(next http.Handler) http.Handler { return next }
		}
		// Scope the bucket key so routes with different windows never
		// share counters for the same client.
		scoped := func(r *http.Request) string { return ipKey(r) + "|" + scope }
		return middleware.RateLimiter(cfg.RateLimitStore, rl, scoped, cfg.Metrics)
	}
	global := limit("global", middleware.DefaultGlobalLimit())
	triage := limit("triage", middleware.DefaultTriageLimit())
	ranked := limit("rank", middleware.DefaultRankingLimit())

	mux := http.NewServeMux()

	mux.Handle("/api/triage", triage(http.HandlerFunc(cfg.Triage.Triage)))

	mux.Handle("/api/rank/doctors", ranked(http.HandlerFunc(cfg.Rank.RankDoctors)))
	mux.Handle("/api/rank/ambulances", ranked(http.HandlerFunc(cfg.Rank.RankAmbulances)))
	mux.Handle("/api/rank/hospitals", ranked(http.HandlerFunc(cfg.Rank.RankHospitals)))
	mux.Handle("/api/why-ranked/", global(http.HandlerFunc(cfg.Rank.WhyRanked)))

	mux.Handle("/api/feedback", global(http.HandlerFunc(cfg.Feedback.SubmitFeedback)))

	mux.Handle("/api/doctors", global(http.HandlerFunc(cfg.Listing.ListDoctors)))
	mux.Handle("/api/ambulances", global(http.HandlerFunc(cfg.Listing.ListAmbulances)))
	mux.Handle("/api/hospitals", global(http.HandlerFunc(cfg.Listing.ListHospitals)))
	mux.Handle("/api/compare", global(http.HandlerFunc(cfg.Listing.Compare)))

	mux.Handle("/api/tracking/start", global(http.HandlerFunc(cfg.Tracking.StartTracking)))
	mux.Handle("/api/tracking/", global(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// WebSocket subscriptions skip the method check; everything else
		// under the prefix is a status read.
		if strings.HasSuffix(r.URL.Path, "/ws") {
			cfg.Tracking.SubscribeToTracking(w, r)
			return
		}
		cfg.Tracking.TrackingStatus(w, r)
	})))

	mux.HandleFunc("/health", cfg.Health.Health)
	mux.HandleFunc("/ready", cfg.Health.Ready)
	if cfg.MetricsHandler != nil {
		mux.Handle("/metrics", cfg.MetricsHandler)
	}

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		// Only handle exact root path, everything else returns 404
		if r.URL.Path != "/" {
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeNotFound)
			WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "The requested resource was not found")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"service":"emergency-api","version":"0.0.1"}`)); err != nil {
			slog.Error("failed to write response", "error", err)
		}
	})

	return mux
}
