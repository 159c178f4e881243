// Package main is the entry point for the emergency matchmaking API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/vishwas-droid/ai-healthcare-emergency/internal/api"
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/config"
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/db"
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/directory"
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/dispatch"
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/emergency"
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/feedback"
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/health"
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/listing"
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/middleware"
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/ranking"
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/triage"
)

func main() {
	help := flag.Bool("help", false, "display help message")
	configPath := flag.String("config", "", "path to optional YAML config file")
	flag.Parse()

	if *help {
		fmt.Println("Emergency Matchmaking API Server")
		fmt.Println()
		fmt.Println("Usage: api [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	cfg, errs := config.Load(*configPath)
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		}
		os.Exit(1)
	}

	logger := middleware.NewLogger(cfg.Env)
	slog.SetDefault(logger)
	logger.Info("configuration loaded", "config", cfg.LogSummary())

	dbConn, err := db.Open(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Redis backs distributed rate limiting; without it, limiting falls
	// back to per-process in-memory windows.
	var redisClient *redis.Client
	var rateLimitStore middleware.RateLimitStore
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		rateLimitStore = middleware.NewRedisRateLimitStore(redisClient)
	} else {
		logger.Warn("REDIS_ADDR not set, using in-memory rate limiting")
		rateLimitStore = middleware.NewInMemoryRateLimitStore()
	}

	registry := prometheus.NewRegistry()
	httpMetrics := middleware.NewMetrics()
	if err := httpMetrics.Register(registry); err != nil {
		logger.Error("failed to register http metrics", "error", err)
		os.Exit(1)
	}
	if redisStore, ok := rateLimitStore.(*middleware.RedisRateLimitStore); ok {
		redisStore.SetMetrics(httpMetrics)
	}
	rankingMetrics := ranking.NewMetrics()
	if err := rankingMetrics.Register(registry); err != nil {
		logger.Error("failed to register ranking metrics", "error", err)
		os.Exit(1)
	}
	feedbackMetrics := feedback.NewMetrics()
	if err := feedbackMetrics.Register(registry); err != nil {
		logger.Error("failed to register feedback metrics", "error", err)
		os.Exit(1)
	}

	emergencies := emergency.NewPostgresRepository(dbConn)
	doctors := directory.NewPostgresDoctorRepository(dbConn)
	ambulances := directory.NewPostgresAmbulanceRepository(dbConn)
	hospitals := directory.NewPostgresHospitalRepository(dbConn)
	snapshots := feedback.NewPostgresSnapshotStore(dbConn)
	outcomes := feedback.NewPostgresOutcomeStore(dbConn)
	results := ranking.NewPostgresResultStore(dbConn)
	triageLogs := triage.NewPostgresLogStore(dbConn)
	sessions := dispatch.NewPostgresSessionStore(dbConn)

	var classifier triage.Classifier
	if cfg.TriageServiceURL != "" {
		classifier = triage.NewRemoteClassifier(cfg.TriageServiceURL)
	}
	rankingSvc := ranking.NewService(emergencies, doctors, ambulances, hospitals, snapshots, results, rankingMetrics, logger)
	feedbackSvc := feedback.NewService(emergencies, outcomes, snapshots, feedbackMetrics, logger)
	triageSvc := triage.NewService(emergencies, triageLogs, classifier, logger)
	listingSvc := listing.NewService(doctors, ambulances, hospitals, results, logger)
	broadcaster := dispatch.NewBroadcaster()
	estimator := dispatch.NewEstimator(cfg.DirectionsAPIURL, cfg.DirectionsAPIKey, logger)
	dispatchSvc := dispatch.NewService(doctors, ambulances, sessions, broadcaster, estimator, logger)

	var redisChecker api.HealthChecker
	if redisClient != nil {
		redisChecker = health.NewRedisChecker(redisClient)
	}
	var classifierChecker api.HealthChecker
	if cfg.TriageServiceURL != "" {
		classifierChecker = health.NewClassifierChecker(cfg.TriageServiceURL)
	}
	healthHandlers := api.NewHealthHandlers(api.HealthHandlersConfig{
		DBChecker:         health.NewDBChecker(dbConn),
		RedisChecker:      redisChecker,
		ClassifierChecker: classifierChecker,
		MetricsEnabled:    true,
	})

	mux := api.NewRouter(api.RouterConfig{
		Rank:           api.NewRankHandlers(rankingSvc),
		Triage:         api.NewTriageHandlers(triageSvc),
		Feedback:       api.NewFeedbackHandlers(feedbackSvc),
		Listing:        api.NewListingHandlers(listingSvc),
		Tracking:       api.NewTrackingHandlers(dispatchSvc, broadcaster),
		Health:         healthHandlers,
		RateLimitStore: rateLimitStore,
		Metrics:        httpMetrics,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	// Apply middleware: RequestID -> Logging -> HTTPMetrics
	handler := middleware.RequestID(middleware.Logging(logger)(middleware.HTTPMetrics(httpMetrics)(mux)))

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Create context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Warn("failed to close redis client", "error", err)
		}
	}

	logger.Info("server stopped")
}
