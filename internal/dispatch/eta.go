// Package dispatch estimates provider travel times and tracks en-route
// providers with simulated progress updates.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/vishwas-droid/ai-healthcare-emergency/internal/geo"
)

// Fallback ETA model: straight-line distance at urban ambulance speed,
// never under the floor.
const (
	fallbackSpeedKmh   = 32.0
	minETASeconds      = 240
	directionsTimeout  = 5 * time.Second
	directionsBasePath = "/maps/api/directions/json"
)

// Estimator produces travel-time estimates. A directions API is consulted
// when configured; every failure path degrades to the haversine fallback.
// Estimation never returns an error: dispatch must always get a number.
type Estimator struct {
	apiURL string
	apiKey string
	client *http.Client
	logger *slog.Logger
}

// NewEstimator creates an estimator. Empty apiURL or apiKey disables the
// directions client entirely.
func NewEstimator(apiURL, apiKey string, logger *slog.Logger) *Estimator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Estimator{
		apiURL: apiURL,
		apiKey: apiKey,
		client: &http.Client{Timeout: directionsTimeout},
		logger: logger,
	}
}

// FallbackETASeconds estimates travel time from straight-line distance.
func FallbackETASeconds(km float64) int {
	eta := int(km / fallbackSpeedKmh * 3600)
	if eta < minETASeconds {
		return minETASeconds
	}
	return eta
}

// directionsResponse is the subset of the directions payload we read.
type directionsResponse struct {
	Routes []struct {
		Legs []struct {
			Duration struct {
				Value int `json:"value"`
			} `json:"duration"`
		} `json:"legs"`
	} `json:"routes"`
}

// EstimateTravelSeconds estimates travel time between two points.
func (e *Estimator) EstimateTravelSeconds(ctx context.Context, origin, dest geo.Point) int {
	km := geo.DistanceKm(origin, dest)
	if e.apiURL == "" || e.apiKey == "" {
		return FallbackETASeconds(km)
	}

	seconds, err := e.queryDirections(ctx, origin, dest)
	if err != nil {
		e.logger.Warn("directions lookup failed, using distance fallback",
			slog.String("error", err.Error()),
			slog.Float64("distance_km", km))
		return FallbackETASeconds(km)
	}
	if seconds <= 0 {
		return FallbackETASeconds(km)
	}
	return seconds
}

func (e *Estimator) queryDirections(ctx context.Context, origin, dest geo.Point) (int, error) {
	params := url.Values{}
	params.Set("origin", fmt.Sprintf("%f,%f", origin.Lat, origin.Lng))
	params.Set("destination", fmt.Sprintf("%f,%f", dest.Lat, dest.Lng))
	params.Set("key", e.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.apiURL+directionsBasePath+"?"+params.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build directions request: %w", err)
	}

	res, err := e.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("directions service unreachable: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("directions service returned status %d", res.StatusCode)
	}

	var data directionsResponse
	if err := json.NewDecoder(res.Body).Decode(&data); err != nil {
		return 0, fmt.Errorf("failed to decode directions response: %w", err)
	}
	if len(data.Routes) == 0 || len(data.Routes[0].Legs) == 0 {
		return 0, fmt.Errorf("directions response has no routes")
	}
	return data.Routes[0].Legs[0].Duration.Value, nil
}
