package health

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// ClassifierChecker implements health checking for the remote triage
// classifier service.
type ClassifierChecker struct {
	url    string
	client *http.Client
}

// NewClassifierChecker creates a new triage classifier health checker.
// The url should be the base URL of the classifier service.
func NewClassifierChecker(url string) *ClassifierChecker {
	return &ClassifierChecker{
		url: url,
		client: &http.Client{
			Timeout: 3 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        16,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     30 * time.Second,
			},
		},
	}
}

// HealthCheck performs a health check by making an HTTP request to the
// classifier base URL. The classifier has no dedicated health endpoint,
// so reachability plus a 2xx response counts as healthy.
func (c *ClassifierChecker) HealthCheck(ctx context.Context) error {
	if c.url == "" {
		return fmt.Errorf("classifier url not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach classifier service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("classifier unhealthy: unexpected status code %d", resp.StatusCode)
	}

	return nil
}
