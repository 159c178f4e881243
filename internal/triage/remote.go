package triage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// remoteTimeout bounds one classifier call; on expiry the rule engine
// answers instead.
const remoteTimeout = 8 * time.Second

// Classifier produces a triage assessment from a complaint. A nil result
// with nil error means "no answer, fall back".
type Classifier interface {
	Classify(ctx context.Context, complaint string) (*Result, error)
}

// RemoteClassifier calls an external model service for triage. Any
// transport or decode failure is returned as an error; callers treat
// errors as a signal to fall back to the rule engine.
type RemoteClassifier struct {
	baseURL string
	client  *http.Client
}

// NewRemoteClassifier creates a classifier against the given base URL.
// An empty baseURL returns nil, meaning remote triage is disabled.
func NewRemoteClassifier(baseURL string) *RemoteClassifier {
	if baseURL == "" {
		return nil
	}
	return &RemoteClassifier{
		baseURL: baseURL,
		client:  &http.Client{Timeout: remoteTimeout},
	}
}

type classifyRequest struct {
	ComplaintText string `json:"complaint_text"`
}

// Classify posts the complaint to the model service.
func (c *RemoteClassifier) Classify(ctx context.Context, complaint string) (*Result, error) {
	body, err := json.Marshal(classifyRequest{ComplaintText: complaint})
	if err != nil {
		return nil, fmt.Errorf("failed to encode triage request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/triage", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build triage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("triage service unreachable: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("triage service returned status %d", res.StatusCode)
	}

	var out Result
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode triage response: %w", err)
	}
	return &out, nil
}
