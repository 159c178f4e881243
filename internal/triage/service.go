package triage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vishwas-droid/ai-healthcare-emergency/internal/emergency"
	"github.com/vishwas-droid/ai-healthcare-emergency/internal/geo"
)

// Request is a patient complaint to triage.
type Request struct {
	UserID        *string `json:"user_id,omitempty"`
	ComplaintText string  `json:"complaint_text"`
	Latitude      float64 `json:"latitude,omitempty"`
	Longitude     float64 `json:"longitude,omitempty"`
}

// Response pairs the created emergency with its assessment.
type Response struct {
	EmergencyID string `json:"emergency_id"`
	*Result
}

// Service runs triage and records the resulting emergency case. The
// remote classifier is consulted first when configured; any failure falls
// back silently to the rule engine so triage never errors on model
// outages.
type Service struct {
	emergencies emergency.Repository
	logs        LogStore
	classifier  Classifier
	logger      *slog.Logger
}

// NewService creates a triage service. classifier may be nil to use the
// rule engine only.
func NewService(emergencies emergency.Repository, logs LogStore, classifier Classifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		emergencies: emergencies,
		logs:        logs,
		classifier:  classifier,
		logger:      logger,
	}
}

// assess picks the remote assessment when available, the rule engine
// otherwise.
func (s *Service) assess(ctx context.Context, complaint string) *Result {
	if s.classifier != nil {
		result, err := s.classifier.Classify(ctx, complaint)
		if err == nil && result != nil {
			return result
		}
		if err != nil {
			s.logger.Warn("remote triage failed, using rule engine",
				slog.String("error", err.Error()))
		}
	}
	return Evaluate(complaint)
}

// Run triages a complaint, opens an emergency case and writes the audit
// log.
func (s *Service) Run(ctx context.Context, req *Request) (*Response, error) {
	result := s.assess(ctx, req.ComplaintText)

	e := &emergency.Emergency{
		PatientUserID: req.UserID,
		ComplaintText: req.ComplaintText,
		Severity:      result.Severity,
		SeverityScore: result.SeverityScore,
		Type:          result.Type,
		Status:        emergency.StatusOpen,
		Location:      geo.Point{Lat: req.Latitude, Lng: req.Longitude},
	}
	if err := s.emergencies.Insert(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to create emergency: %w", err)
	}

	log := &Log{
		EmergencyID: e.ID,
		Entities:    result.Entities,
		RiskFlags:   result.RiskFlags,
		Confidence:  result.Confidence,
	}
	if err := s.logs.Insert(ctx, log); err != nil {
		return nil, fmt.Errorf("failed to record triage log: %w", err)
	}

	s.logger.Info("triage completed",
		slog.String("emergency_id", e.ID),
		slog.String("severity", string(result.Severity)),
		slog.String("type", string(result.Type)),
		slog.Bool("escalated", result.Escalation.Triggered))

	return &Response{EmergencyID: e.ID, Result: result}, nil
}
