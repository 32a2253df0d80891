// Package emergency routes patient emergency requests through the
// provider's escalation function and alerts on-call staff.
package emergency

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Yogitha-Turumella/MEDASSIST/internal/backend"
	"github.com/Yogitha-Turumella/MEDASSIST/internal/notify"
	"github.com/Yogitha-Turumella/MEDASSIST/internal/records"
	"github.com/Yogitha-Turumella/MEDASSIST/pkg/logging"
)

var tracer = otel.Tracer("medassist/emergency")

// Priority represents the urgency level of an alert.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// Status values for an alert lifecycle.
const (
	StatusPending    = "PENDING"
	StatusDispatched = "DISPATCHED"
	StatusResolved   = "RESOLVED"
)

// Request contains details for raising an emergency alert.
type Request struct {
	PatientID string   `json:"patient_id,omitempty"`
	Reason    string   `json:"reason"`
	Location  string   `json:"location,omitempty"`
	Priority  Priority `json:"priority,omitempty"`
}

// Service raises emergency alerts. The escalation function decides
// dispatch; the alert row and staff email are best-effort follow-ups.
type Service struct {
	backend    backend.Service
	emails     notify.EmailSender
	staffEmail string
	logger     *logging.Logger
}

func NewService(be backend.Service, emails notify.EmailSender, staffEmail string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		backend:    be,
		emails:     emails,
		staffEmail: staffEmail,
		logger:     logger,
	}
}

// Escalate invokes the provider escalation function and records the
// alert. Notification failures never fail the escalation.
func (s *Service) Escalate(ctx context.Context, req Request) (*records.EmergencyAlert, error) {
	ctx, span := tracer.Start(ctx, "emergency.escalate")
	defer span.End()

	if strings.TrimSpace(req.Reason) == "" {
		return nil, fmt.Errorf("emergency: reason is required")
	}
	if req.Priority == "" {
		req.Priority = PriorityHigh
	}
	span.SetAttributes(
		attribute.String("emergency.priority", string(req.Priority)),
		attribute.Bool("emergency.has_location", req.Location != ""),
	)

	alert := records.EmergencyAlert{
		ID:        uuid.NewString(),
		PatientID: req.PatientID,
		Priority:  string(req.Priority),
		Reason:    req.Reason,
		Location:  req.Location,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}

	data, err := s.backend.Invoke(ctx, backend.FnEmergencyEscalation, map[string]any{
		"alert_id":   alert.ID,
		"patient_id": alert.PatientID,
		"priority":   alert.Priority,
		"reason":     alert.Reason,
		"location":   alert.Location,
	})
	if err != nil {
		return nil, fmt.Errorf("emergency: escalation function: %w", err)
	}

	var outcome struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(data, &outcome); err == nil && outcome.Status != "" {
		alert.Status = outcome.Status
	}

	// The alert row is an audit record, not the dispatch itself.
	if _, err := s.backend.Insert(ctx, backend.ResourceEmergencyAlerts, alert); err != nil {
		s.logger.Error("failed to record emergency alert", "error", err, "alert_id", alert.ID)
	}

	s.notifyStaff(ctx, &alert)

	s.logger.Info("emergency escalated",
		"alert_id", alert.ID,
		"priority", alert.Priority,
		"status", alert.Status,
	)
	return &alert, nil
}

func (s *Service) notifyStaff(ctx context.Context, alert *records.EmergencyAlert) {
	if s.emails == nil || s.staffEmail == "" {
		return
	}

	subject, body := formatStaffEmail(alert)
	if err := s.emails.Send(ctx, notify.EmailMessage{
		To:      s.staffEmail,
		ToName:  "On-Call Staff",
		Subject: subject,
		Body:    body,
	}); err != nil {
		s.logger.Error("failed to send emergency email", "error", err, "alert_id", alert.ID)
	}
}

func formatStaffEmail(alert *records.EmergencyAlert) (subject, body string) {
	subject = fmt.Sprintf("[%s Priority] Emergency Alert", alert.Priority)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Alert ID: %s\n", alert.ID))
	sb.WriteString(fmt.Sprintf("Priority: %s\n", alert.Priority))
	sb.WriteString(fmt.Sprintf("Status: %s\n", alert.Status))
	sb.WriteString(fmt.Sprintf("Created: %s\n\n", alert.CreatedAt.Format(time.RFC1123)))

	if alert.PatientID != "" {
		sb.WriteString(fmt.Sprintf("Patient: %s\n", alert.PatientID))
	}
	if alert.Location != "" {
		sb.WriteString(fmt.Sprintf("Location: %s\n", alert.Location))
	}

	sb.WriteString("\n--- Reason ---\n")
	sb.WriteString(alert.Reason)
	sb.WriteString("\n")

	return subject, sb.String()
}

// PendingAlerts returns unresolved alerts, newest first.
func (s *Service) PendingAlerts(ctx context.Context) ([]records.EmergencyAlert, error) {
	rows, err := s.backend.Select(ctx, backend.Query{
		Resource: backend.ResourceEmergencyAlerts,
		Filters:  map[string]string{"status": "eq." + StatusPending},
		Order:    "created_at.desc",
	})
	if err != nil {
		return nil, err
	}

	alerts := make([]records.EmergencyAlert, 0, len(rows))
	for _, row := range rows {
		var a records.EmergencyAlert
		if err := json.Unmarshal(row, &a); err != nil {
			return nil, fmt.Errorf("emergency: decode alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, nil
}
