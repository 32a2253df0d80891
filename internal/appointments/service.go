// Package appointments books and lists consultations.
package appointments

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Yogitha-Turumella/MEDASSIST/internal/backend"
	"github.com/Yogitha-Turumella/MEDASSIST/internal/records"
	"github.com/Yogitha-Turumella/MEDASSIST/pkg/logging"
)

// Request contains the booking details.
type Request struct {
	PatientID   string    `json:"patient_id"`
	DoctorID    string    `json:"doctor_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Reason      string    `json:"reason,omitempty"`
}

// Service books appointments through the facade.
type Service struct {
	backend backend.Service
	logger  *logging.Logger
}

func NewService(be backend.Service, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{backend: be, logger: logger}
}

// Book inserts an appointment in requested state.
func (s *Service) Book(ctx context.Context, req Request) (*records.Appointment, error) {
	if req.DoctorID == "" {
		return nil, fmt.Errorf("appointments: doctor id is required")
	}
	if req.ScheduledAt.IsZero() {
		return nil, fmt.Errorf("appointments: scheduled time is required")
	}

	row, err := s.backend.Insert(ctx, backend.ResourceAppointments, map[string]any{
		"patient_id":   req.PatientID,
		"doctor_id":    req.DoctorID,
		"scheduled_at": req.ScheduledAt.UTC(),
		"status":       "requested",
		"reason":       req.Reason,
	})
	if err != nil {
		return nil, fmt.Errorf("appointments: book: %w", err)
	}

	var appt records.Appointment
	if err := json.Unmarshal(row, &appt); err != nil {
		return nil, fmt.Errorf("appointments: decode booking: %w", err)
	}

	s.logger.Info("appointment booked", "appointment_id", appt.ID, "doctor_id", req.DoctorID)
	return &appt, nil
}

// ListForPatient returns a patient's appointments, soonest first.
func (s *Service) ListForPatient(ctx context.Context, patientID string) ([]records.Appointment, error) {
	if patientID == "" {
		return nil, fmt.Errorf("appointments: patient id is required")
	}

	rows, err := s.backend.Select(ctx, backend.Query{
		Resource: backend.ResourceAppointments,
		Filters:  map[string]string{"patient_id": "eq." + patientID},
		Order:    "scheduled_at.asc",
	})
	if err != nil {
		return nil, err
	}

	appts := make([]records.Appointment, 0, len(rows))
	for _, row := range rows {
		var a records.Appointment
		if err := json.Unmarshal(row, &a); err != nil {
			return nil, fmt.Errorf("appointments: decode row: %w", err)
		}
		appts = append(appts, a)
	}
	return appts, nil
}

// Cancel marks an appointment cancelled.
func (s *Service) Cancel(ctx context.Context, appointmentID string) error {
	if appointmentID == "" {
		return fmt.Errorf("appointments: appointment id is required")
	}
	if _, err := s.backend.Update(ctx, backend.ResourceAppointments, appointmentID, map[string]string{
		"status": "cancelled",
	}); err != nil {
		return fmt.Errorf("appointments: cancel: %w", err)
	}
	s.logger.Info("appointment cancelled", "appointment_id", appointmentID)
	return nil
}
