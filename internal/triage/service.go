// Package triage runs AI symptom checks and medical image intake
// through the provider's serverless functions and storage.
package triage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Yogitha-Turumella/MEDASSIST/internal/backend"
	"github.com/Yogitha-Turumella/MEDASSIST/internal/records"
	"github.com/Yogitha-Turumella/MEDASSIST/pkg/logging"
)

var tracer = otel.Tracer("medassist/triage")

// imageBucket is the storage bucket for patient uploads.
const imageBucket = "medical-images"

// Service drives symptom analysis and image intake.
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

// Analyze sends the symptom list to the AI function and persists the
// result. A failed persist is logged and the analysis still returned;
// the patient answer matters more than the audit row.
func (s *Service) Analyze(ctx context.Context, patientID string, symptoms []string) (*records.SymptomAnalysis, error) {
	ctx, span := tracer.Start(ctx, "triage.analyze")
	defer span.End()
	span.SetAttributes(attribute.Int("triage.symptom_count", len(symptoms)))

	if len(symptoms) == 0 {
		return nil, fmt.Errorf("triage: at least one symptom is required")
	}

	data, err := s.backend.Invoke(ctx, backend.FnSymptomAnalysis, map[string]any{
		"patient_id": patientID,
		"symptoms":   symptoms,
	})
	if err != nil {
		return nil, fmt.Errorf("triage: symptom analysis: %w", err)
	}

	var result struct {
		Conditions []string `json:"possible_conditions"`
		Severity   string   `json:"severity"`
		Advice     string   `json:"advice"`
		SeeDoctor  bool     `json:"see_doctor"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("triage: decode analysis: %w", err)
	}

	analysis := records.SymptomAnalysis{
		ID:         uuid.NewString(),
		PatientID:  patientID,
		Symptoms:   symptoms,
		Conditions: result.Conditions,
		Severity:   result.Severity,
		Advice:     result.Advice,
		SeeDoctor:  result.SeeDoctor,
		AnalyzedAt: time.Now().UTC(),
	}

	if _, err := s.backend.Insert(ctx, backend.ResourceSymptomAnalyses, analysis); err != nil {
		s.logger.Error("failed to store symptom analysis", "error", err, "analysis_id", analysis.ID)
	}

	return &analysis, nil
}

// History returns a patient's past analyses, newest first.
func (s *Service) History(ctx context.Context, patientID string) ([]records.SymptomAnalysis, error) {
	rows, err := s.backend.Select(ctx, backend.Query{
		Resource: backend.ResourceSymptomAnalyses,
		Filters:  map[string]string{"patient_id": "eq." + patientID},
		Order:    "analyzed_at.desc",
	})
	if err != nil {
		return nil, err
	}

	analyses := make([]records.SymptomAnalysis, 0, len(rows))
	for _, row := range rows {
		var a records.SymptomAnalysis
		if err := json.Unmarshal(row, &a); err != nil {
			return nil, fmt.Errorf("triage: decode analysis row: %w", err)
		}
		analyses = append(analyses, a)
	}
	return analyses, nil
}

// UploadImage stores a medical image and records its public URL.
func (s *Service) UploadImage(ctx context.Context, patientID, fileName string, data []byte, contentType string) (*records.MedicalImage, error) {
	ctx, span := tracer.Start(ctx, "triage.upload_image")
	defer span.End()
	span.SetAttributes(attribute.Int("triage.image_bytes", len(data)))

	if len(data) == 0 {
		return nil, fmt.Errorf("triage: image data is empty")
	}

	// Object keys are namespaced per upload so repeated file names
	// never collide.
	path := uuid.NewString() + "/" + fileName
	url, err := s.backend.Upload(ctx, imageBucket, path, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("triage: upload image: %w", err)
	}

	image := records.MedicalImage{
		ID:         uuid.NewString(),
		PatientID:  patientID,
		FileName:   fileName,
		PublicURL:  url,
		UploadedAt: time.Now().UTC(),
	}

	if _, err := s.backend.Insert(ctx, backend.ResourceMedicalImages, image); err != nil {
		s.logger.Error("failed to store image record", "error", err, "image_id", image.ID)
	}

	return &image, nil
}
