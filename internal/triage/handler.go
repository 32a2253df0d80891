package triage

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/Yogitha-Turumella/MEDASSIST/pkg/logging"
)

// maxImageBytes caps a single upload at 10 MiB.
const maxImageBytes = 10 << 20

// Handler exposes symptom checks and image uploads over HTTP.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Analyze handles POST /api/v1/symptom-check.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PatientID string   `json:"patient_id"`
		Symptoms  []string `json:"symptoms"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Symptoms) == 0 {
		http.Error(w, "symptoms are required", http.StatusBadRequest)
		return
	}

	analysis, err := h.service.Analyze(r.Context(), req.PatientID, req.Symptoms)
	if err != nil {
		h.logger.Error("symptom analysis failed", "error", err)
		http.Error(w, "analysis failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(analysis)
}

// History handles GET /api/v1/symptom-check/history?patient_id=...
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	patientID := r.URL.Query().Get("patient_id")
	if patientID == "" {
		http.Error(w, "patient_id is required", http.StatusBadRequest)
		return
	}

	analyses, err := h.service.History(r.Context(), patientID)
	if err != nil {
		h.logger.Error("failed to load analysis history", "error", err)
		http.Error(w, "failed to load history", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"analyses": analyses})
}

// UploadImage handles POST /api/v1/medical-images (multipart form, field "image").
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "image file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read image", http.StatusBadRequest)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	image, err := h.service.UploadImage(r.Context(), r.FormValue("patient_id"), header.Filename, data, contentType)
	if err != nil {
		h.logger.Error("image upload failed", "error", err)
		http.Error(w, "upload failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(image)
}
