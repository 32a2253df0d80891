package appointments

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Yogitha-Turumella/MEDASSIST/pkg/logging"
)

// Handler exposes appointment booking over HTTP.
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

// Book handles POST /api/v1/appointments.
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.DoctorID == "" || req.ScheduledAt.IsZero() {
		http.Error(w, "doctor_id and scheduled_at are required", http.StatusBadRequest)
		return
	}

	appt, err := h.service.Book(r.Context(), req)
	if err != nil {
		h.logger.Error("booking failed", "error", err)
		http.Error(w, "booking failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(appt)
}

// List handles GET /api/v1/appointments?patient_id=...
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	patientID := r.URL.Query().Get("patient_id")
	if patientID == "" {
		http.Error(w, "patient_id is required", http.StatusBadRequest)
		return
	}

	appts, err := h.service.ListForPatient(r.Context(), patientID)
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err)
		http.Error(w, "failed to load appointments", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"appointments": appts})
}

// Cancel handles DELETE /api/v1/appointments/{appointmentID}.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "appointmentID")
	if err := h.service.Cancel(r.Context(), id); err != nil {
		h.logger.Error("cancel failed", "error", err, "appointment_id", id)
		http.Error(w, "cancel failed", http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
