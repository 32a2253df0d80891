package emergency

import (
	"encoding/json"
	"net/http"

	"github.com/Yogitha-Turumella/MEDASSIST/pkg/logging"
)

// Handler exposes emergency escalation over HTTP.
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

// Escalate handles POST /api/v1/emergency.
func (h *Handler) Escalate(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Reason == "" {
		http.Error(w, "reason is required", http.StatusBadRequest)
		return
	}

	alert, err := h.service.Escalate(r.Context(), req)
	if err != nil {
		h.logger.Error("emergency escalation failed", "error", err)
		http.Error(w, "escalation failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(alert)
}

// ListPending handles GET /api/v1/emergency/pending.
func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.service.PendingAlerts(r.Context())
	if err != nil {
		h.logger.Error("failed to list pending alerts", "error", err)
		http.Error(w, "failed to load alerts", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"alerts": alerts})
}
