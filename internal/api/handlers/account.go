// Package handlers holds the HTTP handlers that have no service of
// their own and talk to the facade directly.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Yogitha-Turumella/MEDASSIST/internal/backend"
	"github.com/Yogitha-Turumella/MEDASSIST/internal/records"
	"github.com/Yogitha-Turumella/MEDASSIST/pkg/logging"
)

// AccountHandler exposes the auth surface of the facade.
type AccountHandler struct {
	backend backend.Service
	logger  *logging.Logger
}

func NewAccountHandler(be backend.Service, logger *logging.Logger) *AccountHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AccountHandler{backend: be, logger: logger}
}

type credentials struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type sessionResponse struct {
	AccessToken string `json:"access_token,omitempty"`
	UserType    string `json:"user_type,omitempty"`
	Email       string `json:"email,omitempty"`
	Profile     any    `json:"profile,omitempty"`
}

// SignUp handles POST /api/v1/auth/signup.
func (h *AccountHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		http.Error(w, "email and password are required", http.StatusBadRequest)
		return
	}

	sess, err := h.backend.SignUp(r.Context(), req.Email, req.Password, req.Metadata)
	if err != nil {
		h.writeAuthError(w, "sign-up failed", err)
		return
	}

	writeSession(w, http.StatusCreated, sess)
}

// SignIn handles POST /api/v1/auth/signin.
func (h *AccountHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		http.Error(w, "email and password are required", http.StatusBadRequest)
		return
	}

	sess, err := h.backend.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeAuthError(w, "sign-in failed", err)
		return
	}

	writeSession(w, http.StatusOK, sess)
}

// SignOut handles POST /api/v1/auth/signout.
func (h *AccountHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.backend.SignOut(r.Context()); err != nil {
		// Local state is already cleared; the remote failure is
		// reported, not retried.
		h.logger.Warn("remote sign-out failed", "error", err)
		http.Error(w, "remote sign-out failed", http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Session handles GET /api/v1/auth/session.
func (h *AccountHandler) Session(w http.ResponseWriter, r *http.Request) {
	sess, err := h.backend.Session(r.Context())
	if err != nil {
		h.logger.Error("session lookup failed", "error", err)
		http.Error(w, "session lookup failed", http.StatusBadGateway)
		return
	}
	if sess == nil {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	writeSession(w, http.StatusOK, sess)
}

func (h *AccountHandler) writeAuthError(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, "error", err)

	status := http.StatusUnauthorized
	var te *backend.TimeoutError
	switch {
	case errors.Is(err, backend.ErrNotConfigured):
		status = http.StatusServiceUnavailable
	case errors.As(err, &te):
		status = http.StatusGatewayTimeout
	}
	http.Error(w, msg, status)
}

func writeSession(w http.ResponseWriter, status int, sess *records.Session) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(sessionResponse{
		AccessToken: sess.AccessToken,
		UserType:    sess.UserType,
		Email:       sess.User.Email,
		Profile:     sess.Profile,
	})
}
