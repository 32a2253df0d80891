// Package router composes the HTTP API surface.
package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Yogitha-Turumella/MEDASSIST/internal/api/handlers"
	"github.com/Yogitha-Turumella/MEDASSIST/internal/appointments"
	"github.com/Yogitha-Turumella/MEDASSIST/internal/chat"
	"github.com/Yogitha-Turumella/MEDASSIST/internal/directory"
	"github.com/Yogitha-Turumella/MEDASSIST/internal/emergency"
	httpmiddleware "github.com/Yogitha-Turumella/MEDASSIST/internal/http/middleware"
	"github.com/Yogitha-Turumella/MEDASSIST/internal/triage"
	"github.com/Yogitha-Turumella/MEDASSIST/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger              *logging.Logger
	AccountHandler      *handlers.AccountHandler
	DirectoryHandler    *directory.Handler
	TriageHandler       *triage.Handler
	ChatHandler         *chat.Handler
	EmergencyHandler    *emergency.Handler
	AppointmentsHandler *appointments.Handler
	MetricsHandler      http.Handler
	CORSAllowedOrigins  []string
}

// New creates a new Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(httpmiddleware.ResponseHeaders)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(api chi.Router) {
		if cfg.AccountHandler != nil {
			api.Route("/auth", func(auth chi.Router) {
				auth.Post("/signup", cfg.AccountHandler.SignUp)
				auth.Post("/signin", cfg.AccountHandler.SignIn)
				auth.Post("/signout", cfg.AccountHandler.SignOut)
				auth.Get("/session", cfg.AccountHandler.Session)
			})
		}

		if cfg.DirectoryHandler != nil {
			api.Get("/doctors", cfg.DirectoryHandler.ListDoctors)
			api.Get("/doctors/{doctorID}", cfg.DirectoryHandler.GetDoctor)
		}

		if cfg.TriageHandler != nil {
			api.Post("/symptom-check", cfg.TriageHandler.Analyze)
			api.Get("/symptom-check/history", cfg.TriageHandler.History)
			api.Post("/medical-images", cfg.TriageHandler.UploadImage)
		}

		if cfg.AppointmentsHandler != nil {
			api.Route("/appointments", func(appt chi.Router) {
				appt.Post("/", cfg.AppointmentsHandler.Book)
				appt.Get("/", cfg.AppointmentsHandler.List)
				appt.Delete("/{appointmentID}", cfg.AppointmentsHandler.Cancel)
			})
		}

		if cfg.EmergencyHandler != nil {
			api.Post("/emergency", cfg.EmergencyHandler.Escalate)
			api.Get("/emergency/pending", cfg.EmergencyHandler.ListPending)
		}

		if cfg.ChatHandler != nil {
			api.Route("/chat", func(c chi.Router) {
				c.Get("/ws", cfg.ChatHandler.HandleWebSocket)
				c.Post("/message", cfg.ChatHandler.HandleMessage)
				c.Get("/history", cfg.ChatHandler.HandleHistory)
			})
		}
	})

	return r
}
