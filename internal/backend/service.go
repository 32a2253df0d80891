// Package backend is the remote-access facade over the hosted
// backend-as-a-service (auth, row storage, object storage, serverless
// functions). UI-facing code depends only on the Service interface and
// never on whether the external service is reachable or configured.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/Yogitha-Turumella/MEDASSIST/internal/config"
	"github.com/Yogitha-Turumella/MEDASSIST/internal/records"
)

// Resource names exposed by the hosted backend.
const (
	ResourceDoctors         = "doctors"
	ResourcePatients        = "patients"
	ResourceAppointments    = "appointments"
	ResourceSymptomAnalyses = "symptom_analyses"
	ResourceChatSessions    = "chat_sessions"
	ResourceMedicalImages   = "medical_images"
	ResourceEmergencyAlerts = "emergency_alerts"
)

// Serverless functions exposed by the hosted backend.
const (
	FnSymptomAnalysis     = "ai-symptom-analysis"
	FnSentimentAnalysis   = "sentiment-analysis"
	FnEmergencyEscalation = "emergency-escalation"
)

// Query describes a row read over a named resource.
type Query struct {
	Resource string
	// Filters maps column to a PostgREST filter expression, e.g.
	// "verified" -> "eq.true".
	Filters map[string]string
	// Order is a PostgREST order clause, e.g. "rating.desc".
	Order string
	Limit int
}

// CacheKey is the canonical serialization of the query shape, used as
// the result-cache and coalescing key. Filter order does not matter.
func (q Query) CacheKey() string {
	keys := make([]string, 0, len(q.Filters))
	for k := range q.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(q.Resource)
	for _, k := range keys {
		fmt.Fprintf(&sb, "|%s=%s", k, q.Filters[k])
	}
	if q.Order != "" {
		fmt.Fprintf(&sb, "|order=%s", q.Order)
	}
	if q.Limit > 0 {
		fmt.Fprintf(&sb, "|limit=%d", q.Limit)
	}
	return sb.String()
}

// Service is the uniform, fail-soft entry point for all backend
// operations. Two variants exist, selected once at construction:
// the configured HTTP client and the offline stand-in.
type Service interface {
	// Configured reports which variant is active.
	Configured() bool

	// SignUp registers a new account. Metadata is stored as user
	// metadata on the auth record (e.g. user_type).
	SignUp(ctx context.Context, email, password string, metadata map[string]any) (*records.Session, error)
	// SignIn authenticates and loads the matching profile. Profile-load
	// failure is swallowed; the session is returned with a nil profile.
	SignIn(ctx context.Context, email, password string) (*records.Session, error)
	// SignOut clears local session state unconditionally, then reports
	// the remote failure if the revoke call did not succeed.
	SignOut(ctx context.Context) error
	// Session returns the current session, or (nil, nil) when signed out.
	Session(ctx context.Context) (*records.Session, error)
	// CurrentUser fetches the authenticated user from the service.
	CurrentUser(ctx context.Context) (*records.AuthUser, error)
	// Profile loads the profile record matching a user type tag.
	Profile(ctx context.Context, userType, userID string) (json.RawMessage, error)

	// Select reads rows. Offline: empty slice, nil error.
	Select(ctx context.Context, q Query) ([]json.RawMessage, error)
	// SelectOne reads a single row, (nil, nil) when absent.
	SelectOne(ctx context.Context, q Query) (json.RawMessage, error)
	// Insert writes a row. Offline: a synthesized placeholder record
	// carrying the input payload under a sentinel identifier.
	Insert(ctx context.Context, resource string, payload any) (json.RawMessage, error)
	Update(ctx context.Context, resource, id string, payload any) (json.RawMessage, error)
	Delete(ctx context.Context, resource, id string) error

	// Upload stores an object and returns its public URL. Offline: a
	// placeholder URL embedding the original file name.
	Upload(ctx context.Context, bucket, path string, data []byte, contentType string) (string, error)

	// Invoke calls a serverless function with a JSON body and bearer
	// auth. A success:false envelope surfaces as *UpstreamError.
	Invoke(ctx context.Context, name string, payload any) (json.RawMessage, error)

	// Ping is the lightweight keep-alive probe.
	Ping(ctx context.Context) error
}

// New selects the facade variant once, from explicit configuration.
// Callers hold the interface for the process lifetime.
func New(cfg *config.Config, opts ...Option) Service {
	o := applyOptions(opts)
	if !cfg.ServiceConfigured("supabase") {
		o.logger.Warn("backend not configured; running with offline fallbacks")
		return newOffline(o.logger)
	}
	return newClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, o)
}
