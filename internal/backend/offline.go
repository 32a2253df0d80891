package backend

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/Yogitha-Turumella/MEDASSIST/internal/records"
	"github.com/Yogitha-Turumella/MEDASSIST/pkg/logging"
)

// offline is the facade variant selected when the hosted backend is not
// configured. Every operation returns a deterministic local fallback so
// the application stays fully navigable in a demo environment. No
// operation ever touches the network.
type offline struct {
	logger *logging.Logger
}

func newOffline(logger *logging.Logger) *offline {
	return &offline{logger: logger}
}

func (o *offline) Configured() bool { return false }

func (o *offline) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*records.Session, error) {
	return nil, ErrNotConfigured
}

func (o *offline) SignIn(ctx context.Context, email, password string) (*records.Session, error) {
	return nil, ErrNotConfigured
}

func (o *offline) SignOut(ctx context.Context) error { return nil }

func (o *offline) Session(ctx context.Context) (*records.Session, error) { return nil, nil }

func (o *offline) CurrentUser(ctx context.Context) (*records.AuthUser, error) { return nil, nil }

// Profile has no meaningful fallback: callers need to know the service
// is unusable rather than treat an empty profile as real.
func (o *offline) Profile(ctx context.Context, userType, userID string) (json.RawMessage, error) {
	return nil, ErrNotConfigured
}

func (o *offline) Select(ctx context.Context, q Query) ([]json.RawMessage, error) {
	o.logger.Debug("offline select; returning empty result", "resource", q.Resource)
	return []json.RawMessage{}, nil
}

func (o *offline) SelectOne(ctx context.Context, q Query) (json.RawMessage, error) {
	return nil, nil
}

// Insert synthesizes a placeholder record carrying the input payload
// under a sentinel identifier, logged locally.
func (o *offline) Insert(ctx context.Context, resource string, payload any) (json.RawMessage, error) {
	record := map[string]any{}
	if data, err := json.Marshal(payload); err == nil {
		_ = json.Unmarshal(data, &record)
	}
	record["id"] = "demo-" + uuid.NewString()

	out, err := json.Marshal(record)
	if err != nil {
		return nil, &UpstreamError{Message: "marshal placeholder record: " + err.Error()}
	}
	o.logger.Info("offline insert; synthesized placeholder record", "resource", resource, "id", record["id"])
	return out, nil
}

func (o *offline) Update(ctx context.Context, resource, id string, payload any) (json.RawMessage, error) {
	record := map[string]any{}
	if data, err := json.Marshal(payload); err == nil {
		_ = json.Unmarshal(data, &record)
	}
	record["id"] = id

	out, err := json.Marshal(record)
	if err != nil {
		return nil, &UpstreamError{Message: "marshal placeholder record: " + err.Error()}
	}
	o.logger.Info("offline update; echoing payload", "resource", resource, "id", id)
	return out, nil
}

func (o *offline) Delete(ctx context.Context, resource, id string) error {
	o.logger.Info("offline delete; nothing to do", "resource", resource, "id", id)
	return nil
}

// Upload returns a placeholder URL embedding the original file name.
func (o *offline) Upload(ctx context.Context, bucket, path string, data []byte, contentType string) (string, error) {
	url := "https://demo.invalid/storage/" + bucket + "/" + path
	o.logger.Info("offline upload; returning placeholder URL", "bucket", bucket, "path", path)
	return url, nil
}

func (o *offline) Invoke(ctx context.Context, name string, payload any) (json.RawMessage, error) {
	o.logger.Debug("offline invoke; returning empty payload", "function", name)
	return json.RawMessage(`{}`), nil
}

func (o *offline) Ping(ctx context.Context) error { return nil }
