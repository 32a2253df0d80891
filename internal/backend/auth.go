package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Yogitha-Turumella/MEDASSIST/internal/records"
	"github.com/Yogitha-Turumella/MEDASSIST/pkg/logging"
)

// tokenResponse mirrors the auth endpoint's token grant payload.
type tokenResponse struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	ExpiresIn    int              `json:"expires_in"`
	User         records.AuthUser `json:"user"`
}

type authErrorResponse struct {
	Message     string `json:"msg"`
	Description string `json:"error_description"`
}

func authErrorMessage(body []byte) string {
	var e authErrorResponse
	if err := json.Unmarshal(body, &e); err == nil {
		if e.Message != "" {
			return e.Message
		}
		if e.Description != "" {
			return e.Description
		}
	}
	return "authentication request rejected"
}

// SignUp registers a new account with optional user metadata.
func (c *client) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*records.Session, error) {
	payload, err := json.Marshal(map[string]any{
		"email":    email,
		"password": password,
		"data":     metadata,
	})
	if err != nil {
		return nil, &UpstreamError{Message: "marshal sign-up request: " + err.Error()}
	}

	body, status, err := c.send(ctx, timeoutSignUp, "sign_up",
		"Sign-up is taking too long. Please check your connection and try again.",
		http.MethodPost, c.baseURL+"/auth/v1/signup", payload, nil)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, &UpstreamError{Status: status, Message: authErrorMessage(body)}
	}

	return c.adoptSession(ctx, body)
}

// SignIn authenticates with the password grant and loads the profile
// matching the account's user type. Profile-load failure never fails the
// sign-in; the session degrades to "authenticated, profile unknown".
func (c *client) SignIn(ctx context.Context, email, password string) (*records.Session, error) {
	payload, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, &UpstreamError{Message: "marshal sign-in request: " + err.Error()}
	}

	body, status, err := c.send(ctx, timeoutSignIn, "sign_in",
		"Sign-in timed out. Please check your connection and try again.",
		http.MethodPost, c.baseURL+"/auth/v1/token?grant_type=password", payload, nil)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, &UpstreamError{Status: status, Message: authErrorMessage(body)}
	}

	return c.adoptSession(ctx, body)
}

// adoptSession decodes a token grant, derives the user type, loads the
// profile, and installs the session as current.
func (c *client) adoptSession(ctx context.Context, body []byte) (*records.Session, error) {
	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, &UpstreamError{Message: "decode auth response: " + err.Error()}
	}

	sess := &records.Session{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second),
		User:         tr.User,
	}
	sess.UserType = deriveUserType(tr.AccessToken, tr.User.Metadata, c.logger)

	if profile, err := c.Profile(ctx, sess.UserType, tr.User.ID); err != nil {
		c.logger.Warn("profile load failed; continuing without profile",
			"user_id", tr.User.ID, "user_type", sess.UserType, "error", err)
	} else if profile != nil {
		sess.Profile = profile
	}

	c.mu.Lock()
	c.session = sess
	c.mu.Unlock()

	c.logger.Info("signed in", "user_id", tr.User.ID, "user_type", sess.UserType)
	return sess, nil
}

// SignOut always clears local session state first; the remote revoke
// failure, if any, is reported only afterwards. UI consistency wins over
// strict remote confirmation.
func (c *client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	token := ""
	if c.session != nil {
		token = c.session.AccessToken
	}
	c.session = nil
	c.mu.Unlock()

	if token == "" {
		return nil
	}

	hdr := http.Header{"Authorization": []string{"Bearer " + token}}
	body, status, err := c.send(ctx, timeoutLight, "sign_out",
		"Sign-out did not complete in time; your local session was cleared.",
		http.MethodPost, c.baseURL+"/auth/v1/logout", nil, hdr)
	if err != nil {
		return err
	}
	if status >= 400 {
		return &UpstreamError{Status: status, Message: authErrorMessage(body)}
	}
	return nil
}

// Session returns the locally held session, revalidating it against the
// auth endpoint. Signed-out callers get (nil, nil).
func (c *client) Session(ctx context.Context) (*records.Session, error) {
	c.mu.RLock()
	sess := c.session
	c.mu.RUnlock()
	if sess == nil {
		return nil, nil
	}

	body, status, err := c.send(ctx, timeoutSession, "session",
		"Could not verify your session in time. Please try again.",
		http.MethodGet, c.baseURL+"/auth/v1/user", nil, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		// Token expired server-side; drop the stale local session.
		c.mu.Lock()
		c.session = nil
		c.mu.Unlock()
		return nil, nil
	}
	if status >= 400 {
		return nil, &UpstreamError{Status: status, Message: authErrorMessage(body)}
	}
	return sess, nil
}

// CurrentUser fetches the authenticated user record.
func (c *client) CurrentUser(ctx context.Context) (*records.AuthUser, error) {
	body, status, err := c.send(ctx, timeoutLight, "current_user",
		"Could not load your account in time. Please try again.",
		http.MethodGet, c.baseURL+"/auth/v1/user", nil, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		return nil, nil
	}
	if status >= 400 {
		return nil, &UpstreamError{Status: status, Message: authErrorMessage(body)}
	}

	var user records.AuthUser
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, &UpstreamError{Message: "decode user response: " + err.Error()}
	}
	return &user, nil
}

// Profile loads the profile row for a user type tag.
func (c *client) Profile(ctx context.Context, userType, userID string) (json.RawMessage, error) {
	resource := ResourcePatients
	if userType == "doctor" {
		resource = ResourceDoctors
	}
	return c.SelectOne(ctx, Query{
		Resource: resource,
		Filters:  map[string]string{"user_id": "eq." + userID},
		Limit:    1,
	})
}

// deriveUserType reads user_type from the access token's user_metadata
// claim, falling back to the auth record metadata, defaulting to
// "patient". The default is logged: a doctor account missing its
// metadata would otherwise be silently misclassified.
func deriveUserType(accessToken string, metadata map[string]any, logger *logging.Logger) string {
	if t, ok := metadata["user_type"].(string); ok && t != "" {
		return t
	}

	claims := jwt.MapClaims{}
	// The token was just issued by the service over TLS; claims are
	// read without local signature verification.
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err == nil {
		if meta, ok := claims["user_metadata"].(map[string]any); ok {
			if t, ok := meta["user_type"].(string); ok && t != "" {
				return t
			}
		}
	}

	logger.Warn("user_type metadata missing; defaulting to patient")
	return "patient"
}
