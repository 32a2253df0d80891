package backend

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/Yogitha-Turumella/MEDASSIST/internal/observability/metrics"
	"github.com/Yogitha-Turumella/MEDASSIST/internal/records"
	"github.com/Yogitha-Turumella/MEDASSIST/pkg/logging"
)

var tracer = otel.Tracer("medassist/backend")

// Per-operation timeout windows. Each network-bound call runs under an
// explicit deadline; the transport request is cancelled when it expires.
const (
	timeoutLight   = 5 * time.Second  // sign-out, current user, row reads, ping
	timeoutSession = 8 * time.Second  // session validation
	timeoutInvoke  = 10 * time.Second // serverless function calls
	timeoutSignIn  = 12 * time.Second
	timeoutSignUp  = 15 * time.Second
)

// Option configures the facade.
type Option func(*options)

type options struct {
	logger     *logging.Logger
	httpClient *http.Client
	metrics    *metrics.FacadeMetrics
}

// WithLogger sets a custom logger.
func WithLogger(logger *logging.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithMetrics attaches facade metrics. Nil is safe.
func WithMetrics(m *metrics.FacadeMetrics) Option {
	return func(o *options) { o.metrics = m }
}

func applyOptions(opts []Option) *options {
	o := &options{
		logger: logging.Default(),
		// No client-level timeout: each operation carries its own
		// context deadline.
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logging.Default()
	}
	return o
}

// client is the configured facade variant talking to the hosted service.
type client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	logger     *logging.Logger
	metrics    *metrics.FacadeMetrics

	mu      sync.RWMutex
	session *records.Session
}

func newClient(baseURL, anonKey string, o *options) *client {
	return &client{
		baseURL:    baseURL,
		anonKey:    anonKey,
		httpClient: o.httpClient,
		logger:     o.logger,
		metrics:    o.metrics,
	}
}

func (c *client) Configured() bool { return true }

// accessToken returns the bearer token for requests: the signed-in
// user's token when present, the anonymous key otherwise.
func (c *client) accessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session != nil && c.session.AccessToken != "" {
		return c.session.AccessToken
	}
	return c.anonKey
}

// send performs one HTTP exchange under the operation's deadline and
// maps transport failures into the facade error taxonomy. timeoutMsg is
// the operation-specific message surfaced on deadline expiry.
func (c *client) send(ctx context.Context, timeout time.Duration, op, timeoutMsg, method, url string, body []byte, header http.Header) ([]byte, int, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, 0, &UpstreamError{Message: "create request: " + err.Error()}
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+c.accessToken())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.metrics.ObserveCall(op, "timeout", time.Since(start).Seconds())
			c.logger.Warn("backend call timed out", "op", op, "timeout", timeout.String())
			return nil, 0, &TimeoutError{Op: op, Message: timeoutMsg}
		}
		c.metrics.ObserveCall(op, "error", time.Since(start).Seconds())
		return nil, 0, &UpstreamError{Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.ObserveCall(op, "error", time.Since(start).Seconds())
		return nil, resp.StatusCode, &UpstreamError{Status: resp.StatusCode, Message: "read response: " + err.Error()}
	}

	status := "ok"
	if resp.StatusCode >= 400 {
		status = "upstream_error"
	}
	c.metrics.ObserveCall(op, status, time.Since(start).Seconds())
	return respBody, resp.StatusCode, nil
}

// Ping is a lightweight reachability probe used by the keep-alive worker.
func (c *client) Ping(ctx context.Context) error {
	_, status, err := c.send(ctx, timeoutLight, "ping",
		"Backend did not answer the keep-alive ping in time.",
		http.MethodHead, c.baseURL+"/rest/v1/", nil, nil)
	if err != nil {
		return err
	}
	// Any HTTP answer means the instance is awake; auth-level rejections
	// still count.
	if status >= 500 {
		return &UpstreamError{Status: status, Message: "keep-alive ping rejected"}
	}
	return nil
}
