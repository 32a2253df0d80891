package backend

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned for operations that have no meaningful
// local fallback when the hosted backend is not configured.
var ErrNotConfigured = errors.New("backend: service not configured")

// TimeoutError reports that an operation exceeded its allotted window.
// The operation is cancelled at the transport level; its late completion
// can never be observed by callers or mutate shared state.
type TimeoutError struct {
	Op      string
	Message string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("backend: %s: %s", e.Op, e.Message)
}

// Timeout lets callers detect the class via net.Error-style checks.
func (e *TimeoutError) Timeout() bool { return true }

// UpstreamError reports a failure the service itself returned. It is
// propagated to callers as-is.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("backend: upstream error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend: upstream error: %s", e.Message)
}

// IsTimeout reports whether err is a facade timeout.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}
