package backend

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"
)

// Upload stores an object in the given bucket and returns its public
// URL. Object uploads carry raw bytes, so the shared JSON send helper
// does not apply here.
func (c *client) Upload(ctx context.Context, bucket, path string, data []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeoutInvoke)
	defer cancel()

	u := c.baseURL + "/storage/v1/object/" + bucket + "/" + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return "", &UpstreamError{Message: "create upload request: " + err.Error()}
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+c.accessToken())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.metrics.ObserveCall("upload", "timeout", time.Since(start).Seconds())
			return "", &TimeoutError{Op: "upload", Message: "Upload took too long. Please check your connection and try again."}
		}
		c.metrics.ObserveCall("upload", "error", time.Since(start).Seconds())
		return "", &UpstreamError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		c.metrics.ObserveCall("upload", "upstream_error", time.Since(start).Seconds())
		return "", &UpstreamError{Status: resp.StatusCode, Message: restErrorMessage(body)}
	}

	c.metrics.ObserveCall("upload", "ok", time.Since(start).Seconds())
	return c.PublicURL(bucket, path), nil
}

// PublicURL returns the public object URL for a stored file.
func (c *client) PublicURL(bucket, path string) string {
	return c.baseURL + "/storage/v1/object/public/" + bucket + "/" + path
}
