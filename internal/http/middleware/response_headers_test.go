package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func serveWithHeaders(t *testing.T, path string) http.Header {
	t.Helper()
	handler := ResponseHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec.Header()
}

func TestSecurityHeadersOnEveryPath(t *testing.T) {
	for _, path := range []string{"/", "/api/v1/doctors", "/assets/app.js"} {
		h := serveWithHeaders(t, path)
		if h.Get("X-Frame-Options") != "DENY" {
			t.Errorf("%s: missing frame denial", path)
		}
		if h.Get("X-Content-Type-Options") != "nosniff" {
			t.Errorf("%s: missing nosniff", path)
		}
		if h.Get("Referrer-Policy") == "" {
			t.Errorf("%s: missing referrer policy", path)
		}
		if h.Get("Permissions-Policy") == "" {
			t.Errorf("%s: missing permissions policy", path)
		}
	}
}

func TestCacheControlRules(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"/assets/index-abc123.js", cacheImmutable},
		{"/images/logo.png", cacheImmutable},
		{"/fonts/inter.woff2", cacheImmutable},
		{"/main.css", cacheImmutable},
		{"/", cacheShort},
		{"/index.html", cacheShort},
		{"/api/v1/doctors", cacheNone},
		{"/api", cacheNone},
	}

	for _, tc := range cases {
		if got := serveWithHeaders(t, tc.path).Get("Cache-Control"); got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.path, got, tc.want)
		}
	}
}
