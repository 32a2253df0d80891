package middleware

import (
	"net/http"
	"strings"
)

// Cache-Control values mirrored from the hosting layer's path rules.
const (
	cacheImmutable = "public, max-age=31536000, immutable"
	cacheShort     = "public, max-age=0, must-revalidate"
	cacheNone      = "no-store"
)

var staticPrefixes = []string{"/assets/", "/images/", "/fonts/"}

var staticExtensions = []string{
	".js", ".css", ".woff", ".woff2", ".ttf",
	".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico", ".webp",
}

// ResponseHeaders applies the hosting cache rules and the fixed
// security header set to every response: long-lived immutable caching
// for fingerprinted static assets, revalidation for HTML, and no
// caching at all for API responses.
func ResponseHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()

		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")

		h.Set("Cache-Control", cacheControlFor(r.URL.Path))

		next.ServeHTTP(w, r)
	})
}

func cacheControlFor(path string) string {
	if strings.HasPrefix(path, "/api/") || path == "/api" {
		return cacheNone
	}
	for _, prefix := range staticPrefixes {
		if strings.HasPrefix(path, prefix) {
			return cacheImmutable
		}
	}
	for _, ext := range staticExtensions {
		if strings.HasSuffix(path, ext) {
			return cacheImmutable
		}
	}
	return cacheShort
}
