// internal/middleware/security.go
//
// Security-header middleware for the JSON API.
//
// Injects on every response:
//
//   • X-Frame-Options         –  click-jacking defence
//   • X-Content-Type-Options  –  MIME-sniffing defence
//   • Referrer-Policy         –  drops path/query from Referer
//   • Cache-Control           –  `no-store` for /api/ responses only
//
// Notes
// -----
// • Headers are set *before* next.ServeHTTP, because a handler that writes
//   its body first would otherwise flush the header map without them.
// • The middleware never overwrites a value a handler sets later.

package middleware

import (
	"net/http"
	"strings"
)

// Security sets security headers for every response.
func Security(next http.Handler) http.Handler {
	const (
		xfo   = "DENY"
		nosn  = "nosniff"
		refer = "strict-origin-when-cross-origin"
	)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Frame-Options", xfo)
		h.Set("X-Content-Type-Options", nosn)
		h.Set("Referrer-Policy", refer)
		if strings.HasPrefix(r.URL.Path, "/api/") {
			h.Set("Cache-Control", "no-store")
		}
		next.ServeHTTP(w, r)
	})
}
