package api

import (
	"log"
	"net"
	"net/http"
)

// IPWhitelist rejects requests from addresses outside the allowlist. An empty
// allowlist disables the check.
func IPWhitelist(allowed []string) func(http.Handler) http.Handler {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, ip := range allowed {
		allowedSet[ip] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(allowedSet) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			ip := r.RemoteAddr
			if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
				ip = host
			}
			if _, ok := allowedSet[ip]; !ok {
				log.Printf("Rejected request from non-whitelisted IP %s", ip)
				writeError(w, http.StatusForbidden, "Access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// APIKeyAuth requires the configured key in the X-API-Key header. An empty
// configured key disables the check.
func APIKeyAuth(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" {
				next.ServeHTTP(w, r)
				return
			}
			if r.Header.Get("X-API-Key") != apiKey {
				writeError(w, http.StatusUnauthorized, "Invalid or missing API key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
