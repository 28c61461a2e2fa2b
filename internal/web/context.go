package web

import (
	"net"
	"net/http"

	"github.com/JonMunkholm/listabob/internal/core"
)

// withClient stores the caller's IP and User-Agent for service logs.
// It runs after TrustedRealIP so RemoteAddr is already resolved.
func withClient(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := core.ContextWithClient(r.Context(), clientIP(r), r.UserAgent())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
