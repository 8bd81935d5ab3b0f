// Package shield provides the HTTP middleware stack for the loopback
// message endpoint.
//
//	r := chi.NewRouter()
//	for _, mw := range shield.DefaultAPIStack(64 * 1024) {
//	    r.Use(mw)
//	}
package shield

import "net/http"

type contextKey string

// LoggerKey is the context key for the per-request structured logger.
const LoggerKey contextKey = "shield_logger"

// DefaultAPIStack returns the middleware for a JSON API:
// SecurityHeaders → MaxJSONBody → RequestID.
func DefaultAPIStack(maxBody int64) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		SecurityHeaders(DefaultHeaders()),
		MaxJSONBody(maxBody),
		RequestID,
	}
}
