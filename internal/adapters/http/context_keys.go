package http

import (
	"context"
	"net/http"

	"rp-pay-dashboard/internal/tenant"
)

// contextKey is a typed key for request-scoped values.
type contextKey string

// sessionContextKey holds the browser session id.
const sessionContextKey contextKey = "session_id"

// SessionHeader names the browser session on every API request.
const SessionHeader = "X-Session-ID"

const anonymousSession = "anonymous"

// RequestScope copies the tenant and session headers into the request context.
// Requests without a tenant header use defaultTenant.
func RequestScope(defaultTenant string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if id := r.Header.Get(tenant.Header); id != "" {
				ctx = tenant.WithID(ctx, id)
			} else if defaultTenant != "" {
				ctx = tenant.WithID(ctx, defaultTenant)
			}
			if id := r.Header.Get(SessionHeader); id != "" {
				ctx = context.WithValue(ctx, sessionContextKey, id)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionID(ctx context.Context) string {
	if id, ok := ctx.Value(sessionContextKey).(string); ok && id != "" {
		return id
	}
	return anonymousSession
}
