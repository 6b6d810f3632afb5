// Package tenant carries the account scope of a request through a context.
package tenant

import "context"

// Header is the HTTP header that names the tenant on every request.
const Header = "X-Tenant-ID"

type contextKey struct{}

// WithID returns a copy of ctx scoped to tenant id.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the tenant id stored in ctx, or fallback when there is none.
func FromContext(ctx context.Context, fallback string) string {
	if id, ok := ctx.Value(contextKey{}).(string); ok && id != "" {
		return id
	}
	return fallback
}
