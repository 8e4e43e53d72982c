// Package tenant binds a TenantContext to a request for the duration of
// its processing. The binding is an explicit value threaded through
// context.Context, never a thread-local: thread-locals break under
// cooperative-async scheduling and are a known source of tenant leakage
// across requests.
package tenant

import (
	"context"
	"regexp"
)

// IDPattern is the syntax a tenant identifier must match.
var IDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,50}$`)

// DefaultTenantID is used when no resolution source yields a tenant.
const DefaultTenantID = "default"

// Context is the per-request tenant binding.
type Context struct {
	TenantID     string
	BusinessUnit string
}

// Valid reports whether c.TenantID matches IDPattern.
func (c Context) Valid() bool {
	return IDPattern.MatchString(c.TenantID)
}

type contextKey int

const tenantContextKey contextKey = iota

// WithContext returns a copy of ctx carrying tc. Binding happens once, at
// ingress.
func WithContext(ctx context.Context, tc Context) context.Context {
	return context.WithValue(ctx, tenantContextKey, tc)
}

// FromContext retrieves the bound Context, or the zero value and false if
// none was bound. Every downstream component that needs tenant scoping
// reads it through this accessor rather than its own copy.
func FromContext(ctx context.Context) (Context, bool) {
	tc, ok := ctx.Value(tenantContextKey).(Context)
	return tc, ok
}

// IDFromContext is a convenience accessor returning just the tenant id,
// or "" if none is bound.
func IDFromContext(ctx context.Context) string {
	tc, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return tc.TenantID
}

// Clear returns a copy of ctx whose tenant binding is the zero Context:
// FromContext then reports ok with an empty TenantID. No gateway
// component calls it; Middleware's binding ends with the derived
// request context.
func Clear(ctx context.Context) context.Context {
	return context.WithValue(ctx, tenantContextKey, Context{})
}
