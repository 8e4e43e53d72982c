// Package auth threads the caller Identity that ingress.Authenticate
// resolves through a request's context, so downstream handlers and
// middleware (RequireRole, the tenant Resolver's credential fallback)
// can read it without re-parsing the request.
package auth

import (
	"context"
)

// contextKey namespaces auth's context values against every other
// package threading its own values through the same request context.
type contextKey int

const (
	identityKey contextKey = iota
)

// WithIdentity returns a new context with the given identity attached.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext retrieves the identity from the context.
// Returns nil if no identity is present.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey).(*Identity)
	return id
}

// PrincipalFromContext retrieves the principal from the context.
// Returns empty string if no identity is present.
func PrincipalFromContext(ctx context.Context) string {
	id := IdentityFromContext(ctx)
	if id == nil {
		return ""
	}
	return id.Principal
}

// TenantIDFromContext retrieves the tenant ID from the context.
// Returns empty string if no identity is present or tenant is not set.
func TenantIDFromContext(ctx context.Context) string {
	id := IdentityFromContext(ctx)
	if id == nil {
		return ""
	}
	return id.TenantID
}
