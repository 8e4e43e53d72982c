// Package auth authenticates and authorizes callers of the gateway's HTTP
// surface: tenants submitting payments and operators reaching the admin
// routes.
//
// Authentication composes a JWT/JWKS validator and an API-key lookup behind
// a single CompositeAuthenticator, so a deployment can enable either or
// both without ingress.Authenticate knowing which one resolved the caller.
// Authorization is a SimpleRBACAuthorizer gating the admin surface behind a
// configured role; neither mechanism is protocol-specific, so both compose
// with any transport that can produce an AuthRequest.
package auth
