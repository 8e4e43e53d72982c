package ingress

import (
	"net/http"

	"github.com/fintechrail/paygate/internal/auth"
)

// RequireRole gates a route behind authorizer, built as an
// auth.SimpleRBACAuthorizer over the configured admin role. A nil
// authorizer is a no-op — the same "absent config disables the gate"
// convention Authenticate uses, since a deployment that never configured
// an authenticator has no Identity to authorize in the first place.
//
// resource and action are passed through to auth.AuthzRequest verbatim;
// the admin surface uses a single ("admin", "access") pair since none of
// its routes need finer-grained permissions than "is this caller an
// operator".
func RequireRole(authorizer auth.Authorizer, resource, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if authorizer == nil {
				next.ServeHTTP(w, r)
				return
			}

			identity := auth.IdentityFromContext(r.Context())
			req := &auth.AuthzRequest{Subject: identity, Resource: resource, Action: action, ResourceType: "admin"}
			if err := authorizer.Authorize(r.Context(), req); err != nil {
				Respond(w, http.StatusForbidden, map[string]string{"error": "forbidden", "detail": err.Error()})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
