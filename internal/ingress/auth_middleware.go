package ingress

import (
	"net/http"

	"github.com/fintechrail/paygate/internal/auth"
	"github.com/fintechrail/paygate/internal/gatewayerr"
)

// Authenticate runs authenticator against every request, binding the
// resulting Identity into the request context when authentication
// succeeds. A nil authenticator (no auth configured) is a no-op,
// matching the spec's "optional: authentication credential carrying
// tenant claims" — credentials supplement, never replace, the header
// and path-based tenant resolution in internal/tenant.
func Authenticate(authenticator auth.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if authenticator == nil {
				next.ServeHTTP(w, r)
				return
			}

			req := &auth.AuthRequest{Headers: r.Header}
			if !authenticator.Supports(r.Context(), req) {
				next.ServeHTTP(w, r)
				return
			}

			result, err := authenticator.Authenticate(r.Context(), req)
			if err != nil {
				RespondGatewayError(w, gatewayerr.Wrap(gatewayerr.Internal, RequestIDFromContext(r.Context()), err))
				return
			}
			if result == nil || !result.Authenticated {
				next.ServeHTTP(w, r)
				return
			}

			ctx := auth.WithIdentity(r.Context(), result.Identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
