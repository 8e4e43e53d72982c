package tenant

import (
	"encoding/json"
	"net/http"
)

// Middleware resolves the tenant for each request and binds it to a
// context derived for the handler chain. The incoming request's context
// is not modified, so the binding ends with that handler chain; Clear
// is not called.
func Middleware(resolver *Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tc, ok := resolver.Resolve(r)
			if !ok {
				writeTenantInvalid(w, tc.TenantID)
				return
			}

			ctx := WithContext(r.Context(), tc)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeTenantInvalid(w http.ResponseWriter, candidate string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"kind":    "TenantInvalid",
		"message": "tenant identifier \"" + candidate + "\" does not match the required syntax",
	})
}
