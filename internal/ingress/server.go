// Package ingress implements the gateway's HTTP surface: the inbound
// payments endpoint wrapped by the Idempotency Gate and Tenant
// Resolver, plus the administrative health/circuit/UETR-journey
// endpoints named in spec.md §6. Grounded on wisbric-nightowl's and
// jordigilh-kubernaut's go-chi/chi routers.
package ingress

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/fintechrail/paygate/internal/auth"
	"github.com/fintechrail/paygate/internal/flow"
	"github.com/fintechrail/paygate/internal/health"
	"github.com/fintechrail/paygate/internal/idempotency"
	"github.com/fintechrail/paygate/internal/observe"
	"github.com/fintechrail/paygate/internal/tenant"
)

// Deps wires every collaborator the HTTP surface needs. Admin is
// optional: when nil, the /admin routes, /health/services and /health
// are not mounted; when set, all of them are mounted (/health only if
// Aggregator is also set), whichever AdminHandlers fields are nil.
type Deps struct {
	Logger             observe.Logger
	Engine             *flow.Engine
	IdempotencyGate    *idempotency.Gate
	TenantResolver     *tenant.Resolver
	Authenticator      auth.Authenticator
	Authorizer         auth.Authorizer
	Admin              *AdminHandlers
	Aggregator         *health.Aggregator
	ResponseIdentifier ResponseIdentifier
	ResponseCorrelator ResponseCorrelator
	CORSOrigins        []string
}

// NewServer builds the chi.Mux exposing the payments endpoint and the
// administrative surface.
func NewServer(deps Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(Logging(deps.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins(deps.CORSOrigins),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID", "X-Tenant-ID", IdempotencyKeyHeader, MessageTypeHeader, PaymentTypeHeader, LocalInstrumentCodeHeader, ResponseModeHeader},
		ExposedHeaders:   []string{"X-Request-ID", idempotency.ReplayHeader, idempotency.OriginalRequestTimeHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if deps.Aggregator != nil {
		r.Get("/healthz", health.LivenessHandler())
		r.Get("/readyz", health.ReadinessHandler(deps.Aggregator))
	} else {
		r.Get("/healthz", handleHealthz)
	}

	paymentsHandler := &PaymentsHandler{Engine: deps.Engine, Gate: deps.IdempotencyGate}

	r.Route("/tenants/{tenantId}", func(tr chi.Router) {
		tr.Use(Authenticate(deps.Authenticator))
		tr.Use(tenant.Middleware(deps.TenantResolver))
		tr.Post("/payments", paymentsHandler.ServeHTTP)

		if deps.ResponseIdentifier != nil && deps.ResponseCorrelator != nil {
			schemeHandler := &SchemeResponseHandler{
				Engine:     deps.Engine,
				Identifier: deps.ResponseIdentifier,
				Correlator: deps.ResponseCorrelator,
				Logger:     deps.Logger,
			}
			tr.Post("/scheme-messages", schemeHandler.ServeHTTP)
		}
	})

	if deps.Admin != nil {
		r.Route("/admin", func(ar chi.Router) {
			ar.Use(Authenticate(deps.Authenticator))
			ar.Use(RequireRole(deps.Authorizer, "admin", "access"))
			ar.Post("/circuits/{service}/reset", deps.Admin.HandleCircuitReset)
			ar.With(tenant.Middleware(deps.TenantResolver)).Get("/uetr/{uetr}", deps.Admin.HandleUETRJourney)
		})
		r.Get("/health/services", deps.Admin.HandleHealthServices)
		if deps.Aggregator != nil {
			r.Get("/health", health.DetailedHandler(deps.Aggregator))
		}
	}

	return r
}

func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	Respond(w, http.StatusOK, map[string]string{"status": "ok"})
}
