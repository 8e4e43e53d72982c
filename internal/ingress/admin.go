package ingress

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fintechrail/paygate/internal/auth"
	"github.com/fintechrail/paygate/internal/datastore"
	"github.com/fintechrail/paygate/internal/gatewayerr"
	"github.com/fintechrail/paygate/internal/health"
	"github.com/fintechrail/paygate/internal/monitor"
	"github.com/fintechrail/paygate/internal/observe"
	"github.com/fintechrail/paygate/internal/resiliency"
	"github.com/fintechrail/paygate/internal/tenant"
)

// AdminHandlers serves the read-mostly administrative surface named in
// spec.md §6: service health, per-service circuit reset, and UETR
// lookup/journey.
type AdminHandlers struct {
	Aggregator *health.Aggregator
	Monitor    *monitor.Monitor
	Breakers   *resiliency.Registry
	Journeys   *datastore.UETRTrackingStore
	Logger     observe.Logger
}

type serviceHealthBody struct {
	Service         string `json:"service"`
	MonitorStatus   string `json:"monitorStatus"`
	CircuitState    string `json:"circuitState"`
	ConsecutiveFail int    `json:"consecutiveFailures,omitempty"`
}

// HandleHealthServices serves GET /health/services: every checker the
// health aggregator tracks, cross-referenced with the monitor's
// consecutive-failure classification and the resiliency registry's
// circuit-breaker state.
func (a *AdminHandlers) HandleHealthServices(w http.ResponseWriter, r *http.Request) {
	names := a.Aggregator.CheckerNames()
	services := make([]serviceHealthBody, 0, len(names))

	for _, name := range names {
		body := serviceHealthBody{Service: name}
		if a.Monitor != nil {
			body.MonitorStatus = a.Monitor.ServiceStatus(name).String()
		}
		if a.Breakers != nil {
			body.CircuitState = a.Breakers.Breaker(name).State().String()
		}
		services = append(services, body)
	}

	Respond(w, http.StatusOK, map[string]any{"services": services})
}

// HandleCircuitReset serves POST /admin/circuits/{service}/reset: forces
// the named service's circuit breaker back to CLOSED, for operator
// recovery after a confirmed-fixed outage. The resetting operator's
// principal (bound to the request by the Authenticate middleware) is logged and
// echoed in the response for audit.
func (a *AdminHandlers) HandleCircuitReset(w http.ResponseWriter, r *http.Request) {
	service := chi.URLParam(r, "service")
	if service == "" {
		RespondGatewayError(w, gatewayerr.New(gatewayerr.ValidationFailed, RequestIDFromContext(r.Context()), "service name is required"))
		return
	}

	operator := auth.PrincipalFromContext(r.Context())
	a.Breakers.Breaker(service).Reset()
	if a.Logger != nil {
		a.Logger.Info(r.Context(), "operator reset circuit breaker",
			observe.Field{Key: "service", Value: service},
			observe.Field{Key: "operator", Value: operator},
		)
	}
	Respond(w, http.StatusOK, map[string]string{"service": service, "circuitState": "CLOSED", "resetBy": operator})
}

type journeyEventBody struct {
	CorrelationID string `json:"correlationId"`
	MessageType   string `json:"messageType"`
	Direction     string `json:"direction"`
	Status        string `json:"status"`
	OccurredAt    string `json:"occurredAt"`
}

// HandleUETRJourney serves GET /admin/uetr/{uetr}: every recorded
// direction/status transition for a UETR within the requesting tenant,
// oldest first.
func (a *AdminHandlers) HandleUETRJourney(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenant.FromContext(r.Context())
	if !ok {
		RespondGatewayError(w, gatewayerr.New(gatewayerr.TenantInvalid, RequestIDFromContext(r.Context()), "no tenant resolved for request"))
		return
	}

	uetrVal := chi.URLParam(r, "uetr")
	events, found, err := a.Journeys.Journey(r.Context(), tc.TenantID, uetrVal)
	if err != nil {
		RespondGatewayError(w, gatewayerr.Wrap(gatewayerr.Internal, RequestIDFromContext(r.Context()), err).WithUETR(uetrVal))
		return
	}
	if !found {
		RespondGatewayError(w, gatewayerr.New(gatewayerr.OrphanResponse, RequestIDFromContext(r.Context()), "no journey recorded for this uetr").WithUETR(uetrVal))
		return
	}

	out := make([]journeyEventBody, 0, len(events))
	for _, ev := range events {
		out = append(out, journeyEventBody{
			CorrelationID: ev.CorrelationID,
			MessageType:   ev.MessageType,
			Direction:     ev.Direction,
			Status:        ev.Status,
			OccurredAt:    ev.OccurredAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	Respond(w, http.StatusOK, map[string]any{"uetr": uetrVal, "journey": out})
}
