package ingress

import (
	"io"
	"net/http"

	"github.com/fintechrail/paygate/internal/flow"
	"github.com/fintechrail/paygate/internal/gatewayerr"
	"github.com/fintechrail/paygate/internal/observe"
	"github.com/fintechrail/paygate/internal/tenant"
	"github.com/fintechrail/paygate/internal/transform"
)

// ResponseIdentifier recovers a scheme response's correlation keys
// without running the full inverse mapping. Satisfied by
// internal/transform.Transformer.
type ResponseIdentifier interface {
	IdentifyResponse(schemeResponse []byte) (transform.ResponseIdentity, error)
}

// ResponseCorrelator resolves a scheme response's correlation keys to
// the correlationID of the FlowRecord it answers. Satisfied by
// internal/correlator.Correlator.
type ResponseCorrelator interface {
	Resolve(uetrVal, originalMessageID, originalTransactionID string) (correlationID string, ok bool)
}

// SchemeResponseHandler serves POST /tenants/{tenantId}/scheme-messages:
// the reverse leg of an ASYNC-mode payment, completing the FlowRecord
// an earlier call to PaymentsHandler left AWAITING_RESPONSE once the
// clearing system's own response arrives out of band.
type SchemeResponseHandler struct {
	Engine     *flow.Engine
	Identifier ResponseIdentifier
	Correlator ResponseCorrelator
	Logger     observe.Logger
}

func (h *SchemeResponseHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenant.FromContext(r.Context())
	if !ok {
		RespondGatewayError(w, gatewayerr.New(gatewayerr.TenantInvalid, RequestIDFromContext(r.Context()), "no tenant resolved for request"))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		RespondGatewayError(w, gatewayerr.Wrap(gatewayerr.ValidationFailed, RequestIDFromContext(r.Context()), err))
		return
	}

	identity, err := h.Identifier.IdentifyResponse(body)
	if err != nil {
		RespondGatewayError(w, err)
		return
	}

	correlationID, found := h.Correlator.Resolve(identity.UETR, identity.OriginalMessageID, identity.OriginalTransactionID)
	if !found {
		if h.Logger != nil {
			h.Logger.Warn(r.Context(), "scheme response did not correlate to any in-flight FlowRecord",
				observe.Field{Key: "uetr", Value: identity.UETR},
				observe.Field{Key: "messageType", Value: identity.MessageType},
			)
		}
		RespondGatewayError(w, gatewayerr.New(gatewayerr.OrphanResponse, RequestIDFromContext(r.Context()), "no in-flight request correlates to this scheme response").WithUETR(identity.UETR))
		return
	}

	result, err := h.Engine.CompleteAsync(r.Context(), tc.TenantID, correlationID, body, identity.Accepted)
	if err != nil {
		RespondGatewayError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(encodeResult(result))
}
