package ingress

import (
	"encoding/json"
	"net/http"

	"github.com/fintechrail/paygate/internal/gatewayerr"
)

// Respond writes a JSON response with the given status code.
func Respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

// errorBody is the JSON error envelope surfaced to callers, matching the
// gatewayerr taxonomy's Kind/Message/correlationId/uetr/fieldPath fields.
type errorBody struct {
	Kind          string `json:"kind"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
	UETR          string `json:"uetr,omitempty"`
	FieldPath     string `json:"fieldPath,omitempty"`
}

// RespondGatewayError maps a *gatewayerr.Error onto its documented HTTP
// status and JSON body. A plain (non-gatewayerr) error surfaces as an
// opaque 500 Internal, never leaking its own message to the caller.
func RespondGatewayError(w http.ResponseWriter, err error) {
	ge, ok := gatewayerr.As(err)
	if !ok {
		Respond(w, http.StatusInternalServerError, errorBody{
			Kind:    string(gatewayerr.Internal),
			Message: "internal error",
		})
		return
	}

	Respond(w, ge.HTTPStatus(), errorBody{
		Kind:          string(ge.Kind),
		Message:       ge.Message,
		CorrelationID: ge.CorrelationID,
		UETR:          ge.UETR,
		FieldPath:     ge.FieldPath,
	})
}
