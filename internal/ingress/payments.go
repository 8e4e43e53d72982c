package ingress

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/fintechrail/paygate/internal/flow"
	"github.com/fintechrail/paygate/internal/gatewayerr"
	"github.com/fintechrail/paygate/internal/idempotency"
	"github.com/fintechrail/paygate/internal/router"
	"github.com/fintechrail/paygate/internal/tenant"
	"github.com/fintechrail/paygate/internal/uetr"
)

// IdempotencyKeyHeader carries the caller-supplied idempotency key for
// mutating requests, per spec.md §4.1.
const IdempotencyKeyHeader = "X-Idempotency-Key"

// Header names carrying the Flow Engine's routing inputs that the JSON
// envelope itself doesn't encode structurally.
const (
	MessageTypeHeader         = "X-Message-Type"
	PaymentTypeHeader         = "X-Payment-Type"
	LocalInstrumentCodeHeader = "X-Local-Instrument-Code"
	ResponseModeHeader        = "X-Response-Mode"
)

// PaymentsHandler serves POST /tenants/{tenantId}/payments: decodes the
// inbound JSON envelope, runs it through the Idempotency Gate, then
// hands it to the Flow Engine.
type PaymentsHandler struct {
	Engine *flow.Engine
	Gate   *idempotency.Gate
}

func (h *PaymentsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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

	now := time.Now().UTC()
	idempotencyKey := r.Header.Get(IdempotencyKeyHeader)

	if idempotencyKey != "" && h.Gate != nil {
		decision, err := h.Gate.Check(r.Context(), tc.TenantID, idempotencyKey, r.Method, r.URL.Path, body, now)
		if err != nil {
			RespondGatewayError(w, err)
			return
		}
		if decision.Replay {
			w.Header().Set(idempotency.ReplayHeader, "true")
			w.Header().Set(idempotency.OriginalRequestTimeHeader, decision.OriginalTime.UTC().Format(time.RFC3339))
			Respond(w, decision.ReplayStatus, json.RawMessage(decision.ReplayBody))
			return
		}
	}

	var msg uetr.Message
	if err := json.Unmarshal(body, &msg); err != nil {
		RespondGatewayError(w, gatewayerr.Wrap(gatewayerr.ValidationFailed, RequestIDFromContext(r.Context()), err).WithUETR(""))
		return
	}

	messageType := r.Header.Get(MessageTypeHeader)

	req := flow.Request{
		TenantID:            tc.TenantID,
		MessageType:         messageType,
		PaymentType:         r.Header.Get(PaymentTypeHeader),
		LocalInstrumentCode: r.Header.Get(LocalInstrumentCodeHeader),
		ResponseMode:        responseMode(r.Header.Get(ResponseModeHeader)),
		Message:             msg,
		RawMessage:          body,
	}

	ctx := router.WithBankCodes(r.Context(), accountBankCodes(messageType, msg))

	result, err := h.Engine.Process(ctx, req)
	if err != nil {
		RespondGatewayError(w, err)
		return
	}

	status := http.StatusOK
	responseBody := encodeResult(result)

	if idempotencyKey != "" && h.Gate != nil {
		if recErr := h.Gate.Record(r.Context(), tc.TenantID, idempotencyKey, r.Method, r.URL.Path, body, status, responseBody, now); recErr != nil {
			RespondGatewayError(w, recErr)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(responseBody)
}

// accountBankCodes extracts the same-bank/other-bank routing signal
// from a pain.001 envelope's debtor/creditor IBANs (positions 4-8 hold
// the bank identifier in most SEPA-participating countries' IBAN
// layouts; this is a routing heuristic, not a full IBAN parser).
// Message types with no account fields in their schema (camt.055,
// camt.056) always route other-bank, matching FlowAdapter's own
// documented default when resolveFn returns empty codes.
func accountBankCodes(messageType string, msg uetr.Message) router.BankCodes {
	dbtrIBAN := stringAt(msg, "CstmrCdtTrfInitn", "PmtInf", "0", "DbtrAcct", "Id", "IBAN")
	cdtrIBAN := stringAt(msg, "CstmrCdtTrfInitn", "PmtInf", "0", "CdtTrfTxInf", "0", "CdtrAcct", "Id", "IBAN")
	return router.BankCodes{
		FromBankCode: bankIdentifier(dbtrIBAN),
		ToBankCode:   bankIdentifier(cdtrIBAN),
	}
}

func bankIdentifier(iban string) string {
	if len(iban) < 8 {
		return ""
	}
	return iban[4:8]
}

// stringAt walks path within msg the same way internal/transform and
// internal/validate's own walkers do, treating a "0" segment against
// a map as a singleton collapse rather than a lookup failure.
func stringAt(msg uetr.Message, path ...string) string {
	var cur any = map[string]any(msg)
	for _, segment := range path {
		switch v := cur.(type) {
		case map[string]any:
			if segment == "0" {
				continue
			}
			next, ok := v[segment]
			if !ok {
				return ""
			}
			cur = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(v) {
				return ""
			}
			cur = v[idx]
		default:
			return ""
		}
	}
	s, _ := cur.(string)
	return s
}

func responseMode(raw string) flow.ResponseMode {
	if raw == string(flow.ResponseModeAsync) {
		return flow.ResponseModeAsync
	}
	return flow.ResponseModeImmediate
}

// resultBody is the JSON shape of a MessageFlowResult, matching spec.md
// §4.3's field list.
type resultBody struct {
	MessageID          string          `json:"messageId"`
	CorrelationID      string          `json:"correlationId"`
	Status             string          `json:"status"`
	ClearingSystemCode string          `json:"clearingSystemCode,omitempty"`
	TransactionID      string          `json:"transactionId,omitempty"`
	ClientResponse     json.RawMessage `json:"clientResponse,omitempty"`
	ProcessingTimeMs   int64           `json:"processingTimeMs"`
	Metadata           map[string]any  `json:"metadata,omitempty"`
}

func encodeResult(r flow.Result) []byte {
	body := resultBody{
		MessageID:          r.MessageID,
		CorrelationID:      r.CorrelationID,
		Status:             string(r.Status),
		ClearingSystemCode: r.ClearingSystemCode,
		TransactionID:      r.TransactionID,
		ProcessingTimeMs:   r.ProcessingTimeMs,
		Metadata:           r.Metadata,
	}
	if len(r.ClientResponse) > 0 && json.Valid(r.ClientResponse) {
		body.ClientResponse = r.ClientResponse
	} else if len(r.ClientResponse) > 0 {
		encoded, _ := json.Marshal(string(r.ClientResponse))
		body.ClientResponse = encoded
	}

	out, err := json.Marshal(body)
	if err != nil {
		return []byte(`{"kind":"Internal","message":"failed to encode response"}`)
	}
	return bytes.TrimSpace(out)
}
