package ingress

import (
	"encoding/json"
	"testing"

	"github.com/fintechrail/paygate/internal/flow"
)

func TestEncodeResult_EmbedsJSONClientResponseRaw(t *testing.T) {
	r := flow.Result{
		MessageID:       "m1",
		CorrelationID:   "c1",
		Status:          flow.StatusSuccess,
		ClientResponse:  []byte(`{"status":"ACSC"}`),
		ProcessingTimeMs: 12,
	}

	body := encodeResult(r)

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("encodeResult produced invalid JSON: %v", err)
	}
	if string(decoded["clientResponse"]) != `{"status":"ACSC"}` {
		t.Errorf("clientResponse = %s, want raw embedded object", decoded["clientResponse"])
	}
}

func TestEncodeResult_WrapsXMLClientResponseAsString(t *testing.T) {
	r := flow.Result{
		MessageID:      "m2",
		CorrelationID:  "c2",
		Status:         flow.StatusSuccess,
		ClientResponse: []byte(`<?xml version="1.0"?><Doc></Doc>`),
	}

	body := encodeResult(r)

	var decoded struct {
		ClientResponse string `json:"clientResponse"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("encodeResult produced invalid JSON: %v", err)
	}
	if decoded.ClientResponse != `<?xml version="1.0"?><Doc></Doc>` {
		t.Errorf("clientResponse = %q, want the raw XML string", decoded.ClientResponse)
	}
}

func TestResponseMode_DefaultsToImmediate(t *testing.T) {
	if got := responseMode(""); got != flow.ResponseModeImmediate {
		t.Errorf("responseMode(\"\") = %v, want IMMEDIATE", got)
	}
	if got := responseMode("ASYNC"); got != flow.ResponseModeAsync {
		t.Errorf("responseMode(ASYNC) = %v, want ASYNC", got)
	}
}
