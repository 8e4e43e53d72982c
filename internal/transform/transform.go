package transform

import (
	"context"
	"strings"

	"github.com/fintechrail/paygate/internal/flow"
	"github.com/fintechrail/paygate/internal/gatewayerr"
	"github.com/fintechrail/paygate/internal/uetr"
)

// Transformer satisfies flow.Transformer: it maps a client-dialect
// message into the scheme dialect on the forward leg, and shapes a
// scheme reply back into a client-facing message on the reverse leg,
// both driven by the declarative tables in tables.go.
type Transformer struct {
	SystemID string
}

// New returns a Transformer that mints MsgIds under systemID.
func New(systemID string) *Transformer {
	return &Transformer{SystemID: systemID}
}

// Transform implements flow.Transformer. threadedUETR is copied into
// the destination tree verbatim — the forward leg never mints a new
// UETR, only the response leg does (see ShapeClientResponse).
func (t *Transformer) Transform(ctx context.Context, decision flow.RouteDecision, messageType string, msg uetr.Message, threadedUETR string) ([]byte, string, error) {
	mapping, ok := forwardMappings[strings.ToLower(messageType)]
	if !ok {
		return nil, "", gatewayerr.New(gatewayerr.TransformationRequired, "", "no forward mapping registered for message type "+messageType)
	}

	dest, missing := walk(mapping, map[string]any(msg))
	if len(missing) > 0 {
		return nil, "", gatewayerr.New(gatewayerr.TransformationRequired, "", "missing required destination field").WithFieldPath(missing[0])
	}

	if len(mapping.UETRDest) > 0 {
		set(dest, mapping.UETRDest, threadedUETR)
	}
	msgID, err := uetr.Generate(mapping.DestType, t.SystemID)
	if err != nil {
		return nil, "", gatewayerr.Wrap(gatewayerr.Internal, "", err)
	}
	if len(mapping.MsgIDDest) > 0 {
		set(dest, mapping.MsgIDDest, msgID)
	}

	wire, err := encodeXML(mapping.DestRoot, dest)
	if err != nil {
		return nil, "", gatewayerr.Wrap(gatewayerr.TransformationRequired, "", err)
	}
	return wire, mapping.DestType, nil
}

// ShapeClientResponse implements flow.Transformer. A scheme response is
// decoded, run through the matching inverse mapping, and re-encoded.
// When accepted is true the outgoing client message carries a UETR
// related to threadedUETR (a fresh, minted response reference); when
// false — an async terminal notification the client never acknowledges
// back — threadedUETR is carried through unchanged.
func (t *Transformer) ShapeClientResponse(ctx context.Context, originalMessageType string, schemeResponse []byte, threadedUETR string, accepted bool) ([]byte, error) {
	root, src, err := decodeXML(schemeResponse)
	if err != nil {
		return nil, gatewayerr.Wrap(gatewayerr.SchemeRejected, "", err)
	}

	messageType, ok := xmlRootMessageType[root]
	if !ok {
		return nil, gatewayerr.New(gatewayerr.TransformationRequired, "", "no inverse mapping registered for scheme message root "+root)
	}
	mapping, ok := inverseMappings[messageType]
	if !ok {
		return nil, gatewayerr.New(gatewayerr.TransformationRequired, "", "no inverse mapping registered for message type "+messageType)
	}

	dest, missing := walk(mapping, src)
	if len(missing) > 0 {
		return nil, gatewayerr.New(gatewayerr.TransformationRequired, "", "missing required client field").WithFieldPath(missing[0])
	}

	responseUETR := threadedUETR
	if accepted {
		if related, err := uetr.GenerateResponse(threadedUETR, mapping.DestType); err == nil {
			responseUETR = related
		}
	}
	if len(mapping.UETRDest) > 0 {
		set(dest, mapping.UETRDest, responseUETR)
	}
	if len(mapping.MsgIDDest) > 0 {
		msgID, err := uetr.Generate(mapping.DestType, t.SystemID)
		if err == nil {
			set(dest, mapping.MsgIDDest, msgID)
		}
	}

	return encodeXML(mapping.DestRoot, dest)
}

// ResponseIdentity is the correlation data a caller needs before it
// knows which FlowRecord a scheme response answers: the UETR, and —
// for schemes that echo the original reference pair instead — the
// (OriginalMessageId, OriginalTransactionId) fallback.
type ResponseIdentity struct {
	MessageType           string
	UETR                  string
	OriginalMessageID     string
	OriginalTransactionID string
	Accepted              bool
}

// acceptedStatusCodes are the pacs.002 TxSts values treated as a
// positive completion; anything else (RJCT, pending codes) is not.
var acceptedStatusCodes = map[string]bool{
	"ACCC": true, "ACSC": true, "ACCP": true, "ACTC": true,
}

// responseRefPaths names, for scheme message types whose GrpHdr/TxInf
// structure carries it, the original-reference pair the Correlator
// falls back to when a response omits the UETR. camt.029 and camt.054
// have no entry: they're informational notifications with no comparable
// original-reference pair in the tables this package already maps.
var responseRefPaths = map[string]struct {
	MessageID     []string
	TransactionID []string
}{
	"pacs.002": {MessageID: []string{"GrpHdr", "MsgId"}, TransactionID: []string{"TxInfAndSts", "0", "OrgnlTxId", "OrgnlEndToEndId"}},
	"pacs.004": {MessageID: []string{"GrpHdr", "MsgId"}, TransactionID: []string{"TxInf", "0", "OrgnlTxId", "OrgnlEndToEndId"}},
}

// responseUETRPaths mirrors internal/uetr's own per-message-type xpaths
// (minus the leading root segment, which decodeXML already strips) but
// walked with this package's own get: decodeXML only promotes a
// repeated element to a slice once a second sibling is seen, so a
// singleton TxInfAndSts/TxInf/CxlDtls group decodes to a bare map, and
// only this package's get treats a "0" segment against a map as a
// singleton collapse rather than a lookup failure.
var responseUETRPaths = map[string][]string{
	"pacs.002": {"TxInfAndSts", "0", "OrgnlTxId", "OrgnlUETR"},
	"pacs.004": {"TxInf", "0", "OrgnlTxId", "OrgnlUETR"},
	"camt.054": {"Ntry", "0", "NtryDtls", "0", "TxDtls", "0", "Refs", "UETR"},
	"camt.029": {"CxlDtls", "0", "TxInfAndSts", "0", "OrgnlTxId", "OrgnlUETR"},
}

// IdentifyResponse decodes schemeResponse only as far as its
// correlation keys. It never runs the inverse field mapping — that
// happens in ShapeClientResponse, once the Correlator has found the
// FlowRecord this response answers.
func (t *Transformer) IdentifyResponse(schemeResponse []byte) (ResponseIdentity, error) {
	root, src, err := decodeXML(schemeResponse)
	if err != nil {
		return ResponseIdentity{}, gatewayerr.Wrap(gatewayerr.SchemeRejected, "", err)
	}

	messageType, ok := xmlRootMessageType[root]
	if !ok {
		return ResponseIdentity{}, gatewayerr.New(gatewayerr.TransformationRequired, "", "no inverse mapping registered for scheme message root "+root)
	}

	identity := ResponseIdentity{MessageType: messageType}
	if path, ok := responseUETRPaths[messageType]; ok {
		if v, found := get(src, path); found {
			identity.UETR, _ = v.(string)
		}
	}

	if refs, ok := responseRefPaths[messageType]; ok {
		if v, found := get(src, refs.MessageID); found {
			identity.OriginalMessageID, _ = v.(string)
		}
		if v, found := get(src, refs.TransactionID); found {
			identity.OriginalTransactionID, _ = v.(string)
		}
	}

	if messageType == "pacs.002" {
		if v, found := get(src, []string{"TxInfAndSts", "0", "TxSts"}); found {
			if code, ok := v.(string); ok {
				identity.Accepted = acceptedStatusCodes[code]
			}
		}
	}

	return identity, nil
}
