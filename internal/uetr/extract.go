package uetr

import "strings"

// Message is the minimal view the UETR plane needs of an inbound ISO
// 20022 message tree: a nested map of the short-tag field names used by
// the inbound JSON envelope (GrpHdr, CstmrCdtTrfInitn, ...). The
// transformer and flow engine hold the full typed tree; this package
// only ever walks it looking for a UETR.
type Message map[string]any

// xpath is a documented, message-type-specific lookup path, expressed as
// a slice of path segments. A segment that is a non-negative integer
// string addresses an array index within the preceding list; any other
// segment addresses a map key.
var xpaths = map[string][]string{
	"pain.001": {"CstmrCdtTrfInitn", "PmtInf", "0", "CdtTrfTxInf", "0", "PmtId", "UETR"},
	"pacs.008": {"FIToFICstmrCdtTrf", "CdtTrfTxInf", "0", "PmtId", "UETR"},
	"pacs.002": {"FIToFIPmtStsRpt", "TxInfAndSts", "0", "OrgnlTxId", "OrgnlUETR"},
	"pain.002": {"CstmrPmtStsRpt", "OrgnlPmtInfAndSts", "0", "TxInfAndSts", "0", "OrgnlTxId", "OrgnlUETR"},
	"camt.055": {"CstmrPmtCxlReq", "Undrlyg", "0", "OrgnlTxInfAndCxl", "0", "OrgnlTxId", "OrgnlUETR"},
	"camt.056": {"FIToFIPmtCxlReq", "Undrlyg", "0", "OrgnlTxInfAndCxl", "0", "OrgnlTxId", "OrgnlUETR"},
	"pacs.028": {"FIToFIPmtStsReq", "TxInf", "0", "OrgnlTxId", "OrgnlUETR"},
	"pacs.004": {"PmtRtr", "TxInf", "0", "OrgnlTxId", "OrgnlUETR"},
	"camt.054": {"BkToCstmrDbtCdtNtfctn", "Ntry", "0", "NtryDtls", "0", "TxDtls", "0", "Refs", "UETR"},
	"camt.029": {"RsltnOfInvstgtn", "CxlDtls", "0", "TxInfAndSts", "0", "OrgnlTxId", "OrgnlUETR"},
}

// Extract locates the UETR at its message-type-specific path and returns
// it. It returns "" on absence or structural malformation along the
// path — extraction never panics or errors into the hot path; a missing
// or malformed UETR is the caller's cue to mint a fresh one.
func Extract(msg Message, messageType string) string {
	path, ok := xpaths[strings.ToLower(messageType)]
	if !ok {
		return ""
	}

	var cur any = map[string]any(msg)
	for _, segment := range path {
		switch v := cur.(type) {
		case map[string]any:
			next, exists := v[segment]
			if !exists {
				return ""
			}
			cur = next
		case []any:
			idx, ok := indexOf(segment, len(v))
			if !ok {
				return ""
			}
			cur = v[idx]
		default:
			return ""
		}
	}

	s, ok := cur.(string)
	if !ok {
		return ""
	}
	return s
}

func indexOf(segment string, length int) (int, bool) {
	if segment == "" {
		return 0, false
	}
	n := 0
	for _, r := range segment {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	if n >= length {
		return 0, false
	}
	return n, true
}
