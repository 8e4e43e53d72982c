// Package uetr generates, validates, and correlates the Unique
// End-to-end Transaction Reference that identifies a payment from
// ingress to final settlement advice.
//
// A UETR is 36 characters, uppercase, hyphen-separated:
//
//	YYYYMMDD-SYSID-MSGTYPE-SEQ-UUID12
//
// matching ^[A-Z0-9]{8}-[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{12}$.
// Two UETRs are related iff their first two segments (date and system id)
// match; generateResponse is the only legal way to produce a related
// UETR.
package uetr

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Pattern is the strict regex a well-formed UETR matches.
var Pattern = regexp.MustCompile(`^[A-Z0-9]{8}-[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{12}$`)

// unknownMessageTypeCode is substituted for any message type this package
// does not recognize, per the generate algorithm's "unknown -> UNKN" rule.
const unknownMessageTypeCode = "UNKN"

// messageTypeCodes maps a message type to its 4-character UETR segment.
//
// PACS.002 and PAIN.002 are assigned distinct codes (PC02, PN02) rather
// than collapsing both to a single P002: a shared code would make a
// UETR's message-type segment lossy, indistinguishable between a scheme
// status report and a customer status report, for no offsetting benefit.
var messageTypeCodes = map[string]string{
	"pain.001": "PN01",
	"pain.002": "PN02",
	"pain.007": "PN07",
	"pacs.002": "PC02",
	"pacs.004": "PC04",
	"pacs.007": "PC07",
	"pacs.008": "PC08",
	"pacs.028": "PC28",
	"camt.029": "CM29",
	"camt.054": "CM54",
	"camt.055": "CM55",
	"camt.056": "CM56",
}

// MessageTypeCode returns the 4-character UETR segment for messageType,
// or the UNKN fallback if messageType is not recognized. messageType
// comparison is case-insensitive.
func MessageTypeCode(messageType string) string {
	if code, ok := messageTypeCodes[strings.ToLower(messageType)]; ok {
		return code
	}
	return unknownMessageTypeCode
}

// Generate mints a fresh UETR for messageType under systemID: current UTC
// date (segment 1), systemID (segment 2, zero-padded on the right or
// truncated to 4 characters), the message-type code (segment 3), a
// random 16-bit sequence rendered as uppercase hex (segment 4), and the
// first 12 hex characters of a fresh UUID (segment 5).
func Generate(messageType, systemID string) (string, error) {
	seq, err := randomHexSegment()
	if err != nil {
		return "", fmt.Errorf("uetr: generate sequence: %w", err)
	}

	return fmt.Sprintf(
		"%s-%s-%s-%s-%s",
		time.Now().UTC().Format("20060102"),
		normalizeSystemID(systemID),
		MessageTypeCode(messageType),
		seq,
		uuidSegment(),
	), nil
}

// GenerateResponse produces a UETR related to originalUETR: it reuses
// segments 1 and 2 (date, system id) of the original, substitutes segment
// 3 with responseMessageType's code, and mints fresh segments 4 and 5.
// The result is never equal to originalUETR.
func GenerateResponse(originalUETR, responseMessageType string) (string, error) {
	segments := strings.Split(originalUETR, "-")
	if len(segments) != 5 {
		return "", fmt.Errorf("uetr: %q is not well-formed, cannot derive a response UETR", originalUETR)
	}

	seq, err := randomHexSegment()
	if err != nil {
		return "", fmt.Errorf("uetr: generate response sequence: %w", err)
	}

	return fmt.Sprintf(
		"%s-%s-%s-%s-%s",
		segments[0],
		segments[1],
		MessageTypeCode(responseMessageType),
		seq,
		uuidSegment(),
	), nil
}

// Validate reports whether candidate is a well-formed UETR: strict regex
// match, no whitespace trimming, no case folding beyond what the regex
// already permits.
func Validate(candidate string) bool {
	return Pattern.MatchString(candidate)
}

// ExtractTimestamp returns the 8-character date segment of a well-formed
// UETR, or "" if candidate is malformed.
func ExtractTimestamp(candidate string) string {
	if !Validate(candidate) {
		return ""
	}
	return candidate[:8]
}

// ExtractSystemID returns the 4-character system-id segment of a
// well-formed UETR, or "" if candidate is malformed.
func ExtractSystemID(candidate string) string {
	if !Validate(candidate) {
		return ""
	}
	return candidate[9:13]
}

// AreRelated reports whether a and b share the same date and system-id
// segments. Two malformed UETRs, or one malformed and one well-formed,
// are never related.
func AreRelated(a, b string) bool {
	if !Validate(a) || !Validate(b) {
		return false
	}
	return a[:13] == b[:13]
}

// normalizeSystemID forces systemID to exactly 4 uppercase alphanumeric
// characters: truncated if longer, zero-padded on the right if shorter.
func normalizeSystemID(systemID string) string {
	upper := strings.ToUpper(systemID)
	var b strings.Builder
	for _, r := range upper {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
		if b.Len() == 4 {
			break
		}
	}
	out := b.String()
	for len(out) < 4 {
		out += "0"
	}
	return out
}

func randomHexSegment() (string, error) {
	buf := make([]byte, 2)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}

func uuidSegment() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:12]
}
