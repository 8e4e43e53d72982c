// Package idempotency implements the gateway's request-replay guard: a
// caller that retries a POST with the same X-Idempotency-Key gets back
// the original response instead of re-executing the operation, and a
// caller that reuses a key for a materially different request is
// rejected outright.
package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// DefaultTTL is how long a key is honored for replay before it expires
// and becomes available for reuse.
const DefaultTTL = 24 * time.Hour

// Record is the persisted state behind one idempotency key.
type Record struct {
	Key            string
	TenantID       string
	Method         string
	Endpoint       string
	RequestHash    string
	ResponseStatus int
	ResponseBody   []byte
	CreatedAt      time.Time
	ExpiresAt      time.Time
}

// Expired reports whether rec should no longer be honored for replay.
func (rec Record) Expired(now time.Time) bool {
	return !rec.ExpiresAt.IsZero() && now.After(rec.ExpiresAt)
}

// HashRequest computes the canonical request hash: SHA-256 over
// method, endpoint, and the request body, joined so that no
// concatenation of the three fields can collide across distinct
// requests.
func HashRequest(method, endpoint string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{0})
	h.Write([]byte(endpoint))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
