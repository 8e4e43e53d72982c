package queue

import (
	"math"
	"time"
)

// BaseDelay is the backoff base for BackoffDelay: attempt 1 waits one
// BaseDelay, attempt 2 waits 2×, attempt 3 waits 4×, and so on.
const BaseDelay = 30 * time.Second

// MaxDelay caps the computed backoff so a message stuck across many
// attempts still gets retried at a bounded cadence rather than drifting
// toward its expiry untouched.
const MaxDelay = 30 * time.Minute

// DefaultExpiry is the conservative default lifetime of a queued
// message before it terminalizes as EXPIRED, configurable per tenant.
const DefaultExpiry = 72 * time.Hour

// BackoffDelay computes the exponential backoff for retryCount,
// grounded on the same baseDelay*2^(attempt-1) formula used elsewhere
// in the pack's retry schedulers, clamped to MaxDelay.
func BackoffDelay(retryCount int) time.Duration {
	if retryCount < 1 {
		retryCount = 1
	}
	exponent := float64(retryCount - 1)
	delay := time.Duration(float64(BaseDelay) * math.Pow(2, exponent))
	if delay > MaxDelay {
		return MaxDelay
	}
	return delay
}
