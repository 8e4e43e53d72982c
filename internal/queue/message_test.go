package queue

import (
	"testing"
	"time"
)

func TestMessage_DueForRetry(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		m    Message
		want bool
	}{
		{"failed is always due", Message{Status: StatusFailed}, true},
		{"pending past nextRetryAt is due", Message{Status: StatusPending, NextRetryAt: now.Add(-time.Minute)}, true},
		{"pending before nextRetryAt is not due", Message{Status: StatusPending, NextRetryAt: now.Add(time.Minute)}, false},
		{"in-flight is never due", Message{Status: StatusInFlight}, false},
		{"done is never due", Message{Status: StatusDone}, false},
		{"expired is never due", Message{Status: StatusExpired}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.DueForRetry(now); got != tt.want {
				t.Errorf("DueForRetry() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMessage_MarkFailedReschedulesWithBackoff(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	m := Message{Status: StatusInFlight, ExpiresAt: now.Add(72 * time.Hour)}

	m.MarkFailed("adapter timeout", now)

	if m.Status != StatusFailed {
		t.Errorf("Status = %v, want FAILED", m.Status)
	}
	if m.RetryCount != 1 {
		t.Errorf("RetryCount = %d, want 1", m.RetryCount)
	}
	if !m.NextRetryAt.After(now) {
		t.Error("NextRetryAt was not pushed into the future")
	}
	if m.ErrorMessage != "adapter timeout" {
		t.Errorf("ErrorMessage = %q", m.ErrorMessage)
	}
}

func TestMessage_MarkFailedPastExpiryTerminalizes(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	m := Message{Status: StatusInFlight, ExpiresAt: now.Add(-time.Minute)}

	m.MarkFailed("adapter timeout", now)

	if m.Status != StatusExpired {
		t.Errorf("Status = %v, want EXPIRED", m.Status)
	}
}

func TestMessage_MarkDrainableResetsRetryState(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	m := Message{Status: StatusFailed, RetryCount: 4}

	m.MarkDrainable(now)

	if m.Status != StatusPending || m.RetryCount != 0 || !m.NextRetryAt.Equal(now) {
		t.Errorf("MarkDrainable() = %+v, want PENDING/0/now", m)
	}
}

func TestMessage_Expired(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	future := Message{ExpiresAt: now.Add(time.Hour)}
	if future.Expired(now) {
		t.Error("Expired() = true for a future expiresAt")
	}

	past := Message{ExpiresAt: now.Add(-time.Hour)}
	if !past.Expired(now) {
		t.Error("Expired() = false for a past expiresAt")
	}
}

func TestBackoffDelay_ExponentialGrowthClampedToMax(t *testing.T) {
	d1 := BackoffDelay(1)
	d2 := BackoffDelay(2)
	d3 := BackoffDelay(3)

	if d2 != d1*2 {
		t.Errorf("BackoffDelay(2) = %v, want %v", d2, d1*2)
	}
	if d3 != d1*4 {
		t.Errorf("BackoffDelay(3) = %v, want %v", d3, d1*4)
	}

	if got := BackoffDelay(20); got != MaxDelay {
		t.Errorf("BackoffDelay(20) = %v, want clamped to %v", got, MaxDelay)
	}
}

func TestBackoffDelay_ZeroOrNegativeTreatedAsFirstAttempt(t *testing.T) {
	if BackoffDelay(0) != BackoffDelay(1) {
		t.Error("BackoffDelay(0) should behave like BackoffDelay(1)")
	}
}
