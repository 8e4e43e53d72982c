package correlator

import "testing"

func TestCorrelator_ResolveByUETR(t *testing.T) {
	c := New()
	c.Register("corr-1", "UETR-1", "", "")

	id, ok := c.Resolve("UETR-1", "", "")
	if !ok || id != "corr-1" {
		t.Fatalf("Resolve() = (%q, %v), want (corr-1, true)", id, ok)
	}
}

func TestCorrelator_ResolveFallsBackToOriginalRefsWhenUETRAbsent(t *testing.T) {
	c := New()
	c.Register("corr-2", "UETR-2", "MSG-1", "TX-1")

	id, ok := c.Resolve("", "MSG-1", "TX-1")
	if !ok || id != "corr-2" {
		t.Fatalf("Resolve() = (%q, %v), want (corr-2, true)", id, ok)
	}
}

func TestCorrelator_ResolveMissIsOrphanNeverInvented(t *testing.T) {
	c := New()
	c.Register("corr-3", "UETR-3", "", "")

	_, ok := c.Resolve("UETR-UNKNOWN", "MSG-X", "TX-X")
	if ok {
		t.Fatal("expected no match for an unregistered reference, got one")
	}
}

func TestCorrelator_EvictRemovesBothIndexes(t *testing.T) {
	c := New()
	c.Register("corr-4", "UETR-4", "MSG-4", "TX-4")
	c.Evict("UETR-4", "MSG-4", "TX-4")

	if _, ok := c.ResolveByUETR("UETR-4"); ok {
		t.Error("expected UETR index entry to be evicted")
	}
	if _, ok := c.ResolveByOriginalRefs("MSG-4", "TX-4"); ok {
		t.Error("expected original-refs index entry to be evicted")
	}
}
