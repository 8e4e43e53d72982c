// Package correlator matches an inbound scheme response to the
// in-flight FlowRecord it answers: by UETR first, and — for schemes
// that echo the original message/transaction id instead of the UETR —
// by a secondary (originalMessageID, originalTransactionID) index.
// Both indexes hold only a weak, in-process lookup; FlowRecord
// ownership stays with the Flow Engine for the record's lifetime.
package correlator

import "sync"

// entry is the correlator's own lightweight view of a FlowRecord: just
// enough to answer a lookup, not a copy of engine state.
type entry struct {
	correlationID         string
	originalMessageID     string
	originalTransactionID string
}

func refKey(originalMessageID, originalTransactionID string) string {
	return originalMessageID + "\x00" + originalTransactionID
}

// Correlator holds the UETR and (originalMessageID, originalTransactionID)
// indexes. Zero value is ready to use.
type Correlator struct {
	mu     sync.Mutex
	byUETR map[string]entry
	byRefs map[string]entry
}

// New returns an empty Correlator.
func New() *Correlator {
	return &Correlator{
		byUETR: make(map[string]entry),
		byRefs: make(map[string]entry),
	}
}

// Register admits a FlowRecord into both indexes. originalMessageID and
// originalTransactionID may be empty when the source message carried
// no original references (the common case for a first-leg INITIATED
// message); an empty pair is simply never indexed.
func (c *Correlator) Register(correlationID, uetrVal, originalMessageID, originalTransactionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.byUETR == nil {
		c.byUETR = make(map[string]entry)
	}
	if c.byRefs == nil {
		c.byRefs = make(map[string]entry)
	}

	e := entry{
		correlationID:         correlationID,
		originalMessageID:     originalMessageID,
		originalTransactionID: originalTransactionID,
	}
	if uetrVal != "" {
		c.byUETR[uetrVal] = e
	}
	if originalMessageID != "" && originalTransactionID != "" {
		c.byRefs[refKey(originalMessageID, originalTransactionID)] = e
	}
}

// ResolveByUETR returns the correlation id registered for uetrVal.
func (c *Correlator) ResolveByUETR(uetrVal string) (correlationID string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.byUETR[uetrVal]
	return e.correlationID, ok
}

// ResolveByOriginalRefs returns the correlation id registered under the
// (originalMessageID, originalTransactionID) pair, for a reply that
// omits the UETR.
func (c *Correlator) ResolveByOriginalRefs(originalMessageID, originalTransactionID string) (correlationID string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.byRefs[refKey(originalMessageID, originalTransactionID)]
	return e.correlationID, ok
}

// Resolve looks up uetrVal first, falling back to the
// (originalMessageID, originalTransactionID) pair when the UETR is
// absent or unknown, per spec's "look up first by UETR, then by the
// original-reference tuple" rule. ok is false — an orphan response —
// when neither lookup matches; callers must never invent a
// correlation for an orphan.
func (c *Correlator) Resolve(uetrVal, originalMessageID, originalTransactionID string) (correlationID string, ok bool) {
	if uetrVal != "" {
		if id, found := c.ResolveByUETR(uetrVal); found {
			return id, true
		}
	}
	return c.ResolveByOriginalRefs(originalMessageID, originalTransactionID)
}

// Evict removes a terminalized FlowRecord's entries from both indexes,
// bounding correlator memory to in-flight records only.
func (c *Correlator) Evict(uetrVal, originalMessageID, originalTransactionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.byUETR, uetrVal)
	if originalMessageID != "" && originalTransactionID != "" {
		delete(c.byRefs, refKey(originalMessageID, originalTransactionID))
	}
}
