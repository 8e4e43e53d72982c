// Package clearingadapter implements the ClearingAdapter aggregate: the
// per-tenant configuration of a scheme/clearing-system destination, its
// routes, its append-only message log, and the domain events its
// mutations emit.
package clearingadapter

import (
	"fmt"

	"github.com/fintechrail/paygate/internal/tenant"
)

// Network is one of the clearing networks this gateway integrates with.
type Network string

const (
	NetworkSAMOS    Network = "SAMOS"
	NetworkBankserv Network = "BANKSERV"
	NetworkRTC      Network = "RTC"
	NetworkPayShap  Network = "PAYSHAP"
	NetworkSWIFT    Network = "SWIFT"
)

// Status is the adapter's activation state.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// RouteStatus is a ClearingRoute's activation state.
type RouteStatus string

const (
	RouteStatusActive   RouteStatus = "ACTIVE"
	RouteStatusInactive RouteStatus = "INACTIVE"
)

// Route is a ClearingRoute belonging to exactly one Adapter.
type Route struct {
	RouteID     string
	AdapterID   string
	Name        string
	Source      string
	Destination string
	Priority    int
	Status      RouteStatus
}

// MessageLog is one append-only entry in an Adapter's message log.
type MessageLog struct {
	CorrelationID string
	Direction     string
	Summary       string
}

// Adapter is the ClearingAdapter aggregate. It exclusively owns its
// routes, message logs, and pending events; mutations only ever happen
// through its named intents, each of which appends a typed DomainEvent
// that the caller must drain (Events()/ClearEvents()) and never replay.
type Adapter struct {
	AdapterID         string
	Tenant            tenant.Context
	Name              string
	Network           Network
	Status            Status
	Endpoint          string
	APIVersion        string
	TimeoutSeconds    int
	RetryAttempts     int
	EncryptionEnabled bool
	Routes            []Route
	MessageLogs       []MessageLog

	pending       []DomainEvent
	persistedLogs int
}

// UnsavedMessageLogs returns the log entries appended since the last
// MarkLogsPersisted call, so Repository.Save only inserts new rows
// into the append-only log table instead of re-inserting history.
func (a *Adapter) UnsavedMessageLogs() []MessageLog {
	return a.MessageLogs[a.persistedLogs:]
}

// MarkLogsPersisted records that every current MessageLogs entry has
// been durably saved.
func (a *Adapter) MarkLogsPersisted() {
	a.persistedLogs = len(a.MessageLogs)
}

// New constructs an Adapter in status ACTIVE, emitting
// ClearingAdapterCreated. name and endpoint must be non-blank.
func New(adapterID string, tc tenant.Context, name string, network Network, endpoint string) (*Adapter, error) {
	if name == "" {
		return nil, fmt.Errorf("clearingadapter: name must not be blank")
	}
	if endpoint == "" {
		return nil, fmt.Errorf("clearingadapter: endpoint must not be blank")
	}

	a := &Adapter{
		AdapterID: adapterID,
		Tenant:    tc,
		Name:      name,
		Network:   network,
		Status:    StatusActive,
		Endpoint:  endpoint,
	}
	a.emit(newEvent(EventAdapterCreated, adapterID, map[string]any{
		"name": name, "network": string(network), "endpoint": endpoint,
	}))
	return a, nil
}

// AddRoute appends route to the adapter and emits ClearingRouteAdded.
func (a *Adapter) AddRoute(route Route) {
	route.AdapterID = a.AdapterID
	a.Routes = append(a.Routes, route)
	a.emit(newEvent(EventRouteAdded, a.AdapterID, map[string]any{
		"routeId": route.RouteID, "priority": route.Priority,
	}))
}

// UpdateConfiguration replaces the mutable configuration fields and
// emits ClearingAdapterConfigurationUpdated.
func (a *Adapter) UpdateConfiguration(endpoint, apiVersion string, timeoutSeconds, retryAttempts int, encryptionEnabled bool) error {
	if endpoint == "" {
		return fmt.Errorf("clearingadapter: endpoint must not be blank")
	}
	a.Endpoint = endpoint
	a.APIVersion = apiVersion
	a.TimeoutSeconds = timeoutSeconds
	a.RetryAttempts = retryAttempts
	a.EncryptionEnabled = encryptionEnabled
	a.emit(newEvent(EventConfigurationUpdated, a.AdapterID, map[string]any{
		"endpoint": endpoint, "apiVersion": apiVersion,
	}))
	return nil
}

// Activate transitions the adapter to ACTIVE. Activating an
// already-active adapter fails rather than silently succeeding.
func (a *Adapter) Activate() error {
	if a.Status == StatusActive {
		return fmt.Errorf("clearingadapter: %s is already active", a.AdapterID)
	}
	a.Status = StatusActive
	a.emit(newEvent(EventAdapterActivated, a.AdapterID, nil))
	return nil
}

// Deactivate transitions the adapter to INACTIVE. Deactivating an
// already-inactive adapter fails rather than silently succeeding.
func (a *Adapter) Deactivate() error {
	if a.Status == StatusInactive {
		return fmt.Errorf("clearingadapter: %s is already inactive", a.AdapterID)
	}
	a.Status = StatusInactive
	a.emit(newEvent(EventAdapterDeactivated, a.AdapterID, nil))
	return nil
}

// LogMessage appends an entry to the adapter's append-only message log
// and emits ClearingMessageLogged.
func (a *Adapter) LogMessage(log MessageLog) {
	a.MessageLogs = append(a.MessageLogs, log)
	a.emit(newEvent(EventMessageLogged, a.AdapterID, map[string]any{
		"correlationId": log.CorrelationID, "direction": log.Direction,
	}))
}

// Events returns the pending domain events accumulated since the last
// ClearEvents call.
func (a *Adapter) Events() []DomainEvent {
	return a.pending
}

// ClearEvents drains the pending domain events. Events are never
// replayed once drained.
func (a *Adapter) ClearEvents() {
	a.pending = nil
}

func (a *Adapter) emit(e DomainEvent) {
	a.pending = append(a.pending, e)
}
