// Package router implements the payment routing decision: same-bank
// vs. other-bank, and — for other-bank — clearing-system selection
// against a tenant's configured ClearingAdapter routes.
package router

import (
	"context"
	"fmt"

	"github.com/fintechrail/paygate/internal/clearingadapter"
	"github.com/fintechrail/paygate/internal/gatewayerr"
	"github.com/fintechrail/paygate/internal/tenant"
)

// RoutingType is the same-bank/other-bank decision.
type RoutingType string

const (
	RoutingTypeSameBank  RoutingType = "SAME_BANK"
	RoutingTypeOtherBank RoutingType = "OTHER_BANK"
)

// ProcessingMode is how the routed message is dispatched.
type ProcessingMode string

const (
	ProcessingModeSync  ProcessingMode = "SYNC"
	ProcessingModeAsync ProcessingMode = "ASYNC"
)

// MessageFormat is the wire format the routed message is dispatched in.
type MessageFormat string

const (
	MessageFormatJSON MessageFormat = "JSON"
	MessageFormatXML  MessageFormat = "XML"
)

// Account is the minimal account shape the Router needs to decide
// same-bank vs. other-bank: its owning bank's code.
type Account struct {
	IBAN     string
	BankCode string
}

// Request is the Router's input, per spec.md §4.4.
type Request struct {
	TenantID            tenant.Context
	FromAccount         *Account
	ToAccount           *Account
	PaymentType         string
	LocalInstrumentCode string
}

// PaymentRouting is the Router's output, per spec.md §4.4.
type PaymentRouting struct {
	RoutingType             RoutingType
	ClearingSystemCode      string
	LocalInstrumentationCode string
	PaymentType             string
	ProcessingMode          ProcessingMode
	MessageFormat           MessageFormat
	Description             string

	RouteID   string
	AdapterID string
	Endpoint  string
}

// Router decides routing for an inbound payment.
type Router struct {
	adapters clearingadapter.Repository
}

// New constructs a Router over a ClearingAdapter repository.
func New(adapters clearingadapter.Repository) *Router {
	return &Router{adapters: adapters}
}

// Route implements spec.md §4.4's decision: same-bank when both
// accounts resolve to the same bank code (SYNC/JSON, no clearing
// system); otherwise other-bank (ASYNC/XML), resolved against the
// tenant's clearing-adapter routes for (tenantId, paymentType,
// toAccount.bankCode), picking the lowest ClearingRoute.Priority and
// breaking ties on the smaller RouteID. No clearing adapter matching
// fails with NoRouteAvailable; no default is applied.
func (r *Router) Route(ctx context.Context, req Request) (PaymentRouting, error) {
	if req.FromAccount != nil && req.ToAccount != nil && req.FromAccount.BankCode != "" &&
		req.FromAccount.BankCode == req.ToAccount.BankCode {
		return PaymentRouting{
			RoutingType:              RoutingTypeSameBank,
			LocalInstrumentationCode: req.LocalInstrumentCode,
			PaymentType:              req.PaymentType,
			ProcessingMode:           ProcessingModeSync,
			MessageFormat:            MessageFormatJSON,
			Description:              fmt.Sprintf("same-bank transfer within %s", req.FromAccount.BankCode),
		}, nil
	}

	var bankCode string
	if req.ToAccount != nil {
		bankCode = req.ToAccount.BankCode
	}

	routes, err := r.adapters.RoutesForTenant(ctx, req.TenantID, req.PaymentType, bankCode)
	if err != nil {
		return PaymentRouting{}, gatewayerr.Wrap(gatewayerr.NoRouteAvailable, "", err)
	}
	if len(routes) == 0 {
		return PaymentRouting{}, gatewayerr.New(gatewayerr.NoRouteAvailable, "",
			fmt.Sprintf("no clearing adapter route for tenant %s, bank code %s", req.TenantID.TenantID, bankCode))
	}

	// RoutesForTenant already orders by priority ASC, routeId ASC; the
	// first result is the winner per the spec's tiebreak rule.
	chosen := routes[0]
	adapter, ok, err := r.adapters.Get(ctx, req.TenantID, chosen.AdapterID)
	if err != nil {
		return PaymentRouting{}, gatewayerr.Wrap(gatewayerr.NoRouteAvailable, "", err)
	}
	if !ok {
		return PaymentRouting{}, gatewayerr.New(gatewayerr.NoRouteAvailable, "",
			fmt.Sprintf("route %s references missing adapter %s", chosen.RouteID, chosen.AdapterID))
	}

	return PaymentRouting{
		RoutingType:              RoutingTypeOtherBank,
		ClearingSystemCode:       string(adapter.Network),
		LocalInstrumentationCode: req.LocalInstrumentCode,
		PaymentType:              req.PaymentType,
		ProcessingMode:           ProcessingModeAsync,
		MessageFormat:            MessageFormatXML,
		Description:              fmt.Sprintf("routed via %s adapter %s (route %s)", adapter.Network, adapter.AdapterID, chosen.RouteID),
		RouteID:                  chosen.RouteID,
		AdapterID:                adapter.AdapterID,
		Endpoint:                 adapter.Endpoint,
	}, nil
}
