package router

import (
	"context"

	"github.com/fintechrail/paygate/internal/flow"
	"github.com/fintechrail/paygate/internal/tenant"
)

// FlowAdapter adapts Router to internal/flow.Router: the Flow Engine's
// Request shape carries only the fields step 4 of spec.md §4.3 needs
// (tenantId, messageType, paymentType, localInstrumentCode), with
// account resolution happening upstream at ingress. The adapter always
// routes other-bank when account context isn't threaded through,
// matching how the Flow Engine treats clearing-system lookup as the
// only routing question it has to answer downstream of ingress
// account resolution.
type FlowAdapter struct {
	router    *Router
	resolveFn func(ctx context.Context, tenantID string) (fromBankCode, toBankCode string)
}

// NewFlowAdapter wraps router for use as a flow.Router. resolveFn looks
// up the inbound message's account bank codes for the same-bank check;
// ingress/transform own parsing the message body, so this stays a
// caller-supplied function rather than a Router dependency.
func NewFlowAdapter(router *Router, resolveFn func(ctx context.Context, tenantID string) (fromBankCode, toBankCode string)) *FlowAdapter {
	return &FlowAdapter{router: router, resolveFn: resolveFn}
}

func (f *FlowAdapter) Route(ctx context.Context, tenantID, messageType, paymentType, localInstrumentCode string) (flow.RouteDecision, error) {
	var fromCode, toCode string
	if f.resolveFn != nil {
		fromCode, toCode = f.resolveFn(ctx, tenantID)
	}

	routing, err := f.router.Route(ctx, Request{
		TenantID:            tenant.Context{TenantID: tenantID},
		FromAccount:         &Account{BankCode: fromCode},
		ToAccount:           &Account{BankCode: toCode},
		PaymentType:         paymentType,
		LocalInstrumentCode: localInstrumentCode,
	})
	if err != nil {
		return flow.RouteDecision{}, err
	}

	return flow.RouteDecision{
		RouteID:            routing.RouteID,
		ServiceName:        routing.AdapterID,
		Endpoint:           routing.Endpoint,
		ClearingSystemCode: routing.ClearingSystemCode,
	}, nil
}
