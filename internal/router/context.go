package router

import "context"

// BankCodes is the pair of originating/destination bank identifiers
// ingress extracts from an inbound message's debtor/creditor accounts,
// ahead of routing. flow.Router's own signature only carries a
// tenantID (§4.3's Request shape), so FlowAdapter's resolveFn recovers
// these off the request context instead of a wider interface change.
type BankCodes struct {
	FromBankCode string
	ToBankCode   string
}

type bankCodesContextKey int

const bankCodesKey bankCodesContextKey = iota

// WithBankCodes returns a copy of ctx carrying codes, bound by ingress
// once per request after it has parsed the inbound account fields.
func WithBankCodes(ctx context.Context, codes BankCodes) context.Context {
	return context.WithValue(ctx, bankCodesKey, codes)
}

// BankCodesFromContext retrieves the bound BankCodes, or the zero
// value and false if ingress never bound any (e.g. a message type
// whose schema doesn't carry account fields, such as a cancellation
// request).
func BankCodesFromContext(ctx context.Context) (BankCodes, bool) {
	codes, ok := ctx.Value(bankCodesKey).(BankCodes)
	return codes, ok
}

// ResolveFromContext is the resolveFn NewFlowAdapter is wired with in
// cmd/paygate: it never consults tenantID itself, trusting the bound
// BankCodes to already be scoped to the request that set them.
func ResolveFromContext(ctx context.Context, _ string) (fromBankCode, toBankCode string) {
	codes, _ := BankCodesFromContext(ctx)
	return codes.FromBankCode, codes.ToBankCode
}
