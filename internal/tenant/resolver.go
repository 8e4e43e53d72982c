package tenant

import (
	"net/http"
	"strings"

	"github.com/fintechrail/paygate/internal/auth"
	"github.com/go-chi/chi/v5"
)

// HeaderName is the explicit tenant header, checked first.
const HeaderName = "X-Tenant-ID"

// QueryParam is the query-string fallback, checked second.
const QueryParam = "tenantId"

// pathPrefix locates a tenant id embedded in the request path, e.g.
// "/tenants/acme-01/payments".
const pathPrefix = "/tenants/"

// Resolver determines the tenant for an inbound request by trying, in
// order: the X-Tenant-ID header, the tenantId query parameter, a
// /tenants/{id} path segment, the tenant claim of an already-authenticated
// identity, and finally the literal "default". The first non-empty
// candidate wins; a present-but-malformed candidate is rejected
// outright rather than falling through, so a typo'd header can't
// silently resolve into another tenant's data.
type Resolver struct {
	businessUnitHeader string
}

// NewResolver constructs a Resolver. businessUnitHeader, if non-empty,
// names an additional header carrying the optional business unit.
func NewResolver(businessUnitHeader string) *Resolver {
	return &Resolver{businessUnitHeader: businessUnitHeader}
}

// Resolve determines the Context for r. ok is false only when a
// candidate was present but failed IDPattern validation; in every other
// case resolution falls through to DefaultTenantID.
func (res *Resolver) Resolve(r *http.Request) (tc Context, ok bool) {
	for _, candidate := range res.candidates(r) {
		if candidate == "" {
			continue
		}
		tc = Context{TenantID: candidate, BusinessUnit: res.businessUnit(r)}
		return tc, tc.Valid()
	}

	tc = Context{TenantID: DefaultTenantID, BusinessUnit: res.businessUnit(r)}
	return tc, true
}

func (res *Resolver) candidates(r *http.Request) []string {
	return []string{
		r.Header.Get(HeaderName),
		r.URL.Query().Get(QueryParam),
		pathSegmentTenant(r.URL.Path),
		identityTenant(r),
	}
}

func (res *Resolver) businessUnit(r *http.Request) string {
	if res.businessUnitHeader == "" {
		return ""
	}
	return r.Header.Get(res.businessUnitHeader)
}

func pathSegmentTenant(path string) string {
	idx := strings.Index(path, pathPrefix)
	if idx < 0 {
		return ""
	}
	rest := path[idx+len(pathPrefix):]
	if end := strings.IndexByte(rest, '/'); end >= 0 {
		rest = rest[:end]
	}
	return rest
}

func identityTenant(r *http.Request) string {
	return auth.TenantIDFromContext(r.Context())
}

// RouteParamTenant extracts a tenant id bound as a chi URL parameter
// (e.g. a router mounted as "/tenants/{tenantId}/..."), for routes that
// prefer chi's own param matching over raw path scanning.
func RouteParamTenant(r *http.Request) string {
	return chi.URLParam(r, "tenantId")
}
