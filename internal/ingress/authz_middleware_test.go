package ingress

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fintechrail/paygate/internal/auth"
)

func TestRequireRole_NilAuthorizerIsPassthrough(t *testing.T) {
	called := false
	handler := RequireRole(nil, "admin", "access")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/admin/health", nil))
	if !called {
		t.Error("expected the wrapped handler to run when authorizer is nil")
	}
}

func TestRequireRole_DeniesMissingIdentity(t *testing.T) {
	authorizer := auth.NewSimpleRBACAuthorizer(auth.RBACConfig{
		Roles: map[string]auth.RoleConfig{"admin": {Permissions: []string{"admin:*"}}},
	})
	called := false
	handler := RequireRole(authorizer, "admin", "access")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/health", nil))

	if called {
		t.Error("expected the wrapped handler not to run without an identity")
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestRequireRole_AllowsIdentityWithAdminRole(t *testing.T) {
	authorizer := auth.NewSimpleRBACAuthorizer(auth.RBACConfig{
		Roles: map[string]auth.RoleConfig{"admin": {Permissions: []string{"admin:*"}}},
	})
	called := false
	handler := RequireRole(authorizer, "admin", "access")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin/health", nil)
	ctx := auth.WithIdentity(req.Context(), &auth.Identity{Principal: "ops-1", Roles: []string{"admin"}})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req.WithContext(ctx))

	if !called {
		t.Error("expected the wrapped handler to run for an identity holding the admin role")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 (handler's own default write)", rec.Code)
	}
}
