package auth

import (
	"context"
	"testing"
)

func TestNewSimpleRBACAuthorizer(t *testing.T) {
	config := RBACConfig{
		Roles: map[string]RoleConfig{
			"admin": {Permissions: []string{"*"}},
		},
	}

	auth := NewSimpleRBACAuthorizer(config)

	if auth.Name() != "simple_rbac" {
		t.Errorf("Name() = %v, want simple_rbac", auth.Name())
	}
}

func TestSimpleRBACAuthorizer_Authorize(t *testing.T) {
	config := RBACConfig{
		Roles: map[string]RoleConfig{
			"admin": {
				AllowedRoutes:  []string{"*"},
				AllowedActions: []string{"*"},
			},
			"operator": {
				AllowedRoutes:  []string{"circuit-reset", "tenant-status"},
				AllowedActions: []string{"access"},
			},
			"auditor": {
				AllowedRoutes:  []string{"*"},
				AllowedActions: []string{"read"},
				DeniedRoutes:   []string{"admin*"},
			},
			"inherits_operator": {
				Inherits: []string{"operator"},
			},
		},
		DefaultRole: "auditor",
	}

	auth := NewSimpleRBACAuthorizer(config)

	tests := []struct {
		name    string
		subject *Identity
		request *AuthzRequest
		wantErr bool
	}{
		{
			name:    "nil subject",
			subject: nil,
			request: &AuthzRequest{
				ResourceType: "admin",
				Resource:     "circuit-reset",
				Action:       "access",
			},
			wantErr: true,
		},
		{
			name:    "admin can do anything",
			subject: &Identity{Roles: []string{"admin"}},
			request: &AuthzRequest{
				ResourceType: "admin",
				Resource:     "any-route",
				Action:       "access",
			},
			wantErr: false,
		},
		{
			name:    "operator can reach an allowed route",
			subject: &Identity{Roles: []string{"operator"}},
			request: &AuthzRequest{
				ResourceType: "admin",
				Resource:     "circuit-reset",
				Action:       "access",
			},
			wantErr: false,
		},
		{
			name:    "operator cannot reach a non-allowed route",
			subject: &Identity{Roles: []string{"operator"}},
			request: &AuthzRequest{
				ResourceType: "admin",
				Resource:     "admin-panel",
				Action:       "access",
			},
			wantErr: true,
		},
		{
			name:    "auditor can read but not access",
			subject: &Identity{Roles: []string{"auditor"}},
			request: &AuthzRequest{
				ResourceType: "admin",
				Resource:     "circuit-reset",
				Action:       "read",
			},
			wantErr: false,
		},
		{
			name:    "auditor denied admin routes",
			subject: &Identity{Roles: []string{"auditor"}},
			request: &AuthzRequest{
				ResourceType: "admin",
				Resource:     "admin-panel",
				Action:       "read",
			},
			wantErr: true,
		},
		{
			name:    "inherited role permissions",
			subject: &Identity{Roles: []string{"inherits_operator"}},
			request: &AuthzRequest{
				ResourceType: "admin",
				Resource:     "circuit-reset",
				Action:       "access",
			},
			wantErr: false,
		},
		{
			name:    "default role when no roles",
			subject: &Identity{Roles: []string{}},
			request: &AuthzRequest{
				ResourceType: "admin",
				Resource:     "circuit-reset",
				Action:       "read",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.request.Subject = tt.subject
			err := auth.Authorize(context.Background(), tt.request)

			if tt.wantErr && err == nil {
				t.Error("Authorize() should return error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Authorize() error = %v", err)
			}
		})
	}
}

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		pattern string
		value   string
		want    bool
	}{
		{"*", "anything", true},
		{"admin", "admin", true},
		{"admin", "operator", false},
		{"admin*", "admin", true},
		{"admin*", "admin-panel", true},
		{"admin*", "operator", false},
		{"circuit*", "circuit-reset", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"_"+tt.value, func(t *testing.T) {
			if got := matchPattern(tt.pattern, tt.value); got != tt.want {
				t.Errorf("matchPattern(%q, %q) = %v, want %v", tt.pattern, tt.value, got, tt.want)
			}
		})
	}
}

func TestMatchPermission(t *testing.T) {
	tests := []struct {
		perm    string
		request *AuthzRequest
		want    bool
	}{
		{
			perm:    "access",
			request: &AuthzRequest{Action: "access"},
			want:    true,
		},
		{
			perm:    "*",
			request: &AuthzRequest{Action: "anything"},
			want:    true,
		},
		{
			perm:    "circuit-reset:access",
			request: &AuthzRequest{ResourceType: "admin", Resource: "circuit-reset", Action: "access"},
			want:    true,
		},
		{
			perm:    "circuit-reset:*",
			request: &AuthzRequest{ResourceType: "admin", Resource: "circuit-reset", Action: "access"},
			want:    true,
		},
		{
			perm:    "admin:circuit-reset:access",
			request: &AuthzRequest{ResourceType: "admin", Resource: "circuit-reset", Action: "access"},
			want:    true,
		},
		{
			perm:    "admin:*:access",
			request: &AuthzRequest{ResourceType: "admin", Resource: "circuit-reset", Action: "access"},
			want:    true,
		},
		{
			perm:    "*:*:*",
			request: &AuthzRequest{ResourceType: "admin", Resource: "circuit-reset", Action: "access"},
			want:    true,
		},
		{
			perm:    "tenant:users:read",
			request: &AuthzRequest{ResourceType: "admin", Resource: "circuit-reset", Action: "access"},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.perm, func(t *testing.T) {
			if got := matchPermission(tt.perm, tt.request); got != tt.want {
				t.Errorf("matchPermission(%q) = %v, want %v", tt.perm, got, tt.want)
			}
		})
	}
}

func TestAuthzRequest_RouteName(t *testing.T) {
	tests := []struct {
		name    string
		request *AuthzRequest
		want    string
	}{
		{
			name:    "route prefix stripped",
			request: &AuthzRequest{Resource: "route:circuit-reset"},
			want:    "circuit-reset",
		},
		{
			name:    "no route prefix returns resource as-is",
			request: &AuthzRequest{Resource: "circuit-reset"},
			want:    "circuit-reset",
		},
		{
			name:    "admin resource returns as-is",
			request: &AuthzRequest{ResourceType: "admin", Resource: "/admin/circuit/reset"},
			want:    "/admin/circuit/reset",
		},
		{
			name:    "empty resource",
			request: &AuthzRequest{Resource: ""},
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.request.RouteName(); got != tt.want {
				t.Errorf("RouteName() = %v, want %v", got, tt.want)
			}
		})
	}
}
