// Copyright 2026 The ScopeGuard Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scopeguard/scopeguard/internal/authz"
	"github.com/scopeguard/scopeguard/internal/cache"
	"github.com/scopeguard/scopeguard/internal/contact"
	"github.com/scopeguard/scopeguard/internal/identity"
	"github.com/scopeguard/scopeguard/internal/membership"
)

// fixedStore is a fixed-data membership.Store.
type fixedStore struct {
	memberships []*membership.Membership
}

func (s *fixedStore) ActiveMembership(_ context.Context, userID string, tenantID membership.TenantID) (*membership.Membership, error) {
	for _, m := range s.memberships {
		if m.UserID == userID && m.TenantID == tenantID && m.Active {
			return m, nil
		}
	}
	return nil, membership.ErrMembershipNotFound
}

func (s *fixedStore) ActiveMembershipsForUser(_ context.Context, userID string) ([]*membership.Membership, error) {
	var out []*membership.Membership
	for _, m := range s.memberships {
		if m.UserID == userID && m.Active {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *fixedStore) ActiveMembershipsForRole(_ context.Context, roleID string) ([]*membership.Membership, error) {
	return nil, nil
}

func newAuthzHandler(t *testing.T, memberships ...*membership.Membership) *Handler {
	t.Helper()
	mem, err := cache.NewMemory(0)
	require.NoError(t, err)
	layer := cache.NewLayer(mem, time.Minute)
	svc := authz.NewService(&fixedStore{memberships: memberships}, layer, authz.Config{})
	return NewHandler(svc, nil, nil, testSecret)
}

func adminMember(userID string, tenantID membership.TenantID, perms ...string) *membership.Membership {
	return &membership.Membership{
		ID:       userID + "-m",
		UserID:   userID,
		TenantID: tenantID,
		Roles:    []membership.Role{{ID: "r1", Name: "admin", Permissions: perms}},
		Active:   true,
	}
}

// asUser attaches an already-authenticated user, bypassing the JWT
// middleware the routing tests exercise separately.
func asUser(r *http.Request, u *identity.User) *http.Request {
	return r.WithContext(WithUser(r.Context(), u))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCheckPermissionRejectsBadQuery(t *testing.T) {
	h := newAuthzHandler(t, adminMember("u1", 1, "view_contact"))

	tests := []struct {
		name   string
		target string
	}{
		{"missing codename", "/authz/check?tenant_id=1"},
		{"missing tenant_id", "/authz/check?codename=view_contact"},
		{"non-numeric tenant_id", "/authz/check?codename=view_contact&tenant_id=abc"},
		{"trailing garbage tenant_id", "/authz/check?codename=view_contact&tenant_id=12x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := asUser(httptest.NewRequest(http.MethodGet, tt.target, nil), &identity.User{ID: "u1"})
			rec := httptest.NewRecorder()
			h.CheckPermission(rec, r)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, decodeBody(t, rec)["error"])
		})
	}
}

func TestCheckPermissionAnswersAllowedAndDenied(t *testing.T) {
	h := newAuthzHandler(t, adminMember("u1", 1, "view_contact"))

	r := asUser(httptest.NewRequest(http.MethodGet, "/authz/check?codename=view_contact&tenant_id=1", nil), &identity.User{ID: "u1"})
	rec := httptest.NewRecorder()
	h.CheckPermission(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["allowed"])
	assert.Equal(t, "view_contact", body["codename"])
	assert.Equal(t, float64(1), body["tenant_id"])

	// No membership in tenant 2: a clean deny, not an error.
	r = asUser(httptest.NewRequest(http.MethodGet, "/authz/check?codename=view_contact&tenant_id=2", nil), &identity.User{ID: "u1"})
	rec = httptest.NewRecorder()
	h.CheckPermission(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["allowed"])
}

func TestListActiveTenants(t *testing.T) {
	h := newAuthzHandler(t,
		adminMember("u1", 1, "view_contact"),
		adminMember("u1", 2, "view_contact"),
	)

	r := asUser(httptest.NewRequest(http.MethodGet, "/authz/tenants", nil), &identity.User{ID: "u1"})
	rec := httptest.NewRecorder()
	h.ListActiveTenants(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["single"])
	assert.ElementsMatch(t, []any{float64(1), float64(2)}, body["tenant_ids"])
}

// withOrgID injects the {orgID} route parameter the way chi would.
func withOrgID(r *http.Request, orgID string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("orgID", orgID)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestRequireMembershipAdmin(t *testing.T) {
	h := newAuthzHandler(t, adminMember("admin-1", 1, "change_membership"))
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name  string
		user  *identity.User
		orgID string
		want  int
	}{
		{"anonymous", nil, "1", http.StatusUnauthorized},
		{"malformed org id fails before membership lookup", &identity.User{ID: "admin-1"}, "abc", http.StatusBadRequest},
		{"malformed org id rejects even elevated callers", &identity.User{ID: "op-1", Elevated: true}, "abc", http.StatusBadRequest},
		{"no membership in org", &identity.User{ID: "admin-1"}, "2", http.StatusForbidden},
		{"holds change_membership", &identity.User{ID: "admin-1"}, "1", http.StatusNoContent},
		{"elevated bypasses membership", &identity.User{ID: "op-1", Elevated: true}, "1", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := withOrgID(httptest.NewRequest(http.MethodGet, "/organizations/"+tt.orgID+"/members", nil), tt.orgID)
			if tt.user != nil {
				r = asUser(r, tt.user)
			}
			rec := httptest.NewRecorder()
			h.RequireMembershipAdmin(next).ServeHTTP(rec, r)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRouterRejectsMalformedOrgID(t *testing.T) {
	h := newAuthzHandler(t)
	router := NewRouter(h, NewRateLimiter(100, 100))

	r := httptest.NewRequest(http.MethodGet, "/api/v1/organizations/not-a-number", nil)
	r.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "op-1", true, time.Minute))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, decodeBody(t, rec)["error"])
}

func TestRespondServiceErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unauthorized", authz.ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", authz.ErrForbidden, http.StatusForbidden},
		{"wrapped forbidden", fmt.Errorf("no access to tenant 7: %w", authz.ErrForbidden), http.StatusForbidden},
		{"invalid input", authz.ErrInvalidInput, http.StatusBadRequest},
		{"unknown action", authz.ErrUnknownAction, http.StatusBadRequest},
		{"duplicate membership", membership.ErrMembershipAlreadyExists, http.StatusConflict},
		{"membership not found", membership.ErrMembershipNotFound, http.StatusNotFound},
		{"role not found", membership.ErrRoleNotFound, http.StatusNotFound},
		{"organization not found", membership.ErrOrganizationNotFound, http.StatusNotFound},
		{"contact not found", contact.ErrContactNotFound, http.StatusNotFound},
		{"unclassified", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			respondServiceError(rec, r, tt.err)

			assert.Equal(t, tt.want, rec.Code)
			assert.NotEmpty(t, decodeBody(t, rec)["error"])
		})
	}
}
