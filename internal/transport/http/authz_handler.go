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
	"net/http"
	"strconv"

	"github.com/scopeguard/scopeguard/internal/membership"
)

// CheckPermission answers whether the calling user holds a permission
// in an organization. The answer is a plain boolean: a missing
// permission is a valid outcome, not an error.
func (h *Handler) CheckPermission(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())

	codename := r.URL.Query().Get("codename")
	if codename == "" {
		respondError(w, http.StatusBadRequest, "codename query parameter is required")
		return
	}

	rawTenant := r.URL.Query().Get("tenant_id")
	if rawTenant == "" {
		respondError(w, http.StatusBadRequest, "tenant_id query parameter is required")
		return
	}
	tenantID, err := strconv.ParseInt(rawTenant, 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid tenant_id")
		return
	}

	allowed := h.authzService.HasPermission(r.Context(), user, codename, membership.TenantID(tenantID))

	respondJSON(w, http.StatusOK, map[string]any{
		"codename":  codename,
		"tenant_id": tenantID,
		"allowed":   allowed,
	})
}

// ListActiveTenants returns the organizations the calling user has an
// active membership in.
func (h *Handler) ListActiveTenants(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())

	tenants, single := h.authzService.GetActiveTenants(r.Context(), user)

	respondJSON(w, http.StatusOK, map[string]any{
		"tenant_ids": tenants,
		"single":     single,
	})
}
