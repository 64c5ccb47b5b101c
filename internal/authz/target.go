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

package authz

import (
	"context"
	"fmt"

	"github.com/scopeguard/scopeguard/internal/identity"
	"github.com/scopeguard/scopeguard/internal/membership"
)

// ResolveTargetTenant determines the single tenant a request should act
// against when the caller may or may not have named one explicitly.
//
// Single-tenant users: their one active tenant is authoritative; a
// conflicting supplied ID is an InvalidInput error, an omitted ID
// resolves to the inferred tenant. Multi-tenant users: a supplied ID
// must be in their active set (Forbidden otherwise); omission is an
// InvalidInput error when the action requires a tenant, and resolves to
// zero ("no tenant", caller-defined meaning) when it does not.
func (s *Service) ResolveTargetTenant(ctx context.Context, user *identity.User, suppliedTenantID *membership.TenantID, requiredForAction bool) (membership.TenantID, error) {
	if !user.Authenticated() {
		return 0, fmt.Errorf("%w: no identity supplied", ErrUnauthorized)
	}

	if user.Elevated {
		// Elevated users are not bound to memberships; they act in
		// whatever tenant they name.
		if suppliedTenantID != nil {
			return *suppliedTenantID, nil
		}
		if requiredForAction {
			return 0, fmt.Errorf("%w: organization must be specified", ErrInvalidInput)
		}
		return 0, nil
	}

	tenantIDs, singleTenant := s.GetActiveTenants(ctx, user)
	if len(tenantIDs) == 0 {
		return 0, fmt.Errorf("%w: no active organizations", ErrForbidden)
	}

	if singleTenant {
		if suppliedTenantID != nil && *suppliedTenantID != tenantIDs[0] {
			return 0, fmt.Errorf("%w: organization %d does not match your organization", ErrInvalidInput, *suppliedTenantID)
		}
		return tenantIDs[0], nil
	}

	if suppliedTenantID == nil {
		if requiredForAction {
			return 0, fmt.Errorf("%w: organization must be specified", ErrInvalidInput)
		}
		return 0, nil
	}

	for _, id := range tenantIDs {
		if id == *suppliedTenantID {
			return id, nil
		}
	}
	return 0, fmt.Errorf("%w: not a member of organization %d", ErrForbidden, *suppliedTenantID)
}
