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

// Query is the portion of a collection query the scoped-collection
// filter can restrict. Implementations are immutable: the Restrict
// methods return a modified copy.
type Query interface {
	// TenantColumn returns the entity's tenant-ID column, or "" when the
	// entity is not tenant-scoped at all.
	TenantColumn() string

	// RestrictTo limits the query to rows belonging to the given tenants.
	RestrictTo(ids []membership.TenantID) Query

	// RestrictToNone turns the query into one that yields no rows.
	RestrictToNone() Query
}

// FilterByTenant restricts a collection query to rows belonging to
// organizations the user is an active member of. Elevated users see
// everything; anonymous users and users with no active memberships see
// nothing. The only error is the configuration case: an entity with no
// tenant column cannot be scoped and must not reach this filter.
func (s *Service) FilterByTenant(ctx context.Context, user *identity.User, q Query) (Query, error) {
	if q.TenantColumn() == "" {
		return nil, fmt.Errorf("entity has no tenant column: scoped filtering misconfigured")
	}
	if !user.Authenticated() {
		return q.RestrictToNone(), nil
	}
	if user.Elevated {
		return q, nil
	}

	tenantIDs, _ := s.GetActiveTenants(ctx, user)
	if len(tenantIDs) == 0 {
		return q.RestrictToNone(), nil
	}
	return q.RestrictTo(tenantIDs), nil
}
