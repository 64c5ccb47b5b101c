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
	"strings"

	"github.com/scopeguard/scopeguard/internal/membership"
)

// TenantScoped is implemented by entities that carry their owning
// tenant. Business entities satisfy it to participate in per-object
// permission checks and scoped-collection filtering.
type TenantScoped interface {
	TenantID() membership.TenantID
}

// TenantIDOf normalizes a tenant reference to a tenant ID. The accepted
// variants are a closed set: a raw ID, an organization or membership
// entity, or any TenantScoped value. Anything else is indeterminable
// and reported as !ok.
func TenantIDOf(ref any) (membership.TenantID, bool) {
	switch v := ref.(type) {
	case membership.TenantID:
		return v, true
	case int64:
		return membership.TenantID(v), true
	case int:
		return membership.TenantID(v), true
	case membership.Organization:
		return v.ID, true
	case *membership.Organization:
		if v == nil {
			return 0, false
		}
		return v.ID, true
	case *membership.Membership:
		if v == nil {
			return 0, false
		}
		return v.TenantID, true
	case TenantScoped:
		return v.TenantID(), true
	default:
		return 0, false
	}
}

// StripNamespace drops a leading app/namespace segment from a
// permission codename, so callers may pass either "add_contact" or
// "crm.add_contact".
func StripNamespace(codename string) string {
	if i := strings.LastIndex(codename, "."); i >= 0 {
		return codename[i+1:]
	}
	return codename
}
