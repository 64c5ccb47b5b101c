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

package contact

import (
	"context"
	"errors"
	"time"

	"github.com/scopeguard/scopeguard/internal/authz"
	"github.com/scopeguard/scopeguard/internal/membership"
)

// Domain errors
var ErrContactNotFound = errors.New("contact not found")

// Contact is a tenant-scoped business entity. It is the representative
// consumer of the authorization core: every operation on it goes
// through the guard, the target-tenant validator, or the
// scoped-collection filter.
type Contact struct {
	ID        string
	OrgID     membership.TenantID
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TenantID implements authz.TenantScoped.
func (c *Contact) TenantID() membership.TenantID {
	return c.OrgID
}

// Repository defines the interface for contact persistence.
type Repository interface {
	// Query returns the unrestricted collection query for contacts,
	// ready for the scoped-collection filter.
	Query() authz.Query

	List(ctx context.Context, q authz.Query) ([]*Contact, error)
	GetByID(ctx context.Context, id string) (*Contact, error)
	Create(ctx context.Context, c *Contact) error
	Update(ctx context.Context, c *Contact) error
	Delete(ctx context.Context, id string) error
}
