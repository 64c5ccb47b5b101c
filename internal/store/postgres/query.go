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

package postgres

import (
	"fmt"
	"strings"

	"github.com/scopeguard/scopeguard/internal/authz"
	"github.com/scopeguard/scopeguard/internal/membership"
)

// SelectQuery is a minimal immutable select description implementing
// authz.Query. The scoped-collection filter narrows it; the owning
// repository renders and runs it.
type SelectQuery struct {
	table        string
	columns      []string
	tenantColumn string
	conds        []string
	args         []any
	orderBy      string
	none         bool
}

// NewSelectQuery creates an unrestricted query over a tenant-scoped
// table. Pass tenantColumn "" for entities that are not tenant-scoped;
// the filter will then reject the query as misconfigured.
func NewSelectQuery(table, tenantColumn string, columns ...string) *SelectQuery {
	return &SelectQuery{
		table:        table,
		columns:      columns,
		tenantColumn: tenantColumn,
	}
}

// OrderBy sets the result ordering.
func (q *SelectQuery) OrderBy(expr string) *SelectQuery {
	c := q.clone()
	c.orderBy = expr
	return c
}

// TenantColumn implements authz.Query.
func (q *SelectQuery) TenantColumn() string {
	return q.tenantColumn
}

// RestrictTo implements authz.Query.
func (q *SelectQuery) RestrictTo(ids []membership.TenantID) authz.Query {
	tenantIDs := make([]int64, len(ids))
	for i, id := range ids {
		tenantIDs[i] = int64(id)
	}

	c := q.clone()
	c.args = append(c.args, tenantIDs)
	c.conds = append(c.conds, fmt.Sprintf("%s = ANY($%d)", q.tenantColumn, len(c.args)))
	return c
}

// RestrictToNone implements authz.Query.
func (q *SelectQuery) RestrictToNone() authz.Query {
	c := q.clone()
	c.none = true
	return c
}

// Empty reports whether the query is restricted to no rows at all, so
// repositories can skip the round trip.
func (q *SelectQuery) Empty() bool {
	return q.none
}

// SQL renders the query and its arguments.
func (q *SelectQuery) SQL() (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(q.columns, ", "))
	b.WriteString(" FROM ")
	b.WriteString(q.table)
	if len(q.conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(q.conds, " AND "))
	}
	if q.orderBy != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(q.orderBy)
	}
	return b.String(), q.args
}

func (q *SelectQuery) clone() *SelectQuery {
	c := *q
	c.conds = append([]string(nil), q.conds...)
	c.args = append([]any(nil), q.args...)
	return &c
}
