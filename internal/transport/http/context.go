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

	"github.com/scopeguard/scopeguard/internal/identity"
)

type contextKey string

const userKey contextKey = "user"

// WithUser stores the authenticated user in the context.
func WithUser(ctx context.Context, u *identity.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// CurrentUser retrieves the authenticated user from the context.
// Returns nil when the request is anonymous.
func CurrentUser(ctx context.Context) *identity.User {
	if u, ok := ctx.Value(userKey).(*identity.User); ok {
		return u
	}
	return nil
}
