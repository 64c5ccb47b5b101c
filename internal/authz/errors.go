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

import "errors"

// Error taxonomy. A legitimate deny is a return value, not an error:
// only the target-tenant validator and the guard raise these, because
// their callers must distinguish "supply a tenant" from "that tenant is
// not yours".
var (
	// ErrUnauthorized means no authenticated identity was supplied.
	ErrUnauthorized = errors.New("authentication required")

	// ErrForbidden means the identity is known but lacks access. This is
	// a normal, frequently-occurring result, not a fault.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidInput means the caller-supplied tenant reference is
	// malformed or conflicts with the user's single-tenant context. It
	// indicates a client bug rather than an access boundary.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownAction means an operation kind has no codename mapping.
	ErrUnknownAction = errors.New("unknown action")
)
