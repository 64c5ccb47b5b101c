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

package identity

// User is the already-authenticated identity the authorization core
// evaluates. It is owned by the external identity system; this package
// only reads it.
//
// A nil *User represents an anonymous caller.
type User struct {
	ID string

	// Elevated users bypass every permission and tenant check.
	// Mapped from the identity token's "elevated" claim.
	Elevated bool
}

// Authenticated reports whether u carries a usable identity.
func (u *User) Authenticated() bool {
	return u != nil && u.ID != ""
}
