// Copyright 2026 The HackGate Authors
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

package role

import "github.com/hackgate/hackgate/internal/identitystore"

// Role is the permission level attached to a dashboard session.
type Role string

const (
	// RoleHacker is the safe default. Hackers never enter the dashboard tree.
	RoleHacker Role = "hacker"

	// RoleJudge grants access to the judging area.
	RoleJudge Role = "judge"

	// RoleSponsor grants access to the sponsor area.
	RoleSponsor Role = "sponsor"

	// RoleAdmin grants access to the organizer dashboard.
	RoleAdmin Role = "admin"

	// RoleSuperAdmin grants access to the organizer dashboard plus
	// event configuration pages.
	RoleSuperAdmin Role = "superadmin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleHacker, RoleJudge, RoleSponsor, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// IsElevated reports whether r may call provisioning endpoints.
func (r Role) IsElevated() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Resolve derives the role for an account.
//
// Precedence, highest first:
//  1. privileged (app) metadata "role", mutable only via the admin API
//  2. self (user) metadata "role"
//  3. self (user) metadata "user_role", a legacy key from the self-service
//     signup flow
//
// A self-editable field can therefore never override the privileged
// assignment, but still carries a role hint when the privileged field was
// never set. Anything missing or unrecognized resolves to RoleHacker, never
// to an elevated role.
func Resolve(account *identitystore.Account) Role {
	if account == nil {
		return RoleHacker
	}
	for _, candidate := range []string{
		account.AppMetadata.Role,
		account.UserMetadata.Role,
		account.UserMetadata.UserRole,
	} {
		if r := Role(candidate); r.Valid() {
			return r
		}
	}
	return RoleHacker
}
