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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestPurpose: Validates the prefix rule: a path is allowed iff it equals an
// allowlisted prefix or is a strict path descendant of one. Plain substring
// prefixes like "/dashboard2" must not match "/dashboard".
// Scope: Unit Test
// Security: Authorization boundary correctness
func TestRoutes_IsRouteAllowed(t *testing.T) {
	tests := []struct {
		name string
		role Role
		path string
		want bool
	}{
		{"judge home", RoleJudge, "/judge", true},
		{"judge descendant", RoleJudge, "/judge/scores/42", true},
		{"judge denied dashboard", RoleJudge, "/dashboard", false},
		{"judge denied sponsor area", RoleJudge, "/sponsor", false},
		{"sponsor home", RoleSponsor, "/sponsor", true},
		{"sponsor descendant", RoleSponsor, "/sponsor/booth", true},
		{"sponsor denied judge area", RoleSponsor, "/judge", false},
		{"admin dashboard", RoleAdmin, "/dashboard", true},
		{"admin dashboard descendant", RoleAdmin, "/dashboard/schedule", true},
		{"admin may view judge area", RoleAdmin, "/judge/scores", true},
		{"admin may view sponsor area", RoleAdmin, "/sponsor", true},
		{"superadmin dashboard", RoleSuperAdmin, "/dashboard/settings", true},
		{"no substring false positive", RoleAdmin, "/dashboard2", false},
		{"no substring false positive descendant", RoleJudge, "/judges", false},
		{"root never allowed", RoleAdmin, "/", false},
		{"unrelated path", RoleSuperAdmin, "/api/v1/judges", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRouteAllowed(tt.role, tt.path))
		})
	}
}

// TestPurpose: Validates that hackers are never permitted into the dashboard
// tree, whatever the path.
// Scope: Unit Test
// Security: Default-deny for the unprivileged role
func TestRoutes_HackerIsNeverAllowed(t *testing.T) {
	paths := []string{
		"/", "/dashboard", "/dashboard/schedule", "/judge", "/judge/scores",
		"/sponsor", "/login", "/judge/login", "", "/anything/else",
	}
	for _, path := range paths {
		assert.False(t, IsRouteAllowed(RoleHacker, path), "hacker must be denied %q", path)
	}
}

// TestPurpose: Validates that every role has a home route and that the home
// route is itself allowed for the role (so denial redirects cannot loop).
// Scope: Unit Test
func TestRoutes_DefaultRouteFor(t *testing.T) {
	assert.Equal(t, "/dashboard", DefaultRouteFor(RoleAdmin))
	assert.Equal(t, "/dashboard", DefaultRouteFor(RoleSuperAdmin))
	assert.Equal(t, "/judge", DefaultRouteFor(RoleJudge))
	assert.Equal(t, "/sponsor", DefaultRouteFor(RoleSponsor))
	assert.Equal(t, "/", DefaultRouteFor(RoleHacker))

	// Unknown roles fall back to the hacker home.
	assert.Equal(t, "/", DefaultRouteFor(Role("wizard")))

	// Loop-freedom: a role redirected to its home must be allowed there.
	for _, r := range []Role{RoleJudge, RoleSponsor, RoleAdmin, RoleSuperAdmin} {
		assert.True(t, IsRouteAllowed(r, DefaultRouteFor(r)),
			"role %q must be allowed on its own home route", r)
	}
}

// TestPurpose: Validates login-page selection: judge/sponsor areas prompt the
// judge login, everything else the admin login.
// Scope: Unit Test
func TestRoutes_LoginRouteFor(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/judge", JudgeLoginRoute},
		{"/judge/scores", JudgeLoginRoute},
		{"/sponsor", JudgeLoginRoute},
		{"/sponsor/booth/3", JudgeLoginRoute},
		{"/judges", AdminLoginRoute},
		{"/dashboard", AdminLoginRoute},
		{"/dashboard/schedule", AdminLoginRoute},
		{"/", AdminLoginRoute},
		{"", AdminLoginRoute},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LoginRouteFor(tt.path), "path %q", tt.path)
	}
}
