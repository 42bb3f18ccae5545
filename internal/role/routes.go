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

import "strings"

// Static route table. Changing the product's navigation structure means
// editing these maps only; nothing at runtime mutates them.

// Dashboard area prefixes.
const (
	prefixDashboard = "/dashboard"
	prefixJudge     = "/judge"
	prefixSponsor   = "/sponsor"
)

// Login pages.
const (
	AdminLoginRoute = "/login"
	JudgeLoginRoute = "/judge/login"
)

// allowedPrefixes maps each role to the path prefixes it may view.
// RoleHacker is intentionally absent: hackers have no dashboard access.
var allowedPrefixes = map[Role][]string{
	RoleJudge:      {prefixJudge},
	RoleSponsor:    {prefixSponsor},
	RoleAdmin:      {prefixDashboard, prefixJudge, prefixSponsor},
	RoleSuperAdmin: {prefixDashboard, prefixJudge, prefixSponsor},
}

// defaultRoutes maps each role to its post-login landing page. Also the
// fallback redirect target when an allowed-path check fails, so a denied
// user always lands somewhere their role can view.
var defaultRoutes = map[Role]string{
	RoleHacker:     "/",
	RoleJudge:      prefixJudge,
	RoleSponsor:    prefixSponsor,
	RoleAdmin:      prefixDashboard,
	RoleSuperAdmin: prefixDashboard,
}

// IsRouteAllowed reports whether the role may view path.
//
// A path is allowed iff it equals one of the role's prefixes or is a strict
// path descendant (prefix + "/"). Plain string-prefix matching would let
// "/dashboard2" through on a "/dashboard" entry, which is why the separator
// is checked explicitly.
func IsRouteAllowed(r Role, path string) bool {
	for _, prefix := range allowedPrefixes[r] {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

// DefaultRouteFor returns the role's home route.
func DefaultRouteFor(r Role) string {
	if route, ok := defaultRoutes[r]; ok {
		return route
	}
	return defaultRoutes[RoleHacker]
}

// LoginRouteFor returns the login page an unauthenticated visitor of path
// should be sent to. Judge and sponsor areas share a PIN-based login page;
// everything else prompts the admin login.
func LoginRouteFor(path string) string {
	if path == prefixJudge || strings.HasPrefix(path, prefixJudge+"/") ||
		path == prefixSponsor || strings.HasPrefix(path, prefixSponsor+"/") {
		return JudgeLoginRoute
	}
	return AdminLoginRoute
}
