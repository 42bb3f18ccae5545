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

package http

import (
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/hackgate/hackgate/internal/audit"
	"github.com/hackgate/hackgate/internal/observability/logger"
	"github.com/hackgate/hackgate/internal/role"
)

// CheckAccessResponse is the guard verdict for one route.
type CheckAccessResponse struct {
	Allowed    bool   `json:"allowed"`
	Role       string `json:"role"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

// CheckAccess evaluates the route guard for the caller's bearer token.
//
// The verdict is always a 200: a denial is part of the dashboard's normal
// control flow (the SPA navigates to redirect_to), not an error. Session
// state is read fresh on every call, so a sign-in, sign-out, or token
// refresh is reflected on the next check without any cache to invalidate.
//
// @Summary Check route access
// @Description Evaluates the route guard for the caller's session
// @Tags Guard
// @Produce json
// @Security BearerAuth
// @Param path query string true "Route path to check"
// @Success 200 {object} CheckAccessResponse
// @Failure 400 {object} map[string]string
// @Router /access/check [get]
func (h *Handler) CheckAccess(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("path")
	if raw == "" || !strings.HasPrefix(raw, "/") {
		respondError(w, http.StatusBadRequest, "path query parameter is required")
		return
	}
	// Dot segments must not let a path slip past the prefix match.
	routePath := path.Clean(raw)

	token := bearerToken(r)
	decision := h.evaluator.Evaluate(r.Context(), token, routePath)
	h.meter.RecordAccessCheck(r.Context(), decision.Allowed(), string(decision.Role))

	if !decision.Allowed() {
		slog.DebugContext(r.Context(), "route denied",
			logger.Route(routePath),
			logger.Role(string(decision.Role)),
			logger.RedirectTo(decision.RedirectTo),
		)

		// A signed-in user straying outside their area is audit-worthy; an
		// anonymous visitor bouncing to a login page is not.
		if token != "" && decision.Role != role.RoleHacker {
			h.auditLogger.Log(r.Context(), audit.Event{
				Type:      audit.TypeAccessDenied,
				Resource:  routePath,
				IPAddress: getIPAddress(r),
				UserAgent: r.UserAgent(),
				Metadata: map[string]any{
					audit.AttrRole: string(decision.Role),
					audit.AttrPath: routePath,
				},
			})
		}
	}

	respondJSON(w, http.StatusOK, CheckAccessResponse{
		Allowed:    decision.Allowed(),
		Role:       string(decision.Role),
		RedirectTo: decision.RedirectTo,
	})
}

// bearerToken extracts the token from the Authorization header, or "" when
// absent or malformed. The guard treats both the same way: no session.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
