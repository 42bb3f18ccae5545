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
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hackgate/hackgate/internal/observability/logger"
	"github.com/hackgate/hackgate/internal/provision"
)

// ProvisionJudgeRequest represents the judge details submitted by an admin.
// The PIN doubles as the account password.
type ProvisionJudgeRequest struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	PIN   string `json:"pin"`
}

// ProvisionJudgeResponse is returned on a successful upsert.
type ProvisionJudgeResponse struct {
	Success bool   `json:"success"`
	UserID  string `json:"userId"`
}

// ProvisionJudge handles judge account provisioning.
//
// All preconditions (configuration, bearer token, caller role, input) are
// checked by the service in a fixed order; this handler only translates the
// outcome onto the wire. Every failure is structured {"error": message},
// never a stack trace.
//
// @Summary Provision a judge account
// @Description Upserts a judge account by email; requires an admin session
// @Tags Judges
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ProvisionJudgeRequest true "Judge Details"
// @Success 200 {object} ProvisionJudgeResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /judges [post]
func (h *Handler) ProvisionJudge(w http.ResponseWriter, r *http.Request) {
	var req ProvisionJudgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.provisionService.ProvisionJudge(r.Context(), r.Header.Get("Authorization"), provision.Request{
		Email: req.Email,
		Name:  req.Name,
		PIN:   req.PIN,
	})
	if err != nil {
		h.respondProvisionError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "judge provisioned",
		logger.AccountID(result.AccountID),
		"created", result.Created,
	)
	h.meter.RecordProvision(r.Context(), result.Created)

	respondJSON(w, http.StatusOK, ProvisionJudgeResponse{
		Success: true,
		UserID:  result.AccountID,
	})
}

func (h *Handler) respondProvisionError(w http.ResponseWriter, r *http.Request, err error) {
	var perr *provision.Error
	if !errors.As(err, &perr) {
		// Nothing unexpected should escape the service, but if it does the
		// caller gets a safe generic message.
		slog.ErrorContext(r.Context(), "unexpected provisioning error", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	switch perr.Kind {
	case provision.KindConfiguration, provision.KindUpstream:
		slog.ErrorContext(r.Context(), "judge provisioning failed",
			logger.Error(perr),
			logger.ErrorKind(string(perr.Kind)),
		)
	default:
		slog.WarnContext(r.Context(), "judge provisioning rejected",
			logger.ErrorKind(string(perr.Kind)),
		)
	}

	respondError(w, perr.HTTPStatus(), perr.Message)
}
