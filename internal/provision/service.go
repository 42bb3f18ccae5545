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

// Package provision upserts judge accounts into the external identity store
// on behalf of authenticated admins.
package provision

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/hackgate/hackgate/internal/audit"
	"github.com/hackgate/hackgate/internal/identitystore"
	"github.com/hackgate/hackgate/internal/role"
)

var tracer = otel.Tracer("hackgate/provision")

// listPageSize bounds the account page fetched during the upsert lookup.
const listPageSize = 1000

// Request carries the judge details submitted by an admin.
type Request struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	PIN   string `json:"pin"`
}

// Result reports the account the upsert converged on.
type Result struct {
	AccountID string
	Created   bool
}

// Service provides judge provisioning business logic.
type Service struct {
	store       identitystore.Store
	auditLogger audit.Logger
}

// NewService creates a provisioning service. A nil store means the identity
// store admin credentials were never configured; every call then fails with
// a configuration error before touching caller input.
func NewService(store identitystore.Store, auditLogger audit.Logger) *Service {
	return &Service{store: store, auditLogger: auditLogger}
}

// ProvisionJudge upserts a judge account keyed on case-insensitive email.
//
// Preconditions are checked in a fixed order, short-circuiting on the first
// failure: server configuration, bearer token shape, token verification,
// caller role, email, PIN. The caller's role is re-derived server-side from
// the account the token resolves to; a client-asserted role is never
// trusted.
//
// The upsert always writes the password, even when the PIN is unchanged.
// Repeated calls with the same email converge on one account; a concurrent
// create race is resolved by the store's unique-email constraint, with the
// losing call surfacing the conflict as an upstream error.
func (s *Service) ProvisionJudge(ctx context.Context, authorization string, req Request) (*Result, error) {
	ctx, span := tracer.Start(ctx, "provision.ProvisionJudge")
	defer span.End()

	if s.store == nil {
		return nil, errConfiguration("Identity store admin credentials are not configured")
	}

	token, ok := parseBearer(authorization)
	if !ok {
		return nil, errUnauthenticated()
	}

	caller, err := s.store.AccountFromToken(ctx, token)
	if err != nil {
		return nil, errUnauthenticated()
	}

	if !role.Resolve(caller).IsElevated() {
		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeProvisionDenied,
			ActorID:  caller.ID,
			Resource: "judge",
			Metadata: map[string]any{audit.AttrReason: "insufficient_role"},
		})
		return nil, errForbidden()
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, errValidation("Email is required")
	}

	// Characters, not bytes: a multibyte PIN must clear the same bar.
	pin := strings.TrimSpace(req.PIN)
	if utf8.RuneCountInString(pin) < 4 {
		return nil, errValidation("PIN must be at least 4 characters")
	}

	name := strings.TrimSpace(req.Name)

	existing, err := s.findByEmail(ctx, email)
	if err != nil {
		return nil, errUpstream(err)
	}
	span.SetAttributes(attribute.Bool("account_exists", existing != nil))

	if existing != nil {
		return s.update(ctx, caller, existing, pin, name)
	}
	return s.create(ctx, caller, email, pin, name)
}

// findByEmail scans one bounded page of accounts for a case-insensitive
// email match.
func (s *Service) findByEmail(ctx context.Context, email string) (*identitystore.Account, error) {
	accounts, err := s.store.ListAccounts(ctx, 1, listPageSize)
	if err != nil {
		return nil, err
	}
	for _, account := range accounts {
		if account.EmailMatches(email) {
			return account, nil
		}
	}
	return nil, nil
}

func (s *Service) update(ctx context.Context, caller, existing *identitystore.Account, pin, name string) (*Result, error) {
	overlay := identitystore.Metadata{Role: string(role.RoleJudge)}
	app := existing.AppMetadata.Merge(overlay)

	userOverlay := overlay
	userOverlay.Name = name
	user := existing.UserMetadata.Merge(userOverlay)

	updated, err := s.store.UpdateAccount(ctx, existing.ID, identitystore.AccountUpdate{
		Password:     &pin,
		AppMetadata:  &app,
		UserMetadata: &user,
	})
	if err != nil {
		return nil, errUpstream(err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeJudgeUpdated,
		ActorID:  caller.ID,
		Resource: updated.ID,
		Metadata: map[string]any{"email": updated.Email},
	})
	return &Result{AccountID: updated.ID}, nil
}

func (s *Service) create(ctx context.Context, caller *identitystore.Account, email, pin, name string) (*Result, error) {
	meta := identitystore.Metadata{Role: string(role.RoleJudge)}
	userMeta := meta
	userMeta.Name = name

	created, err := s.store.CreateAccount(ctx, identitystore.CreateAccountParams{
		Email:    email,
		Password: pin,
		// Admin-provisioned accounts skip the verification round-trip.
		EmailConfirm: true,
		AppMetadata:  meta,
		UserMetadata: userMeta,
	})
	if err != nil {
		return nil, errUpstream(err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeJudgeProvisioned,
		ActorID:  caller.ID,
		Resource: created.ID,
		Metadata: map[string]any{"email": created.Email},
	})
	return &Result{AccountID: created.ID, Created: true}, nil
}

// parseBearer extracts the token from an "Authorization: Bearer <token>"
// header value.
func parseBearer(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
