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

package identitystore

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Domain errors
var (
	ErrNotConfigured   = errors.New("identity store admin credentials are not configured")
	ErrTokenInvalid    = errors.New("invalid or expired token")
	ErrAccountNotFound = errors.New("account not found")
	ErrEmailTaken      = errors.New("email is already registered")
)

// Account is an identity owned by the external store. HackGate never creates
// or destroys accounts on its own; it only reads them and requests mutation
// through the store's admin surface.
type Account struct {
	ID    string `json:"id"`
	Email string `json:"email"`

	// EmailConfirmed is set at creation time for admin-provisioned accounts
	// so judges skip the verification round-trip.
	EmailConfirmed bool `json:"email_confirmed"`

	// AppMetadata is mutable only by privileged callers and is the
	// authoritative role source.
	AppMetadata Metadata `json:"app_metadata"`

	// UserMetadata is mutable by the account holder and is only ever a
	// fallback role hint.
	UserMetadata Metadata `json:"user_metadata"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EmailMatches compares the account email against email case-insensitively.
func (a *Account) EmailMatches(email string) bool {
	return strings.EqualFold(a.Email, email)
}

// Session is the ephemeral view of a signed-in account. It is owned by the
// external store; HackGate reads it fresh on every guard check and never
// persists it.
type Session struct {
	Token     string
	Account   *Account
	ExpiresAt time.Time
}

// Expired reports whether the session's token lifetime has elapsed.
func (s *Session) Expired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// AccountUpdate describes a partial mutation of an existing account.
// Nil fields are left untouched by the store.
type AccountUpdate struct {
	Password     *string   `json:"password,omitempty"`
	AppMetadata  *Metadata `json:"app_metadata,omitempty"`
	UserMetadata *Metadata `json:"user_metadata,omitempty"`
}

// CreateAccountParams describes a new account to be created through the
// admin surface.
type CreateAccountParams struct {
	Email        string   `json:"email"`
	Password     string   `json:"password"`
	EmailConfirm bool     `json:"email_confirm"`
	AppMetadata  Metadata `json:"app_metadata"`
	UserMetadata Metadata `json:"user_metadata"`
}

// Store is the administrative surface of the external identity store.
type Store interface {
	// AccountFromToken verifies a bearer token and returns the account it
	// belongs to. Invalid or expired tokens yield ErrTokenInvalid.
	AccountFromToken(ctx context.Context, token string) (*Account, error)

	// ListAccounts returns one page of accounts. Pages start at 1.
	ListAccounts(ctx context.Context, page, perPage int) ([]*Account, error)

	// UpdateAccount applies a partial update to an account by id.
	UpdateAccount(ctx context.Context, id string, update AccountUpdate) (*Account, error)

	// CreateAccount creates a new account. A duplicate email yields
	// ErrEmailTaken; the store enforces email uniqueness.
	CreateAccount(ctx context.Context, params CreateAccountParams) (*Account, error)
}
