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

package guard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgate/hackgate/internal/identitystore"
	"github.com/hackgate/hackgate/internal/identitystore/memory"
	"github.com/hackgate/hackgate/internal/role"
)

func sessionWithRole(r string) *identitystore.Session {
	return &identitystore.Session{
		Token: "tok",
		Account: &identitystore.Account{
			ID:          "acct",
			Email:       "someone@example.com",
			AppMetadata: identitystore.Metadata{Role: r},
		},
	}
}

// TestPurpose: Validates the pure route decision across the session states
// the dashboard can be in.
// Scope: Unit Test
// Security: Fail-closed access control
func TestGuard_Decide(t *testing.T) {
	tests := []struct {
		name         string
		sess         *identitystore.Session
		fetchErr     error
		path         string
		wantAllowed  bool
		wantRedirect string
	}{
		{
			name:         "no session redirects to admin login",
			path:         "/dashboard/scores",
			wantAllowed:  false,
			wantRedirect: role.AdminLoginRoute,
		},
		{
			name:         "no session on judge path redirects to judge login",
			path:         "/judge/queue",
			wantAllowed:  false,
			wantRedirect: role.JudgeLoginRoute,
		},
		{
			name:         "fetch error denies even with a session attached",
			sess:         sessionWithRole("admin"),
			fetchErr:     errors.New("store unreachable"),
			path:         "/dashboard",
			wantAllowed:  false,
			wantRedirect: role.AdminLoginRoute,
		},
		{
			name: "expired session redirects to login",
			sess: &identitystore.Session{
				Token:     "tok",
				Account:   &identitystore.Account{ID: "acct"},
				ExpiresAt: time.Now().Add(-time.Minute),
			},
			path:         "/judge",
			wantAllowed:  false,
			wantRedirect: role.JudgeLoginRoute,
		},
		{
			name:         "judge allowed on judge routes",
			sess:         sessionWithRole("judge"),
			path:         "/judge/queue",
			wantAllowed:  true,
			wantRedirect: "",
		},
		{
			name:         "judge denied on dashboard goes to own home",
			sess:         sessionWithRole("judge"),
			path:         "/dashboard",
			wantAllowed:  false,
			wantRedirect: "/judge",
		},
		{
			name:         "hacker denied everywhere guarded",
			sess:         sessionWithRole(""),
			path:         "/sponsor",
			wantAllowed:  false,
			wantRedirect: "/",
		},
		{
			name:         "admin allowed across surfaces",
			sess:         sessionWithRole("admin"),
			path:         "/sponsor/booth",
			wantAllowed:  true,
			wantRedirect: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.sess, tt.fetchErr, tt.path)
			assert.Equal(t, tt.wantAllowed, d.Allowed())
			assert.Equal(t, tt.wantRedirect, d.RedirectTo)
		})
	}
}

// TestPurpose: Validates that a denial never redirects back to the denied
// path, so the browser cannot enter a redirect loop.
// Scope: Unit Test
func TestGuard_Decide_RedirectNeverLoops(t *testing.T) {
	paths := []string{"/dashboard", "/judge", "/sponsor", "/judge/queue"}
	roles := []string{"", "judge", "sponsor", "admin", "superadmin"}

	for _, p := range paths {
		for _, r := range roles {
			d := Decide(sessionWithRole(r), nil, p)
			if !d.Allowed() {
				assert.NotEqual(t, p, d.RedirectTo, "role %q path %q", r, p)
			}
		}
	}
}

type failingStore struct{ err error }

func (f *failingStore) AccountFromToken(ctx context.Context, token string) (*identitystore.Account, error) {
	return nil, f.err
}

func (f *failingStore) ListAccounts(ctx context.Context, page, perPage int) ([]*identitystore.Account, error) {
	return nil, f.err
}

func (f *failingStore) UpdateAccount(ctx context.Context, id string, update identitystore.AccountUpdate) (*identitystore.Account, error) {
	return nil, f.err
}

func (f *failingStore) CreateAccount(ctx context.Context, params identitystore.CreateAccountParams) (*identitystore.Account, error) {
	return nil, f.err
}

// TestPurpose: Validates end-to-end evaluation against a live store: fresh
// reads, allowed and denied verdicts, and fail-closed behavior on store
// errors.
// Scope: Unit Test
// Security: Fail-closed access control
func TestEvaluator_Evaluate(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	account, err := store.CreateAccount(ctx, identitystore.CreateAccountParams{
		Email:       "judge@example.com",
		Password:    "1234",
		AppMetadata: identitystore.Metadata{Role: "judge"},
	})
	require.NoError(t, err)
	token := store.IssueToken(account.ID)

	eval := NewEvaluator(store)

	d := eval.Evaluate(ctx, token, "/judge")
	assert.True(t, d.Allowed())
	assert.Equal(t, role.RoleJudge, d.Role)

	d = eval.Evaluate(ctx, token, "/dashboard")
	assert.False(t, d.Allowed())
	assert.Equal(t, "/judge", d.RedirectTo)

	// Revocation takes effect on the next evaluation, nothing is cached.
	store.RevokeToken(token)
	d = eval.Evaluate(ctx, token, "/judge")
	assert.False(t, d.Allowed())
	assert.Equal(t, role.JudgeLoginRoute, d.RedirectTo)

	d = eval.Evaluate(ctx, "", "/judge")
	assert.False(t, d.Allowed())

	broken := NewEvaluator(&failingStore{err: errors.New("boom")})
	d = broken.Evaluate(ctx, "some-token", "/dashboard")
	assert.False(t, d.Allowed())
	assert.Equal(t, role.AdminLoginRoute, d.RedirectTo)
}

// TestPurpose: Validates that evaluation publishes sign-in and sign-out
// transitions to the watcher while ignoring foreign-token failures.
// Scope: Unit Test
func TestEvaluator_PublishesSessionChanges(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	account, err := store.CreateAccount(ctx, identitystore.CreateAccountParams{
		Email:       "watch@example.com",
		Password:    "1234",
		AppMetadata: identitystore.Metadata{Role: "admin"},
	})
	require.NoError(t, err)
	token := store.IssueToken(account.ID)

	watcher := NewWatcher()
	eval := NewEvaluator(store).WithWatcher(watcher)

	eval.Evaluate(ctx, token, "/dashboard")
	current := watcher.Current()
	require.NotNil(t, current)
	assert.Equal(t, token, current.Token)

	// A different token failing to verify must not end the held session.
	eval.Evaluate(ctx, "unrelated-token", "/dashboard")
	require.NotNil(t, watcher.Current())
	assert.Equal(t, token, watcher.Current().Token)

	// The held token failing to verify is a sign-out.
	store.RevokeToken(token)
	eval.Evaluate(ctx, token, "/dashboard")
	assert.Nil(t, watcher.Current())
}
