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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(ClientConfig{
		BaseURL:    server.URL,
		ServiceKey: "service-key",
	})
	return client, server
}

// TestPurpose: Validates that a store 401 on token verification maps to
// ErrTokenInvalid rather than a generic error.
// Scope: Unit Test
func TestClient_AccountFromToken_UnauthorizedMapsToTokenInvalid(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user", r.URL.Path)
		assert.Equal(t, "Bearer not-a-session", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid token"})
	}))

	_, err := client.AccountFromToken(context.Background(), "not-a-session")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

// TestPurpose: Validates that a syntactically expired JWT is rejected
// locally without any request reaching the store.
// Scope: Unit Test
func TestClient_AccountFromToken_ExpiredJWTShortCircuits(t *testing.T) {
	called := false
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "someone",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("irrelevant"))
	require.NoError(t, err)

	_, err = client.AccountFromToken(context.Background(), signed)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	assert.False(t, called, "expired token must not reach the store")
}

// TestPurpose: Validates that token verification decodes the account with
// both metadata bags.
// Scope: Unit Test
func TestClient_AccountFromToken_DecodesAccount(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"id":            "acct-1",
			"email":         "judge@example.com",
			"app_metadata":  map[string]any{"role": "judge"},
			"user_metadata": map[string]any{"name": "Ada", "shirt_size": "M"},
		})
	}))

	account, err := client.AccountFromToken(context.Background(), "opaque-token")
	require.NoError(t, err)
	assert.Equal(t, "acct-1", account.ID)
	assert.Equal(t, "judge", account.AppMetadata.Role)
	assert.Equal(t, "Ada", account.UserMetadata.Name)
	assert.Equal(t, "M", account.UserMetadata.Extra["shirt_size"])
}

// TestPurpose: Validates admin list paging parameters and service-key
// authorization.
// Scope: Unit Test
func TestClient_ListAccounts(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/accounts", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "50", r.URL.Query().Get("per_page"))
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{
			"accounts": []map[string]any{{"id": "a"}, {"id": "b"}},
		})
	}))

	accounts, err := client.ListAccounts(context.Background(), 2, 50)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "a", accounts[0].ID)
}

// TestPurpose: Validates that a duplicate-email conflict on create surfaces
// as ErrEmailTaken, the signal the provisioning race depends on.
// Scope: Unit Test
func TestClient_CreateAccount_ConflictMapsToEmailTaken(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"msg": "email already registered"})
	}))

	_, err := client.CreateAccount(context.Background(), CreateAccountParams{
		Email:    "dupe@example.com",
		Password: "1234",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

// TestPurpose: Validates that the admin surface is unusable without a
// service key, independent of caller input.
// Scope: Unit Test
// Security: Missing-credential fail-closed behavior
func TestClient_AdminSurfaceRequiresServiceKey(t *testing.T) {
	client := NewClient(ClientConfig{BaseURL: "http://identity.internal"})
	assert.False(t, client.Configured())

	_, err := client.ListAccounts(context.Background(), 1, 10)
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = client.UpdateAccount(context.Background(), "id", AccountUpdate{})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = client.CreateAccount(context.Background(), CreateAccountParams{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
