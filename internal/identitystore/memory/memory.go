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

// Package memory provides an in-process identitystore.Store for local
// development and tests. It keeps the hosted store's two contracts that the
// rest of the system leans on: email uniqueness and password hashing.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hackgate/hackgate/internal/identitystore"
)

// Store is an in-memory identity store.
type Store struct {
	mu        sync.RWMutex
	accounts  map[string]*identitystore.Account // by id
	passwords map[string]string                 // account id -> argon2 hash
	tokens    map[string]string                 // bearer token -> account id
	hasher    *Hasher
	now       func() time.Time
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		accounts:  make(map[string]*identitystore.Account),
		passwords: make(map[string]string),
		tokens:    make(map[string]string),
		hasher:    NewHasher(),
		now:       time.Now,
	}
}

// AccountFromToken resolves a bearer token previously handed out by
// IssueToken.
func (s *Store) AccountFromToken(ctx context.Context, token string) (*identitystore.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.tokens[token]
	if !ok {
		return nil, identitystore.ErrTokenInvalid
	}
	account, ok := s.accounts[id]
	if !ok {
		return nil, identitystore.ErrTokenInvalid
	}
	return cloneAccount(account), nil
}

// ListAccounts returns one page of accounts, ordered by creation time for
// deterministic paging. Pages start at 1.
func (s *Store) ListAccounts(ctx context.Context, page, perPage int) ([]*identitystore.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 50
	}

	all := make([]*identitystore.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		all = append(all, a)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	start := (page - 1) * perPage
	if start >= len(all) {
		return nil, nil
	}
	end := start + perPage
	if end > len(all) {
		end = len(all)
	}

	out := make([]*identitystore.Account, 0, end-start)
	for _, a := range all[start:end] {
		out = append(out, cloneAccount(a))
	}
	return out, nil
}

// UpdateAccount applies a partial update to an account by id.
func (s *Store) UpdateAccount(ctx context.Context, id string, update identitystore.AccountUpdate) (*identitystore.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, identitystore.ErrAccountNotFound
	}

	if update.Password != nil {
		hash, err := s.hasher.Hash(*update.Password)
		if err != nil {
			return nil, err
		}
		s.passwords[id] = hash
	}
	if update.AppMetadata != nil {
		account.AppMetadata = *update.AppMetadata
	}
	if update.UserMetadata != nil {
		account.UserMetadata = *update.UserMetadata
	}
	account.UpdatedAt = s.now()

	return cloneAccount(account), nil
}

// CreateAccount creates a new account, enforcing email uniqueness
// case-insensitively the way the hosted store does.
func (s *Store) CreateAccount(ctx context.Context, params identitystore.CreateAccountParams) (*identitystore.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.accounts {
		if existing.EmailMatches(params.Email) {
			return nil, identitystore.ErrEmailTaken
		}
	}

	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	account := &identitystore.Account{
		ID:             uuid.NewString(),
		Email:          params.Email,
		EmailConfirmed: params.EmailConfirm,
		AppMetadata:    params.AppMetadata,
		UserMetadata:   params.UserMetadata,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.accounts[account.ID] = account
	s.passwords[account.ID] = hash

	return cloneAccount(account), nil
}

// IssueToken mints an opaque bearer token for an account. Development and
// test convenience; the hosted store issues its own tokens.
func (s *Store) IssueToken(accountID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	token := uuid.NewString()
	s.tokens[token] = accountID
	return token
}

// RevokeToken invalidates a previously issued token.
func (s *Store) RevokeToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

// VerifyPassword checks a plaintext password against the stored hash.
func (s *Store) VerifyPassword(accountID, password string) (bool, error) {
	s.mu.RLock()
	hash, ok := s.passwords[accountID]
	s.mu.RUnlock()

	if !ok {
		return false, identitystore.ErrAccountNotFound
	}
	return s.hasher.Verify(password, hash)
}

func cloneAccount(a *identitystore.Account) *identitystore.Account {
	clone := *a
	clone.AppMetadata = cloneMetadata(a.AppMetadata)
	clone.UserMetadata = cloneMetadata(a.UserMetadata)
	return &clone
}

func cloneMetadata(m identitystore.Metadata) identitystore.Metadata {
	if m.Extra == nil {
		return m
	}
	extra := make(map[string]any, len(m.Extra))
	for k, v := range m.Extra {
		extra[k] = v
	}
	m.Extra = extra
	return m
}
