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

// Package guard decides whether a dashboard route may be rendered for the
// caller's session. Decisions are pure data; the caller performs the actual
// redirect. The guard never fails open: any trouble resolving the session
// collapses into a denial with a login redirect.
package guard

import (
	"context"

	"github.com/hackgate/hackgate/internal/identitystore"
	"github.com/hackgate/hackgate/internal/role"
)

// State is the outcome of a guard evaluation.
type State string

const (
	// StateAllowed means the guarded content may render.
	StateAllowed State = "allowed"

	// StateDenied means the caller must be redirected to Decision.RedirectTo.
	StateDenied State = "denied"
)

// Decision is the tagged result of a guard check.
type Decision struct {
	State      State
	Role       role.Role
	RedirectTo string
}

// Allowed reports whether the guarded content may render.
func (d Decision) Allowed() bool {
	return d.State == StateAllowed
}

// Decide evaluates a route against a session fetch result.
//
// No session, an expired session, or a fetch error all deny with a redirect
// to the login page matching the attempted path. A session whose role may
// not view the path denies with a redirect to the role's own home route,
// never back to the denied page, so a denial cannot loop.
func Decide(sess *identitystore.Session, fetchErr error, path string) Decision {
	if fetchErr != nil || sess == nil || sess.Account == nil || sess.Expired() {
		return Decision{
			State:      StateDenied,
			Role:       role.RoleHacker,
			RedirectTo: role.LoginRouteFor(path),
		}
	}

	r := role.Resolve(sess.Account)
	if !role.IsRouteAllowed(r, path) {
		return Decision{
			State:      StateDenied,
			Role:       r,
			RedirectTo: role.DefaultRouteFor(r),
		}
	}

	return Decision{State: StateAllowed, Role: r}
}

// Evaluator resolves sessions from bearer tokens and applies Decide.
type Evaluator struct {
	store   identitystore.Store
	watcher *Watcher
}

// NewEvaluator creates a guard evaluator backed by the identity store.
func NewEvaluator(store identitystore.Store) *Evaluator {
	return &Evaluator{store: store}
}

// WithWatcher publishes session changes observed during evaluation to w.
func (e *Evaluator) WithWatcher(w *Watcher) *Evaluator {
	e.watcher = w
	return e
}

// Evaluate fetches the session for token and decides access to path. The
// session is read fresh on every call; verdicts are never cached across
// navigations.
func (e *Evaluator) Evaluate(ctx context.Context, token, path string) Decision {
	if token == "" || e.store == nil {
		return Decide(nil, nil, path)
	}

	account, err := e.store.AccountFromToken(ctx, token)
	if err != nil {
		// A token that stops verifying is a sign-out (or expiry) as far as
		// watchers are concerned.
		e.publish(token, nil)
		return Decide(nil, err, path)
	}

	sess := &identitystore.Session{Token: token, Account: account}
	e.publish(token, sess)
	return Decide(sess, nil, path)
}

// publish forwards a session change to the watcher, skipping repeats of the
// state it already holds.
func (e *Evaluator) publish(token string, sess *identitystore.Session) {
	if e.watcher == nil {
		return
	}
	current := e.watcher.Current()
	switch {
	case sess == nil && current == nil:
		return
	case sess == nil && current.Token != token:
		// Some other token's failure must not end the held session.
		return
	case sess != nil && current != nil && current.Token == token:
		return
	}
	e.watcher.Set(sess)
}
