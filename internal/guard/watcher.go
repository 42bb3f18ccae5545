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
	"sync"

	"github.com/hackgate/hackgate/internal/identitystore"
)

// Watcher is the process-wide holder of the current session with an explicit
// subscribe/unsubscribe contract. Sign-in, sign-out, and token refresh all
// flow through Set, and every subscriber sees the latest session eventually.
//
// Delivery is coalescing, not lossless: a slow subscriber observes the most
// recent session, possibly skipping intermediate ones. Both the guard and
// the watcher re-read current state, so skipped intermediates cannot change
// a verdict.
type Watcher struct {
	mu      sync.RWMutex
	current *identitystore.Session
	nextID  int
	subs    map[int]chan *identitystore.Session
}

// NewWatcher creates a watcher with no active session.
func NewWatcher() *Watcher {
	return &Watcher{subs: make(map[int]chan *identitystore.Session)}
}

// Current returns the last session passed to Set, or nil when signed out.
func (w *Watcher) Current() *identitystore.Session {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Set records a session change and notifies all subscribers. A nil session
// means signed out.
func (w *Watcher) Set(sess *identitystore.Session) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.current = sess
	for _, ch := range w.subs {
		// Coalesce: replace a pending notification instead of blocking.
		select {
		case ch <- sess:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- sess
		}
	}
}

// Subscribe registers for session-change notifications. The returned cancel
// function MUST be called when the subscriber goes away; it unregisters the
// channel and closes it.
func (w *Watcher) Subscribe() (<-chan *identitystore.Session, func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	id := w.nextID
	w.nextID++
	ch := make(chan *identitystore.Session, 1)
	w.subs[id] = ch

	cancel := func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if existing, ok := w.subs[id]; ok {
			delete(w.subs, id)
			close(existing)
		}
	}
	return ch, cancel
}
