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

package audit

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestPurpose: Validates secret detection over metadata keys, including the
// PIN alias this system introduces.
// Scope: Unit Test
// Security: Credential redaction in audit output
func TestIsSecret(t *testing.T) {
	secret := []string{
		"password", "Password", "user_password",
		"secret", "api_secret",
		"token", "access_token",
		"key", "service_key",
		"authorization",
		"credential",
		"password_hash",
		"pin", "judge_pin", "PIN",
	}
	for _, k := range secret {
		assert.True(t, isSecret(k), "key %q should be redacted", k)
	}

	plain := []string{"email", "name", "role", "reason", "path", "resource"}
	for _, k := range plain {
		assert.False(t, isSecret(k), "key %q should not be redacted", k)
	}
}

// TestPurpose: Validates that secret metadata values never reach the log
// stream while plain values do.
// Scope: Unit Test
// Security: Credential redaction in audit output
func TestSlogLogger_RedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	original := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	defer slog.SetDefault(original)

	NewSlogLogger().Log(context.Background(), Event{
		Type:     TypeJudgeProvisioned,
		ActorID:  "admin-1",
		Resource: "judge-1",
		Metadata: map[string]any{
			"email": "judge@example.com",
			"pin":   "4321",
		},
	})

	out := buf.String()
	assert.Contains(t, out, "judge@example.com")
	assert.Contains(t, out, "[REDACTED]")
	assert.NotContains(t, out, "4321")
}

type countingLogger struct {
	mu    sync.Mutex
	count int
}

func (l *countingLogger) Log(ctx context.Context, event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.count++
}

// TestPurpose: Validates that the fanout logger delivers each event to
// every underlying logger.
// Scope: Unit Test
func TestFanoutLogger(t *testing.T) {
	first := &countingLogger{}
	second := &countingLogger{}

	fanout := NewFanoutLogger(first, second)
	fanout.Log(context.Background(), Event{Type: TypeAccessDenied})
	fanout.Log(context.Background(), Event{Type: TypeAccessDenied})

	assert.Equal(t, 2, first.count)
	assert.Equal(t, 2, second.count)
}
