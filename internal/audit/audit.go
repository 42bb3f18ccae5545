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
	"context"
	"log/slog"
	"strings"
	"time"
)

// Event types
const (
	TypeJudgeProvisioned = "judge_provisioned"
	TypeJudgeUpdated     = "judge_updated"
	TypeProvisionDenied  = "provision_denied"
	TypeProvisionFailed  = "provision_failed"
	TypeAccessDenied     = "access_denied"
)

// Common metadata attribute keys
const (
	AttrReason = "reason"
	AttrPath   = "path"
	AttrRole   = "role"
)

// Event represents an auditable action
type Event struct {
	Type      string
	ActorID   string
	Resource  string
	Metadata  map[string]any
	Timestamp time.Time
	IPAddress string
	UserAgent string
}

// Logger defines the interface for audit logging
type Logger interface {
	Log(ctx context.Context, event Event)
}

// SlogLogger implements Logger using slog
type SlogLogger struct{}

// NewSlogLogger creates a new audit logger
func NewSlogLogger() *SlogLogger {
	return &SlogLogger{}
}

// Log records an audit event
func (l *SlogLogger) Log(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	attrs := []any{
		slog.String("audit_type", event.Type),
		slog.String("actor_id", event.ActorID),
		slog.String("resource", event.Resource),
		slog.Time("timestamp", event.Timestamp),
	}

	if event.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.IPAddress))
	}
	if event.UserAgent != "" {
		attrs = append(attrs, slog.String("user_agent", event.UserAgent))
	}

	if len(event.Metadata) > 0 {
		group := []any{}
		for k, v := range event.Metadata {
			if isSecret(k) {
				v = "[REDACTED]"
			}
			group = append(group, slog.Any(k, v))
		}
		attrs = append(attrs, slog.Group("metadata", group...))
	}

	slog.InfoContext(ctx, "AUDIT_EVENT", append(attrs, slog.String("component", "audit"))...)
}

// FanoutLogger sends each event to every underlying logger.
type FanoutLogger struct {
	loggers []Logger
}

// NewFanoutLogger creates a logger that fans out to all given loggers.
func NewFanoutLogger(loggers ...Logger) *FanoutLogger {
	return &FanoutLogger{loggers: loggers}
}

// Log records an audit event on every underlying logger, best effort.
func (l *FanoutLogger) Log(ctx context.Context, event Event) {
	for _, logger := range l.loggers {
		logger.Log(ctx, event)
	}
}

// isSecret checks if a metadata key likely carries a secret. PINs double as
// passwords here, so "pin" is treated like "password".
func isSecret(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range []string{"password", "secret", "token", "key", "authorization", "credential", "hash", "pin"} {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}
