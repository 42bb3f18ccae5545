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

package postgres

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hackgate/hackgate/internal/audit"
	"github.com/hackgate/hackgate/internal/observability/logger"
)

// AuditRepository persists audit events. It implements audit.Logger so it
// can be fanned out alongside the slog logger.
type AuditRepository struct {
	db *DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Log stores an audit event. Persistence is best effort: a failed insert is
// logged and dropped rather than failing the operation being audited.
func (r *AuditRepository) Log(ctx context.Context, event audit.Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	metadata := []byte("{}")
	if len(event.Metadata) > 0 {
		encoded, err := json.Marshal(event.Metadata)
		if err == nil {
			metadata = encoded
		}
	}

	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO audit_events (id, event_type, actor_id, resource, metadata, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		uuid.NewString(), event.Type, event.ActorID, event.Resource,
		metadata, event.IPAddress, event.UserAgent, event.Timestamp,
	)
	if err != nil {
		slog.ErrorContext(ctx, "failed to persist audit event",
			logger.Error(err),
			logger.String("audit_type", event.Type),
		)
	}
}

// ListRecent returns the most recent audit events, newest first.
func (r *AuditRepository) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.pool.Query(ctx, `
		SELECT event_type, actor_id, resource, metadata, ip_address, user_agent, created_at
		FROM audit_events
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var event audit.Event
		var metadata []byte
		if err := rows.Scan(
			&event.Type, &event.ActorID, &event.Resource,
			&metadata, &event.IPAddress, &event.UserAgent, &event.Timestamp,
		); err != nil {
			return nil, err
		}
		if len(metadata) > 0 {
			_ = json.Unmarshal(metadata, &event.Metadata)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
