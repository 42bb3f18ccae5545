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

package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Config holds metrics configuration
type Config struct {
	Enabled bool
}

// Meter carries the domain instruments. When disabled, instruments come
// from the global no-op provider and recording is free.
type Meter struct {
	accessChecks      metric.Int64Counter
	accessDenied      metric.Int64Counter
	judgesProvisioned metric.Int64Counter
}

// New creates the domain instruments on the global meter provider.
func New(ctx context.Context, cfg Config, serviceName string) (*Meter, error) {
	name := serviceName
	if !cfg.Enabled {
		name = "noop"
	}
	meter := otel.Meter(name)

	accessChecks, err := meter.Int64Counter(
		"guard_access_checks_total",
		metric.WithDescription("Route guard evaluations, by verdict"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create access check counter: %w", err)
	}

	accessDenied, err := meter.Int64Counter(
		"guard_access_denied_total",
		metric.WithDescription("Route guard denials, by role"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create access denied counter: %w", err)
	}

	judgesProvisioned, err := meter.Int64Counter(
		"judges_provisioned_total",
		metric.WithDescription("Judge provisioning upserts, by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create provisioning counter: %w", err)
	}

	return &Meter{
		accessChecks:      accessChecks,
		accessDenied:      accessDenied,
		judgesProvisioned: judgesProvisioned,
	}, nil
}

// RecordAccessCheck counts one guard evaluation.
func (m *Meter) RecordAccessCheck(ctx context.Context, allowed bool, role string) {
	if m == nil {
		return
	}
	m.accessChecks.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("allowed", allowed),
	))
	if !allowed {
		m.accessDenied.Add(ctx, 1, metric.WithAttributes(
			attribute.String("role", role),
		))
	}
}

// RecordProvision counts one successful judge upsert.
func (m *Meter) RecordProvision(ctx context.Context, created bool) {
	if m == nil {
		return
	}
	m.judgesProvisioned.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("created", created),
	))
}
