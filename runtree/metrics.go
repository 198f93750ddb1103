/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package runtree

import (
	"context"

	"github.com/chainguard-dev/clog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metrics provides OpenTelemetry counters for the recorder's upload pipeline.
// If a counter cannot be created it degrades to a no-op rather than failing.
type Metrics struct {
	queued   metric.Int64Counter
	uploaded metric.Int64Counter
	failed   metric.Int64Counter
}

// NewMetrics creates the recorder counters on the global meter provider.
func NewMetrics(ctx context.Context, meterName string) *Metrics {
	meter := otel.Meter(meterName, metric.WithInstrumentationVersion("1.0.0"))
	log := clog.FromContext(ctx).With("meter", meterName)

	queued, err := meter.Int64Counter("getcontext.runs.queued",
		metric.WithDescription("The number of run operations queued for upload"),
		metric.WithUnit("{runs}"))
	if err != nil {
		log.With("error", err).Warn("Failed to create queued runs counter, metrics will be disabled")
		queued = noop.Int64Counter{}
	}

	uploaded, err := meter.Int64Counter("getcontext.runs.uploaded",
		metric.WithDescription("The number of run operations uploaded"),
		metric.WithUnit("{runs}"))
	if err != nil {
		log.With("error", err).Warn("Failed to create uploaded runs counter, metrics will be disabled")
		uploaded = noop.Int64Counter{}
	}

	failed, err := meter.Int64Counter("getcontext.runs.failed",
		metric.WithDescription("The number of run operations that failed to upload"),
		metric.WithUnit("{runs}"))
	if err != nil {
		log.With("error", err).Warn("Failed to create failed runs counter, metrics will be disabled")
		failed = noop.Int64Counter{}
	}

	return &Metrics{
		queued:   queued,
		uploaded: uploaded,
		failed:   failed,
	}
}

func (m *Metrics) recordQueued(ctx context.Context, op string) {
	m.queued.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", op)))
}

func (m *Metrics) recordUpload(ctx context.Context, op string, n int, err error) {
	if n == 0 {
		return
	}
	attrs := metric.WithAttributes(attribute.String("operation", op))
	if err != nil {
		m.failed.Add(ctx, int64(n), attrs)
		return
	}
	m.uploaded.Add(ctx, int64(n), attrs)
}
