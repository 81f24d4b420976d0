package observability

import (
	"context"

	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the notification fan-out counters. A nil *Metrics is a
// no-op, so components can run without a provider in tests.
type Metrics struct {
	enqueued   metric.Int64Counter
	published  metric.Int64Counter
	suppressed metric.Int64Counter
	snapshots  metric.Int64Counter
}

func newMetrics(meter metric.Meter) (*Metrics, error) {
	var m Metrics
	var err error

	m.enqueued, err = meter.Int64Counter("safeindex.notifications.enqueued",
		metric.WithDescription("Notifications scheduled on the deferred task queue"),
		metric.WithUnit("{notification}"),
	)
	if err != nil {
		return nil, err
	}

	m.published, err = meter.Int64Counter("safeindex.notifications.published",
		metric.WithDescription("Notifications published to the event bus"),
		metric.WithUnit("{notification}"),
	)
	if err != nil {
		return nil, err
	}

	m.suppressed, err = meter.Int64Counter("safeindex.notifications.suppressed",
		metric.WithDescription("Mutations classified as not notification-worthy"),
		metric.WithUnit("{mutation}"),
	)
	if err != nil {
		return nil, err
	}

	m.snapshots, err = meter.Int64Counter("safeindex.status.snapshots",
		metric.WithDescription("Historical status snapshots appended"),
		metric.WithUnit("{snapshot}"),
	)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

func (m *Metrics) AddEnqueued(ctx context.Context) {
	if m == nil {
		return
	}
	m.enqueued.Add(ctx, 1)
}

func (m *Metrics) AddPublished(ctx context.Context) {
	if m == nil {
		return
	}
	m.published.Add(ctx, 1)
}

func (m *Metrics) AddSuppressed(ctx context.Context) {
	if m == nil {
		return
	}
	m.suppressed.Add(ctx, 1)
}

func (m *Metrics) AddSnapshot(ctx context.Context) {
	if m == nil {
		return
	}
	m.snapshots.Add(ctx, 1)
}
