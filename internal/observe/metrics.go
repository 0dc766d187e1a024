// Package observe holds the OpenTelemetry instruments recorded by the relay.
// Every recording helper is nil-safe so components can run without metrics.
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/steveyiyo/tutor-relay"

var latencyBuckets = []float64{
	0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60,
}

type Metrics struct {
	// Messages counts inbound chat messages by status ("upstream", "fallback", "error").
	Messages metric.Int64Counter

	// CompletionAttempts counts upstream calls by backend and outcome.
	CompletionAttempts metric.Int64Counter

	// Fallbacks counts scripted replies by reason.
	Fallbacks metric.Int64Counter

	CompletionDuration metric.Float64Histogram
	TurnDuration       metric.Float64Histogram

	ActiveConnections metric.Int64UpDownCounter

	RateLimited metric.Int64Counter
}

func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Messages, err = m.Int64Counter("tutor.messages",
		metric.WithDescription("Inbound chat messages by status."),
	); err != nil {
		return nil, err
	}
	if met.CompletionAttempts, err = m.Int64Counter("tutor.completion.attempts",
		metric.WithDescription("Chat completion attempts by backend and outcome."),
	); err != nil {
		return nil, err
	}
	if met.Fallbacks, err = m.Int64Counter("tutor.completion.fallbacks",
		metric.WithDescription("Scripted fallback replies by reason."),
	); err != nil {
		return nil, err
	}
	if met.CompletionDuration, err = m.Float64Histogram("tutor.completion.duration",
		metric.WithDescription("Latency of a single upstream completion attempt."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TurnDuration, err = m.Float64Histogram("tutor.turn.duration",
		metric.WithDescription("End-to-end processing time of a chat turn."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ActiveConnections, err = m.Int64UpDownCounter("tutor.connections.active",
		metric.WithDescription("Currently open chat sockets."),
	); err != nil {
		return nil, err
	}
	if met.RateLimited, err = m.Int64Counter("tutor.http.rate_limited",
		metric.WithDescription("HTTP requests rejected by the rate limiter."),
	); err != nil {
		return nil, err
	}
	return met, nil
}

func (m *Metrics) RecordMessage(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.Messages.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

func (m *Metrics) RecordAttempt(ctx context.Context, backend, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("backend", backend), attribute.String("outcome", outcome))
	m.CompletionAttempts.Add(ctx, 1, attrs)
	m.CompletionDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("backend", backend)))
}

func (m *Metrics) RecordFallback(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.Fallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (m *Metrics) RecordTurn(ctx context.Context, source string, d time.Duration) {
	if m == nil {
		return
	}
	m.TurnDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("source", source)))
}

func (m *Metrics) ConnectionOpened(ctx context.Context) {
	if m == nil {
		return
	}
	m.ActiveConnections.Add(ctx, 1)
}

func (m *Metrics) ConnectionClosed(ctx context.Context) {
	if m == nil {
		return
	}
	m.ActiveConnections.Add(ctx, -1)
}

func (m *Metrics) RecordRateLimited(ctx context.Context, path string) {
	if m == nil {
		return
	}
	m.RateLimited.Add(ctx, 1, metric.WithAttributes(attribute.String("path", path)))
}
