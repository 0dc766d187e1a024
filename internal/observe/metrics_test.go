package observe

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	require.NoError(t, err)
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func sumOf(t *testing.T, m *metricdata.Metrics) int64 {
	t.Helper()
	require.NotNil(t, m)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "expected Sum[int64], got %T", m.Data)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestCountersRecord(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordMessage(ctx, "ok")
	m.RecordMessage(ctx, "rejected")
	m.RecordAttempt(ctx, "openrouter", "ok", 120*time.Millisecond)
	m.RecordFallback(ctx, "no_credential")
	m.ConnectionOpened(ctx)
	m.ConnectionOpened(ctx)
	m.ConnectionClosed(ctx)

	rm := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(t, findMetric(rm, "tutor.messages")))
	assert.Equal(t, int64(1), sumOf(t, findMetric(rm, "tutor.completion.attempts")))
	assert.Equal(t, int64(1), sumOf(t, findMetric(rm, "tutor.completion.fallbacks")))
	assert.Equal(t, int64(1), sumOf(t, findMetric(rm, "tutor.connections.active")))

	hist := findMetric(rm, "tutor.completion.duration")
	require.NotNil(t, hist)
	h, ok := hist.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, h.DataPoints, 1)
	assert.Equal(t, uint64(1), h.DataPoints[0].Count)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	assert.NotPanics(t, func() {
		m.RecordMessage(ctx, "ok")
		m.RecordAttempt(ctx, "x", "ok", time.Second)
		m.RecordFallback(ctx, "x")
		m.RecordTurn(ctx, "fallback", time.Second)
		m.ConnectionOpened(ctx)
		m.ConnectionClosed(ctx)
		m.RecordRateLimited(ctx, "/api/models")
	})
}
