package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func TestMetrics_Record(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordEventReceived(ctx, "webhook", "app_mention")
	m.RecordEventIgnored(ctx, "slack_retry")
	m.RecordEventIgnored(ctx, "duplicate")
	m.RecordAgentRun(ctx, "comedian_agent", "ok", 2*time.Second)
	m.RecordReplyPosted(ctx, true, 100*time.Millisecond)

	data := collect(t, reader)

	ignored, ok := data["slack.events.ignored.total"].(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Len(t, ignored.DataPoints, 2)

	runs, ok := data["agent.runs.total"].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, runs.DataPoints, 1)
	assert.Equal(t, int64(1), runs.DataPoints[0].Value)

	_, ok = data["slack.reply.duration"].(metricdata.Histogram[float64])
	assert.True(t, ok)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordHTTPRequest(ctx, "POST", "/slack/events", 200, time.Millisecond)
		m.RecordEventIgnored(ctx, "slack_retry")
		m.MentionStarted(ctx)
		m.MentionFinished(ctx)
		m.RecordToolCall(ctx, "get_current_datetime", true)
		m.RecordAttachment(ctx, "skipped", "application/zip")
	})
}
