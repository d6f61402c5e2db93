package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all application metrics.
// Record methods are safe to call on a nil *Metrics.
type Metrics struct {
	meter metric.Meter

	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPRequestsActive  metric.Int64UpDownCounter

	// Ingress metrics
	EventsReceivedTotal metric.Int64Counter
	EventsIgnoredTotal  metric.Int64Counter
	MentionsInFlight    metric.Int64UpDownCounter

	// Agent metrics
	AgentRunsTotal      metric.Int64Counter
	AgentRunDuration    metric.Float64Histogram
	AgentToolCallsTotal metric.Int64Counter

	// Slack I/O metrics
	AttachmentsTotal   metric.Int64Counter
	RepliesPostedTotal metric.Int64Counter
	ReplyDuration      metric.Float64Histogram

	// Repository metrics
	RepositoryOperationsTotal   metric.Int64Counter
	RepositoryOperationDuration metric.Float64Histogram
}

// NewMetrics creates and registers all application metrics.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{meter: meter}

	var err error

	// HTTP metrics
	m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http.server.requests.total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{requests}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http_requests_total: %w", err)
	}

	m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http_request_duration: %w", err)
	}

	m.HTTPRequestsActive, err = meter.Int64UpDownCounter(
		"http.server.requests.active",
		metric.WithDescription("Number of active HTTP requests"),
		metric.WithUnit("{requests}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http_requests_active: %w", err)
	}

	// Ingress metrics
	m.EventsReceivedTotal, err = meter.Int64Counter(
		"slack.events.received.total",
		metric.WithDescription("Total number of Slack events accepted for processing"),
		metric.WithUnit("{events}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating slack_events_received_total: %w", err)
	}

	m.EventsIgnoredTotal, err = meter.Int64Counter(
		"slack.events.ignored.total",
		metric.WithDescription("Total number of Slack deliveries dropped before processing"),
		metric.WithUnit("{events}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating slack_events_ignored_total: %w", err)
	}

	m.MentionsInFlight, err = meter.Int64UpDownCounter(
		"mentions.in_flight",
		metric.WithDescription("Number of mentions currently being answered"),
		metric.WithUnit("{mentions}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating mentions_in_flight: %w", err)
	}

	// Agent metrics
	m.AgentRunsTotal, err = meter.Int64Counter(
		"agent.runs.total",
		metric.WithDescription("Total number of agent runs"),
		metric.WithUnit("{runs}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating agent_runs_total: %w", err)
	}

	m.AgentRunDuration, err = meter.Float64Histogram(
		"agent.run.duration",
		metric.WithDescription("Agent run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating agent_run_duration: %w", err)
	}

	m.AgentToolCallsTotal, err = meter.Int64Counter(
		"agent.tool_calls.total",
		metric.WithDescription("Total number of tool invocations"),
		metric.WithUnit("{calls}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating agent_tool_calls_total: %w", err)
	}

	// Slack I/O metrics
	m.AttachmentsTotal, err = meter.Int64Counter(
		"slack.attachments.total",
		metric.WithDescription("Total number of message attachments by outcome"),
		metric.WithUnit("{files}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating slack_attachments_total: %w", err)
	}

	m.RepliesPostedTotal, err = meter.Int64Counter(
		"slack.replies.total",
		metric.WithDescription("Total number of thread replies posted"),
		metric.WithUnit("{replies}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating slack_replies_total: %w", err)
	}

	m.ReplyDuration, err = meter.Float64Histogram(
		"slack.reply.duration",
		metric.WithDescription("Thread reply post duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating slack_reply_duration: %w", err)
	}

	// Repository metrics
	m.RepositoryOperationsTotal, err = meter.Int64Counter(
		"repository.operations.total",
		metric.WithDescription("Total number of repository operations"),
		metric.WithUnit("{operations}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating repository_operations_total: %w", err)
	}

	m.RepositoryOperationDuration, err = meter.Float64Histogram(
		"repository.operation.duration",
		metric.WithDescription("Repository operation duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating repository_operation_duration: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records HTTP request metrics.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", path),
		attribute.Int("http.status_code", statusCode),
	)

	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordEventReceived counts an event accepted from the given ingress.
func (m *Metrics) RecordEventReceived(ctx context.Context, ingress, eventType string) {
	if m == nil {
		return
	}
	m.EventsReceivedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("ingress", ingress),
		attribute.String("event.type", eventType),
	))
}

// RecordEventIgnored counts a delivery dropped for reason.
func (m *Metrics) RecordEventIgnored(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.EventsIgnoredTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// MentionStarted and MentionFinished track in-flight mentions.
func (m *Metrics) MentionStarted(ctx context.Context) {
	if m == nil {
		return
	}
	m.MentionsInFlight.Add(ctx, 1)
}

func (m *Metrics) MentionFinished(ctx context.Context) {
	if m == nil {
		return
	}
	m.MentionsInFlight.Add(ctx, -1)
}

// RecordAgentRun records one agent run and its outcome ("ok", "error", "timeout").
func (m *Metrics) RecordAgentRun(ctx context.Context, agent, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("agent", agent),
		attribute.String("outcome", outcome),
	)

	m.AgentRunsTotal.Add(ctx, 1, attrs)
	m.AgentRunDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordToolCall records one tool invocation.
func (m *Metrics) RecordToolCall(ctx context.Context, tool string, success bool) {
	if m == nil {
		return
	}
	m.AgentToolCallsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.Bool("success", success),
	))
}

// RecordAttachment records an attachment outcome ("fetched", "skipped", "failed").
func (m *Metrics) RecordAttachment(ctx context.Context, outcome, mimeType string) {
	if m == nil {
		return
	}
	m.AttachmentsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.String("mime_type", mimeType),
	))
}

// RecordReplyPosted records a thread reply attempt.
func (m *Metrics) RecordReplyPosted(ctx context.Context, success bool, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.Bool("success", success))

	m.RepliesPostedTotal.Add(ctx, 1, attrs)
	m.ReplyDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordRepositoryOperation records repository operation metrics.
func (m *Metrics) RecordRepositoryOperation(ctx context.Context, operation, entity string, duration time.Duration, success bool) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("entity", entity),
		attribute.Bool("success", success),
	)

	m.RepositoryOperationsTotal.Add(ctx, 1, attrs)
	m.RepositoryOperationDuration.Record(ctx, duration.Seconds(), attrs)
}
