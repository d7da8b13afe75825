package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys - using constants for consistency and DRY
const (
	// Common attributes (reused across metrics)
	attrMethod    = "method"
	attrPath      = "path"
	attrStatus    = "status"
	attrOperation = "operation"
	attrTool      = "tool"
	attrClass     = "error_class"
	attrAttempts  = "attempts"
	attrTruncated = "truncated"
	attrRequested = "requested"
	attrBoard     = "board"
)

// Metrics provides methods for recording observability metrics. It
// implements the recorder interfaces of the trello and bulk packages.
// All Record methods tolerate a zero-value Metrics so callers never
// have to guard on instrumentation being disabled.
type Metrics struct {
	// HTTP metrics
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram
	activeSessions      metric.Int64UpDownCounter

	// Trello API metrics
	trelloRequestsTotal    metric.Int64Counter
	trelloRequestDuration  metric.Float64Histogram
	trelloRetriesTotal     metric.Int64Counter
	trelloRetryExhaustions metric.Int64Counter

	// MCP Tool metrics
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram

	// Bulk run metrics
	bulkRunsTotal   metric.Int64Counter
	bulkItemsTotal  metric.Int64Counter
	bulkRunDuration metric.Float64Histogram

	// detailedLabels controls whether high-cardinality labels are included
	detailedLabels bool
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The detailedLabels parameter controls whether high-cardinality labels are included.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{
		detailedLabels: detailedLabels,
	}

	var err error

	// HTTP Metrics
	m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	m.activeSessions, err = meter.Int64UpDownCounter(
		"active_sessions",
		metric.WithDescription("Number of active MCP sessions"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create active_sessions gauge: %w", err)
	}

	// Trello API Metrics
	m.trelloRequestsTotal, err = meter.Int64Counter(
		"trello_api_requests_total",
		metric.WithDescription("Total number of Trello API requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trello_api_requests_total counter: %w", err)
	}

	m.trelloRequestDuration, err = meter.Float64Histogram(
		"trello_api_request_duration_seconds",
		metric.WithDescription("Trello API request duration in seconds, including retries"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trello_api_request_duration_seconds histogram: %w", err)
	}

	m.trelloRetriesTotal, err = meter.Int64Counter(
		"trello_api_retries_total",
		metric.WithDescription("Total number of Trello API retry attempts"),
		metric.WithUnit("{retry}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trello_api_retries_total counter: %w", err)
	}

	m.trelloRetryExhaustions, err = meter.Int64Counter(
		"trello_api_retry_exhaustions_total",
		metric.WithDescription("Total number of Trello API requests that exhausted all retry attempts"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trello_api_retry_exhaustions_total counter: %w", err)
	}

	// MCP Tool Metrics
	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}

	// Bulk Run Metrics
	m.bulkRunsTotal, err = meter.Int64Counter(
		"bulk_runs_total",
		metric.WithDescription("Total number of bulk runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create bulk_runs_total counter: %w", err)
	}

	m.bulkItemsTotal, err = meter.Int64Counter(
		"bulk_items_total",
		metric.WithDescription("Total number of per-card outcomes across bulk runs"),
		metric.WithUnit("{item}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create bulk_items_total counter: %w", err)
	}

	m.bulkRunDuration, err = meter.Float64Histogram(
		"bulk_run_duration_seconds",
		metric.WithDescription("Bulk run duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0, 120.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create bulk_run_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request with method, path, status code, and duration.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m.httpRequestsTotal == nil || m.httpRequestDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	}

	m.httpRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.httpRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordAPIRequest records a completed Trello API request, after all
// retry attempts.
//
// Parameters:
//   - operation: method and path pattern, e.g. "PUT /1/cards/{id}"
//   - status: "success" or "error"
//   - attempts: total HTTP attempts made for the request
//   - duration: wall time including backoff
func (m *Metrics) RecordAPIRequest(ctx context.Context, operation, status string, attempts int, duration time.Duration) {
	if m.trelloRequestsTotal == nil || m.trelloRequestDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
		attribute.String(attrAttempts, BucketAttempts(attempts)),
	}

	m.trelloRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.trelloRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordRetry records a single retry attempt with its failure class.
func (m *Metrics) RecordRetry(ctx context.Context, class string, backoff time.Duration) {
	if m.trelloRetriesTotal == nil {
		return // Instrumentation not initialized
	}

	m.trelloRetriesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrClass, class),
	))
}

// RecordRetryExhausted records a request that failed on every attempt.
func (m *Metrics) RecordRetryExhausted(ctx context.Context, class string) {
	if m.trelloRetryExhaustions == nil {
		return // Instrumentation not initialized
	}

	m.trelloRetryExhaustions.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrClass, class),
	))
}

// RecordToolInvocation records an MCP tool invocation with tool name, status, and duration.
//
// Parameters:
//   - toolName: Name of the MCP tool (e.g., "trello_list_boards", "trello_bulk_move_cards")
//   - status: Result status ("success" or "error")
//   - duration: Time taken for the tool execution
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	if m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}

	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordBulkRun records a completed bulk run and its per-item outcome
// counts. The requested size is bucketed to keep cardinality bounded.
func (m *Metrics) RecordBulkRun(ctx context.Context, operation string, requested, succeeded, failed int, truncated bool, duration time.Duration) {
	if m.bulkRunsTotal == nil || m.bulkItemsTotal == nil || m.bulkRunDuration == nil {
		return // Instrumentation not initialized
	}

	runAttrs := []attribute.KeyValue{
		attribute.String(attrOperation, operation),
		attribute.String(attrRequested, BucketSelectionSize(requested)),
		attribute.Bool(attrTruncated, truncated),
	}
	m.bulkRunsTotal.Add(ctx, 1, metric.WithAttributes(runAttrs...))
	m.bulkRunDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(runAttrs...))

	m.bulkItemsTotal.Add(ctx, int64(succeeded), metric.WithAttributes(
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, StatusSuccess),
	))
	m.bulkItemsTotal.Add(ctx, int64(failed), metric.WithAttributes(
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, StatusError),
	))
}

// RecordToolInvocationWithBoard records an MCP tool invocation with
// board context. The board label is only attached when detailedLabels
// is enabled; board ids are high-cardinality.
func (m *Metrics) RecordToolInvocationWithBoard(ctx context.Context, toolName, status, boardID string, duration time.Duration) {
	if m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}
	if m.detailedLabels && boardID != "" {
		attrs = append(attrs, attribute.String(attrBoard, boardID))
	}

	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// IncrementActiveSessions increments the active sessions counter.
func (m *Metrics) IncrementActiveSessions(ctx context.Context) {
	if m.activeSessions == nil {
		return // Instrumentation not initialized
	}

	m.activeSessions.Add(ctx, 1)
}

// DecrementActiveSessions decrements the active sessions counter.
func (m *Metrics) DecrementActiveSessions(ctx context.Context) {
	if m.activeSessions == nil {
		return // Instrumentation not initialized
	}

	m.activeSessions.Add(ctx, -1)
}
