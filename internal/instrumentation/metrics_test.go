package instrumentation

import (
	"context"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T, detailedLabels bool) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	metrics, err := NewMetrics(provider.Meter("test"), detailedLabels)
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	return metrics, reader
}

func collectMetricNames(t *testing.T, reader *sdkmetric.ManualReader) map[string]bool {
	t.Helper()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	names := make(map[string]bool)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			names[m.Name] = true
		}
	}
	return names
}

func TestMetrics_RecordAPIRequest(t *testing.T) {
	metrics, reader := newTestMetrics(t, false)
	ctx := context.Background()

	metrics.RecordAPIRequest(ctx, "GET /1/boards/{id}", StatusSuccess, 1, 120*time.Millisecond)
	metrics.RecordRetry(ctx, "server", time.Second)
	metrics.RecordRetryExhausted(ctx, "server")

	names := collectMetricNames(t, reader)
	for _, want := range []string{
		"trello_api_requests_total",
		"trello_api_request_duration_seconds",
		"trello_api_retries_total",
		"trello_api_retry_exhaustions_total",
	} {
		if !names[want] {
			t.Errorf("expected metric %q to be recorded", want)
		}
	}
}

func TestMetrics_RecordBulkRun(t *testing.T) {
	metrics, reader := newTestMetrics(t, false)

	metrics.RecordBulkRun(context.Background(), "bulk_archive_cards", 20, 18, 2, true, 3*time.Second)

	names := collectMetricNames(t, reader)
	for _, want := range []string{"bulk_runs_total", "bulk_items_total", "bulk_run_duration_seconds"} {
		if !names[want] {
			t.Errorf("expected metric %q to be recorded", want)
		}
	}
}

func TestMetrics_RecordToolInvocation(t *testing.T) {
	metrics, reader := newTestMetrics(t, false)

	metrics.RecordToolInvocation(context.Background(), "trello_list_boards", StatusSuccess, 50*time.Millisecond)
	metrics.RecordToolInvocationWithBoard(context.Background(), "trello_create_card", StatusSuccess, "b1", 80*time.Millisecond)

	names := collectMetricNames(t, reader)
	if !names["mcp_tool_invocations_total"] {
		t.Error("expected mcp_tool_invocations_total to be recorded")
	}
	if !names["mcp_tool_duration_seconds"] {
		t.Error("expected mcp_tool_duration_seconds to be recorded")
	}
}

func TestMetrics_ZeroValueIsNoOp(t *testing.T) {
	// A zero-value Metrics is handed out when instrumentation is
	// disabled; every recorder must be a safe no-op.
	var m Metrics
	ctx := context.Background()

	m.RecordHTTPRequest(ctx, "GET", "/healthz", 200, time.Millisecond)
	m.RecordAPIRequest(ctx, "GET /1/boards/{id}", StatusError, 3, time.Second)
	m.RecordRetry(ctx, "network", time.Second)
	m.RecordRetryExhausted(ctx, "timeout")
	m.RecordToolInvocation(ctx, "trello_get_card", StatusSuccess, time.Millisecond)
	m.RecordToolInvocationWithBoard(ctx, "trello_get_card", StatusSuccess, "b1", time.Millisecond)
	m.RecordBulkRun(ctx, "bulk_move_cards", 5, 5, 0, false, time.Second)
	m.IncrementActiveSessions(ctx)
	m.DecrementActiveSessions(ctx)
}
