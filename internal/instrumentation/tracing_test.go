package instrumentation

import (
	"context"
	"errors"
	"testing"
)

func TestSpanAttributeBuilder(t *testing.T) {
	attrs := NewSpanAttributeBuilder().
		WithTool("trello_bulk_move_cards").
		WithOperation("move").
		WithBoard("board-1").
		WithList("list-1").
		WithCard("card-1").
		WithReadOnly(true).
		WithBulkCounts(10, 8, 2).
		Build()

	if len(attrs) != 9 {
		t.Errorf("expected 9 attributes, got %d", len(attrs))
	}

	attrMap := make(map[string]interface{})
	for _, attr := range attrs {
		attrMap[string(attr.Key)] = attr.Value.AsInterface()
	}

	if attrMap[SpanAttrTool] != "trello_bulk_move_cards" {
		t.Errorf("tool attribute = %v, want trello_bulk_move_cards", attrMap[SpanAttrTool])
	}
	if attrMap[SpanAttrOperation] != "move" {
		t.Errorf("operation attribute = %v, want move", attrMap[SpanAttrOperation])
	}
	if attrMap[SpanAttrBoardID] != "board-1" {
		t.Errorf("board attribute = %v, want board-1", attrMap[SpanAttrBoardID])
	}
	if attrMap[SpanAttrListID] != "list-1" {
		t.Errorf("list attribute = %v, want list-1", attrMap[SpanAttrListID])
	}
	if attrMap[SpanAttrCardID] != "card-1" {
		t.Errorf("card attribute = %v, want card-1", attrMap[SpanAttrCardID])
	}
	if attrMap[SpanAttrReadOnly] != true {
		t.Errorf("read_only attribute = %v, want true", attrMap[SpanAttrReadOnly])
	}
	if attrMap[SpanAttrBulkRequested] != int64(10) {
		t.Errorf("bulk requested attribute = %v, want 10", attrMap[SpanAttrBulkRequested])
	}
	if attrMap[SpanAttrBulkSucceeded] != int64(8) {
		t.Errorf("bulk succeeded attribute = %v, want 8", attrMap[SpanAttrBulkSucceeded])
	}
	if attrMap[SpanAttrBulkFailed] != int64(2) {
		t.Errorf("bulk failed attribute = %v, want 2", attrMap[SpanAttrBulkFailed])
	}
}

func TestSpanAttributeBuilder_EmptyValues(t *testing.T) {
	// Empty target identifiers are omitted entirely.
	attrs := NewSpanAttributeBuilder().
		WithBoard("").
		WithList("").
		WithCard("").
		Build()

	if len(attrs) != 0 {
		t.Errorf("expected 0 attributes for empty values, got %d", len(attrs))
	}
}

func newTracingTestProvider(t *testing.T) *Provider {
	t.Helper()

	ctx := context.Background()
	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: ExporterPrometheus,
		TracingExporter: ExporterNone,
	})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })
	return provider
}

func TestStartSpan(t *testing.T) {
	newTracingTestProvider(t)

	spanCtx, span := StartSpan(context.Background(), "test-span")
	defer span.End()

	if spanCtx == nil {
		t.Error("expected non-nil context")
	}
	if span == nil {
		t.Error("expected non-nil span")
	}
}

func TestStartToolSpan(t *testing.T) {
	newTracingTestProvider(t)

	spanCtx, span := StartToolSpan(context.Background(), "trello_get_card")
	defer span.End()

	if spanCtx == nil {
		t.Error("expected non-nil context")
	}
	if span == nil {
		t.Error("expected non-nil span")
	}
}

func TestStartTrelloAPISpan(t *testing.T) {
	newTracingTestProvider(t)

	spanCtx, span := StartTrelloAPISpan(context.Background(), "GET /1/cards/{id}")
	defer span.End()

	if spanCtx == nil {
		t.Error("expected non-nil context")
	}
	if span == nil {
		t.Error("expected non-nil span")
	}
}

func TestSetSpanError(t *testing.T) {
	newTracingTestProvider(t)

	_, span := StartSpan(context.Background(), "test-span")
	defer span.End()

	SetSpanError(span, errors.New("test error"))

	// A nil error must be a no-op.
	SetSpanError(span, nil)
}

func TestSetSpanSuccess(t *testing.T) {
	newTracingTestProvider(t)

	_, span := StartSpan(context.Background(), "test-span")
	defer span.End()

	SetSpanSuccess(span)
}

func TestAddSpanEvent(t *testing.T) {
	newTracingTestProvider(t)

	_, span := StartSpan(context.Background(), "test-span")
	defer span.End()

	AddSpanEvent(span, "test-event")
	AddSpanEvent(span, "test-event-with-attrs", NewSpanAttributeBuilder().WithCard("card-1").Build()...)
}

func TestGetTraceID_NoSpan(t *testing.T) {
	if id := GetTraceID(context.Background()); id != "" {
		t.Errorf("GetTraceID() without a span = %q, want empty", id)
	}
}

func TestGetSpanID_NoSpan(t *testing.T) {
	if id := GetSpanID(context.Background()); id != "" {
		t.Errorf("GetSpanID() without a span = %q, want empty", id)
	}
}

func TestStartSpan_ProducesValidTraceContext(t *testing.T) {
	newTracingTestProvider(t)

	spanCtx, span := StartSpan(context.Background(), "test-span")
	defer span.End()

	if GetTraceID(spanCtx) == "" {
		t.Error("expected a trace ID on the span context")
	}
	if GetSpanID(spanCtx) == "" {
		t.Error("expected a span ID on the span context")
	}
}
