package instrumentation

import (
	"context"
	"testing"
)

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{Enabled: false})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}

	if provider.Enabled() {
		t.Error("provider should report disabled")
	}
	if provider.Metrics() == nil {
		t.Fatal("disabled provider must still return a metrics recorder")
	}
	if provider.PrometheusHandler() != nil {
		t.Error("disabled provider should have no prometheus handler")
	}

	// Recorders on the no-op metrics must not panic.
	provider.Metrics().RecordToolInvocation(context.Background(), "trello_list_boards", StatusSuccess, 0)

	if err := provider.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestNewProvider_UnsupportedExporter(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{
		Enabled:         true,
		ServiceName:     "test",
		MetricsExporter: "graphite",
		TracingExporter: ExporterNone,
	})
	if err == nil {
		t.Fatal("expected error for unsupported metrics exporter")
	}
}

func TestProvider_TracerWhenDisabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{Enabled: false})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}

	tracer := provider.Tracer("test")
	if tracer == nil {
		t.Fatal("disabled provider must return a noop tracer, not nil")
	}
	_, span := tracer.Start(context.Background(), "noop")
	span.End()
}
