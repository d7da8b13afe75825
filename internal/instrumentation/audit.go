package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// ToolInvocation captures all information about a tool invocation for
// audit logging. Write operations mutate shared boards, so the audit
// trail records what was touched and how it went.
type ToolInvocation struct {
	// Tool name
	Tool string

	// Target information
	BoardID   string
	ListID    string
	CardID    string
	Operation string // Operation type (list, get, create, update, delete, move, archive)

	// Bulk run counts, zero for single-card tools
	BulkRequested int
	BulkSucceeded int
	BulkFailed    int

	// Execution details
	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	// Tracing context
	TraceID string
	SpanID  string
}

// Status returns "success" or "error" based on the Success field.
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

// LogAttrs returns slog attributes for structured logging.
// This provides a consistent set of fields for all tool invocation logs.
func (ti *ToolInvocation) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("tool", ti.Tool),
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
	}

	// Add optional fields only if present
	if ti.Operation != "" {
		attrs = append(attrs, slog.String("operation", ti.Operation))
	}
	if ti.BoardID != "" {
		attrs = append(attrs, slog.String("board", ti.BoardID))
	}
	if ti.ListID != "" {
		attrs = append(attrs, slog.String("list", ti.ListID))
	}
	if ti.CardID != "" {
		attrs = append(attrs, slog.String("card", ti.CardID))
	}
	if ti.BulkRequested > 0 {
		attrs = append(attrs,
			slog.Int("bulk_requested", ti.BulkRequested),
			slog.Int("bulk_succeeded", ti.BulkSucceeded),
			slog.Int("bulk_failed", ti.BulkFailed),
		)
	}
	if ti.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ti.TraceID))
	}
	if ti.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", ti.SpanID))
	}
	if ti.Error != "" {
		attrs = append(attrs, slog.String("error", ti.Error))
	}

	return attrs
}

// NewToolInvocation creates a new ToolInvocation with timing started.
// Call Complete() when the tool operation finishes.
func NewToolInvocation(tool string) *ToolInvocation {
	return &ToolInvocation{
		Tool:      tool,
		StartTime: time.Now(),
	}
}

// WithTarget sets the Trello target identifiers. Empty values are
// omitted from the log output.
func (ti *ToolInvocation) WithTarget(boardID, listID, cardID string) *ToolInvocation {
	ti.BoardID = boardID
	ti.ListID = listID
	ti.CardID = cardID
	return ti
}

// WithOperation sets the operation type.
func (ti *ToolInvocation) WithOperation(operation string) *ToolInvocation {
	ti.Operation = operation
	return ti
}

// WithBulkCounts sets the bulk run outcome counts.
func (ti *ToolInvocation) WithBulkCounts(requested, succeeded, failed int) *ToolInvocation {
	ti.BulkRequested = requested
	ti.BulkSucceeded = succeeded
	ti.BulkFailed = failed
	return ti
}

// WithSpanContext extracts trace context from the current span.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		ti.TraceID = span.SpanContext().TraceID().String()
		ti.SpanID = span.SpanContext().SpanID().String()
	}
	return ti
}

type invocationContextKey struct{}

// ContextWithInvocation attaches the invocation to the context so that
// handlers running under the instrumented wrapper can enrich it, e.g.
// with bulk run counts, before it is logged.
func ContextWithInvocation(ctx context.Context, ti *ToolInvocation) context.Context {
	return context.WithValue(ctx, invocationContextKey{}, ti)
}

// InvocationFromContext returns the invocation attached to the context,
// or nil when the handler runs without instrumentation.
func InvocationFromContext(ctx context.Context) *ToolInvocation {
	ti, _ := ctx.Value(invocationContextKey{}).(*ToolInvocation)
	return ti
}

// Complete marks the invocation as completed and calculates duration.
// Returns the same ToolInvocation for method chaining.
func (ti *ToolInvocation) Complete(success bool, err error) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Success = success
	if err != nil {
		ti.Error = err.Error()
	}
	return ti
}

// CompleteWithError marks the invocation as failed with the given error.
func (ti *ToolInvocation) CompleteWithError(err error) *ToolInvocation {
	return ti.Complete(false, err)
}

// CompleteSuccess marks the invocation as successful.
func (ti *ToolInvocation) CompleteSuccess() *ToolInvocation {
	return ti.Complete(true, nil)
}

// AuditLogger provides structured audit logging for tool invocations.
// It wraps slog.Logger with convenience methods for logging tool operations.
type AuditLogger struct {
	logger  *slog.Logger
	enabled bool
}

// NewAuditLogger creates a new AuditLogger with the given slog.Logger.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:  logger,
		enabled: true,
	}
}

// NewAuditLoggerWithConfig creates a new AuditLogger with the given configuration.
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:  logger,
		enabled: config.Enabled,
	}
}

// SetEnabled sets whether audit logging is enabled.
func (al *AuditLogger) SetEnabled(enabled bool) {
	al.enabled = enabled
}

// LogToolInvocation logs a completed tool invocation. Successful
// invocations log at info, failures at warn.
func (al *AuditLogger) LogToolInvocation(ti *ToolInvocation) {
	if !al.enabled {
		return
	}

	attrs := ti.LogAttrs()
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}

	if ti.Success {
		al.logger.Info("tool_executed", args...)
	} else {
		al.logger.Warn("tool_failed", args...)
	}
}
