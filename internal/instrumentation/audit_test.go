package instrumentation

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestToolInvocation_Complete(t *testing.T) {
	ti := NewToolInvocation("trello_archive_card").
		WithTarget("b1", "l1", "c1").
		WithOperation(OperationArchive)

	ti.CompleteSuccess()
	if !ti.Success {
		t.Error("CompleteSuccess should mark the invocation successful")
	}
	if ti.Status() != StatusSuccess {
		t.Errorf("Status() = %q, want success", ti.Status())
	}

	ti = NewToolInvocation("trello_delete_cards").CompleteWithError(errors.New("boom"))
	if ti.Success {
		t.Error("CompleteWithError should mark the invocation failed")
	}
	if ti.Error != "boom" {
		t.Errorf("Error = %q, want boom", ti.Error)
	}
	if ti.Status() != StatusError {
		t.Errorf("Status() = %q, want error", ti.Status())
	}
}

func TestInvocationContext(t *testing.T) {
	if InvocationFromContext(context.Background()) != nil {
		t.Error("expected nil invocation from a bare context")
	}

	ti := NewToolInvocation("trello_bulk_move_cards")
	ctx := ContextWithInvocation(context.Background(), ti)
	if got := InvocationFromContext(ctx); got != ti {
		t.Errorf("InvocationFromContext() = %p, want %p", got, ti)
	}
}

func TestAuditLogger_LogToolInvocation(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	audit := NewAuditLogger(logger)

	ti := NewToolInvocation("trello_bulk_archive_cards").
		WithOperation(OperationArchive).
		WithTarget("b1", "", "").
		WithBulkCounts(10, 9, 1).
		CompleteSuccess()
	audit.LogToolInvocation(ti)

	out := buf.String()
	for _, want := range []string{"tool_executed", "trello_bulk_archive_cards", "bulk_requested=10", "bulk_succeeded=9", "bulk_failed=1", "board=b1"} {
		if !strings.Contains(out, want) {
			t.Errorf("audit output missing %q: %s", want, out)
		}
	}

	buf.Reset()
	audit.LogToolInvocation(NewToolInvocation("trello_delete_cards").CompleteWithError(errors.New("denied")))
	if !strings.Contains(buf.String(), "tool_failed") {
		t.Errorf("failed invocation should log tool_failed: %s", buf.String())
	}
}

func TestAuditLogger_Disabled(t *testing.T) {
	var buf bytes.Buffer
	audit := NewAuditLoggerWithConfig(slog.New(slog.NewTextHandler(&buf, nil)), AuditLoggingConfig{Enabled: false})

	audit.LogToolInvocation(NewToolInvocation("trello_create_card").CompleteSuccess())
	if buf.Len() != 0 {
		t.Errorf("disabled audit logger must not log, got %s", buf.String())
	}
}
