package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestErr(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	logger.Info("with error", Err(errors.New("boom")))
	if !strings.Contains(buf.String(), "error=boom") {
		t.Errorf("expected error attribute in output, got %q", buf.String())
	}

	buf.Reset()
	logger.Info("without error", Err(nil))
	if strings.Contains(buf.String(), "error=") {
		t.Errorf("nil error should not add an attribute, got %q", buf.String())
	}
}

func TestWithOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	WithOperation(logger, "GET /1/cards/abc").Info("request")
	if !strings.Contains(buf.String(), "operation=") {
		t.Errorf("expected operation attribute, got %q", buf.String())
	}
}

func TestStatusConstants(t *testing.T) {
	if StatusSuccess != "success" || StatusError != "error" {
		t.Errorf("unexpected status constants: %q %q", StatusSuccess, StatusError)
	}
}
