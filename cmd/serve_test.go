package cmd

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/trellofewer/trellofewer/internal/bulk"
	"github.com/trellofewer/trellofewer/internal/server"
)

func TestServeOptions_ApplyEnv(t *testing.T) {
	t.Setenv("TRELLO_API_KEY", "env-key")
	t.Setenv("TRELLO_TOKEN", "env-token")
	t.Setenv("METRICS_ADDR", ":9191")
	t.Setenv("TRELLO_BULK_SAFETY_LIMIT", "50")

	opts := &serveOptions{
		metricsAddr: server.DefaultMetricsAddr,
		safetyLimit: bulk.DefaultSafetyCap,
	}
	opts.applyEnv()

	if opts.apiKey != "env-key" {
		t.Errorf("apiKey = %q, want env-key", opts.apiKey)
	}
	if opts.token != "env-token" {
		t.Errorf("token = %q, want env-token", opts.token)
	}
	if opts.metricsAddr != ":9191" {
		t.Errorf("metricsAddr = %q, want :9191", opts.metricsAddr)
	}
	if opts.safetyLimit != 50 {
		t.Errorf("safetyLimit = %d, want 50", opts.safetyLimit)
	}
}

func TestServeOptions_FlagsWinOverEnv(t *testing.T) {
	t.Setenv("TRELLO_API_KEY", "env-key")
	t.Setenv("METRICS_ADDR", ":9191")

	opts := &serveOptions{
		apiKey:      "flag-key",
		metricsAddr: ":7070",
		safetyLimit: bulk.DefaultSafetyCap,
	}
	opts.applyEnv()

	if opts.apiKey != "flag-key" {
		t.Errorf("apiKey = %q, want flag-key", opts.apiKey)
	}
	if opts.metricsAddr != ":7070" {
		t.Errorf("metricsAddr = %q, want :7070", opts.metricsAddr)
	}
}

func TestNewServeCmd_Flags(t *testing.T) {
	cmd := newServeCmd()

	for _, flag := range []string{
		"transport", "http-addr", "yolo", "api-key", "token",
		"request-timeout", "max-attempts", "initial-backoff", "max-backoff",
		"batch-size", "safety-limit", "batch-delay",
		"metrics-enabled", "metrics-addr",
	} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("serve command is missing flag %q", flag)
		}
	}
}

func TestRegisterAllTools(t *testing.T) {
	sc, err := server.NewServerContext(context.Background(), server.Config{
		APIKey:  "k",
		Token:   "t",
		Timeout: time.Second,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("NewServerContext() error = %v", err)
	}
	defer func() { _ = sc.Shutdown() }()

	mcpSrv := mcpserver.NewMCPServer("test", "0.0.0")
	if err := registerAllTools(mcpSrv, sc, true); err != nil {
		t.Fatalf("registerAllTools(readOnly) error = %v", err)
	}

	mcpSrv = mcpserver.NewMCPServer("test", "0.0.0")
	if err := registerAllTools(mcpSrv, sc, false); err != nil {
		t.Fatalf("registerAllTools(write) error = %v", err)
	}
}
