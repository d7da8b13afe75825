package card_tools

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/trellofewer/trellofewer/internal/server"
)

func newTestServerContext(t *testing.T) *server.ServerContext {
	t.Helper()

	sc, err := server.NewServerContext(context.Background(), server.Config{
		APIKey: "k",
		Token:  "t",
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("NewServerContext() error = %v", err)
	}
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func TestRegisterCardTools(t *testing.T) {
	s := mcpserver.NewMCPServer("test", "0.0.0")
	if err := RegisterCardTools(s, newTestServerContext(t), false); err != nil {
		t.Fatalf("RegisterCardTools() error = %v", err)
	}
}

func TestRegisterCardTools_ReadOnly(t *testing.T) {
	s := mcpserver.NewMCPServer("test", "0.0.0")
	if err := RegisterCardTools(s, newTestServerContext(t), true); err != nil {
		t.Fatalf("RegisterCardTools() error = %v", err)
	}
}

func TestCardUpdateFromArgs(t *testing.T) {
	update, err := cardUpdateFromArgs(map[string]interface{}{
		"name":   "Renamed",
		"desc":   "new description",
		"due":    "2026-09-01T12:00:00Z",
		"listId": "l2",
	})
	if err != nil {
		t.Fatalf("cardUpdateFromArgs() error = %v", err)
	}
	if update.Name == nil || *update.Name != "Renamed" {
		t.Errorf("Name = %v, want Renamed", update.Name)
	}
	if update.Desc == nil || *update.Desc != "new description" {
		t.Errorf("Desc = %v", update.Desc)
	}
	if update.IDList == nil || *update.IDList != "l2" {
		t.Errorf("IDList = %v, want l2", update.IDList)
	}
	if update.Due == nil || !update.Due.Equal(time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("Due = %v", update.Due)
	}
}

func TestCardUpdateFromArgs_Empty(t *testing.T) {
	if _, err := cardUpdateFromArgs(map[string]interface{}{}); err == nil {
		t.Error("expected error for empty update")
	}
}

func TestCardUpdateFromArgs_BadDue(t *testing.T) {
	if _, err := cardUpdateFromArgs(map[string]interface{}{"due": "tomorrow"}); err == nil {
		t.Error("expected error for non-RFC3339 due date")
	}
}
