package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/trellofewer/trellofewer/internal/bulk"
	"github.com/trellofewer/trellofewer/internal/instrumentation"
	"github.com/trellofewer/trellofewer/internal/trello"
)

// Config holds the dependencies and settings for a ServerContext.
type Config struct {
	// APIKey and Token are the Trello credentials. They may be empty;
	// tool calls fail with a configuration error until both are set.
	APIKey string
	Token  string

	// BaseURL overrides the Trello API endpoint, used in tests.
	BaseURL string

	// Timeout is the per-attempt deadline for Trello requests.
	Timeout time.Duration

	// Retry tunes the Trello request executor.
	Retry trello.RetryConfig

	// ReadOnly disables all write tools when true.
	ReadOnly bool

	// Bulk tunes the bulk engine shared by the bulk tools.
	Bulk bulk.Options

	Logger  *slog.Logger
	Metrics *instrumentation.Metrics
	Audit   *instrumentation.AuditLogger
}

// ServerContext holds the shared state for the MCP server.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc
	config Config

	client *trello.Client
	engine *bulk.Engine

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new server context. When credentials are
// present the Trello client is created up front so configuration
// errors surface at startup; otherwise creation is deferred to the
// first tool call.
func NewServerContext(ctx context.Context, config Config) (*ServerContext, error) {
	shutdownCtx, cancel := context.WithCancel(ctx)

	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Audit == nil {
		config.Audit = instrumentation.NewAuditLogger(config.Logger)
	}

	sc := &ServerContext{
		ctx:    shutdownCtx,
		cancel: cancel,
		config: config,
	}

	if config.APIKey != "" && config.Token != "" {
		client, err := sc.newClient()
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to create Trello client: %w", err)
		}
		sc.client = client
	}

	return sc, nil
}

func (sc *ServerContext) newClient() (*trello.Client, error) {
	return trello.New(trello.Config{
		APIKey:   sc.config.APIKey,
		Token:    sc.config.Token,
		BaseURL:  sc.config.BaseURL,
		Timeout:  sc.config.Timeout,
		Retry:    sc.config.Retry,
		Logger:   sc.config.Logger,
		Recorder: sc.config.Metrics,
	})
}

// Context returns the server context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// TrelloClient returns the shared Trello client, creating and caching
// it on first use. An error is returned when credentials are missing.
func (sc *ServerContext) TrelloClient() (*trello.Client, error) {
	sc.mu.RLock()
	client := sc.client
	sc.mu.RUnlock()
	if client != nil {
		return client, nil
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.client != nil {
		return sc.client, nil
	}

	if sc.config.APIKey == "" || sc.config.Token == "" {
		return nil, fmt.Errorf("Trello credentials not configured: set TRELLO_API_KEY and TRELLO_TOKEN")
	}

	client, err := sc.newClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create Trello client: %w", err)
	}
	sc.client = client
	return client, nil
}

// SetTrelloClient replaces the shared Trello client. Used by tests to
// inject a client pointed at a fake API.
func (sc *ServerContext) SetTrelloClient(client *trello.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.client = client
	sc.engine = nil
}

// BulkEngine returns the shared bulk engine, creating it on first use
// over the Trello client.
func (sc *ServerContext) BulkEngine() (*bulk.Engine, error) {
	sc.mu.RLock()
	engine := sc.engine
	sc.mu.RUnlock()
	if engine != nil {
		return engine, nil
	}

	client, err := sc.TrelloClient()
	if err != nil {
		return nil, err
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.engine == nil {
		sc.engine = bulk.NewEngine(client, sc.config.Bulk, sc.config.Logger, sc.config.Metrics)
	}
	return sc.engine, nil
}

// CredentialsConfigured reports whether both Trello credentials are
// set. Tool calls fail with a configuration error until they are.
func (sc *ServerContext) CredentialsConfigured() bool {
	return sc.config.APIKey != "" && sc.config.Token != ""
}

// ReadOnly reports whether write tools are disabled.
func (sc *ServerContext) ReadOnly() bool {
	return sc.config.ReadOnly
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.config.Logger
}

// Metrics returns the metrics recorder, which may be nil when
// instrumentation is disabled.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.config.Metrics
}

// AuditLogger returns the audit logger for tool invocations.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.config.Audit
}

// IsShutdown returns whether the server has been shutdown.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
