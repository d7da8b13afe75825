package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/trellofewer/trellofewer/internal/bulk"
	"github.com/trellofewer/trellofewer/internal/instrumentation"
	"github.com/trellofewer/trellofewer/internal/resources"
	"github.com/trellofewer/trellofewer/internal/server"
	"github.com/trellofewer/trellofewer/internal/tools/board_tools"
	"github.com/trellofewer/trellofewer/internal/tools/bulk_tools"
	"github.com/trellofewer/trellofewer/internal/tools/card_tools"
	"github.com/trellofewer/trellofewer/internal/tools/list_tools"
	"github.com/trellofewer/trellofewer/internal/trello"
)

// serveOptions collects the serve command configuration from flags and
// environment variables.
type serveOptions struct {
	debugMode bool
	transport string
	httpAddr  string
	yolo      bool

	apiKey string
	token  string

	requestTimeout time.Duration
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration

	batchSize   int
	safetyLimit int
	batchDelay  time.Duration

	metricsEnabled bool
	metricsAddr    string
}

// applyEnv fills in options that were not provided via flags from the
// environment. Flags always win over environment variables.
func (o *serveOptions) applyEnv() {
	if o.apiKey == "" {
		o.apiKey = os.Getenv("TRELLO_API_KEY")
	}
	if o.token == "" {
		o.token = os.Getenv("TRELLO_TOKEN")
	}
	if o.metricsAddr == "" || o.metricsAddr == server.DefaultMetricsAddr {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			o.metricsAddr = addr
		}
	}
	if !o.metricsEnabled && os.Getenv("METRICS_ENABLED") == "true" {
		o.metricsEnabled = true
	}
	if o.safetyLimit == bulk.DefaultSafetyCap {
		if envLimit := os.Getenv("TRELLO_BULK_SAFETY_LIMIT"); envLimit != "" {
			if limit, err := strconv.Atoi(envLimit); err == nil && limit != 0 {
				o.safetyLimit = limit
			}
		}
	}
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server to provide Trello board,
list and card tools for AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport

Safety Mode:
  By default, the server operates in read-only mode, providing only safe operations.
  Use --yolo to enable write operations (card creation, archiving, deletion, etc.)

Credentials:
  --api-key and --token flags
  OR TRELLO_API_KEY and TRELLO_TOKEN env vars`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.applyEnv()
			return runServe(opts)
		},
	}

	cmd.Flags().BoolVar(&opts.debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&opts.transport, "transport", "stdio", "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&opts.httpAddr, "http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().BoolVar(&opts.yolo, "yolo", false, "Enable write operations (card creation, archiving, deletion, etc.). Default is read-only mode.")

	cmd.Flags().StringVar(&opts.apiKey, "api-key", "", "Trello API key. Can also use TRELLO_API_KEY env var.")
	cmd.Flags().StringVar(&opts.token, "token", "", "Trello API token. Can also use TRELLO_TOKEN env var.")

	cmd.Flags().DurationVar(&opts.requestTimeout, "request-timeout", trello.DefaultTimeout, "Per-attempt deadline for Trello API requests")
	cmd.Flags().IntVar(&opts.maxAttempts, "max-attempts", trello.DefaultMaxAttempts, "Maximum attempts per Trello API request (1 disables retries)")
	cmd.Flags().DurationVar(&opts.initialBackoff, "initial-backoff", trello.DefaultInitialBackoff, "Backoff before the first retry; doubles per retry")
	cmd.Flags().DurationVar(&opts.maxBackoff, "max-backoff", trello.DefaultMaxBackoff, "Upper bound on the retry backoff")

	cmd.Flags().IntVar(&opts.batchSize, "batch-size", bulk.DefaultBatchSize, "Cards processed concurrently per bulk batch")
	cmd.Flags().IntVar(&opts.safetyLimit, "safety-limit", bulk.DefaultSafetyCap, "Maximum cards a single bulk operation may touch (negative disables the limit). Can also use TRELLO_BULK_SAFETY_LIMIT env var.")
	cmd.Flags().DurationVar(&opts.batchDelay, "batch-delay", bulk.DefaultBatchDelay, "Pause between bulk batches to spread API load")

	cmd.Flags().BoolVar(&opts.metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func runServe(opts *serveOptions) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// stdio uses stdout for the protocol, so all logging goes to stderr.
	logLevel := slog.LevelInfo
	if opts.debugMode {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			if opts.transport != "stdio" {
				log.Printf("Error during instrumentation shutdown: %v", err)
			}
		}
	}()

	readOnly := !opts.yolo

	serverContext, err := server.NewServerContext(shutdownCtx, server.Config{
		APIKey:  opts.apiKey,
		Token:   opts.token,
		Timeout: opts.requestTimeout,
		Retry: trello.RetryConfig{
			MaxAttempts:    opts.maxAttempts,
			InitialBackoff: opts.initialBackoff,
			MaxBackoff:     opts.maxBackoff,
		},
		ReadOnly: readOnly,
		Bulk: bulk.Options{
			BatchSize:  opts.batchSize,
			SafetyCap:  opts.safetyLimit,
			BatchDelay: opts.batchDelay,
		},
		Logger:  logger,
		Metrics: provider.Metrics(),
		Audit:   instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging),
	})
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			if opts.transport != "stdio" {
				log.Printf("Error during server context shutdown: %v", err)
			}
		}
	}()

	// Log the mode for visibility (only for non-stdio transports)
	if opts.transport != "stdio" {
		if readOnly {
			log.Println("Starting server in READ-ONLY mode (use --yolo to enable write operations)")
		} else {
			log.Println("Starting server with WRITE operations enabled (--yolo flag is set)")
		}
	}

	mcpSrv := mcpserver.NewMCPServer("trellofewer", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false),
	)

	if err := registerAllTools(mcpSrv, serverContext, readOnly); err != nil {
		return err
	}

	switch opts.transport {
	case "stdio":
		return runStdioServer(mcpSrv)
	case "streamable-http":
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, serverContext, provider, opts)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", opts.transport)
	}
}

// registerAllTools registers all MCP tools
func registerAllTools(mcpSrv *mcpserver.MCPServer, ctx *server.ServerContext, readOnly bool) error {
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name: "Board",
			register: func() error {
				return board_tools.RegisterBoardTools(mcpSrv, ctx)
			},
		},
		{
			name: "List",
			register: func() error {
				return list_tools.RegisterListTools(mcpSrv, ctx, readOnly)
			},
		},
		{
			name: "Card",
			register: func() error {
				return card_tools.RegisterCardTools(mcpSrv, ctx, readOnly)
			},
		},
		{
			name: "Bulk",
			register: func() error {
				return bulk_tools.RegisterBulkTools(mcpSrv, ctx, readOnly)
			},
		},
		{
			name: "Board Resources",
			register: func() error {
				return resources.RegisterBoardResources(mcpSrv, ctx)
			},
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s tools: %w", reg.name, err)
		}
	}

	return nil
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, serverContext *server.ServerContext, provider *instrumentation.Provider, opts *serveOptions) error {
	// Start metrics server on its dedicated port if enabled
	var metricsServer *server.MetricsServer
	if opts.metricsEnabled && provider.Enabled() {
		var err error
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    opts.metricsAddr,
			Enabled:                 true,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		go func() {
			if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
				log.Printf("Metrics server stopped with error: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				log.Printf("Error during metrics server shutdown: %v", err)
			}
		}()
	}

	streamableServer := mcpserver.NewStreamableHTTPServer(mcpSrv)

	mux := http.NewServeMux()
	mux.Handle("/mcp", instrumentedHandler(provider, streamableServer))

	healthChecker := server.NewHealthChecker(serverContext)
	healthChecker.RegisterHealthEndpoints(mux)

	httpServer := &http.Server{
		Addr:              opts.httpAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	fmt.Printf("Starting trellofewer MCP server with streamable-http transport on %s\n", opts.httpAddr)
	fmt.Printf("  HTTP endpoint: /mcp\n")
	fmt.Printf("  Health endpoints: /healthz, /readyz\n")
	if metricsServer != nil {
		fmt.Printf("  Metrics endpoint: %s/metrics\n", metricsServer.Addr())
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		fmt.Println("Shutdown signal received, stopping HTTP server...")
		healthChecker.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
		fmt.Println("HTTP server stopped normally")
	}

	fmt.Println("HTTP server gracefully stopped")
	return nil
}

// statusRecorder captures the response status code for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrumentedHandler records request metrics and the active session
// gauge around the MCP endpoint.
func instrumentedHandler(provider *instrumentation.Provider, next http.Handler) http.Handler {
	if provider == nil || !provider.Enabled() {
		return next
	}
	metrics := provider.Metrics()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		metrics.IncrementActiveSessions(r.Context())
		defer metrics.DecrementActiveSessions(r.Context())

		next.ServeHTTP(recorder, r)

		metrics.RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, recorder.status, time.Since(start))
	})
}
