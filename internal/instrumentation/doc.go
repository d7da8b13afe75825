// Package instrumentation provides OpenTelemetry metrics and tracing
// for the trellofewer MCP server.
//
// It covers three concerns: Trello API request metrics (attempts,
// retries, exhaustions), MCP tool invocation metrics, and bulk-run
// metrics. The Provider wires the configured exporters (prometheus,
// otlp, stdout) and hands out a Metrics recorder whose methods are
// nil-safe so callers never need to guard on instrumentation being
// disabled.
package instrumentation
