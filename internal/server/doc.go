// Package server provides the MCP server context, health endpoints,
// and the dedicated metrics server for the trellofewer application.
//
// ServerContext owns the shared Trello client and the bulk engine.
// The client is created lazily on first use so the server can start
// without credentials and report a clear error from the first tool
// call instead of refusing to boot.
//
// The metrics server exposes Prometheus metrics on its own port,
// isolated from MCP traffic. HealthChecker serves the liveness and
// readiness endpoints Kubernetes probes expect.
package server
