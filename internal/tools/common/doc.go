// Package common provides shared helpers for the MCP tool packages:
// argument parsing (string-or-array parameters, bulk selections) and
// the instrumented handler wrapper that records metrics and audit
// logs for every tool invocation.
package common
