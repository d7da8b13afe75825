// Package cmd implements the command-line interface for trellofewer.
//
// This package provides the following commands:
//   - serve: Start the MCP server to provide Trello tools for AI assistants
//   - version: Display version information
package cmd
