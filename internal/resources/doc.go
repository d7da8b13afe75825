// Package resources provides MCP resources for exposing Trello data.
// Resources are read-only data sources that MCP clients can fetch
// without invoking a tool, such as the board list of the authenticated
// member.
package resources
