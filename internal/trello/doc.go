// Package trello provides the Trello REST API client.
//
// Every remote call funnels through a single request executor that
// applies a per-attempt deadline, classifies failures into client,
// server, network and timeout classes, and retries retryable classes
// with exponential backoff.
package trello
