// Package logging provides slog attribute helpers for consistent
// structured logging across the codebase.
package logging
