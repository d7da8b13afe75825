package trello

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Common errors returned by the client.
var (
	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled during retry.
	ErrContextCancelled = errors.New("context cancelled")
)

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors. Never retried.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents transport-level failures
	// (connection reset, DNS failure, refused).
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassTimeout represents an attempt exceeding its deadline.
	ErrorClassTimeout ErrorClass = "timeout"
)

// APIError represents a Trello API error with additional context.
type APIError struct {
	StatusCode int
	Class      ErrorClass
	Body       string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("trello %s error: %v", e.Class, e.Err)
	}
	return fmt.Sprintf("trello %s error (status %d): %s", e.Class, e.StatusCode, e.Body)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the error class may succeed on retry.
func (e *APIError) Retryable() bool {
	return shouldRetry(e.Class)
}

// shouldRetry determines if an error should be retried based on its classification.
func shouldRetry(class ErrorClass) bool {
	switch class {
	case ErrorClassClient:
		// The request is malformed or the target does not exist;
		// retrying cannot help.
		return false
	case ErrorClassServer, ErrorClassNetwork, ErrorClassTimeout:
		return true
	default:
		return false
	}
}

// classify categorizes the outcome of a single attempt.
// A nil ErrorClass return means the attempt succeeded.
func classify(resp *http.Response, err error) ErrorClass {
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrorClassTimeout
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return ErrorClassTimeout
		}
		return ErrorClassNetwork
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 400:
		return ""
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return ErrorClassClient
	default:
		return ErrorClassServer
	}
}
