package trello

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/trellofewer/trellofewer/internal/logging"
)

// maxErrorBodyBytes bounds how much of an error response body is kept
// for diagnostics.
const maxErrorBodyBytes = 4096

// Request describes a single Trello API call. It is built per call
// and not modified after construction.
type Request struct {
	Method string
	Path   string // e.g. "/1/cards/abc123"
	Query  url.Values
	Body   any // JSON-encoded when non-nil

	// Idempotent marks requests that are safe to retry after a
	// failure where the server may already have applied them.
	Idempotent bool
}

// Default retry policy values.
const (
	DefaultMaxAttempts    = 3
	DefaultInitialBackoff = 1 * time.Second
	DefaultMaxBackoff     = 30 * time.Second
)

// RetryConfig holds the configuration for retry logic.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including the initial request).
	MaxAttempts int

	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration

	// MaxBackoff caps the exponentially growing backoff.
	MaxBackoff time.Duration
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    DefaultMaxAttempts,
		InitialBackoff: DefaultInitialBackoff,
		MaxBackoff:     DefaultMaxBackoff,
	}
}

// backoffFor returns the delay before the retry following attemptIndex
// (zero-based): min(initial * 2^attemptIndex, max).
func (rc RetryConfig) backoffFor(attemptIndex int) time.Duration {
	backoff := rc.InitialBackoff
	for i := 0; i < attemptIndex; i++ {
		backoff *= 2
		if backoff >= rc.MaxBackoff {
			return rc.MaxBackoff
		}
	}
	if backoff > rc.MaxBackoff {
		return rc.MaxBackoff
	}
	return backoff
}

// Recorder receives request executor events. The executor emits the
// events; how they are aggregated or displayed is up to the
// implementation.
type Recorder interface {
	RecordAPIRequest(ctx context.Context, operation, status string, attempts int, duration time.Duration)
	RecordRetry(ctx context.Context, class string, backoff time.Duration)
	RecordRetryExhausted(ctx context.Context, class string)
}

// do executes a request with per-attempt deadlines and retry with
// exponential backoff. Client errors (4xx) are returned immediately;
// server, network and timeout failures are retried until the policy
// is exhausted. On success the response body is decoded into out
// (when non-nil).
func (c *Client) do(ctx context.Context, req Request, out any) error {
	op := req.Method + " " + req.Path
	start := time.Now()

	var lastErr *APIError
	attempts := 0

	for attempt := 0; attempt < c.retry.MaxAttempts; attempt++ {
		attempts++
		apiErr := c.attempt(ctx, req, out)
		if apiErr == nil {
			if c.recorder != nil {
				c.recorder.RecordAPIRequest(ctx, op, "success", attempts, time.Since(start))
			}
			if attempt > 0 {
				c.logger.Info("request succeeded after retry",
					logging.Operation(op),
					logging.Attempts(attempts))
			}
			return nil
		}

		if !apiErr.Retryable() {
			c.logger.Warn("request failed",
				logging.Operation(op),
				logging.Status(string(apiErr.Class)),
				logging.Err(apiErr))
			if c.recorder != nil {
				c.recorder.RecordAPIRequest(ctx, op, string(apiErr.Class), attempts, time.Since(start))
			}
			return apiErr
		}

		lastErr = apiErr

		if attempt == c.retry.MaxAttempts-1 {
			break
		}

		backoff := c.retry.backoffFor(attempt)
		c.logger.Debug("retrying request after backoff",
			logging.Operation(op),
			logging.Status(string(apiErr.Class)),
			logging.Attempts(attempts),
			logging.Duration(backoff))
		if c.recorder != nil {
			c.recorder.RecordRetry(ctx, string(apiErr.Class), backoff)
		}

		if err := c.sleep(ctx, backoff); err != nil {
			c.logger.Warn("context cancelled during retry backoff",
				logging.Operation(op),
				logging.Attempts(attempts))
			return fmt.Errorf("%w: %v", ErrContextCancelled, err)
		}
	}

	if c.recorder != nil {
		c.recorder.RecordRetryExhausted(ctx, string(lastErr.Class))
		c.recorder.RecordAPIRequest(ctx, op, "exhausted", attempts, time.Since(start))
	}
	c.logger.Warn("retry attempts exhausted",
		logging.Operation(op),
		logging.Attempts(attempts),
		logging.Err(lastErr))

	return fmt.Errorf("%w after %d attempts: %w", ErrRetryExhausted, attempts, lastErr)
}

// attempt performs one network call with a fresh deadline and
// classifies the outcome. A nil return means success.
func (c *Client) attempt(ctx context.Context, req Request, out any) *APIError {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := c.buildRequest(attemptCtx, req)
	if err != nil {
		// Request construction failure is not a remote failure;
		// surface it as a non-retryable client error.
		return &APIError{Class: ErrorClassClient, Err: err}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &APIError{Class: classify(nil, err), Err: err}
	}
	defer resp.Body.Close()

	if class := classify(resp, nil); class != "" {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return &APIError{
			StatusCode: resp.StatusCode,
			Class:      class,
			Body:       string(bytes.TrimSpace(body)),
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &APIError{Class: classifyDecodeError(err), Err: fmt.Errorf("decode response: %w", err)}
		}
	}
	return nil
}

// classifyDecodeError distinguishes a malformed payload from a
// connection dropped mid-body. Only genuine JSON errors are client
// errors; a truncated or failed body read is a network failure and
// retryable like any other transport error.
func classifyDecodeError(err error) ErrorClass {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return ErrorClassClient
	}
	return ErrorClassNetwork
}

// buildRequest assembles the HTTP request with authentication
// parameters appended to the query string.
func (c *Client) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	q := url.Values{}
	for k, vs := range req.Query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("key", c.apiKey)
	q.Set("token", c.token)

	u := c.baseURL + req.Path + "?" + q.Encode()

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	return httpReq, nil
}

// sleepWithContext waits for d or until ctx is done, whichever comes first.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
