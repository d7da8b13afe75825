package bulk

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Batch execution defaults.
const (
	DefaultBatchSize  = 10
	DefaultSafetyCap  = 100
	DefaultBatchDelay = 200 * time.Millisecond
)

// Op performs the bulk operation for a single candidate and returns a
// short human-readable result on success.
type Op func(ctx context.Context, candidate Candidate) (string, error)

// Executor processes candidates in sequential fixed-size batches. All
// items within a batch run concurrently; batch N+1 starts only after
// every item of batch N finished. A short pacing delay separates
// batches to avoid hammering the remote API.
type Executor struct {
	batchSize  int
	safetyCap  int
	batchDelay time.Duration
	logger     *slog.Logger

	// sleep is replaced in tests so pacing delays do not slow them down.
	sleep func(ctx context.Context, d time.Duration)
}

// Options tunes the batch executor. Zero values select the defaults;
// SafetyCap < 0 disables the cap.
type Options struct {
	BatchSize  int
	SafetyCap  int
	BatchDelay time.Duration
}

// NewExecutor creates a batch executor.
func NewExecutor(opts Options, logger *slog.Logger) *Executor {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.SafetyCap == 0 {
		opts.SafetyCap = DefaultSafetyCap
	}
	if opts.BatchDelay <= 0 {
		opts.BatchDelay = DefaultBatchDelay
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		batchSize:  opts.BatchSize,
		safetyCap:  opts.SafetyCap,
		batchDelay: opts.BatchDelay,
		logger:     logger,
		sleep: func(ctx context.Context, d time.Duration) {
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-t.C:
			case <-ctx.Done():
			}
		},
	}
}

// Run executes op for every candidate and returns one outcome per
// candidate, in index order, plus whether the safety cap truncated
// the set. Per-item failures are captured in the outcome slot; they
// never abort the remaining items. A cancelled context stops new
// batches from starting and marks unprocessed candidates failed with
// the context error.
func (e *Executor) Run(ctx context.Context, candidates []Candidate, op Op) ([]Outcome, bool) {
	truncated := false
	if e.safetyCap > 0 && len(candidates) > e.safetyCap {
		e.logger.Warn("selection exceeds safety limit, truncating",
			slog.Int("selected", len(candidates)),
			slog.Int("limit", e.safetyCap))
		candidates = candidates[:e.safetyCap]
		truncated = true
	}

	// Each goroutine writes only its own slot, so no further
	// synchronization beyond the per-batch WaitGroup is needed.
	outcomes := make([]Outcome, len(candidates))

	for start := 0; start < len(candidates); start += e.batchSize {
		if err := ctx.Err(); err != nil {
			for i := start; i < len(candidates); i++ {
				outcomes[i] = Outcome{Candidate: candidates[i], Err: fmt.Errorf("not attempted: %w", err)}
			}
			break
		}
		if start > 0 {
			e.sleep(ctx, e.batchDelay)
		}

		end := min(start+e.batchSize, len(candidates))
		e.logger.Debug("processing batch",
			slog.Int("from", start),
			slog.Int("to", end),
			slog.Int("total", len(candidates)))

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			candidate := candidates[i]
			if candidate.Err != nil {
				outcomes[i] = Outcome{Candidate: candidate, Err: candidate.Err}
				continue
			}
			wg.Add(1)
			go func(slot int, candidate Candidate) {
				defer wg.Done()
				defer func() {
					if r := recover(); r != nil {
						outcomes[slot] = Outcome{Candidate: candidate, Err: fmt.Errorf("panic: %v", r)}
					}
				}()
				result, err := op(ctx, candidate)
				outcomes[slot] = Outcome{Candidate: candidate, Result: result, Err: err}
			}(i, candidate)
		}
		wg.Wait()
	}

	return outcomes, truncated
}
