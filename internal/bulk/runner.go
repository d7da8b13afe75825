package bulk

import (
	"context"
	"log/slog"
	"time"

	"github.com/trellofewer/trellofewer/internal/logging"
)

// Recorder receives bulk-run metrics. All methods must be safe to
// call on a nil implementation value.
type Recorder interface {
	RecordBulkRun(ctx context.Context, operation string, requested, succeeded, failed int, truncated bool, duration time.Duration)
}

// Engine ties the resolver, batch executor and aggregator together.
// One engine is shared by all bulk tools.
type Engine struct {
	resolver *Resolver
	executor *Executor
	logger   *slog.Logger
	recorder Recorder
}

// NewEngine creates a bulk engine over the given card source.
// recorder may be nil.
func NewEngine(source CardSource, opts Options, logger *slog.Logger, recorder Recorder) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		resolver: NewResolver(source),
		executor: NewExecutor(opts, logger),
		logger:   logger,
		recorder: recorder,
	}
}

// Run resolves the selection and applies op to every candidate,
// returning the aggregated report. Selection problems (invalid or
// empty selections, unreachable containers) are returned as errors;
// per-item operation failures are not errors, they are part of the
// report.
func (e *Engine) Run(ctx context.Context, operation string, sel Selection, op Op) (*Report, error) {
	candidates, err := e.resolver.Resolve(ctx, sel)
	if err != nil {
		e.logger.Error("bulk selection failed",
			logging.Operation(operation),
			logging.Err(err))
		return nil, err
	}
	return e.RunItems(ctx, operation, candidates, op)
}

// RunItems applies op to a pre-built candidate list, bypassing the
// resolver. Creation-style bulk operations use this: their items are
// inputs to create, not existing cards to select.
func (e *Engine) RunItems(ctx context.Context, operation string, candidates []Candidate, op Op) (*Report, error) {
	if len(candidates) == 0 {
		return nil, ErrEmptySelection
	}
	start := time.Now()

	outcomes, truncated := e.executor.Run(ctx, candidates, op)
	report := Aggregate(outcomes, truncated)

	e.logger.Info("bulk run complete",
		logging.Operation(operation),
		slog.Int("requested", report.Requested),
		slog.Int("succeeded", report.Succeeded),
		slog.Int("failed", report.Failed),
		slog.Bool("truncated", report.SafetyLimitApplied),
		logging.Duration(time.Since(start)))

	if e.recorder != nil {
		e.recorder.RecordBulkRun(ctx, operation, report.Requested, report.Succeeded, report.Failed, report.SafetyLimitApplied, time.Since(start))
	}
	return &report, nil
}
