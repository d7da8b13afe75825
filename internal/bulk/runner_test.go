package bulk

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trellofewer/trellofewer/internal/trello"
)

type fakeBulkRecorder struct {
	operation string
	requested int
	succeeded int
	failed    int
	truncated bool
	calls     int
}

func (f *fakeBulkRecorder) RecordBulkRun(ctx context.Context, operation string, requested, succeeded, failed int, truncated bool, duration time.Duration) {
	f.operation = operation
	f.requested = requested
	f.succeeded = succeeded
	f.failed = failed
	f.truncated = truncated
	f.calls++
}

func newTestEngine(source CardSource, opts Options, recorder Recorder) *Engine {
	engine := NewEngine(source, opts, testLogger(), recorder)
	engine.executor.sleep = func(ctx context.Context, d time.Duration) {}
	return engine
}

func TestEngine_PartialFailureIsAReportNotAnError(t *testing.T) {
	source := &fakeSource{listCards: map[string][]trello.Card{
		"l1": {
			{ID: "c1", Name: "one"},
			{ID: "c2", Name: "two"},
			{ID: "c3", Name: "three"},
		},
	}}
	recorder := &fakeBulkRecorder{}
	engine := newTestEngine(source, Options{BatchSize: 10}, recorder)

	report, err := engine.Run(context.Background(), "bulk_archive_cards", Selection{ListID: "l1"}, func(ctx context.Context, c Candidate) (string, error) {
		if c.Card.ID == "c2" {
			return "", errors.New("card locked")
		}
		return "archived", nil
	})
	require.NoError(t, err)

	assert.Equal(t, 3, report.Requested)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "c2", report.Failures[0].CardID)
	assert.Contains(t, report.Failures[0].Error, "card locked")

	assert.Equal(t, 1, recorder.calls)
	assert.Equal(t, "bulk_archive_cards", recorder.operation)
	assert.Equal(t, 3, recorder.requested)
	assert.Equal(t, 2, recorder.succeeded)
	assert.Equal(t, 1, recorder.failed)
}

func TestEngine_EmptySelectionIsAnError(t *testing.T) {
	source := &fakeSource{listCards: map[string][]trello.Card{"l1": {}}}
	engine := newTestEngine(source, Options{}, nil)

	report, err := engine.Run(context.Background(), "bulk_move_cards", Selection{ListID: "l1"}, func(ctx context.Context, c Candidate) (string, error) {
		t.Fatal("op must not be invoked for an empty selection")
		return "", nil
	})
	assert.Nil(t, report)
	assert.ErrorIs(t, err, ErrEmptySelection)
}

func TestEngine_TruncationReported(t *testing.T) {
	cards := make([]trello.Card, 37)
	for i := range cards {
		cards[i] = trello.Card{ID: string(rune('a' + i))}
	}
	source := &fakeSource{boardCards: map[string][]trello.Card{"b1": cards}}
	recorder := &fakeBulkRecorder{}
	engine := newTestEngine(source, Options{BatchSize: 10, SafetyCap: 20}, recorder)

	report, err := engine.Run(context.Background(), "bulk_update_cards", Selection{BoardID: "b1"}, func(ctx context.Context, c Candidate) (string, error) {
		return "updated", nil
	})
	require.NoError(t, err)

	assert.True(t, report.SafetyLimitApplied)
	assert.Equal(t, 20, report.Requested)
	assert.Equal(t, 20, report.Succeeded)
	assert.True(t, recorder.truncated)
}

func TestEngine_ExplicitIDsWithResolutionFailure(t *testing.T) {
	source := &fakeSource{cards: map[string]trello.Card{
		"c1": {ID: "c1", Name: "one"},
	}}
	engine := newTestEngine(source, Options{}, nil)

	report, err := engine.Run(context.Background(), "bulk_archive_cards", Selection{CardIDs: []string{"c1", "ghost"}}, func(ctx context.Context, c Candidate) (string, error) {
		return "archived", nil
	})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Requested)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "ghost", report.Failures[0].CardID)
}
