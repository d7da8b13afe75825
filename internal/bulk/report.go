package bulk

import (
	"fmt"
)

// Outcome is the result of processing one candidate.
type Outcome struct {
	Candidate Candidate
	Result    string
	Err       error
}

// Success reports whether the candidate's operation succeeded.
func (o Outcome) Success() bool {
	return o.Err == nil
}

// ItemResult is the per-card entry of a report, shaped for JSON tool
// output.
type ItemResult struct {
	Index  int    `json:"index"`
	CardID string `json:"cardId,omitempty"`
	Name   string `json:"name,omitempty"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Report summarizes a bulk run. Succeeded+Failed always equals
// Requested, and Successes and Failures together cover every
// candidate exactly once, ordered by original index.
type Report struct {
	Requested          int          `json:"requested"`
	Succeeded          int          `json:"succeeded"`
	Failed             int          `json:"failed"`
	SafetyLimitApplied bool         `json:"safetyLimitApplied"`
	Successes          []ItemResult `json:"successes,omitempty"`
	Failures           []ItemResult `json:"failures,omitempty"`
}

// Summary renders a one-line human-readable digest of the run.
func (r Report) Summary() string {
	s := fmt.Sprintf("%d requested, %d succeeded, %d failed", r.Requested, r.Succeeded, r.Failed)
	if r.SafetyLimitApplied {
		s += " (selection truncated by safety limit)"
	}
	return s
}

// Aggregate folds per-item outcomes into a report. Outcomes are
// expected in index order, as produced by the executor.
func Aggregate(outcomes []Outcome, truncated bool) Report {
	report := Report{
		Requested:          len(outcomes),
		SafetyLimitApplied: truncated,
	}
	for _, o := range outcomes {
		item := ItemResult{
			Index:  o.Candidate.Index,
			CardID: o.Candidate.Card.ID,
			Name:   o.Candidate.Card.Name,
		}
		if o.Success() {
			item.Result = o.Result
			report.Successes = append(report.Successes, item)
			report.Succeeded++
			continue
		}
		item.Error = o.Err.Error()
		report.Failures = append(report.Failures, item)
		report.Failed++
	}
	return report
}
