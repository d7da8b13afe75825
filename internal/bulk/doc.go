// Package bulk implements the bulk-operation engine shared by all
// bulk card tools.
//
// A bulk run resolves a selection (explicit card ids, or a list/board
// plus filter predicates) into an ordered candidate set, trims it to
// the safety cap, processes it in fixed-size batches with per-batch
// concurrency, and aggregates per-item outcomes into a single report.
// One item's failure never aborts its siblings or later batches.
package bulk
