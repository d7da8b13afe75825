package instrumentation

import "strconv"

// Cardinality management helpers for metrics.
// These functions reduce high-cardinality label values to prevent metrics explosion.
//
// # Warning
//
// High cardinality in metrics can cause:
// - Increased memory usage in Prometheus/metrics backends
// - Slower query performance
// - Higher storage costs
//
// Bulk selections can be arbitrarily large and Trello ids are unique
// per board/list/card, so neither raw counts nor raw ids belong in
// metric labels.

// BucketSelectionSize maps a bulk selection size to a small fixed set
// of label values.
//
// Example:
//
//	BucketSelectionSize(1)    // "1"
//	BucketSelectionSize(7)    // "2-10"
//	BucketSelectionSize(33)   // "26-50"
//	BucketSelectionSize(400)  // "100+"
func BucketSelectionSize(n int) string {
	switch {
	case n <= 0:
		return "0"
	case n == 1:
		return "1"
	case n <= 10:
		return "2-10"
	case n <= 25:
		return "11-25"
	case n <= 50:
		return "26-50"
	case n <= 100:
		return "51-100"
	default:
		return "100+"
	}
}

// BucketAttempts maps a retry attempt count to a bounded label value.
func BucketAttempts(attempts int) string {
	if attempts <= 3 {
		return strconv.Itoa(attempts)
	}
	return "4+"
}

// Common operation types for Trello API metrics.
// Status constants are defined in config.go.
const (
	OperationList    = "list"
	OperationGet     = "get"
	OperationCreate  = "create"
	OperationUpdate  = "update"
	OperationDelete  = "delete"
	OperationMove    = "move"
	OperationArchive = "archive"
)
