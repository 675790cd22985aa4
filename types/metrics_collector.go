package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and must be safe for concurrent use.
//
// This interface composes smaller, domain-focused interfaces.
type MetricsCollector interface {
	CoordinatorMetrics
	RecorderMetrics
	StoreMetrics
}

// AssignmentDone is the RecordAssignment label of the terminal assignment.
// It is not a valid submission phase.
const AssignmentDone Phase = "done"

// CoordinatorMetrics defines metrics for assignment computation.
type CoordinatorMetrics interface {
	// RecordAssignment records a served assignment for phase, or for
	// AssignmentDone when the user has nothing left.
	RecordAssignment(phase Phase)

	// RecordStateTransition records a per-user state change.
	RecordStateTransition(from, to State)

	// IncrementOverlapShortfall records a degraded qualitative pool.
	IncrementOverlapShortfall()

	// RecordCacheLookup records a read-cache hit or miss.
	RecordCacheLookup(hit bool)
}

// RecorderMetrics defines metrics for submissions.
type RecorderMetrics interface {
	// RecordSubmission records a submit outcome ("recorded", "duplicate",
	// "overwritten", "rejected", "failed") for phase.
	RecordSubmission(phase Phase, outcome string)
}

// StoreMetrics defines metrics for progress store calls.
type StoreMetrics interface {
	// ObserveStoreLatency records the duration of a store operation in seconds.
	ObserveStoreLatency(op string, seconds float64)

	// IncrementStoreRetry records one retry of op.
	IncrementStoreRetry(op string)

	// IncrementStoreError records a failed store operation by error kind.
	IncrementStoreError(op, kind string)
}
