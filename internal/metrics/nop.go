// Package metrics provides MetricsCollector implementations.
package metrics

import "github.com/Debodeep94/SLOG-Eval/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external
// metrics collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A new no-op metrics collector instance
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// RecordAssignment discards the assignment metric.
func (n *NopMetrics) RecordAssignment(_ /* phase */ types.Phase) {}

// RecordStateTransition discards the state transition metric.
func (n *NopMetrics) RecordStateTransition(_ /* from */, _ /* to */ types.State) {}

// IncrementOverlapShortfall discards the shortfall counter.
func (n *NopMetrics) IncrementOverlapShortfall() {}

// RecordCacheLookup discards the cache lookup metric.
func (n *NopMetrics) RecordCacheLookup(_ /* hit */ bool) {}

// RecordSubmission discards the submission metric.
func (n *NopMetrics) RecordSubmission(_ /* phase */ types.Phase, _ /* outcome */ string) {}

// ObserveStoreLatency discards the latency observation.
func (n *NopMetrics) ObserveStoreLatency(_ /* op */ string, _ /* seconds */ float64) {}

// IncrementStoreRetry discards the retry counter.
func (n *NopMetrics) IncrementStoreRetry(_ /* op */ string) {}

// IncrementStoreError discards the error counter.
func (n *NopMetrics) IncrementStoreError(_ /* op */, _ /* kind */ string) {}
