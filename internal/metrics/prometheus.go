package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Debodeep94/SLOG-Eval/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Collectors are created and registered lazily on first use.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	assignments      *prometheus.CounterVec
	transitions      *prometheus.CounterVec
	overlapShortfall prometheus.Counter
	cacheLookups     *prometheus.CounterVec
	submissions      *prometheus.CounterVec
	storeLatency     *prometheus.HistogramVec
	storeRetries     *prometheus.CounterVec
	storeErrors      *prometheus.CounterVec
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "slogeval" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "slogeval"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.assignments = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "coordinator",
			Name:      "assignments_total",
			Help:      "Assignments served by phase (done when both phases are complete).",
		}, []string{"phase"})

		p.transitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "coordinator",
			Name:      "state_transitions_total",
			Help:      "Observed per-user state transitions.",
		}, []string{"from", "to"})

		p.overlapShortfall = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "partitioner",
			Name:      "overlap_shortfall_total",
			Help:      "Partitions built with fewer pivot keys than requested.",
		})

		p.cacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "coordinator",
			Name:      "cache_lookups_total",
			Help:      "Record cache lookups by result (hit, miss).",
		}, []string{"result"})

		p.submissions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "recorder",
			Name:      "submissions_total",
			Help:      "Submissions by phase and outcome.",
		}, []string{"phase", "outcome"})

		p.storeLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "store",
			Name:      "operation_seconds",
			Help:      "Progress store operation latency in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2.5, 10), // 1ms .. ~3.8s
		}, []string{"op"})

		p.storeRetries = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "store",
			Name:      "retries_total",
			Help:      "Progress store retries by operation.",
		}, []string{"op"})

		p.storeErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "store",
			Name:      "errors_total",
			Help:      "Failed progress store operations by operation and kind.",
		}, []string{"op", "kind"})

		p.reg.MustRegister(p.assignments)
		p.reg.MustRegister(p.transitions)
		p.reg.MustRegister(p.overlapShortfall)
		p.reg.MustRegister(p.cacheLookups)
		p.reg.MustRegister(p.submissions)
		p.reg.MustRegister(p.storeLatency)
		p.reg.MustRegister(p.storeRetries)
		p.reg.MustRegister(p.storeErrors)
	})
}

// RecordAssignment counts a served assignment.
func (p *PrometheusCollector) RecordAssignment(phase types.Phase) {
	p.ensureRegistered()
	if phase == "" {
		phase = types.AssignmentDone
	}
	p.assignments.WithLabelValues(string(phase)).Inc()
}

// RecordStateTransition counts a state transition.
func (p *PrometheusCollector) RecordStateTransition(from, to types.State) {
	p.ensureRegistered()
	p.transitions.WithLabelValues(from.String(), to.String()).Inc()
}

// IncrementOverlapShortfall counts a degraded qualitative pool.
func (p *PrometheusCollector) IncrementOverlapShortfall() {
	p.ensureRegistered()
	p.overlapShortfall.Inc()
}

// RecordCacheLookup counts a cache hit or miss.
func (p *PrometheusCollector) RecordCacheLookup(hit bool) {
	p.ensureRegistered()
	result := "miss"
	if hit {
		result = "hit"
	}
	p.cacheLookups.WithLabelValues(result).Inc()
}

// RecordSubmission counts a submission outcome.
func (p *PrometheusCollector) RecordSubmission(phase types.Phase, outcome string) {
	p.ensureRegistered()
	p.submissions.WithLabelValues(string(phase), outcome).Inc()
}

// ObserveStoreLatency observes a store operation duration.
func (p *PrometheusCollector) ObserveStoreLatency(op string, seconds float64) {
	p.ensureRegistered()
	p.storeLatency.WithLabelValues(op).Observe(seconds)
}

// IncrementStoreRetry counts a store retry.
func (p *PrometheusCollector) IncrementStoreRetry(op string) {
	p.ensureRegistered()
	p.storeRetries.WithLabelValues(op).Inc()
}

// IncrementStoreError counts a failed store operation.
func (p *PrometheusCollector) IncrementStoreError(op, kind string) {
	p.ensureRegistered()
	p.storeErrors.WithLabelValues(op, kind).Inc()
}
