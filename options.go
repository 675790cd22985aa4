package slogeval

import "time"

// Option configures a Coordinator with optional dependencies.
type Option func(*coordinatorOptions)

// coordinatorOptions holds optional Coordinator configuration.
type coordinatorOptions struct {
	partitioner Partitioner
	seed        SeedFunc
	hooks       *Hooks
	metrics     MetricsCollector
	logger      Logger
	now         func() time.Time
	retrySeed   int64
}

// WithPartitioner replaces the default pivot-key partitioner.
//
// Parameters:
//   - p: Partitioner implementation
//
// Returns:
//   - Option: Functional option for NewCoordinator
func WithPartitioner(p Partitioner) Option {
	return func(o *coordinatorOptions) {
		o.partitioner = p
	}
}

// WithSeedFunc sets the per-user seed function of the default partitioner.
//
// Ignored when WithPartitioner is also given.
//
// Parameters:
//   - fn: Pure function of the user ID
//
// Returns:
//   - Option: Functional option for NewCoordinator
func WithSeedFunc(fn SeedFunc) Option {
	return func(o *coordinatorOptions) {
		o.seed = fn
	}
}

// WithHooks sets event hooks.
//
// Parameters:
//   - hooks: Hooks structure with callback functions
//
// Returns:
//   - Option: Functional option for NewCoordinator
//
// Example:
//
//	hooks := &slogeval.Hooks{
//	    OnPhaseChanged: func(ctx context.Context, userID string, from, to slogeval.State) error {
//	        return notify(userID, to)
//	    },
//	}
//	coord, err := slogeval.NewCoordinator(&cfg, src, store, slogeval.WithHooks(hooks))
func WithHooks(hooks *Hooks) Option {
	return func(o *coordinatorOptions) {
		o.hooks = hooks
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for NewCoordinator
//
// Example:
//
//	m := slogeval.NewPrometheusMetrics(prometheus.DefaultRegisterer, "")
//	coord, err := slogeval.NewCoordinator(&cfg, src, store, slogeval.WithMetrics(m))
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *coordinatorOptions) {
		o.metrics = metrics
	}
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (compatible with zap.SugaredLogger)
//
// Returns:
//   - Option: Functional option for NewCoordinator
//
// Example:
//
//	logger := slogeval.NewSlogLogger(slog.Default())
//	coord, err := slogeval.NewCoordinator(&cfg, src, store, slogeval.WithLogger(logger))
func WithLogger(logger Logger) Option {
	return func(o *coordinatorOptions) {
		o.logger = logger
	}
}

// WithClock sets the clock used for record timestamps and cache expiry.
func WithClock(now func() time.Time) Option {
	return func(o *coordinatorOptions) {
		o.now = now
	}
}

// withRetrySeed pins retry jitter (tests).
func withRetrySeed(seed int64) Option {
	return func(o *coordinatorOptions) {
		o.retrySeed = seed
	}
}
