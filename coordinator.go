package slogeval

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/Debodeep94/SLOG-Eval/internal/cache"
	"github.com/Debodeep94/SLOG-Eval/internal/hash"
	"github.com/Debodeep94/SLOG-Eval/internal/hooks"
	"github.com/Debodeep94/SLOG-Eval/internal/logging"
	"github.com/Debodeep94/SLOG-Eval/internal/metrics"
	"github.com/Debodeep94/SLOG-Eval/internal/progress"
	"github.com/Debodeep94/SLOG-Eval/internal/retry"
	"github.com/Debodeep94/SLOG-Eval/partition"
	"github.com/Debodeep94/SLOG-Eval/types"
)

type lifecycle int

const (
	lifecycleNew lifecycle = iota
	lifecycleRunning
	lifecycleStopped
)

// Coordinator decides what each annotator labels next.
//
// The Coordinator holds no progress of its own: every answer is derived from
// the completion records in the ProgressStore and the user's deterministic
// pools. Two Coordinators over the same items and store always agree.
//
// Thread Safety:
//   - All public methods are safe for concurrent use
//   - Per-user session state lives in lock-free maps; users never contend
//
// Lifecycle:
//   - Create with NewCoordinator()
//   - Call Start() to load items
//   - Serve CurrentAssignment / Submit / Progress / JumpTo
//   - Call Stop() to drop session caches and wait for hooks
type Coordinator struct {
	cfg         Config
	source      ItemSource
	store       ProgressStore
	partitioner Partitioner
	schema      LabelSchema
	policy      retry.Policy

	hooks   Hooks
	metrics MetricsCollector
	logger  Logger
	now     func() time.Time

	recorder *Recorder

	// Session state, rebuilt on demand
	items    []Item
	pools    *xsync.Map[string, Pools]
	observed *xsync.Map[string, State]
	records  *cache.Records

	// Lifecycle management
	ctx    context.Context
	cancel context.CancelFunc
	state  lifecycle
	wg     sync.WaitGroup
	mu     sync.RWMutex
}

// NewCoordinator creates a new Coordinator with the provided configuration.
//
// Returns a concrete *Coordinator struct following the "accept interfaces, return
// structs" principle. Consumers can define their own interfaces for testing.
//
// Parameters:
//   - cfg: Configuration (defaults filled in place)
//   - src: Item source, read once by Start
//   - store: Durable completion log
//   - opts: Optional configuration (partitioner, hooks, metrics, logger, clock)
//
// Returns:
//   - *Coordinator: Initialized coordinator
//   - error: ErrInvalidConfig, ErrItemSourceRequired or ErrProgressStoreRequired
//
// Example:
//
//	cfg := slogeval.DefaultConfig()
//	coord, err := slogeval.NewCoordinator(&cfg, source.NewStatic(items), memory.New())
func NewCoordinator(cfg *Config, src ItemSource, store ProgressStore, opts ...Option) (*Coordinator, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if src == nil {
		return nil, ErrItemSourceRequired
	}
	if store == nil {
		return nil, ErrProgressStoreRequired
	}

	SetDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &coordinatorOptions{}
	for _, opt := range opts {
		opt(options)
	}

	// Safe defaults for optional dependencies to avoid nil checks everywhere
	metricsCollector := options.metrics
	if metricsCollector == nil {
		metricsCollector = metrics.NewNop()
	}

	loggerInstance := options.logger
	if loggerInstance == nil {
		loggerInstance = logging.NewNop()
	}

	cfg.ValidateWithWarnings(loggerInstance)

	now := options.now
	if now == nil {
		now = time.Now
	}

	partitioner := options.partitioner
	if partitioner == nil {
		seed := options.seed
		if seed == nil {
			seed = hash.UserSeed(cfg.SeedSalt)
		}
		partitioner = partition.NewPaired(
			partition.WithQualTarget(cfg.QualTargetCount),
			partition.WithSeedFunc(seed),
		)
	}

	c := &Coordinator{
		cfg:         *cfg,
		source:      src,
		store:       store,
		partitioner: partitioner,
		schema:      cfg.LabelSchema(),
		policy: retry.Policy{
			MaxAttempts: cfg.Retry.MaxAttempts,
			BaseDelay:   cfg.Retry.BaseDelay,
			MaxDelay:    cfg.Retry.MaxDelay,
			Multiplier:  cfg.Retry.Multiplier,
			Seed:        options.retrySeed,
		},
		hooks:    hooks.Fill(options.hooks),
		metrics:  metricsCollector,
		logger:   loggerInstance,
		now:      now,
		pools:    xsync.NewMap[string, Pools](),
		observed: xsync.NewMap[string, State](),
		records:  cache.New(cfg.ReadCacheTTL, now),
	}
	c.recorder = &Recorder{c: c}

	return c, nil
}

// Start loads the item set.
//
// A DataError from the source is fatal: the coordinator stays unstarted.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//
// Returns:
//   - error: ErrAlreadyStarted, or the source error (matches ErrDataError for bad data)
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != lifecycleNew {
		return ErrAlreadyStarted
	}

	loadCtx, cancel := context.WithTimeout(ctx, c.cfg.OperationTimeout)
	defer cancel()

	items, err := c.source.LoadItems(loadCtx)
	if err != nil {
		c.logger.Error("failed to load items", "error", err)
		return fmt.Errorf("load items: %w", err)
	}

	c.items = items
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.state = lifecycleRunning

	c.logger.Info("coordinator started",
		"items", len(items),
		"qual_target", c.cfg.QualTargetCount,
		"allow_revisit", c.cfg.AllowRevisit,
	)

	return nil
}

// Stop drops session caches and waits for in-flight hooks.
//
// Parameters:
//   - ctx: Context bounding the wait for hooks
//
// Returns:
//   - error: ErrNotStarted, or ctx.Err() if hooks did not finish in time
func (c *Coordinator) Stop(ctx context.Context) error {
	c.mu.Lock()
	if c.state != lifecycleRunning {
		c.mu.Unlock()
		return ErrNotStarted
	}
	c.state = lifecycleStopped
	c.cancel()
	c.mu.Unlock()

	c.pools.Clear()
	c.observed.Clear()
	c.records.Clear()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("coordinator stopped")
		return nil
	case <-ctx.Done():
		c.logger.Error("shutdown timeout exceeded, hooks may still be running")
		return ctx.Err()
	}
}

// CurrentAssignment returns the item userID should label now.
//
// The first incomplete quantitative item comes back while any remain, then the
// first incomplete qualitative item, then a Complete() assignment.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - userID: Annotator identity
//
// Returns:
//   - Assignment: Next item, or the terminal all-done assignment
//   - error: ErrNotStarted, or ErrStoreUnavailable / ErrStoreAuth when progress
//     cannot be read (no assignment is guessed)
func (c *Coordinator) CurrentAssignment(ctx context.Context, userID string) (Assignment, error) {
	pools, cur, _, err := c.derive(ctx, userID)
	if err != nil {
		return Assignment{}, err
	}

	a := progress.Next(pools, cur)
	if a.Complete() {
		c.metrics.RecordAssignment(types.AssignmentDone)
		c.logger.Debug("all work complete", "user_id", userID)
	} else {
		c.metrics.RecordAssignment(a.Phase)
		c.logger.Debug("assignment", "user_id", userID, "phase", a.Phase, "item", a.Item.Key().String(),
			"position", a.Position, "total", a.Total)
	}

	return a, nil
}

// Progress returns the derived progress cursor for userID.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - userID: Annotator identity
//
// Returns:
//   - ProgressCursor: Completed sets, totals and state
//   - error: ErrNotStarted or a store error
func (c *Coordinator) Progress(ctx context.Context, userID string) (ProgressCursor, error) {
	_, cur, _, err := c.derive(ctx, userID)

	return cur, err
}

// Pools returns userID's canonical pools.
//
// Parameters:
//   - userID: Annotator identity
//
// Returns:
//   - Pools: Quantitative and qualitative pools in canonical order
//   - error: ErrNotStarted; a degraded qualitative pool is not an error here
func (c *Coordinator) Pools(userID string) (Pools, error) {
	if err := c.checkRunning(userID); err != nil {
		return Pools{}, err
	}

	return c.poolsFor(userID)
}

// JumpTo opens a specific item for userID.
//
// Completed items reopen with Revisit set and Previous holding the latest
// stored labels. The current next item is also allowed. Anything else would
// skip ahead and is locked.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - userID: Annotator identity
//   - key: Item to open
//
// Returns:
//   - Assignment: The requested item
//   - error: ErrRevisitDisabled, ErrUnknownItem, ErrItemLocked or a store error
func (c *Coordinator) JumpTo(ctx context.Context, userID string, key ItemKey) (Assignment, error) {
	if !c.cfg.AllowRevisit {
		return Assignment{}, ErrRevisitDisabled
	}

	pools, cur, _, err := c.derive(ctx, userID)
	if err != nil {
		return Assignment{}, err
	}

	a, ok := progress.At(pools, cur, key)
	if !ok {
		return Assignment{}, fmt.Errorf("%w: %s", ErrUnknownItem, key)
	}
	if a.Revisit {
		c.logger.Debug("revisit", "user_id", userID, "item", key.String())
		return a, nil
	}

	next := progress.Next(pools, cur)
	if !next.Complete() && next.Item.Key() == key {
		return next, nil
	}

	return Assignment{}, fmt.Errorf("%w: %s", ErrItemLocked, key)
}

// Submit records labels for one item.
//
// See Recorder.Submit.
func (c *Coordinator) Submit(ctx context.Context, userID string, phase Phase, key ItemKey,
	payload map[string]string,
) (SubmitOutcome, error) {
	return c.recorder.Submit(ctx, userID, phase, key, payload)
}

// Recorder returns the coordinator's result recorder.
func (c *Coordinator) Recorder() *Recorder {
	return c.recorder
}

// Schema returns the label dimensions submissions are validated against.
func (c *Coordinator) Schema() LabelSchema {
	return c.schema
}

func (c *Coordinator) checkRunning(userID string) error {
	c.mu.RLock()
	running := c.state == lifecycleRunning
	c.mu.RUnlock()

	if !running {
		return ErrNotStarted
	}
	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrValidation)
	}

	return nil
}

// derive loads pools and records for userID and computes the cursor.
func (c *Coordinator) derive(ctx context.Context, userID string) (Pools, ProgressCursor, []CompletionRecord, error) {
	if err := c.checkRunning(userID); err != nil {
		return Pools{}, ProgressCursor{}, nil, err
	}

	pools, err := c.poolsFor(userID)
	if err != nil {
		return Pools{}, ProgressCursor{}, nil, err
	}

	recs, err := c.completed(ctx, userID)
	if err != nil {
		return Pools{}, ProgressCursor{}, nil, err
	}

	cur := progress.Derive(pools, recs)
	c.observe(userID, cur.State)

	return pools, cur, recs, nil
}

// poolsFor returns the session-cached pools for userID, partitioning on first use.
func (c *Coordinator) poolsFor(userID string) (Pools, error) {
	if p, ok := c.pools.Load(userID); ok {
		return p, nil
	}

	pools, err := c.partitioner.Partition(c.items, userID)
	var shortfall *types.InsufficientOverlapError
	if err != nil && !errors.As(err, &shortfall) {
		return Pools{}, fmt.Errorf("partition: %w", err)
	}

	// Partitioning is pure, so a racing computation stores an identical value.
	if _, loaded := c.pools.LoadOrStore(userID, pools); !loaded {
		c.logger.Info("pools derived",
			"user_id", userID,
			"quant", pools.Quant.Len(),
			"qual", pools.Qual.Len(),
		)
		if shortfall != nil {
			c.logger.Warn("insufficient overlap, qualitative pool reduced",
				"user_id", userID,
				"requested", shortfall.Requested,
				"available", shortfall.Available,
			)
			c.metrics.IncrementOverlapShortfall()
			c.runHook("overlap shortfall", func(ctx context.Context) error {
				return c.hooks.OnOverlapShortfall(ctx, userID, shortfall.Requested, shortfall.Available)
			})
		}
	}

	return pools, nil
}

// completed reads userID's records through the read cache.
func (c *Coordinator) completed(ctx context.Context, userID string) ([]CompletionRecord, error) {
	recs, gen, hit := c.records.Get(userID)
	if c.records.Enabled() {
		c.metrics.RecordCacheLookup(hit)
	}
	if hit {
		return recs, nil
	}

	err := c.withRetry(ctx, "list", func(ctx context.Context) error {
		var lerr error
		recs, lerr = c.store.ListCompleted(ctx, userID)

		return lerr
	})
	if err != nil {
		return nil, err
	}

	c.records.Put(userID, gen, recs)

	return recs, nil
}

// observe compares the derived state with the last one seen for userID.
//
// The observed state only drives hooks and metrics; derivation never reads it.
func (c *Coordinator) observe(userID string, to State) {
	from, loaded := c.observed.LoadAndStore(userID, to)
	if !loaded || from == to {
		return
	}

	if to < from {
		c.logger.Warn("derived state moved backwards", "user_id", userID, "from", from.String(), "to", to.String())
	} else {
		c.logger.Info("phase changed", "user_id", userID, "from", from.String(), "to", to.String())
	}

	c.metrics.RecordStateTransition(from, to)
	c.runHook("phase changed", func(ctx context.Context) error {
		return c.hooks.OnPhaseChanged(ctx, userID, from, to)
	})
}

// withRetry runs a store call with the per-call timeout, retrying transient failures.
func (c *Coordinator) withRetry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	retryable := func(err error) bool {
		return errors.Is(err, ErrStoreUnavailable) && !errors.Is(err, ErrStoreAuth)
	}
	onRetry := func(attempt int, delay time.Duration, err error) {
		c.metrics.IncrementStoreRetry(op)
		c.logger.Debug("retrying store call", "op", op, "attempt", attempt, "delay", delay, "error", err)
	}

	err := retry.Do(ctx, c.policy, retryable, onRetry, func(ctx context.Context) error {
		opCtx, cancel := context.WithTimeout(ctx, c.cfg.OperationTimeout)
		defer cancel()

		start := c.now()
		err := fn(opCtx)
		c.metrics.ObserveStoreLatency(op, c.now().Sub(start).Seconds())

		// A per-call timeout with a live parent is a slow store, not a cancelled caller.
		if err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil &&
			!errors.Is(err, ErrStoreUnavailable) {
			err = fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
		}

		return err
	})
	if err == nil {
		return nil
	}

	kind := "other"
	switch {
	case errors.Is(err, ErrStoreAuth):
		kind = "auth"
	case errors.Is(err, ErrStoreUnavailable):
		kind = "unavailable"
	}
	c.metrics.IncrementStoreError(op, kind)
	c.logger.Error("store call failed", "op", op, "kind", kind, "error", err)

	storeErr := fmt.Errorf("progress store %s: %w", op, err)
	c.runHook("error", func(ctx context.Context) error {
		return c.hooks.OnError(ctx, storeErr)
	})

	return storeErr
}

// runHook runs a hook in the background so it never delays a caller.
func (c *Coordinator) runHook(name string, fn func(ctx context.Context) error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.state != lifecycleRunning {
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := fn(c.ctx); err != nil {
			c.logger.Error("hook error", "hook", name, "error", err)
		}
	}()
}
