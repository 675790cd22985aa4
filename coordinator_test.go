package slogeval

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Debodeep94/SLOG-Eval/internal/metrics"
	"github.com/Debodeep94/SLOG-Eval/source"
	"github.com/Debodeep94/SLOG-Eval/store/memory"
	slogtest "github.com/Debodeep94/SLOG-Eval/testing"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.now = f.now.Add(time.Millisecond)

	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.now = f.now.Add(d)
}

func quantLabels(score string) map[string]string {
	m := make(map[string]string, len(DefaultSymptoms))
	for _, s := range DefaultSymptoms {
		m[s] = score
	}

	return m
}

func qualLabels() map[string]string {
	return map[string]string{
		"confidence":         "4",
		"difficult_symptoms": "Edema",
		"extra_info_needed":  "prior imaging",
		"other_feedback":     "none",
	}
}

func labelsFor(phase Phase) map[string]string {
	if phase == PhaseQual {
		return qualLabels()
	}

	return quantLabels("1")
}

// tenAndFour yields 10 quantitative and 4 qualitative items with a target of 2.
func tenAndFour() []Item {
	return slogtest.PairedItems(3, 4, 4)
}

func newTestCoordinator(t *testing.T, items []Item, store ProgressStore, mutate func(*Config), opts ...Option) *Coordinator {
	t.Helper()

	cfg := TestConfig()
	cfg.QualTargetCount = 2
	if mutate != nil {
		mutate(&cfg)
	}

	opts = append([]Option{WithLogger(slogtest.NewTestLogger(t)), withRetrySeed(1)}, opts...)
	c, err := NewCoordinator(&cfg, source.NewStatic(items), store, opts...)
	require.NoError(t, err)
	require.NoError(t, c.Start(context.Background()))
	t.Cleanup(func() {
		_ = c.Stop(context.Background())
	})

	return c
}

func TestNewCoordinator_Validation(t *testing.T) {
	cfg := TestConfig()
	src := source.NewStatic(tenAndFour())
	store := memory.New()

	_, err := NewCoordinator(nil, src, store)
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewCoordinator(&cfg, nil, store)
	require.ErrorIs(t, err, ErrItemSourceRequired)

	_, err = NewCoordinator(&cfg, src, nil)
	require.ErrorIs(t, err, ErrProgressStoreRequired)

	bad := TestConfig()
	bad.QualTargetCount = -1
	_, err = NewCoordinator(&bad, src, store)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestCoordinator_Lifecycle(t *testing.T) {
	ctx := context.Background()
	cfg := TestConfig()

	c, err := NewCoordinator(&cfg, source.NewStatic(tenAndFour()), memory.New())
	require.NoError(t, err)

	_, err = c.CurrentAssignment(ctx, "u1")
	require.ErrorIs(t, err, ErrNotStarted)
	require.ErrorIs(t, c.Stop(ctx), ErrNotStarted)

	require.NoError(t, c.Start(ctx))
	require.ErrorIs(t, c.Start(ctx), ErrAlreadyStarted)

	_, err = c.CurrentAssignment(ctx, "")
	require.ErrorIs(t, err, ErrValidation)

	require.NoError(t, c.Stop(ctx))
	require.ErrorIs(t, c.Stop(ctx), ErrNotStarted)

	_, err = c.CurrentAssignment(ctx, "u1")
	require.ErrorIs(t, err, ErrNotStarted)
}

func TestCoordinator_StartRejectsBadData(t *testing.T) {
	cfg := TestConfig()
	items := []Item{{ID: "1", Text: "", Provenance: ProvenanceSourceA}}

	c, err := NewCoordinator(&cfg, source.NewStatic(items), memory.New())
	require.NoError(t, err)

	err = c.Start(context.Background())
	require.ErrorIs(t, err, ErrDataError)

	var dataErr *DataError
	require.True(t, errors.As(err, &dataErr))
	require.Equal(t, "text", dataErr.Field)

	_, err = c.CurrentAssignment(context.Background(), "u1")
	require.ErrorIs(t, err, ErrNotStarted)
}

func TestCoordinator_TenQuantFourQual(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	transitions := make(chan [2]State, 4)
	hooks := &Hooks{
		OnPhaseChanged: func(_ context.Context, userID string, from, to State) error {
			transitions <- [2]State{from, to}
			return nil
		},
	}
	c := newTestCoordinator(t, tenAndFour(), store, nil, WithHooks(hooks))

	seen := make(map[ItemKey]struct{})
	var phases []Phase
	for {
		a, err := c.CurrentAssignment(ctx, "annotator")
		require.NoError(t, err)
		if a.Complete() {
			require.Equal(t, StateAllDone, a.State)
			break
		}

		_, dup := seen[a.Item.Key()]
		require.False(t, dup, "item %s assigned twice", a.Item.Key())
		seen[a.Item.Key()] = struct{}{}
		phases = append(phases, a.Phase)
		require.Equal(t, len(phases)-countPhase(phases, otherPhase(a.Phase)), a.Position)

		outcome, err := c.Submit(ctx, "annotator", a.Phase, a.Item.Key(), labelsFor(a.Phase))
		require.NoError(t, err)
		require.Equal(t, OutcomeRecorded, outcome)
	}

	require.Len(t, phases, 14)
	for i, p := range phases {
		if i < 10 {
			require.Equal(t, PhaseQuant, p, "position %d", i)
		} else {
			require.Equal(t, PhaseQual, p, "position %d", i)
		}
	}
	require.Equal(t, 14, store.Len("annotator"))

	cur, err := c.Progress(ctx, "annotator")
	require.NoError(t, err)
	require.Equal(t, 10, cur.CompletedCount(PhaseQuant))
	require.Equal(t, 4, cur.CompletedCount(PhaseQual))

	got := [][2]State{recv(t, transitions), recv(t, transitions)}
	require.ElementsMatch(t, [][2]State{
		{StateQuantInProgress, StateQualInProgress},
		{StateQualInProgress, StateAllDone},
	}, got)
}

func recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()

	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for hook")
	}

	var zero T

	return zero
}

func countPhase(ps []Phase, p Phase) int {
	n := 0
	for _, x := range ps {
		if x == p {
			n++
		}
	}

	return n
}

func otherPhase(p Phase) Phase {
	if p == PhaseQual {
		return PhaseQuant
	}

	return PhaseQual
}

func TestCoordinator_ResumeAfterRestart(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	items := tenAndFour()

	first := newTestCoordinator(t, items, store, nil)
	for range 3 {
		a, err := first.CurrentAssignment(ctx, "u")
		require.NoError(t, err)
		_, err = first.Submit(ctx, "u", a.Phase, a.Item.Key(), labelsFor(a.Phase))
		require.NoError(t, err)
	}
	want, err := first.CurrentAssignment(ctx, "u")
	require.NoError(t, err)
	require.NoError(t, first.Stop(ctx))

	second := newTestCoordinator(t, items, store, nil)
	got, err := second.CurrentAssignment(ctx, "u")
	require.NoError(t, err)
	require.Equal(t, want.Item, got.Item)
	require.Equal(t, 4, got.Position)
	require.Equal(t, 3, got.Completed)
}

func TestCoordinator_DedupesPhysicalDuplicates(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	c := newTestCoordinator(t, tenAndFour(), store, nil)

	pools, err := c.Pools("u")
	require.NoError(t, err)
	first := pools.Quant.Items[0]

	for i := range 3 {
		require.NoError(t, store.Append(ctx, CompletionRecord{
			UserID:     "u",
			Phase:      PhaseQuant,
			ItemID:     first.ID,
			Provenance: first.Provenance,
			Payload:    quantLabels("1"),
			RecordedAt: time.Date(2024, 1, 1, 0, 0, i, 0, time.UTC),
		}))
	}
	// Unrelated keys and other users are ignored.
	require.NoError(t, store.Append(ctx, CompletionRecord{UserID: "u", Phase: PhaseQuant, ItemID: "zzz", Provenance: ProvenanceSourceA}))

	cur, err := c.Progress(ctx, "u")
	require.NoError(t, err)
	require.Equal(t, 1, cur.CompletedCount(PhaseQuant))

	a, err := c.CurrentAssignment(ctx, "u")
	require.NoError(t, err)
	require.Equal(t, pools.Quant.Items[1], a.Item)
}

func TestCoordinator_StoreUnavailable(t *testing.T) {
	ctx := context.Background()

	t.Run("recovers within retry budget", func(t *testing.T) {
		store := memory.New()
		c := newTestCoordinator(t, tenAndFour(), store, nil)

		store.FailNext(ErrStoreUnavailable, ErrStoreUnavailable, ErrStoreUnavailable)
		a, err := c.CurrentAssignment(ctx, "u")
		require.NoError(t, err)
		require.False(t, a.Complete())

		_, lists := store.Calls()
		require.Equal(t, 4, lists)
	})

	t.Run("fails without guessing", func(t *testing.T) {
		store := memory.New()
		errs := make(chan error, 1)
		c := newTestCoordinator(t, tenAndFour(), store, nil, WithHooks(&Hooks{
			OnError: func(_ context.Context, err error) error {
				errs <- err
				return nil
			},
		}))

		store.FailNext(ErrStoreUnavailable, ErrStoreUnavailable, ErrStoreUnavailable, ErrStoreUnavailable)
		a, err := c.CurrentAssignment(ctx, "u")
		require.ErrorIs(t, err, ErrStoreUnavailable)
		require.Equal(t, Assignment{}, a)

		require.ErrorIs(t, recv(t, errs), ErrStoreUnavailable)
	})

	t.Run("auth errors are not retried", func(t *testing.T) {
		store := memory.New()
		c := newTestCoordinator(t, tenAndFour(), store, nil)

		store.FailNext(ErrStoreAuth)
		_, err := c.CurrentAssignment(ctx, "u")
		require.ErrorIs(t, err, ErrStoreAuth)

		_, lists := store.Calls()
		require.Equal(t, 1, lists)
	})

	t.Run("failed append stores nothing", func(t *testing.T) {
		store := memory.New()
		c := newTestCoordinator(t, tenAndFour(), store, func(cfg *Config) { cfg.ReadCacheTTL = time.Minute })

		// Warms the read cache so every queued failure hits an append.
		a, err := c.CurrentAssignment(ctx, "u")
		require.NoError(t, err)

		store.FailNext(ErrStoreUnavailable, ErrStoreUnavailable, ErrStoreUnavailable, ErrStoreUnavailable)
		outcome, err := c.Submit(ctx, "u", a.Phase, a.Item.Key(), labelsFor(a.Phase))
		require.ErrorIs(t, err, ErrStoreUnavailable)
		require.Equal(t, OutcomeNone, outcome)
		require.Equal(t, 0, store.Len("u"))
	})
}

func TestCoordinator_ReadCache(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	clock := newFakeClock()
	items := tenAndFour()
	withCache := func(cfg *Config) { cfg.ReadCacheTTL = time.Minute }

	reader := newTestCoordinator(t, items, store, withCache, WithClock(clock.Now))
	writer := newTestCoordinator(t, items, store, nil)

	before, err := reader.CurrentAssignment(ctx, "u")
	require.NoError(t, err)

	_, err = writer.Submit(ctx, "u", before.Phase, before.Item.Key(), labelsFor(before.Phase))
	require.NoError(t, err)

	// Another process's submit is invisible until the entry expires.
	stale, err := reader.CurrentAssignment(ctx, "u")
	require.NoError(t, err)
	require.Equal(t, before.Item, stale.Item)

	clock.Advance(2 * time.Minute)
	fresh, err := reader.CurrentAssignment(ctx, "u")
	require.NoError(t, err)
	require.NotEqual(t, before.Item, fresh.Item)

	// Own submits invalidate immediately.
	_, err = reader.Submit(ctx, "u", fresh.Phase, fresh.Item.Key(), labelsFor(fresh.Phase))
	require.NoError(t, err)
	next, err := reader.CurrentAssignment(ctx, "u")
	require.NoError(t, err)
	require.Equal(t, 3, next.Position)
}

func TestCoordinator_InsufficientOverlap(t *testing.T) {
	ctx := context.Background()
	type shortfall struct{ requested, available int }
	calls := make(chan shortfall, 2)
	logger := slogtest.NewTestLogger(t)

	c := newTestCoordinator(t, slogtest.PairedItems(1, 5, 5), memory.New(),
		func(cfg *Config) { cfg.QualTargetCount = 5 },
		WithLogger(logger),
		WithHooks(&Hooks{
			OnOverlapShortfall: func(_ context.Context, _ string, requested, available int) error {
				calls <- shortfall{requested, available}
				return nil
			},
		}),
	)

	pools, err := c.Pools("u")
	require.NoError(t, err)
	require.Equal(t, 2, pools.Qual.Len())
	require.Equal(t, 10, pools.Quant.Len())

	a, err := c.CurrentAssignment(ctx, "u")
	require.NoError(t, err)
	require.Equal(t, PhaseQuant, a.Phase)

	require.Equal(t, shortfall{5, 1}, recv(t, calls))
	require.True(t, logger.Contains("WARN", "insufficient overlap, qualitative pool reduced"))

	// Reported once per user per session.
	_, err = c.CurrentAssignment(ctx, "u")
	require.NoError(t, err)
	select {
	case <-calls:
		t.Fatal("shortfall reported twice")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCoordinator_DeterministicPools(t *testing.T) {
	items := tenAndFour()
	a := newTestCoordinator(t, items, memory.New(), nil)

	reversed := make([]Item, len(items))
	for i, it := range items {
		reversed[len(items)-1-i] = it
	}
	b := newTestCoordinator(t, reversed, memory.New(), nil)

	pa, err := a.Pools("annotator-7")
	require.NoError(t, err)
	pb, err := b.Pools("annotator-7")
	require.NoError(t, err)
	require.Equal(t, pa, pb)
}

func TestCoordinator_QualDisabled(t *testing.T) {
	ctx := context.Background()
	c := newTestCoordinator(t, tenAndFour(), memory.New(), func(cfg *Config) {
		*cfg = cfg.WithoutQualPhase()
	})

	pools, err := c.Pools("u")
	require.NoError(t, err)
	require.Equal(t, 0, pools.Qual.Len())
	require.Equal(t, 14, pools.Quant.Len())

	for range 14 {
		a, err := c.CurrentAssignment(ctx, "u")
		require.NoError(t, err)
		require.Equal(t, PhaseQuant, a.Phase)
		_, err = c.Submit(ctx, "u", a.Phase, a.Item.Key(), labelsFor(a.Phase))
		require.NoError(t, err)
	}

	a, err := c.CurrentAssignment(ctx, "u")
	require.NoError(t, err)
	require.True(t, a.Complete())
}

// assignmentMetrics records the phase labels of served assignments.
type assignmentMetrics struct {
	*metrics.NopMetrics

	mu     sync.Mutex
	phases []Phase
}

func (m *assignmentMetrics) RecordAssignment(phase Phase) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.phases = append(m.phases, phase)
}

func TestCoordinator_AssignmentMetricLabels(t *testing.T) {
	ctx := context.Background()
	rec := &assignmentMetrics{NopMetrics: metrics.NewNop()}
	c := newTestCoordinator(t, slogtest.PairedItems(1, 1, 0), memory.New(), func(cfg *Config) {
		cfg.QualTargetCount = 1
	}, WithMetrics(rec))

	for {
		a, err := c.CurrentAssignment(ctx, "u")
		require.NoError(t, err)
		if a.Complete() {
			break
		}
		_, err = c.Submit(ctx, "u", a.Phase, a.Item.Key(), labelsFor(a.Phase))
		require.NoError(t, err)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Equal(t, []Phase{PhaseQuant, PhaseQual, PhaseQual, AssignmentDone}, rec.phases)
	require.NotContains(t, rec.phases, Phase(""))
}

func TestCoordinator_ConcurrentUsers(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	c := newTestCoordinator(t, tenAndFour(), store, nil)

	users := []string{"u1", "u2", "u3", "u4"}
	var wg sync.WaitGroup
	errs := make(chan error, len(users))
	for _, u := range users {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			for {
				a, err := c.CurrentAssignment(ctx, userID)
				if err != nil {
					errs <- err
					return
				}
				if a.Complete() {
					return
				}
				if _, err := c.Submit(ctx, userID, a.Phase, a.Item.Key(), labelsFor(a.Phase)); err != nil {
					errs <- err
					return
				}
			}
		}(u)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	for _, u := range users {
		require.Equal(t, 14, store.Len(u))
	}
}
