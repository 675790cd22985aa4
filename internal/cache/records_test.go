package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Debodeep94/SLOG-Eval/types"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func recs(ids ...string) []types.CompletionRecord {
	out := make([]types.CompletionRecord, len(ids))
	for i, id := range ids {
		out[i] = types.CompletionRecord{UserID: "u1", Phase: types.PhaseQuant, ItemID: id, Provenance: types.ProvenanceSourceA}
	}
	return out
}

func TestRecords_HitAndExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	c := New(2*time.Second, clock.Now)

	_, gen, ok := c.Get("u1")
	require.False(t, ok)

	c.Put("u1", gen, recs("1", "2"))

	got, _, ok := c.Get("u1")
	require.True(t, ok)
	require.Len(t, got, 2)

	clock.Advance(2 * time.Second)
	_, _, ok = c.Get("u1")
	require.False(t, ok, "entry should expire at ttl")
}

func TestRecords_InvalidateFencesStalePut(t *testing.T) {
	c := New(time.Minute, nil)

	_, gen, ok := c.Get("u1")
	require.False(t, ok)

	// A submit lands while the read is in flight.
	c.Invalidate("u1")
	c.Put("u1", gen, recs("1"))

	_, _, ok = c.Get("u1")
	require.False(t, ok, "stale put must be dropped")

	_, gen, _ = c.Get("u1")
	c.Put("u1", gen, recs("1", "2"))
	got, _, ok := c.Get("u1")
	require.True(t, ok)
	require.Len(t, got, 2)
}

func TestRecords_ReturnsCopies(t *testing.T) {
	c := New(time.Minute, nil)
	_, gen, _ := c.Get("u1")
	in := recs("1")
	c.Put("u1", gen, in)
	in[0].ItemID = "mutated"

	got, _, ok := c.Get("u1")
	require.True(t, ok)
	require.Equal(t, "1", got[0].ItemID)

	got[0].ItemID = "mutated-again"
	again, _, _ := c.Get("u1")
	require.Equal(t, "1", again[0].ItemID)
}

func TestRecords_Disabled(t *testing.T) {
	c := New(0, nil)
	require.False(t, c.Enabled())

	_, gen, _ := c.Get("u1")
	c.Put("u1", gen, recs("1"))
	_, _, ok := c.Get("u1")
	require.False(t, ok)
}

func TestRecords_UsersIsolatedAndClear(t *testing.T) {
	c := New(time.Minute, nil)
	for _, u := range []string{"u1", "u2"} {
		_, gen, _ := c.Get(u)
		c.Put(u, gen, recs("1"))
	}

	c.Invalidate("u1")
	_, _, ok := c.Get("u1")
	require.False(t, ok)
	_, _, ok = c.Get("u2")
	require.True(t, ok)

	c.Clear()
	_, _, ok = c.Get("u2")
	require.False(t, ok)
}
