// Package cache holds the short-lived per-user read cache in front of a
// progress store.
package cache

import (
	"slices"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/Debodeep94/SLOG-Eval/types"
)

// Records caches ListCompleted results per user for a fixed TTL.
//
// Every user entry carries a generation number. Invalidate bumps it, and a Put
// tagged with an older generation is dropped, so a read that raced with a
// submit can never re-install pre-submit data.
type Records struct {
	ttl     time.Duration
	now     func() time.Time
	entries *xsync.Map[string, *entry]
}

type entry struct {
	mu       sync.Mutex
	gen      uint64
	records  []types.CompletionRecord
	storedAt time.Time
	valid    bool
}

// New creates a record cache.
//
// Parameters:
//   - ttl: Entry lifetime; <= 0 disables caching
//   - now: Clock (time.Now if nil)
//
// Returns:
//   - *Records: Cache instance, safe for concurrent use
func New(ttl time.Duration, now func() time.Time) *Records {
	if now == nil {
		now = time.Now
	}

	return &Records{
		ttl:     ttl,
		now:     now,
		entries: xsync.NewMap[string, *entry](),
	}
}

// Enabled reports whether the cache stores anything.
func (c *Records) Enabled() bool {
	return c.ttl > 0
}

func (c *Records) entry(userID string) *entry {
	e, _ := c.entries.LoadOrStore(userID, &entry{})

	return e
}

// Get returns a fresh cached copy for userID and the generation to tag a
// subsequent Put with.
//
// Returns:
//   - []types.CompletionRecord: Cached records (nil on miss)
//   - uint64: Current generation
//   - bool: true on a hit
func (c *Records) Get(userID string) ([]types.CompletionRecord, uint64, bool) {
	e := c.entry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()

	if !c.Enabled() || !e.valid || c.now().Sub(e.storedAt) >= c.ttl {
		return nil, e.gen, false
	}

	return slices.Clone(e.records), e.gen, true
}

// Put stores records for userID if gen is still current.
func (c *Records) Put(userID string, gen uint64, records []types.CompletionRecord) {
	if !c.Enabled() {
		return
	}

	e := c.entry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.gen != gen {
		return
	}
	e.records = slices.Clone(records)
	e.storedAt = c.now()
	e.valid = true
}

// Invalidate drops the entry for userID and fences out in-flight Puts.
func (c *Records) Invalidate(userID string) {
	e := c.entry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()

	e.gen++
	e.records = nil
	e.valid = false
}

// Clear drops every entry.
func (c *Records) Clear() {
	c.entries.Range(func(userID string, _ *entry) bool {
		c.Invalidate(userID)
		return true
	})
}
