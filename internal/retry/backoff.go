// Package retry runs progress store calls with jittered exponential backoff.
package retry

import (
	rand "math/rand/v2"
	"time"
)

const defaultBaseDelay = 50 * time.Millisecond

// backoff yields the waits between attempts of one Do call.
//
// The first wait is the base delay. Each later wait is drawn uniformly from
// [base, prev*multiplier) and clamped to the cap, so waits grow on average
// while concurrent annotators retrying the same store spread out.
type backoff struct {
	base, limit time.Duration
	mult        float64
	prev        time.Duration
	rng         *rand.Rand
}

func newBackoff(p Policy) *backoff {
	b := &backoff{base: p.BaseDelay, limit: p.MaxDelay, mult: p.Multiplier}
	if b.base <= 0 {
		b.base = defaultBaseDelay
	}
	if b.mult < 1 {
		b.mult = 1
	}

	seed := uint64(p.Seed) //nolint:gosec // seed bits only
	if p.Seed == 0 {
		seed = rand.Uint64()
	}
	b.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) //nolint:gosec // non-crypto jitter

	return b
}

func (b *backoff) next() time.Duration {
	d := b.base
	if b.prev > 0 {
		if span := time.Duration(float64(b.prev)*b.mult) - b.base; span > 0 {
			d += time.Duration(b.rng.Int64N(int64(span)))
		}
	}
	if b.limit > 0 && d > b.limit {
		d = b.limit
	}
	b.prev = d

	return d
}
