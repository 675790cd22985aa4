// Package progress derives a user's position from persisted completion records.
//
// Everything here is a pure function of (pools, records). There is no counter
// and no stored cursor: the next item is always the first item in canonical
// pool order whose key has no record, which makes resume after a restart,
// duplicate appends and out-of-order backend writes all come out the same.
package progress

import (
	"github.com/Debodeep94/SLOG-Eval/types"
)

// Derive builds the progress cursor for pools.UserID from raw records.
//
// Records for other users, unknown items, or a phase that does not match the
// pool holding the item are ignored. Duplicates collapse by key; the record with
// the latest RecordedAt is kept in Latest.
//
// Parameters:
//   - pools: The user's partitioned pools
//   - records: Records as returned by the store, any order, possibly duplicated
//
// Returns:
//   - types.ProgressCursor: Derived cursor
func Derive(pools types.Pools, records []types.CompletionRecord) types.ProgressCursor {
	quantKeys := keySet(pools.Quant)
	qualKeys := keySet(pools.Qual)

	cur := types.ProgressCursor{
		UserID:         pools.UserID,
		CompletedQuant: make(map[types.ItemKey]struct{}),
		CompletedQual:  make(map[types.ItemKey]struct{}),
		Latest:         make(map[types.ItemKey]types.CompletionRecord),
		QuantTotal:     len(quantKeys),
		QualTotal:      len(qualKeys),
	}

	for _, r := range records {
		if r.UserID != pools.UserID {
			continue
		}

		key := r.Key()
		switch r.Phase {
		case types.PhaseQuant:
			if _, ok := quantKeys[key]; !ok {
				continue
			}
			cur.CompletedQuant[key] = struct{}{}
		case types.PhaseQual:
			if _, ok := qualKeys[key]; !ok {
				continue
			}
			cur.CompletedQual[key] = struct{}{}
		default:
			continue
		}

		if prev, ok := cur.Latest[key]; !ok || r.RecordedAt.After(prev.RecordedAt) {
			cur.Latest[key] = r
		}
	}

	cur.State = stateOf(cur)

	return cur
}

func stateOf(cur types.ProgressCursor) types.State {
	switch {
	case len(cur.CompletedQuant) < cur.QuantTotal:
		return types.StateQuantInProgress
	case len(cur.CompletedQual) < cur.QualTotal:
		return types.StateQualInProgress
	default:
		return types.StateAllDone
	}
}

func keySet(p types.Pool) map[types.ItemKey]struct{} {
	set := make(map[types.ItemKey]struct{}, p.Len())
	for _, it := range p.Items {
		set[it.Key()] = struct{}{}
	}

	return set
}
