package progress

import (
	"github.com/Debodeep94/SLOG-Eval/types"
)

// Next returns the assignment implied by cur.
//
// Quantitative work always comes first; the qualitative pool is only consulted
// once every quantitative key is complete.
//
// Parameters:
//   - pools: The user's pools
//   - cur: Cursor derived from the same pools
//
// Returns:
//   - types.Assignment: Next item, or a Complete() assignment when nothing is left
func Next(pools types.Pools, cur types.ProgressCursor) types.Assignment {
	a := types.Assignment{UserID: pools.UserID, State: cur.State}

	phase := cur.State.Phase()
	if phase == "" {
		return a
	}

	pool := pools.Pool(phase)
	a.Phase = phase
	a.Total = pool.Len()
	a.Completed = cur.CompletedCount(phase)

	for i, it := range pool.Items {
		if cur.Completed(phase, it.Key()) {
			continue
		}
		a.Item = it
		a.Position = i + 1

		return a
	}

	// Unreachable while State is derived from the same pools.
	a.State = types.StateAllDone
	a.Phase = ""

	return a
}

// At returns the assignment for a specific key without checking whether the
// user may open it.
//
// Returns:
//   - types.Assignment: Assignment for key
//   - bool: false when key is in neither pool
func At(pools types.Pools, cur types.ProgressCursor, key types.ItemKey) (types.Assignment, bool) {
	item, phase, ok := pools.Lookup(key)
	if !ok {
		return types.Assignment{}, false
	}

	pool := pools.Pool(phase)
	a := types.Assignment{
		UserID:    pools.UserID,
		State:     cur.State,
		Phase:     phase,
		Item:      item,
		Position:  pool.Index(key) + 1,
		Total:     pool.Len(),
		Completed: cur.CompletedCount(phase),
	}
	if rec, done := cur.Latest[key]; done && cur.Completed(phase, key) {
		a.Revisit = true
		a.Previous = &rec
	}

	return a, true
}
