package types

// Pool is an ordered sequence of items for one phase of one user.
//
// The order is the canonical order fixed at partition time; "next item" always
// means the first item in this order that is not completed.
type Pool struct {
	Phase Phase
	Items []Item
}

// Len returns the number of items in the pool.
func (p Pool) Len() int {
	return len(p.Items)
}

// Index returns the position of key in the pool, or -1 when absent.
func (p Pool) Index(key ItemKey) int {
	for i, it := range p.Items {
		if it.Key() == key {
			return i
		}
	}

	return -1
}

// Contains reports whether key is a member of the pool.
func (p Pool) Contains(key ItemKey) bool {
	return p.Index(key) >= 0
}

// IDs returns the distinct item IDs in pool order.
func (p Pool) IDs() []string {
	seen := make(map[string]struct{}, len(p.Items))
	ids := make([]string, 0, len(p.Items))
	for _, it := range p.Items {
		if _, ok := seen[it.ID]; ok {
			continue
		}
		seen[it.ID] = struct{}{}
		ids = append(ids, it.ID)
	}

	return ids
}

// Pools holds the two disjoint pools derived for a user.
type Pools struct {
	UserID string
	Quant  Pool
	Qual   Pool

	// PivotKeys are the shared item IDs selected for the qualitative pass, in pivot order.
	PivotKeys []string

	// RequestedPivots is the qualitative target the partitioner was asked for.
	// len(PivotKeys) < RequestedPivots means the overlap was insufficient.
	RequestedPivots int
}

// Pool returns the pool for the given phase.
func (p Pools) Pool(phase Phase) Pool {
	if phase == PhaseQual {
		return p.Qual
	}

	return p.Quant
}

// Lookup finds which pool holds key.
//
// Returns:
//   - Item: The matching item (zero value if absent)
//   - Phase: Phase whose pool contains the item
//   - bool: false if key is in neither pool
func (p Pools) Lookup(key ItemKey) (Item, Phase, bool) {
	if i := p.Quant.Index(key); i >= 0 {
		return p.Quant.Items[i], PhaseQuant, true
	}
	if i := p.Qual.Index(key); i >= 0 {
		return p.Qual.Items[i], PhaseQual, true
	}

	return Item{}, "", false
}
