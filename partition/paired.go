package partition

import (
	"slices"

	"github.com/Debodeep94/SLOG-Eval/internal/hash"
	"github.com/Debodeep94/SLOG-Eval/types"
)

// DefaultQualTarget is the number of pivot keys selected when none is configured.
const DefaultQualTarget = 5

// Paired implements pivot-key partitioning.
type Paired struct {
	qualTarget int
	seed       types.SeedFunc
}

var _ types.Partitioner = (*Paired)(nil)

// PairedOption configures a Paired partitioner.
type PairedOption func(*Paired)

// NewPaired creates a new pivot-key partitioner.
//
// Parameters:
//   - opts: Optional configuration (WithQualTarget, WithSeedFunc)
//
// Returns:
//   - *Paired: Initialized partitioner
//
// Example:
//
//	p := partition.NewPaired(
//	    partition.WithQualTarget(3),
//	)
//	pools, err := p.Partition(items, "annotator-7")
func NewPaired(opts ...PairedOption) *Paired {
	p := &Paired{
		qualTarget: DefaultQualTarget,
		seed:       hash.UserSeed(""),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// WithQualTarget sets the number of pivot keys for the qualitative pool.
//
// Each pivot contributes one item per provenance. Zero or negative disables the
// qualitative phase.
func WithQualTarget(n int) PairedOption {
	return func(p *Paired) {
		p.qualTarget = n
	}
}

// WithSeedFunc replaces the per-user seed function.
//
// Tests use this to pin a seed; deployments normally keep the default XXH3 seed
// or pass hash.UserSeed(salt).
func WithSeedFunc(fn types.SeedFunc) PairedOption {
	return func(p *Paired) {
		if fn != nil {
			p.seed = fn
		}
	}
}

// QualTarget returns the configured pivot count.
func (p *Paired) QualTarget() int {
	return p.qualTarget
}

// Partition derives userID's pools from items.
//
// The algorithm:
//  1. Drop duplicate (provenance, id) items, keeping the first occurrence
//  2. Collect the IDs present under both provenances, sorted
//  3. Shuffle them with the user's pivot stream and take the first qualTarget
//  4. Qualitative pool: each pivot's variants, pivot order then provenance order
//  5. Quantitative pool: all other items sorted by key, shuffled with the user's quant stream
//
// Sorting before shuffling makes the result independent of input order.
//
// Parameters:
//   - items: Full item set
//   - userID: User identity
//
// Returns:
//   - types.Pools: Disjoint pools
//   - error: *types.InsufficientOverlapError when fewer than qualTarget shared IDs
//     exist; the returned pools then use every shared ID and remain valid
func (p *Paired) Partition(items []types.Item, userID string) (types.Pools, error) {
	uniq := dedupe(items)
	shared := sharedIDs(uniq)
	seed := p.seed(userID)

	target := max(p.qualTarget, 0)
	pivots := slices.Clone(shared)
	hash.Shuffle(pivots, seed, hash.StreamPivots)
	if len(pivots) > target {
		pivots = pivots[:target]
	}

	pivotSet := make(map[string]struct{}, len(pivots))
	for _, id := range pivots {
		pivotSet[id] = struct{}{}
	}

	variants := make(map[string][]types.Item, len(pivots))
	quant := make([]types.Item, 0, len(uniq))
	for _, it := range uniq {
		if _, ok := pivotSet[it.ID]; ok {
			variants[it.ID] = append(variants[it.ID], it)
			continue
		}
		quant = append(quant, it)
	}

	qual := make([]types.Item, 0, 2*len(pivots))
	for _, id := range pivots {
		vs := variants[id]
		slices.SortFunc(vs, func(a, b types.Item) int { return a.Key().Compare(b.Key()) })
		qual = append(qual, vs...)
	}

	slices.SortFunc(quant, func(a, b types.Item) int { return a.Key().Compare(b.Key()) })
	hash.Shuffle(quant, seed, hash.StreamQuant)

	pools := types.Pools{
		UserID:          userID,
		Quant:           types.Pool{Phase: types.PhaseQuant, Items: quant},
		Qual:            types.Pool{Phase: types.PhaseQual, Items: qual},
		PivotKeys:       pivots,
		RequestedPivots: target,
	}

	if len(shared) < target {
		return pools, &types.InsufficientOverlapError{
			UserID:    userID,
			Requested: target,
			Available: len(shared),
		}
	}

	return pools, nil
}

func dedupe(items []types.Item) []types.Item {
	seen := make(map[types.ItemKey]struct{}, len(items))
	out := make([]types.Item, 0, len(items))
	for _, it := range items {
		k := it.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, it)
	}

	return out
}

// sharedIDs returns the sorted IDs present under every known provenance.
func sharedIDs(items []types.Item) []string {
	provs := make(map[string]map[types.Provenance]struct{})
	for _, it := range items {
		if !it.Provenance.Valid() {
			continue
		}
		set, ok := provs[it.ID]
		if !ok {
			set = make(map[types.Provenance]struct{}, len(types.Provenances))
			provs[it.ID] = set
		}
		set[it.Provenance] = struct{}{}
	}

	shared := make([]string, 0, len(provs))
	for id, set := range provs {
		if len(set) == len(types.Provenances) {
			shared = append(shared, id)
		}
	}
	slices.Sort(shared)

	return shared
}
