package source

import (
	"context"
	"sync"

	"github.com/Debodeep94/SLOG-Eval/types"
)

// Static implements an item source with a fixed list of items.
type Static struct {
	mu    sync.RWMutex
	items []types.Item
}

var _ types.ItemSource = (*Static)(nil)

// NewStatic creates a new static item source.
//
// Useful for testing and for deployments where the item set is compiled in.
//
// Parameters:
//   - items: Fixed list of items
//
// Returns:
//   - *Static: Initialized static source
//
// Example:
//
//	items := []types.Item{
//	    {ID: "17", Text: "No acute findings.", Provenance: types.ProvenanceSourceA},
//	    {ID: "17", Text: "Clear lungs.", Provenance: types.ProvenanceSourceB},
//	}
//	src := source.NewStatic(items)
func NewStatic(items []types.Item) *Static {
	return &Static{
		items: items,
	}
}

// LoadItems returns a copy of the static list after validating it.
//
// Returns:
//   - []types.Item: The fixed list of items
//   - error: *types.DataError if an item is missing a required field
func (s *Static) LoadItems(_ context.Context) ([]types.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := Validate("static", s.items); err != nil {
		return nil, err
	}

	result := make([]types.Item, len(s.items))
	copy(result, s.items)

	return result, nil
}

// Update replaces the item list.
func (s *Static) Update(items []types.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make([]types.Item, len(items))
	copy(s.items, items)
}
