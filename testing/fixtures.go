package testing

import (
	"fmt"

	"github.com/Debodeep94/SLOG-Eval/types"
)

// PairedItems builds a deterministic two-provenance dataset.
//
// IDs "s0".."s{shared-1}" exist under both provenances, "a0".. only under
// source A and "b0".. only under source B.
//
// Parameters:
//   - shared: Number of IDs present in both provenances
//   - onlyA: Number of IDs present only in source A
//   - onlyB: Number of IDs present only in source B
//
// Returns:
//   - []types.Item: Items in creation order
func PairedItems(shared, onlyA, onlyB int) []types.Item {
	items := make([]types.Item, 0, 2*shared+onlyA+onlyB)
	for i := range shared {
		id := fmt.Sprintf("s%d", i)
		items = append(items,
			types.Item{ID: id, Text: "source A report " + id, Provenance: types.ProvenanceSourceA},
			types.Item{ID: id, Text: "source B report " + id, Provenance: types.ProvenanceSourceB},
		)
	}
	for i := range onlyA {
		id := fmt.Sprintf("a%d", i)
		items = append(items, types.Item{ID: id, Text: "source A report " + id, Provenance: types.ProvenanceSourceA})
	}
	for i := range onlyB {
		id := fmt.Sprintf("b%d", i)
		items = append(items, types.Item{ID: id, Text: "source B report " + id, Provenance: types.ProvenanceSourceB})
	}

	return items
}
