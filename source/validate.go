package source

import (
	"fmt"
	"strings"

	"github.com/Debodeep94/SLOG-Eval/types"
)

// Validate checks the fields every item must carry.
//
// Rows are reported 1-based in slice order.
//
// Parameters:
//   - name: Source name used in error messages
//   - items: Items to check
//
// Returns:
//   - error: *types.DataError for the first offending item, nil if all are valid
func Validate(name string, items []types.Item) error {
	seen := make(map[types.ItemKey]int, len(items))
	for i, it := range items {
		row := i + 1
		switch {
		case strings.TrimSpace(it.ID) == "":
			return &types.DataError{Source: name, Row: row, Field: "item_id", Reason: "required"}
		case strings.TrimSpace(it.Text) == "":
			return &types.DataError{Source: name, Row: row, Field: "text", Reason: "required"}
		case !it.Provenance.Valid():
			return &types.DataError{Source: name, Row: row, Field: "provenance", Reason: "unknown provenance " + string(it.Provenance)}
		}

		if prev, dup := seen[it.Key()]; dup {
			return &types.DataError{Source: name, Row: row, Field: "item_id",
				Reason: fmt.Sprintf("duplicate of row %d (%s)", prev, it.Key())}
		}
		seen[it.Key()] = row
	}

	return nil
}
