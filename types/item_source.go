package types

import "context"

// ItemSource supplies the raw labeling items.
//
// Implementations:
//   - source.Static: fixed list
//   - source.CSV: one or more CSV files
type ItemSource interface {
	// LoadItems returns every item, each tagged with its provenance.
	//
	// Implementations should return the same items for the same backing data.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//
	// Returns:
	//   - []Item: Loaded items
	//   - error: ErrDataError (wrapped or *DataError) for missing required fields
	LoadItems(ctx context.Context) ([]Item, error)
}
