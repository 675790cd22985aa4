// Package source provides built-in item source implementations.
//
// Item sources load the raw labeling items. The package includes:
//
//   - Static: Fixed list of items
//   - CSV: Items read from one or more CSV files
//
// Custom sources can be implemented by satisfying the types.ItemSource interface.
package source
