package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Debodeep94/SLOG-Eval/types"
)

// Accepted header names per item field, matched case-insensitively.
var csvColumns = map[string][]string{
	"item_id":    {"item_id", "id", "report_id"},
	"text":       {"text", "report", "report_text"},
	"image_ref":  {"image_ref", "image", "image_url"},
	"provenance": {"provenance", "source"},
}

// CSVFile names one CSV input.
type CSVFile struct {
	// Path is the file to read.
	Path string `yaml:"path"`

	// Provenance tags rows that have no provenance column (or an empty cell).
	Provenance types.Provenance `yaml:"provenance"`
}

// CSV implements an item source reading CSV files with a header row.
type CSV struct {
	files []CSVFile
}

var _ types.ItemSource = (*CSV)(nil)

// NewCSV creates a CSV item source.
//
// Files are read in order on every LoadItems call. A file either has a
// provenance column or must carry a default Provenance.
//
// Parameters:
//   - files: CSV inputs
//
// Returns:
//   - *CSV: Initialized source
//
// Example:
//
//	src := source.NewCSV(
//	    source.CSVFile{Path: "reports_a.csv", Provenance: types.ProvenanceSourceA},
//	    source.CSVFile{Path: "reports_b.csv", Provenance: types.ProvenanceSourceB},
//	)
func NewCSV(files ...CSVFile) *CSV {
	return &CSV{files: files}
}

// LoadItems reads every configured file.
//
// Returns:
//   - []types.Item: Items from all files, in file then row order
//   - error: *types.DataError for bad rows or duplicates across files, or a
//     wrapped ErrDataError when a file cannot be read
func (c *CSV) LoadItems(ctx context.Context) ([]types.Item, error) {
	var all []types.Item
	for _, f := range c.files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		items, err := readCSVFile(f)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
	}

	if err := Validate("csv", all); err != nil {
		return nil, err
	}

	return all, nil
}

func readCSVFile(f CSVFile) ([]types.Item, error) {
	fh, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", types.ErrDataError, f.Path, err)
	}
	defer fh.Close()

	return ParseCSV(f.Path, fh, f.Provenance)
}

// ParseCSV parses items from r.
//
// Parameters:
//   - name: Name used in error messages
//   - r: CSV input with a header row
//   - defaultProv: Provenance for rows without one ("" to require the column)
//
// Returns:
//   - []types.Item: Parsed items
//   - error: *types.DataError describing the first bad row
func ParseCSV(name string, r io.Reader, defaultProv types.Provenance) ([]types.Item, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &types.DataError{Source: name, Row: 1, Reason: "empty file"}
	}
	if err != nil {
		return nil, &types.DataError{Source: name, Row: 1, Reason: err.Error()}
	}

	cols := mapColumns(header)
	for _, required := range []string{"item_id", "text"} {
		if _, ok := cols[required]; !ok {
			return nil, &types.DataError{Source: name, Row: 1, Field: required, Reason: "missing column"}
		}
	}
	if _, ok := cols["provenance"]; !ok && defaultProv == "" {
		return nil, &types.DataError{Source: name, Row: 1, Field: "provenance", Reason: "missing column and no default"}
	}

	var items []types.Item
	for row := 2; ; row++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &types.DataError{Source: name, Row: row, Reason: err.Error()}
		}
		if blank(rec) {
			continue
		}

		it := types.Item{
			ID:         cell(rec, cols, "item_id"),
			Text:       cell(rec, cols, "text"),
			ImageRef:   cell(rec, cols, "image_ref"),
			Provenance: defaultProv,
		}
		if it.ID == "" {
			return nil, &types.DataError{Source: name, Row: row, Field: "item_id", Reason: "required"}
		}
		if it.Text == "" {
			return nil, &types.DataError{Source: name, Row: row, Field: "text", Reason: "required"}
		}
		if raw := cell(rec, cols, "provenance"); raw != "" {
			p, perr := types.ParseProvenance(raw)
			if perr != nil {
				return nil, &types.DataError{Source: name, Row: row, Field: "provenance", Reason: perr.Error()}
			}
			it.Provenance = p
		}
		if it.Provenance == "" {
			return nil, &types.DataError{Source: name, Row: row, Field: "provenance", Reason: "required"}
		}

		items = append(items, it)
	}

	return items, nil
}

func mapColumns(header []string) map[string]int {
	cols := make(map[string]int, len(csvColumns))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		for field, aliases := range csvColumns {
			if _, taken := cols[field]; taken {
				continue
			}
			for _, a := range aliases {
				if h == a {
					cols[field] = i
				}
			}
		}
	}

	return cols
}

func cell(rec []string, cols map[string]int, field string) string {
	i, ok := cols[field]
	if !ok || i >= len(rec) {
		return ""
	}

	return strings.TrimSpace(rec[i])
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}

	return true
}
