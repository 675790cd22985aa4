package types

import (
	"fmt"
	"strings"
)

// Provenance tags the source dataset an item was loaded from.
type Provenance string

const (
	// ProvenanceSourceA is the first report source.
	ProvenanceSourceA Provenance = "source_a"

	// ProvenanceSourceB is the second report source.
	ProvenanceSourceB Provenance = "source_b"
)

// Provenances lists the known provenances in canonical order.
var Provenances = []Provenance{ProvenanceSourceA, ProvenanceSourceB}

// ParseProvenance converts a user-supplied tag into a Provenance.
//
// Accepts the canonical values plus the short aliases "a"/"b" and "sourcea"/"sourceb"
// in any case.
//
// Parameters:
//   - s: Raw provenance tag
//
// Returns:
//   - Provenance: Canonical provenance
//   - error: Non-nil when the tag is not recognized
func ParseProvenance(s string) (Provenance, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "source_a", "sourcea", "a":
		return ProvenanceSourceA, nil
	case "source_b", "sourceb", "b":
		return ProvenanceSourceB, nil
	default:
		return "", fmt.Errorf("unknown provenance %q", s)
	}
}

// Valid reports whether p is one of the known provenances.
func (p Provenance) Valid() bool {
	return p == ProvenanceSourceA || p == ProvenanceSourceB
}

// rank orders provenances for deterministic tie-breaking.
func (p Provenance) rank() int {
	switch p {
	case ProvenanceSourceA:
		return 0
	case ProvenanceSourceB:
		return 1
	default:
		return 2
	}
}

// Item is a single labeling unit: one patient report with an optional image.
//
// Items are immutable once loaded. ID is unique within its provenance only; the
// same ID under both provenances denotes the same case from two sources.
type Item struct {
	ID         string     `json:"item_id"`
	Text       string     `json:"text"`
	ImageRef   string     `json:"image_ref,omitempty"`
	Provenance Provenance `json:"provenance"`
}

// Key returns the identity used for all completion bookkeeping.
func (i Item) Key() ItemKey {
	return ItemKey{Provenance: i.Provenance, ID: i.ID}
}

// ItemKey identifies an item across provenances.
type ItemKey struct {
	Provenance Provenance
	ID         string
}

// String returns "<provenance>/<id>".
func (k ItemKey) String() string {
	return string(k.Provenance) + "/" + k.ID
}

// Compare orders keys by ID, then provenance.
//
// Returns:
//   - int: -1 if k < o, 0 if equal, +1 if k > o
func (k ItemKey) Compare(o ItemKey) int {
	if k.ID != o.ID {
		if k.ID < o.ID {
			return -1
		}

		return 1
	}

	return k.Provenance.rank() - o.Provenance.rank()
}

// ParseItemKey parses the "<provenance>/<id>" form produced by ItemKey.String.
//
// Parameters:
//   - s: Encoded key
//
// Returns:
//   - ItemKey: Parsed key
//   - error: Non-nil when the separator is missing or the provenance is unknown
func ParseItemKey(s string) (ItemKey, error) {
	prov, id, ok := strings.Cut(s, "/")
	if !ok || id == "" {
		return ItemKey{}, fmt.Errorf("item key %q: expected <provenance>/<id>", s)
	}

	p, err := ParseProvenance(prov)
	if err != nil {
		return ItemKey{}, fmt.Errorf("item key %q: %w", s, err)
	}

	return ItemKey{Provenance: p, ID: id}, nil
}
