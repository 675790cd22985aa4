package types

import "slices"

// Dimension is one label the annotator must provide for an item.
type Dimension struct {
	// Name is the payload key.
	Name string `yaml:"name"`

	// Allowed restricts the value set. Empty means any non-blank value.
	Allowed []string `yaml:"allowed,omitempty"`
}

// Accepts reports whether value satisfies the dimension.
func (d Dimension) Accepts(value string) bool {
	if value == "" {
		return false
	}
	if len(d.Allowed) == 0 {
		return true
	}

	return slices.Contains(d.Allowed, value)
}

// LabelSchema lists the required dimensions per phase.
type LabelSchema struct {
	Quant []Dimension
	Qual  []Dimension
}

// Dimensions returns the required dimensions for phase.
func (s LabelSchema) Dimensions(phase Phase) []Dimension {
	if phase == PhaseQual {
		return s.Qual
	}

	return s.Quant
}
