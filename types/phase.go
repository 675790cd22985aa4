package types

import (
	"fmt"
	"strings"
)

// Phase is one of the two sequential labeling stages.
type Phase string

const (
	// PhaseQuant is the bulk quantitative pass (symptom scoring).
	PhaseQuant Phase = "quant"

	// PhaseQual is the small qualitative pass (free-text feedback).
	PhaseQual Phase = "qual"
)

// ParsePhase converts a raw phase name into a Phase.
func ParsePhase(s string) (Phase, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "quant", "quantitative":
		return PhaseQuant, nil
	case "qual", "qualitative":
		return PhaseQual, nil
	default:
		return "", fmt.Errorf("unknown phase %q", s)
	}
}

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool {
	return p == PhaseQuant || p == PhaseQual
}
