package types

// State is the per-user position in the two-phase workflow.
//
// States only move forward:
//
//	StateQuantInProgress → StateQualInProgress → StateAllDone
//
// The state is recomputed from persisted records on every call and is never
// stored as truth.
type State int

const (
	// StateQuantInProgress means at least one quantitative item is incomplete.
	StateQuantInProgress State = iota

	// StateQualInProgress means the quantitative pool is complete and at least
	// one qualitative item is incomplete.
	StateQualInProgress

	// StateAllDone means both pools are complete.
	StateAllDone
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateQuantInProgress:
		return "QuantInProgress"
	case StateQualInProgress:
		return "QualInProgress"
	case StateAllDone:
		return "AllDone"
	default:
		return "Unknown"
	}
}

// Phase returns the phase that is active in state s, or "" once all work is done.
func (s State) Phase() Phase {
	switch s {
	case StateQuantInProgress:
		return PhaseQuant
	case StateQualInProgress:
		return PhaseQual
	default:
		return ""
	}
}
