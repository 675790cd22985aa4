package types

// ProgressCursor is the derived view of a user's persisted completions.
//
// It is computed from the Progress Store on demand and never stored.
type ProgressCursor struct {
	UserID string
	State  State

	// CompletedQuant and CompletedQual hold the completed keys that belong to the
	// user's quantitative and qualitative pools respectively.
	CompletedQuant map[ItemKey]struct{}
	CompletedQual  map[ItemKey]struct{}

	// Latest holds the most recent record for every completed key.
	Latest map[ItemKey]CompletionRecord

	QuantTotal int
	QualTotal  int
}

// Completed reports whether key has been completed in phase.
func (c ProgressCursor) Completed(phase Phase, key ItemKey) bool {
	set := c.CompletedQuant
	if phase == PhaseQual {
		set = c.CompletedQual
	}
	_, ok := set[key]

	return ok
}

// CompletedCount returns the number of completed items in phase.
func (c ProgressCursor) CompletedCount(phase Phase) int {
	if phase == PhaseQual {
		return len(c.CompletedQual)
	}

	return len(c.CompletedQuant)
}
