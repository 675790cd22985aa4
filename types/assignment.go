package types

// Assignment is the answer to "what should this user label now".
//
// When State is StateAllDone the assignment carries no item and Complete reports
// true; this is the terminal PhaseComplete result, not an error.
type Assignment struct {
	UserID string
	State  State
	Phase  Phase
	Item   Item

	// Position is the 1-based index of Item in its pool's canonical order.
	Position int

	// Total is the size of the active pool; Completed counts its finished items.
	Total     int
	Completed int

	// Revisit is true for an explicit jump to an already completed item.
	Revisit bool

	// Previous is the latest stored record for Item when Revisit is true.
	Previous *CompletionRecord
}

// Complete reports whether the user has finished both phases.
func (a Assignment) Complete() bool {
	return a.State == StateAllDone
}
