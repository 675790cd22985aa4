package types

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the coordinator.
//
// These errors provide type-safe error checking using errors.Is() and errors.As().
// Structured errors below unwrap to one of them. External errors are wrapped with
// context using fmt.Errorf("%s: %w", msg, err).

// Coordinator errors - Public API errors returned by the Coordinator.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrItemSourceRequired is returned when the item source is nil.
	ErrItemSourceRequired = errors.New("item source is required")

	// ErrProgressStoreRequired is returned when the progress store is nil.
	ErrProgressStoreRequired = errors.New("progress store is required")

	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("coordinator already started")

	// ErrNotStarted is returned when operations require a started coordinator.
	ErrNotStarted = errors.New("coordinator not started")

	// ErrUnknownItem is returned when an item key is not in the user's pools.
	ErrUnknownItem = errors.New("item not assigned to user")

	// ErrItemLocked is returned when an item cannot be opened or submitted yet,
	// e.g. a qualitative item while quantitative work remains.
	ErrItemLocked = errors.New("item not yet available")

	// ErrRevisitDisabled is returned by JumpTo when revisiting is not allowed.
	ErrRevisitDisabled = errors.New("revisiting completed items is disabled")
)

// Data errors - Item loading and partitioning.
var (
	// ErrDataError indicates a bad or missing source item. Fatal at startup.
	ErrDataError = errors.New("invalid item data")

	// ErrInsufficientOverlap indicates fewer shared keys than the qualitative target.
	// Callers treat it as a warning; the returned pools are usable.
	ErrInsufficientOverlap = errors.New("insufficient overlap between provenances")
)

// Store errors - Progress store adapters classify backend failures into these.
var (
	// ErrStoreUnavailable is a transient store failure; the caller may retry.
	ErrStoreUnavailable = errors.New("progress store unavailable")

	// ErrStoreAuth is an authentication or authorization failure; fatal for the session.
	ErrStoreAuth = errors.New("progress store authentication failed")

	// ErrMalformedRecord is returned when a persisted record cannot be decoded.
	ErrMalformedRecord = errors.New("malformed completion record")
)

// Submit errors.
var (
	// ErrValidation is returned when a payload is missing required label dimensions.
	ErrValidation = errors.New("annotation payload invalid")
)

// DataError describes one bad source row.
type DataError struct {
	Source string
	Row    int
	Field  string
	Reason string
}

func (e *DataError) Error() string {
	var b strings.Builder
	b.WriteString(ErrDataError.Error())
	if e.Source != "" {
		fmt.Fprintf(&b, ": %s", e.Source)
	}
	if e.Row > 0 {
		fmt.Fprintf(&b, " row %d", e.Row)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " field %q", e.Field)
	}
	if e.Reason != "" {
		fmt.Fprintf(&b, ": %s", e.Reason)
	}

	return b.String()
}

// Unwrap returns ErrDataError.
func (e *DataError) Unwrap() error {
	return ErrDataError
}

// InsufficientOverlapError reports a degraded qualitative pool.
type InsufficientOverlapError struct {
	UserID    string
	Requested int
	Available int
}

func (e *InsufficientOverlapError) Error() string {
	return fmt.Sprintf("%s: user %q requested %d pivot keys, only %d shared",
		ErrInsufficientOverlap.Error(), e.UserID, e.Requested, e.Available)
}

// Unwrap returns ErrInsufficientOverlap.
func (e *InsufficientOverlapError) Unwrap() error {
	return ErrInsufficientOverlap
}

// ValidationError lists the label dimensions a payload failed.
type ValidationError struct {
	Item     ItemKey
	Phase    Phase
	Missing  []string
	Invalid  []string
	Reserved []string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, 3)
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ","))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid "+strings.Join(e.Invalid, ","))
	}
	if len(e.Reserved) > 0 {
		parts = append(parts, "reserved "+strings.Join(e.Reserved, ","))
	}

	return fmt.Sprintf("%s: %s %s: %s", ErrValidation.Error(), e.Phase, e.Item, strings.Join(parts, "; "))
}

// Unwrap returns ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
