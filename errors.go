package slogeval

import "github.com/Debodeep94/SLOG-Eval/types"

// Sentinel errors returned by the Coordinator.
//
// They alias the types package so errors.Is works with either import.
var (
	ErrInvalidConfig         = types.ErrInvalidConfig
	ErrItemSourceRequired    = types.ErrItemSourceRequired
	ErrProgressStoreRequired = types.ErrProgressStoreRequired
	ErrAlreadyStarted        = types.ErrAlreadyStarted
	ErrNotStarted            = types.ErrNotStarted
	ErrUnknownItem           = types.ErrUnknownItem
	ErrItemLocked            = types.ErrItemLocked
	ErrRevisitDisabled       = types.ErrRevisitDisabled
	ErrDataError             = types.ErrDataError
	ErrInsufficientOverlap   = types.ErrInsufficientOverlap
	ErrStoreUnavailable      = types.ErrStoreUnavailable
	ErrStoreAuth             = types.ErrStoreAuth
	ErrMalformedRecord       = types.ErrMalformedRecord
	ErrValidation            = types.ErrValidation
)

// Structured errors. Each unwraps to its sentinel above.
type (
	DataError                = types.DataError
	InsufficientOverlapError = types.InsufficientOverlapError
	ValidationError          = types.ValidationError
)
