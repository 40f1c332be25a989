package template

import "errors"

// Error kinds a caller can match with errors.Is. validate never returns
// one of these — it accumulates mismatches into a []string instead.
var (
	ErrUnknownParameter  = errors.New("unknown parameter")
	ErrMissingValue      = errors.New("missing value")
	ErrValueOverflow     = errors.New("value does not fit")
	ErrLengthUnderflow   = errors.New("buffer shorter than template requires")
	ErrProtocolInvariant = errors.New("protocol invariant violated")
	ErrReferenceNotFound = errors.New("referenced field not found")
	ErrKindMismatch      = errors.New("view not supported for field kind")
)
