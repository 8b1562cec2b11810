package slots

import "errors"

var (
	// ErrInvalidSlot is returned for input that is not a canonical slot in 000-999.
	ErrInvalidSlot = errors.New("invalid slot")
	// ErrStorageRead is returned when the persisted document cannot be read or decoded.
	// The document is never recreated automatically in that case.
	ErrStorageRead = errors.New("storage read failed")
	// ErrStorageWrite is returned when the persisted document could not be replaced.
	// Backends write all-or-nothing, so the previous document is still intact.
	ErrStorageWrite = errors.New("storage write failed")
)
