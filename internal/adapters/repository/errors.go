package repository

import "errors"

// Sentinel kinds for storage errors.
var (
	ErrCorrupt     = errors.New("stored document is corrupt")
	ErrPersistence = errors.New("persist document failed")
)
