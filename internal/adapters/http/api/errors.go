package api

import "errors"

// ErrServe is returned when the liveness server stops unexpectedly.
var ErrServe = errors.New("liveness server failed")
