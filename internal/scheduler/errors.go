package scheduler

import "errors"

var (
	// ErrDuplicateTrigger is returned when a trigger name is registered twice.
	ErrDuplicateTrigger = errors.New("trigger already registered")
	// ErrInvalidSchedule wraps cron parse failures.
	ErrInvalidSchedule = errors.New("invalid schedule")
	// ErrStarted is returned when registering after Start.
	ErrStarted = errors.New("scheduler already started")
)
