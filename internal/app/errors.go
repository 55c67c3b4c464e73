package service

import "errors"

var (
	// ErrDelivery is returned when a message could not be posted.
	ErrDelivery = errors.New("message delivery failed")
	// ErrDirectory is returned when the member list could not be read.
	ErrDirectory = errors.New("member directory unavailable")
	// ErrNotStarted is returned by Stop on a service that was never started.
	ErrNotStarted = errors.New("service not started")
	// ErrStopped is returned by Start once the service has been stopped.
	ErrStopped = errors.New("service stopped")
)
