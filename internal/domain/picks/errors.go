package picks

import "errors"

var (
	// ErrNotAllowedHere is returned when a pick arrives outside a private channel.
	ErrNotAllowedHere = errors.New("picks must be sent in a direct message")
	// ErrEmptyPick is returned for a pick with no text.
	ErrEmptyPick = errors.New("pick text is empty")
	// ErrNotFound is returned when the identity has no submission this week.
	ErrNotFound = errors.New("no submission for this user")
)
