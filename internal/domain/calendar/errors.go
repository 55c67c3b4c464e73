package calendar

import "errors"

// ErrInvalidValue is returned when an events entry does not hold a number.
var ErrInvalidValue = errors.New("event value must be a number")
