package allocation

import "errors"

// ErrMalformed is returned for input the calculators cannot read.
var ErrMalformed = errors.New("malformed input")
