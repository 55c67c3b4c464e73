package picks

import (
	"time"

	"github.com/okian/fairway/pkg/logger"
)

// Option applies a configuration option to the Registry.
type Option func(*Registry)

// WithLocation sets the zone used to stamp and render submissions.
func WithLocation(loc *time.Location) Option {
	return func(r *Registry) {
		if loc != nil {
			r.loc = loc
		}
	}
}

// WithLogger sets a custom logger for the registry.
func WithLogger(l logger.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}
