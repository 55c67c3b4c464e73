package worker

import (
	"github.com/okian/fairway/pkg/logger"
)

// Option applies a configuration option to the Serial worker.
type Option func(*Serial)

// WithName sets the worker name used for its logger.
func WithName(name string) Option {
	return func(w *Serial) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *Serial) {
		if l != nil {
			w.logger = l
		}
	}
}
