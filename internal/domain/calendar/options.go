package calendar

import "github.com/okian/fairway/pkg/logger"

// Option applies a configuration option to the Queue.
type Option func(*Queue)

// WithLogger sets a custom logger for the queue.
func WithLogger(l logger.Logger) Option {
	return func(q *Queue) {
		if l != nil {
			q.logger = l
		}
	}
}
