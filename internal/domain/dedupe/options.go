package dedupe

// Option applies a configuration option to the guard.
type Option func(*memoryGuard)

// WithMaxSize bounds how many fire keys are remembered.
// maxSize <= 0 keeps every key.
func WithMaxSize(maxSize int) Option {
	return func(g *memoryGuard) {
		g.maxSize = maxSize
	}
}
