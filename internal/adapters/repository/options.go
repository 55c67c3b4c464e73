package repository

import (
	"os"

	"github.com/okian/fairway/pkg/logger"
)

// Option applies a configuration option to the FileStore.
type Option func(*FileStore)

// WithFileName maps a collection to a file name inside the store directory.
func WithFileName(collection, name string) Option {
	return func(s *FileStore) {
		if collection != "" && name != "" {
			s.names[collection] = name
		}
	}
}

// WithFileMode sets the permissions of written documents.
func WithFileMode(mode os.FileMode) Option {
	return func(s *FileStore) {
		if mode != 0 {
			s.mode = mode
		}
	}
}

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(s *FileStore) {
		if l != nil {
			s.logger = l
		}
	}
}
