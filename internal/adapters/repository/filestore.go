package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/okian/fairway/pkg/logger"
	"github.com/okian/fairway/pkg/metrics"
)

const defaultFileMode = 0o644

// FileStore keeps each collection in its own JSON file under dir.
type FileStore struct {
	dir    string
	names  map[string]string
	mode   os.FileMode
	logger logger.Logger
}

// NewFileStore creates a file-backed store rooted at dir.
func NewFileStore(dir string, opts ...Option) *FileStore {
	s := &FileStore{
		dir:   dir,
		names: make(map[string]string),
		mode:  defaultFileMode,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("store")
	}
	return s
}

// Path returns the file backing collection.
func (s *FileStore) Path(collection string) string {
	name, ok := s.names[collection]
	if !ok {
		name = collection + ".json"
	}
	return filepath.Join(s.dir, name)
}

// Load reads the collection's file. A missing file is an empty document.
func (s *FileStore) Load(ctx context.Context, collection string) (*Document, error) {
	path := s.Path(collection)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug(ctx, "no stored document; starting empty", logger.String("path", path))
		return NewDocument(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return decode(collection, data)
}

// Save writes the document to a temporary file and renames it over the
// previous one so readers never observe a half-written document.
func (s *FileStore) Save(ctx context.Context, collection string, doc *Document) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPersistence, collection, err)
	}
	data, err := encode(doc)
	if err != nil {
		return s.fail(collection, err)
	}

	path := s.Path(collection)
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return s.fail(collection, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return s.fail(collection, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return s.fail(collection, err)
	}
	if err := tmp.Close(); err != nil {
		return s.fail(collection, err)
	}
	if err := os.Chmod(tmpName, s.mode); err != nil {
		return s.fail(collection, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return s.fail(collection, err)
	}

	metrics.RecordStoreWrite(collection, metrics.OutcomeOK)
	s.logger.Debug(ctx, "document saved", logger.String("path", path), logger.Int("entries", docLen(doc)))
	return nil
}

// Close is a no-op for files.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) fail(collection string, err error) error {
	metrics.RecordStoreWrite(collection, metrics.OutcomeError)
	return fmt.Errorf("%w: %s: %w", ErrPersistence, collection, err)
}

func docLen(doc *Document) int {
	if doc == nil {
		return 0
	}
	return doc.Len()
}
