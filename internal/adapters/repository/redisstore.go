package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/okian/fairway/pkg/metrics"
)

// RedisStore keeps each collection as one JSON string value under prefix+collection.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(collection string) string {
	return s.prefix + collection
}

// Load fetches the collection. A missing key is an empty document.
func (s *RedisStore) Load(ctx context.Context, collection string) (*Document, error) {
	data, err := s.client.Get(ctx, s.key(collection)).Bytes()
	if errors.Is(err, redis.Nil) {
		return NewDocument(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.key(collection), err)
	}
	return decode(collection, data)
}

// Save overwrites the collection's value.
func (s *RedisStore) Save(ctx context.Context, collection string, doc *Document) error {
	data, err := encode(doc)
	if err == nil {
		err = s.client.Set(ctx, s.key(collection), data, 0).Err()
	}
	if err != nil {
		metrics.RecordStoreWrite(collection, metrics.OutcomeError)
		return fmt.Errorf("%w: %s: %w", ErrPersistence, collection, err)
	}
	metrics.RecordStoreWrite(collection, metrics.OutcomeOK)
	return nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
