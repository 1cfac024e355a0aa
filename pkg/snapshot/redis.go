package snapshot

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps snapshots as JSON strings in Redis with a per-key TTL.
type RedisStore struct {
	client redis.UniversalClient
	opts   *options
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore wraps an existing client. The client is owned by the caller.
func NewRedisStore(client redis.UniversalClient, opts ...Option) *RedisStore {
	return &RedisStore{client: client, opts: applyOptions(opts)}
}

func (s *RedisStore) key(k string) string { return s.opts.prefix + k }

func (s *RedisStore) Save(ctx context.Context, key string, snap Snapshot) error {
	if key == "" {
		return ErrEmptyKey
	}
	data, err := encode(snap)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(key), data, s.opts.ttl).Err(); err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, key string) (Snapshot, error) {
	if key == "" {
		return Snapshot{}, ErrEmptyKey
	}
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, errors.Join(ErrStorage, err)
	}
	return decode(data)
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}
