package vault

import (
	"context"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/strooper/strooper-wallet/core"
)

// NewMemoryStorage returns an in-process Storage, enough for single-node
// deployments and tests.
func NewMemoryStorage() Storage {
	return &memoryStorage{values: map[string][]byte{}}
}

type memoryStorage struct {
	mux    sync.RWMutex
	values map[string][]byte
}

func (s *memoryStorage) Put(ctx context.Context, key string, value []byte) error {
	cp := make([]byte, len(value))
	copy(cp, value)

	s.mux.Lock()
	s.values[key] = cp
	s.mux.Unlock()

	return nil
}

func (s *memoryStorage) Get(ctx context.Context, key string) ([]byte, error) {
	s.mux.RLock()
	v, ok := s.values[key]
	s.mux.RUnlock()

	if !ok {
		return nil, core.ErrNotFound
	}

	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, nil
}

func (s *memoryStorage) Delete(ctx context.Context, key string) error {
	s.mux.Lock()
	delete(s.values, key)
	s.mux.Unlock()

	return nil
}

// NewRedisStorage returns a Storage on a shared redis, for deployments
// with more than one node. Records never expire; Drop is the only way out.
func NewRedisStorage(client *redis.Client) Storage {
	return &redisStorage{client: client}
}

type redisStorage struct {
	client *redis.Client
}

func redisKey(key string) string {
	return "vault:" + key
}

func (s *redisStorage) Put(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, redisKey(key), value, 0).Err()
}

func (s *redisStorage) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, core.ErrNotFound
	} else if err != nil {
		return nil, err
	}

	return v, nil
}

func (s *redisStorage) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, redisKey(key)).Err()
}
