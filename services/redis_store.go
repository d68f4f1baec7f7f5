package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/chiaview/site-backend/config"
)

// RedisStore keeps key/value data in Redis under "<namespace>:<key>". It backs the
// localStorage provider.
type RedisStore struct {
	client    *redis.Client
	namespace string
}

// NewRedisClient parses a redis:// URL.
func NewRedisClient(rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, errors.Wrap(err, "parsing REDIS_URL")
	}
	return redis.NewClient(opts), nil
}

func NewRedisStore(client *redis.Client, namespace string) *RedisStore {
	return &RedisStore{client: client, namespace: namespace}
}

func (s *RedisStore) Provider() string { return config.ProviderLocalStorage }

func (s *RedisStore) key(k string) string {
	return s.namespace + ":" + k
}

func (s *RedisStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	val, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "redis GET %s", key)
	}
	return json.RawMessage(val), nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value json.RawMessage, merge bool) error {
	if merge {
		existing, err := s.Get(ctx, key)
		if err != nil {
			return err
		}
		if value, err = mergeJSON(existing, value); err != nil {
			return errors.Wrap(err, "merging values")
		}
	}
	if err := s.client.Set(ctx, s.key(key), []byte(value), 0).Err(); err != nil {
		return errors.Wrapf(err, "redis SET %s", key)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return errors.Wrapf(err, "redis DEL %s", key)
	}
	return nil
}

func (s *RedisStore) Snapshot(ctx context.Context) (map[string]json.RawMessage, error) {
	out := map[string]json.RawMessage{}
	prefix := s.namespace + ":"

	iter := s.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		full := iter.Val()
		val, err := s.client.Get(ctx, full).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "redis GET %s", full)
		}
		out[strings.TrimPrefix(full, prefix)] = json.RawMessage(val)
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrap(err, "redis SCAN")
	}
	return out, nil
}
