package configstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/playperu/eastertrail/internal/storybook"
)

const (
	DefaultRedisKey = "eastertrail:site-config"
	mergeRetries    = 10
)

// RedisStore keeps the record as a JSON string under one key. Merges use
// optimistic WATCH/MULTI transactions and retry when another writer wins.
type RedisStore struct {
	rdb *redis.Client
	key string
}

func NewRedisStore(rdb *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{rdb: rdb, key: key}
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getKey(ctx context.Context, c getter, key string) ([]byte, error) {
	data, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading site config: %w", err)
	}
	return data, nil
}

func (s *RedisStore) Load(ctx context.Context) (storybook.SiteConfig, error) {
	data, err := getKey(ctx, s.rdb, s.key)
	if err != nil {
		return storybook.SiteConfig{}, err
	}
	return decode(data)
}

func (s *RedisStore) Merge(ctx context.Context, p Patch) (storybook.SiteConfig, error) {
	var cfg storybook.SiteConfig
	txf := func(tx *redis.Tx) error {
		current, err := getKey(ctx, tx, s.key)
		if err != nil {
			return err
		}
		next, out, err := merge(current, p)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key, out, 0)
			return nil
		})
		if err == nil {
			cfg = next
		}
		return err
	}

	for range mergeRetries {
		err := s.rdb.Watch(ctx, txf, s.key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return cfg, err
	}
	return cfg, fmt.Errorf("saving site config: too much contention on %s", s.key)
}

func (s *RedisStore) Check(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
