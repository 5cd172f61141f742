package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures a [RedisStore].
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// Prefix namespaces asset keys. The index lives at Prefix + "index".
	Prefix string
}

// RedisStore keeps each asset in a string key and tracks names in a sorted
// set scored by modification time.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, storeError(err, "connect to redis at %s", cfg.Addr)
	}
	return NewRedisStoreFromClient(client, cfg.Prefix), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(name string) string { return s.prefix + "data:" + name }
func (s *RedisStore) indexKey() string       { return s.prefix + "index" }

func (s *RedisStore) Put(ctx context.Context, name string, buf []byte) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, s.key(name), buf, 0)
		p.ZAdd(ctx, s.indexKey(), redis.Z{Score: float64(time.Now().UnixMilli()), Member: name})
		return nil
	})
	if err != nil {
		return storeError(err, "redis put %s", name)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, s.key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, storeError(err, "redis get %s", name)
	}
	return data, nil
}

func (s *RedisStore) List(ctx context.Context) ([]Asset, error) {
	entries, err := s.client.ZRangeWithScores(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, storeError(err, "redis list")
	}

	sizes := make([]*redis.IntCmd, len(entries))
	_, err = s.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for i, z := range entries {
			sizes[i] = p.StrLen(ctx, s.key(z.Member.(string)))
		}
		return nil
	})
	if err != nil {
		return nil, storeError(err, "redis list")
	}

	out := make([]Asset, 0, len(entries))
	for i, z := range entries {
		out = append(out, Asset{
			Name:     z.Member.(string),
			Size:     int(sizes[i].Val()),
			Modified: time.UnixMilli(int64(z.Score)),
		})
	}
	sortAssets(out)
	return out, nil
}

func (s *RedisStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, s.key(name))
		p.ZRem(ctx, s.indexKey(), name)
		return nil
	})
	if err != nil {
		return storeError(err, "redis delete %s", name)
	}
	return nil
}

func (s *RedisStore) Close() error { return s.client.Close() }
