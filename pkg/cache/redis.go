package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// scanBatch is the SCAN page size used by Clear.
const scanBatch = 100

// Redis stores entries in Redis, shared by every process using the same
// server and prefix. Expiration is delegated to Redis.
type Redis[V any] struct {
	client    redis.UniversalClient
	marshaler Marshaler[V]
	prefix    string
}

// NewRedis creates a Redis-backed cache. Values are JSON encoded unless m
// is given. The client's lifecycle stays with the caller.
//
// Example:
//
//	client, err := redis.Open(ctx, cfg.Redis)
//	sessions := cache.NewRedis[session.Session](client, nil, cache.WithPrefix("session:"))
func NewRedis[V any](client redis.UniversalClient, m Marshaler[V], opts ...RedisOption) *Redis[V] {
	o := &redisOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if m == nil {
		m = jsonMarshaler[V]{}
	}
	return &Redis[V]{client: client, marshaler: m, prefix: o.prefix}
}

func (r *Redis[V]) Get(ctx context.Context, key string) (V, error) {
	var zero V

	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, ErrNotFound
	}
	if err != nil {
		return zero, err
	}
	return r.marshaler.Unmarshal(data)
}

// Set writes the value and its absolute expiration in one transaction.
// A zero expiresAt clears any previous expiration; one already passed
// removes the key.
func (r *Redis[V]) Set(ctx context.Context, key string, value V, expiresAt time.Time) error {
	if !expiresAt.IsZero() && !expiresAt.After(time.Now()) {
		return r.Delete(ctx, key)
	}

	data, err := r.marshaler.Marshal(value)
	if err != nil {
		return err
	}

	k := r.prefix + key
	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, k, data, 0)
		if !expiresAt.IsZero() {
			p.PExpireAt(ctx, k, expiresAt)
		}
		return nil
	})
	return err
}

func (r *Redis[V]) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}

func (r *Redis[V]) Has(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.prefix+key).Result()
	return n > 0, err
}

// Clear removes the keys under the prefix. Without a prefix it flushes
// the whole database.
func (r *Redis[V]) Clear(ctx context.Context) error {
	if r.prefix == "" {
		return r.client.FlushDB(ctx).Err()
	}

	keys := make([]string, 0, scanBatch)
	iter := r.client.Scan(ctx, 0, r.prefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) == scanBatch {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) > 0 {
		return r.client.Del(ctx, keys...).Err()
	}
	return nil
}

// Close does nothing; see pkg/redis.Shutdown for the client.
func (r *Redis[V]) Close() error {
	return nil
}

var _ Cache[any] = (*Redis[any])(nil)
