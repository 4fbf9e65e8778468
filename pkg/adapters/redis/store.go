package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/sessionlock/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// compareAndDelete deletes KEYS[1] only while it still holds ARGV[1].
var compareAndDelete = backend.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// Store implements ports.Store using Redis.
type Store struct {
	client *backend.Client
}

var _ ports.Store = (*Store)(nil)

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client) *Store {
	return &Store{client: client}
}

// Client returns the underlying go-redis client.
func (s *Store) Client() *backend.Client {
	return s.client
}

// HashGetAll reads all fields of the hash at key.
func (s *Store) HashGetAll(ctx context.Context, key string) (map[string][]byte, error) {
	raw, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall %s: %w", key, err)
	}
	fields := make(map[string][]byte, len(raw))
	for k, v := range raw {
		fields[k] = []byte(v)
	}
	return fields, nil
}

// SetIfAbsent claims key using SET NX with an expiry.
func (s *Store) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", key, err)
	}
	return ok, nil
}

// CompareAndDelete removes key if it holds value, atomically on the server.
func (s *Store) CompareAndDelete(ctx context.Context, key, value string) (bool, error) {
	n, err := compareAndDelete.Run(ctx, s.client, []string{key}, value).Int64()
	if err != nil {
		return false, fmt.Errorf("redis compare-and-delete %s: %w", key, err)
	}
	return n == 1, nil
}

// Expire sets the TTL of key.
func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if err := s.client.PExpire(ctx, key, ttl).Err(); err != nil {
		return fmt.Errorf("redis expire %s: %w", key, err)
	}
	return nil
}

// Delete removes keys.
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Exists reports whether key is present.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %s: %w", key, err)
	}
	return n > 0, nil
}

// TTL returns the remaining time to live of key.
// Redis reports -2 for a missing key and -1 for a key without expiry.
func (s *Store) TTL(ctx context.Context, key string) (time.Duration, error) {
	d, err := s.client.PTTL(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis pttl %s: %w", key, err)
	}
	return d, nil
}

// Transaction runs the queued commands inside MULTI/EXEC.
func (s *Store) Transaction(ctx context.Context, fn func(ports.Tx)) error {
	_, err := s.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		fn(&tx{ctx: ctx, pipe: pipe})
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis transaction: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

type tx struct {
	ctx  context.Context
	pipe backend.Pipeliner
}

func (t *tx) HashSet(key string, fields map[string][]byte) {
	if len(fields) == 0 {
		return
	}
	values := make(map[string]any, len(fields))
	for k, v := range fields {
		values[k] = v
	}
	t.pipe.HSet(t.ctx, key, values)
}

func (t *tx) Expire(key string, ttl time.Duration) {
	t.pipe.PExpire(t.ctx, key, ttl)
}

func (t *tx) Delete(key string) {
	t.pipe.Del(t.ctx, key)
}
