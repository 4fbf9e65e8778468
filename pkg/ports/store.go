package ports

import (
	"context"
	"time"
)

// Store defines the capabilities required from the backing key-value store.
// Implementations must be safe for concurrent use.
type Store interface {
	// HashGetAll reads every field of the hash at key.
	// A missing key yields an empty map and no error.
	HashGetAll(ctx context.Context, key string) (map[string][]byte, error)

	// SetIfAbsent atomically sets key to value with the given TTL only if key does not exist.
	SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error)

	// CompareAndDelete deletes key only if it currently holds value.
	CompareAndDelete(ctx context.Context, key, value string) (bool, error)

	// Expire sets or refreshes the TTL of key.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// Delete removes the given keys.
	Delete(ctx context.Context, keys ...string) error

	// Exists reports whether key is present.
	Exists(ctx context.Context, key string) (bool, error)

	// TTL returns the remaining time to live of key.
	// Negative values follow the store's conventions for "no key" / "no expiry".
	TTL(ctx context.Context, key string) (time.Duration, error)

	// Transaction queues the commands issued by fn and applies them atomically.
	// Commands cannot observe each other's results inside the group.
	Transaction(ctx context.Context, fn func(Tx)) error
}

// Tx is the command queue of a Store transaction.
type Tx interface {
	HashSet(key string, fields map[string][]byte)
	Expire(key string, ttl time.Duration)
	Delete(key string)
}
