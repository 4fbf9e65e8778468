package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/aretw0/sessionlock/pkg/ports"
)

// Store implements ports.Store in memory with Redis-like expiry.
// Safe for concurrent use. It serves a single process only and is meant for
// development servers and tests.
type Store struct {
	mu      sync.Mutex
	hashes  map[string]map[string][]byte
	strings map[string]string
	expires map[string]time.Time
	now     func() time.Time
}

var _ ports.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty in-memory store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		hashes:  make(map[string]map[string][]byte),
		strings: make(map[string]string),
		expires: make(map[string]time.Time),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HashGetAll returns a copy of the hash at key.
func (s *Store) HashGetAll(_ context.Context, key string) (map[string][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evict(key)

	out := make(map[string][]byte, len(s.hashes[key]))
	for k, v := range s.hashes[key] {
		out[k] = append([]byte(nil), v...)
	}
	return out, nil
}

// SetIfAbsent sets key to value only if no key of any kind exists under that name.
func (s *Store) SetIfAbsent(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evict(key)

	if s.exists(key) {
		return false, nil
	}
	s.strings[key] = value
	s.expire(key, ttl)
	return true, nil
}

// CompareAndDelete deletes key if it holds value.
func (s *Store) CompareAndDelete(_ context.Context, key, value string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evict(key)

	if v, ok := s.strings[key]; !ok || v != value {
		return false, nil
	}
	s.delete(key)
	return true, nil
}

// Expire sets the TTL of an existing key.
func (s *Store) Expire(_ context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evict(key)
	s.expire(key, ttl)
	return nil
}

// Delete removes keys.
func (s *Store) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		s.delete(k)
	}
	return nil
}

// Exists reports whether key is present.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evict(key)
	return s.exists(key), nil
}

// TTL mirrors Redis PTTL: -2 for a missing key and -1 for a key without expiry.
func (s *Store) TTL(_ context.Context, key string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evict(key)

	if !s.exists(key) {
		return -2, nil
	}
	at, ok := s.expires[key]
	if !ok {
		return -1, nil
	}
	return at.Sub(s.now()), nil
}

// Transaction applies the queued commands under the store lock.
func (s *Store) Transaction(_ context.Context, fn func(ports.Tx)) error {
	t := &tx{}
	fn(t)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, apply := range t.ops {
		apply(s)
	}
	return nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() error { return nil }

func (s *Store) exists(key string) bool {
	if _, ok := s.hashes[key]; ok {
		return true
	}
	_, ok := s.strings[key]
	return ok
}

func (s *Store) expire(key string, ttl time.Duration) {
	if !s.exists(key) {
		return
	}
	if ttl <= 0 {
		s.delete(key)
		return
	}
	s.expires[key] = s.now().Add(ttl)
}

func (s *Store) delete(key string) {
	delete(s.hashes, key)
	delete(s.strings, key)
	delete(s.expires, key)
}

// evict drops key if its deadline has passed.
func (s *Store) evict(key string) {
	if at, ok := s.expires[key]; ok && !s.now().Before(at) {
		s.delete(key)
	}
}

type tx struct {
	ops []func(*Store)
}

func (t *tx) HashSet(key string, fields map[string][]byte) {
	if len(fields) == 0 {
		return
	}
	fields = maps.Clone(fields)
	t.ops = append(t.ops, func(s *Store) {
		s.evict(key)
		h, ok := s.hashes[key]
		if !ok {
			if _, isString := s.strings[key]; isString {
				s.delete(key)
			}
			h = make(map[string][]byte, len(fields))
			s.hashes[key] = h
		}
		for k, v := range fields {
			h[k] = append([]byte(nil), v...)
		}
	})
}

func (t *tx) Expire(key string, ttl time.Duration) {
	t.ops = append(t.ops, func(s *Store) {
		s.evict(key)
		s.expire(key, ttl)
	})
}

func (t *tx) Delete(key string) {
	t.ops = append(t.ops, func(s *Store) { s.delete(key) })
}
