package session

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/sessionlock/pkg/domain"
)

// Snapshot is a lock-free view of a session used by operators.
type Snapshot struct {
	Key     string
	Exists  bool
	TTL     time.Duration
	Record  *domain.Record // nil when absent or malformed
	Problem error          // decode failure, wraps domain.ErrMalformedRecord
}

// LockState describes the claim key of a session.
type LockState struct {
	Key  string
	Held bool
	TTL  time.Duration
}

// Inspect reads a session without taking its lock and without modifying it.
func (s *Synchronizer) Inspect(ctx context.Context, id string) (Snapshot, error) {
	key := s.Key(id)
	snap := Snapshot{Key: key}
	if err := s.checkID(id); err != nil {
		return snap, err
	}

	fields, err := s.store.HashGetAll(ctx, key)
	if err != nil {
		return snap, fmt.Errorf("inspect %s: %w", key, err)
	}
	if len(fields) == 0 {
		return snap, nil
	}
	snap.Exists = true

	if snap.TTL, err = s.store.TTL(ctx, key); err != nil {
		return snap, fmt.Errorf("inspect ttl %s: %w", key, err)
	}
	snap.Record, snap.Problem = s.codec.Parse(fields)
	return snap, nil
}

// LockStatus reports whether the session's claim key is currently held.
func (s *Synchronizer) LockStatus(ctx context.Context, id string) (LockState, error) {
	st := LockState{Key: s.cfg.LockKey(id)}
	if err := s.checkID(id); err != nil {
		return st, err
	}

	held, err := s.store.Exists(ctx, st.Key)
	if err != nil {
		return st, fmt.Errorf("lock status %s: %w", st.Key, err)
	}
	st.Held = held
	if held {
		if st.TTL, err = s.store.TTL(ctx, st.Key); err != nil {
			return st, fmt.Errorf("lock ttl %s: %w", st.Key, err)
		}
	}
	return st, nil
}

// BreakLock deletes the session's claim key regardless of its holder.
// It is an operator tool for stuck claims; the hold timeout normally makes it unnecessary.
func (s *Synchronizer) BreakLock(ctx context.Context, id string) error {
	if err := s.checkID(id); err != nil {
		return err
	}
	key := s.cfg.LockKey(id)
	if err := s.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("break lock %s: %w", key, err)
	}
	s.logger.Warn("Session lock broken by operator", "session_id", id, "key", key)
	return nil
}
