package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/sessionlock/internal/logging"
	"github.com/aretw0/sessionlock/pkg/codec"
	"github.com/aretw0/sessionlock/pkg/config"
	"github.com/aretw0/sessionlock/pkg/domain"
	"github.com/aretw0/sessionlock/pkg/lock"
	"github.com/aretw0/sessionlock/pkg/observability"
	"github.com/aretw0/sessionlock/pkg/ports"
)

// Operation names used in logs and metrics.
const (
	OpCreate        = "create"
	OpGet           = "get"
	OpGetExclusive  = "get_exclusive"
	OpRelease       = "release"
	OpSetAndRelease = "set_and_release"
	OpRemove        = "remove"
	OpResetTimeout  = "reset_timeout"
)

// Synchronizer orchestrates session access across processes that share only the store.
// It holds no mutable state besides its immutable configuration and collaborators.
type Synchronizer struct {
	cfg        *config.Config
	store      ports.Store
	locker     ports.Locker
	serializer ports.ItemSerializer
	codec      *codec.Codec

	metrics       *observability.Metrics
	onNotAcquired func(sessionID string)
	logger        *slog.Logger
	now           func() time.Time
}

var _ ports.Provider = (*Synchronizer)(nil)

// New creates a Synchronizer. It binds cfg, so a Config can back only one Synchronizer.
func New(cfg *config.Config, store ports.Store, opts ...Option) (*Synchronizer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", domain.ErrInvalidConfig)
	}
	if store == nil {
		return nil, fmt.Errorf("%w: nil store", domain.ErrInvalidConfig)
	}
	if err := cfg.Bind(); err != nil {
		return nil, err
	}

	s := &Synchronizer{
		cfg:    cfg,
		store:  store,
		logger: logging.NewNop(), // Default to no-op
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.locker == nil {
		s.locker = lock.New(store, lock.WithRetryInterval(cfg.RetryInterval()))
	}
	s.codec = codec.New(s.serializer)
	return s, nil
}

// Key returns the store key of a session.
func (s *Synchronizer) Key(id string) string {
	return s.cfg.SessionKey(id)
}

// CreateUninitialized writes a placeholder record that the first read turns into an empty session.
func (s *Synchronizer) CreateUninitialized(ctx context.Context, id string, timeout int) error {
	if err := s.validate(id, timeout); err != nil {
		return err
	}
	outcome := observability.OutcomeOK
	acquired, err := s.withLock(ctx, OpCreate, id, func(ctx context.Context, key string) error {
		rec := domain.NewRecord(s.now(), timeout)
		rec.Flags = domain.ActionInitializeItem
		return s.write(ctx, OpCreate, key, rec, true)
	})
	s.observe(OpCreate, acquired, outcome, err)
	return err
}

// GetItem performs a shared read. It never takes exclusive access.
func (s *Synchronizer) GetItem(ctx context.Context, id string) (ports.ItemResult, error) {
	return s.get(ctx, OpGet, id, false)
}

// GetItemExclusive reads the session and takes exclusive access if nobody else holds it.
// The returned LockID is the token for the matching release, update or remove.
func (s *Synchronizer) GetItemExclusive(ctx context.Context, id string) (ports.ItemResult, error) {
	return s.get(ctx, OpGetExclusive, id, true)
}

func (s *Synchronizer) get(ctx context.Context, op, id string, exclusive bool) (ports.ItemResult, error) {
	if err := s.checkID(id); err != nil {
		return ports.ItemResult{}, err
	}
	var res ports.ItemResult
	outcome := observability.OutcomeOK

	acquired, err := s.withLock(ctx, op, id, func(ctx context.Context, key string) error {
		rec, ok, err := s.read(ctx, key)
		if err != nil {
			return err
		}
		if !ok {
			outcome = observability.OutcomeNotFound
			return nil
		}

		now := s.now()
		if rec.Locked {
			outcome = observability.OutcomeLocked
			res = ports.ItemResult{
				Found:   true,
				Locked:  true,
				LockID:  rec.LockID,
				LockAge: rec.LockAge(now),
				Timeout: rec.Timeout,
				Actions: rec.Flags,
			}
			return nil
		}

		actions := rec.Flags
		if actions == domain.ActionInitializeItem {
			rec.Items = domain.NewItems()
		}
		rec.Flags = domain.ActionNone
		if exclusive {
			rec.Locked = true
			rec.LockID++
			rec.LockDate = now.UTC()
		}

		if err := s.write(ctx, op, key, rec, false); err != nil {
			return err
		}

		res = ports.ItemResult{
			Found:   true,
			Items:   rec.Items,
			Timeout: rec.Timeout,
			LockID:  rec.LockID,
			Actions: actions,
		}
		return nil
	})
	s.observe(op, acquired, outcome, err)
	if err != nil {
		return ports.ItemResult{}, err
	}
	return res, nil
}

// ReleaseItemExclusive gives up exclusive access held under lockID and applies timeout.
// A non-positive timeout keeps the stored one. Mismatched tokens are ignored.
func (s *Synchronizer) ReleaseItemExclusive(ctx context.Context, id string, lockID int64, timeout int) error {
	if err := s.checkID(id); err != nil {
		return err
	}
	if timeout > 0 {
		if err := domain.ValidateTimeout(timeout); err != nil {
			return err
		}
	}
	outcome := observability.OutcomeOK
	acquired, err := s.withLock(ctx, OpRelease, id, func(ctx context.Context, key string) error {
		rec, ok, err := s.read(ctx, key)
		if err != nil {
			return err
		}
		if !ok {
			outcome = observability.OutcomeNotFound
			return nil
		}
		if !s.holds(rec, id, lockID, OpRelease) {
			outcome = observability.OutcomeMismatch
			return nil
		}

		rec.Locked = false
		rec.LockDate = time.Time{}
		if timeout > 0 {
			rec.Timeout = timeout
		}
		return s.write(ctx, OpRelease, key, rec, false)
	})
	s.observe(OpRelease, acquired, outcome, err)
	return err
}

// SetAndReleaseItemExclusive stores items and releases exclusive access.
//
// With newItem the record is replaced wholesale and its lock sequence restarts.
// Otherwise the update only applies while the record is locked under lockID.
func (s *Synchronizer) SetAndReleaseItemExclusive(ctx context.Context, id string, lockID int64, newItem bool, items *domain.Items, timeout int) error {
	if err := s.validate(id, timeout); err != nil {
		return err
	}
	if items == nil {
		items = domain.NewItems()
	}

	outcome := observability.OutcomeOK
	acquired, err := s.withLock(ctx, OpSetAndRelease, id, func(ctx context.Context, key string) error {
		if newItem {
			rec := domain.NewRecord(s.now(), timeout)
			rec.Items = items
			return s.write(ctx, OpSetAndRelease, key, rec, true)
		}

		rec, ok, err := s.read(ctx, key)
		if err != nil {
			return err
		}
		if !ok {
			outcome = observability.OutcomeNotFound
			return nil
		}
		if !s.holds(rec, id, lockID, OpSetAndRelease) {
			outcome = observability.OutcomeMismatch
			return nil
		}

		rec.Items = items
		rec.Timeout = timeout
		rec.Locked = false
		rec.LockDate = time.Time{}
		rec.Flags = domain.ActionNone
		return s.write(ctx, OpSetAndRelease, key, rec, false)
	})
	s.observe(OpSetAndRelease, acquired, outcome, err)
	return err
}

// RemoveItem deletes the session if it is locked under lockID.
func (s *Synchronizer) RemoveItem(ctx context.Context, id string, lockID int64) error {
	if err := s.checkID(id); err != nil {
		return err
	}
	outcome := observability.OutcomeOK
	acquired, err := s.withLock(ctx, OpRemove, id, func(ctx context.Context, key string) error {
		rec, ok, err := s.read(ctx, key)
		if err != nil {
			return err
		}
		if !ok {
			outcome = observability.OutcomeNotFound
			return nil
		}
		if !s.holds(rec, id, lockID, OpRemove) {
			outcome = observability.OutcomeMismatch
			return nil
		}
		return s.commit(ctx, OpRemove, func(tx ports.Tx) {
			tx.Delete(key)
		})
	})
	s.observe(OpRemove, acquired, outcome, err)
	return err
}

// ResetItemTimeout re-applies the TTL without reading or writing any field.
func (s *Synchronizer) ResetItemTimeout(ctx context.Context, id string, timeout int) error {
	if err := s.validate(id, timeout); err != nil {
		return err
	}
	err := s.store.Expire(ctx, s.Key(id), domain.TimeoutDuration(timeout))
	if err != nil {
		err = fmt.Errorf("reset timeout of session %s: %w", id, err)
	}
	s.observe(OpResetTimeout, true, observability.OutcomeOK, err)
	return err
}

// checkID rejects ids that cannot be mapped to a key of their own. An id holding the
// key separator could name another session's claim key.
func (s *Synchronizer) checkID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty", domain.ErrInvalidSessionID)
	}
	if strings.Contains(id, s.cfg.KeySeparator) {
		return fmt.Errorf("%w: %q contains key separator %q", domain.ErrInvalidSessionID, id, s.cfg.KeySeparator)
	}
	return nil
}

func (s *Synchronizer) validate(id string, timeout int) error {
	if err := s.checkID(id); err != nil {
		return err
	}
	return domain.ValidateTimeout(timeout)
}

// withLock executes fn while holding the session's claim key.
// It reports false, with no error, when the claim could not be acquired in time.
func (s *Synchronizer) withLock(ctx context.Context, op, id string, fn func(ctx context.Context, key string) error) (bool, error) {
	start := time.Now()
	h, ok, err := s.locker.Acquire(ctx, s.cfg.LockKey(id), s.cfg.AcquireTimeout(), s.cfg.HoldTimeout())
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock for session %s: %w", id, err)
	}
	s.metrics.LockWait(time.Since(start), ok)
	if !ok {
		s.notAcquired(op, id)
		return false, nil
	}

	defer func() {
		// Release even if the caller's context is already done.
		if err := h.Release(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("Failed to release session lock (will expire via TTL)",
				"session_id", id,
				"op", op,
				"err", err,
			)
		}
	}()

	s.logger.Debug("Session lock acquired", "session_id", id, "op", op, "wait", time.Since(start))
	return true, fn(ctx, s.Key(id))
}

// read loads and decodes a record. Absent and malformed records both report false.
func (s *Synchronizer) read(ctx context.Context, key string) (*domain.Record, bool, error) {
	fields, err := s.store.HashGetAll(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	if len(fields) == 0 {
		return nil, false, nil
	}

	rec, err := s.codec.Parse(fields)
	if err != nil {
		s.logger.Warn("Treating malformed session record as absent", "key", key, "err", err)
		return nil, false, nil
	}
	return rec, true, nil
}

// write encodes rec and stores it together with its TTL in one transaction.
// With replace, leftover fields of a previous record are dropped first.
func (s *Synchronizer) write(ctx context.Context, op, key string, rec *domain.Record, replace bool) error {
	fields, err := s.codec.Encode(rec)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.commit(ctx, op, func(tx ports.Tx) {
		if replace {
			tx.Delete(key)
		}
		tx.HashSet(key, fields)
		tx.Expire(key, rec.TTL())
	}); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// holds reports whether rec is locked under lockID.
func (s *Synchronizer) holds(rec *domain.Record, id string, lockID int64, op string) bool {
	if rec.Locked && rec.LockID == lockID {
		return true
	}
	s.logger.Debug("Ignoring operation with stale lock token",
		"session_id", id,
		"op", op,
		"lock_id", lockID,
		"stored_lock_id", rec.LockID,
		"stored_locked", rec.Locked,
	)
	return false
}

func (s *Synchronizer) notAcquired(op, id string) {
	s.logger.Warn("Could not acquire session lock",
		"session_id", id,
		"op", op,
		"acquire_timeout", s.cfg.AcquireTimeout(),
	)
	if s.onNotAcquired == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Lock-not-acquired callback panicked", "session_id", id, "panic", r)
		}
	}()
	s.onNotAcquired(id)
}

func (s *Synchronizer) observe(op string, acquired bool, outcome string, err error) {
	switch {
	case err != nil:
		outcome = observability.OutcomeError
	case !acquired:
		outcome = observability.OutcomeNotAcquired
	}
	s.metrics.Operation(op, outcome)
}
