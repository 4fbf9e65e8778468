// Package lock implements the claim-key mutual exclusion guarding each session.
//
// A claim is a plain store key set with set-if-absent and a hold TTL, so a holder
// that crashes stops blocking others once the TTL runs out. The claim value is a
// random token and release only deletes a claim that still carries it.
package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/sessionlock/pkg/ports"
	"github.com/google/uuid"
)

// DefaultRetryInterval is the polling period while a claim is held by someone else.
const DefaultRetryInterval = 50 * time.Millisecond

// ClaimKey derives the claim key of a session key.
func ClaimKey(sessionKey, separator string) string {
	return sessionKey + separator + "lock"
}

// Locker implements ports.Locker on top of a ports.Store.
type Locker struct {
	store    ports.Store
	interval time.Duration
}

var _ ports.Locker = (*Locker)(nil)

// Option configures the Locker.
type Option func(*Locker)

// WithRetryInterval sets the polling period.
func WithRetryInterval(d time.Duration) Option {
	return func(l *Locker) {
		if d > 0 {
			l.interval = d
		}
	}
}

// New creates a new Locker.
func New(store ports.Store, opts ...Option) *Locker {
	l := &Locker{
		store:    store,
		interval: DefaultRetryInterval,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Acquire claims key, polling until acquireTimeout elapses.
// It returns (nil, false, nil) when the claim stays held by someone else.
// Cancellation of ctx itself is returned as an error.
func (l *Locker) Acquire(ctx context.Context, key string, acquireTimeout, holdTimeout time.Duration) (ports.Handle, bool, error) {
	token := uuid.NewString()

	waitCtx, cancel := context.WithTimeout(ctx, acquireTimeout)
	defer cancel()

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	// Each attempt runs on ctx so one applied by the server is never reported as lost.
	// The acquire deadline is only checked between attempts.
	for {
		ok, err := l.store.SetIfAbsent(ctx, key, token, holdTimeout)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				// The attempt may still have landed.
				_, _ = l.store.CompareAndDelete(context.WithoutCancel(ctx), key, token)
				return nil, false, ctxErr
			}
			return nil, false, fmt.Errorf("acquire %s: %w", key, err)
		}
		if ok {
			return &handle{store: l.store, key: key, token: token}, true, nil
		}

		select {
		case <-waitCtx.Done():
			if err := ctx.Err(); err != nil {
				return nil, false, err
			}
			return nil, false, nil
		case <-ticker.C:
		}
	}
}

type handle struct {
	store ports.Store
	key   string
	token string

	once sync.Once
	err  error
}

func (h *handle) Key() string {
	return h.key
}

// Token returns the random value stored in the claim key.
func (h *handle) Token() string {
	return h.token
}

// Release deletes the claim if it is still ours. Subsequent calls return the first result.
func (h *handle) Release(ctx context.Context) error {
	h.once.Do(func() {
		if _, err := h.store.CompareAndDelete(ctx, h.key, h.token); err != nil {
			h.err = fmt.Errorf("release %s: %w", h.key, err)
		}
	})
	return h.err
}
