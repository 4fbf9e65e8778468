package ports

import (
	"context"
	"time"
)

// Handle is a held claim. Release is idempotent.
type Handle interface {
	Key() string
	Release(ctx context.Context) error
}

// Locker defines the claim-key mutual exclusion used around every read-modify-write cycle.
type Locker interface {
	// Acquire polls for the claim on key until acquireTimeout elapses.
	// A claim that is never released expires after holdTimeout.
	// Failing to acquire within acquireTimeout is reported as (nil, false, nil).
	Acquire(ctx context.Context, key string, acquireTimeout, holdTimeout time.Duration) (Handle, bool, error)
}
