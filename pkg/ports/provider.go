package ports

import (
	"context"
	"time"

	"github.com/aretw0/sessionlock/pkg/domain"
)

// ItemResult is the outcome of a shared or exclusive read.
type ItemResult struct {
	// Found is false when the session is absent, malformed, or the lock could not be acquired.
	Found bool

	// Items is the payload. It is nil when Locked is true.
	Items *domain.Items

	// Timeout is the session timeout in minutes.
	Timeout int

	// Locked reports that another holder owns exclusive access.
	Locked bool

	// LockID is the current lock token. After an exclusive read it is the caller's token.
	LockID int64

	// LockAge is how long the foreign lock has been held. Only set when Locked is true.
	LockAge time.Duration

	// Actions holds the flags observed before they were cleared.
	Actions domain.ActionFlags
}

// Provider is the session lifecycle a hosting layer drives.
// Lock-token mismatches and unavailable locks are not errors; store failures are.
type Provider interface {
	CreateUninitialized(ctx context.Context, id string, timeout int) error
	GetItem(ctx context.Context, id string) (ItemResult, error)
	GetItemExclusive(ctx context.Context, id string) (ItemResult, error)
	ReleaseItemExclusive(ctx context.Context, id string, lockID int64, timeout int) error
	SetAndReleaseItemExclusive(ctx context.Context, id string, lockID int64, newItem bool, items *domain.Items, timeout int) error
	RemoveItem(ctx context.Context, id string, lockID int64) error
	ResetItemTimeout(ctx context.Context, id string, timeout int) error
}
