package domain

import (
	"fmt"
	"math"
	"time"
)

// MaxTimeout is the largest session timeout, in minutes, whose duration fits in a time.Duration.
const MaxTimeout = int(math.MaxInt64 / int64(time.Minute))

// Record represents the persisted state of one visitor session.
type Record struct {
	// Created is set once at first write and never modified afterward.
	Created time.Time

	// Locked is true while a writer holds exclusive access.
	Locked bool

	// LockID identifies the current exclusive-access grant.
	// It is incremented each time exclusive access is granted and never decreases.
	LockID int64

	// LockDate is the moment the current lock was acquired.
	LockDate time.Time

	// Timeout is the session expiry in minutes, re-applied as the store TTL on every write.
	Timeout int

	// Flags holds the pending action state (see ActionInitializeItem).
	Flags ActionFlags

	// Items is the user-visible payload.
	Items *Items
}

// NewRecord creates an unlocked record with an empty payload.
func NewRecord(now time.Time, timeout int) *Record {
	return &Record{
		Created: now.UTC(),
		Timeout: timeout,
		Flags:   ActionNone,
		Items:   NewItems(),
	}
}

// TTL returns the store expiry for the record.
func (r *Record) TTL() time.Duration {
	return TimeoutDuration(r.Timeout)
}

// LockAge returns how long the current lock has been held, or 0 if unlocked.
func (r *Record) LockAge(now time.Time) time.Duration {
	if !r.Locked || r.LockDate.IsZero() {
		return 0
	}
	return now.Sub(r.LockDate)
}

// TimeoutDuration converts a timeout in minutes to a duration.
func TimeoutDuration(minutes int) time.Duration {
	return time.Duration(minutes) * time.Minute
}

// ValidateTimeout reports whether minutes is a usable session timeout.
// Errors wrap ErrInvalidTimeout.
func ValidateTimeout(minutes int) error {
	if minutes <= 0 || minutes > MaxTimeout {
		return fmt.Errorf("%w: got %d, want 1..%d", ErrInvalidTimeout, minutes, MaxTimeout)
	}
	return nil
}
