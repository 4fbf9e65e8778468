package session

import (
	"log/slog"
	"time"

	"github.com/aretw0/sessionlock/pkg/observability"
	"github.com/aretw0/sessionlock/pkg/ports"
)

// Option configures the Synchronizer.
type Option func(*Synchronizer)

// WithLogger configures a logger for the Synchronizer.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synchronizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLocker replaces the default claim-key locker.
func WithLocker(locker ports.Locker) Option {
	return func(s *Synchronizer) {
		s.locker = locker
	}
}

// WithSerializer sets the payload serializer. The default is codec.GobSerializer.
func WithSerializer(serializer ports.ItemSerializer) Option {
	return func(s *Synchronizer) {
		s.serializer = serializer
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Synchronizer) {
		s.metrics = m
	}
}

// WithLockNotAcquired registers a callback invoked with the session id whenever the
// lock could not be acquired in time. Panics raised by fn are recovered and logged.
func WithLockNotAcquired(fn func(sessionID string)) Option {
	return func(s *Synchronizer) {
		s.onNotAcquired = fn
	}
}

// WithClock overrides the time source used for created and lock timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Synchronizer) {
		if now != nil {
			s.now = now
		}
	}
}
