package session

import (
	"context"
	"errors"
	"time"

	"github.com/aretw0/sessionlock/pkg/config"
	"github.com/aretw0/sessionlock/pkg/ports"
	"github.com/cenkalti/backoff/v5"
)

// commit applies fn as one store transaction under the configured retry policy.
// Retrying is safe because a transaction applies all of its commands or none.
func (s *Synchronizer) commit(ctx context.Context, op string, fn func(ports.Tx)) error {
	attempt := func() (struct{}, error) {
		err := s.store.Transaction(ctx, fn)
		if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}

	switch s.cfg.Retry.Policy {
	case config.RetryOnce:
		_, err := attempt()
		if err == nil {
			return nil
		}
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			return permanent.Unwrap()
		}
		s.logger.Warn("Transactional write failed, retrying once", "op", op, "err", err)
		_, err = attempt()
		if errors.As(err, &permanent) {
			return permanent.Unwrap()
		}
		return err

	case config.RetryBackoff:
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = 20 * time.Millisecond
		b.MaxInterval = time.Second
		_, err := backoff.Retry(ctx, attempt,
			backoff.WithBackOff(b),
			backoff.WithMaxTries(uint(s.cfg.Retry.MaxTries)),
			backoff.WithNotify(func(err error, next time.Duration) {
				s.logger.Warn("Transactional write failed, backing off", "op", op, "err", err, "next", next)
			}),
		)
		return err

	default:
		return s.store.Transaction(ctx, fn)
	}
}
