package config

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/aretw0/sessionlock/pkg/domain"
	"github.com/aretw0/sessionlock/pkg/lock"
)

// Client strategies.
const (
	StrategyPooled = "pooled"
	StrategyBasic  = "basic"
)

// RetryPolicy selects how transactional writes react to store failures.
type RetryPolicy string

const (
	// RetryNone treats any write failure as fatal for the operation.
	RetryNone RetryPolicy = "none"
	// RetryOnce retries a failed write exactly once.
	RetryOnce RetryPolicy = "once"
	// RetryBackoff retries with exponential backoff up to Retry.MaxTries attempts.
	RetryBackoff RetryPolicy = "backoff"
)

// LockConfig bounds the distributed lock.
type LockConfig struct {
	// AcquireTimeoutSeconds bounds how long a caller waits to enter a critical section.
	AcquireTimeoutSeconds int `koanf:"acquire_timeout_seconds" yaml:"acquire_timeout_seconds"`
	// HoldTimeoutSeconds bounds how long a crashed holder can block others.
	HoldTimeoutSeconds int `koanf:"hold_timeout_seconds" yaml:"hold_timeout_seconds"`
	// RetryIntervalMS is the polling period while waiting for the claim.
	RetryIntervalMS int `koanf:"retry_interval_ms" yaml:"retry_interval_ms"`
}

// RetryConfig controls retries of transactional writes.
type RetryConfig struct {
	Policy   RetryPolicy `koanf:"policy" yaml:"policy"`
	MaxTries int         `koanf:"max_tries" yaml:"max_tries"`
}

// Config is the configuration of one synchronizer.
type Config struct {
	Address        string      `koanf:"address" yaml:"address"`
	Password       string      `koanf:"password" yaml:"password"`
	DB             int         `koanf:"db" yaml:"db"`
	ClientStrategy string      `koanf:"client_strategy" yaml:"client_strategy"`
	PoolSize       int         `koanf:"pool_size" yaml:"pool_size"`
	ProviderName   string      `koanf:"provider_name" yaml:"provider_name"`
	KeySeparator   string      `koanf:"key_separator" yaml:"key_separator"`
	Lock           LockConfig  `koanf:"lock" yaml:"lock"`
	Retry          RetryConfig `koanf:"retry" yaml:"retry"`
	LogLevel       string      `koanf:"log_level" yaml:"log_level"`

	bound atomic.Bool
}

// Default returns a configuration with every option set to its default.
func Default() *Config {
	return &Config{
		Address:        "localhost:6379",
		ClientStrategy: StrategyPooled,
		ProviderName:   "session",
		KeySeparator:   ":",
		Lock: LockConfig{
			AcquireTimeoutSeconds: 5,
			HoldTimeoutSeconds:    30,
			RetryIntervalMS:       50,
		},
		Retry: RetryConfig{
			Policy:   RetryNone,
			MaxTries: 3,
		},
		LogLevel: "info",
	}
}

// Validate checks the configuration. Errors wrap domain.ErrInvalidConfig.
func (c *Config) Validate() error {
	var problems []string

	if c.Address == "" {
		problems = append(problems, "address is required")
	}
	switch c.ClientStrategy {
	case StrategyPooled, StrategyBasic:
	default:
		problems = append(problems, fmt.Sprintf("client_strategy must be %q or %q, got %q", StrategyPooled, StrategyBasic, c.ClientStrategy))
	}
	if c.PoolSize < 0 {
		problems = append(problems, "pool_size must not be negative")
	}
	if c.ProviderName == "" {
		problems = append(problems, "provider_name is required")
	}
	if c.KeySeparator == "" {
		problems = append(problems, "key_separator is required")
	} else if strings.Contains(c.ProviderName, c.KeySeparator) {
		problems = append(problems, "provider_name must not contain key_separator")
	}
	if c.Lock.AcquireTimeoutSeconds <= 0 {
		problems = append(problems, "lock.acquire_timeout_seconds must be positive")
	}
	if c.Lock.HoldTimeoutSeconds <= 0 {
		problems = append(problems, "lock.hold_timeout_seconds must be positive")
	}
	if c.Lock.RetryIntervalMS <= 0 {
		problems = append(problems, "lock.retry_interval_ms must be positive")
	}
	switch c.Retry.Policy {
	case RetryNone, RetryOnce:
	case RetryBackoff:
		if c.Retry.MaxTries < 2 {
			problems = append(problems, "retry.max_tries must be at least 2 for the backoff policy")
		}
	default:
		problems = append(problems, fmt.Sprintf("retry.policy %q is not one of none, once, backoff", c.Retry.Policy))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// Bind validates the configuration and marks it as owned.
// A second call fails with domain.ErrConfigInUse.
func (c *Config) Bind() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if !c.bound.CompareAndSwap(false, true) {
		return domain.ErrConfigInUse
	}
	return nil
}

// Bound reports whether Bind has succeeded.
func (c *Config) Bound() bool {
	return c.bound.Load()
}

// AcquireTimeout returns the lock acquisition bound.
func (c *Config) AcquireTimeout() time.Duration {
	return time.Duration(c.Lock.AcquireTimeoutSeconds) * time.Second
}

// HoldTimeout returns the lock hold bound.
func (c *Config) HoldTimeout() time.Duration {
	return time.Duration(c.Lock.HoldTimeoutSeconds) * time.Second
}

// RetryInterval returns the lock polling period.
func (c *Config) RetryInterval() time.Duration {
	return time.Duration(c.Lock.RetryIntervalMS) * time.Millisecond
}

// SessionKey returns the store key of a session: <provider><sep><id>.
func (c *Config) SessionKey(id string) string {
	return c.ProviderName + c.KeySeparator + id
}

// LockKey returns the claim key of a session: <sessionKey><sep>lock.
func (c *Config) LockKey(id string) string {
	return lock.ClaimKey(c.SessionKey(id), c.KeySeparator)
}
