package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/sessionlock/pkg/config"
	"github.com/aretw0/sessionlock/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5*time.Second, cfg.AcquireTimeout())
	assert.Equal(t, 30*time.Second, cfg.HoldTimeout())
	assert.Equal(t, 50*time.Millisecond, cfg.RetryInterval())
	assert.Equal(t, config.RetryNone, cfg.Retry.Policy)
}

func TestConfig_Keys(t *testing.T) {
	cfg := config.Default()
	cfg.ProviderName = "shop"
	cfg.KeySeparator = "|"

	assert.Equal(t, "shop|abc", cfg.SessionKey("abc"))
	assert.Equal(t, "shop|abc|lock", cfg.LockKey("abc"))
}

func TestConfig_Validate(t *testing.T) {
	cases := map[string]func(*config.Config){
		"no address":         func(c *config.Config) { c.Address = "" },
		"bad strategy":       func(c *config.Config) { c.ClientStrategy = "sharded" },
		"negative pool":      func(c *config.Config) { c.PoolSize = -1 },
		"no provider":        func(c *config.Config) { c.ProviderName = "" },
		"no separator":       func(c *config.Config) { c.KeySeparator = "" },
		"separator in name":  func(c *config.Config) { c.ProviderName = "a:b" },
		"zero acquire":       func(c *config.Config) { c.Lock.AcquireTimeoutSeconds = 0 },
		"zero hold":          func(c *config.Config) { c.Lock.HoldTimeoutSeconds = 0 },
		"zero poll":          func(c *config.Config) { c.Lock.RetryIntervalMS = 0 },
		"unknown retry":      func(c *config.Config) { c.Retry.Policy = "forever" },
		"backoff single try": func(c *config.Config) { c.Retry = config.RetryConfig{Policy: config.RetryBackoff, MaxTries: 1} },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), domain.ErrInvalidConfig)
		})
	}
}

func TestConfig_BindOnce(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Bind())
	assert.True(t, cfg.Bound())
	assert.ErrorIs(t, cfg.Bind(), domain.ErrConfigInUse)
}

func TestConfig_BindRejectsInvalid(t *testing.T) {
	cfg := config.Default()
	cfg.Address = ""
	assert.ErrorIs(t, cfg.Bind(), domain.ErrInvalidConfig)
	assert.False(t, cfg.Bound(), "an invalid config must stay unbound")
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sessionlock.yaml")
	content := `
address: "redis.internal:6380"
client_strategy: basic
provider_name: shop
key_separator: "/"
lock:
  acquire_timeout_seconds: 2
  hold_timeout_seconds: 90
retry:
  policy: once
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("SESSIONLOCK_LOCK__HOLD_TIMEOUT_SECONDS", "120")
	t.Setenv("SESSIONLOCK_LOG_LEVEL", "debug")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "redis.internal:6380", cfg.Address)
	assert.Equal(t, config.StrategyBasic, cfg.ClientStrategy)
	assert.Equal(t, "shop/x/lock", cfg.LockKey("x"))
	assert.Equal(t, 2*time.Second, cfg.AcquireTimeout())
	assert.Equal(t, 120*time.Second, cfg.HoldTimeout(), "env overrides file")
	assert.Equal(t, 50*time.Millisecond, cfg.RetryInterval(), "unset keys keep defaults")
	assert.Equal(t, config.RetryOnce, cfg.Retry.Policy)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.Bound())
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := config.NewLoader(config.WithEnvPrefix("SESSIONLOCK_TEST_")).Load()
	require.NoError(t, err)
	assert.Equal(t, config.Default().Address, cfg.Address)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("client_strategy: sharded\n"), 0o644))

	_, err := config.Load(path)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}
