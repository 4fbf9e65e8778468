package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/sessionlock/pkg/config"
	backend "github.com/redis/go-redis/v9"
)

// ClientOptions holds Redis connection configuration.
type ClientOptions struct {
	Addr     string // Redis server address (host:port)
	Password string // Redis password (optional)
	DB       int    // Redis database number
	Strategy string // config.StrategyPooled or config.StrategyBasic
	PoolSize int    // pooled strategy only; 0 keeps the go-redis default
}

// OptionsFromConfig extracts the connection settings of cfg.
func OptionsFromConfig(cfg *config.Config) ClientOptions {
	return ClientOptions{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		Strategy: cfg.ClientStrategy,
		PoolSize: cfg.PoolSize,
	}
}

// NewClient creates a go-redis client for the chosen strategy and verifies the connection.
//
// The pooled strategy shares a connection pool across concurrent operations.
// The basic strategy holds a single connection, serializing round-trips of the process.
func NewClient(ctx context.Context, opts ClientOptions) (*backend.Client, error) {
	ro := &backend.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	switch opts.Strategy {
	case config.StrategyBasic:
		ro.PoolSize = 1
		ro.MinIdleConns = 0
	case config.StrategyPooled, "":
		ro.PoolSize = opts.PoolSize
		ro.MinIdleConns = 2
	default:
		return nil, fmt.Errorf("unknown client strategy %q", opts.Strategy)
	}

	client := backend.NewClient(ro)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return client, nil
}

// NewStore connects using cfg and returns a ready Store.
func NewStore(ctx context.Context, cfg *config.Config) (*Store, error) {
	client, err := NewClient(ctx, OptionsFromConfig(cfg))
	if err != nil {
		return nil, err
	}
	return NewFromClient(client), nil
}
