package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/sessionlock/internal/logging"
	"github.com/aretw0/sessionlock/pkg/adapters/memory"
	"github.com/aretw0/sessionlock/pkg/adapters/redis"
	"github.com/aretw0/sessionlock/pkg/config"
	"github.com/aretw0/sessionlock/pkg/ports"
	"github.com/aretw0/sessionlock/pkg/session"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sessionctl",
	Short: "sessionctl operates sessions shared through Redis",
	Long: `sessionctl hosts the session synchronizer over HTTP and lets operators
inspect, refresh and remove sessions and their claim keys.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().String("addr", "", "Redis address, overrides the configuration")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
}

// loadConfig resolves the configuration from file, environment and flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Address = addr
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}

type backingStore interface {
	ports.Store
	Ping(ctx context.Context) error
	Close() error
}

// app is what every store-backed command works with.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	store  backingStore
	sync   *session.Synchronizer
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("Failed to close store", "err", err)
	}
}

func openApp(ctx context.Context, cmd *cobra.Command, opts ...session.Option) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	var store backingStore
	if inMemory, _ := cmd.Flags().GetBool("memory"); inMemory {
		logger.Warn("Using in-memory store, sessions are not shared with other processes")
		store = memory.NewStore()
	} else if store, err = redis.NewStore(ctx, cfg); err != nil {
		return nil, err
	}

	opts = append([]session.Option{
		session.WithLogger(logger),
		session.WithLockNotAcquired(func(id string) {
			logger.Warn("Session lock busy", "session_id", id)
		}),
	}, opts...)
	sync, err := session.New(cfg, store, opts...)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, store: store, sync: sync}, nil
}
