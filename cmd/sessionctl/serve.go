package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpAdapter "github.com/aretw0/sessionlock/pkg/adapters/http"
	"github.com/aretw0/sessionlock/pkg/observability"
	"github.com/aretw0/sessionlock/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const shutdownGrace = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the session HTTP server",
	Long:  `Serves the session operations as a JSON API over HTTP, with Prometheus metrics on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		listen, _ := cmd.Flags().GetString("listen")
		rateLimit, _ := cmd.Flags().GetInt("rate-limit")

		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics := observability.NewMetrics(reg)

		rt, err := openApp(cmd.Context(), cmd, session.WithMetrics(metrics))
		if err != nil {
			return err
		}
		defer rt.Close()

		r := chi.NewRouter()
		r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		r.Mount("/", httpAdapter.NewHandler(rt.sync,
			httpAdapter.WithLogger(rt.logger),
			httpAdapter.WithHealth(rt.store.Ping),
			httpAdapter.WithRateLimit(rateLimit, time.Minute),
		))

		srv := &http.Server{
			Addr:              listen,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			rt.logger.Info("Starting session server", "addr", srv.Addr, "redis", rt.cfg.Address)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err

		case sig := <-shutdown:
			rt.logger.Info("Start shutdown", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				rt.logger.Error("Graceful shutdown did not complete", "grace", shutdownGrace, "err", err)
				if err := srv.Close(); err != nil {
					rt.logger.Error("Error killing server", "err", err)
				}
			}
			rt.logger.Info("Session server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("listen", "l", ":8080", "Address to listen on")
	serveCmd.Flags().Int("rate-limit", 0, "Session requests allowed per client IP per minute (0 disables)")
	serveCmd.Flags().Bool("memory", false, "Keep sessions in process memory instead of Redis")
}
