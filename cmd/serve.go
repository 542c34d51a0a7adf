package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/okian/salestrack/internal/adapters/http/api"
	"github.com/okian/salestrack/internal/app"
	"github.com/okian/salestrack/pkg/logger"
	"github.com/okian/salestrack/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func (c *cli) newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Root context with cancel on SIGINT/SIGTERM.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return c.serve(ctx)
		},
	}
}

func (c *cli) serve(ctx context.Context) error {
	svc, closeFn, err := c.openService(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	svc.OnChange(func(ctx context.Context, ch app.Change) {
		c.log.Debug(ctx, "dashboard changed",
			logger.String("kind", ch.Kind.String()),
			logger.Int64("rep", ch.RepID),
		)
	})

	srv := &http.Server{
		Addr:              c.cfg.Addr,
		Handler:           api.NewServer(svc, api.WithLogger(c.log.Named("api"))).Router(),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c.log.Info(gctx, "starting HTTP server",
			logger.String("addr", c.cfg.Addr),
			logger.Any("timezone", svc.Location()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		c.log.Info(gctx, "shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		runSystemMetricsUpdater(gctx, c.cfg.MetricsInterval())
		return nil
	})

	err = g.Wait()
	c.log.Info(ctx, "server stopped")
	return err
}

// runSystemMetricsUpdater refreshes process gauges until ctx is done.
func runSystemMetricsUpdater(ctx context.Context, interval time.Duration) {
	updateSystemMetrics()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
