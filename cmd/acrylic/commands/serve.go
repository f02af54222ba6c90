package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/acrylic/tracker/internal/domain/entities"
	"github.com/acrylic/tracker/internal/infrastructure/server"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var refreshInterval time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Acrylic API server",
		Long:  "Start the HTTP API the app and widget surfaces read from. Assignments are refetched on start and then every --refresh-interval.",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().DurationVar(&refreshInterval, "refresh-interval", 15*time.Minute, "background refresh period, 0 disables it")

	cmd.RunE = withApp(opts, func(ctx context.Context, a *app) error {
		ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if a.config.JWT.UsesDefaultJWTSecret() {
			a.logger.Warn("Using the default JWT secret; set JWT_SECRET before exposing the server")
		}

		srv, err := server.New(a.config, server.Services{
			Assignments: a.assignments,
			Courses:     a.courses,
			Hidden:      a.hidden,
			Profile:     a.profile,
			Auth:        a.auth,
			Store:       a.store,
		}, a.metrics, a.logger)
		if err != nil {
			return fmt.Errorf("failed to initialize server: %w", err)
		}

		go refreshLoop(ctx, a, refreshInterval)

		errCh := make(chan error, 1)
		go func() {
			addr := fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port)
			a.logger.Infow("Starting Acrylic API server",
				"address", addr,
				"environment", a.config.App.Environment,
				"storage", a.config.Storage.Driver,
			)
			errCh <- srv.Start(addr)
		}()

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return cmd
}

// refreshLoop refetches assignments immediately and then every interval
// until ctx is done.
func refreshLoop(ctx context.Context, a *app, interval time.Duration) {
	refresh := func() {
		if _, err := a.assignments.Refresh(ctx); err != nil && !errors.Is(err, entities.ErrStaleRefresh) && ctx.Err() == nil {
			a.logger.Warnw("Background refresh failed", "error", err)
		}
	}

	refresh()
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refresh()
		}
	}
}
