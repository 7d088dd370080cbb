package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/b3cal/internal/config"
	"github.com/aristath/b3cal/internal/di"
)

// Run wires the service, starts the scheduler and the HTTP server, and
// blocks until ctx is cancelled or the listener fails
func Run(ctx context.Context, cfg *config.Config, log zerolog.Logger, version string) error {
	container, err := di.Wire(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to wire dependencies: %w", err)
	}

	container.Scheduler.Start()
	defer container.Scheduler.Stop()

	srv := New(Config{
		Log:       log,
		Provider:  container.Provider,
		Refresher: container.Updater,
		Scheduler: container.Scheduler,
		Port:      cfg.Port,
		DevMode:   cfg.DevMode,
		Version:   version,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		return err
	}

	log.Info().Msg("Server stopped")
	return nil
}
