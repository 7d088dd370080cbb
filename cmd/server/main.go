// Package main is the entry point of the b3cal HTTP service. It serves
// holiday and business-day queries for the Brazilian financial market and
// refreshes the holiday dataset from ANBIMA on a schedule.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aristath/b3cal/internal/config"
	"github.com/aristath/b3cal/internal/server"
	"github.com/aristath/b3cal/pkg/logger"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})
	logger.SetGlobalLogger(log)

	log.Info().Str("version", version).Msg("Starting b3cal")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, cfg, log, version); err != nil {
		log.Fatal().Err(err).Msg("Server exited with error")
	}
}
