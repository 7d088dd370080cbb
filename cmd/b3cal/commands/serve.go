package commands

import (
	"github.com/spf13/cobra"

	"github.com/aristath/b3cal/internal/config"
	"github.com/aristath/b3cal/internal/server"
	"github.com/aristath/b3cal/pkg/logger"
)

func newServeCommand(opts *globalOptions) *cobra.Command {
	var port int
	c := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with scheduled dataset refreshes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cfg.HolidaysFile, err = opts.datasetPath(); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			level := cfg.LogLevel
			if cmd.Flags().Changed("log-level") {
				level = opts.logLevel
			}
			log := logger.New(logger.Config{
				Level:  level,
				Pretty: cfg.LogPretty,
				Output: cmd.ErrOrStderr(),
			})
			logger.SetGlobalLogger(log)

			return server.Run(cmd.Context(), cfg, log, Version)
		},
	}
	c.Flags().IntVar(&port, "port", 8080, "listen port (overrides B3CAL_PORT)")
	return c
}
