package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/aristath/b3cal/internal/clients/anbima"
	"github.com/aristath/b3cal/internal/config"
	"github.com/aristath/b3cal/internal/modules/calendar"
	"github.com/aristath/b3cal/internal/modules/calendar/updater"
	"github.com/aristath/b3cal/internal/reliability"
)

// newSource is replaced in tests to serve a fixed holiday list.
var newSource = func(url string, log zerolog.Logger) updater.Source {
	return anbima.NewClient(url, log)
}

func newUpdateCommand(opts *globalOptions) *cobra.Command {
	var (
		out     string
		url     string
		strict  bool
		publish bool
		timeout time.Duration
	)
	c := &cobra.Command{
		Use:   "update",
		Short: "Download the ANBIMA holiday list and rewrite the dataset file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := opts.logger(cmd)

			if out == "" {
				if out, err = opts.datasetPath(); err != nil {
					return err
				}
			}
			if url == "" {
				url = cfg.SourceURL
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			updaterOpts := []updater.Option{updater.WithStrict(strict || cfg.StrictCheck)}
			if publish {
				if !cfg.R2.Enabled() {
					return fmt.Errorf("--publish needs B3CAL_R2_ACCOUNT_ID, B3CAL_R2_ACCESS_KEY_ID, B3CAL_R2_SECRET_ACCESS_KEY and B3CAL_R2_BUCKET")
				}
				r2, err := reliability.NewR2Client(ctx, cfg.R2, log)
				if err != nil {
					return err
				}
				updaterOpts = append(updaterOpts,
					updater.WithPublisher(reliability.NewDatasetBackupService(r2, cfg.R2Prefix, cfg.R2Keep, log)))
			}

			u := updater.New(newSource(url, log), out, log, updaterOpts...)
			result, err := u.Run(ctx)
			if result == nil {
				return err
			}

			printErr := opts.emit(cmd, result, func(w io.Writer) {
				fmt.Fprintf(w, "run\t%s\n", result.RunID)
				fmt.Fprintf(w, "path\t%s\n", result.Path)
				fmt.Fprintf(w, "holidays\t%d\n", result.Count)
				fmt.Fprintf(w, "first\t%s\n", calendar.FormatDate(result.First))
				fmt.Fprintf(w, "last\t%s\n", calendar.FormatDate(result.Last))
				fmt.Fprintf(w, "missing national holidays\t%d\n", len(result.Discrepancies))
				fmt.Fprintf(w, "published\t%t\n", result.Published)
			})
			if err != nil {
				return err
			}
			return printErr
		},
	}
	c.Flags().StringVar(&out, "out", "", "dataset file to write (defaults to the dataset file the other commands read)")
	c.Flags().StringVar(&url, "url", "", "holiday workbook URL (defaults to B3CAL_SOURCE_URL or ANBIMA)")
	c.Flags().BoolVar(&strict, "strict", false, "fail when national holidays are missing from the download")
	c.Flags().BoolVar(&publish, "publish", false, "mirror the written dataset to R2")
	c.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall update timeout")
	return c
}
