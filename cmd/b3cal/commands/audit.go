package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aristath/b3cal/internal/modules/calendar"
	"github.com/aristath/b3cal/internal/modules/calendar/updater"
)

func newAuditCommand(opts *globalOptions) *cobra.Command {
	var strict bool
	c := &cobra.Command{
		Use:   "audit",
		Short: "Check the dataset against rule-computed national holidays and summarize it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cal, err := opts.calendar(cmd)
			if err != nil {
				return err
			}

			missing := updater.CrossCheck(cal.Holidays())
			summary := cal.Stats()

			report := struct {
				Calendar string                `json:"calendar"`
				Missing  []updater.Discrepancy `json:"missing"`
				Summary  calendar.Summary      `json:"summary"`
			}{cal.String(), missing, summary}

			if err := opts.emit(cmd, report, func(w io.Writer) {
				fmt.Fprintln(w, report.Calendar)
				fmt.Fprintf(w, "mean business days/year\t%.1f\n", summary.MeanBusinessDays)
				fmt.Fprintf(w, "stddev\t%.2f\n", summary.StdDevBusinessDays)
				fmt.Fprintf(w, "mean holidays/year\t%.1f\n", summary.MeanHolidays)
				fmt.Fprintf(w, "missing national holidays\t%d\n", len(missing))
				for _, d := range missing {
					fmt.Fprintf(w, "  %s\t%s\n", calendar.FormatDate(d.Date), d.Name)
				}
			}); err != nil {
				return err
			}

			if strict && len(missing) > 0 {
				return fmt.Errorf("%d national holidays missing from dataset", len(missing))
			}
			return nil
		},
	}
	c.Flags().BoolVar(&strict, "strict", false, "exit non-zero when national holidays are missing")
	return c
}
