// Package commands builds the b3cal command tree.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/aristath/b3cal/internal/config"
	"github.com/aristath/b3cal/internal/modules/calendar"
	"github.com/aristath/b3cal/pkg/logger"
)

// Version is reported by --version and the serve command.
var Version = "dev"

type globalOptions struct {
	file     string
	logLevel string
	pretty   bool
	asJSON   bool
}

// NewRootCommand builds the command tree. Each call returns an independent
// tree so flags do not leak between executions.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	c := &cobra.Command{
		Use:           "b3cal",
		Short:         "Brazilian financial-market holidays and business days",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := c.PersistentFlags()
	flags.StringVar(&opts.file, "file", "",
		"holiday dataset CSV (defaults to B3CAL_HOLIDAYS_FILE under B3CAL_DATA_DIR); the embedded dataset is used when missing")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	flags.BoolVar(&opts.pretty, "pretty", true, "human-readable log output on stderr")
	flags.BoolVar(&opts.asJSON, "json", false, "print results as JSON")

	c.AddCommand(
		newHolidayCommand(opts),
		newNextCommand(opts),
		newPreviousCommand(opts),
		newRangeCommand(opts),
		newBDaysCommand(opts),
		newCountCommand(opts),
		newUpdateCommand(opts),
		newAuditCommand(opts),
		newServeCommand(opts),
	)
	return c
}

func (o *globalOptions) logger(cmd *cobra.Command) zerolog.Logger {
	return logger.New(logger.Config{
		Level:  o.logLevel,
		Pretty: o.pretty,
		Output: cmd.ErrOrStderr(),
	})
}

// datasetPath is the file every command reads and writes: --file when given,
// otherwise the path the server configuration resolves.
func (o *globalOptions) datasetPath() (string, error) {
	if o.file != "" {
		return filepath.Abs(o.file)
	}
	return config.HolidaysPath()
}

func (o *globalOptions) calendar(cmd *cobra.Command) (*calendar.Calendar, error) {
	path, err := o.datasetPath()
	if err != nil {
		return nil, err
	}
	return calendar.Load(path, o.logger(cmd))
}

// emit writes v as indented JSON when --json is set, otherwise calls text
func (o *globalOptions) emit(cmd *cobra.Command, v interface{}, text func(w io.Writer)) error {
	out := cmd.OutOrStdout()
	if o.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	text(tw)
	return tw.Flush()
}

type holidayRow struct {
	Date string `json:"date"`
	Name string `json:"name,omitempty"`
}

func holidayRows(holidays []calendar.Holiday) []holidayRow {
	rows := make([]holidayRow, len(holidays))
	for i, h := range holidays {
		rows[i] = holidayRow{Date: calendar.FormatDate(h.Date), Name: h.Name}
	}
	return rows
}

func printHolidays(w io.Writer, rows []holidayRow) {
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\n", r.Date, r.Name)
	}
}
