package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/aristath/b3cal/internal/modules/calendar"
)

func newHolidayCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "holiday <date>...",
		Short: "Report whether each date is a market holiday",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dates, err := calendar.ParseDates(args)
			if err != nil {
				return err
			}
			cal, err := opts.calendar(cmd)
			if err != nil {
				return err
			}

			type answer struct {
				Date    string `json:"date"`
				Holiday bool   `json:"holiday"`
				Name    string `json:"name,omitempty"`
			}
			flags := cal.AreHolidays(dates)
			answers := make([]answer, len(dates))
			for i, d := range dates {
				name, _ := cal.Name(d)
				answers[i] = answer{Date: calendar.FormatDate(d), Holiday: flags[i], Name: name}
			}

			return opts.emit(cmd, answers, func(w io.Writer) {
				for _, a := range answers {
					fmt.Fprintf(w, "%s\t%t\t%s\n", a.Date, a.Holiday, a.Name)
				}
			})
		},
	}
}

type neighbourLookup func(cal *calendar.Calendar, d time.Time, n int) []calendar.Holiday

func newNextCommand(opts *globalOptions) *cobra.Command {
	return newNeighbourCommand(opts, "next", "List the holidays strictly after a date",
		(*calendar.Calendar).NextHoliday)
}

func newPreviousCommand(opts *globalOptions) *cobra.Command {
	return newNeighbourCommand(opts, "previous", "List the holidays strictly before a date",
		(*calendar.Calendar).PreviousHoliday)
}

func newNeighbourCommand(opts *globalOptions, use, short string, lookup neighbourLookup) *cobra.Command {
	var n int
	c := &cobra.Command{
		Use:   use + " <date>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := calendar.ParseDate(args[0])
			if err != nil {
				return err
			}
			cal, err := opts.calendar(cmd)
			if err != nil {
				return err
			}

			rows := holidayRows(lookup(cal, d, n))
			return opts.emit(cmd, rows, func(w io.Writer) { printHolidays(w, rows) })
		},
	}
	c.Flags().IntVarP(&n, "count", "n", 1, "number of holidays to list")
	return c
}

func newRangeCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "range <start> <end>",
		Short: "List the holidays between two dates, inclusive",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dates, err := calendar.ParseDates(args)
			if err != nil {
				return err
			}
			cal, err := opts.calendar(cmd)
			if err != nil {
				return err
			}

			rows := holidayRows(cal.InRange(dates[0], dates[1]))
			return opts.emit(cmd, rows, func(w io.Writer) { printHolidays(w, rows) })
		},
	}
}

func newBDaysCommand(opts *globalOptions) *cobra.Command {
	var (
		end     string
		periods int
	)
	c := &cobra.Command{
		Use:   "bdays <start>",
		Short: "List business days from start, bounded by --end or --periods",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := calendar.ParseDate(args[0])
			if err != nil {
				return err
			}

			var rangeOpts []calendar.RangeOption
			if cmd.Flags().Changed("end") {
				d, err := calendar.ParseDate(end)
				if err != nil {
					return err
				}
				rangeOpts = append(rangeOpts, calendar.WithEnd(d))
			}
			if cmd.Flags().Changed("periods") {
				rangeOpts = append(rangeOpts, calendar.WithPeriods(periods))
			}

			cal, err := opts.calendar(cmd)
			if err != nil {
				return err
			}
			days, err := cal.BDateRange(start, rangeOpts...)
			if err != nil {
				return err
			}

			out := make([]string, len(days))
			for i, d := range days {
				out[i] = calendar.FormatDate(d)
			}
			return opts.emit(cmd, out, func(w io.Writer) {
				for _, d := range out {
					fmt.Fprintln(w, d)
				}
			})
		},
	}
	c.Flags().StringVar(&end, "end", "", "inclusive end date")
	c.Flags().IntVar(&periods, "periods", 0, "number of business days to generate")
	return c
}

func newCountCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "count <start> <end>",
		Short: "Count business days between two dates, inclusive",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dates, err := calendar.ParseDates(args)
			if err != nil {
				return err
			}
			cal, err := opts.calendar(cmd)
			if err != nil {
				return err
			}

			n := cal.BDateCount(dates[0], dates[1])
			return opts.emit(cmd, map[string]int{"count": n}, func(w io.Writer) {
				fmt.Fprintln(w, n)
			})
		},
	}
}
