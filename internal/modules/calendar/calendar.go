package calendar

import (
	"fmt"
	"iter"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Holiday is a single market holiday.
type Holiday struct {
	Date time.Time `json:"date" msgpack:"date"`
	Name string    `json:"name,omitempty" msgpack:"name,omitempty"`
}

// Calendar is an immutable, ascending holiday set.
type Calendar struct {
	holidays []Holiday
	log      zerolog.Logger
}

// New builds a Calendar from holidays in any order. Dates are normalized,
// sorted, and duplicates collapsed (the first non-empty name wins).
func New(holidays []Holiday, log zerolog.Logger) *Calendar {
	sorted := make([]Holiday, 0, len(holidays))
	for _, h := range holidays {
		sorted = append(sorted, Holiday{Date: Normalize(h.Date), Name: h.Name})
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	unique := sorted[:0]
	for _, h := range sorted {
		if n := len(unique); n > 0 && unique[n-1].Date.Equal(h.Date) {
			if unique[n-1].Name == "" {
				unique[n-1].Name = h.Name
			}
			continue
		}
		unique = append(unique, h)
	}

	return &Calendar{
		holidays: unique,
		log:      log.With().Str("component", "calendar").Logger(),
	}
}

// Len returns the number of holidays.
func (c *Calendar) Len() int {
	return len(c.holidays)
}

// Holidays returns a copy of the holiday set.
func (c *Calendar) Holidays() []Holiday {
	return append([]Holiday(nil), c.holidays...)
}

// Dates returns the holiday dates in ascending order.
func (c *Calendar) Dates() []time.Time {
	dates := make([]time.Time, len(c.holidays))
	for i, h := range c.holidays {
		dates[i] = h.Date
	}
	return dates
}

// All iterates the holidays in ascending order.
func (c *Calendar) All() iter.Seq[Holiday] {
	return func(yield func(Holiday) bool) {
		for _, h := range c.holidays {
			if !yield(h) {
				return
			}
		}
	}
}

// First returns the earliest holiday date, or false for an empty calendar.
func (c *Calendar) First() (time.Time, bool) {
	if len(c.holidays) == 0 {
		return time.Time{}, false
	}
	return c.holidays[0].Date, true
}

// Last returns the latest holiday date, or false for an empty calendar.
func (c *Calendar) Last() (time.Time, bool) {
	if len(c.holidays) == 0 {
		return time.Time{}, false
	}
	return c.holidays[len(c.holidays)-1].Date, true
}

// Covers reports whether d lies within [First, Last].
func (c *Calendar) Covers(d time.Time) bool {
	if len(c.holidays) == 0 {
		return false
	}
	d = Normalize(d)
	return !d.Before(c.holidays[0].Date) && !d.After(c.holidays[len(c.holidays)-1].Date)
}

func (c *Calendar) String() string {
	n := len(c.holidays)
	if n == 0 {
		return "Calendar[]"
	}

	var parts []string
	if n <= 6 {
		for _, h := range c.holidays {
			parts = append(parts, FormatDate(h.Date))
		}
	} else {
		for _, h := range c.holidays[:3] {
			parts = append(parts, FormatDate(h.Date))
		}
		parts = append(parts, "...")
		for _, h := range c.holidays[n-3:] {
			parts = append(parts, FormatDate(h.Date))
		}
	}
	return fmt.Sprintf("Calendar[%s] (%d holidays)", strings.Join(parts, " "), n)
}

// advise logs a warning when d falls outside the loaded holiday range.
func (c *Calendar) advise(op string, d time.Time) {
	if c.Covers(d) {
		return
	}
	ev := c.log.Warn().Str("op", op).Str("date", FormatDate(d))
	if first, ok := c.First(); ok {
		last, _ := c.Last()
		ev = ev.Str("first", FormatDate(first)).Str("last", FormatDate(last))
	}
	ev.Msg("Date is out of range of available holidays")
}

// lowerBound returns the index of the first holiday on or after d.
func (c *Calendar) lowerBound(d time.Time) int {
	return sort.Search(len(c.holidays), func(i int) bool {
		return !c.holidays[i].Date.Before(d)
	})
}

// upperBound returns the index of the first holiday strictly after d.
func (c *Calendar) upperBound(d time.Time) int {
	return sort.Search(len(c.holidays), func(i int) bool {
		return c.holidays[i].Date.After(d)
	})
}

func (c *Calendar) contains(d time.Time) bool {
	i := c.lowerBound(d)
	return i < len(c.holidays) && c.holidays[i].Date.Equal(d)
}

// IsHoliday reports whether d is a market holiday.
func (c *Calendar) IsHoliday(d time.Time) bool {
	d = Normalize(d)
	c.advise("is_holiday", d)
	return c.contains(d)
}

// AreHolidays answers IsHoliday for every date, in order. A single advisory
// is logged when any of the dates is out of range.
func (c *Calendar) AreHolidays(dates []time.Time) []bool {
	result := make([]bool, len(dates))
	outside := 0
	for i, d := range dates {
		d = Normalize(d)
		if !c.Covers(d) {
			outside++
		}
		result[i] = c.contains(d)
	}
	if outside > 0 {
		c.log.Warn().
			Str("op", "is_holiday").
			Int("out_of_range", outside).
			Int("total", len(dates)).
			Msg("Dates are out of range of available holidays")
	}
	return result
}

// IsHolidayString parses s and reports whether it is a market holiday.
func (c *Calendar) IsHolidayString(s string) (bool, error) {
	d, err := ParseDate(s)
	if err != nil {
		return false, err
	}
	return c.IsHoliday(d), nil
}

// Name returns the holiday name for d, if d is a holiday.
func (c *Calendar) Name(d time.Time) (string, bool) {
	d = Normalize(d)
	i := c.lowerBound(d)
	if i < len(c.holidays) && c.holidays[i].Date.Equal(d) {
		return c.holidays[i].Name, true
	}
	return "", false
}

// NextHoliday returns up to n holidays strictly after d, ascending.
func (c *Calendar) NextHoliday(d time.Time, n int) []Holiday {
	d = Normalize(d)
	c.advise("next_holiday", d)
	if n <= 0 {
		return []Holiday{}
	}
	i := c.upperBound(d)
	j := i + min(n, len(c.holidays)-i)
	return append([]Holiday{}, c.holidays[i:j]...)
}

// PreviousHoliday returns up to n holidays strictly before d, ascending.
func (c *Calendar) PreviousHoliday(d time.Time, n int) []Holiday {
	d = Normalize(d)
	c.advise("previous_holiday", d)
	if n <= 0 {
		return []Holiday{}
	}
	j := c.lowerBound(d)
	i := j - min(n, j)
	return append([]Holiday{}, c.holidays[i:j]...)
}

// InRange returns every holiday with start <= date <= end.
func (c *Calendar) InRange(start, end time.Time) []Holiday {
	start, end = Normalize(start), Normalize(end)
	c.advise("in_range", start)
	c.advise("in_range", end)
	i := c.lowerBound(start)
	j := c.upperBound(end)
	if j <= i {
		return []Holiday{}
	}
	return append([]Holiday{}, c.holidays[i:j]...)
}
