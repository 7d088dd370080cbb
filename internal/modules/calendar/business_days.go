package calendar

import (
	"fmt"
	"time"
)

// lastRangeDate is the latest date a business-day range may reach.
var lastRangeDate = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

// RangeOption bounds a BDateRange call.
type RangeOption func(*rangeBounds)

type rangeBounds struct {
	end        time.Time
	hasEnd     bool
	periods    int
	hasPeriods bool
}

// WithEnd bounds the range by an inclusive end date.
func WithEnd(end time.Time) RangeOption {
	return func(b *rangeBounds) {
		b.end = Normalize(end)
		b.hasEnd = true
	}
}

// WithPeriods bounds the range by the number of business days to return.
func WithPeriods(n int) RangeOption {
	return func(b *rangeBounds) {
		b.periods = n
		b.hasPeriods = true
	}
}

// IsBusinessDay reports whether d is a weekday that is not a holiday.
func (c *Calendar) IsBusinessDay(d time.Time) bool {
	d = Normalize(d)
	c.advise("is_business_day", d)
	return !isWeekend(d) && !c.contains(d)
}

// BDateRange returns business days starting at start, bounded by exactly one
// of WithEnd or WithPeriods.
func (c *Calendar) BDateRange(start time.Time, opts ...RangeOption) ([]time.Time, error) {
	var bounds rangeBounds
	for _, opt := range opts {
		opt(&bounds)
	}

	start = Normalize(start)
	switch {
	case bounds.hasEnd && !bounds.hasPeriods:
		if bounds.end.After(lastRangeDate) {
			return nil, fmt.Errorf("%w: end must not be after %s", ErrInvalidArgument, FormatDate(lastRangeDate))
		}
		c.advise("bdate_range", start)
		c.advise("bdate_range", bounds.end)
		return c.rangeToEnd(start, bounds.end), nil
	case bounds.hasPeriods && !bounds.hasEnd:
		if bounds.periods < 0 {
			return nil, fmt.Errorf("%w: periods must not be negative, got %d", ErrInvalidArgument, bounds.periods)
		}
		c.advise("bdate_range", start)
		days, err := c.rangeOfPeriods(start, bounds.periods)
		if err != nil {
			return nil, err
		}
		if len(days) > 0 {
			c.advise("bdate_range", days[len(days)-1])
		}
		return days, nil
	default:
		return nil, fmt.Errorf("%w: either end or periods must be provided", ErrInvalidArgument)
	}
}

// BDateCount returns the number of business days in [start, end].
func (c *Calendar) BDateCount(start, end time.Time) int {
	days, _ := c.BDateRange(start, WithEnd(end))
	return len(days)
}

func (c *Calendar) rangeToEnd(start, end time.Time) []time.Time {
	days := []time.Time{}
	for d := rollForward(start); !d.After(end); d = nextWeekday(d) {
		if !c.contains(d) {
			days = append(days, d)
		}
	}
	return days
}

// rangeOfPeriods fails when the walk would pass lastRangeDate. Every
// business day is a distinct calendar day, so a count larger than the days
// left is rejected before walking.
func (c *Calendar) rangeOfPeriods(start time.Time, periods int) ([]time.Time, error) {
	if int64(periods) > DaysBetween(start, lastRangeDate)+1 {
		return nil, fmt.Errorf("%w: %d periods from %s run past %s",
			ErrInvalidArgument, periods, FormatDate(start), FormatDate(lastRangeDate))
	}

	days := []time.Time{}
	for d := rollForward(start); len(days) < periods; d = nextWeekday(d) {
		if d.After(lastRangeDate) {
			return nil, fmt.Errorf("%w: %d periods from %s run past %s",
				ErrInvalidArgument, periods, FormatDate(start), FormatDate(lastRangeDate))
		}
		if !c.contains(d) {
			days = append(days, d)
		}
	}
	return days, nil
}
