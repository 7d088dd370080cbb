package calendar

import (
	"strings"
	"time"
)

// DateLayout is the canonical date format used by the dataset and the API.
const DateLayout = "2006-01-02"

// Accepted input layouts, tried in order. Slash-separated day-first dates
// follow the Brazilian convention used by ANBIMA.
var inputLayouts = []string{
	DateLayout,
	"2006/01/02",
	"20060102",
	"02/01/2006",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// ParseDate parses s into a date at midnight UTC.
func ParseDate(s string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	for _, layout := range inputLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return Normalize(t), nil
		}
	}
	return time.Time{}, &ParseError{Input: s}
}

// ParseDates parses every string, stopping at the first failure.
func ParseDates(values []string) ([]time.Time, error) {
	dates := make([]time.Time, 0, len(values))
	for _, v := range values {
		d, err := ParseDate(v)
		if err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, nil
}

// Normalize drops the time component, keeping the calendar date as seen in
// t's own location.
func Normalize(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole days from a to b, negative when b
// is before a. It does not saturate like time.Duration over long spans.
func DaysBetween(a, b time.Time) int64 {
	return (Normalize(b).Unix() - Normalize(a).Unix()) / 86400
}

// FormatDate renders a date in DateLayout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// nextWeekday returns the first Monday-Friday strictly after t.
func nextWeekday(t time.Time) time.Time {
	switch t.Weekday() {
	case time.Friday:
		return t.AddDate(0, 0, 3)
	case time.Saturday:
		return t.AddDate(0, 0, 2)
	default:
		return t.AddDate(0, 0, 1)
	}
}

// rollForward returns t itself when it is a weekday, else the following Monday.
func rollForward(t time.Time) time.Time {
	if isWeekend(t) {
		return nextWeekday(t)
	}
	return t
}
