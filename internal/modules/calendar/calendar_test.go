package calendar

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func nopLogger() zerolog.Logger {
	return zerolog.New(nil).Level(zerolog.Disabled)
}

// smallCalendar holds the two holidays used by the worked examples.
func smallCalendar() *Calendar {
	return New([]Holiday{
		{Date: date(2023, 4, 21), Name: "Tiradentes"},
		{Date: date(2023, 1, 1), Name: "Confraternização Universal"},
	}, nopLogger())
}

func embeddedCalendar(t *testing.T) *Calendar {
	t.Helper()
	cal, err := LoadEmbedded(nopLogger())
	require.NoError(t, err)
	return cal
}

func TestNew_SortsAndCollapsesDuplicates(t *testing.T) {
	cal := New([]Holiday{
		{Date: date(2023, 11, 2)},
		{Date: time.Date(2023, 4, 21, 15, 30, 0, 0, time.UTC)},
		{Date: date(2023, 11, 2), Name: "Finados"},
		{Date: date(2023, 1, 1), Name: "Ano Novo"},
	}, nopLogger())

	require.Equal(t, 3, cal.Len())
	assert.Equal(t, []time.Time{date(2023, 1, 1), date(2023, 4, 21), date(2023, 11, 2)}, cal.Dates())

	name, ok := cal.Name(date(2023, 11, 2))
	assert.True(t, ok)
	assert.Equal(t, "Finados", name)
}

func TestNew_NormalizesToCalendarDate(t *testing.T) {
	brt := time.FixedZone("BRT", -3*60*60)
	cal := New([]Holiday{{Date: time.Date(2023, 9, 7, 22, 0, 0, 0, brt)}}, nopLogger())

	assert.True(t, cal.IsHoliday(date(2023, 9, 7)))
	assert.True(t, cal.IsHoliday(time.Date(2023, 9, 7, 23, 59, 0, 0, brt)))
}

func TestIsHoliday_EveryDatasetDate(t *testing.T) {
	cal := embeddedCalendar(t)

	for h := range cal.All() {
		assert.True(t, cal.IsHoliday(h.Date), "dataset date %s should be a holiday", FormatDate(h.Date))
	}
}

func TestIsHoliday_WeekdaysNotInDataset(t *testing.T) {
	cal := embeddedCalendar(t)
	set := map[time.Time]bool{}
	for _, d := range cal.Dates() {
		set[d] = true
	}

	for d := date(2023, 1, 1); d.Year() == 2023; d = d.AddDate(0, 0, 1) {
		if isWeekend(d) || set[d] {
			continue
		}
		assert.False(t, cal.IsHoliday(d), "%s should not be a holiday", FormatDate(d))
	}
}

func TestIsHolidayString(t *testing.T) {
	cal := embeddedCalendar(t)

	tests := []struct {
		input    string
		expected bool
	}{
		{"2023-02-21", true},
		{"2023/04/21", true},
		{"20231225", true},
		{"21/04/2023", true},
		{"2023-04-20", false},
		{"2023-11-20", false},
		{"2024-11-20", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := cal.IsHolidayString(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := cal.IsHolidayString("not-a-date")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)
}

func TestAreHolidays(t *testing.T) {
	cal := smallCalendar()

	got := cal.AreHolidays([]time.Time{date(2023, 1, 1), date(2023, 1, 2), date(2023, 4, 21)})
	assert.Equal(t, []bool{true, false, true}, got)
	assert.Empty(t, cal.AreHolidays(nil))
}

func TestAdvisory_OutOfRange(t *testing.T) {
	var buf bytes.Buffer
	cal := New([]Holiday{{Date: date(2023, 1, 1)}, {Date: date(2023, 4, 21)}}, zerolog.New(&buf))

	assert.False(t, cal.IsHoliday(date(2023, 2, 1)))
	assert.Empty(t, buf.String(), "in-range lookups should not warn")

	assert.False(t, cal.IsHoliday(date(2030, 1, 1)))
	assert.Contains(t, buf.String(), "out of range")
	assert.Contains(t, buf.String(), `"date":"2030-01-01"`)

	buf.Reset()
	cal.AreHolidays([]time.Time{date(2022, 1, 1), date(2024, 1, 1), date(2023, 3, 1)})
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("\n")), "sequence lookups warn once")
	assert.Contains(t, buf.String(), `"out_of_range":2`)
}

func TestAdvisory_BoundariesAreCovered(t *testing.T) {
	var buf bytes.Buffer
	cal := New([]Holiday{{Date: date(2023, 1, 1)}, {Date: date(2023, 4, 21)}}, zerolog.New(&buf))

	assert.True(t, cal.IsHoliday(date(2023, 1, 1)))
	assert.True(t, cal.IsHoliday(date(2023, 4, 21)))
	assert.Empty(t, buf.String())
}

func TestNextHoliday(t *testing.T) {
	cal := embeddedCalendar(t)

	next := cal.NextHoliday(date(2023, 4, 7), 2)
	require.Len(t, next, 2)
	assert.Equal(t, date(2023, 4, 21), next[0].Date)
	assert.Equal(t, "Tiradentes", next[0].Name)
	assert.Equal(t, date(2023, 5, 1), next[1].Date)

	// Minimal holiday strictly after d
	d := date(2023, 6, 1)
	first := cal.NextHoliday(d, 1)
	require.Len(t, first, 1)
	assert.True(t, first[0].Date.After(d))
	for _, h := range cal.InRange(d.AddDate(0, 0, 1), first[0].Date.AddDate(0, 0, -1)) {
		t.Errorf("holiday %s lies between %s and the reported next holiday", FormatDate(h.Date), FormatDate(d))
	}

	// Dataset boundary returns fewer than n
	tail := cal.NextHoliday(date(2078, 12, 1), 5)
	require.Len(t, tail, 1)
	assert.Equal(t, date(2078, 12, 25), tail[0].Date)

	assert.Empty(t, cal.NextHoliday(date(2023, 1, 1), 0))
	assert.Empty(t, cal.NextHoliday(date(2023, 1, 1), -1))
}

func TestPreviousHoliday(t *testing.T) {
	cal := embeddedCalendar(t)

	prev := cal.PreviousHoliday(date(2023, 4, 21), 2)
	require.Len(t, prev, 2)
	assert.Equal(t, date(2023, 2, 21), prev[0].Date)
	assert.Equal(t, date(2023, 4, 7), prev[1].Date)

	one := cal.PreviousHoliday(date(2023, 4, 20), 1)
	require.Len(t, one, 1)
	assert.Equal(t, date(2023, 4, 7), one[0].Date)
	assert.True(t, one[0].Date.Before(date(2023, 4, 20)))

	assert.Empty(t, cal.PreviousHoliday(date(2001, 1, 1), 3))
	assert.Len(t, cal.PreviousHoliday(date(2001, 2, 27), 10), 2)
	assert.Empty(t, cal.PreviousHoliday(date(2023, 4, 21), 0))
}

func TestNeighbourHolidays_HugeCount(t *testing.T) {
	cal := embeddedCalendar(t)
	first, _ := cal.First()
	last, _ := cal.Last()
	d := date(2023, 2, 1)

	tests := []struct {
		name   string
		lookup func(time.Time, int) []Holiday
		n      int
		want   int
	}{
		{"next max int", cal.NextHoliday, math.MaxInt, len(cal.InRange(d.AddDate(0, 0, 1), last))},
		{"next past end", cal.NextHoliday, cal.Len() + 1, len(cal.InRange(d.AddDate(0, 0, 1), last))},
		{"previous max int", cal.PreviousHoliday, math.MaxInt, len(cal.InRange(first, d.AddDate(0, 0, -1)))},
		{"previous min int", cal.PreviousHoliday, math.MinInt, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []Holiday
			require.NotPanics(t, func() { got = tt.lookup(d, tt.n) })
			assert.Len(t, got, tt.want)
		})
	}
}

func TestInRange(t *testing.T) {
	cal := embeddedCalendar(t)

	got := cal.InRange(date(2023, 4, 21), date(2023, 6, 8))
	require.Len(t, got, 3)
	assert.Equal(t, date(2023, 4, 21), got[0].Date)
	assert.Equal(t, date(2023, 5, 1), got[1].Date)
	assert.Equal(t, date(2023, 6, 8), got[2].Date)

	assert.Empty(t, cal.InRange(date(2023, 6, 8), date(2023, 4, 21)))
	assert.Empty(t, cal.InRange(date(2023, 1, 2), date(2023, 2, 19)))
	assert.Len(t, cal.InRange(date(2023, 1, 1), date(2023, 12, 31)), 12)
}

func TestFirstLastCovers(t *testing.T) {
	cal := embeddedCalendar(t)

	first, ok := cal.First()
	require.True(t, ok)
	last, ok := cal.Last()
	require.True(t, ok)
	assert.Equal(t, date(2001, 1, 1), first)
	assert.Equal(t, date(2078, 12, 25), last)

	assert.True(t, cal.Covers(date(2050, 6, 1)))
	assert.False(t, cal.Covers(date(2000, 12, 31)))
	assert.False(t, cal.Covers(date(2078, 12, 26)))

	empty := New(nil, nopLogger())
	_, ok = empty.First()
	assert.False(t, ok)
	assert.False(t, empty.Covers(date(2023, 1, 1)))
	assert.False(t, empty.IsHoliday(date(2023, 1, 1)))
}

func TestString(t *testing.T) {
	assert.Equal(t, "Calendar[2023-01-01 2023-04-21] (2 holidays)", smallCalendar().String())
	assert.Equal(t, "Calendar[]", New(nil, nopLogger()).String())

	s := embeddedCalendar(t).String()
	assert.Contains(t, s, "2001-01-01 2001-02-26 2001-02-27 ... ")
	assert.Contains(t, s, "2078-12-25] (991 holidays)")
}

func TestHolidays_ReturnsCopy(t *testing.T) {
	cal := smallCalendar()

	hs := cal.Holidays()
	hs[0].Date = date(1999, 1, 1)

	assert.True(t, cal.IsHoliday(date(2023, 1, 1)))
}

func TestAll_StopsEarly(t *testing.T) {
	cal := embeddedCalendar(t)

	count := 0
	for range cal.All() {
		count++
		if count == 5 {
			break
		}
	}
	assert.Equal(t, 5, count)
}
