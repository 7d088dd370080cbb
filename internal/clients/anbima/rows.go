package anbima

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/b3cal/internal/modules/calendar"
)

const (
	headerDate    = "data"
	headerWeekday = "dia da semana"
	headerName    = "feriado"
)

// Excel serial day zero, accounting for the 1900 leap-year bug.
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

var isoLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Day-first layouts come first so they win ties.
var slashLayouts = []string{"2/1/2006", "2/1/06", "1/2/2006", "1/2/06"}

var weekdayNames = map[string]time.Weekday{
	"domingo": time.Sunday,
	"segunda": time.Monday,
	"terca":   time.Tuesday,
	"quarta":  time.Wednesday,
	"quinta":  time.Thursday,
	"sexta":   time.Friday,
	"sabado":  time.Saturday,
}

type columns struct {
	date, weekday, name int
}

// ParseRows turns spreadsheet rows into holidays. Rows before the header
// (the first row with a "Data" cell) are ignored; rows after it whose date
// cell does not parse, such as the source footnotes, are dropped and counted.
func ParseRows(rows [][]string) ([]calendar.Holiday, int, error) {
	header := -1
	var cols columns
	for i, row := range rows {
		if c, ok := findColumns(row); ok {
			header, cols = i, c
			break
		}
	}
	if header < 0 {
		return nil, 0, fmt.Errorf("header row with a Data column not found")
	}

	var holidays []calendar.Holiday
	dropped := 0
	for _, row := range rows[header+1:] {
		d, ok := parseDateCell(cell(row, cols.date), cell(row, cols.weekday))
		if !ok {
			dropped++
			continue
		}
		holidays = append(holidays, calendar.Holiday{Date: d, Name: strings.TrimSpace(cell(row, cols.name))})
	}
	if len(holidays) == 0 {
		return nil, dropped, fmt.Errorf("no holiday rows found")
	}
	return holidays, dropped, nil
}

func findColumns(row []string) (columns, bool) {
	cols := columns{date: -1, weekday: -1, name: -1}
	for i, v := range row {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case headerDate:
			cols.date = i
		case headerWeekday:
			cols.weekday = i
		case headerName:
			cols.name = i
		}
	}
	return cols, cols.date >= 0
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// parseDateCell reads a date cell. Slash dates are ambiguous between
// day-first and month-first; the weekday column picks the right one, and
// day-first wins when it cannot.
func parseDateCell(value, weekday string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		if serial < 1 || serial > 100000 {
			return time.Time{}, false
		}
		return excelEpoch.AddDate(0, 0, int(serial)), true
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return calendar.Normalize(t), true
		}
	}

	var candidates []time.Time
	for _, layout := range slashLayouts {
		t, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		t = calendar.Normalize(t)
		duplicate := false
		for _, c := range candidates {
			if c.Equal(t) {
				duplicate = true
			}
		}
		if !duplicate {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return time.Time{}, false
	}

	if wd, ok := parseWeekday(weekday); ok {
		for _, c := range candidates {
			if c.Weekday() == wd {
				return c, true
			}
		}
	}
	return candidates[0], true
}

func parseWeekday(s string) (time.Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("ç", "c", "á", "a").Replace(s)
	for prefix, wd := range weekdayNames {
		if strings.HasPrefix(s, prefix) {
			return wd, true
		}
	}
	return 0, false
}
