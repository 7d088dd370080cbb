// Package calendar answers Brazilian financial-market holiday lookups and
// derives business-day ranges that skip weekends and those holidays.
//
// A Calendar is built once from the ANBIMA national holiday list and never
// changes afterwards. Queries against dates outside the loaded range still
// return an answer computed from the available data, but log a warning,
// because the holiday list does not extend past its last published year.
//
// Business days are counted in two mutually exclusive modes:
//
//	cal.BDateRange(start, calendar.WithEnd(end))     // every business day in [start, end]
//	cal.BDateRange(start, calendar.WithPeriods(n))   // the first n business days from start
package calendar
