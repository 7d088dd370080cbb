package calendar

import (
	"time"

	"gonum.org/v1/gonum/stat"
)

// YearStats summarizes one calendar year of the dataset.
type YearStats struct {
	Year            int `json:"year" msgpack:"year"`
	Holidays        int `json:"holidays" msgpack:"holidays"`
	WeekdayHolidays int `json:"weekday_holidays" msgpack:"weekday_holidays"`
	BusinessDays    int `json:"business_days" msgpack:"business_days"`
}

// Summary aggregates YearStats over every year the dataset covers.
type Summary struct {
	Years              []YearStats `json:"years" msgpack:"years"`
	MeanBusinessDays   float64     `json:"mean_business_days" msgpack:"mean_business_days"`
	StdDevBusinessDays float64     `json:"stddev_business_days" msgpack:"stddev_business_days"`
	MeanHolidays       float64     `json:"mean_holidays" msgpack:"mean_holidays"`
}

// Stats computes per-year holiday and business-day counts.
func (c *Calendar) Stats() Summary {
	first, ok := c.First()
	if !ok {
		return Summary{Years: []YearStats{}}
	}
	last, _ := c.Last()

	years := make([]YearStats, 0, last.Year()-first.Year()+1)
	businessDays := make([]float64, 0, cap(years))
	holidays := make([]float64, 0, cap(years))
	for year := first.Year(); year <= last.Year(); year++ {
		jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		dec31 := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

		ys := YearStats{Year: year, BusinessDays: len(c.rangeToEnd(jan1, dec31))}
		for _, h := range c.holidays[c.lowerBound(jan1):c.upperBound(dec31)] {
			ys.Holidays++
			if !isWeekend(h.Date) {
				ys.WeekdayHolidays++
			}
		}
		years = append(years, ys)
		businessDays = append(businessDays, float64(ys.BusinessDays))
		holidays = append(holidays, float64(ys.Holidays))
	}

	summary := Summary{Years: years}
	summary.MeanBusinessDays, summary.StdDevBusinessDays = stat.MeanStdDev(businessDays, nil)
	if len(businessDays) < 2 {
		// Sample standard deviation is undefined for a single year
		summary.StdDevBusinessDays = 0
	}
	summary.MeanHolidays = stat.Mean(holidays, nil)
	return summary
}
