package updater

import (
	"sort"
	"time"

	cal "github.com/rickar/cal/v2"

	"github.com/aristath/b3cal/internal/modules/calendar"
)

// Rule-based Brazilian national holidays that every ANBIMA list contains.
var nationalHolidays = []*cal.Holiday{
	{Name: "Confraternização Universal", Type: cal.ObservancePublic, Month: time.January, Day: 1, Func: cal.CalcDayOfMonth},
	{Name: "Carnaval", Type: cal.ObservanceBank, Offset: -48, Func: cal.CalcEasterOffset},
	{Name: "Carnaval", Type: cal.ObservanceBank, Offset: -47, Func: cal.CalcEasterOffset},
	{Name: "Paixão de Cristo", Type: cal.ObservancePublic, Offset: -2, Func: cal.CalcEasterOffset},
	{Name: "Tiradentes", Type: cal.ObservancePublic, Month: time.April, Day: 21, Func: cal.CalcDayOfMonth},
	{Name: "Dia do Trabalho", Type: cal.ObservancePublic, Month: time.May, Day: 1, Func: cal.CalcDayOfMonth},
	{Name: "Corpus Christi", Type: cal.ObservanceBank, Offset: 60, Func: cal.CalcEasterOffset},
	{Name: "Independência do Brasil", Type: cal.ObservancePublic, Month: time.September, Day: 7, Func: cal.CalcDayOfMonth},
	{Name: "Nossa Sr.a Aparecida - Padroeira do Brasil", Type: cal.ObservancePublic, Month: time.October, Day: 12, Func: cal.CalcDayOfMonth},
	{Name: "Finados", Type: cal.ObservancePublic, Month: time.November, Day: 2, Func: cal.CalcDayOfMonth},
	{Name: "Proclamação da República", Type: cal.ObservancePublic, Month: time.November, Day: 15, Func: cal.CalcDayOfMonth},
	{Name: "Dia Nacional de Zumbi e da Consciência Negra", Type: cal.ObservancePublic, Month: time.November, Day: 20, StartYear: 2024, Func: cal.CalcDayOfMonth},
	{Name: "Natal", Type: cal.ObservancePublic, Month: time.December, Day: 25, Func: cal.CalcDayOfMonth},
}

// Discrepancy is a rule-computed national holiday missing from a dataset.
type Discrepancy struct {
	Date time.Time `json:"date"`
	Name string    `json:"name"`
}

// CrossCheck returns the national holidays that fall inside the dataset's
// date range but are absent from it.
func CrossCheck(holidays []calendar.Holiday) []Discrepancy {
	if len(holidays) == 0 {
		return nil
	}

	present := make(map[time.Time]bool, len(holidays))
	first, last := holidays[0].Date, holidays[0].Date
	for _, h := range holidays {
		d := calendar.Normalize(h.Date)
		present[d] = true
		if d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}

	var missing []Discrepancy
	for year := first.Year(); year <= last.Year(); year++ {
		for _, rule := range nationalHolidays {
			actual, _ := rule.Calc(year)
			if actual.IsZero() {
				continue
			}
			d := calendar.Normalize(actual)
			if d.Before(first) || d.After(last) || present[d] {
				continue
			}
			missing = append(missing, Discrepancy{Date: d, Name: rule.Name})
		}
	}
	sort.Slice(missing, func(i, j int) bool {
		return missing[i].Date.Before(missing[j].Date)
	})
	return missing
}
