package dates

import "time"

// gridCells is six rows of seven days.
const gridCells = 42

// CalendarDay is one cell of a month grid.
type CalendarDay struct {
	Date           time.Time
	DateString     string
	Day            int
	IsCurrentMonth bool
	IsToday        bool
}

// CalendarDays returns the Sunday-first month grid for the given month,
// padded with days of the neighbouring months to 42 cells. today is compared
// by calendar date only.
func CalendarDays(year int, month time.Month, today time.Time) []CalendarDay {
	loc := today.Location()
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	todayStr := Format(today)

	start := first.AddDate(0, 0, -int(first.Weekday()))
	days := make([]CalendarDay, 0, gridCells)
	for i := 0; i < gridCells; i++ {
		d := start.AddDate(0, 0, i)
		inMonth := d.Month() == month && d.Year() == year
		ds := Format(d)
		days = append(days, CalendarDay{
			Date:           d,
			DateString:     ds,
			Day:            d.Day(),
			IsCurrentMonth: inMonth,
			IsToday:        inMonth && ds == todayStr,
		})
	}
	return days
}

// MonthName returns the English name of the month.
func MonthName(m time.Month) string {
	return m.String()
}

// DayNames returns short weekday names starting on Sunday.
func DayNames() []string {
	return []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
}
