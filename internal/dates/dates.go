// Package dates handles calendar dates as YYYY-MM-DD strings in local time.
package dates

import (
	"regexp"
	"time"
)

const Layout = "2006-01-02"

var isoDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// IsISODate reports whether s has the YYYY-MM-DD shape. It does not check
// that the date exists on the calendar.
func IsISODate(s string) bool {
	return isoDateRe.MatchString(s)
}

// Format renders t as YYYY-MM-DD in t's own location.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Parse returns midnight local time for a YYYY-MM-DD string.
func Parse(s string) (time.Time, error) {
	return time.ParseInLocation(Layout, s, time.Local)
}

// Today returns the current local date.
func Today() string {
	return Format(time.Now())
}

// Tomorrow returns the local date after today.
func Tomorrow() string {
	return Format(time.Now().AddDate(0, 0, 1))
}
