// Package timeutil holds calendar helpers anchored on the business timezone.
package timeutil

import (
	"strings"
	"time"
)

// StartOfDay returns local midnight of the day containing t in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// NextMidnight returns the local midnight that starts the day after t.
func NextMidnight(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc).AddDate(0, 0, 1)
}

// StartOfMonth returns local midnight of the first day of t's month.
func StartOfMonth(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), 1, 0, 0, 0, 0, loc)
}

// DaysBetween counts calendar-day boundaries from a to b in loc. It is not the
// number of elapsed 24h periods: 23:50 to 00:10 the next day is one day.
func DaysBetween(a, b time.Time, loc *time.Location) int {
	da := StartOfDay(a, loc)
	db := StartOfDay(b, loc)
	// Dates are compared through UTC-midnight equivalents so DST shifts in loc
	// cannot produce fractional days.
	ua := time.Date(da.Year(), da.Month(), da.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(db.Year(), db.Month(), db.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// ParseFirst tries each layout in order and returns the first successful parse.
// Layouts without a zone are interpreted in loc. Blank input and no match both
// return ok=false.
func ParseFirst(value string, loc *time.Location, layouts ...string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
