// Package domain defines report windows and the aggregations computed over
// eligible orders. Every bucket boundary is a local midnight or hour in the
// business timezone.
package domain

import (
	"time"

	"github.com/diffrun/opsdesk/internal/errors"
	"github.com/diffrun/opsdesk/internal/timeutil"
)

// Granularity is the bucket size of a report.
type Granularity string

// Bucket sizes.
const (
	GranularityHour Granularity = "hour"
	GranularityDay  Granularity = "day"
)

// Range keys accepted by the report endpoints.
const (
	Range1Day      = "1d"
	Range1Week     = "1w"
	Range1Month    = "1m"
	Range6Months   = "6m"
	RangeThisMonth = "this_month"
)

const (
	hourLabelLayout = "2006-01-02 15:00"
	dayLabelLayout  = time.DateOnly
)

var rangeDays = map[string]int{
	Range1Week:   7,
	Range1Month:  30,
	Range6Months: 182,
}

// Report window errors.
var (
	ErrInvalidRange = errors.Wrap(errors.ErrInvalidInput, "invalid range")
	ErrInvalidDates = errors.Wrap(errors.ErrInvalidInput, "invalid date range")
)

// Window is a half-open interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls in the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Periods is a current window and the previous window it is compared with.
type Periods struct {
	Current     Window
	Previous    Window
	Granularity Granularity
}

// BuildPeriods returns the windows for a range key at now.
func BuildPeriods(rangeKey string, now time.Time, loc *time.Location) (Periods, error) {
	switch rangeKey {
	case Range1Day:
		local := now.In(loc)
		end := time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), 0, 0, 0, loc).Add(time.Hour)
		start := end.Add(-24 * time.Hour)
		return Periods{
			Current:     Window{Start: start, End: end},
			Previous:    Window{Start: start.AddDate(0, 0, -7), End: end.AddDate(0, 0, -7)},
			Granularity: GranularityHour,
		}, nil

	case RangeThisMonth:
		start := timeutil.StartOfMonth(now, loc)
		return Periods{
			Current:     Window{Start: start, End: timeutil.NextMidnight(now, loc)},
			Previous:    Window{Start: start.AddDate(0, -1, 0), End: start},
			Granularity: GranularityDay,
		}, nil
	}

	days, ok := rangeDays[rangeKey]
	if !ok {
		return Periods{}, errors.Wrapf(ErrInvalidRange, "range %q", rangeKey)
	}
	end := timeutil.NextMidnight(now, loc)
	start := end.AddDate(0, 0, -days)
	return Periods{
		Current:     Window{Start: start, End: end},
		Previous:    Window{Start: start.AddDate(0, 0, -days), End: start},
		Granularity: GranularityDay,
	}, nil
}

// CustomPeriods returns the windows for an inclusive YYYY-MM-DD date range. A
// single-day range is bucketed by hour.
func CustomPeriods(startDate, endDate string, loc *time.Location) (Periods, error) {
	first, err := time.ParseInLocation(time.DateOnly, startDate, loc)
	if err != nil {
		return Periods{}, errors.Wrapf(ErrInvalidDates, "start date %q", startDate)
	}
	last, err := time.ParseInLocation(time.DateOnly, endDate, loc)
	if err != nil {
		return Periods{}, errors.Wrapf(ErrInvalidDates, "end date %q", endDate)
	}
	if first.After(last) {
		return Periods{}, errors.Wrap(ErrInvalidDates, "start date is after end date")
	}

	end := last.AddDate(0, 0, 1)
	days := timeutil.DaysBetween(first, end, loc)
	granularity := GranularityDay
	if days == 1 {
		granularity = GranularityHour
	}
	return Periods{
		Current:     Window{Start: first, End: end},
		Previous:    Window{Start: first.AddDate(0, 0, -days), End: first},
		Granularity: granularity,
	}, nil
}

// BucketLabel returns the label of the bucket containing t.
func BucketLabel(t time.Time, g Granularity, loc *time.Location) string {
	if g == GranularityHour {
		return t.In(loc).Format(hourLabelLayout)
	}
	return t.In(loc).Format(dayLabelLayout)
}

// Labels lists every bucket of w in order.
func Labels(w Window, g Granularity, loc *time.Location) []string {
	var labels []string
	for t := w.Start.In(loc); t.Before(w.End); t = next(t, g) {
		labels = append(labels, BucketLabel(t, g, loc))
	}
	return labels
}

func next(t time.Time, g Granularity) time.Time {
	if g == GranularityHour {
		return t.Add(time.Hour)
	}
	return t.AddDate(0, 0, 1)
}

// RangeQuery is the window selection of a report request. StartDate and
// EndDate, when both set, override Range.
type RangeQuery struct {
	Range     string
	StartDate string
	EndDate   string
	Locale    string
}

// Resolve returns the periods selected by q at now.
func (q RangeQuery) Resolve(now time.Time, loc *time.Location) (Periods, error) {
	if q.StartDate != "" || q.EndDate != "" {
		return CustomPeriods(q.StartDate, q.EndDate, loc)
	}
	key := q.Range
	if key == "" {
		key = Range1Week
	}
	return BuildPeriods(key, now, loc)
}
