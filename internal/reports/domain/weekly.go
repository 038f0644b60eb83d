package domain

import (
	"math"
	"time"

	"github.com/diffrun/opsdesk/internal/errors"
)

// Weekly SLA defaults and limits.
const (
	DefaultWeeks        = 6
	MaxWeeks            = 12
	DefaultExcludeWeeks = 2
	MaxExcludeWeeks     = 4
)

// Weekly report modes.
const (
	WeeklyModeRolling = "rolling"
	WeeklyModeCustom  = "custom"
)

// ErrInvalidWeeks indicates a week count or exclusion outside its limits.
var ErrInvalidWeeks = errors.Wrap(errors.ErrInvalidInput, "invalid weeks")

// WeeklyQuery selects ISO weeks. With both dates set the weeks containing
// them and every week between are used; otherwise the Weeks weeks ending
// ExcludeWeeks weeks before the current one.
type WeeklyQuery struct {
	Weeks        int
	ExcludeWeeks int
	StartDate    string
	EndDate      string
}

// ISOWeek is an ISO week with its local Monday-midnight bounds.
type ISOWeek struct {
	Year   int
	Week   int
	Window Window
}

// isoWeekStart returns local midnight of the Monday of ISO week (year, week).
func isoWeekStart(year, week int, loc *time.Location) time.Time {
	// January 4th always falls in week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, loc)
	offset := (int(jan4.Weekday()) + 6) % 7
	return jan4.AddDate(0, 0, -offset+(week-1)*7)
}

func weekOf(t time.Time, loc *time.Location) ISOWeek {
	year, week := t.In(loc).ISOWeek()
	start := isoWeekStart(year, week, loc)
	return ISOWeek{Year: year, Week: week, Window: Window{Start: start, End: start.AddDate(0, 0, 7)}}
}

// Resolve returns the selected weeks, oldest first, and the mode used.
func (q WeeklyQuery) Resolve(now time.Time, loc *time.Location) ([]ISOWeek, string, error) {
	if q.StartDate != "" && q.EndDate != "" {
		periods, err := CustomPeriods(q.StartDate, q.EndDate, loc)
		if err != nil {
			return nil, "", err
		}
		var weeks []ISOWeek
		last := weekOf(periods.Current.End.Add(-time.Nanosecond), loc)
		for w := weekOf(periods.Current.Start, loc); !w.Window.Start.After(last.Window.Start); w = weekOf(w.Window.End, loc) {
			weeks = append(weeks, w)
		}
		return weeks, WeeklyModeCustom, nil
	}

	if q.Weeks < 1 || q.Weeks > MaxWeeks {
		return nil, "", errors.Wrapf(ErrInvalidWeeks, "weeks must be between 1 and %d", MaxWeeks)
	}
	if q.ExcludeWeeks < 0 || q.ExcludeWeeks > MaxExcludeWeeks {
		return nil, "", errors.Wrapf(ErrInvalidWeeks, "exclude_weeks must be between 0 and %d", MaxExcludeWeeks)
	}
	newest := weekOf(now, loc).Window.Start.AddDate(0, 0, -7*q.ExcludeWeeks)
	weeks := make([]ISOWeek, 0, q.Weeks)
	for i := q.Weeks - 1; i >= 0; i-- {
		weeks = append(weeks, weekOf(newest.AddDate(0, 0, -7*i), loc))
	}
	return weeks, WeeklyModeRolling, nil
}

// SLACounts splits delivered orders by delivery latency.
type SLACounts[T int | float64] struct {
	LE3 T `json:"le_3"`
	D48 T `json:"d4_8"`
	GE9 T `json:"ge_9"`
}

// WeekSLA is the delivery performance of orders processed in one ISO week.
type WeekSLA struct {
	Week           int                `json:"week"`
	Year           int                `json:"year"`
	FromDate       string             `json:"from_date"`
	ToDate         string             `json:"to_date"`
	TotalOrders    int                `json:"total_orders"`
	TotalDelivered int                `json:"total_delivered"`
	DeliveredPct   float64            `json:"delivered_pct"`
	AvgDays        float64            `json:"avg_days"`
	SLACounts      SLACounts[int]     `json:"sla_counts"`
	SLAPct         SLACounts[float64] `json:"sla_pct"`
}

// WeeklyMeta describes how the weeks were chosen.
type WeeklyMeta struct {
	Mode                string    `json:"mode"`
	WeeksShown          int       `json:"weeks_shown"`
	ExcludedRecentWeeks *int      `json:"excluded_recent_weeks"`
	GeneratedAt         time.Time `json:"generated_at"`
}

// WeeklySLAReport is the per-week shipment SLA.
type WeeklySLAReport struct {
	Timeline []int      `json:"timeline"`
	Weeks    []WeekSLA  `json:"weeks"`
	Meta     WeeklyMeta `json:"meta"`
}

// WeeklySLA computes one row per week from facts processed in any of them.
func WeeklySLA(facts []Fact, weeks []ISOWeek, loc *time.Location) ([]int, []WeekSLA) {
	timeline := make([]int, 0, len(weeks))
	rows := make([]WeekSLA, 0, len(weeks))
	for _, w := range weeks {
		row := WeekSLA{
			Week:     w.Week,
			Year:     w.Year,
			FromDate: w.Window.Start.In(loc).Format(time.DateOnly),
			ToDate:   w.Window.End.In(loc).AddDate(0, 0, -1).Format(time.DateOnly),
		}
		sum := 0
		for _, f := range facts {
			if !w.Window.Contains(f.ProcessedAt) {
				continue
			}
			row.TotalOrders++
			days, ok := deliveryDays(f, loc)
			if !ok {
				continue
			}
			row.TotalDelivered++
			sum += days
			switch {
			case days <= 3:
				row.SLACounts.LE3++
			case days <= SLADeliveryDays:
				row.SLACounts.D48++
			default:
				row.SLACounts.GE9++
			}
		}
		row.DeliveredPct = percent(row.TotalDelivered, row.TotalOrders, 2)
		if row.TotalDelivered > 0 {
			row.AvgDays = math.Round(float64(sum)/float64(row.TotalDelivered)*100) / 100
		}
		row.SLAPct = SLACounts[float64]{
			LE3: percent(row.SLACounts.LE3, row.TotalDelivered, 2),
			D48: percent(row.SLACounts.D48, row.TotalDelivered, 2),
			GE9: percent(row.SLACounts.GE9, row.TotalDelivered, 2),
		}
		timeline = append(timeline, w.Week)
		rows = append(rows, row)
	}
	return timeline, rows
}
