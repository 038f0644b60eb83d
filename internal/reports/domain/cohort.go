package domain

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/diffrun/opsdesk/internal/timeutil"
)

// LatencyTotalLabel labels the row summing every cohort of a latency report.
const LatencyTotalLabel = "TOTAL"

// Delivered answers "yes" or "no" for cohort drill-downs.
const (
	AnswerYes = "YES"
	AnswerNo  = "NO"
)

// deliveryDays returns the local days from processing to delivery, or false
// when the fact is not delivered with a known delivery time.
func deliveryDays(f Fact, loc *time.Location) (int, bool) {
	if !strings.EqualFold(strings.TrimSpace(f.ShippingStatus), "DELIVERED") || f.DeliveredAt == nil {
		return 0, false
	}
	return max(timeutil.DaysBetween(f.ProcessedAt, *f.DeliveredAt, loc), 0), true
}

func percent(n, total int, places int) float64 {
	if total == 0 {
		return 0
	}
	scale := math.Pow(10, float64(places))
	return math.Round(float64(n)*100/float64(total)*scale) / scale
}

// CohortDay is the delivered share of one processing day.
type CohortDay struct {
	ProcessedDate  string  `json:"processed_date"`
	DeliveredPct   float64 `json:"delivered_pct"`
	UndeliveredPct float64 `json:"undelivered_pct"`
	Total          int     `json:"total_orders"`
}

// CohortOrder is one order of a cohort drill-down.
type CohortOrder struct {
	OrderID        string     `json:"order_id"`
	ProcessedAt    time.Time  `json:"processed_at"`
	CurrentStatus  string     `json:"current_status"`
	DeliveredInSLA string     `json:"delivered_in_8_days"`
	DeliveredAt    *time.Time `json:"delivered_at"`
}

// cohorts groups facts by local processing day, days sorted ascending.
func cohorts(facts []Fact, loc *time.Location) ([]string, map[string][]Fact) {
	byDay := map[string][]Fact{}
	for _, f := range facts {
		day := BucketLabel(f.ProcessedAt, GranularityDay, loc)
		byDay[day] = append(byDay[day], f)
	}
	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)
	return days, byDay
}

// SLACohorts reports, per processing day, the share of orders delivered so far.
// Days without orders are omitted.
func SLACohorts(facts []Fact, loc *time.Location) []CohortDay {
	days, byDay := cohorts(facts, loc)
	out := make([]CohortDay, 0, len(days))
	for _, day := range days {
		total := len(byDay[day])
		delivered := 0
		for _, f := range byDay[day] {
			if strings.EqualFold(strings.TrimSpace(f.ShippingStatus), "DELIVERED") {
				delivered++
			}
		}
		out = append(out, CohortDay{
			ProcessedDate:  day,
			DeliveredPct:   percent(delivered, total, 1),
			UndeliveredPct: percent(total-delivered, total, 1),
			Total:          total,
		})
	}
	return out
}

// CohortOrders lists the orders processed on day (YYYY-MM-DD).
func CohortOrders(facts []Fact, day string, loc *time.Location) []CohortOrder {
	_, byDay := cohorts(facts, loc)
	out := make([]CohortOrder, 0, len(byDay[day]))
	for _, f := range byDay[day] {
		o := CohortOrder{
			OrderID:        f.OrderID,
			ProcessedAt:    f.ProcessedAt,
			CurrentStatus:  f.ShippingStatus,
			DeliveredInSLA: AnswerNo,
		}
		if days, ok := deliveryDays(f, loc); ok {
			o.DeliveredAt = f.DeliveredAt
			if days <= SLADeliveryDays {
				o.DeliveredInSLA = AnswerYes
			}
		}
		out = append(out, o)
	}
	return out
}

// LatencyRow spreads one processing day's orders over delivery latency. The
// day columns are percentages of TotalOrders, undelivered orders included.
type LatencyRow struct {
	ProcessedDate   string  `json:"processed_date"`
	TotalOrders     int     `json:"total_orders"`
	DeliveredOrders int     `json:"delivered_orders"`
	DayLE3          float64 `json:"day_le_3"`
	Day4            float64 `json:"day_4"`
	Day5            float64 `json:"day_5"`
	Day6            float64 `json:"day_6"`
	Day7            float64 `json:"day_7"`
	Day8            float64 `json:"day_8"`
	Day9            float64 `json:"day_9"`
	Day10Plus       float64 `json:"day_10_plus"`
}

// latencyCounts indexes 0 for three days or less, 1..6 for days 4..9 and 7
// for ten days or more.
type latencyCounts struct {
	total     int
	delivered int
	buckets   [8]int
}

func (c *latencyCounts) add(o latencyCounts) {
	c.total += o.total
	c.delivered += o.delivered
	for i := range c.buckets {
		c.buckets[i] += o.buckets[i]
	}
}

func (c latencyCounts) row(label string) LatencyRow {
	pct := func(i int) float64 { return percent(c.buckets[i], c.total, 1) }
	return LatencyRow{
		ProcessedDate:   label,
		TotalOrders:     c.total,
		DeliveredOrders: c.delivered,
		DayLE3:          pct(0),
		Day4:            pct(1),
		Day5:            pct(2),
		Day6:            pct(3),
		Day7:            pct(4),
		Day8:            pct(5),
		Day9:            pct(6),
		Day10Plus:       pct(7),
	}
}

func latencyBucket(days int) int {
	switch {
	case days <= 3:
		return 0
	case days >= 10:
		return 7
	default:
		return days - 3
	}
}

// DeliveryLatency returns one row per processing day followed by a TOTAL row.
func DeliveryLatency(facts []Fact, loc *time.Location) []LatencyRow {
	days, byDay := cohorts(facts, loc)
	out := make([]LatencyRow, 0, len(days)+1)
	var total latencyCounts
	for _, day := range days {
		var c latencyCounts
		for _, f := range byDay[day] {
			c.total++
			if d, ok := deliveryDays(f, loc); ok {
				c.delivered++
				c.buckets[latencyBucket(d)]++
			}
		}
		total.add(c)
		out = append(out, c.row(day))
	}
	return append(out, total.row(LatencyTotalLabel))
}

// ProductionGraph is ProductionKPIs for orders processed in a date range.
type ProductionGraph struct {
	InProduction map[string]int    `json:"in_production"`
	Shipped      map[string]int    `json:"shipped"`
	Range        map[string]string `json:"range"`
}

// NewProductionGraph splits the facts processed between the dates per printer.
func NewProductionGraph(facts []Fact, startDate, endDate string) ProductionGraph {
	g := ProductionGraph{
		InProduction: map[string]int{},
		Shipped:      map[string]int{},
		Range:        map[string]string{"start_date": startDate, "end_date": endDate},
	}
	for printer, kpi := range ProductionKPIs(facts) {
		g.InProduction[printer] = kpi.InProduction
		g.Shipped[printer] = kpi.Shipped
	}
	return g
}
