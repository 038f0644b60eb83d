package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/diffrun/opsdesk/internal/timeutil"
)

// ExcludedDiscountCodes mark orders that never count in reports.
var ExcludedDiscountCodes = []string{"TEST", "COLLAB", "REJECTED"}

// ReportableOrderID matches storefront order ids such as "#1234" or "1234_2".
var ReportableOrderID = regexp.MustCompile(`^#?\d+(_\d+)?$`)

// ReportablePattern is ReportableOrderID as a SQL regular expression.
const ReportablePattern = `^#?[0-9]+(_[0-9]+)?$`

// SLADeliveryDays is how many local days after processing a delivery is on time.
const SLADeliveryDays = 8

// CurrencyHintMixed marks revenue summed across storefront currencies.
const CurrencyHintMixed = "mixed"

// NoStatusLabel is the ship-status label of orders without a partner status.
const NoStatusLabel = "NEW"

// ProductionPrinters are the printers tracked by the production reports.
var ProductionPrinters = []string{"Genesis", "Yara"}

// ShippedStatuses are partner statuses meaning the courier has the parcel.
var ShippedStatuses = map[string]bool{
	"PICKED UP":                  true,
	"IN TRANSIT":                 true,
	"OUT FOR DELIVERY":           true,
	"DELIVERED":                  true,
	"REACHED AT DESTINATION HUB": true,
}

// LocaleMode selects how the locale filter matches.
type LocaleMode int

// Locale filter modes.
const (
	// LocaleIndiaOrUnset matches IN and orders without a locale.
	LocaleIndiaOrUnset LocaleMode = iota
	// LocaleExact matches one locale only.
	LocaleExact
)

// LocaleFilter restricts reports to a storefront locale.
type LocaleFilter struct {
	Mode   LocaleMode
	Locale string
}

// ParseLocale maps the loc query value: "IN" and "ALL" include orders without
// a locale, "IN_ONLY" is strictly IN, anything else is an exact match.
func ParseLocale(loc string) LocaleFilter {
	loc = strings.ToUpper(strings.TrimSpace(loc))
	switch loc {
	case "", "IN", "ALL":
		return LocaleFilter{Mode: LocaleIndiaOrUnset, Locale: "IN"}
	case "IN_ONLY", "INDIA":
		return LocaleFilter{Mode: LocaleExact, Locale: "IN"}
	default:
		return LocaleFilter{Mode: LocaleExact, Locale: loc}
	}
}

// Matches reports whether locale passes the filter.
func (f LocaleFilter) Matches(locale string) bool {
	locale = strings.ToUpper(strings.TrimSpace(locale))
	if f.Mode == LocaleIndiaOrUnset && locale == "" {
		return true
	}
	return locale == f.Locale
}

// Fact is the slice of an eligible order the reports aggregate.
type Fact struct {
	OrderID        string
	ProcessedAt    time.Time
	TotalPrice     float64
	Printer        string
	ShippingStatus string
	DeliveredAt    *time.Time
	// Status is the operator status: active, cancelled, rejected, refunded or reprint.
	Status string
}

// FactQuery selects eligible orders: paid, processed, with a reportable order
// id and no excluded discount code, unless PaidOnly is set.
type FactQuery struct {
	Window Window
	// AllTime ignores Window.
	AllTime  bool
	Locale   *LocaleFilter
	Printers []string
	// ExcludeCancelled drops orders an operator cancelled.
	ExcludeCancelled bool
	// PaidOnly keeps every paid order: the order id and discount code filters
	// are skipped and orders never processed are dated by creation.
	PaidOnly bool
}

// Series is a bucketed metric for the current and previous windows.
type Series[T int | float64] struct {
	Labels         []string    `json:"labels"`
	PreviousLabels []string    `json:"previous_labels"`
	Current        []T         `json:"current"`
	Previous       []T         `json:"previous"`
	Granularity    Granularity `json:"granularity"`
	Exclusions     []string    `json:"exclusions,omitempty"`
	CurrencyHint   string      `json:"currency_hint,omitempty"`
}

// Bucket sums value(f) per bucket of w, zero-filling empty buckets.
func Bucket[T int | float64](
	facts []Fact,
	w Window,
	g Granularity,
	loc *time.Location,
	value func(Fact) T,
) []T {
	labels := Labels(w, g, loc)
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}

	out := make([]T, len(labels))
	for _, f := range facts {
		if !w.Contains(f.ProcessedAt) {
			continue
		}
		if i, ok := index[BucketLabel(f.ProcessedAt, g, loc)]; ok {
			out[i] += value(f)
		}
	}
	return out
}

// ShipStatusReport counts orders per partner status for each processing day.
type ShipStatusReport struct {
	Labels   []string         `json:"labels"`
	Totals   []int            `json:"totals"`
	Statuses map[string][]int `json:"statuses"`
}

// ShipStatus groups facts by local processing day and shipping status.
func ShipStatus(facts []Fact, w Window, loc *time.Location) ShipStatusReport {
	labels := Labels(w, GranularityDay, loc)
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}

	report := ShipStatusReport{
		Labels:   labels,
		Totals:   make([]int, len(labels)),
		Statuses: map[string][]int{},
	}
	for _, f := range facts {
		i, ok := index[BucketLabel(f.ProcessedAt, GranularityDay, loc)]
		if !ok || !w.Contains(f.ProcessedAt) {
			continue
		}
		status := strings.ToUpper(strings.TrimSpace(f.ShippingStatus))
		if status == "" {
			status = NoStatusLabel
		}
		counts, seen := report.Statuses[status]
		if !seen {
			counts = make([]int, len(labels))
			report.Statuses[status] = counts
		}
		counts[i]++
		report.Totals[i]++
	}
	return report
}

// SLASummary classifies deliveries against the SLA.
type SLASummary struct {
	DeliveredWithin int `json:"delivered_within_sla"`
	Late            int `json:"late"`
	Pending         int `json:"pending"`
	Total           int `json:"total_orders"`
}

// Summarize classifies each fact at now: delivered within SLADeliveryDays
// local days, late (delivered after, or undelivered past the SLA) or pending.
func Summarize(facts []Fact, now time.Time, loc *time.Location) SLASummary {
	var s SLASummary
	for _, f := range facts {
		s.Total++
		delivered := strings.EqualFold(strings.TrimSpace(f.ShippingStatus), "DELIVERED")
		switch {
		case delivered && f.DeliveredAt != nil:
			if timeutil.DaysBetween(f.ProcessedAt, *f.DeliveredAt, loc) <= SLADeliveryDays {
				s.DeliveredWithin++
			} else {
				s.Late++
			}
		case timeutil.DaysBetween(f.ProcessedAt, now, loc) > SLADeliveryDays:
			s.Late++
		default:
			s.Pending++
		}
	}
	return s
}

// PrinterKPI is the production state of one printer's orders.
type PrinterKPI struct {
	InProduction int `json:"in_production"`
	Shipped      int `json:"shipped"`
	TotalSent    int `json:"total_sent"`
}

// ProductionKPIs splits each printer's orders into in production and shipped.
func ProductionKPIs(facts []Fact) map[string]PrinterKPI {
	out := make(map[string]PrinterKPI, len(ProductionPrinters))
	for _, p := range ProductionPrinters {
		out[strings.ToLower(p)] = PrinterKPI{}
	}
	for _, f := range facts {
		key := strings.ToLower(strings.TrimSpace(f.Printer))
		kpi, ok := out[key]
		if !ok {
			continue
		}
		kpi.TotalSent++
		if ShippedStatuses[strings.ToUpper(strings.TrimSpace(f.ShippingStatus))] {
			kpi.Shipped++
		} else {
			kpi.InProduction++
		}
		out[key] = kpi
	}
	return out
}
