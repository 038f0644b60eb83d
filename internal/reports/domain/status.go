package domain

import (
	"strings"
	"time"
)

// OrderStatusRow counts one processing day's orders per fulfillment state,
// with the order ids behind each count. Terminal operator statuses take an
// order out of the fulfillment columns. An order with a production printer is
// both sent_to_print and one of new, shipped or delivered.
type OrderStatusRow struct {
	Date  string `json:"date"`
	Total int    `json:"total"`

	Unapproved     int      `json:"unapproved"`
	UnapprovedIDs  []string `json:"unapproved_ids"`
	SentToPrint    int      `json:"sent_to_print"`
	SentToPrintIDs []string `json:"sent_to_print_ids"`
	New            int      `json:"new"`
	NewIDs         []string `json:"new_ids"`
	Shipped        int      `json:"shipped"`
	ShippedIDs     []string `json:"shipped_ids"`
	Delivered      int      `json:"delivered"`
	DeliveredIDs   []string `json:"delivered_ids"`

	Cancelled    int      `json:"cancelled"`
	CancelledIDs []string `json:"cancelled_ids"`
	Rejected     int      `json:"rejected"`
	RejectedIDs  []string `json:"rejected_ids"`
	Refunded     int      `json:"refunded"`
	RefundedIDs  []string `json:"refunded_ids"`
	Reprint      int      `json:"reprint"`
	ReprintIDs   []string `json:"reprint_ids"`
}

// OrderStatusReport is the per-day order status table.
type OrderStatusReport struct {
	Labels  []string         `json:"labels"`
	Rows    []OrderStatusRow `json:"rows"`
	Printer string           `json:"printer"`
}

func newOrderStatusRow(date string) OrderStatusRow {
	return OrderStatusRow{
		Date:           date,
		UnapprovedIDs:  []string{},
		SentToPrintIDs: []string{},
		NewIDs:         []string{},
		ShippedIDs:     []string{},
		DeliveredIDs:   []string{},
		CancelledIDs:   []string{},
		RejectedIDs:    []string{},
		RefundedIDs:    []string{},
		ReprintIDs:     []string{},
	}
}

func (r *OrderStatusRow) add(f Fact) {
	r.Total++
	id := f.OrderID

	switch strings.ToLower(strings.TrimSpace(f.Status)) {
	case "cancelled":
		r.CancelledIDs = append(r.CancelledIDs, id)
		return
	case "rejected":
		r.RejectedIDs = append(r.RejectedIDs, id)
		return
	case "refunded":
		r.RefundedIDs = append(r.RefundedIDs, id)
		return
	case "reprint":
		r.ReprintIDs = append(r.ReprintIDs, id)
		return
	}

	printer := strings.ToLower(strings.TrimSpace(f.Printer))
	if printer == "" {
		r.UnapprovedIDs = append(r.UnapprovedIDs, id)
	}
	for _, p := range ProductionPrinters {
		if printer == strings.ToLower(p) {
			r.SentToPrintIDs = append(r.SentToPrintIDs, id)
		}
	}

	status := strings.ToLower(strings.TrimSpace(f.ShippingStatus))
	switch {
	case status == "":
		r.NewIDs = append(r.NewIDs, id)
	case strings.Contains(status, "delivered"):
		r.DeliveredIDs = append(r.DeliveredIDs, id)
	default:
		// Any other partner status means the parcel left the printer.
		r.ShippedIDs = append(r.ShippedIDs, id)
	}
}

func (r *OrderStatusRow) count() {
	r.Unapproved = len(r.UnapprovedIDs)
	r.SentToPrint = len(r.SentToPrintIDs)
	r.New = len(r.NewIDs)
	r.Shipped = len(r.ShippedIDs)
	r.Delivered = len(r.DeliveredIDs)
	r.Cancelled = len(r.CancelledIDs)
	r.Rejected = len(r.RejectedIDs)
	r.Refunded = len(r.RefundedIDs)
	r.Reprint = len(r.ReprintIDs)
}

// OrderStatus builds one row per local day of w, zero-filling empty days.
func OrderStatus(facts []Fact, w Window, loc *time.Location, printer string) OrderStatusReport {
	labels := Labels(w, GranularityDay, loc)
	rows := make([]OrderStatusRow, len(labels))
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		rows[i] = newOrderStatusRow(l)
		index[l] = i
	}
	for _, f := range facts {
		if !w.Contains(f.ProcessedAt) {
			continue
		}
		if i, ok := index[BucketLabel(f.ProcessedAt, GranularityDay, loc)]; ok {
			rows[i].add(f)
		}
	}
	for i := range rows {
		rows[i].count()
	}
	return OrderStatusReport{Labels: labels, Rows: rows, Printer: printer}
}

// Conversion compares preview jobs with paid orders per bucket.
type Conversion struct {
	Labels             []string    `json:"labels"`
	PreviousLabels     []string    `json:"previous_labels"`
	CurrentJobs        []int       `json:"current_jobs"`
	PreviousJobs       []int       `json:"previous_jobs"`
	CurrentOrders      []int       `json:"current_orders"`
	PreviousOrders     []int       `json:"previous_orders"`
	ConversionCurrent  []float64   `json:"conversion_current"`
	ConversionPrevious []float64   `json:"conversion_previous"`
	Granularity        Granularity `json:"granularity"`
}

// CountTimes counts the times per bucket of w, zero-filling empty buckets.
func CountTimes(times []time.Time, w Window, g Granularity, loc *time.Location) []int {
	facts := make([]Fact, len(times))
	for i, t := range times {
		facts[i] = Fact{ProcessedAt: t}
	}
	return Bucket(facts, w, g, loc, func(Fact) int { return 1 })
}

// ConversionRates returns orders as a percentage of jobs per bucket; buckets
// without jobs are zero.
func ConversionRates(orders, jobs []int) []float64 {
	out := make([]float64, len(orders))
	for i := range orders {
		if i < len(jobs) && jobs[i] > 0 {
			out[i] = float64(orders[i]) * 100 / float64(jobs[i])
		}
	}
	return out
}
