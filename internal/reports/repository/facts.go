// Package repository reads report facts from the orders table for PostgreSQL
// and MySQL. Eligibility is filtered in SQL; bucketing happens in Go so local
// calendar days do not depend on the database session timezone.
package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/diffrun/opsdesk/internal/reports/domain"
)

const factColumns = `order_id, processed_at, total_price, printer, shipping_status, delivered_at, status`

// sqlDialect renders the parts of the fact query that differ between databases.
type sqlDialect struct {
	placeholder func(n int) string
	regexpOp    string
}

var (
	postgresDialect = sqlDialect{
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
		regexpOp:    "~",
	}
	mysqlDialect = sqlDialect{
		placeholder: func(int) string { return "?" },
		regexpOp:    "REGEXP",
	}
)

// buildFactQuery renders the SELECT for q.
func (d sqlDialect) buildFactQuery(q domain.FactQuery) (string, []any) {
	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return d.placeholder(len(args))
	}
	list := func(values []string) string {
		ph := make([]string, len(values))
		for i, v := range values {
			ph[i] = arg(v)
		}
		return strings.Join(ph, ", ")
	}

	// Fact timestamps come from this expression; PaidOnly dates unprocessed orders by creation.
	at := "processed_at"
	conds = append(conds, "paid = "+arg(true))
	if q.PaidOnly {
		at = "COALESCE(processed_at, created_at)"
	} else {
		conds = append(conds,
			"processed_at IS NOT NULL",
			fmt.Sprintf("order_id %s %s", d.regexpOp, arg(domain.ReportablePattern)),
			fmt.Sprintf("UPPER(COALESCE(discount_code, '')) NOT IN (%s)", list(domain.ExcludedDiscountCodes)),
		)
	}

	if !q.AllTime {
		conds = append(conds,
			at+" >= "+arg(q.Window.Start.UTC()),
			at+" < "+arg(q.Window.End.UTC()),
		)
	}

	if q.Locale != nil {
		conds = append(conds, localeCond(*q.Locale, arg))
	}

	if len(q.Printers) > 0 {
		lowered := make([]string, len(q.Printers))
		for i, p := range q.Printers {
			lowered[i] = strings.ToLower(p)
		}
		conds = append(conds, fmt.Sprintf("LOWER(printer) IN (%s)", list(lowered)))
	}

	if q.ExcludeCancelled {
		conds = append(conds, "status <> "+arg("cancelled"))
	}

	columns := factColumns
	if at != "processed_at" {
		columns = strings.Replace(factColumns, "processed_at", at+" AS processed_at", 1)
	}
	query := fmt.Sprintf("SELECT %s FROM orders WHERE %s ORDER BY %s",
		columns, strings.Join(conds, " AND "), at)
	return query, args
}

func localeCond(l domain.LocaleFilter, arg func(any) string) string {
	match := "UPPER(COALESCE(locale, '')) = " + arg(l.Locale)
	if l.Mode == domain.LocaleIndiaOrUnset {
		match = fmt.Sprintf("(%s OR COALESCE(locale, '') = '')", match)
	}
	return match
}

// buildJobQuery renders the SELECT of preview job creation times in w.
func (d sqlDialect) buildJobQuery(w domain.Window, locale *domain.LocaleFilter) (string, []any) {
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return d.placeholder(len(args))
	}
	conds := []string{
		"job_id IS NOT NULL",
		"job_id <> ''",
		"created_at >= " + arg(w.Start.UTC()),
		"created_at < " + arg(w.End.UTC()),
	}
	if locale != nil {
		conds = append(conds, localeCond(*locale, arg))
	}
	return "SELECT created_at FROM orders WHERE " + strings.Join(conds, " AND ") + " ORDER BY created_at", args
}

func scanTimes(rows *sql.Rows) ([]time.Time, error) {
	var times []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		times = append(times, t)
	}
	return times, rows.Err()
}

func scanFacts(rows *sql.Rows) ([]domain.Fact, error) {
	var facts []domain.Fact
	for rows.Next() {
		var (
			f           domain.Fact
			orderID     sql.NullString
			deliveredAt sql.NullTime
		)
		if err := rows.Scan(
			&orderID, &f.ProcessedAt, &f.TotalPrice, &f.Printer, &f.ShippingStatus, &deliveredAt, &f.Status,
		); err != nil {
			return nil, err
		}
		f.OrderID = orderID.String
		if deliveredAt.Valid {
			t := deliveredAt.Time
			f.DeliveredAt = &t
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}
