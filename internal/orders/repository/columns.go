// Package repository implements order persistence for PostgreSQL and MySQL.
// Every state transition that must happen at most once is a conditional UPDATE
// whose RowsAffected decides the winner.
package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/diffrun/opsdesk/internal/orders/domain"
)

// orderColumns is the shared SELECT list; scanOrder reads it in this order.
const orderColumns = `id, order_id, job_id, email, phone, customer_name, child_name, book_id, book_style,
	locale, discount_code, total_price, currency, shipping_address, paid, workflows_total,
	workflows_completed, approved, status, status_remarks, status_updated_at, issue_origin,
	printer, print_status, cloudprinter_reference, print_sent_by, tracking_number, courier_partner,
	shipping_status, shipping_status_at, delivery_status, sr_order_id, sr_shipment_id, shipment_data,
	reprint_order_id, reprint_meta, locked, locked_by, locked_at, unlocked_by, unlocked_at,
	pickup_email_sent, pickup_email_sent_at, production_email_sent, production_email_sent_at,
	feedback_email_sent, feedback_email_sent_at, nudge_stage, nudge_last_sent_at, created_at,
	processed_at, approved_at, print_sent_at, shipped_at, delivered_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanOrder reads one row selected with orderColumns. uuid.UUID scans both the
// PostgreSQL text form and the MySQL BINARY(16) form.
func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		o              domain.Order
		orderID, jobID sql.NullString
		status         string
		address        []byte
		shipment       []byte
		reprintMeta    []byte
	)

	err := row.Scan(
		&o.ID, &orderID, &jobID, &o.Email, &o.Phone, &o.CustomerName, &o.ChildName, &o.BookID, &o.BookStyle,
		&o.Locale, &o.DiscountCode, &o.TotalPrice, &o.Currency, &address, &o.Paid, &o.WorkflowsTotal,
		&o.WorkflowsCompleted, &o.Approved, &status, &o.StatusRemarks, &o.StatusUpdatedAt, &o.IssueOrigin,
		&o.Printer, &o.PrintStatus, &o.CloudprinterReference, &o.PrintSentBy, &o.TrackingNumber, &o.CourierPartner,
		&o.ShippingStatus, &o.ShippingStatusAt, &o.DeliveryStatus, &o.ShiprocketOrderID, &o.ShiprocketShipmentID, &shipment,
		&o.ReprintOrderID, &reprintMeta, &o.Lock.Locked, &o.Lock.LockedBy, &o.Lock.LockedAt, &o.Lock.UnlockedBy, &o.Lock.UnlockedAt,
		&o.Notifications.PickupEmailSent, &o.Notifications.PickupEmailSentAt,
		&o.Notifications.ProductionEmailSent, &o.Notifications.ProductionEmailSentAt,
		&o.Notifications.FeedbackEmailSent, &o.Notifications.FeedbackEmailSentAt,
		&o.NudgeStage, &o.NudgeLastSentAt, &o.CreatedAt,
		&o.ProcessedAt, &o.ApprovedAt, &o.PrintSentAt, &o.ShippedAt, &o.DeliveredAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.OrderID = orderID.String
	o.JobID = jobID.String
	o.Status = domain.Status(status)

	if len(address) > 0 {
		if err := json.Unmarshal(address, &o.ShippingAddress); err != nil {
			return nil, fmt.Errorf("failed to decode shipping_address: %w", err)
		}
	}
	if len(shipment) > 0 {
		var data domain.ShipmentData
		if err := json.Unmarshal(shipment, &data); err != nil {
			return nil, fmt.Errorf("failed to decode shipment_data: %w", err)
		}
		o.ShipmentData = &data
	}
	o.ReprintMeta = map[string]domain.ReprintMeta{}
	if len(reprintMeta) > 0 {
		if err := json.Unmarshal(reprintMeta, &o.ReprintMeta); err != nil {
			return nil, fmt.Errorf("failed to decode reprint_meta: %w", err)
		}
	}

	return &o, nil
}

func scanOrders(rows *sql.Rows) ([]*domain.Order, error) {
	orders := make([]*domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

// nullString stores "" as NULL so unique indexes on optional identifiers hold.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func marshalJSON(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func marshalShipment(data *domain.ShipmentData) ([]byte, error) {
	if data == nil {
		return nil, nil
	}
	return json.Marshal(data)
}

func marshalReprintMeta(meta map[string]domain.ReprintMeta) ([]byte, error) {
	if meta == nil {
		meta = map[string]domain.ReprintMeta{}
	}
	return json.Marshal(meta)
}

// notificationColumns maps a notification kind to its flag and timestamp columns.
func notificationColumns(kind domain.NotificationKind) (flag, at string, err error) {
	switch kind {
	case domain.NotificationPickupShipped:
		return "pickup_email_sent", "pickup_email_sent_at", nil
	case domain.NotificationProduction:
		return "production_email_sent", "production_email_sent_at", nil
	case domain.NotificationFeedback:
		return "feedback_email_sent", "feedback_email_sent_at", nil
	default:
		return "", "", kind.Validate()
	}
}

func scanNudgeAttempts(rows *sql.Rows) ([]domain.NudgeAttempt, error) {
	attempts := make([]domain.NudgeAttempt, 0)
	for rows.Next() {
		var a domain.NudgeAttempt
		var status string
		if err := rows.Scan(&a.Stage, &status, &a.Via, &a.Attempts, &a.Error, &a.At); err != nil {
			return nil, err
		}
		a.Status = domain.NudgeAttemptStatus(status)
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return attempts, nil
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps term for a substring LIKE match, escaping its wildcards.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

// jobOrderBy renders the ORDER BY of a job listing. Unknown columns sort by
// creation.
func jobOrderBy(f domain.JobFilter) string {
	column := "created_at"
	if domain.JobSortColumns[f.SortBy] {
		column = f.SortBy
	}
	dir := "ASC"
	if f.SortDesc {
		dir = "DESC"
	}
	return fmt.Sprintf("%s %s, id %s", column, dir, dir)
}
