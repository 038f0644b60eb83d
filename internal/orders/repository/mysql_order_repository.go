package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/diffrun/opsdesk/internal/database"
	apperrors "github.com/diffrun/opsdesk/internal/errors"
	"github.com/diffrun/opsdesk/internal/orders/domain"
)

// MySQLOrderRepository implements order persistence for MySQL 8. UUIDs are
// stored as BINARY(16).
type MySQLOrderRepository struct {
	db *sql.DB
}

// NewMySQLOrderRepository creates a new MySQL order repository.
func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{db: db}
}

func binaryID(id uuid.UUID) ([]byte, error) {
	b, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal order id")
	}
	return b, nil
}

// Create inserts a new order or preview job.
func (m *MySQLOrderRepository) Create(ctx context.Context, o *domain.Order) error {
	querier := database.GetTx(ctx, m.db)

	id, err := binaryID(o.ID)
	if err != nil {
		return err
	}
	address, err := marshalJSON(o.ShippingAddress)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode shipping address")
	}
	meta, err := marshalReprintMeta(o.ReprintMeta)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode reprint meta")
	}

	query := `INSERT INTO orders (id, order_id, job_id, email, phone, customer_name, child_name, book_id,
			  book_style, locale, discount_code, total_price, currency, shipping_address, paid,
			  workflows_total, workflows_completed, status, status_remarks, reprint_meta, created_at,
			  processed_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, '', ?, ?, ?, ?)`

	_, err = querier.ExecContext(ctx, query,
		id, nullString(o.OrderID), nullString(o.JobID), o.Email, o.Phone, o.CustomerName, o.ChildName,
		o.BookID, o.BookStyle, o.Locale, o.DiscountCode, o.TotalPrice, o.Currency, address, o.Paid,
		o.WorkflowsTotal, o.WorkflowsCompleted, string(o.Status), meta, o.CreatedAt, o.ProcessedAt, o.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "order or job already exists")
		}
		return apperrors.Wrap(err, "failed to create order")
	}
	return nil
}

func (m *MySQLOrderRepository) getOne(ctx context.Context, where string, args ...any) (*domain.Order, error) {
	querier := database.GetTx(ctx, m.db)

	query := fmt.Sprintf(`SELECT %s FROM orders WHERE %s`, orderColumns, where)
	o, err := scanOrder(querier.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get order")
	}
	return o, nil
}

// GetByID retrieves an order by its internal identifier.
func (m *MySQLOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	bid, err := binaryID(id)
	if err != nil {
		return nil, err
	}
	return m.getOne(ctx, `id = ?`, bid)
}

// GetByOrderID retrieves an order by its storefront order identifier.
func (m *MySQLOrderRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.Order, error) {
	return m.getOne(ctx, `order_id = ?`, orderID)
}

// GetByOrderIDForUpdate retrieves an order and row-locks it for the surrounding transaction.
func (m *MySQLOrderRepository) GetByOrderIDForUpdate(ctx context.Context, orderID string) (*domain.Order, error) {
	return m.getOne(ctx, `order_id = ? FOR UPDATE`, orderID)
}

// GetByJobID retrieves an order by its preview job identifier.
func (m *MySQLOrderRepository) GetByJobID(ctx context.Context, jobID string) (*domain.Order, error) {
	return m.getOne(ctx, `job_id = ?`, jobID)
}

// FindForShipment resolves the order a shipping event refers to: by order id
// when the event carries one, otherwise by AWB.
func (m *MySQLOrderRepository) FindForShipment(ctx context.Context, orderID, awb string) (*domain.Order, error) {
	// An event that names an order never falls back to its AWB.
	if orderID != "" {
		return m.GetByOrderID(ctx, orderID)
	}
	if awb == "" {
		return nil, domain.ErrOrderNotFound
	}
	return m.getOne(ctx, `tracking_number = ? ORDER BY created_at DESC LIMIT 1`, awb)
}

// List returns orders matching filter, newest first.
func (m *MySQLOrderRepository) List(
	ctx context.Context,
	filter domain.ListFilter,
	offset, limit int,
) ([]*domain.Order, error) {
	querier := database.GetTx(ctx, m.db)

	conds := []string{"1 = 1"}
	args := []any{}
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Printer != "" {
		conds = append(conds, "printer = ?")
		args = append(args, filter.Printer)
	}
	if filter.Email != "" {
		conds = append(conds, "LOWER(email) = LOWER(?)")
		args = append(args, filter.Email)
	}
	if filter.Locale != "" {
		conds = append(conds, "locale = ?")
		args = append(args, filter.Locale)
	}
	if filter.Paid != nil {
		conds = append(conds, "paid = ?")
		args = append(args, *filter.Paid)
	}
	args = append(args, limit, offset)

	query := fmt.Sprintf(`SELECT %s FROM orders WHERE %s ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		orderColumns, strings.Join(conds, " AND "))

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list orders")
	}
	defer func() {
		_ = rows.Close()
	}()

	orders, err := scanOrders(rows)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to scan orders")
	}
	return orders, nil
}

// Update writes the operator-owned columns of an order.
func (m *MySQLOrderRepository) Update(ctx context.Context, o *domain.Order) error {
	querier := database.GetTx(ctx, m.db)

	id, err := binaryID(o.ID)
	if err != nil {
		return err
	}
	address, err := marshalJSON(o.ShippingAddress)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode shipping address")
	}
	meta, err := marshalReprintMeta(o.ReprintMeta)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode reprint meta")
	}

	query := `UPDATE orders SET email = ?, phone = ?, customer_name = ?, child_name = ?, book_style = ?,
			  discount_code = ?, locale = ?, shipping_address = ?, status = ?, status_remarks = ?,
			  status_updated_at = ?, issue_origin = ?, reprint_order_id = ?, reprint_meta = ?, updated_at = ?
			  WHERE id = ?`

	res, err := querier.ExecContext(ctx, query,
		o.Email, o.Phone, o.CustomerName, o.ChildName, o.BookStyle, o.DiscountCode, o.Locale, address,
		string(o.Status), o.StatusRemarks, o.StatusUpdatedAt, o.IssueOrigin, o.ReprintOrderID, meta, o.UpdatedAt,
		id,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update order")
	}
	if ok, err := affected(res); err != nil {
		return apperrors.Wrap(err, "failed to update order")
	} else if !ok {
		return domain.ErrOrderNotFound
	}
	return nil
}

// AcquireLock takes the admin-edit lock when it is free or already held by actor.
func (m *MySQLOrderRepository) AcquireLock(ctx context.Context, orderID, actor string, at time.Time) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE orders SET locked = TRUE, locked_by = ?, locked_at = ?, updated_at = ?
			  WHERE order_id = ? AND (locked = FALSE OR LOWER(locked_by) = LOWER(?))`

	res, err := querier.ExecContext(ctx, query, actor, at, at, orderID, actor)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to acquire order lock")
	}
	return affected(res)
}

// ReleaseLock clears the admin-edit lock when it is held.
func (m *MySQLOrderRepository) ReleaseLock(ctx context.Context, orderID, actor string, at time.Time) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE orders SET locked = FALSE, unlocked_by = ?, unlocked_at = ?, updated_at = ?
			  WHERE order_id = ? AND locked = TRUE`

	res, err := querier.ExecContext(ctx, query, actor, at, at, orderID)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to release order lock")
	}
	return affected(res)
}

// ClaimNotification flips a notification flag from unset to set. Only the caller
// whose update matched the unset row gets true.
func (m *MySQLOrderRepository) ClaimNotification(
	ctx context.Context,
	id uuid.UUID,
	kind domain.NotificationKind,
	at time.Time,
) (bool, error) {
	flag, atColumn, err := notificationColumns(kind)
	if err != nil {
		return false, err
	}
	bid, err := binaryID(id)
	if err != nil {
		return false, err
	}

	querier := database.GetTx(ctx, m.db)

	query := fmt.Sprintf(`UPDATE orders SET %[1]s = TRUE, %[2]s = ?, updated_at = ?
			  WHERE id = ? AND %[1]s = FALSE`, flag, atColumn)

	res, err := querier.ExecContext(ctx, query, at, at, bid)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to claim notification")
	}
	return affected(res)
}

// MarkShipped sets shipped_at unless it is already set.
func (m *MySQLOrderRepository) MarkShipped(ctx context.Context, id uuid.UUID, at time.Time) error {
	bid, err := binaryID(id)
	if err != nil {
		return err
	}

	querier := database.GetTx(ctx, m.db)

	query := `UPDATE orders SET shipped_at = COALESCE(shipped_at, ?), updated_at = ? WHERE id = ?`

	if _, err := querier.ExecContext(ctx, query, at, at, bid); err != nil {
		return apperrors.Wrap(err, "failed to mark order shipped")
	}
	return nil
}

// ApplyShipment writes a shipping partner status event. Events older than the
// stored status timestamp are ignored and reported as not applied.
func (m *MySQLOrderRepository) ApplyShipment(
	ctx context.Context,
	id uuid.UUID,
	u domain.ShipmentUpdate,
) (bool, error) {
	bid, err := binaryID(id)
	if err != nil {
		return false, err
	}
	data, err := marshalShipment(&u.Data)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to encode shipment data")
	}

	querier := database.GetTx(ctx, m.db)

	query := `UPDATE orders SET shipment_data = ?,
			  tracking_number = COALESCE(NULLIF(?, ''), tracking_number),
			  courier_partner = COALESCE(NULLIF(?, ''), courier_partner),
			  shipping_status = ?, shipping_status_at = ?,
			  delivery_status = COALESCE(NULLIF(?, ''), delivery_status),
			  delivered_at = COALESCE(delivered_at, ?),
			  updated_at = ?
			  WHERE id = ?
			  AND (shipping_status_at IS NULL OR ? IS NULL OR shipping_status_at <= ?)`

	res, err := querier.ExecContext(ctx, query,
		data, u.TrackingNumber, u.CourierPartner, u.ShippingStatus, u.ShippingStatusAt,
		u.DeliveryStatus, u.DeliveredAt, u.At, bid, u.ShippingStatusAt, u.ShippingStatusAt,
	)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to apply shipment update")
	}
	return affected(res)
}

// ApplyPrintStatus writes a print partner status event.
func (m *MySQLOrderRepository) ApplyPrintStatus(ctx context.Context, id uuid.UUID, u domain.PrintUpdate) error {
	bid, err := binaryID(id)
	if err != nil {
		return err
	}

	querier := database.GetTx(ctx, m.db)

	query := `UPDATE orders SET print_status = ?,
			  tracking_number = COALESCE(NULLIF(?, ''), tracking_number),
			  courier_partner = COALESCE(NULLIF(?, ''), courier_partner),
			  updated_at = ?
			  WHERE id = ?`

	if _, err := querier.ExecContext(ctx, query, u.PrintStatus, u.TrackingNumber, u.CourierPartner, u.At, bid); err != nil {
		return apperrors.Wrap(err, "failed to apply print status")
	}
	return nil
}

// MarkSentToPrinter records a successful printer hand-off.
func (m *MySQLOrderRepository) MarkSentToPrinter(ctx context.Context, id uuid.UUID, d domain.PrintDispatch) error {
	bid, err := binaryID(id)
	if err != nil {
		return err
	}

	querier := database.GetTx(ctx, m.db)

	query := `UPDATE orders SET print_status = ?, printer = ?, cloudprinter_reference = ?, print_sent_by = ?,
			  print_sent_at = COALESCE(print_sent_at, ?), approved = TRUE,
			  approved_at = COALESCE(approved_at, ?), updated_at = ?
			  WHERE id = ?`

	_, err = querier.ExecContext(ctx, query,
		domain.PrintStatusSentToPrinter, d.Printer, d.Reference, d.SentBy, d.At, d.At, d.At, bid)
	if err != nil {
		return apperrors.Wrap(err, "failed to mark order sent to printer")
	}
	return nil
}

// ClaimPrintSubmission marks an order as being handed to the printer. Only one
// caller wins for an order that has no printer reference yet.
func (m *MySQLOrderRepository) ClaimPrintSubmission(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	bid, err := binaryID(id)
	if err != nil {
		return false, err
	}

	querier := database.GetTx(ctx, m.db)

	query := `UPDATE orders SET print_status = ?, updated_at = ?
			  WHERE id = ? AND cloudprinter_reference = '' AND print_sent_at IS NULL AND print_status <> ?`

	res, err := querier.ExecContext(ctx, query, domain.PrintStatusSubmitting, at, bid, domain.PrintStatusSubmitting)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to claim print submission")
	}
	return affected(res)
}

// ReleasePrintSubmission hands a claimed submission back, restoring the print
// status the order had before the claim.
func (m *MySQLOrderRepository) ReleasePrintSubmission(
	ctx context.Context,
	id uuid.UUID,
	previous string,
	at time.Time,
) error {
	bid, err := binaryID(id)
	if err != nil {
		return err
	}

	querier := database.GetTx(ctx, m.db)

	query := `UPDATE orders SET print_status = ?, updated_at = ? WHERE id = ? AND print_status = ?`

	if _, err := querier.ExecContext(ctx, query, previous, at, bid, domain.PrintStatusSubmitting); err != nil {
		return apperrors.Wrap(err, "failed to release print submission")
	}
	return nil
}

// SaveShipmentBooking stores shipping partner identifiers on the base order.
func (m *MySQLOrderRepository) SaveShipmentBooking(ctx context.Context, id uuid.UUID, b domain.ShipmentBooking) error {
	bid, err := binaryID(id)
	if err != nil {
		return err
	}

	querier := database.GetTx(ctx, m.db)

	query := `UPDATE orders SET sr_order_id = COALESCE(NULLIF(?, ''), sr_order_id),
			  sr_shipment_id = COALESCE(NULLIF(?, ''), sr_shipment_id),
			  tracking_number = COALESCE(NULLIF(?, ''), tracking_number),
			  courier_partner = COALESCE(NULLIF(?, ''), courier_partner),
			  updated_at = ?
			  WHERE id = ?`

	_, err = querier.ExecContext(ctx, query,
		b.ShiprocketOrderID, b.ShiprocketShipmentID, b.TrackingNumber, b.CourierPartner, b.At, bid)
	if err != nil {
		return apperrors.Wrap(err, "failed to save shipment booking")
	}
	return nil
}

// SetApproved toggles the approval flag. approved_at keeps its first value.
func (m *MySQLOrderRepository) SetApproved(ctx context.Context, id uuid.UUID, approved bool, at time.Time) error {
	bid, err := binaryID(id)
	if err != nil {
		return err
	}

	querier := database.GetTx(ctx, m.db)

	query := `UPDATE orders SET approved = ?,
			  approved_at = CASE WHEN ? THEN COALESCE(approved_at, ?) ELSE approved_at END,
			  updated_at = ?
			  WHERE id = ?`

	if _, err := querier.ExecContext(ctx, query, approved, approved, at, at, bid); err != nil {
		return apperrors.Wrap(err, "failed to set approval")
	}
	return nil
}

// ListNudgeCandidates returns, per customer email, the latest unpaid preview job
// looked up since q.Since, restricted to jobs created in the due window. Emails
// with any paid order in the lookup window are excluded.
func (m *MySQLOrderRepository) ListNudgeCandidates(
	ctx context.Context,
	q domain.NudgeCandidateQuery,
) ([]*domain.Order, error) {
	querier := database.GetTx(ctx, m.db)

	afterID, err := binaryID(q.AfterID)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM (
			  SELECT o.*,
			  ROW_NUMBER() OVER (PARTITION BY LOWER(o.email) ORDER BY o.created_at DESC) AS rn,
			  MAX(CASE WHEN o.paid THEN 1 ELSE 0 END) OVER (PARTITION BY LOWER(o.email)) AS any_paid
			  FROM orders o
			  WHERE o.created_at >= ? AND o.email <> '' AND LOWER(o.email) NOT LIKE ?
			  AND o.workflows_total > 0
			  ) t
			  WHERE t.rn = 1 AND t.any_paid = 0 AND t.paid = FALSE AND t.nudge_stage IN (0, 1, 2)
			  AND t.created_at >= ? AND t.created_at < ?
			  AND (t.created_at > ? OR (t.created_at = ? AND t.id > ?))
			  ORDER BY t.created_at, t.id
			  LIMIT ?`, orderColumns)

	rows, err := querier.QueryContext(ctx, query,
		q.Since, "%"+strings.ToLower(q.ExcludedDomain), q.DueFrom, q.DueBefore,
		q.AfterCreatedAt, q.AfterCreatedAt, afterID, q.Limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list nudge candidates")
	}
	defer func() {
		_ = rows.Close()
	}()

	orders, err := scanOrders(rows)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to scan nudge candidates")
	}
	return orders, nil
}

// AdvanceNudgeStage moves the nudge stage from one value to the next only if it
// still holds the expected value.
func (m *MySQLOrderRepository) AdvanceNudgeStage(
	ctx context.Context,
	id uuid.UUID,
	from, to int,
	at time.Time,
) (bool, error) {
	if to <= from {
		return false, apperrors.Wrapf(apperrors.ErrInvalidInput, "nudge stage cannot move from %d to %d", from, to)
	}
	bid, err := binaryID(id)
	if err != nil {
		return false, err
	}

	querier := database.GetTx(ctx, m.db)

	query := `UPDATE orders SET nudge_stage = ?, updated_at = ? WHERE id = ? AND nudge_stage = ?`

	res, err := querier.ExecContext(ctx, query, to, at, bid, from)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to advance nudge stage")
	}
	return affected(res)
}

// ListNudgeAttempts returns the attempt history of an order, by stage.
func (m *MySQLOrderRepository) ListNudgeAttempts(ctx context.Context, id uuid.UUID) ([]domain.NudgeAttempt, error) {
	bid, err := binaryID(id)
	if err != nil {
		return nil, err
	}

	querier := database.GetTx(ctx, m.db)

	query := `SELECT stage, status, via, attempts, error, at FROM nudge_attempts
			  WHERE order_ref = ? ORDER BY stage`

	rows, err := querier.QueryContext(ctx, query, bid)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list nudge attempts")
	}
	defer func() {
		_ = rows.Close()
	}()

	attempts, err := scanNudgeAttempts(rows)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to scan nudge attempts")
	}
	return attempts, nil
}

// BeginNudgeAttempt records a send in flight for a stage, counting it as an attempt.
func (m *MySQLOrderRepository) BeginNudgeAttempt(ctx context.Context, id uuid.UUID, stage int, at time.Time) error {
	bid, err := binaryID(id)
	if err != nil {
		return err
	}

	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO nudge_attempts (order_ref, stage, status, via, attempts, error, at)
			  VALUES (?, ?, ?, 'email', 1, '', ?)
			  ON DUPLICATE KEY UPDATE status = VALUES(status), attempts = attempts + 1, at = VALUES(at)`

	if _, err := querier.ExecContext(ctx, query, bid, stage, string(domain.NudgeSending), at); err != nil {
		return apperrors.Wrap(err, "failed to begin nudge attempt")
	}
	return nil
}

// ClaimNudgeRetry takes a failed stage back into flight if its attempt count is
// still the observed one.
func (m *MySQLOrderRepository) ClaimNudgeRetry(
	ctx context.Context,
	id uuid.UUID,
	stage, observedAttempts int,
	at time.Time,
) (bool, error) {
	bid, err := binaryID(id)
	if err != nil {
		return false, err
	}

	querier := database.GetTx(ctx, m.db)

	query := `UPDATE nudge_attempts SET status = ?, attempts = attempts + 1, at = ?
			  WHERE order_ref = ? AND stage = ? AND status = ? AND attempts = ?`

	res, err := querier.ExecContext(ctx, query,
		string(domain.NudgeSending), at, bid, stage, string(domain.NudgeFailed), observedAttempts)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to claim nudge retry")
	}
	return affected(res)
}

// FinishNudgeAttempt stores the outcome of an in-flight send. A sent outcome also
// stamps nudge_last_sent_at on the order.
func (m *MySQLOrderRepository) FinishNudgeAttempt(
	ctx context.Context,
	id uuid.UUID,
	stage int,
	status domain.NudgeAttemptStatus,
	errText string,
	at time.Time,
) error {
	bid, err := binaryID(id)
	if err != nil {
		return err
	}

	querier := database.GetTx(ctx, m.db)

	query := `UPDATE nudge_attempts SET status = ?, error = ?, at = ? WHERE order_ref = ? AND stage = ?`
	if _, err := querier.ExecContext(ctx, query, string(status), domain.TruncateError(errText), at, bid, stage); err != nil {
		return apperrors.Wrap(err, "failed to finish nudge attempt")
	}

	if status == domain.NudgeSent {
		query = `UPDATE orders SET nudge_last_sent_at = ?, updated_at = ? WHERE id = ?`
		if _, err := querier.ExecContext(ctx, query, at, at, bid); err != nil {
			return apperrors.Wrap(err, "failed to stamp nudge send")
		}
	}
	return nil
}

// ListFeedbackCandidates returns the latest delivered, processed order per email
// whose customer has never received a feedback email and whose delivery landed
// inside the feedback window.
func (m *MySQLOrderRepository) ListFeedbackCandidates(
	ctx context.Context,
	q domain.FeedbackCandidateQuery,
) ([]*domain.Order, error) {
	querier := database.GetTx(ctx, m.db)

	// Calendar days are compared after shifting both instants into the local zone.
	query := fmt.Sprintf(`SELECT %s FROM (
			  SELECT o.*, ROW_NUMBER() OVER (PARTITION BY LOWER(o.email) ORDER BY o.processed_at DESC) AS rn
			  FROM orders o
			  WHERE o.email <> '' AND o.processed_at IS NOT NULL AND o.processed_at >= ?
			  AND UPPER(o.shipping_status) = ? AND o.shipping_status_at IS NOT NULL
			  AND NOT EXISTS (
			  SELECT 1 FROM orders s WHERE LOWER(s.email) = LOWER(o.email) AND s.feedback_email_sent = TRUE
			  )
			  ) t
			  WHERE t.rn = 1
			  AND DATEDIFF(
			  DATE_ADD(t.shipping_status_at, INTERVAL ? SECOND),
			  DATE_ADD(t.processed_at, INTERVAL ? SECOND)
			  ) BETWEEN 0 AND ?
			  ORDER BY t.processed_at
			  LIMIT ?`, orderColumns)

	offset := int64(q.UTCOffset / time.Second)
	rows, err := querier.QueryContext(ctx, query,
		q.ProcessedSince, domain.ShippingStatusDelivered, offset, offset, q.MaxDeliveryDays, q.Limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list feedback candidates")
	}
	defer func() {
		_ = rows.Close()
	}()

	orders, err := scanOrders(rows)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to scan feedback candidates")
	}
	return orders, nil
}

// MarkFeedbackSentForEmail flags every order of a customer as having received
// the feedback email.
func (m *MySQLOrderRepository) MarkFeedbackSentForEmail(ctx context.Context, email string, at time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE orders SET feedback_email_sent = TRUE, feedback_email_sent_at = ?, updated_at = ?
			  WHERE LOWER(email) = LOWER(?) AND feedback_email_sent = FALSE`

	res, err := querier.ExecContext(ctx, query, at, at, email)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to mark feedback sent")
	}
	return res.RowsAffected()
}

// ListReconcileCandidates returns active orders with a tracking number whose
// shipment has not reached a final status and that neither changed nor were
// polled since staleBefore. Orders never polled come first, then the longest
// unpolled, so successive runs rotate through the backlog.
func (m *MySQLOrderRepository) ListReconcileCandidates(
	ctx context.Context,
	staleBefore time.Time,
	limit int,
) ([]*domain.Order, error) {
	querier := database.GetTx(ctx, m.db)

	// MySQL sorts NULL first in ascending order.
	query := fmt.Sprintf(`SELECT %s FROM orders
			  WHERE tracking_number <> '' AND status = ?
			  AND UPPER(shipping_status) NOT IN (?, ?)
			  AND updated_at < ?
			  AND (reconciled_at IS NULL OR reconciled_at < ?)
			  ORDER BY reconciled_at, updated_at
			  LIMIT ?`, orderColumns)

	rows, err := querier.QueryContext(ctx, query,
		string(domain.StatusActive), domain.ShippingStatusDelivered, domain.ShippingStatusRTODelivered,
		staleBefore, staleBefore, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list reconcile candidates")
	}
	defer func() {
		_ = rows.Close()
	}()

	orders, err := scanOrders(rows)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to scan reconcile candidates")
	}
	return orders, nil
}

// MarkReconciled stamps the last partner poll of an order. It leaves updated_at
// alone so an unchanged poll is not mistaken for a status change.
func (m *MySQLOrderRepository) MarkReconciled(ctx context.Context, id uuid.UUID, at time.Time) error {
	querier := database.GetTx(ctx, m.db)

	bid, err := binaryID(id)
	if err != nil {
		return err
	}
	if _, err := querier.ExecContext(ctx, `UPDATE orders SET reconciled_at = ? WHERE id = ?`, at, bid); err != nil {
		return apperrors.Wrap(err, "failed to stamp reconcile poll")
	}
	return nil
}

// ListJobs returns a page of preview jobs and the number of jobs matching f.
func (m *MySQLOrderRepository) ListJobs(
	ctx context.Context,
	f domain.JobFilter,
	offset, limit int,
) ([]*domain.Order, int, error) {
	querier := database.GetTx(ctx, m.db)

	conds := []string{"job_id IS NOT NULL"}
	args := []any{}
	if f.Approved != nil {
		conds = append(conds, "approved = ?")
		args = append(args, *f.Approved)
	}
	if f.BookID != "" {
		conds = append(conds, "book_id = ?")
		args = append(args, f.BookID)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		// The default collation makes LIKE case-insensitive.
		conds = append(conds, "(job_id LIKE ? OR order_id LIKE ? OR customer_name LIKE ? OR book_id LIKE ?)")
		pattern := likePattern(term)
		args = append(args, pattern, pattern, pattern, pattern)
	}
	where := strings.Join(conds, " AND ")

	var total int
	if err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, apperrors.Wrap(err, "failed to count jobs")
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE %s ORDER BY %s LIMIT ? OFFSET ?`,
		orderColumns, where, jobOrderBy(f))
	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "failed to list jobs")
	}
	defer func() {
		_ = rows.Close()
	}()

	jobs, err := scanOrders(rows)
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "failed to scan jobs")
	}
	return jobs, total, nil
}

// MarkJobReconciled records an operator's payment reconciliation of a job. A
// blank transactionID keeps the stored one. It reports false when no job has
// the id.
func (m *MySQLOrderRepository) MarkJobReconciled(
	ctx context.Context,
	jobID, transactionID string,
	at time.Time,
) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	res, err := querier.ExecContext(ctx, `UPDATE orders
		SET reconciled_at = ?,
			transaction_id = CASE WHEN ? = '' THEN transaction_id ELSE ? END
		WHERE job_id = ?`, at, transactionID, transactionID, jobID)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to mark job reconciled")
	}
	return affected(res)
}
