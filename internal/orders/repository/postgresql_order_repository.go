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

// PostgreSQLOrderRepository implements order persistence for PostgreSQL.
type PostgreSQLOrderRepository struct {
	db *sql.DB
}

// NewPostgreSQLOrderRepository creates a new PostgreSQL order repository.
func NewPostgreSQLOrderRepository(db *sql.DB) *PostgreSQLOrderRepository {
	return &PostgreSQLOrderRepository{db: db}
}

// Create inserts a new order or preview job.
func (p *PostgreSQLOrderRepository) Create(ctx context.Context, o *domain.Order) error {
	querier := database.GetTx(ctx, p.db)

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
			  workflows_total, workflows_completed, status, reprint_meta, created_at, processed_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`

	_, err = querier.ExecContext(ctx, query,
		o.ID, nullString(o.OrderID), nullString(o.JobID), o.Email, o.Phone, o.CustomerName, o.ChildName,
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

func (p *PostgreSQLOrderRepository) getOne(ctx context.Context, where string, args ...any) (*domain.Order, error) {
	querier := database.GetTx(ctx, p.db)

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
func (p *PostgreSQLOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return p.getOne(ctx, `id = $1`, id)
}

// GetByOrderID retrieves an order by its storefront order identifier.
func (p *PostgreSQLOrderRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.Order, error) {
	return p.getOne(ctx, `order_id = $1`, orderID)
}

// GetByOrderIDForUpdate retrieves an order and row-locks it for the surrounding transaction.
func (p *PostgreSQLOrderRepository) GetByOrderIDForUpdate(
	ctx context.Context,
	orderID string,
) (*domain.Order, error) {
	return p.getOne(ctx, `order_id = $1 FOR UPDATE`, orderID)
}

// GetByJobID retrieves an order by its preview job identifier.
func (p *PostgreSQLOrderRepository) GetByJobID(ctx context.Context, jobID string) (*domain.Order, error) {
	return p.getOne(ctx, `job_id = $1`, jobID)
}

// FindForShipment resolves the order a shipping event refers to: by order id
// when the event carries one, otherwise by AWB.
func (p *PostgreSQLOrderRepository) FindForShipment(
	ctx context.Context,
	orderID, awb string,
) (*domain.Order, error) {
	// An event that names an order never falls back to its AWB.
	if orderID != "" {
		return p.GetByOrderID(ctx, orderID)
	}
	if awb == "" {
		return nil, domain.ErrOrderNotFound
	}
	return p.getOne(ctx, `tracking_number = $1 ORDER BY created_at DESC LIMIT 1`, awb)
}

// List returns orders matching filter, newest first.
func (p *PostgreSQLOrderRepository) List(
	ctx context.Context,
	filter domain.ListFilter,
	offset, limit int,
) ([]*domain.Order, error) {
	querier := database.GetTx(ctx, p.db)

	conds := []string{"1 = 1"}
	args := []any{}
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}
	if filter.Printer != "" {
		add("printer = $%d", filter.Printer)
	}
	if filter.Email != "" {
		add("LOWER(email) = LOWER($%d)", filter.Email)
	}
	if filter.Locale != "" {
		add("locale = $%d", filter.Locale)
	}
	if filter.Paid != nil {
		add("paid = $%d", *filter.Paid)
	}
	args = append(args, limit, offset)

	query := fmt.Sprintf(`SELECT %s FROM orders WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		orderColumns, strings.Join(conds, " AND "), len(args)-1, len(args))

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
func (p *PostgreSQLOrderRepository) Update(ctx context.Context, o *domain.Order) error {
	querier := database.GetTx(ctx, p.db)

	address, err := marshalJSON(o.ShippingAddress)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode shipping address")
	}
	meta, err := marshalReprintMeta(o.ReprintMeta)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode reprint meta")
	}

	query := `UPDATE orders SET email = $2, phone = $3, customer_name = $4, child_name = $5, book_style = $6,
			  discount_code = $7, locale = $8, shipping_address = $9, status = $10, status_remarks = $11,
			  status_updated_at = $12, issue_origin = $13, reprint_order_id = $14, reprint_meta = $15,
			  updated_at = $16
			  WHERE id = $1`

	res, err := querier.ExecContext(ctx, query,
		o.ID, o.Email, o.Phone, o.CustomerName, o.ChildName, o.BookStyle, o.DiscountCode, o.Locale, address,
		string(o.Status), o.StatusRemarks, o.StatusUpdatedAt, o.IssueOrigin, o.ReprintOrderID, meta, o.UpdatedAt,
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
func (p *PostgreSQLOrderRepository) AcquireLock(
	ctx context.Context,
	orderID, actor string,
	at time.Time,
) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE orders SET locked = TRUE, locked_by = $2, locked_at = $3, updated_at = $3
			  WHERE order_id = $1 AND (locked = FALSE OR LOWER(locked_by) = LOWER($2))`

	res, err := querier.ExecContext(ctx, query, orderID, actor, at)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to acquire order lock")
	}
	return affected(res)
}

// ReleaseLock clears the admin-edit lock when it is held.
func (p *PostgreSQLOrderRepository) ReleaseLock(
	ctx context.Context,
	orderID, actor string,
	at time.Time,
) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE orders SET locked = FALSE, unlocked_by = $2, unlocked_at = $3, updated_at = $3
			  WHERE order_id = $1 AND locked = TRUE`

	res, err := querier.ExecContext(ctx, query, orderID, actor, at)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to release order lock")
	}
	return affected(res)
}

// ClaimNotification flips a notification flag from unset to set. Only the caller
// whose update matched the unset row gets true.
func (p *PostgreSQLOrderRepository) ClaimNotification(
	ctx context.Context,
	id uuid.UUID,
	kind domain.NotificationKind,
	at time.Time,
) (bool, error) {
	flag, atColumn, err := notificationColumns(kind)
	if err != nil {
		return false, err
	}

	querier := database.GetTx(ctx, p.db)

	query := fmt.Sprintf(`UPDATE orders SET %[1]s = TRUE, %[2]s = $2, updated_at = $2
			  WHERE id = $1 AND %[1]s = FALSE`, flag, atColumn)

	res, err := querier.ExecContext(ctx, query, id, at)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to claim notification")
	}
	return affected(res)
}

// MarkShipped sets shipped_at unless it is already set.
func (p *PostgreSQLOrderRepository) MarkShipped(ctx context.Context, id uuid.UUID, at time.Time) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE orders SET shipped_at = COALESCE(shipped_at, $2), updated_at = $2 WHERE id = $1`

	if _, err := querier.ExecContext(ctx, query, id, at); err != nil {
		return apperrors.Wrap(err, "failed to mark order shipped")
	}
	return nil
}

// ApplyShipment writes a shipping partner status event. Events older than the
// stored status timestamp are ignored and reported as not applied.
func (p *PostgreSQLOrderRepository) ApplyShipment(
	ctx context.Context,
	id uuid.UUID,
	u domain.ShipmentUpdate,
) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	data, err := marshalShipment(&u.Data)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to encode shipment data")
	}

	query := `UPDATE orders SET shipment_data = $2,
			  tracking_number = COALESCE(NULLIF($3, ''), tracking_number),
			  courier_partner = COALESCE(NULLIF($4, ''), courier_partner),
			  shipping_status = $5, shipping_status_at = $6,
			  delivery_status = COALESCE(NULLIF($7, ''), delivery_status),
			  delivered_at = COALESCE(delivered_at, $8),
			  updated_at = $9
			  WHERE id = $1
			  AND (shipping_status_at IS NULL OR CAST($6 AS TIMESTAMPTZ) IS NULL OR shipping_status_at <= $6)`

	res, err := querier.ExecContext(ctx, query,
		id, data, u.TrackingNumber, u.CourierPartner, u.ShippingStatus, u.ShippingStatusAt,
		u.DeliveryStatus, u.DeliveredAt, u.At,
	)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to apply shipment update")
	}
	return affected(res)
}

// ApplyPrintStatus writes a print partner status event.
func (p *PostgreSQLOrderRepository) ApplyPrintStatus(
	ctx context.Context,
	id uuid.UUID,
	u domain.PrintUpdate,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE orders SET print_status = $2,
			  tracking_number = COALESCE(NULLIF($3, ''), tracking_number),
			  courier_partner = COALESCE(NULLIF($4, ''), courier_partner),
			  updated_at = $5
			  WHERE id = $1`

	if _, err := querier.ExecContext(ctx, query, id, u.PrintStatus, u.TrackingNumber, u.CourierPartner, u.At); err != nil {
		return apperrors.Wrap(err, "failed to apply print status")
	}
	return nil
}

// MarkSentToPrinter records a successful printer hand-off.
func (p *PostgreSQLOrderRepository) MarkSentToPrinter(
	ctx context.Context,
	id uuid.UUID,
	d domain.PrintDispatch,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE orders SET print_status = $2, printer = $3, cloudprinter_reference = $4, print_sent_by = $5,
			  print_sent_at = COALESCE(print_sent_at, $6), approved = TRUE,
			  approved_at = COALESCE(approved_at, $6), updated_at = $6
			  WHERE id = $1`

	_, err := querier.ExecContext(ctx, query,
		id, domain.PrintStatusSentToPrinter, d.Printer, d.Reference, d.SentBy, d.At)
	if err != nil {
		return apperrors.Wrap(err, "failed to mark order sent to printer")
	}
	return nil
}

// ClaimPrintSubmission marks an order as being handed to the printer. Only one
// caller wins for an order that has no printer reference yet.
func (p *PostgreSQLOrderRepository) ClaimPrintSubmission(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE orders SET print_status = $2, updated_at = $3
			  WHERE id = $1 AND cloudprinter_reference = '' AND print_sent_at IS NULL AND print_status <> $2`

	res, err := querier.ExecContext(ctx, query, id, domain.PrintStatusSubmitting, at)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to claim print submission")
	}
	return affected(res)
}

// ReleasePrintSubmission hands a claimed submission back, restoring the print
// status the order had before the claim.
func (p *PostgreSQLOrderRepository) ReleasePrintSubmission(
	ctx context.Context,
	id uuid.UUID,
	previous string,
	at time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE orders SET print_status = $2, updated_at = $3 WHERE id = $1 AND print_status = $4`

	if _, err := querier.ExecContext(ctx, query, id, previous, at, domain.PrintStatusSubmitting); err != nil {
		return apperrors.Wrap(err, "failed to release print submission")
	}
	return nil
}

// SaveShipmentBooking stores shipping partner identifiers on the base order.
func (p *PostgreSQLOrderRepository) SaveShipmentBooking(
	ctx context.Context,
	id uuid.UUID,
	b domain.ShipmentBooking,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE orders SET sr_order_id = COALESCE(NULLIF($2, ''), sr_order_id),
			  sr_shipment_id = COALESCE(NULLIF($3, ''), sr_shipment_id),
			  tracking_number = COALESCE(NULLIF($4, ''), tracking_number),
			  courier_partner = COALESCE(NULLIF($5, ''), courier_partner),
			  updated_at = $6
			  WHERE id = $1`

	_, err := querier.ExecContext(ctx, query,
		id, b.ShiprocketOrderID, b.ShiprocketShipmentID, b.TrackingNumber, b.CourierPartner, b.At)
	if err != nil {
		return apperrors.Wrap(err, "failed to save shipment booking")
	}
	return nil
}

// SetApproved toggles the approval flag. approved_at keeps its first value.
func (p *PostgreSQLOrderRepository) SetApproved(
	ctx context.Context,
	id uuid.UUID,
	approved bool,
	at time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE orders SET approved = $2,
			  approved_at = CASE WHEN $2 THEN COALESCE(approved_at, $3) ELSE approved_at END,
			  updated_at = $3
			  WHERE id = $1`

	if _, err := querier.ExecContext(ctx, query, id, approved, at); err != nil {
		return apperrors.Wrap(err, "failed to set approval")
	}
	return nil
}

// ListNudgeCandidates returns, per customer email, the latest unpaid preview job
// looked up since q.Since, restricted to jobs created in the due window. Emails
// with any paid order in the lookup window are excluded.
func (p *PostgreSQLOrderRepository) ListNudgeCandidates(
	ctx context.Context,
	q domain.NudgeCandidateQuery,
) ([]*domain.Order, error) {
	querier := database.GetTx(ctx, p.db)

	query := fmt.Sprintf(`SELECT %s FROM (
			  SELECT o.*,
			  ROW_NUMBER() OVER (PARTITION BY LOWER(o.email) ORDER BY o.created_at DESC) AS rn,
			  MAX(CASE WHEN o.paid THEN 1 ELSE 0 END) OVER (PARTITION BY LOWER(o.email)) AS any_paid
			  FROM orders o
			  WHERE o.created_at >= $1 AND o.email <> '' AND LOWER(o.email) NOT LIKE $2
			  AND o.workflows_total > 0
			  ) t
			  WHERE t.rn = 1 AND t.any_paid = 0 AND t.paid = FALSE AND t.nudge_stage IN (0, 1, 2)
			  AND t.created_at >= $3 AND t.created_at < $4
			  AND (t.created_at, t.id) > ($5, $6)
			  ORDER BY t.created_at, t.id
			  LIMIT $7`, orderColumns)

	rows, err := querier.QueryContext(ctx, query,
		q.Since, "%"+strings.ToLower(q.ExcludedDomain), q.DueFrom, q.DueBefore,
		q.AfterCreatedAt, q.AfterID, q.Limit)
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
func (p *PostgreSQLOrderRepository) AdvanceNudgeStage(
	ctx context.Context,
	id uuid.UUID,
	from, to int,
	at time.Time,
) (bool, error) {
	if to <= from {
		return false, apperrors.Wrapf(apperrors.ErrInvalidInput, "nudge stage cannot move from %d to %d", from, to)
	}

	querier := database.GetTx(ctx, p.db)

	query := `UPDATE orders SET nudge_stage = $3, updated_at = $4 WHERE id = $1 AND nudge_stage = $2`

	res, err := querier.ExecContext(ctx, query, id, from, to, at)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to advance nudge stage")
	}
	return affected(res)
}

// ListNudgeAttempts returns the attempt history of an order, by stage.
func (p *PostgreSQLOrderRepository) ListNudgeAttempts(
	ctx context.Context,
	id uuid.UUID,
) ([]domain.NudgeAttempt, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT stage, status, via, attempts, error, at FROM nudge_attempts
			  WHERE order_ref = $1 ORDER BY stage`

	rows, err := querier.QueryContext(ctx, query, id)
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
func (p *PostgreSQLOrderRepository) BeginNudgeAttempt(
	ctx context.Context,
	id uuid.UUID,
	stage int,
	at time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO nudge_attempts (order_ref, stage, status, via, attempts, error, at)
			  VALUES ($1, $2, $3, 'email', 1, '', $4)
			  ON CONFLICT (order_ref, stage) DO UPDATE
			  SET status = EXCLUDED.status, attempts = nudge_attempts.attempts + 1, at = EXCLUDED.at`

	if _, err := querier.ExecContext(ctx, query, id, stage, string(domain.NudgeSending), at); err != nil {
		return apperrors.Wrap(err, "failed to begin nudge attempt")
	}
	return nil
}

// ClaimNudgeRetry takes a failed stage back into flight if its attempt count is
// still the observed one.
func (p *PostgreSQLOrderRepository) ClaimNudgeRetry(
	ctx context.Context,
	id uuid.UUID,
	stage, observedAttempts int,
	at time.Time,
) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE nudge_attempts SET status = $4, attempts = attempts + 1, at = $5
			  WHERE order_ref = $1 AND stage = $2 AND status = $6 AND attempts = $3`

	res, err := querier.ExecContext(ctx, query,
		id, stage, observedAttempts, string(domain.NudgeSending), at, string(domain.NudgeFailed))
	if err != nil {
		return false, apperrors.Wrap(err, "failed to claim nudge retry")
	}
	return affected(res)
}

// FinishNudgeAttempt stores the outcome of an in-flight send. A sent outcome also
// stamps nudge_last_sent_at on the order.
func (p *PostgreSQLOrderRepository) FinishNudgeAttempt(
	ctx context.Context,
	id uuid.UUID,
	stage int,
	status domain.NudgeAttemptStatus,
	errText string,
	at time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE nudge_attempts SET status = $3, error = $4, at = $5 WHERE order_ref = $1 AND stage = $2`
	if _, err := querier.ExecContext(ctx, query, id, stage, string(status), domain.TruncateError(errText), at); err != nil {
		return apperrors.Wrap(err, "failed to finish nudge attempt")
	}

	if status == domain.NudgeSent {
		query = `UPDATE orders SET nudge_last_sent_at = $2, updated_at = $2 WHERE id = $1`
		if _, err := querier.ExecContext(ctx, query, id, at); err != nil {
			return apperrors.Wrap(err, "failed to stamp nudge send")
		}
	}
	return nil
}

// ListFeedbackCandidates returns the latest delivered, processed order per email
// whose customer has never received a feedback email and whose delivery landed
// inside the feedback window.
func (p *PostgreSQLOrderRepository) ListFeedbackCandidates(
	ctx context.Context,
	q domain.FeedbackCandidateQuery,
) ([]*domain.Order, error) {
	querier := database.GetTx(ctx, p.db)

	// Calendar days are compared after shifting both instants into the local zone.
	query := fmt.Sprintf(`SELECT %s FROM (
			  SELECT o.*, ROW_NUMBER() OVER (PARTITION BY LOWER(o.email) ORDER BY o.processed_at DESC) AS rn
			  FROM orders o
			  WHERE o.email <> '' AND o.processed_at IS NOT NULL AND o.processed_at >= $1
			  AND UPPER(o.shipping_status) = $2 AND o.shipping_status_at IS NOT NULL
			  AND NOT EXISTS (
			  SELECT 1 FROM orders s WHERE LOWER(s.email) = LOWER(o.email) AND s.feedback_email_sent = TRUE
			  )
			  ) t
			  WHERE t.rn = 1
			  AND ((t.shipping_status_at AT TIME ZONE 'UTC') + make_interval(secs => $3))::date
			  - ((t.processed_at AT TIME ZONE 'UTC') + make_interval(secs => $3))::date BETWEEN 0 AND $4
			  ORDER BY t.processed_at
			  LIMIT $5`, orderColumns)

	rows, err := querier.QueryContext(ctx, query,
		q.ProcessedSince, domain.ShippingStatusDelivered, int64(q.UTCOffset/time.Second), q.MaxDeliveryDays, q.Limit)
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
func (p *PostgreSQLOrderRepository) MarkFeedbackSentForEmail(
	ctx context.Context,
	email string,
	at time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE orders SET feedback_email_sent = TRUE, feedback_email_sent_at = $2, updated_at = $2
			  WHERE LOWER(email) = LOWER($1) AND feedback_email_sent = FALSE`

	res, err := querier.ExecContext(ctx, query, email, at)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to mark feedback sent")
	}
	return res.RowsAffected()
}

// ListReconcileCandidates returns active orders with a tracking number whose
// shipment has not reached a final status and that neither changed nor were
// polled since staleBefore. Orders never polled come first, then the longest
// unpolled, so successive runs rotate through the backlog.
func (p *PostgreSQLOrderRepository) ListReconcileCandidates(
	ctx context.Context,
	staleBefore time.Time,
	limit int,
) ([]*domain.Order, error) {
	querier := database.GetTx(ctx, p.db)

	query := fmt.Sprintf(`SELECT %s FROM orders
			  WHERE tracking_number <> '' AND status = $1
			  AND UPPER(shipping_status) NOT IN ($2, $3)
			  AND updated_at < $4
			  AND (reconciled_at IS NULL OR reconciled_at < $4)
			  ORDER BY reconciled_at NULLS FIRST, updated_at
			  LIMIT $5`, orderColumns)

	rows, err := querier.QueryContext(ctx, query,
		string(domain.StatusActive), domain.ShippingStatusDelivered, domain.ShippingStatusRTODelivered,
		staleBefore, limit)
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
func (p *PostgreSQLOrderRepository) MarkReconciled(ctx context.Context, id uuid.UUID, at time.Time) error {
	querier := database.GetTx(ctx, p.db)

	if _, err := querier.ExecContext(ctx, `UPDATE orders SET reconciled_at = $2 WHERE id = $1`, id, at); err != nil {
		return apperrors.Wrap(err, "failed to stamp reconcile poll")
	}
	return nil
}

// ListJobs returns a page of preview jobs and the number of jobs matching f.
func (p *PostgreSQLOrderRepository) ListJobs(
	ctx context.Context,
	f domain.JobFilter,
	offset, limit int,
) ([]*domain.Order, int, error) {
	querier := database.GetTx(ctx, p.db)

	conds := []string{"job_id IS NOT NULL"}
	args := []any{}
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Approved != nil {
		add("approved = $%d", *f.Approved)
	}
	if f.BookID != "" {
		add("book_id = $%d", f.BookID)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		add("(job_id ILIKE $%[1]d OR order_id ILIKE $%[1]d OR customer_name ILIKE $%[1]d OR book_id ILIKE $%[1]d)",
			likePattern(term))
	}
	where := strings.Join(conds, " AND ")

	var total int
	if err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, apperrors.Wrap(err, "failed to count jobs")
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		orderColumns, where, jobOrderBy(f), len(args)-1, len(args))
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
func (p *PostgreSQLOrderRepository) MarkJobReconciled(
	ctx context.Context,
	jobID, transactionID string,
	at time.Time,
) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	res, err := querier.ExecContext(ctx, `UPDATE orders
		SET reconciled_at = $2,
			transaction_id = CASE WHEN $3::text = '' THEN transaction_id ELSE $3::text END
		WHERE job_id = $1`, jobID, at, transactionID)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to mark job reconciled")
	}
	return affected(res)
}
