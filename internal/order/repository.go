package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"tajabazar-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// ManualPaymentDecision is the coupled state written when an admin
// approves or rejects a manual payment.
type ManualPaymentDecision struct {
	Verification    VerificationStatus
	RejectionReason *string
	VerifiedBy      string
	VerifiedAt      time.Time
	PaymentStatus   PaymentStatus
	OrderStatus     OrderStatus
}

type Repository interface {
	// CreateOrderTx persists the order, its line items, and every stock
	// deduction in one transaction. Any failed deduction aborts the whole
	// order; no partial stock mutation survives.
	CreateOrderTx(ctx context.Context, o *Order, deductions []StockDeduction) error

	GetOrderDetail(ctx context.Context, orderID string) (*Order, error)
	FetchOrders(ctx context.Context, filter OrderFilter, limit, offset int32) ([]*Order, error)
	CountOrders(ctx context.Context, filter OrderFilter) (int64, error)
	FetchOrderItems(ctx context.Context, orderIDs []string) (map[string][]LineItem, error)

	UpdateStatus(ctx context.Context, orderID string, status OrderStatus, note *string) error
	UpdatePaymentStatus(ctx context.Context, orderID string, status PaymentStatus, transactionID *string) error
	DecideManualPayment(ctx context.Context, orderID string, decision ManualPaymentDecision) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const orderColumns = `
	o.id, o.user_id, o.subtotal, o.delivery_fee, o.total_amount,
	o.shipping_address, o.contact_number, o.delivery_zone,
	o.status, o.payment_method, o.payment_status,
	o.mp_transaction_id, o.mp_screenshot_url, o.mp_account_number,
	o.mp_submitted_at, o.mp_verification_status, o.mp_rejection_reason,
	o.mp_verified_by, o.mp_verified_at,
	o.created_at, o.updated_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (*Order, error) {
	var (
		o              Order
		mpTxID         sql.NullString
		mpScreenshot   sql.NullString
		mpAccount      sql.NullString
		mpSubmittedAt  sql.NullTime
		mpVerification sql.NullString
		mpReason       sql.NullString
		mpVerifiedBy   sql.NullString
		mpVerifiedAt   sql.NullTime
	)

	err := row.Scan(
		&o.ID, &o.UserID, &o.Subtotal, &o.DeliveryFee, &o.TotalAmount,
		&o.ShippingAddress, &o.ContactNumber, &o.DeliveryZone,
		&o.Status, &o.PaymentMethod, &o.PaymentStatus,
		&mpTxID, &mpScreenshot, &mpAccount,
		&mpSubmittedAt, &mpVerification, &mpReason,
		&mpVerifiedBy, &mpVerifiedAt,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if mpSubmittedAt.Valid {
		mp := &ManualPayment{
			TransactionID:      mpTxID.String,
			ScreenshotURL:      mpScreenshot.String,
			AccountNumber:      mpAccount.String,
			SubmittedAt:        mpSubmittedAt.Time,
			VerificationStatus: VerificationStatus(mpVerification.String),
		}
		if mpReason.Valid {
			mp.RejectionReason = &mpReason.String
		}
		if mpVerifiedBy.Valid {
			mp.VerifiedBy = &mpVerifiedBy.String
		}
		if mpVerifiedAt.Valid {
			mp.VerifiedAt = &mpVerifiedAt.Time
		}
		o.ManualPayment = mp
	}

	return &o, nil
}

func (r *repository) CreateOrderTx(ctx context.Context, o *Order, deductions []StockDeduction) error {
	log := logger.FromCtx(ctx).With(
		zap.String("order_id", o.ID),
		zap.Int("item_count", len(o.Items)),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var (
		mpTxID, mpScreenshot, mpAccount, mpVerification interface{}
		mpSubmittedAt                                   interface{}
	)
	if o.ManualPayment != nil {
		mpTxID = o.ManualPayment.TransactionID
		mpScreenshot = o.ManualPayment.ScreenshotURL
		mpAccount = o.ManualPayment.AccountNumber
		mpSubmittedAt = o.ManualPayment.SubmittedAt
		mpVerification = string(o.ManualPayment.VerificationStatus)
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (
			id, user_id, subtotal, delivery_fee, total_amount,
			shipping_address, contact_number, delivery_zone,
			status, payment_method, payment_status,
			mp_transaction_id, mp_screenshot_url, mp_account_number,
			mp_submitted_at, mp_verification_status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		RETURNING created_at, updated_at
	`,
		o.ID, o.UserID, o.Subtotal, o.DeliveryFee, o.TotalAmount,
		o.ShippingAddress, o.ContactNumber, o.DeliveryZone,
		o.Status, o.PaymentMethod, o.PaymentStatus,
		mpTxID, mpScreenshot, mpAccount,
		mpSubmittedAt, mpVerification,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		log.Error("insert order failed", zap.Error(err))
		return fmt.Errorf("insert order failed: %w", err)
	}

	for i := range o.Items {
		item := &o.Items[i]
		item.OrderID = o.ID
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (
				order_id, product_id, product_name, image_url,
				variant_label, quantity, unit_price
			) VALUES ($1,$2,$3,$4,$5,$6,$7)
		`,
			item.OrderID, item.ProductID, item.Name, item.Image,
			item.VariantLabel, item.Quantity, item.UnitPrice,
		)
		if err != nil {
			log.Error("insert order item failed", zap.Error(err))
			return fmt.Errorf("insert order item failed: %w", err)
		}
	}

	// Conditional decrements. Zero rows affected means another placement
	// won the stock; the transaction rolls back whole.
	for _, d := range deductions {
		var res sql.Result
		if d.VariantID != nil {
			res, err = tx.ExecContext(ctx, `
				UPDATE variants
				SET stock = stock - $1
				WHERE id = $2 AND stock >= $1
			`, d.Quantity, *d.VariantID)
		} else {
			res, err = tx.ExecContext(ctx, `
				UPDATE products
				SET stock = stock - $1
				WHERE id = $2 AND stock >= $1
			`, d.Quantity, d.ProductID)
		}
		if err != nil {
			log.Error("stock deduction failed", zap.Error(err))
			return fmt.Errorf("stock deduction failed: %w", err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			log.Warn("stock deduction lost race",
				zap.String("product_id", d.ProductID),
				zap.Int("quantity", d.Quantity),
			)
			return fmt.Errorf("%w: %s", ErrStockConflict, d.ProductName)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	log.Info("order persisted")
	return nil
}

func (r *repository) GetOrderDetail(ctx context.Context, orderID string) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders o WHERE o.id = $1`

	o, err := scanOrder(r.db.QueryRowContext(ctx, query, orderID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order failed: %w", err)
	}

	items, err := r.FetchOrderItems(ctx, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]

	history, err := r.fetchStatusHistory(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.StatusHistory = history

	return o, nil
}

func (r *repository) FetchOrders(ctx context.Context, filter OrderFilter, limit, offset int32) ([]*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "FetchOrders"),
		zap.Int32("limit", limit),
		zap.Int32("offset", offset),
	)

	query := `SELECT ` + orderColumns + ` FROM orders o`

	where, args := buildOrderFilter(filter)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY o.created_at DESC"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("DB query failed FetchOrders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			log.Error("Row scan failed", zap.Error(err))
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *repository) CountOrders(ctx context.Context, filter OrderFilter) (int64, error) {
	query := `SELECT COUNT(*) FROM orders o`

	where, args := buildOrderFilter(filter)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count orders failed: %w", err)
	}
	return total, nil
}

func buildOrderFilter(filter OrderFilter) ([]string, []interface{}) {
	where := []string{}
	args := []interface{}{}

	if filter.UserID != nil {
		where = append(where, fmt.Sprintf("o.user_id = $%d", len(args)+1))
		args = append(args, *filter.UserID)
	}
	if filter.Status != nil {
		where = append(where, fmt.Sprintf("o.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	return where, args
}

func (r *repository) FetchOrderItems(ctx context.Context, orderIDs []string) (map[string][]LineItem, error) {
	if len(orderIDs) == 0 {
		return map[string][]LineItem{}, nil
	}

	query := `
		SELECT id, order_id, product_id, product_name, image_url,
		       variant_label, quantity, unit_price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(orderIDs))
	if err != nil {
		return nil, fmt.Errorf("fetch order items failed: %w", err)
	}
	defer rows.Close()

	items := make(map[string][]LineItem)
	for rows.Next() {
		var it LineItem
		err := rows.Scan(
			&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.Image,
			&it.VariantLabel, &it.Quantity, &it.UnitPrice,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order item failed: %w", err)
		}
		items[it.OrderID] = append(items[it.OrderID], it)
	}
	return items, rows.Err()
}

func (r *repository) fetchStatusHistory(ctx context.Context, orderID string) ([]StatusEvent, error) {
	query := `
		SELECT status, note, created_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("fetch status history failed: %w", err)
	}
	defer rows.Close()

	var history []StatusEvent
	for rows.Next() {
		var e StatusEvent
		if err := rows.Scan(&e.Status, &e.Note, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan status history failed: %w", err)
		}
		history = append(history, e)
	}
	return history, rows.Err()
}

func (r *repository) UpdateStatus(ctx context.Context, orderID string, status OrderStatus, note *string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1
	`, orderID, status)
	if err != nil {
		return fmt.Errorf("update status failed: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}

	if note != nil {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_status_history (order_id, status, note)
			VALUES ($1, $2, $3)
		`, orderID, status, *note)
		if err != nil {
			return fmt.Errorf("append status history failed: %w", err)
		}
	}

	return tx.Commit()
}

func (r *repository) UpdatePaymentStatus(ctx context.Context, orderID string, status PaymentStatus, transactionID *string) error {
	query := `
		UPDATE orders
		SET payment_status = $2,
		    mp_transaction_id = COALESCE($3, mp_transaction_id),
		    updated_at = NOW()
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query, orderID, status, transactionID)
	if err != nil {
		return fmt.Errorf("update payment status failed: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *repository) DecideManualPayment(ctx context.Context, orderID string, decision ManualPaymentDecision) error {
	log := logger.FromCtx(ctx).With(
		zap.String("order_id", orderID),
		zap.String("decision", string(decision.Verification)),
	)

	// Verification state, payment status, and order status move together
	// or not at all.
	query := `
		UPDATE orders
		SET mp_verification_status = $2,
		    mp_rejection_reason = $3,
		    mp_verified_by = $4,
		    mp_verified_at = $5,
		    payment_status = $6,
		    status = $7,
		    updated_at = NOW()
		WHERE id = $1 AND mp_submitted_at IS NOT NULL
	`

	res, err := r.db.ExecContext(ctx, query,
		orderID,
		decision.Verification,
		decision.RejectionReason,
		decision.VerifiedBy,
		decision.VerifiedAt,
		decision.PaymentStatus,
		decision.OrderStatus,
	)
	if err != nil {
		log.Error("manual payment decision failed", zap.Error(err))
		return fmt.Errorf("manual payment decision failed: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNoManualPayment
	}

	log.Info("manual payment decided")
	return nil
}
