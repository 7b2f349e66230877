package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tajabazar-be/internal/delivery"
	"tajabazar-be/internal/logger"
	"tajabazar-be/internal/metrics"
	"tajabazar-be/internal/product"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultRejectionReason = "Payment could not be verified"

type Service interface {
	// PlaceOrder converts a cart into a persisted order. Every line item
	// is validated and priced; any failure aborts the whole order and no
	// stock mutation survives.
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*Order, error)

	// GetOrderDetail returns one order. Non-admin callers only see their
	// own orders.
	GetOrderDetail(ctx context.Context, orderID string, userID uint, isAdmin bool) (*Order, error)

	ListUserOrders(ctx context.Context, userID uint, status *OrderStatus, limit, page int32) ([]*Order, int64, error)
	ListOrders(ctx context.Context, filter OrderFilter, limit, page int32) ([]*Order, int64, error)

	// UpdateStatus is the administrative status transition. Any known
	// status is reachable from any other; unknown statuses fail without
	// side effects. Cancellation does not restock inventory.
	UpdateStatus(ctx context.Context, orderID string, status OrderStatus, note *string) error

	UpdatePayment(ctx context.Context, orderID string, status PaymentStatus, transactionID *string) error

	ApproveManualPayment(ctx context.Context, orderID string, verifiedBy string) (*Order, error)
	RejectManualPayment(ctx context.Context, orderID string, verifiedBy string, reason *string) (*Order, error)
}

type service struct {
	repo     Repository
	products product.Repository
}

func NewService(repo Repository, products product.Repository) Service {
	return &service{repo: repo, products: products}
}

func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "PlaceOrder"),
		zap.Uint("user_id", input.UserID),
		zap.Int("item_count", len(input.Items)),
	)
	log.Info("place order started")

	if len(input.Items) == 0 {
		log.Warn("place order rejected: empty cart")
		return nil, ErrEmptyCart
	}

	timer := metrics.StartTimer()

	var (
		items      []LineItem
		deductions []StockDeduction
		subtotal   float64
	)

	for i, req := range input.Items {
		logItem := log.With(
			zap.Int("index", i),
			zap.String("product_id", req.ProductID),
			zap.Int("quantity", req.Quantity),
		)

		if req.Quantity <= 0 {
			logItem.Warn("invalid quantity")
			return nil, fmt.Errorf("quantity must be greater than zero for product %s", req.ProductID)
		}

		p, err := s.products.GetByID(ctx, req.ProductID)
		if err != nil {
			logItem.Warn("product lookup failed", zap.Error(err))
			metrics.OrdersRejected.Inc()
			return nil, err
		}

		quote, err := product.ResolveQuote(p, req.VariantLabel)
		if err != nil {
			logItem.Warn("pricing resolution failed", zap.Error(err))
			metrics.OrdersRejected.Inc()
			return nil, err
		}

		if quote.Stock < req.Quantity {
			logItem.Warn("insufficient stock",
				zap.Int("available", quote.Stock),
			)
			metrics.OrdersRejected.Inc()
			return nil, fmt.Errorf("%w for %s", ErrInsufficientStock, p.Name)
		}

		var variantID *string
		if p.HasVariants() {
			for j := range p.Variants {
				if p.Variants[j].Name == quote.VariantLabel {
					variantID = &p.Variants[j].ID
					break
				}
			}
		}

		items = append(items, LineItem{
			ProductID:    p.ID,
			Name:         p.Name,
			Image:        p.FirstImage(),
			VariantLabel: quote.VariantLabel,
			Quantity:     req.Quantity,
			UnitPrice:    quote.UnitPrice,
		})
		deductions = append(deductions, StockDeduction{
			ProductID:   p.ID,
			VariantID:   variantID,
			Quantity:    req.Quantity,
			ProductName: p.Name,
		})

		subtotal += quote.UnitPrice * float64(req.Quantity)
	}

	deliveryFee := delivery.FeeFor(input.Location, subtotal)
	if input.DeliveryFee != nil {
		deliveryFee = *input.DeliveryFee
	}

	totalAmount := subtotal + deliveryFee
	if input.TotalAmount != nil {
		totalAmount = *input.TotalAmount
	}

	status := StatusPending
	if input.Status != nil && ValidStatus(*input.Status) {
		status = *input.Status
	}
	paymentStatus := PaymentPending
	if input.PaymentStatus != nil && ValidPaymentStatus(*input.PaymentStatus) {
		paymentStatus = *input.PaymentStatus
	}

	o := &Order{
		ID:              uuid.New().String(),
		UserID:          input.UserID,
		Items:           items,
		Subtotal:        subtotal,
		DeliveryFee:     deliveryFee,
		TotalAmount:     totalAmount,
		ShippingAddress: input.ShippingAddress,
		ContactNumber:   input.ContactNumber,
		DeliveryZone:    input.Location,
		Status:          status,
		PaymentMethod:   input.PaymentMethod,
		PaymentStatus:   paymentStatus,
		StatusHistory:   []StatusEvent{},
	}

	if input.PaymentMethod != "" && input.PaymentMethod != PaymentMethodCOD {
		mp := &ManualPayment{
			SubmittedAt:        time.Now(),
			VerificationStatus: VerificationPending,
		}
		if input.ManualPayment != nil {
			mp.TransactionID = input.ManualPayment.TransactionID
			mp.ScreenshotURL = input.ManualPayment.ScreenshotURL
			mp.AccountNumber = input.ManualPayment.AccountNumber
		}
		o.ManualPayment = mp
	}

	if err := s.repo.CreateOrderTx(ctx, o, deductions); err != nil {
		if errors.Is(err, ErrStockConflict) {
			metrics.StockConflicts.Inc()
		}
		metrics.OrdersRejected.Inc()
		log.Error("failed to persist order", zap.Error(err))
		return nil, err
	}

	metrics.OrdersPlaced.Inc()
	log.Info("place order success",
		zap.String("order_id", o.ID),
		zap.Float64("total_amount", o.TotalAmount),
		zap.Duration("duration", timer.Duration()),
	)
	return o, nil
}

func (s *service) GetOrderDetail(ctx context.Context, orderID string, userID uint, isAdmin bool) (*Order, error) {
	o, err := s.repo.GetOrderDetail(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !isAdmin && o.UserID != userID {
		return nil, ErrForbidden
	}
	return o, nil
}

func (s *service) ListUserOrders(ctx context.Context, userID uint, status *OrderStatus, limit, page int32) ([]*Order, int64, error) {
	filter := OrderFilter{UserID: &userID, Status: status}
	return s.ListOrders(ctx, filter, limit, page)
}

func (s *service) ListOrders(ctx context.Context, filter OrderFilter, limit, page int32) ([]*Order, int64, error) {
	if limit <= 0 {
		limit = 10
	}
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	orders, err := s.repo.FetchOrders(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.repo.CountOrders(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	if len(orders) > 0 {
		ids := make([]string, 0, len(orders))
		for _, o := range orders {
			ids = append(ids, o.ID)
		}
		items, err := s.repo.FetchOrderItems(ctx, ids)
		if err != nil {
			return nil, 0, err
		}
		for _, o := range orders {
			o.Items = items[o.ID]
		}
	}

	return orders, total, nil
}

func (s *service) UpdateStatus(ctx context.Context, orderID string, status OrderStatus, note *string) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateStatus"),
		zap.String("order_id", orderID),
		zap.String("status", string(status)),
	)

	if !ValidStatus(status) {
		log.Warn("unknown status rejected")
		return fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	if err := s.repo.UpdateStatus(ctx, orderID, status, note); err != nil {
		log.Error("failed to update status", zap.Error(err))
		return err
	}

	log.Info("order status updated")
	return nil
}

func (s *service) UpdatePayment(ctx context.Context, orderID string, status PaymentStatus, transactionID *string) error {
	if !ValidPaymentStatus(status) {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
	return s.repo.UpdatePaymentStatus(ctx, orderID, status, transactionID)
}

func (s *service) ApproveManualPayment(ctx context.Context, orderID string, verifiedBy string) (*Order, error) {
	return s.decideManualPayment(ctx, orderID, ManualPaymentDecision{
		Verification:  VerificationApproved,
		VerifiedBy:    verifiedBy,
		VerifiedAt:    time.Now(),
		PaymentStatus: PaymentPaid,
		OrderStatus:   StatusConfirmed,
	})
}

func (s *service) RejectManualPayment(ctx context.Context, orderID string, verifiedBy string, reason *string) (*Order, error) {
	finalReason := defaultRejectionReason
	if reason != nil && *reason != "" {
		finalReason = *reason
	}
	return s.decideManualPayment(ctx, orderID, ManualPaymentDecision{
		Verification:    VerificationRejected,
		RejectionReason: &finalReason,
		VerifiedBy:      verifiedBy,
		VerifiedAt:      time.Now(),
		PaymentStatus:   PaymentFailed,
		OrderStatus:     StatusCancelled,
	})
}

func (s *service) decideManualPayment(ctx context.Context, orderID string, decision ManualPaymentDecision) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "decideManualPayment"),
		zap.String("order_id", orderID),
		zap.String("decision", string(decision.Verification)),
	)

	// Ensure the order exists before deciding, so the caller can tell a
	// missing order from a missing manual payment record.
	if _, err := s.repo.GetOrderDetail(ctx, orderID); err != nil {
		return nil, err
	}

	if err := s.repo.DecideManualPayment(ctx, orderID, decision); err != nil {
		log.Error("manual payment decision failed", zap.Error(err))
		return nil, err
	}

	o, err := s.repo.GetOrderDetail(ctx, orderID)
	if err != nil {
		return nil, err
	}

	log.Info("manual payment decision applied",
		zap.String("payment_status", string(o.PaymentStatus)),
		zap.String("order_status", string(o.Status)),
	)
	return o, nil
}
