package order

import "errors"

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrStockConflict means a concurrent placement consumed the stock
	// between the availability read and the conditional decrement.
	ErrStockConflict = errors.New("stock taken by concurrent order")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrNoManualPayment   = errors.New("order has no manual payment record")
)
