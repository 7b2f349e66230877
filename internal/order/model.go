package order

import "time"

type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusConfirmed  OrderStatus = "CONFIRMED"
	StatusProcessing OrderStatus = "PROCESSING"
	StatusPacked     OrderStatus = "PACKED"
	StatusShipped    OrderStatus = "SHIPPED"
	StatusDelivered  OrderStatus = "DELIVERED"
	StatusCancelled  OrderStatus = "CANCELLED"
)

// ValidStatus reports membership in the status enum. Administrators may
// jump between any known states; unknown values are rejected.
func ValidStatus(s OrderStatus) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing,
		StatusPacked, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentFailed  PaymentStatus = "FAILED"
)

func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed:
		return true
	}
	return false
}

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

const PaymentMethodCOD = "cash_on_delivery"

// LineItem is an independent snapshot of a product at purchase time. It
// never changes after the order is created, even if the source product
// does.
type LineItem struct {
	ID           int64   `json:"-"`
	OrderID      string  `json:"-"`
	ProductID    string  `json:"productId"`
	Name         string  `json:"name"`
	Image        string  `json:"image"`
	VariantLabel string  `json:"variant"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"unitPriceAtPurchase"`
}

// ManualPayment records a human-verified mobile payment submission.
type ManualPayment struct {
	TransactionID      string             `json:"transactionId"`
	ScreenshotURL      string             `json:"screenshot,omitempty"`
	AccountNumber      string             `json:"accountNumber,omitempty"`
	SubmittedAt        time.Time          `json:"submittedAt"`
	VerificationStatus VerificationStatus `json:"verificationStatus"`
	RejectionReason    *string            `json:"rejectionReason,omitempty"`
	VerifiedBy         *string            `json:"verifiedBy,omitempty"`
	VerifiedAt         *time.Time         `json:"verifiedAt,omitempty"`
}

// StatusEvent is one entry of the append-only status history.
type StatusEvent struct {
	Status    OrderStatus `json:"status"`
	Note      string      `json:"note"`
	Timestamp time.Time   `json:"timestamp"`
}

type Order struct {
	ID              string         `json:"id"`
	UserID          uint           `json:"userId"`
	Items           []LineItem     `json:"items"`
	Subtotal        float64        `json:"subtotal"`
	DeliveryFee     float64        `json:"deliveryFee"`
	TotalAmount     float64        `json:"totalAmount"`
	ShippingAddress string         `json:"shippingAddress"`
	ContactNumber   string         `json:"contactNumber"`
	DeliveryZone    string         `json:"deliveryZone"`
	Status          OrderStatus    `json:"status"`
	PaymentMethod   string         `json:"paymentMethod"`
	PaymentStatus   PaymentStatus  `json:"paymentStatus"`
	ManualPayment   *ManualPayment `json:"manualPayment,omitempty"`
	StatusHistory   []StatusEvent  `json:"statusHistory"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// LineRequest is one requested cart line at placement time.
type LineRequest struct {
	ProductID    string `json:"productId"`
	VariantLabel string `json:"variant,omitempty"`
	Quantity     int    `json:"quantity"`
}

// ManualPaymentInput is the customer-submitted payment proof.
type ManualPaymentInput struct {
	TransactionID string `json:"transactionId"`
	ScreenshotURL string `json:"screenshot,omitempty"`
	AccountNumber string `json:"accountNumber,omitempty"`
}

// PlaceOrderInput carries everything needed to convert a cart to an order.
// The fee/total/status overrides are administrative escape hatches; normal
// placements leave them nil.
type PlaceOrderInput struct {
	UserID          uint
	Items           []LineRequest
	ShippingAddress string
	ContactNumber   string
	Location        string
	PaymentMethod   string
	DeliveryFee     *float64
	TotalAmount     *float64
	Status          *OrderStatus
	PaymentStatus   *PaymentStatus
	ManualPayment   *ManualPaymentInput
}

// StockDeduction identifies the exact stock row a line item draws from.
type StockDeduction struct {
	ProductID   string
	VariantID   *string
	Quantity    int
	ProductName string
}

type OrderFilter struct {
	UserID *uint
	Status *OrderStatus
}
