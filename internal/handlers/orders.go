package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"tajabazar-be/internal/httpx"
	"tajabazar-be/internal/middleware"
	"tajabazar-be/internal/order"
	"tajabazar-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

// OrderHandlers exposes the order placement and lifecycle endpoints.
type OrderHandlers struct {
	svc order.Service
}

func NewOrderHandlers(svc order.Service) *OrderHandlers {
	return &OrderHandlers{svc: svc}
}

// Routes wires the /orders endpoints onto the provided router.
func (h *OrderHandlers) Routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/", h.placeOrder)
		r.Get("/my-orders", h.myOrders)
		r.Get("/{id}", h.getOrder)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin)
		r.Get("/", h.listOrders)
		r.Put("/{id}/status", h.updateStatus)
		r.Put("/{id}/payment", h.updatePayment)
	})
}

// AdminRoutes wires the manual payment verification endpoints.
func (h *OrderHandlers) AdminRoutes(r chi.Router) {
	r.Use(middleware.RequireAdmin)
	r.Post("/manual-payments/{orderID}/approve", h.approveManualPayment)
	r.Post("/manual-payments/{orderID}/reject", h.rejectManualPayment)
}

type placeOrderRequest struct {
	Products        []order.LineRequest       `json:"products"`
	ShippingAddress string                    `json:"shippingAddress"`
	ContactNumber   string                    `json:"contactNumber"`
	Location        string                    `json:"location"`
	PaymentMethod   string                    `json:"paymentMethod"`
	DeliveryFee     *float64                  `json:"deliveryFee,omitempty"`
	TotalAmount     *float64                  `json:"totalAmount,omitempty"`
	Status          *order.OrderStatus        `json:"status,omitempty"`
	PaymentStatus   *order.PaymentStatus      `json:"paymentStatus,omitempty"`
	ManualPayment   *order.ManualPaymentInput `json:"manualPayment,omitempty"`
}

func (h *OrderHandlers) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := utils.GetUserIDFromContext(ctx)

	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ShippingAddress == "" || req.ContactNumber == "" {
		httpx.WriteError(w, http.StatusBadRequest, "shipping address and contact number are required")
		return
	}
	if req.PaymentMethod == "" {
		httpx.WriteError(w, http.StatusBadRequest, "payment method is required")
		return
	}

	o, err := h.svc.PlaceOrder(ctx, order.PlaceOrderInput{
		UserID:          userID,
		Items:           req.Products,
		ShippingAddress: req.ShippingAddress,
		ContactNumber:   req.ContactNumber,
		Location:        req.Location,
		PaymentMethod:   req.PaymentMethod,
		DeliveryFee:     req.DeliveryFee,
		TotalAmount:     req.TotalAmount,
		Status:          req.Status,
		PaymentStatus:   req.PaymentStatus,
		ManualPayment:   req.ManualPayment,
	})
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, o)
}

func (h *OrderHandlers) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := utils.GetUserIDFromContext(ctx)

	o, err := h.svc.GetOrderDetail(ctx, chi.URLParam(r, "id"), userID, utils.IsAdmin(ctx))
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, o)
}

func (h *OrderHandlers) myOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := utils.GetUserIDFromContext(ctx)

	limit, page := parsePagination(r)

	var status *order.OrderStatus
	if s := r.URL.Query().Get("status"); s != "" {
		st := order.OrderStatus(s)
		status = &st
	}

	orders, total, err := h.svc.ListUserOrders(ctx, userID, status, limit, page)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	httpx.WriteList(w, http.StatusOK, orders, httpx.Meta{Total: total, Page: page, Limit: limit})
}

func (h *OrderHandlers) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit, page := parsePagination(r)

	var filter order.OrderFilter
	if s := r.URL.Query().Get("status"); s != "" {
		st := order.OrderStatus(s)
		filter.Status = &st
	}

	orders, total, err := h.svc.ListOrders(ctx, filter, limit, page)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	httpx.WriteList(w, http.StatusOK, orders, httpx.Meta{Total: total, Page: page, Limit: limit})
}

type updateStatusRequest struct {
	Status order.OrderStatus `json:"status"`
	Note   *string           `json:"note,omitempty"`
}

func (h *OrderHandlers) updateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.UpdateStatus(ctx, chi.URLParam(r, "id"), req.Status, req.Note); err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	httpx.WriteMessage(w, http.StatusOK, "order status updated")
}

type updatePaymentRequest struct {
	PaymentStatus order.PaymentStatus `json:"paymentStatus"`
	TransactionID *string             `json:"transactionId,omitempty"`
}

func (h *OrderHandlers) updatePayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req updatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.UpdatePayment(ctx, chi.URLParam(r, "id"), req.PaymentStatus, req.TransactionID); err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	httpx.WriteMessage(w, http.StatusOK, "payment status updated")
}

func (h *OrderHandlers) approveManualPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	adminEmail := utils.GetUserEmailFromContext(ctx)

	o, err := h.svc.ApproveManualPayment(ctx, chi.URLParam(r, "orderID"), adminEmail)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, o)
}

type rejectPaymentRequest struct {
	Reason *string `json:"reason,omitempty"`
}

func (h *OrderHandlers) rejectManualPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	adminEmail := utils.GetUserEmailFromContext(ctx)

	var req rejectPaymentRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	o, err := h.svc.RejectManualPayment(ctx, chi.URLParam(r, "orderID"), adminEmail, req.Reason)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, o)
}

func parsePagination(r *http.Request) (limit, page int32) {
	limit, page = 10, 1
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = int32(v)
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = int32(v)
	}
	return limit, page
}
