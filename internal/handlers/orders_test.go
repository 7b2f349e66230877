package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tajabazar-be/internal/httpx"
	"tajabazar-be/internal/order"
	"tajabazar-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) PlaceOrder(ctx context.Context, input order.PlaceOrderInput) (*order.Order, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) GetOrderDetail(ctx context.Context, orderID string, userID uint, isAdmin bool) (*order.Order, error) {
	args := m.Called(ctx, orderID, userID, isAdmin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) ListUserOrders(ctx context.Context, userID uint, status *order.OrderStatus, limit, page int32) ([]*order.Order, int64, error) {
	args := m.Called(ctx, userID, status, limit, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*order.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderService) ListOrders(ctx context.Context, filter order.OrderFilter, limit, page int32) ([]*order.Order, int64, error) {
	args := m.Called(ctx, filter, limit, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*order.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, orderID string, status order.OrderStatus, note *string) error {
	args := m.Called(ctx, orderID, status, note)
	return args.Error(0)
}

func (m *MockOrderService) UpdatePayment(ctx context.Context, orderID string, status order.PaymentStatus, transactionID *string) error {
	args := m.Called(ctx, orderID, status, transactionID)
	return args.Error(0)
}

func (m *MockOrderService) ApproveManualPayment(ctx context.Context, orderID string, verifiedBy string) (*order.Order, error) {
	args := m.Called(ctx, orderID, verifiedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) RejectManualPayment(ctx context.Context, orderID string, verifiedBy string, reason *string) (*order.Order, error) {
	args := m.Called(ctx, orderID, verifiedBy, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

// injectUser simulates an authenticated request the way the auth
// middleware would populate it from a verified token.
func injectUser(id uint, email, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := utils.SetUserContext(r.Context(), id, email, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func orderRouter(svc order.Service, mw func(http.Handler) http.Handler) http.Handler {
	h := NewOrderHandlers(svc)
	r := chi.NewRouter()
	if mw != nil {
		r.Use(mw)
	}
	r.Route("/api/orders", h.Routes)
	r.Route("/api/admin", h.AdminRoutes)
	return r
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) httpx.Response {
	t.Helper()
	var resp httpx.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestPlaceOrderEndpoint(t *testing.T) {
	body := `{
		"products": [{"productId": "p1", "variant": "1kg", "quantity": 3}],
		"shippingAddress": "House 12, Road 3, Dhanmondi",
		"contactNumber": "01700000000",
		"location": "Dhaka",
		"paymentMethod": "cash_on_delivery"
	}`

	t.Run("Created", func(t *testing.T) {
		svc := new(MockOrderService)
		router := orderRouter(svc, injectUser(7, "user@example.com", utils.RoleCustomer))

		svc.On("PlaceOrder", mock.Anything, mock.MatchedBy(func(in order.PlaceOrderInput) bool {
			return in.UserID == 7 &&
				len(in.Items) == 1 &&
				in.Items[0].ProductID == "p1" &&
				in.Items[0].Quantity == 3 &&
				in.Location == "Dhaka" &&
				in.PaymentMethod == order.PaymentMethodCOD
		})).Return(&order.Order{ID: "o1", UserID: 7, TotalAmount: 305}, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/orders/", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		resp := decodeEnvelope(t, rec)
		assert.True(t, resp.Success)
		svc.AssertExpectations(t)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		svc := new(MockOrderService)
		router := orderRouter(svc, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/orders/", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		svc.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything)
	})

	t.Run("MissingContactNumber", func(t *testing.T) {
		svc := new(MockOrderService)
		router := orderRouter(svc, injectUser(7, "user@example.com", utils.RoleCustomer))

		req := httptest.NewRequest(http.MethodPost, "/api/orders/",
			bytes.NewBufferString(`{"products":[{"productId":"p1","quantity":1}],"shippingAddress":"Dhanmondi","paymentMethod":"bkash"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything)
	})

	t.Run("EmptyCart", func(t *testing.T) {
		svc := new(MockOrderService)
		router := orderRouter(svc, injectUser(7, "user@example.com", utils.RoleCustomer))

		svc.On("PlaceOrder", mock.Anything, mock.Anything).Return(nil, order.ErrEmptyCart)

		req := httptest.NewRequest(http.MethodPost, "/api/orders/",
			bytes.NewBufferString(`{"products":[],"shippingAddress":"Dhanmondi","contactNumber":"01700000000","paymentMethod":"bkash"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeEnvelope(t, rec)
		assert.False(t, resp.Success)
	})

	t.Run("InsufficientStock", func(t *testing.T) {
		svc := new(MockOrderService)
		router := orderRouter(svc, injectUser(7, "user@example.com", utils.RoleCustomer))

		svc.On("PlaceOrder", mock.Anything, mock.Anything).Return(nil, order.ErrInsufficientStock)

		req := httptest.NewRequest(http.MethodPost, "/api/orders/", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("LostStockRaceConflicts", func(t *testing.T) {
		svc := new(MockOrderService)
		router := orderRouter(svc, injectUser(7, "user@example.com", utils.RoleCustomer))

		svc.On("PlaceOrder", mock.Anything, mock.Anything).Return(nil, order.ErrStockConflict)

		req := httptest.NewRequest(http.MethodPost, "/api/orders/", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		resp := decodeEnvelope(t, rec)
		assert.False(t, resp.Success)
	})
}

func TestGetOrderEndpoint(t *testing.T) {
	t.Run("OwnerFetch", func(t *testing.T) {
		svc := new(MockOrderService)
		router := orderRouter(svc, injectUser(7, "user@example.com", utils.RoleCustomer))

		svc.On("GetOrderDetail", mock.Anything, "o1", uint(7), false).
			Return(&order.Order{ID: "o1", UserID: 7}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/orders/o1", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("ForeignOrderForbidden", func(t *testing.T) {
		svc := new(MockOrderService)
		router := orderRouter(svc, injectUser(99, "other@example.com", utils.RoleCustomer))

		svc.On("GetOrderDetail", mock.Anything, "o1", uint(99), false).
			Return(nil, order.ErrForbidden)

		req := httptest.NewRequest(http.MethodGet, "/api/orders/o1", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("NotFound", func(t *testing.T) {
		svc := new(MockOrderService)
		router := orderRouter(svc, injectUser(7, "user@example.com", utils.RoleCustomer))

		svc.On("GetOrderDetail", mock.Anything, "ghost", uint(7), false).
			Return(nil, order.ErrOrderNotFound)

		req := httptest.NewRequest(http.MethodGet, "/api/orders/ghost", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestMyOrdersEndpoint(t *testing.T) {
	svc := new(MockOrderService)
	router := orderRouter(svc, injectUser(7, "user@example.com", utils.RoleCustomer))

	status := order.StatusPending
	svc.On("ListUserOrders", mock.Anything, uint(7), &status, int32(5), int32(2)).
		Return([]*order.Order{{ID: "o1"}}, int64(6), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/orders/my-orders?status=PENDING&limit=5&page=2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(6), resp.Meta.Total)
	assert.Equal(t, int32(2), resp.Meta.Page)
}

func TestAdminOrderEndpoints(t *testing.T) {
	admin := injectUser(1, "admin@tajabazar.com", utils.RoleAdmin)

	t.Run("ListRequiresAdmin", func(t *testing.T) {
		svc := new(MockOrderService)
		router := orderRouter(svc, injectUser(7, "user@example.com", utils.RoleCustomer))

		req := httptest.NewRequest(http.MethodGet, "/api/orders/", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		svc.AssertNotCalled(t, "ListOrders", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("UpdateStatus", func(t *testing.T) {
		svc := new(MockOrderService)
		router := orderRouter(svc, admin)

		note := "left the warehouse"
		svc.On("UpdateStatus", mock.Anything, "o1", order.StatusShipped, &note).Return(nil)

		req := httptest.NewRequest(http.MethodPut, "/api/orders/o1/status",
			bytes.NewBufferString(`{"status":"SHIPPED","note":"left the warehouse"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("UpdateStatusUnknown", func(t *testing.T) {
		svc := new(MockOrderService)
		router := orderRouter(svc, admin)

		svc.On("UpdateStatus", mock.Anything, "o1", order.OrderStatus("TELEPORTED"), (*string)(nil)).
			Return(order.ErrInvalidStatus)

		req := httptest.NewRequest(http.MethodPut, "/api/orders/o1/status",
			bytes.NewBufferString(`{"status":"TELEPORTED"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("ApproveManualPayment", func(t *testing.T) {
		svc := new(MockOrderService)
		router := orderRouter(svc, admin)

		svc.On("ApproveManualPayment", mock.Anything, "o1", "admin@tajabazar.com").
			Return(&order.Order{ID: "o1", Status: order.StatusConfirmed, PaymentStatus: order.PaymentPaid}, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/admin/manual-payments/o1/approve", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("RejectManualPaymentWithReason", func(t *testing.T) {
		svc := new(MockOrderService)
		router := orderRouter(svc, admin)

		svc.On("RejectManualPayment", mock.Anything, "o1", "admin@tajabazar.com",
			mock.MatchedBy(func(r *string) bool { return r != nil && *r == "screenshot does not match" })).
			Return(&order.Order{ID: "o1", Status: order.StatusCancelled, PaymentStatus: order.PaymentFailed}, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/admin/manual-payments/o1/reject",
			bytes.NewBufferString(`{"reason":"screenshot does not match"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("RejectWithoutSubmission", func(t *testing.T) {
		svc := new(MockOrderService)
		router := orderRouter(svc, admin)

		svc.On("RejectManualPayment", mock.Anything, "o1", "admin@tajabazar.com", (*string)(nil)).
			Return(nil, order.ErrNoManualPayment)

		req := httptest.NewRequest(http.MethodPost, "/api/admin/manual-payments/o1/reject", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
