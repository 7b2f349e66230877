package handlers

import (
	"net/http"

	"tajabazar-be/internal/logger"
	"tajabazar-be/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// Services bundles everything the router needs.
type Services struct {
	Orders     *OrderHandlers
	Categories *CategoryHandlers
	Products   *ProductHandlers
}

// NewRouter assembles the full API surface with the shared middleware
// chain: request id, access logging, auth claims, rate limiting.
func NewRouter(svcs Services) http.Handler {
	r := chi.NewRouter()

	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(middleware.AuthMiddleware)
	r.Use(middleware.RateLimitMiddleware)

	r.Get("/health", Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/orders", svcs.Orders.Routes)
		r.Route("/categories", svcs.Categories.Routes)
		r.Route("/products", svcs.Products.Routes)
		r.Route("/admin", func(r chi.Router) {
			r.Group(svcs.Orders.AdminRoutes)
			r.With(middleware.RequireAdmin).Get("/metrics", Metrics)
		})
		r.Get("/delivery-zones", DeliveryZones)
		r.Get("/payment-methods", PaymentMethods)
	})

	return r
}
