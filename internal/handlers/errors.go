package handlers

import (
	"context"
	"errors"
	"net/http"

	"tajabazar-be/internal/category"
	"tajabazar-be/internal/httpx"
	"tajabazar-be/internal/logger"
	"tajabazar-be/internal/order"
	"tajabazar-be/internal/product"

	"go.uber.org/zap"
)

// writeServiceError maps domain errors onto HTTP statuses. Unexpected
// errors are logged with full detail and surfaced as a generic 500.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, order.ErrNoManualPayment),
		errors.Is(err, order.ErrInsufficientStock):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, order.ErrForbidden):
		httpx.WriteError(w, http.StatusForbidden, err.Error())

	case errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, product.ErrVariantNotFound),
		errors.Is(err, category.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, order.ErrStockConflict),
		errors.Is(err, category.ErrHasChildren),
		errors.Is(err, category.ErrCycleDetected),
		errors.Is(err, category.ErrSlugTaken),
		errors.Is(err, product.ErrSlugTaken):
		httpx.WriteError(w, http.StatusConflict, err.Error())

	default:
		logger.FromCtx(ctx).Error("unhandled service error", zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}
