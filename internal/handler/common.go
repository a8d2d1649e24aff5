// Package handler is the HTTP surface. Handlers translate between the
// wire and the services; every business decision lives below them.
package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"freshmart/internal/gateway"
	"freshmart/internal/ledger"
	"freshmart/internal/models"
	"freshmart/internal/registry"
)

func ok(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, models.APIResponse{
		Success: false,
		Message: message,
	})
}

// failFrom maps service errors onto admin-facing status codes. The
// message is the error text; the taxonomy decides the code.
func failFrom(c echo.Context, err error) error {
	var ve *registry.ValidationError
	var se *registry.StoreError
	switch {
	case errors.As(err, &ve):
		return fail(c, http.StatusBadRequest, ve.Message)
	case errors.As(err, &se):
		return fail(c, http.StatusServiceUnavailable, "payment method configuration is unavailable, try again later")
	case errors.Is(err, ledger.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return fail(c, http.StatusNotFound, "payment not found")
	case errors.Is(err, ledger.ErrConflict):
		return fail(c, http.StatusConflict, "payment status changed, reload and retry")
	case errors.Is(err, gateway.ErrRefundUnsupported):
		return fail(c, http.StatusBadRequest, err.Error())
	case gateway.IsNetwork(err):
		return fail(c, http.StatusBadGateway, "payment provider is unreachable, try again later")
	default:
		return fail(c, http.StatusBadRequest, err.Error())
	}
}
