package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"freshmart/internal/models"
	"freshmart/internal/registry"
)

// MethodHandler serves payment method configuration.
type MethodHandler struct {
	registry *registry.Registry
	logger   *zap.Logger
}

func NewMethodHandler(reg *registry.Registry, logger *zap.Logger) *MethodHandler {
	return &MethodHandler{registry: reg, logger: logger}
}

// List returns every configured method, active or not, in display order.
func (h *MethodHandler) List(c echo.Context) error {
	methods, err := h.registry.AllMethods(c.Request().Context())
	if err != nil {
		return failFrom(c, err)
	}
	return ok(c, "payment methods", methods)
}

// Active returns only the methods a customer may currently pick.
func (h *MethodHandler) Active(c echo.Context) error {
	methods, err := h.registry.ActiveMethods(c.Request().Context())
	if err != nil {
		return failFrom(c, err)
	}
	return ok(c, "active payment methods", methods)
}

type updateMethodsRequest struct {
	Methods []models.PaymentMethod `json:"methods"`
}

// Update applies an administrator's method configuration changes in one
// batch.
func (h *MethodHandler) Update(c echo.Context) error {
	var req updateMethodsRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if len(req.Methods) == 0 {
		return fail(c, http.StatusBadRequest, "methods is required")
	}

	if err := h.registry.UpdateMethods(c.Request().Context(), req.Methods); err != nil {
		return failFrom(c, err)
	}
	return ok(c, "payment methods updated", nil)
}
