package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"freshmart/internal/manual"
	"freshmart/internal/middleware"
	"freshmart/internal/refund"
)

// AdminHandler serves the operations that need an authenticated
// administrator: manual confirmation and refunds.
type AdminHandler struct {
	manual  *manual.Workflow
	refunds *refund.Processor
	logger  *zap.Logger
}

func NewAdminHandler(m *manual.Workflow, r *refund.Processor, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{manual: m, refunds: r, logger: logger}
}

type confirmRequest struct {
	PaymentID  string `json:"payment_id"`
	AdminNotes string `json:"admin_notes"`
}

// ConfirmManual marks a pending WhatsApp payment completed.
func (h *AdminHandler) ConfirmManual(c echo.Context) error {
	admin, found := middleware.AdminFrom(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "admin identity missing")
	}

	var req confirmRequest
	if err := c.Bind(&req); err != nil || req.PaymentID == "" {
		return fail(c, http.StatusBadRequest, "payment_id is required")
	}

	payment, err := h.manual.Confirm(c.Request().Context(), req.PaymentID, admin, req.AdminNotes)
	if err != nil {
		return failFrom(c, err)
	}
	return ok(c, "payment confirmed", payment)
}

type rejectRequest struct {
	PaymentID       string `json:"payment_id"`
	RejectionReason string `json:"rejection_reason"`
}

// RejectManual marks a pending WhatsApp payment failed.
func (h *AdminHandler) RejectManual(c echo.Context) error {
	admin, found := middleware.AdminFrom(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "admin identity missing")
	}

	var req rejectRequest
	if err := c.Bind(&req); err != nil || req.PaymentID == "" {
		return fail(c, http.StatusBadRequest, "payment_id is required")
	}
	if req.RejectionReason == "" {
		return fail(c, http.StatusBadRequest, "rejection_reason is required")
	}

	payment, err := h.manual.Reject(c.Request().Context(), req.PaymentID, admin, req.RejectionReason)
	if err != nil {
		return failFrom(c, err)
	}
	return ok(c, "payment rejected", payment)
}

type refundRequest struct {
	PaymentID    string          `json:"payment_id"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
	RefundReason string          `json:"refund_reason"`
}

// Refund reverses part or all of a completed payment. A missing amount
// means the full remaining balance.
func (h *AdminHandler) Refund(c echo.Context) error {
	admin, found := middleware.AdminFrom(c)
	if !found {
		return fail(c, http.StatusUnauthorized, "admin identity missing")
	}

	var req refundRequest
	if err := c.Bind(&req); err != nil || req.PaymentID == "" {
		return fail(c, http.StatusBadRequest, "payment_id is required")
	}

	result, err := h.refunds.Refund(c.Request().Context(), req.PaymentID, req.RefundAmount, req.RefundReason, admin)
	if err != nil {
		return failFrom(c, err)
	}
	return ok(c, "refund processed", result)
}
