package handler

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"freshmart/internal/checkout"
	"freshmart/internal/models"
	"freshmart/internal/repository"
)

// PaymentHandler serves checkout initiation and the admin read surface.
type PaymentHandler struct {
	checkout *checkout.Service
	payments *repository.PaymentRepository
	refunds  *repository.RefundRepository
	logger   *zap.Logger
}

func NewPaymentHandler(svc *checkout.Service, payments *repository.PaymentRepository, refunds *repository.RefundRepository, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{checkout: svc, payments: payments, refunds: refunds, logger: logger}
}

// Initiate opens a new charge for an order.
func (h *PaymentHandler) Initiate(c echo.Context) error {
	var req checkout.Request
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	req.IPAddress = c.RealIP()
	req.UserAgent = c.Request().UserAgent()

	resp, err := h.checkout.Initiate(c.Request().Context(), req)
	if err != nil {
		return failFrom(c, err)
	}
	return ok(c, "payment initiated", resp)
}

// List returns payments matching the filter, newest first.
func (h *PaymentHandler) List(c echo.Context) error {
	f := listFilterFrom(c)
	payments, total, err := h.payments.FindAll(c.Request().Context(), f)
	if err != nil {
		return failFrom(c, err)
	}
	return ok(c, "payments", map[string]interface{}{
		"payments": payments,
		"total":    total,
		"page":     f.Page,
	})
}

// Get returns one payment by id.
func (h *PaymentHandler) Get(c echo.Context) error {
	id := c.QueryParam("payment_id")
	if id == "" {
		return fail(c, http.StatusBadRequest, "payment_id is required")
	}
	payment, err := h.payments.FindByID(c.Request().Context(), id)
	if err != nil {
		return failFrom(c, err)
	}
	refunds, err := h.refunds.FindByPaymentID(c.Request().Context(), id)
	if err != nil {
		return failFrom(c, err)
	}
	return ok(c, "payment", map[string]interface{}{
		"payment": payment,
		"refunds": refunds,
	})
}

// exportColumns is the fixed header for the bookkeeping export. External
// consumers parse this byte for byte; never reorder it.
var exportColumns = []string{
	"payment id", "order id", "reference", "gateway", "amount", "fee",
	"net amount", "status", "customer email", "customer phone",
	"webhook verified", "created at", "verified at",
}

// Export streams a CSV dump of payments matching the filter, oldest
// first so appended rows stay stable across repeated exports.
func (h *PaymentHandler) Export(c echo.Context) error {
	payments, err := h.payments.FindAllForExport(c.Request().Context(), listFilterFrom(c))
	if err != nil {
		return failFrom(c, err)
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	res.Header().Set(echo.HeaderContentDisposition, `attachment; filename="payments.csv"`)
	res.WriteHeader(http.StatusOK)

	w := csv.NewWriter(res)
	if err := w.Write(exportColumns); err != nil {
		return err
	}
	for i := range payments {
		if err := w.Write(exportRow(&payments[i])); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func exportRow(p *models.Payment) []string {
	verifiedAt := ""
	if p.VerifiedAt != nil {
		verifiedAt = p.VerifiedAt.UTC().Format(time.RFC3339)
	}
	return []string{
		p.ID,
		p.OrderID,
		p.GatewayReference,
		string(p.Gateway),
		p.Amount.StringFixed(2),
		p.TransactionFee.StringFixed(2),
		p.NetAmount.StringFixed(2),
		string(p.Status),
		p.CustomerEmail,
		p.CustomerPhone,
		strconv.FormatBool(p.WebhookVerified),
		p.CreatedAt.UTC().Format(time.RFC3339),
		verifiedAt,
	}
}

func listFilterFrom(c echo.Context) repository.ListFilter {
	f := repository.ListFilter{
		Status:  models.PaymentStatus(c.QueryParam("status")),
		Gateway: models.Gateway(c.QueryParam("gateway")),
		Query:   c.QueryParam("search"),
	}
	if v := c.QueryParam("from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			f.From = &t
		}
	}
	if v := c.QueryParam("to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			end := t.Add(24 * time.Hour)
			f.To = &end
		}
	}
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil {
		f.Limit = v
	}
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil {
		f.Page = v
	}
	return f
}
