package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"freshmart/internal/webhook"
)

// WebhookHandler receives provider callbacks. Every understood payload
// is answered 200 whatever happened internally, so providers never
// retry a delivery we already handled. Forged payloads are also not
// given a 5xx to chew on.
type WebhookHandler struct {
	ingest *webhook.Service
	logger *zap.Logger
}

func NewWebhookHandler(ingest *webhook.Service, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{ingest: ingest, logger: logger}
}

func (h *WebhookHandler) Paystack(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusOK, map[string]string{"status": "unreadable"})
	}

	err = h.ingest.ProcessPaystack(c.Request().Context(), body, c.Request().Header.Get("x-paystack-signature"))
	return h.respond(c, "paystack", err)
}

func (h *WebhookHandler) Flutterwave(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusOK, map[string]string{"status": "unreadable"})
	}

	err = h.ingest.ProcessFlutterwave(c.Request().Context(), body, c.Request().Header.Get("verif-hash"))
	return h.respond(c, "flutterwave", err)
}

func (h *WebhookHandler) respond(c echo.Context, provider string, err error) error {
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	case errors.Is(err, webhook.ErrInvalidSignature):
		h.logger.Warn("webhook signature rejected",
			zap.String("provider", provider),
			zap.String("ip", c.RealIP()))
		return c.JSON(http.StatusOK, map[string]string{"status": "rejected"})
	case errors.Is(err, webhook.ErrDuplicateDelivery):
		return c.JSON(http.StatusOK, map[string]string{"status": "duplicate"})
	default:
		h.logger.Error("webhook processing failed",
			zap.String("provider", provider), zap.Error(err))
		return c.JSON(http.StatusOK, map[string]string{"status": "error"})
	}
}
