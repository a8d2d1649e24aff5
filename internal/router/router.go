package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"freshmart/internal/handler"
	"freshmart/internal/middleware"
)

// Handlers bundles the constructed handlers for route registration.
type Handlers struct {
	Payment *handler.PaymentHandler
	Admin   *handler.AdminHandler
	Method  *handler.MethodHandler
	Webhook *handler.WebhookHandler
}

// Setup configures all routes for the Echo server.
func Setup(e *echo.Echo, h *Handlers, adminAPIKey string) {
	// Global middleware
	e.Use(echomw.Recover())
	e.Use(middleware.CORS())

	// Provider webhooks; the ingest service authenticates the signature
	// and deduplicates by provider event id, in that order
	e.POST("/webhook/paystack", h.Webhook.Paystack)
	e.POST("/webhook/flutterwave", h.Webhook.Flutterwave)

	// Checkout, called by the order flow
	e.POST("/api/payments/initiate", h.Payment.Initiate)
	e.GET("/api/methods", h.Method.Active)

	// Admin surface
	adminGroup := e.Group("/api", middleware.AdminAuth(adminAPIKey))
	adminGroup.POST("/payments/confirm-manual", h.Admin.ConfirmManual)
	adminGroup.POST("/payments/reject-manual", h.Admin.RejectManual)
	adminGroup.POST("/payments/refund", h.Admin.Refund)
	adminGroup.GET("/payments", h.Payment.List)
	adminGroup.POST("/payments", h.Payment.List)
	adminGroup.GET("/payment", h.Payment.Get)
	adminGroup.POST("/payment", h.Payment.Get)
	adminGroup.GET("/payments/export", h.Payment.Export)
	adminGroup.GET("/methods/all", h.Method.List)
	adminGroup.POST("/methods/update", h.Method.Update)

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})
}
