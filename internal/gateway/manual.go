package gateway

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"freshmart/internal/models"
)

// Notifier pushes a text message to a customer phone number. Implemented by
// the WhatsApp notify client; nil disables outbound messages.
type Notifier interface {
	SendText(ctx context.Context, phone, text string) error
}

// ManualGateway handles WhatsApp-confirmed payments. There is no external
// provider: initiate records the charge and messages the customer, and
// settlement happens when an administrator confirms the conversation
// through the manual workflow.
type ManualGateway struct {
	notifier Notifier
	logger   *zap.Logger
}

func NewManualGateway(notifier Notifier, logger *zap.Logger) *ManualGateway {
	return &ManualGateway{notifier: notifier, logger: logger}
}

func (m *ManualGateway) Name() models.Gateway {
	return models.GatewayWhatsApp
}

func (m *ManualGateway) SupportsRefund() bool {
	return false
}

func (m *ManualGateway) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResult, error) {
	instructions := fmt.Sprintf(
		"Your FreshMart order %s is reserved. Please send %s %s via WhatsApp to complete payment, quoting reference %s.",
		req.OrderID, req.Currency, req.Amount.StringFixed(2), req.Reference,
	)

	if m.notifier != nil && req.Phone != "" {
		// Best effort: a failed message must not block the charge.
		if err := m.notifier.SendText(ctx, req.Phone, instructions); err != nil {
			m.logger.Warn("failed to send whatsapp payment instructions",
				zap.String("reference", req.Reference), zap.Error(err))
		}
	}

	return &InitiateResult{
		Reference:    req.Reference,
		Instructions: instructions,
	}, nil
}

// Verify has nothing to ask: confirmation arrives through the admin-operated
// manual workflow, never programmatically.
func (m *ManualGateway) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	return &VerifyResult{
		Status:  models.StatusPending,
		Message: "awaiting manual confirmation",
	}, nil
}

func (m *ManualGateway) Refund(ctx context.Context, reference string, amount decimal.Decimal, reason string) (*RefundResult, error) {
	return nil, ErrRefundUnsupported
}
