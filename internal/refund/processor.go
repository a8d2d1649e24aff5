// Package refund reverses completed payments. Every gateway refund call
// is recorded as an append-only Refund row whether it succeeded or not,
// and the cumulative completed amount is re-checked against the payment
// before any money moves.
package refund

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"freshmart/internal/gateway"
	"freshmart/internal/ledger"
	"freshmart/internal/models"
)

type paymentStore interface {
	FindByID(ctx context.Context, id string) (*models.Payment, error)
}

type refundStore interface {
	Create(ctx context.Context, refund *models.Refund) error
	SumCompleted(ctx context.Context, paymentID string) (decimal.Decimal, error)
}

type gatewayResolver interface {
	Get(g models.Gateway) (gateway.Gateway, error)
}

type transitioner interface {
	Transition(ctx context.Context, id string, fromExpected, target models.PaymentStatus, ev ledger.Evidence) (*models.Payment, error)
}

// Result is what the admin surface reports back after a refund attempt.
type Result struct {
	Refund          *models.Refund  `json:"refund"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	FullyRefunded   bool            `json:"fully_refunded"`
}

// Processor coordinates the gateway call, the refund audit row, and the
// ledger transition for a reversal.
type Processor struct {
	payments paymentStore
	refunds  refundStore
	gateways gatewayResolver
	ledger   transitioner
	logger   *zap.Logger
}

func NewProcessor(payments paymentStore, refunds refundStore, gateways gatewayResolver, lg transitioner, logger *zap.Logger) *Processor {
	return &Processor{
		payments: payments,
		refunds:  refunds,
		gateways: gateways,
		ledger:   lg,
		logger:   logger,
	}
}

// Refund reverses part or all of a completed payment. A zero amount
// means the full remaining balance. The gateway call is never retried:
// a duplicate refund is worse than a delayed one.
func (p *Processor) Refund(ctx context.Context, paymentID string, amount decimal.Decimal, reason string, admin models.AdminContext) (*Result, error) {
	payment, err := p.payments.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != models.StatusCompleted {
		return nil, fmt.Errorf("payment %s is %s, only completed payments can be refunded", payment.ID, payment.Status)
	}

	gw, err := p.gateways.Get(payment.Gateway)
	if err != nil {
		return nil, err
	}
	if !gw.SupportsRefund() {
		return nil, gateway.ErrRefundUnsupported
	}

	refunded, err := p.refunds.SumCompleted(ctx, payment.ID)
	if err != nil {
		return nil, err
	}
	remaining := payment.Amount.Sub(refunded)
	if amount.IsZero() {
		amount = remaining
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("refund amount must be positive")
	}
	if amount.GreaterThan(remaining) {
		return nil, fmt.Errorf("refund of %s exceeds the remaining refundable %s on payment %s",
			amount.StringFixed(2), remaining.StringFixed(2), payment.ID)
	}

	res, gwErr := gw.Refund(ctx, payment.GatewayReference, amount, reason)

	row := &models.Refund{
		PaymentID:    payment.ID,
		RefundAmount: amount,
		RefundReason: reason,
		CreatedBy:    admin.AdminID,
	}
	if gwErr != nil {
		row.Status = models.RefundFailed
		row.GatewayResponse = gwErr.Error()
	} else {
		row.Status = models.RefundCompleted
		row.GatewayRefundID = res.GatewayRefundID
		row.GatewayResponse = string(res.Raw)
	}
	if err := p.refunds.Create(ctx, row); err != nil {
		p.logger.Error("refund audit row not persisted",
			zap.String("payment_id", payment.ID), zap.Error(err))
		return nil, err
	}

	if gwErr != nil {
		p.logger.Warn("gateway refund failed",
			zap.String("payment_id", payment.ID),
			zap.String("gateway", string(payment.Gateway)),
			zap.Error(gwErr))
		return nil, gwErr
	}

	totalRefunded := refunded.Add(amount)
	result := &Result{
		Refund:          row,
		RemainingAmount: payment.Amount.Sub(totalRefunded),
		FullyRefunded:   totalRefunded.Equal(payment.Amount),
	}

	if result.FullyRefunded {
		if _, err := p.ledger.Transition(ctx, payment.ID, models.StatusCompleted, models.StatusRefunded, ledger.Evidence{
			Source:  models.SourceAdmin,
			AdminID: admin.AdminID,
			Raw:     string(res.Raw),
		}); err != nil {
			// money already moved; surface the bookkeeping gap loudly
			p.logger.Error("refund applied at gateway but status transition failed",
				zap.String("payment_id", payment.ID), zap.Error(err))
			return result, err
		}
	}

	p.logger.Info("refund completed",
		zap.String("payment_id", payment.ID),
		zap.String("amount", amount.StringFixed(2)),
		zap.Bool("fully_refunded", result.FullyRefunded),
		zap.String("admin_id", admin.AdminID))

	return result, nil
}
