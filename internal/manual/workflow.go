// Package manual is the admin-operated substitute for a webhook, used
// for payments taken over WhatsApp. There is no gateway signature on
// this path; the authenticated administrator is the trust anchor, so
// every operation records who acted.
package manual

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"freshmart/internal/ledger"
	"freshmart/internal/models"
)

type paymentStore interface {
	FindByID(ctx context.Context, id string) (*models.Payment, error)
}

type transitioner interface {
	Transition(ctx context.Context, id string, fromExpected, target models.PaymentStatus, ev ledger.Evidence) (*models.Payment, error)
}

type notifier interface {
	SendText(ctx context.Context, phone, text string) error
}

// Workflow confirms or rejects WhatsApp payments on an administrator's
// say-so.
type Workflow struct {
	payments paymentStore
	ledger   transitioner
	notifier notifier
	logger   *zap.Logger
}

func NewWorkflow(payments paymentStore, lg transitioner, n notifier, logger *zap.Logger) *Workflow {
	return &Workflow{payments: payments, ledger: lg, notifier: n, logger: logger}
}

// Confirm marks a pending WhatsApp payment completed. The customer gets
// a receipt message on a best-effort basis.
func (w *Workflow) Confirm(ctx context.Context, paymentID string, admin models.AdminContext, notes string) (*models.Payment, error) {
	payment, err := w.precheck(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	updated, err := w.ledger.Transition(ctx, payment.ID, models.StatusPending, models.StatusCompleted, ledger.Evidence{
		Source:  models.SourceAdmin,
		AdminID: admin.AdminID,
		Raw:     notes,
	})
	if err != nil {
		return nil, err
	}

	w.logger.Info("manual payment confirmed",
		zap.String("payment_id", updated.ID),
		zap.String("admin_id", admin.AdminID))

	if w.notifier != nil && updated.CustomerPhone != "" {
		text := fmt.Sprintf("Your payment of %s %s for order %s has been confirmed. Thank you for shopping with us!",
			updated.Currency, updated.Amount.StringFixed(2), updated.OrderID)
		if err := w.notifier.SendText(ctx, updated.CustomerPhone, text); err != nil {
			w.logger.Warn("payment receipt message failed",
				zap.String("payment_id", updated.ID), zap.Error(err))
		}
	}

	return updated, nil
}

// Reject marks a pending WhatsApp payment failed, recording the reason.
func (w *Workflow) Reject(ctx context.Context, paymentID string, admin models.AdminContext, reason string) (*models.Payment, error) {
	payment, err := w.precheck(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	updated, err := w.ledger.Transition(ctx, payment.ID, models.StatusPending, models.StatusFailed, ledger.Evidence{
		Source:  models.SourceAdmin,
		AdminID: admin.AdminID,
		Raw:     reason,
	})
	if err != nil {
		return nil, err
	}

	w.logger.Info("manual payment rejected",
		zap.String("payment_id", updated.ID),
		zap.String("admin_id", admin.AdminID),
		zap.String("reason", reason))

	return updated, nil
}

func (w *Workflow) precheck(ctx context.Context, paymentID string) (*models.Payment, error) {
	payment, err := w.payments.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Gateway != models.GatewayWhatsApp {
		return nil, fmt.Errorf("payment %s uses gateway %s, manual confirmation only applies to whatsapp", payment.ID, payment.Gateway)
	}
	if payment.Status != models.StatusPending {
		return nil, fmt.Errorf("payment %s is %s, only pending payments can be manually resolved", payment.ID, payment.Status)
	}
	return payment, nil
}
