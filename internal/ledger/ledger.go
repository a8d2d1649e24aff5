// Package ledger owns the Payment state machine. Every status change in the
// system funnels through Transition's conditional write; whichever caller
// loses a race observes ErrConflict and must treat the transition as already
// handled rather than retry it.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"freshmart/internal/models"
)

var (
	// ErrConflict means the persisted status no longer matched the expected
	// prior state at write time. Benign under webhook re-delivery and races.
	ErrConflict = errors.New("payment status changed since it was read")

	// ErrNotFound means no payment row exists for the id.
	ErrNotFound = errors.New("payment not found")
)

// Evidence is persisted alongside every applied transition for audit.
type Evidence struct {
	Source   models.EventSource
	AdminID  string
	Raw      string // raw gateway payload or admin note
	AuthCode string // tokenized authorization, when the gateway returned one
}

// Ledger is the single writer of Payment.Status.
type Ledger struct {
	db     *gorm.DB
	logger *zap.Logger
}

func New(db *gorm.DB, logger *zap.Logger) *Ledger {
	return &Ledger{db: db, logger: logger}
}

// CreatePending inserts a new payment in its initial state.
func (l *Ledger) CreatePending(ctx context.Context, payment *models.Payment) error {
	payment.Status = models.StatusPending
	return l.db.WithContext(ctx).Create(payment).Error
}

// Transition moves a payment from fromExpected to target under an optimistic
// concurrency guard: the write only applies if the persisted status still
// equals fromExpected. Zero affected rows means someone else won the race
// (ErrConflict) or the row does not exist (ErrNotFound). An audit event
// carrying the evidence is written in the same transaction as each applied
// change.
func (l *Ledger) Transition(ctx context.Context, id string, fromExpected, target models.PaymentStatus, ev Evidence) (*models.Payment, error) {
	if !fromExpected.CanTransitionTo(target) {
		return nil, fmt.Errorf("transition %s -> %s is not permitted", fromExpected, target)
	}

	var payment models.Payment
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		updates := map[string]interface{}{
			"status":     target,
			"updated_at": now,
		}
		if target == models.StatusCompleted {
			updates["verified_at"] = now
			if ev.Source == models.SourceWebhook || ev.Source == models.SourceGatewayVerify {
				updates["webhook_verified"] = true
			}
		}
		if ev.Raw != "" {
			updates["gateway_response"] = ev.Raw
		}
		if ev.AuthCode != "" {
			updates["authorization_code"] = ev.AuthCode
		}

		result := tx.Model(&models.Payment{}).
			Where("id = ? AND status = ?", id, fromExpected).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.Payment{}).Where("id = ?", id).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrNotFound
			}
			return ErrConflict
		}

		event := &models.PaymentEvent{
			PaymentID:  id,
			FromStatus: fromExpected,
			ToStatus:   target,
			Source:     ev.Source,
			AdminID:    ev.AdminID,
			Evidence:   ev.Raw,
			CreatedAt:  now,
		}
		if err := tx.Create(event).Error; err != nil {
			return err
		}

		return tx.Where("id = ?", id).First(&payment).Error
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			l.logger.Info("ledger transition lost race",
				zap.String("payment_id", id),
				zap.String("from", string(fromExpected)),
				zap.String("to", string(target)),
				zap.String("source", string(ev.Source)))
		}
		return nil, err
	}

	l.logger.Info("payment transitioned",
		zap.String("payment_id", id),
		zap.String("from", string(fromExpected)),
		zap.String("to", string(target)),
		zap.String("source", string(ev.Source)))
	return &payment, nil
}
