package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"freshmart/internal/models"
)

// RefundRepository handles refund rows. Rows are append-only: a correction
// is a new row, never an update.
type RefundRepository struct {
	db *gorm.DB
}

func NewRefundRepository(db *gorm.DB) *RefundRepository {
	return &RefundRepository{db: db}
}

// Create inserts a refund attempt row.
func (r *RefundRepository) Create(ctx context.Context, refund *models.Refund) error {
	return r.db.WithContext(ctx).Create(refund).Error
}

// FindByPaymentID returns every refund attempt against a payment.
func (r *RefundRepository) FindByPaymentID(ctx context.Context, paymentID string) ([]models.Refund, error) {
	var refunds []models.Refund
	err := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		Order("created_at ASC").
		Find(&refunds).Error
	return refunds, err
}

// SumCompleted returns the cumulative amount refunded for a payment,
// counting only completed attempts.
func (r *RefundRepository) SumCompleted(ctx context.Context, paymentID string) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&models.Refund{}).
		Where("payment_id = ? AND status = ?", paymentID, models.RefundCompleted).
		Select("COALESCE(SUM(refund_amount), 0)").
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}
