package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"freshmart/internal/models"
)

// PaymentRepository handles payment read paths and row creation. Status
// mutation is owned by the ledger, never by this repository.
type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create inserts a new payment row.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// FindByID returns a payment by id.
func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// FindByReference returns a payment by its gateway-scoped reference.
func (r *PaymentRepository) FindByReference(ctx context.Context, gateway models.Gateway, reference string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("gateway = ? AND gateway_reference = ?", gateway, reference).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// ListFilter narrows the admin listing and export queries.
type ListFilter struct {
	Status  models.PaymentStatus
	Gateway models.Gateway
	From    *time.Time
	To      *time.Time
	Query   string // matches order id, reference or customer email
	Limit   int
	Page    int
}

// FindAll returns payments matching the filter, newest first, with the
// total count for pagination.
func (r *PaymentRepository) FindAll(ctx context.Context, f ListFilter) ([]models.Payment, int64, error) {
	var payments []models.Payment
	var total int64

	db := r.filtered(ctx, f)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	if err := db.Limit(limit).Offset(offset).Order("created_at DESC").Find(&payments).Error; err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

// FindAllForExport returns every payment matching the filter in a stable
// order. The export consumer depends on deterministic row ordering.
func (r *PaymentRepository) FindAllForExport(ctx context.Context, f ListFilter) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.filtered(ctx, f).Order("created_at ASC, id ASC").Find(&payments).Error
	return payments, err
}

// FindExpiredPending returns pending payments whose expiry has passed.
func (r *PaymentRepository) FindExpiredPending(ctx context.Context, now time.Time, limit int) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", models.StatusPending, now).
		Limit(limit).
		Find(&payments).Error
	return payments, err
}

// FindStalePending returns pending hosted-gateway payments created before
// the cutoff, for webhook-loss reconciliation.
func (r *PaymentRepository) FindStalePending(ctx context.Context, cutoff time.Time, limit int) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("status = ? AND gateway IN ? AND created_at < ?",
			models.StatusPending,
			[]models.Gateway{models.GatewayPaystack, models.GatewayFlutterwave},
			cutoff).
		Limit(limit).
		Find(&payments).Error
	return payments, err
}

func (r *PaymentRepository) filtered(ctx context.Context, f ListFilter) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&models.Payment{})

	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.Gateway != "" {
		db = db.Where("gateway = ?", f.Gateway)
	}
	if f.From != nil {
		db = db.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		db = db.Where("created_at <= ?", *f.To)
	}
	if f.Query != "" {
		search := "%" + f.Query + "%"
		db = db.Where("order_id LIKE ? OR gateway_reference LIKE ? OR customer_email LIKE ?",
			search, search, search)
	}
	return db
}
