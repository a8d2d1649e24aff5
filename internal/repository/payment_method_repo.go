package repository

import (
	"context"

	"gorm.io/gorm"

	"freshmart/internal/models"
)

// PaymentMethodRepository handles payment method configuration rows.
type PaymentMethodRepository struct {
	db *gorm.DB
}

func NewPaymentMethodRepository(db *gorm.DB) *PaymentMethodRepository {
	return &PaymentMethodRepository{db: db}
}

// FindByGateway returns the configuration row for a gateway.
func (r *PaymentMethodRepository) FindByGateway(ctx context.Context, gateway models.Gateway) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	if err := r.db.WithContext(ctx).Where("gateway = ?", gateway).First(&method).Error; err != nil {
		return nil, err
	}
	return &method, nil
}

// FindAll returns every configured method ordered for display.
func (r *PaymentMethodRepository) FindAll(ctx context.Context) ([]models.PaymentMethod, error) {
	var methods []models.PaymentMethod
	err := r.db.WithContext(ctx).Order("sort_order ASC, id ASC").Find(&methods).Error
	return methods, err
}

// FindActive returns active methods ordered for display.
func (r *PaymentMethodRepository) FindActive(ctx context.Context) ([]models.PaymentMethod, error) {
	var methods []models.PaymentMethod
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_order ASC, id ASC").
		Find(&methods).Error
	return methods, err
}

// UpdateAll replaces the mutable fields of every given method in a single
// transaction. A partial write would leave fee computation inconsistent
// with the displayed method list, so it is all-or-nothing.
func (r *PaymentMethodRepository) UpdateAll(ctx context.Context, methods []models.PaymentMethod) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range methods {
			m := &methods[i]
			result := tx.Model(&models.PaymentMethod{}).
				Where("gateway = ?", m.Gateway).
				Updates(map[string]interface{}{
					"display_name": m.DisplayName,
					"is_active":    m.IsActive,
					"min_amount":   m.MinAmount,
					"max_amount":   m.MaxAmount,
					"fee_type":     m.FeeType,
					"fee_value":    m.FeeValue,
					"sort_order":   m.SortOrder,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		return nil
	})
}
