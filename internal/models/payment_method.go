package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod maps to the `payment_methods` table. Configuration rows,
// seeded at deployment and edited only by administrators through the
// registry; never deleted while referenced by a Payment.
type PaymentMethod struct {
	ID          uint            `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Gateway     Gateway         `gorm:"column:gateway;size:50;uniqueIndex" json:"gateway"`
	DisplayName string          `gorm:"column:display_name;size:200" json:"display_name"`
	IsActive    bool            `gorm:"column:is_active" json:"is_active"`
	MinAmount   decimal.Decimal `gorm:"column:min_amount;type:decimal(15,2)" json:"min_amount"`
	MaxAmount   decimal.Decimal `gorm:"column:max_amount;type:decimal(15,2)" json:"max_amount"`
	FeeType     FeeType         `gorm:"column:fee_type;size:20" json:"fee_type"`
	FeeValue    decimal.Decimal `gorm:"column:fee_value;type:decimal(15,2)" json:"fee_value"`
	SortOrder   int             `gorm:"column:sort_order" json:"sort_order"`
	CreatedAt   time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (PaymentMethod) TableName() string {
	return "payment_methods"
}
