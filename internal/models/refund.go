package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RefundStatus is the outcome of a single reversal attempt.
type RefundStatus string

const (
	RefundCompleted RefundStatus = "completed"
	RefundFailed    RefundStatus = "failed"
)

// Refund maps to the `refunds` table. One row per reversal attempt against a
// Payment, failed attempts included; rows are immutable after creation.
type Refund struct {
	ID              uint            `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	PaymentID       string          `gorm:"column:payment_id;size:64;index" json:"payment_id"`
	RefundAmount    decimal.Decimal `gorm:"column:refund_amount;type:decimal(15,2)" json:"refund_amount"`
	RefundReason    string          `gorm:"column:refund_reason;size:500" json:"refund_reason"`
	GatewayRefundID string          `gorm:"column:gateway_refund_id;size:100" json:"gateway_refund_id"`
	GatewayResponse string          `gorm:"column:gateway_response;type:text" json:"gateway_response"`
	Status          RefundStatus    `gorm:"column:status;size:20" json:"status"`
	CreatedBy       string          `gorm:"column:created_by;size:100" json:"created_by"`
	CreatedAt       time.Time       `gorm:"column:created_at" json:"created_at"`
}

func (Refund) TableName() string {
	return "refunds"
}
