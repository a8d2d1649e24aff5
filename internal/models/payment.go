package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment maps to the `payments` table. One row per attempted charge; rows
// are financial records and are never hard-deleted.
type Payment struct {
	ID                string          `gorm:"column:id;primaryKey;size:64" json:"id"`
	OrderID           string          `gorm:"column:order_id;size:64;index" json:"order_id"`
	Gateway           Gateway         `gorm:"column:gateway;size:50;uniqueIndex:idx_gateway_reference" json:"gateway"`
	GatewayReference  string          `gorm:"column:gateway_reference;size:100;uniqueIndex:idx_gateway_reference" json:"gateway_reference"`
	Amount            decimal.Decimal `gorm:"column:amount;type:decimal(15,2)" json:"amount"`
	Currency          string          `gorm:"column:currency;size:10" json:"currency"`
	TransactionFee    decimal.Decimal `gorm:"column:transaction_fee;type:decimal(15,2)" json:"transaction_fee"`
	NetAmount         decimal.Decimal `gorm:"column:net_amount;type:decimal(15,2)" json:"net_amount"`
	Status            PaymentStatus   `gorm:"column:status;size:20;index" json:"status"`
	CustomerEmail     string          `gorm:"column:customer_email;size:200" json:"customer_email"`
	CustomerPhone     string          `gorm:"column:customer_phone;size:50" json:"customer_phone"`
	PaymentMethod     string          `gorm:"column:payment_method;size:100" json:"payment_method"`
	IPAddress         string          `gorm:"column:ip_address;size:64" json:"ip_address"`
	UserAgent         string          `gorm:"column:user_agent;size:500" json:"user_agent"`
	WebhookVerified   bool            `gorm:"column:webhook_verified" json:"webhook_verified"`
	GatewayResponse   string          `gorm:"column:gateway_response;type:text" json:"gateway_response"`
	AuthorizationCode string          `gorm:"column:authorization_code;size:200" json:"authorization_code"`
	CreatedAt         time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"column:updated_at" json:"updated_at"`
	VerifiedAt        *time.Time      `gorm:"column:verified_at" json:"verified_at"`
	ExpiresAt         *time.Time      `gorm:"column:expires_at;index" json:"expires_at"`
}

func (Payment) TableName() string {
	return "payments"
}
