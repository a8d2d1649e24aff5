package models

import "time"

// EventSource identifies which path drove a ledger transition.
type EventSource string

const (
	SourceWebhook       EventSource = "webhook"
	SourceAdmin         EventSource = "admin"
	SourceCron          EventSource = "cron"
	SourceGatewayVerify EventSource = "gateway_verify"
)

// PaymentEvent maps to the `payment_events` table. The ledger writes exactly
// one row per applied transition, in the same transaction as the status
// update, carrying the evidence (raw gateway payload or admin note) that
// justified it.
type PaymentEvent struct {
	ID         uint          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	PaymentID  string        `gorm:"column:payment_id;size:64;index" json:"payment_id"`
	FromStatus PaymentStatus `gorm:"column:from_status;size:20" json:"from_status"`
	ToStatus   PaymentStatus `gorm:"column:to_status;size:20" json:"to_status"`
	Source     EventSource   `gorm:"column:source;size:30" json:"source"`
	AdminID    string        `gorm:"column:admin_id;size:100" json:"admin_id"`
	Evidence   string        `gorm:"column:evidence;type:text" json:"evidence"`
	CreatedAt  time.Time     `gorm:"column:created_at" json:"created_at"`
}

func (PaymentEvent) TableName() string {
	return "payment_events"
}
