// Package gateway normalizes heterogeneous payment rails behind one
// capability interface. Hosted providers (Paystack, Flutterwave) speak HTTP;
// the WhatsApp channel is a human conversation; offline channels (bank
// transfer, cash on delivery) only record intent. All of them produce the
// same result shapes so the rest of the core never branches on provider
// wire formats.
package gateway

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"

	"freshmart/internal/models"
)

// InitiateRequest carries everything a gateway needs to open a charge.
type InitiateRequest struct {
	OrderID     string
	Reference   string // caller-assigned reference, unique per gateway
	Amount      decimal.Decimal
	Currency    string
	Email       string
	Phone       string
	CallbackURL string
}

// InitiateResult is the normalized outcome of opening a charge session.
type InitiateResult struct {
	Reference    string
	PaymentURL   string // hosted redirect; empty for manual and offline rails
	Instructions string // human-readable next step for manual and offline rails
	Raw          json.RawMessage
}

// VerifyResult is the normalized outcome of a transaction lookup.
type VerifyResult struct {
	Status       models.PaymentStatus
	Amount       decimal.Decimal
	Fee          decimal.Decimal
	ProviderTxID string
	AuthCode     string
	Raw          json.RawMessage
	Message      string
}

// RefundResult is the normalized outcome of a reversal call.
type RefundResult struct {
	Success         bool
	GatewayRefundID string
	Raw             json.RawMessage
	Message         string
}

// Gateway is the capability interface every rail implements.
type Gateway interface {
	// Name returns the gateway identifier.
	Name() models.Gateway

	// SupportsRefund reports whether the rail has a programmatic reversal.
	SupportsRefund() bool

	// Initiate opens a new charge and returns the redirect or instructions.
	Initiate(ctx context.Context, req InitiateRequest) (*InitiateResult, error)

	// Verify looks up the charge identified by reference.
	Verify(ctx context.Context, reference string) (*VerifyResult, error)

	// Refund reverses amount of the charge identified by reference.
	Refund(ctx context.Context, reference string, amount decimal.Decimal, reason string) (*RefundResult, error)
}
