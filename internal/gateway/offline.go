package gateway

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"freshmart/internal/models"
)

// OfflineGateway covers rails where money moves outside any API: direct
// bank transfer and cash on delivery. Initiate records the charge and hands
// the customer settlement instructions; there is nothing to verify or
// refund programmatically.
type OfflineGateway struct {
	kind        models.Gateway // bank_transfer or cod
	bankDetails string
}

func NewOfflineGateway(kind models.Gateway, bankDetails string) *OfflineGateway {
	return &OfflineGateway{kind: kind, bankDetails: bankDetails}
}

func (o *OfflineGateway) Name() models.Gateway {
	return o.kind
}

func (o *OfflineGateway) SupportsRefund() bool {
	return false
}

func (o *OfflineGateway) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResult, error) {
	var instructions string
	switch o.kind {
	case models.GatewayBankTransfer:
		instructions = fmt.Sprintf(
			"Transfer %s %s to %s and quote reference %s. Your order ships once the transfer is confirmed.",
			req.Currency, req.Amount.StringFixed(2), o.bankDetails, req.Reference,
		)
	default:
		instructions = fmt.Sprintf(
			"Pay %s %s in cash on delivery. Reference %s.",
			req.Currency, req.Amount.StringFixed(2), req.Reference,
		)
	}

	return &InitiateResult{
		Reference:    req.Reference,
		Instructions: instructions,
	}, nil
}

func (o *OfflineGateway) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	return &VerifyResult{
		Status:  models.StatusPending,
		Message: "settlement is confirmed by an administrator",
	}, nil
}

func (o *OfflineGateway) Refund(ctx context.Context, reference string, amount decimal.Decimal, reason string) (*RefundResult, error) {
	return nil, ErrRefundUnsupported
}
