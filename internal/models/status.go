package models

// PaymentStatus is the lifecycle state of a Payment. The ledger is the only
// writer; everything else treats it as read-only.
type PaymentStatus string

const (
	StatusPending    PaymentStatus = "pending"
	StatusProcessing PaymentStatus = "processing"
	StatusCompleted  PaymentStatus = "completed"
	StatusFailed     PaymentStatus = "failed"
	StatusCancelled  PaymentStatus = "cancelled"
	StatusRefunded   PaymentStatus = "refunded"
)

// IsTerminal reports whether no further transition is allowed.
func (s PaymentStatus) IsTerminal() bool {
	return s == StatusFailed || s == StatusCancelled || s == StatusRefunded
}

// CanTransitionTo reports whether the transition graph permits s -> target.
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	switch s {
	case StatusPending:
		return target == StatusProcessing || target == StatusCompleted ||
			target == StatusFailed || target == StatusCancelled
	case StatusProcessing:
		return target == StatusCompleted || target == StatusFailed || target == StatusCancelled
	case StatusCompleted:
		return target == StatusRefunded
	default:
		return false
	}
}

// Gateway identifies a payment rail.
type Gateway string

const (
	GatewayPaystack     Gateway = "paystack"
	GatewayFlutterwave  Gateway = "flutterwave"
	GatewayWhatsApp     Gateway = "whatsapp"
	GatewayBankTransfer Gateway = "bank_transfer"
	GatewayCOD          Gateway = "cod"
)

// Valid reports whether g is a known gateway.
func (g Gateway) Valid() bool {
	switch g {
	case GatewayPaystack, GatewayFlutterwave, GatewayWhatsApp, GatewayBankTransfer, GatewayCOD:
		return true
	}
	return false
}

// IsHosted reports whether the gateway is an external hosted provider with a
// programmatic verify/refund surface.
func (g Gateway) IsHosted() bool {
	return g == GatewayPaystack || g == GatewayFlutterwave
}

// FeeType selects how a method's fee is computed.
type FeeType string

const (
	FeePercentage FeeType = "percentage"
	FeeFixed      FeeType = "fixed"
)
