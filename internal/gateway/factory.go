package gateway

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"go.uber.org/zap"

	"freshmart/internal/config"
	"freshmart/internal/models"
)

// Registry holds one constructed adapter per configured rail.
type Registry struct {
	gateways map[models.Gateway]Gateway
}

// NewRegistry builds every adapter the deployment configures. Hosted
// gateways without credentials are left out rather than constructed broken.
func NewRegistry(cfg *config.PaymentConfig, notifier Notifier, logger *zap.Logger) *Registry {
	r := &Registry{gateways: make(map[models.Gateway]Gateway)}

	if cfg.Paystack.SecretKey != "" {
		r.gateways[models.GatewayPaystack] = NewPaystackGateway(cfg.Paystack.SecretKey)
	}
	if cfg.Flutterwave.SecretKey != "" {
		r.gateways[models.GatewayFlutterwave] = NewFlutterwaveGateway(cfg.Flutterwave.SecretKey)
	}
	r.gateways[models.GatewayWhatsApp] = NewManualGateway(notifier, logger)
	r.gateways[models.GatewayBankTransfer] = NewOfflineGateway(models.GatewayBankTransfer, "the FreshMart settlement account")
	r.gateways[models.GatewayCOD] = NewOfflineGateway(models.GatewayCOD, "")

	return r
}

// Get returns the adapter for a rail.
func (r *Registry) Get(g models.Gateway) (Gateway, error) {
	gw, ok := r.gateways[g]
	if !ok {
		return nil, fmt.Errorf("gateway %q is not configured", g)
	}
	return gw, nil
}

// NewReference generates a charge reference unique within a gateway.
func NewReference(g models.Gateway) string {
	prefix := "PAY"
	switch g {
	case models.GatewayWhatsApp:
		prefix = "WA"
	case models.GatewayBankTransfer:
		prefix = "BT"
	case models.GatewayCOD:
		prefix = "COD"
	case models.GatewayFlutterwave:
		prefix = "FLW"
	}
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), hex.EncodeToString(b))
}
