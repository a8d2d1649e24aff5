// Package checkout opens new charges. It validates the request against
// the method registry, records the pending payment, and hands the
// customer off to the gateway's redirect or instruction flow.
package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"freshmart/internal/gateway"
	"freshmart/internal/ledger"
	"freshmart/internal/models"
	"freshmart/internal/registry"
)

type methodRegistry interface {
	Validate(ctx context.Context, gw models.Gateway, amount decimal.Decimal) (*registry.Quote, error)
}

type gatewayResolver interface {
	Get(g models.Gateway) (gateway.Gateway, error)
}

type paymentLedger interface {
	CreatePending(ctx context.Context, payment *models.Payment) error
	Transition(ctx context.Context, id string, fromExpected, target models.PaymentStatus, ev ledger.Evidence) (*models.Payment, error)
}

// Request is a charge attempt from the order flow.
type Request struct {
	OrderID   string          `json:"order_id"`
	Gateway   models.Gateway  `json:"gateway"`
	Amount    decimal.Decimal `json:"amount"`
	Email     string          `json:"email"`
	Phone     string          `json:"phone"`
	IPAddress string          `json:"-"`
	UserAgent string          `json:"-"`
}

// Response is what the order flow needs to move the customer forward.
type Response struct {
	Payment      *models.Payment `json:"payment"`
	PaymentURL   string          `json:"payment_url,omitempty"`
	Instructions string          `json:"instructions,omitempty"`
}

// Service creates pending payments and opens gateway charge sessions.
type Service struct {
	registry      methodRegistry
	gateways      gatewayResolver
	ledger        paymentLedger
	currency      string
	callbackBase  string
	pendingExpiry time.Duration
	logger        *zap.Logger
}

func NewService(reg methodRegistry, gateways gatewayResolver, lg paymentLedger, currency, callbackBase string, pendingExpiry time.Duration, logger *zap.Logger) *Service {
	return &Service{
		registry:      reg,
		gateways:      gateways,
		ledger:        lg,
		currency:      currency,
		callbackBase:  callbackBase,
		pendingExpiry: pendingExpiry,
		logger:        logger,
	}
}

// Initiate validates the charge, records it as pending, and opens the
// gateway session. Fee and bounds come from the method configuration in
// force right now; they are frozen onto the payment row and never
// recomputed at settlement time.
func (s *Service) Initiate(ctx context.Context, req Request) (*Response, error) {
	if req.OrderID == "" {
		return nil, &registry.ValidationError{Message: "order_id is required"}
	}

	quote, err := s.registry.Validate(ctx, req.Gateway, req.Amount)
	if err != nil {
		return nil, err
	}

	gw, err := s.gateways.Get(req.Gateway)
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(s.pendingExpiry)
	payment := &models.Payment{
		ID:               uuid.New().String(),
		OrderID:          req.OrderID,
		Gateway:          req.Gateway,
		GatewayReference: gateway.NewReference(req.Gateway),
		Amount:           req.Amount,
		Currency:         s.currency,
		TransactionFee:   quote.Fee,
		NetAmount:        quote.NetAmount,
		CustomerEmail:    req.Email,
		CustomerPhone:    req.Phone,
		PaymentMethod:    quote.Method.DisplayName,
		IPAddress:        req.IPAddress,
		UserAgent:        req.UserAgent,
		ExpiresAt:        &expiresAt,
	}

	// row exists before the gateway call so a fast webhook always finds it
	if err := s.ledger.CreatePending(ctx, payment); err != nil {
		return nil, fmt.Errorf("record pending payment: %w", err)
	}

	res, err := gw.Initiate(ctx, gateway.InitiateRequest{
		OrderID:     req.OrderID,
		Reference:   payment.GatewayReference,
		Amount:      req.Amount,
		Currency:    s.currency,
		Email:       req.Email,
		Phone:       req.Phone,
		CallbackURL: s.callbackBase + "/payment/callback",
	})
	if err != nil {
		s.logger.Warn("gateway initiate failed, cancelling payment",
			zap.String("payment_id", payment.ID),
			zap.String("gateway", string(req.Gateway)),
			zap.Error(err))
		if _, terr := s.ledger.Transition(ctx, payment.ID, models.StatusPending, models.StatusCancelled, ledger.Evidence{
			Source: models.SourceGatewayVerify,
			Raw:    err.Error(),
		}); terr != nil {
			s.logger.Error("stranded pending payment after failed initiate",
				zap.String("payment_id", payment.ID), zap.Error(terr))
		}
		return nil, err
	}

	s.logger.Info("payment initiated",
		zap.String("payment_id", payment.ID),
		zap.String("order_id", req.OrderID),
		zap.String("gateway", string(req.Gateway)),
		zap.String("reference", payment.GatewayReference),
		zap.String("amount", req.Amount.StringFixed(2)))

	return &Response{
		Payment:      payment,
		PaymentURL:   res.PaymentURL,
		Instructions: res.Instructions,
	}, nil
}
