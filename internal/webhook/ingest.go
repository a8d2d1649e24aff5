// Package webhook turns asynchronous gateway notifications into ledger
// transitions. Payloads are authenticated before anything else, matched
// to a payment by (gateway, reference), and applied through the ledger's
// conditional write so redelivered notifications settle as no-ops.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"freshmart/internal/gateway"
	"freshmart/internal/ledger"
	"freshmart/internal/models"
)

// Event is a provider notification reduced to the fields ingestion needs.
type Event struct {
	Gateway     models.Gateway
	EventID     string
	Reference   string
	Status      models.PaymentStatus
	KnownStatus bool
	Amount      decimal.Decimal
	Fee         decimal.Decimal // provider-reported fee; zero when the payload omits it
	AuthCode    string
	Raw         []byte
}

type paymentStore interface {
	FindByReference(ctx context.Context, gw models.Gateway, reference string) (*models.Payment, error)
}

type transitioner interface {
	Transition(ctx context.Context, id string, fromExpected, target models.PaymentStatus, ev ledger.Evidence) (*models.Payment, error)
}

// Service authenticates and applies gateway webhooks.
type Service struct {
	payments          paymentStore
	ledger            transitioner
	deduper           EventDeduper
	paystackSecret    string
	flutterwaveSecret string
	logger            *zap.Logger
}

func NewService(payments paymentStore, lg transitioner, deduper EventDeduper, paystackSecret, flutterwaveSecretHash string, logger *zap.Logger) *Service {
	return &Service{
		payments:          payments,
		ledger:            lg,
		deduper:           deduper,
		paystackSecret:    paystackSecret,
		flutterwaveSecret: flutterwaveSecretHash,
		logger:            logger,
	}
}

// ProcessPaystack authenticates and applies a Paystack webhook payload.
func (s *Service) ProcessPaystack(ctx context.Context, body []byte, signature string) error {
	if !VerifyPaystackSignature(s.paystackSecret, body, signature) {
		return ErrInvalidSignature
	}
	ev, err := ParsePaystackEvent(body)
	if err != nil {
		return err
	}
	if s.alreadySeen(ctx, "paystack:"+ev.EventID) {
		return ErrDuplicateDelivery
	}
	return s.apply(ctx, ev)
}

// ProcessFlutterwave authenticates and applies a Flutterwave webhook payload.
func (s *Service) ProcessFlutterwave(ctx context.Context, body []byte, signature string) error {
	if !VerifyFlutterwaveSignature(s.flutterwaveSecret, signature) {
		return ErrInvalidSignature
	}
	ev, err := ParseFlutterwaveEvent(body)
	if err != nil {
		return err
	}
	if s.alreadySeen(ctx, "flutterwave:"+ev.EventID) {
		return ErrDuplicateDelivery
	}
	return s.apply(ctx, ev)
}

// alreadySeen consults the deduper. It runs only after the signature
// passed; a forged body must never consume a delivery's dedup slot. On
// deduper failure ingestion continues, the ledger guard is the real
// idempotence.
func (s *Service) alreadySeen(ctx context.Context, key string) bool {
	if s.deduper == nil {
		return false
	}
	dup, err := s.deduper.Seen(ctx, key)
	if err != nil {
		s.logger.Warn("webhook dedup unavailable, continuing", zap.Error(err))
		return false
	}
	return dup
}

// apply looks up the payment and moves it through the ledger. Unknown
// references, unknown provider statuses, and lost races are all logged
// and swallowed so providers stop redelivering.
func (s *Service) apply(ctx context.Context, ev *Event) error {
	log := s.logger.With(
		zap.String("gateway", string(ev.Gateway)),
		zap.String("reference", ev.Reference),
		zap.String("event_id", ev.EventID))

	if !ev.KnownStatus {
		log.Warn("webhook carried unrecognized provider status, ignoring")
		return nil
	}

	payment, err := s.payments.FindByReference(ctx, ev.Gateway, ev.Reference)
	if err != nil {
		log.Warn("webhook for unknown reference, discarding", zap.Error(err))
		return nil
	}

	if payment.Status == ev.Status {
		log.Info("webhook redelivery for already-applied status, no-op",
			zap.String("status", string(payment.Status)))
		return nil
	}
	if payment.Status.IsTerminal() {
		log.Warn("webhook arrived after payment reached terminal state",
			zap.String("current", string(payment.Status)),
			zap.String("incoming", string(ev.Status)))
		return nil
	}

	if ev.Status == models.StatusCompleted {
		if !ev.Amount.Equal(payment.Amount) {
			log.Error("webhook amount does not match the recorded charge",
				zap.String("payment_id", payment.ID),
				zap.String("recorded", payment.Amount.String()),
				zap.String("reported", ev.Amount.String()))
		}
		if !ev.Fee.IsZero() && !ev.Fee.Equal(payment.TransactionFee) {
			log.Error("webhook fee does not match the computed fee",
				zap.String("payment_id", payment.ID),
				zap.String("computed", payment.TransactionFee.String()),
				zap.String("reported", ev.Fee.String()))
		}
	}

	_, err = s.ledger.Transition(ctx, payment.ID, payment.Status, ev.Status, ledger.Evidence{
		Source:   models.SourceWebhook,
		Raw:      string(ev.Raw),
		AuthCode: ev.AuthCode,
	})
	if errors.Is(err, ledger.ErrConflict) {
		log.Info("webhook lost a transition race, treating as applied")
		return nil
	}
	return err
}

type paystackEventPayload struct {
	Event string `json:"event"`
	Data  struct {
		ID            int64  `json:"id"`
		Reference     string `json:"reference"`
		Status        string `json:"status"`
		Amount        int64  `json:"amount"`
		Fees          int64  `json:"fees"`
		Authorization struct {
			AuthorizationCode string `json:"authorization_code"`
		} `json:"authorization"`
	} `json:"data"`
}

// ParsePaystackEvent extracts the reference, status, and kobo amount and
// fee from a Paystack webhook body.
func ParsePaystackEvent(body []byte) (*Event, error) {
	var p paystackEventPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("paystack webhook payload: %w", err)
	}
	if p.Data.Reference == "" {
		return nil, fmt.Errorf("paystack webhook payload missing reference")
	}
	status, known := gateway.MapPaystackStatus(p.Data.Status)
	return &Event{
		Gateway:     models.GatewayPaystack,
		EventID:     fmt.Sprintf("%s:%d", p.Event, p.Data.ID),
		Reference:   p.Data.Reference,
		Status:      status,
		KnownStatus: known,
		Amount:      decimal.NewFromInt(p.Data.Amount).Div(decimal.NewFromInt(100)),
		Fee:         decimal.NewFromInt(p.Data.Fees).Div(decimal.NewFromInt(100)),
		AuthCode:    p.Data.Authorization.AuthorizationCode,
		Raw:         body,
	}, nil
}

type flutterwaveEventPayload struct {
	Event string `json:"event"`
	Data  struct {
		ID     int64           `json:"id"`
		TxRef  string          `json:"tx_ref"`
		Status string          `json:"status"`
		Amount decimal.Decimal `json:"amount"`
		AppFee decimal.Decimal `json:"app_fee"`
	} `json:"data"`
}

// ParseFlutterwaveEvent extracts the reference, status, and amount from
// a Flutterwave webhook body. Amounts arrive in major units.
func ParseFlutterwaveEvent(body []byte) (*Event, error) {
	var p flutterwaveEventPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("flutterwave webhook payload: %w", err)
	}
	if p.Data.TxRef == "" {
		return nil, fmt.Errorf("flutterwave webhook payload missing tx_ref")
	}
	status, known := gateway.MapFlutterwaveStatus(p.Data.Status)
	return &Event{
		Gateway:     models.GatewayFlutterwave,
		EventID:     fmt.Sprintf("%s:%d", p.Event, p.Data.ID),
		Reference:   p.Data.TxRef,
		Status:      status,
		KnownStatus: known,
		Amount:      p.Data.Amount,
		Fee:         p.Data.AppFee,
		Raw:         body,
	}, nil
}
