// Package registry validates requested charges against per-method
// configuration: active flag, amount bounds and fee rule. Configuration is
// read-mostly, so lookups go through a short-lived cache; the cache is only
// ever consulted at initiate time, never during settlement, because a fee
// must reflect the configuration at charge time.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"freshmart/internal/fee"
	"freshmart/internal/models"
)

// ValidationError rejects a charge before any gateway call. Never retried.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// StoreError means method configuration could not be loaded. An
// infrastructure failure, not a caller mistake.
type StoreError struct {
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("payment method store: %v", e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// MethodStore is the configuration persistence the registry needs.
type MethodStore interface {
	FindByGateway(ctx context.Context, gateway models.Gateway) (*models.PaymentMethod, error)
	FindActive(ctx context.Context) ([]models.PaymentMethod, error)
	FindAll(ctx context.Context) ([]models.PaymentMethod, error)
	UpdateAll(ctx context.Context, methods []models.PaymentMethod) error
}

// Quote is the registry's answer to a valid charge request.
type Quote struct {
	Method    *models.PaymentMethod
	Fee       decimal.Decimal
	NetAmount decimal.Decimal
}

type cachedMethod struct {
	method  models.PaymentMethod
	expires time.Time
}

// Registry holds method configuration access plus the fee calculator.
type Registry struct {
	store    MethodStore
	cacheTTL time.Duration

	mu    sync.Mutex
	cache map[models.Gateway]cachedMethod
}

func New(store MethodStore, cacheTTL time.Duration) *Registry {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &Registry{
		store:    store,
		cacheTTL: cacheTTL,
		cache:    make(map[models.Gateway]cachedMethod),
	}
}

// Validate checks a requested charge against the gateway's configuration
// and returns the fee quote. Pure read: no state is modified.
func (r *Registry) Validate(ctx context.Context, gateway models.Gateway, amount decimal.Decimal) (*Quote, error) {
	if !gateway.Valid() {
		return nil, validationErrorf("unknown payment method %q", gateway)
	}
	if !amount.IsPositive() {
		return nil, validationErrorf("amount must be greater than zero")
	}

	method, err := r.lookup(ctx, gateway)
	if err != nil {
		return nil, err
	}

	if !method.IsActive {
		return nil, validationErrorf("payment method %s is not available", method.DisplayName)
	}
	if amount.LessThan(method.MinAmount) {
		return nil, validationErrorf("amount %s is below the minimum of %s for %s",
			amount.StringFixed(2), method.MinAmount.StringFixed(2), method.DisplayName)
	}
	if amount.GreaterThan(method.MaxAmount) {
		return nil, validationErrorf("amount %s exceeds the maximum of %s for %s",
			amount.StringFixed(2), method.MaxAmount.StringFixed(2), method.DisplayName)
	}

	f, net, err := fee.Net(amount, method.FeeType, method.FeeValue)
	if err != nil {
		return nil, fmt.Errorf("fee computation: %w", err)
	}

	return &Quote{Method: method, Fee: f, NetAmount: net}, nil
}

// ActiveMethods lists the methods a checkout may offer, in display order.
func (r *Registry) ActiveMethods(ctx context.Context) ([]models.PaymentMethod, error) {
	return r.store.FindActive(ctx)
}

// AllMethods lists every configured method, in display order.
func (r *Registry) AllMethods(ctx context.Context) ([]models.PaymentMethod, error) {
	return r.store.FindAll(ctx)
}

// UpdateMethods applies a batch of configuration changes all-or-nothing and
// drops the cache so the next validation sees the new rules.
func (r *Registry) UpdateMethods(ctx context.Context, methods []models.PaymentMethod) error {
	for i := range methods {
		m := &methods[i]
		if !m.Gateway.Valid() {
			return validationErrorf("unknown payment method %q", m.Gateway)
		}
		if m.MinAmount.GreaterThan(m.MaxAmount) {
			return validationErrorf("%s: min amount must not exceed max amount", m.Gateway)
		}
		if m.FeeValue.IsNegative() {
			return validationErrorf("%s: fee value must not be negative", m.Gateway)
		}
		if m.FeeType == models.FeePercentage && m.FeeValue.GreaterThan(decimal.NewFromInt(100)) {
			return validationErrorf("%s: percentage fee must not exceed 100", m.Gateway)
		}
		if m.FeeType != models.FeePercentage && m.FeeType != models.FeeFixed {
			return validationErrorf("%s: unknown fee type %q", m.Gateway, m.FeeType)
		}
	}

	if err := r.store.UpdateAll(ctx, methods); err != nil {
		return err
	}

	r.mu.Lock()
	r.cache = make(map[models.Gateway]cachedMethod)
	r.mu.Unlock()
	return nil
}

func (r *Registry) lookup(ctx context.Context, gateway models.Gateway) (*models.PaymentMethod, error) {
	now := time.Now()

	r.mu.Lock()
	if entry, ok := r.cache[gateway]; ok && entry.expires.After(now) {
		method := entry.method
		r.mu.Unlock()
		return &method, nil
	}
	r.mu.Unlock()

	method, err := r.store.FindByGateway(ctx, gateway)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, validationErrorf("payment method %q is not configured", gateway)
		}
		return nil, &StoreError{Err: err}
	}

	r.mu.Lock()
	r.cache[gateway] = cachedMethod{method: *method, expires: now.Add(r.cacheTTL)}
	r.mu.Unlock()

	return method, nil
}
