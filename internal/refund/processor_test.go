package refund

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"freshmart/internal/gateway"
	"freshmart/internal/ledger"
	"freshmart/internal/models"
)

type mockPaymentStore struct {
	mock.Mock
}

func (m *mockPaymentStore) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

type mockRefundStore struct {
	mock.Mock
}

func (m *mockRefundStore) Create(ctx context.Context, refund *models.Refund) error {
	args := m.Called(ctx, refund)
	return args.Error(0)
}

func (m *mockRefundStore) SumCompleted(ctx context.Context, paymentID string) (decimal.Decimal, error) {
	args := m.Called(ctx, paymentID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) Transition(ctx context.Context, id string, fromExpected, target models.PaymentStatus, ev ledger.Evidence) (*models.Payment, error) {
	args := m.Called(ctx, id, fromExpected, target, ev)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Name() models.Gateway { return models.GatewayPaystack }

func (m *mockGateway) SupportsRefund() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *mockGateway) Initiate(ctx context.Context, req gateway.InitiateRequest) (*gateway.InitiateResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(*gateway.InitiateResult), args.Error(1)
}

func (m *mockGateway) Verify(ctx context.Context, reference string) (*gateway.VerifyResult, error) {
	args := m.Called(ctx, reference)
	return args.Get(0).(*gateway.VerifyResult), args.Error(1)
}

func (m *mockGateway) Refund(ctx context.Context, reference string, amount decimal.Decimal, reason string) (*gateway.RefundResult, error) {
	args := m.Called(ctx, reference, amount, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.RefundResult), args.Error(1)
}

type mockResolver struct {
	gw gateway.Gateway
}

func (m *mockResolver) Get(g models.Gateway) (gateway.Gateway, error) {
	return m.gw, nil
}

func completedPayment() *models.Payment {
	return &models.Payment{
		ID:               "pay-1",
		Gateway:          models.GatewayPaystack,
		GatewayReference: "PAY-ref",
		Amount:           decimal.NewFromInt(5000),
		Status:           models.StatusCompleted,
	}
}

var admin = models.AdminContext{AdminID: "adm-1", Name: "Ada"}

func newProcessor(payments *mockPaymentStore, refunds *mockRefundStore, gw gateway.Gateway, lg *mockLedger) *Processor {
	return NewProcessor(payments, refunds, &mockResolver{gw: gw}, lg, zap.NewNop())
}

func TestFullRefundTransitionsToRefunded(t *testing.T) {
	payments := new(mockPaymentStore)
	payments.On("FindByID", mock.Anything, "pay-1").Return(completedPayment(), nil)

	refunds := new(mockRefundStore)
	refunds.On("SumCompleted", mock.Anything, "pay-1").Return(decimal.Zero, nil)
	refunds.On("Create", mock.Anything, mock.MatchedBy(func(r *models.Refund) bool {
		return r.Status == models.RefundCompleted && r.GatewayRefundID == "rf_1" && r.CreatedBy == "adm-1"
	})).Return(nil)

	gw := new(mockGateway)
	gw.On("SupportsRefund").Return(true)
	gw.On("Refund", mock.Anything, "PAY-ref", mock.MatchedBy(func(a decimal.Decimal) bool {
		return a.Equal(decimal.NewFromInt(5000))
	}), "duplicate charge").Return(&gateway.RefundResult{Success: true, GatewayRefundID: "rf_1", Raw: json.RawMessage(`{"ok":true}`)}, nil)

	lg := new(mockLedger)
	lg.On("Transition", mock.Anything, "pay-1", models.StatusCompleted, models.StatusRefunded, mock.Anything).
		Return(&models.Payment{}, nil)

	p := newProcessor(payments, refunds, gw, lg)
	// zero amount defaults to the full remaining balance
	res, err := p.Refund(context.Background(), "pay-1", decimal.Zero, "duplicate charge", admin)
	require.NoError(t, err)
	assert.True(t, res.FullyRefunded)
	assert.True(t, res.RemainingAmount.IsZero())
	lg.AssertExpectations(t)
	refunds.AssertExpectations(t)
}

func TestPartialRefundLeavesStatusCompleted(t *testing.T) {
	payments := new(mockPaymentStore)
	payments.On("FindByID", mock.Anything, "pay-1").Return(completedPayment(), nil)

	refunds := new(mockRefundStore)
	refunds.On("SumCompleted", mock.Anything, "pay-1").Return(decimal.Zero, nil)
	refunds.On("Create", mock.Anything, mock.Anything).Return(nil)

	gw := new(mockGateway)
	gw.On("SupportsRefund").Return(true)
	gw.On("Refund", mock.Anything, "PAY-ref", mock.Anything, mock.Anything).
		Return(&gateway.RefundResult{Success: true, GatewayRefundID: "rf_2"}, nil)

	lg := new(mockLedger)

	p := newProcessor(payments, refunds, gw, lg)
	res, err := p.Refund(context.Background(), "pay-1", decimal.NewFromInt(2000), "damaged item", admin)
	require.NoError(t, err)
	assert.False(t, res.FullyRefunded)
	assert.True(t, res.RemainingAmount.Equal(decimal.NewFromInt(3000)))
	lg.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRefundOverRemainingRejectedBeforeGatewayCall(t *testing.T) {
	payments := new(mockPaymentStore)
	payments.On("FindByID", mock.Anything, "pay-1").Return(completedPayment(), nil)

	refunds := new(mockRefundStore)
	refunds.On("SumCompleted", mock.Anything, "pay-1").Return(decimal.NewFromInt(4000), nil)

	gw := new(mockGateway)
	gw.On("SupportsRefund").Return(true)

	p := newProcessor(payments, refunds, gw, new(mockLedger))
	_, err := p.Refund(context.Background(), "pay-1", decimal.NewFromInt(2000), "", admin)
	require.Error(t, err)
	gw.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	refunds.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRefundPendingPaymentRejected(t *testing.T) {
	p1 := completedPayment()
	p1.Status = models.StatusPending

	payments := new(mockPaymentStore)
	payments.On("FindByID", mock.Anything, "pay-1").Return(p1, nil)

	p := newProcessor(payments, new(mockRefundStore), new(mockGateway), new(mockLedger))
	_, err := p.Refund(context.Background(), "pay-1", decimal.NewFromInt(100), "", admin)
	assert.Error(t, err)
}

func TestRefundUnsupportedGateway(t *testing.T) {
	p1 := completedPayment()
	p1.Gateway = models.GatewayCOD

	payments := new(mockPaymentStore)
	payments.On("FindByID", mock.Anything, "pay-1").Return(p1, nil)

	gw := new(mockGateway)
	gw.On("SupportsRefund").Return(false)

	p := newProcessor(payments, new(mockRefundStore), gw, new(mockLedger))
	_, err := p.Refund(context.Background(), "pay-1", decimal.NewFromInt(100), "", admin)
	assert.ErrorIs(t, err, gateway.ErrRefundUnsupported)
}

func TestGatewayFailureRecordsFailedAttempt(t *testing.T) {
	payments := new(mockPaymentStore)
	payments.On("FindByID", mock.Anything, "pay-1").Return(completedPayment(), nil)

	refunds := new(mockRefundStore)
	refunds.On("SumCompleted", mock.Anything, "pay-1").Return(decimal.Zero, nil)
	refunds.On("Create", mock.Anything, mock.MatchedBy(func(r *models.Refund) bool {
		return r.Status == models.RefundFailed
	})).Return(nil)

	gw := new(mockGateway)
	gw.On("SupportsRefund").Return(true)
	gw.On("Refund", mock.Anything, "PAY-ref", mock.Anything, mock.Anything).
		Return(nil, &gateway.NetworkError{Gateway: models.GatewayPaystack, Op: "refund"})

	lg := new(mockLedger)

	p := newProcessor(payments, refunds, gw, lg)
	_, err := p.Refund(context.Background(), "pay-1", decimal.NewFromInt(1000), "", admin)
	require.Error(t, err)
	assert.True(t, gateway.IsNetwork(err))
	refunds.AssertExpectations(t)
	lg.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
