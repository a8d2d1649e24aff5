package manual

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

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

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendText(ctx context.Context, phone, text string) error {
	args := m.Called(ctx, phone, text)
	return args.Error(0)
}

func whatsappPayment(status models.PaymentStatus) *models.Payment {
	return &models.Payment{
		ID:            "pay-wa-1",
		OrderID:       "ord-7",
		Gateway:       models.GatewayWhatsApp,
		Status:        status,
		Amount:        decimal.NewFromInt(2500),
		Currency:      "NGN",
		CustomerPhone: "08012345678",
	}
}

var admin = models.AdminContext{AdminID: "adm-3", Name: "Ada"}

func TestConfirm(t *testing.T) {
	store := new(mockPaymentStore)
	store.On("FindByID", mock.Anything, "pay-wa-1").Return(whatsappPayment(models.StatusPending), nil)

	completed := whatsappPayment(models.StatusCompleted)
	lg := new(mockLedger)
	lg.On("Transition", mock.Anything, "pay-wa-1", models.StatusPending, models.StatusCompleted,
		mock.MatchedBy(func(ev ledger.Evidence) bool {
			return ev.Source == models.SourceAdmin && ev.AdminID == "adm-3" && ev.Raw == "paid via transfer screenshot"
		})).Return(completed, nil)

	n := new(mockNotifier)
	n.On("SendText", mock.Anything, "08012345678", mock.Anything).Return(nil)

	w := NewWorkflow(store, lg, n, zap.NewNop())
	got, err := w.Confirm(context.Background(), "pay-wa-1", admin, "paid via transfer screenshot")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
	n.AssertExpectations(t)
}

func TestConfirmReceiptFailureDoesNotFailConfirm(t *testing.T) {
	store := new(mockPaymentStore)
	store.On("FindByID", mock.Anything, "pay-wa-1").Return(whatsappPayment(models.StatusPending), nil)

	lg := new(mockLedger)
	lg.On("Transition", mock.Anything, "pay-wa-1", models.StatusPending, models.StatusCompleted, mock.Anything).
		Return(whatsappPayment(models.StatusCompleted), nil)

	n := new(mockNotifier)
	n.On("SendText", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

	w := NewWorkflow(store, lg, n, zap.NewNop())
	_, err := w.Confirm(context.Background(), "pay-wa-1", admin, "")
	assert.NoError(t, err)
}

func TestConfirmRejectsNonWhatsAppGateway(t *testing.T) {
	p := whatsappPayment(models.StatusPending)
	p.Gateway = models.GatewayPaystack

	store := new(mockPaymentStore)
	store.On("FindByID", mock.Anything, "pay-wa-1").Return(p, nil)
	lg := new(mockLedger)

	w := NewWorkflow(store, lg, nil, zap.NewNop())
	_, err := w.Confirm(context.Background(), "pay-wa-1", admin, "")
	require.Error(t, err)
	lg.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSecondConfirmLosesLedgerRace(t *testing.T) {
	// two admins confirm the same payment; the loser's stale read still
	// says pending, so the ledger guard is what stops the double apply
	store := new(mockPaymentStore)
	store.On("FindByID", mock.Anything, "pay-wa-1").Return(whatsappPayment(models.StatusPending), nil)

	lg := new(mockLedger)
	lg.On("Transition", mock.Anything, "pay-wa-1", models.StatusPending, models.StatusCompleted, mock.Anything).
		Return(nil, ledger.ErrConflict).Once()

	w := NewWorkflow(store, lg, nil, zap.NewNop())
	_, err := w.Confirm(context.Background(), "pay-wa-1", admin, "")
	assert.ErrorIs(t, err, ledger.ErrConflict)
	lg.AssertExpectations(t)
}

func TestConfirmAlreadyCompleted(t *testing.T) {
	store := new(mockPaymentStore)
	store.On("FindByID", mock.Anything, "pay-wa-1").Return(whatsappPayment(models.StatusCompleted), nil)

	w := NewWorkflow(store, new(mockLedger), nil, zap.NewNop())
	_, err := w.Confirm(context.Background(), "pay-wa-1", admin, "")
	assert.Error(t, err)
}

func TestReject(t *testing.T) {
	store := new(mockPaymentStore)
	store.On("FindByID", mock.Anything, "pay-wa-1").Return(whatsappPayment(models.StatusPending), nil)

	lg := new(mockLedger)
	lg.On("Transition", mock.Anything, "pay-wa-1", models.StatusPending, models.StatusFailed,
		mock.MatchedBy(func(ev ledger.Evidence) bool {
			return ev.Source == models.SourceAdmin && ev.Raw == "no transfer received"
		})).Return(whatsappPayment(models.StatusFailed), nil)

	w := NewWorkflow(store, lg, nil, zap.NewNop())
	got, err := w.Reject(context.Background(), "pay-wa-1", admin, "no transfer received")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, got.Status)
}
