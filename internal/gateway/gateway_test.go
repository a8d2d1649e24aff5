package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"freshmart/internal/models"
)

func TestMapPaystackStatus(t *testing.T) {
	tests := []struct {
		provider string
		want     models.PaymentStatus
		known    bool
	}{
		{"success", models.StatusCompleted, true},
		{"failed", models.StatusFailed, true},
		{"reversed", models.StatusFailed, true},
		{"abandoned", models.StatusCancelled, true},
		{"ongoing", models.StatusPending, true},
		{"something-new", "", false},
	}
	for _, tt := range tests {
		got, ok := MapPaystackStatus(tt.provider)
		assert.Equal(t, tt.known, ok, tt.provider)
		assert.Equal(t, tt.want, got, tt.provider)
	}
}

func TestMapFlutterwaveStatus(t *testing.T) {
	got, ok := MapFlutterwaveStatus("successful")
	assert.True(t, ok)
	assert.Equal(t, models.StatusCompleted, got)

	got, ok = MapFlutterwaveStatus("failed")
	assert.True(t, ok)
	assert.Equal(t, models.StatusFailed, got)

	_, ok = MapFlutterwaveStatus("mystery")
	assert.False(t, ok)
}

func TestMinorUnitConversion(t *testing.T) {
	amt, _ := decimal.NewFromString("5000.50")
	assert.Equal(t, int64(500050), toMinorUnits(amt))
	assert.True(t, fromMinorUnits(500050).Equal(amt))

	// whole amounts survive the round trip
	whole := decimal.NewFromInt(5000)
	assert.True(t, fromMinorUnits(toMinorUnits(whole)).Equal(whole))
}

func TestPaystackInitiate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_x", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":true,"message":"Authorization URL created","data":{"authorization_url":"https://checkout.paystack.com/abc","access_code":"abc","reference":"PAY-1"}}`))
	}))
	defer srv.Close()

	gw := NewPaystackGateway("sk_test_x")
	gw.baseURL = srv.URL

	res, err := gw.Initiate(context.Background(), InitiateRequest{
		OrderID:   "ORD-1",
		Reference: "PAY-1",
		Amount:    decimal.NewFromInt(5000),
		Currency:  "NGN",
		Email:     "shopper@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "PAY-1", res.Reference)
	assert.Equal(t, "https://checkout.paystack.com/abc", res.PaymentURL)
}

func TestPaystackVerify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/verify/PAY-1", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":true,"message":"Verification successful","data":{"id":12345,"status":"success","amount":500000,"fees":7500,"authorization":{"authorization_code":"AUTH_xyz"}}}`))
	}))
	defer srv.Close()

	gw := NewPaystackGateway("sk_test_x")
	gw.baseURL = srv.URL

	res, err := gw.Verify(context.Background(), "PAY-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, res.Status)
	assert.True(t, res.Amount.Equal(decimal.NewFromInt(5000)), "amount %s", res.Amount)
	assert.True(t, res.Fee.Equal(decimal.NewFromInt(75)), "fee %s", res.Fee)
	assert.Equal(t, "12345", res.ProviderTxID)
	assert.Equal(t, "AUTH_xyz", res.AuthCode)
}

func TestPaystackBusinessRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":false,"message":"Transaction reference not found"}`))
	}))
	defer srv.Close()

	gw := NewPaystackGateway("sk_test_x")
	gw.baseURL = srv.URL

	_, err := gw.Verify(context.Background(), "missing")
	require.Error(t, err)
	assert.False(t, IsNetwork(err))

	var rej *RejectedError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, "Transaction reference not found", rej.Message)
}

func TestPaystackServerErrorIsNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	gw := NewPaystackGateway("sk_test_x")
	gw.baseURL = srv.URL

	_, err := gw.Refund(context.Background(), "PAY-1", decimal.NewFromInt(100), "damaged goods")
	require.Error(t, err)
	assert.True(t, IsNetwork(err))
}

func TestManualGatewayCapabilities(t *testing.T) {
	gw := NewManualGateway(nil, zap.NewNop())
	assert.False(t, gw.SupportsRefund())

	_, err := gw.Refund(context.Background(), "WA-1", decimal.NewFromInt(100), "n/a")
	assert.ErrorIs(t, err, ErrRefundUnsupported)

	res, err := gw.Initiate(context.Background(), InitiateRequest{
		OrderID:   "ORD-9",
		Reference: "WA-1",
		Amount:    decimal.NewFromInt(2500),
		Currency:  "NGN",
	})
	require.NoError(t, err)
	assert.Equal(t, "WA-1", res.Reference)
	assert.Empty(t, res.PaymentURL)
	assert.Contains(t, res.Instructions, "WA-1")
}

func TestOfflineGatewayCapabilities(t *testing.T) {
	for _, kind := range []models.Gateway{models.GatewayBankTransfer, models.GatewayCOD} {
		gw := NewOfflineGateway(kind, "0123456789 (FreshMart)")
		assert.Equal(t, kind, gw.Name())
		assert.False(t, gw.SupportsRefund())

		_, err := gw.Refund(context.Background(), "ref", decimal.NewFromInt(1), "n/a")
		assert.ErrorIs(t, err, ErrRefundUnsupported)

		v, err := gw.Verify(context.Background(), "ref")
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, v.Status)
	}
}

func TestNewReferencePrefixes(t *testing.T) {
	assert.Contains(t, NewReference(models.GatewayWhatsApp), "WA-")
	assert.Contains(t, NewReference(models.GatewayCOD), "COD-")
	assert.NotEqual(t, NewReference(models.GatewayPaystack), NewReference(models.GatewayPaystack))
}
