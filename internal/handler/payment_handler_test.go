package handler

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freshmart/internal/models"
)

func TestExportRowColumnOrder(t *testing.T) {
	created := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	verified := created.Add(5 * time.Minute)

	p := &models.Payment{
		ID:               "pay-1",
		OrderID:          "ord-9",
		Gateway:          models.GatewayPaystack,
		GatewayReference: "PAY-123",
		Amount:           decimal.RequireFromString("5000"),
		TransactionFee:   decimal.RequireFromString("75"),
		NetAmount:        decimal.RequireFromString("4925"),
		Status:           models.StatusCompleted,
		CustomerEmail:    "ada@example.com",
		CustomerPhone:    "08012345678",
		WebhookVerified:  true,
		CreatedAt:        created,
		VerifiedAt:       &verified,
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	require.NoError(t, w.Write(exportColumns))
	require.NoError(t, w.Write(exportRow(p)))
	w.Flush()
	require.NoError(t, w.Error())

	// external bookkeeping parses this output; it must stay byte-stable
	want := "payment id,order id,reference,gateway,amount,fee,net amount,status,customer email,customer phone,webhook verified,created at,verified at\n" +
		"pay-1,ord-9,PAY-123,paystack,5000.00,75.00,4925.00,completed,ada@example.com,08012345678,true,2026-03-14T09:30:00Z,2026-03-14T09:35:00Z\n"
	assert.Equal(t, want, buf.String())
}

func TestExportRowPendingHasEmptyVerifiedAt(t *testing.T) {
	p := &models.Payment{
		ID:        "pay-2",
		Gateway:   models.GatewayCOD,
		Amount:    decimal.RequireFromString("120.5"),
		Status:    models.StatusPending,
		CreatedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	row := exportRow(p)
	require.Len(t, row, len(exportColumns))
	assert.Equal(t, "120.50", row[4])
	assert.Equal(t, "", row[len(row)-1])
}
