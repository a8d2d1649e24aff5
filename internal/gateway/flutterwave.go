package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"

	"freshmart/internal/models"
	"freshmart/internal/pkg/httpclient"
)

const flutterwaveBaseURL = "https://api.flutterwave.com/v3"

// FlutterwaveGateway implements the Gateway interface for Flutterwave.
// Unlike Paystack, Flutterwave takes amounts in major units on the wire.
type FlutterwaveGateway struct {
	secretKey string
	baseURL   string
	client    *httpclient.Client
	refundCli *httpclient.Client
}

func NewFlutterwaveGateway(secretKey string) *FlutterwaveGateway {
	return &FlutterwaveGateway{
		secretKey: secretKey,
		baseURL:   flutterwaveBaseURL,
		client:    httpclient.New().WithBearerToken(secretKey),
		refundCli: httpclient.NewNoRetry().WithBearerToken(secretKey),
	}
}

func (f *FlutterwaveGateway) Name() models.Gateway {
	return models.GatewayFlutterwave
}

func (f *FlutterwaveGateway) SupportsRefund() bool {
	return true
}

type flutterwaveEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (f *FlutterwaveGateway) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResult, error) {
	body := map[string]interface{}{
		"tx_ref":       req.Reference,
		"amount":       req.Amount.StringFixed(2),
		"currency":     req.Currency,
		"redirect_url": req.CallbackURL,
		"customer": map[string]string{
			"email":       req.Email,
			"phonenumber": req.Phone,
		},
		"meta": map[string]string{"order_id": req.OrderID},
	}

	env, err := f.call(ctx, f.client, "initiate", f.baseURL+"/payments", body)
	if err != nil {
		return nil, err
	}

	var data struct {
		Link string `json:"link"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, &RejectedError{Gateway: f.Name(), Op: "initiate", Message: "unexpected response format"}
	}
	if data.Link == "" {
		return nil, &RejectedError{Gateway: f.Name(), Op: "initiate", Message: "no payment link returned"}
	}

	return &InitiateResult{
		Reference:  req.Reference,
		PaymentURL: data.Link,
		Raw:        env.Data,
	}, nil
}

func (f *FlutterwaveGateway) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	resp, err := f.client.Get(ctx, f.baseURL+"/transactions/verify_by_reference?tx_ref="+url.QueryEscape(reference))
	if err != nil {
		return nil, &NetworkError{Gateway: f.Name(), Op: "verify", Err: err}
	}
	env, err := f.parse(resp, "verify")
	if err != nil {
		return nil, err
	}

	var data struct {
		ID     int64           `json:"id"`
		TxRef  string          `json:"tx_ref"`
		FlwRef string          `json:"flw_ref"`
		Status string          `json:"status"`
		Amount decimal.Decimal `json:"amount"`
		AppFee decimal.Decimal `json:"app_fee"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, &RejectedError{Gateway: f.Name(), Op: "verify", Message: "unexpected response format"}
	}

	status, ok := MapFlutterwaveStatus(data.Status)
	if !ok {
		return nil, &RejectedError{Gateway: f.Name(), Op: "verify", Message: "unknown transaction status: " + data.Status}
	}

	return &VerifyResult{
		Status:       status,
		Amount:       data.Amount,
		Fee:          data.AppFee,
		ProviderTxID: fmt.Sprintf("%d", data.ID),
		AuthCode:     data.FlwRef,
		Raw:          env.Data,
		Message:      data.Status,
	}, nil
}

// Refund resolves the provider transaction id for the reference first, then
// posts the reversal. The lookup is an idempotent read; only the reversal
// itself is never retried.
func (f *FlutterwaveGateway) Refund(ctx context.Context, reference string, amount decimal.Decimal, reason string) (*RefundResult, error) {
	verified, err := f.Verify(ctx, reference)
	if err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"amount":   amount.StringFixed(2),
		"comments": reason,
	}
	env, err := f.call(ctx, f.refundCli, "refund", f.baseURL+"/transactions/"+verified.ProviderTxID+"/refund", body)
	if err != nil {
		return nil, err
	}

	var data struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, &RejectedError{Gateway: f.Name(), Op: "refund", Message: "unexpected response format"}
	}

	return &RefundResult{
		Success:         true,
		GatewayRefundID: fmt.Sprintf("%d", data.ID),
		Raw:             env.Data,
		Message:         data.Status,
	}, nil
}

func (f *FlutterwaveGateway) call(ctx context.Context, cli *httpclient.Client, op, url string, body interface{}) (*flutterwaveEnvelope, error) {
	resp, err := cli.Post(ctx, url, body)
	if err != nil {
		return nil, &NetworkError{Gateway: f.Name(), Op: op, Err: err}
	}
	return f.parse(resp, op)
}

func (f *FlutterwaveGateway) parse(resp *httpclient.Response, op string) (*flutterwaveEnvelope, error) {
	if resp.StatusCode >= 500 {
		return nil, &NetworkError{Gateway: f.Name(), Op: op, Err: fmt.Errorf("provider returned %d", resp.StatusCode)}
	}

	var env flutterwaveEnvelope
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return nil, &RejectedError{Gateway: f.Name(), Op: op, Message: "invalid response body", StatusCode: resp.StatusCode}
	}
	if env.Status != "success" {
		msg := env.Message
		if msg == "" {
			msg = fmt.Sprintf("request failed with status %d", resp.StatusCode)
		}
		return nil, &RejectedError{Gateway: f.Name(), Op: op, Message: msg, StatusCode: resp.StatusCode}
	}
	return &env, nil
}

// MapFlutterwaveStatus translates a Flutterwave transaction status to the
// internal target state.
func MapFlutterwaveStatus(s string) (models.PaymentStatus, bool) {
	switch s {
	case "successful":
		return models.StatusCompleted, true
	case "failed":
		return models.StatusFailed, true
	case "cancelled":
		return models.StatusCancelled, true
	case "pending":
		return models.StatusPending, true
	default:
		return "", false
	}
}
