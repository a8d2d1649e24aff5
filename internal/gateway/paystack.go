package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"freshmart/internal/models"
	"freshmart/internal/pkg/httpclient"
)

const paystackBaseURL = "https://api.paystack.co"

// PaystackGateway implements the Gateway interface for Paystack.
// Paystack speaks minor units: every amount on the wire is in kobo.
type PaystackGateway struct {
	secretKey string
	baseURL   string
	client    *httpclient.Client // retries: initiate/verify are idempotent
	refundCli *httpclient.Client // no retries: refunds must not be replayed
}

func NewPaystackGateway(secretKey string) *PaystackGateway {
	return &PaystackGateway{
		secretKey: secretKey,
		baseURL:   paystackBaseURL,
		client:    httpclient.New().WithBearerToken(secretKey),
		refundCli: httpclient.NewNoRetry().WithBearerToken(secretKey),
	}
}

func (p *PaystackGateway) Name() models.Gateway {
	return models.GatewayPaystack
}

func (p *PaystackGateway) SupportsRefund() bool {
	return true
}

type paystackEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (p *PaystackGateway) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResult, error) {
	body := map[string]interface{}{
		"email":        req.Email,
		"amount":       toMinorUnits(req.Amount),
		"reference":    req.Reference,
		"currency":     req.Currency,
		"callback_url": req.CallbackURL,
		"metadata":     map[string]string{"order_id": req.OrderID},
	}

	env, err := p.call(ctx, p.client, "initiate", p.baseURL+"/transaction/initialize", body)
	if err != nil {
		return nil, err
	}

	var data struct {
		AuthorizationURL string `json:"authorization_url"`
		Reference        string `json:"reference"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, &RejectedError{Gateway: p.Name(), Op: "initiate", Message: "unexpected response format"}
	}
	if data.AuthorizationURL == "" {
		return nil, &RejectedError{Gateway: p.Name(), Op: "initiate", Message: "no authorization url returned"}
	}

	return &InitiateResult{
		Reference:  data.Reference,
		PaymentURL: data.AuthorizationURL,
		Raw:        env.Data,
	}, nil
}

func (p *PaystackGateway) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	resp, err := p.client.Get(ctx, p.baseURL+"/transaction/verify/"+reference)
	if err != nil {
		return nil, &NetworkError{Gateway: p.Name(), Op: "verify", Err: err}
	}
	env, err := p.parse(resp, "verify")
	if err != nil {
		return nil, err
	}

	var data struct {
		ID            int64  `json:"id"`
		Status        string `json:"status"`
		Amount        int64  `json:"amount"`
		Fees          int64  `json:"fees"`
		Authorization struct {
			AuthorizationCode string `json:"authorization_code"`
		} `json:"authorization"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, &RejectedError{Gateway: p.Name(), Op: "verify", Message: "unexpected response format"}
	}

	status, ok := MapPaystackStatus(data.Status)
	if !ok {
		return nil, &RejectedError{Gateway: p.Name(), Op: "verify", Message: "unknown transaction status: " + data.Status}
	}

	return &VerifyResult{
		Status:       status,
		Amount:       fromMinorUnits(data.Amount),
		Fee:          fromMinorUnits(data.Fees),
		ProviderTxID: fmt.Sprintf("%d", data.ID),
		AuthCode:     data.Authorization.AuthorizationCode,
		Raw:          env.Data,
		Message:      data.Status,
	}, nil
}

func (p *PaystackGateway) Refund(ctx context.Context, reference string, amount decimal.Decimal, reason string) (*RefundResult, error) {
	body := map[string]interface{}{
		"transaction":   reference,
		"amount":        toMinorUnits(amount),
		"merchant_note": reason,
	}

	env, err := p.call(ctx, p.refundCli, "refund", p.baseURL+"/refund", body)
	if err != nil {
		return nil, err
	}

	var data struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, &RejectedError{Gateway: p.Name(), Op: "refund", Message: "unexpected response format"}
	}

	return &RefundResult{
		Success:         true,
		GatewayRefundID: fmt.Sprintf("%d", data.ID),
		Raw:             env.Data,
		Message:         data.Status,
	}, nil
}

func (p *PaystackGateway) call(ctx context.Context, cli *httpclient.Client, op, url string, body interface{}) (*paystackEnvelope, error) {
	resp, err := cli.Post(ctx, url, body)
	if err != nil {
		return nil, &NetworkError{Gateway: p.Name(), Op: op, Err: err}
	}
	return p.parse(resp, op)
}

func (p *PaystackGateway) parse(resp *httpclient.Response, op string) (*paystackEnvelope, error) {
	if resp.StatusCode >= 500 {
		return nil, &NetworkError{Gateway: p.Name(), Op: op, Err: fmt.Errorf("provider returned %d", resp.StatusCode)}
	}

	var env paystackEnvelope
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return nil, &RejectedError{Gateway: p.Name(), Op: op, Message: "invalid response body", StatusCode: resp.StatusCode}
	}
	if !env.Status {
		msg := env.Message
		if msg == "" {
			msg = fmt.Sprintf("request failed with status %d", resp.StatusCode)
		}
		return nil, &RejectedError{Gateway: p.Name(), Op: op, Message: msg, StatusCode: resp.StatusCode}
	}
	return &env, nil
}

// MapPaystackStatus translates a Paystack transaction status to the internal
// target state. The table is fixed; unknown statuses are not guessed at.
func MapPaystackStatus(s string) (models.PaymentStatus, bool) {
	switch s {
	case "success":
		return models.StatusCompleted, true
	case "failed", "reversed":
		return models.StatusFailed, true
	case "abandoned":
		return models.StatusCancelled, true
	case "ongoing", "pending", "processing", "queued":
		return models.StatusPending, true
	default:
		return "", false
	}
}

// toMinorUnits converts a major-unit amount to kobo. Getting this wrong in
// either direction charges customers 100x off, so conversions live here and
// nowhere else.
func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// fromMinorUnits converts kobo back to a major-unit amount.
func fromMinorUnits(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Div(decimal.NewFromInt(100))
}
