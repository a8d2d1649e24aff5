// Package notify delivers customer-facing messages through a WAHA
// (WhatsApp HTTP API) server. Delivery is best effort: payment flows
// never fail because a message could not be sent.
package notify

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"freshmart/internal/config"
	"freshmart/internal/pkg/httpclient"
)

// WhatsAppClient talks to a WAHA server session over HTTP.
type WhatsAppClient struct {
	client      *httpclient.Client
	session     string
	countryCode string
	logger      *zap.Logger
}

func NewWhatsAppClient(cfg *config.WhatsAppConfig, logger *zap.Logger) *WhatsAppClient {
	return &WhatsAppClient{
		client: httpclient.New().
			WithBaseURL(cfg.BaseURL).
			WithHeader("X-Api-Key", cfg.APIKey),
		session:     cfg.Session,
		countryCode: cfg.CountryCode,
		logger:      logger,
	}
}

// SendText pushes a plain text message to a phone number.
func (w *WhatsAppClient) SendText(ctx context.Context, phone, text string) error {
	chatID := NormalizeChatID(phone, w.countryCode)
	resp, err := w.client.Post(ctx, "/api/sendText", map[string]string{
		"chatId":  chatID,
		"text":    text,
		"session": w.session,
	})
	if err != nil {
		return fmt.Errorf("whatsapp send: %w", err)
	}
	if resp.StatusCode >= 400 {
		w.logger.Warn("whatsapp send rejected",
			zap.String("chat_id", chatID),
			zap.Int("status", resp.StatusCode))
		return fmt.Errorf("whatsapp send: server returned %d", resp.StatusCode)
	}
	return nil
}

// NormalizeChatID converts a raw phone number into a WAHA chat id.
// Group ids pass through untouched. Local numbers beginning with 0 get
// the configured country prefix so "08012345678" becomes "2348012345678@c.us".
func NormalizeChatID(phone, countryCode string) string {
	chatID := strings.TrimSpace(phone)

	if strings.HasSuffix(chatID, "@g.us") {
		return chatID
	}

	chatID = strings.TrimSuffix(chatID, "@c.us")
	chatID = strings.TrimPrefix(chatID, "+")
	chatID = strings.ReplaceAll(chatID, " ", "")
	chatID = strings.ReplaceAll(chatID, "-", "")

	if countryCode != "" && strings.HasPrefix(chatID, "0") {
		chatID = countryCode + strings.TrimPrefix(chatID, "0")
	}

	return chatID + "@c.us"
}
