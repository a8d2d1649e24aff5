package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"freshmart/internal/config"
)

func TestNormalizeChatID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"local number gets country prefix", "08012345678", "2348012345678@c.us"},
		{"international number untouched", "2348012345678", "2348012345678@c.us"},
		{"plus sign stripped", "+2348012345678", "2348012345678@c.us"},
		{"existing suffix preserved", "2348012345678@c.us", "2348012345678@c.us"},
		{"group id passes through", "123456789@g.us", "123456789@g.us"},
		{"spaces and dashes removed", "0801 234-5678", "2348012345678@c.us"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeChatID(tt.input, "234"))
		})
	}
}

func TestSendText(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sendText", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	cli := NewWhatsAppClient(&config.WhatsAppConfig{
		BaseURL:     srv.URL,
		APIKey:      "secret",
		Session:     "default",
		CountryCode: "234",
	}, zap.NewNop())

	err := cli.SendText(context.Background(), "08012345678", "your order is confirmed")
	require.NoError(t, err)
	assert.Equal(t, "2348012345678@c.us", got["chatId"])
	assert.Equal(t, "default", got["session"])
}

func TestSendTextServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	cli := NewWhatsAppClient(&config.WhatsAppConfig{BaseURL: srv.URL}, zap.NewNop())
	assert.Error(t, cli.SendText(context.Background(), "08012345678", "hi"))
}
