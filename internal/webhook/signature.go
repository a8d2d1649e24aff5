package webhook

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
)

// ErrInvalidSignature is returned when a webhook payload fails
// authentication. Callers must discard the payload without touching
// any payment state.
var ErrInvalidSignature = errors.New("webhook signature mismatch")

// VerifyPaystackSignature checks the x-paystack-signature header, an
// HMAC-SHA512 of the raw body keyed with the account secret key.
func VerifyPaystackSignature(secretKey string, body []byte, signature string) bool {
	if secretKey == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(secretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyFlutterwaveSignature checks the verif-hash header against the
// configured secret hash. Flutterwave sends the shared secret verbatim
// rather than a digest of the body.
func VerifyFlutterwaveSignature(secretHash, header string) bool {
	if secretHash == "" || header == "" {
		return false
	}
	return hmac.Equal([]byte(secretHash), []byte(header))
}
