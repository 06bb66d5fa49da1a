package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"kafila-ticketing/internal/models"
)

// Signer checks the two HMAC-SHA256 signatures Razorpay produces: the
// webhook signature over the raw body (webhook secret) and the checkout
// signature over "orderId|paymentId" (API key secret).
type Signer struct {
	keySecret     []byte
	webhookSecret []byte
}

func NewSigner(keySecret, webhookSecret string) *Signer {
	return &Signer{keySecret: []byte(keySecret), webhookSecret: []byte(webhookSecret)}
}

// Sign returns the lowercase hex HMAC-SHA256 of payload.
func Sign(secret, payload []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyWebhook must run before any field of body is trusted.
func (s *Signer) VerifyWebhook(body []byte, signature string) error {
	if signature == "" {
		return models.ErrMissingSignature
	}
	return verify(s.webhookSecret, body, signature)
}

// VerifyPayment checks the signature the checkout widget hands back to the
// browser. It says nothing about order state.
func (s *Signer) VerifyPayment(gatewayOrderID, paymentID, signature string) error {
	if signature == "" {
		return models.ErrMissingSignature
	}
	return verify(s.keySecret, []byte(gatewayOrderID+"|"+paymentID), signature)
}

func verify(secret, payload []byte, signature string) error {
	if len(secret) == 0 {
		return models.ErrInvalidSignature
	}
	expected := Sign(secret, payload)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return models.ErrInvalidSignature
	}
	return nil
}
