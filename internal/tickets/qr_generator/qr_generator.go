package qr

import (
	"encoding/base64"
	"fmt"
	"strings"

	"kafila-ticketing/internal/models"

	"github.com/skip2/go-qrcode"
)

const (
	// PayloadPrefix marks a scanned string as one of ours.
	PayloadPrefix = "ORDER:"

	imageSize = 256
)

// Credential is the scannable ticket for one order.
type Credential struct {
	Payload string
	PNG     []byte
	DataURL string
}

type QRGenerator struct {
	level qrcode.RecoveryLevel
	size  int
}

func NewQRGenerator() *QRGenerator {
	return &QRGenerator{level: qrcode.Medium, size: imageSize}
}

// Payload is the exact content encoded into an order's QR code.
func Payload(orderID string) string {
	return PayloadPrefix + orderID
}

// ParsePayload recovers the order id from a scanned payload.
func ParsePayload(payload string) (string, error) {
	if !strings.HasPrefix(payload, PayloadPrefix) {
		return "", models.ErrMalformedCredential
	}
	orderID := strings.TrimPrefix(payload, PayloadPrefix)
	if strings.TrimSpace(orderID) == "" {
		return "", models.ErrMalformedCredential
	}
	return orderID, nil
}

// Issue renders the credential for orderID. The same id always produces the
// same payload and image.
func (q *QRGenerator) Issue(orderID string) (*Credential, error) {
	if orderID == "" {
		return nil, fmt.Errorf("issue credential: empty order id")
	}

	payload := Payload(orderID)
	png, err := qrcode.Encode(payload, q.level, q.size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}

	return &Credential{
		Payload: payload,
		PNG:     png,
		DataURL: "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	}, nil
}
