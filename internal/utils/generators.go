package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// GenerateReceipt builds the merchant receipt sent with a gateway order.
// Razorpay caps receipts at 40 characters.
func GenerateReceipt() string {
	randomNum, err := rand.Int(rand.Reader, big.NewInt(999999))
	if err != nil {
		return fmt.Sprintf("rcpt_%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("rcpt_%d_%06d", time.Now().Unix(), randomNum.Int64())
}

// GenerateOrderID returns a new internal order id.
func GenerateOrderID() string {
	return uuid.NewString()
}
