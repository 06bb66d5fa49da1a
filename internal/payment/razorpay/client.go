package razorpay

import (
	"context"
	"fmt"

	"kafila-ticketing/internal/models"

	rzp "github.com/razorpay/razorpay-go"
)

// OrderCreator is the slice of the Razorpay SDK used here.
type OrderCreator interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// Client creates remote payment orders.
type Client struct {
	orders OrderCreator
	keyID  string
}

func NewClient(keyID, keySecret string) *Client {
	sdk := rzp.NewClient(keyID, keySecret)
	return &Client{orders: sdk.Order, keyID: keyID}
}

// NewClientWith wraps an existing order creator. Used by tests.
func NewClientWith(orders OrderCreator, keyID string) *Client {
	return &Client{orders: orders, keyID: keyID}
}

// KeyID is the public key the checkout widget needs.
func (c *Client) KeyID() string {
	return c.keyID
}

// CreateOrder registers amountMinor (paise) with Razorpay and returns the
// gateway order id. The SDK has no context support, so ctx is only checked
// before the call.
func (c *Client) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	resp, err := c.orders.Create(map[string]interface{}{
		"amount":   amountMinor,
		"currency": currency,
		"receipt":  receipt,
	}, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrGateway, err)
	}

	id, _ := resp["id"].(string)
	if id == "" {
		return "", fmt.Errorf("%w: response without order id", models.ErrGateway)
	}
	return id, nil
}
