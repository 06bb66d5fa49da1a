package models

type Customer struct {
	Name  string `json:"name" validate:"required,max=120"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,min=7,max=20"`
}

type CartItem struct {
	TierID string `json:"tierId" validate:"required"`
	Qty    int    `json:"qty"`
}

// CreateOrderRequest is the checkout submission. Cart contents are checked
// by the pricing calculator so that unknown tiers and bad quantities share
// one error.
type CreateOrderRequest struct {
	Customer Customer   `json:"customer" validate:"required"`
	Cart     []CartItem `json:"cart" validate:"dive"`
}

type CreateOrderResponse struct {
	OrderID         string `json:"orderId"`
	InternalOrderID string `json:"internalOrderId"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	KeyID           string `json:"keyId,omitempty"`
}

type QuoteRequest struct {
	Cart []CartItem `json:"cart" validate:"dive"`
}

type VerifyPaymentRequest struct {
	PaymentID string `json:"razorpay_payment_id" validate:"required"`
	OrderID   string `json:"razorpay_order_id" validate:"required"`
	Signature string `json:"razorpay_signature" validate:"required"`
}

type ValidateTicketRequest struct {
	Payload string `json:"payload"`
}

type MarkUsedRequest struct {
	OrderID string `json:"orderId" validate:"required"`
}

