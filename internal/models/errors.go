package models

import "errors"

var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrInvalidSelection    = errors.New("invalid ticket selection")
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderExpired        = errors.New("order expired")
	ErrMissingSignature    = errors.New("missing signature")
	ErrInvalidSignature    = errors.New("invalid signature")
	ErrMalformedCredential = errors.New("invalid QR code")
	ErrPaymentIncomplete   = errors.New("payment not completed or refunded")
	ErrAlreadyUsed         = errors.New("ticket already used")
	ErrGateway             = errors.New("payment gateway unavailable")
)
