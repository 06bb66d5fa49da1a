package razorpay

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	EventPaymentCaptured = "payment.captured"
	EventRefundProcessed = "refund.processed"
)

var ErrMalformedEvent = errors.New("malformed webhook event")

// Event is one of PaymentCaptured, RefundProcessed or Unrecognized.
type Event interface {
	EventType() string
	isEvent()
}

type PaymentCaptured struct {
	GatewayOrderID string
	PaymentID      string
	Amount         int64
	Currency       string
}

type RefundProcessed struct {
	GatewayOrderID string
	PaymentID      string
	RefundID       string
	Amount         int64
}

// Unrecognized is any signed event this service does not act on.
type Unrecognized struct {
	Type string
}

func (PaymentCaptured) EventType() string { return EventPaymentCaptured }
func (RefundProcessed) EventType() string { return EventRefundProcessed }
func (u Unrecognized) EventType() string  { return u.Type }

func (PaymentCaptured) isEvent() {}
func (RefundProcessed) isEvent() {}
func (Unrecognized) isEvent()    {}

type envelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment *struct {
			Entity paymentEntity `json:"entity"`
		} `json:"payment"`
		Refund *struct {
			Entity refundEntity `json:"entity"`
		} `json:"refund"`
	} `json:"payload"`
}

type paymentEntity struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type refundEntity struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
}

// ParseEvent decodes a verified webhook body. Recognized events without a
// gateway order id are reported as ErrMalformedEvent.
func ParseEvent(body []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	switch env.Event {
	case EventPaymentCaptured:
		if env.Payload.Payment == nil || env.Payload.Payment.Entity.OrderID == "" {
			return nil, fmt.Errorf("%w: payment.captured without order id", ErrMalformedEvent)
		}
		p := env.Payload.Payment.Entity
		return PaymentCaptured{
			GatewayOrderID: p.OrderID,
			PaymentID:      p.ID,
			Amount:         p.Amount,
			Currency:       p.Currency,
		}, nil

	case EventRefundProcessed:
		if env.Payload.Payment == nil || env.Payload.Payment.Entity.OrderID == "" {
			return nil, fmt.Errorf("%w: refund.processed without order id", ErrMalformedEvent)
		}
		ev := RefundProcessed{
			GatewayOrderID: env.Payload.Payment.Entity.OrderID,
			PaymentID:      env.Payload.Payment.Entity.ID,
		}
		if env.Payload.Refund != nil {
			ev.RefundID = env.Payload.Refund.Entity.ID
			ev.Amount = env.Payload.Refund.Entity.Amount
			if ev.PaymentID == "" {
				ev.PaymentID = env.Payload.Refund.Entity.PaymentID
			}
		}
		return ev, nil

	case "":
		return nil, fmt.Errorf("%w: missing event type", ErrMalformedEvent)

	default:
		return Unrecognized{Type: env.Event}, nil
	}
}
