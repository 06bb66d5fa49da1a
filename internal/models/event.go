package models

import "time"

// LifecycleEvent is published to kafka and pushed to SSE subscribers whenever
// an order changes state.
type LifecycleEvent struct {
	Type      string      `json:"type"`
	OrderID   string      `json:"orderId"`
	Status    OrderStatus `json:"status"`
	Email     string      `json:"email,omitempty"`
	Amount    string      `json:"amount,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

const (
	EventOrderCreated   = "order.created"
	EventOrderPaid      = "order.paid"
	EventOrderRefunded  = "order.refunded"
	EventOrderCheckedIn = "order.checked_in"
)
