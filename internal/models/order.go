package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type OrderStatus string

const (
	OrderPending  OrderStatus = "PENDING"
	OrderPaid     OrderStatus = "PAID"
	OrderRefunded OrderStatus = "REFUNDED"
)

type Order struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID             string          `bun:"id,pk" json:"id"`
	GatewayOrderID string          `bun:"gateway_order_id,unique,notnull" json:"gatewayOrderId"`
	Name           string          `bun:"name,notnull" json:"name"`
	Email          string          `bun:"email,notnull" json:"email"`
	Phone          string          `bun:"phone,notnull" json:"phone"`
	Amount         decimal.Decimal `bun:"amount,type:numeric(12,2),notnull" json:"amount"`
	AmountMinor    int64           `bun:"amount_minor,notnull" json:"amountMinor"`
	Currency       string          `bun:"currency,notnull" json:"currency"`
	Status         OrderStatus     `bun:"status,notnull" json:"status"`
	Used           bool            `bun:"used,notnull,default:false" json:"used"`
	UsedAt         *time.Time      `bun:"used_at" json:"usedAt,omitempty"`
	QRCode         *string         `bun:"qr_code" json:"-"`
	PaymentID      *string         `bun:"payment_id" json:"paymentId,omitempty"`
	PaidAt         *time.Time      `bun:"paid_at" json:"paidAt,omitempty"`
	RefundedAt     *time.Time      `bun:"refunded_at" json:"refundedAt,omitempty"`
	CreatedAt      time.Time       `bun:"created_at,notnull" json:"createdAt"`

	Tickets []*OrderTicket `bun:"rel:has-many,join:id=order_id" json:"tickets"`
}

// ExpiredAt reports whether a pending order has outlived the payment window.
// Paid and refunded orders never expire.
func (o *Order) ExpiredAt(now time.Time, window time.Duration) bool {
	return o.Status == OrderPending && now.Sub(o.CreatedAt) > window
}

// TotalQty sums ticket quantities across line items.
func (o *Order) TotalQty() int {
	total := 0
	for _, t := range o.Tickets {
		total += t.Qty
	}
	return total
}

type OrderTicket struct {
	bun.BaseModel `bun:"table:order_tickets,alias:ot"`

	ID      int64  `bun:"id,pk,autoincrement" json:"id"`
	OrderID string `bun:"order_id,notnull" json:"orderId"`
	TierID  string `bun:"tier_id,notnull" json:"tierId"`
	Qty     int    `bun:"qty,notnull" json:"qty"`
}

// OrderSummary is the public view returned by order lookup.
type OrderSummary struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Amount  decimal.Decimal `json:"amount"`
	Status  OrderStatus     `json:"status"`
	Used    bool            `json:"used"`
	Tickets []*OrderTicket  `json:"tickets"`
}

func (o *Order) Summary() OrderSummary {
	tickets := o.Tickets
	if tickets == nil {
		tickets = []*OrderTicket{}
	}
	return OrderSummary{
		ID:      o.ID,
		Name:    o.Name,
		Amount:  o.Amount,
		Status:  o.Status,
		Used:    o.Used,
		Tickets: tickets,
	}
}

// TicketSummary is what door staff see after a successful scan.
type TicketSummary struct {
	OrderID string         `json:"orderId"`
	Name    string         `json:"name"`
	Tickets []*OrderTicket `json:"tickets"`
}
