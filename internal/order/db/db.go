package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"kafila-ticketing/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// ---------------- ORDERS ----------------

// CreateOrder → insert an order and its line items in one transaction
func (d *DB) CreateOrder(ctx context.Context, order *models.Order) error {
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(order).Exec(ctx); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		if len(order.Tickets) == 0 {
			return nil
		}
		for _, t := range order.Tickets {
			t.OrderID = order.ID
		}
		if _, err := tx.NewInsert().Model(&order.Tickets).Exec(ctx); err != nil {
			return fmt.Errorf("insert order tickets: %w", err)
		}
		return nil
	})
}

// GetOrderByID → fetch one order with its line items in cart order
func (d *DB) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	return d.getOrder(ctx, "o.id = ?", id)
}

// GetOrderByGatewayID → fetch one order by the gateway's order id
func (d *DB) GetOrderByGatewayID(ctx context.Context, gatewayOrderID string) (*models.Order, error) {
	return d.getOrder(ctx, "o.gateway_order_id = ?", gatewayOrderID)
}

func (d *DB) getOrder(ctx context.Context, where string, arg string) (*models.Order, error) {
	order := new(models.Order)
	err := d.Bun.NewSelect().
		Model(order).
		Relation("Tickets", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("ot.id ASC")
		}).
		Where(where, arg).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ---------------- TRANSITIONS ----------------
// Each transition is a single conditional UPDATE. A false result means the
// precondition did not hold when the row was written.

// MarkPaid → PENDING to PAID, storing the credential
func (d *DB) MarkPaid(ctx context.Context, id, qrCode, paymentID string, at time.Time) (bool, error) {
	q := d.Bun.NewUpdate().
		Model((*models.Order)(nil)).
		Set("status = ?", models.OrderPaid).
		Set("qr_code = ?", qrCode).
		Set("paid_at = ?", at).
		Where("id = ?", id).
		Where("status = ?", models.OrderPending)
	if paymentID != "" {
		q = q.Set("payment_id = ?", paymentID)
	}
	return affected(q.Exec(ctx))
}

// MarkRefunded → PAID to REFUNDED, clearing the credential
func (d *DB) MarkRefunded(ctx context.Context, id string, at time.Time) (bool, error) {
	return affected(d.Bun.NewUpdate().
		Model((*models.Order)(nil)).
		Set("status = ?", models.OrderRefunded).
		Set("qr_code = NULL").
		Set("refunded_at = ?", at).
		Where("id = ?", id).
		Where("status = ?", models.OrderPaid).
		Exec(ctx))
}

// MarkUsed → flip used once, only for paid orders
func (d *DB) MarkUsed(ctx context.Context, id string, at time.Time) (bool, error) {
	return affected(d.Bun.NewUpdate().
		Model((*models.Order)(nil)).
		Set("used = ?", true).
		Set("used_at = ?", at).
		Where("id = ?", id).
		Where("status = ?", models.OrderPaid).
		Where("used = ?", false).
		Exec(ctx))
}

func affected(res sql.Result, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
