package analytics

import (
	"context"
	"fmt"

	"kafila-ticketing/internal/catalog"
	"kafila-ticketing/internal/models"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Service handles analytics operations
type Service struct {
	db      *bun.DB
	catalog *catalog.Catalog
}

// NewService creates a new analytics service
func NewService(db *bun.DB, cat *catalog.Catalog) *Service {
	return &Service{db: db, catalog: cat}
}

// SalesSummary is the admin dashboard view of the event.
type SalesSummary struct {
	Event       string                     `json:"event"`
	Currency    string                     `json:"currency"`
	Orders      map[models.OrderStatus]int `json:"orders"`
	TicketsSold int                        `json:"tickets_sold"`
	Admitted    int                        `json:"admitted"`
	Revenue     decimal.Decimal            `json:"revenue"`
	SalesByTier []TierSalesMetrics         `json:"sales_by_tier"`
}

// TierSalesMetrics contains sales metrics for a specific tier. ListRevenue
// is at catalog price, before bulk discount and tax.
type TierSalesMetrics struct {
	TierID      string          `json:"tier_id"`
	TierName    string          `json:"tier_name"`
	TicketsSold int             `json:"tickets_sold"`
	ListRevenue decimal.Decimal `json:"list_revenue"`
}

// GetSalesSummary aggregates paid sales. Refunded orders count towards
// Orders only.
func (s *Service) GetSalesSummary(ctx context.Context) (*SalesSummary, error) {
	summary := &SalesSummary{
		Event:       s.catalog.Title,
		Currency:    s.catalog.Currency,
		Orders:      map[models.OrderStatus]int{},
		SalesByTier: []TierSalesMetrics{},
	}

	var statusCounts []struct {
		Status models.OrderStatus `bun:"status"`
		Count  int                `bun:"count"`
	}
	err := s.db.NewSelect().
		Model((*models.Order)(nil)).
		Column("status").
		ColumnExpr("COUNT(*) AS count").
		Group("status").
		Scan(ctx, &statusCounts)
	if err != nil {
		return nil, fmt.Errorf("count orders by status: %w", err)
	}
	for _, sc := range statusCounts {
		summary.Orders[sc.Status] = sc.Count
	}

	var revenue decimal.NullDecimal
	err = s.db.NewSelect().
		Model((*models.Order)(nil)).
		ColumnExpr("SUM(amount)").
		Where("status = ?", models.OrderPaid).
		Scan(ctx, &revenue)
	if err != nil {
		return nil, fmt.Errorf("sum revenue: %w", err)
	}
	summary.Revenue = decimal.Zero
	if revenue.Valid {
		summary.Revenue = revenue.Decimal.Round(2)
	}

	summary.Admitted, err = s.db.NewSelect().
		Model((*models.Order)(nil)).
		Where("status = ?", models.OrderPaid).
		Where("used = ?", true).
		Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count admissions: %w", err)
	}

	var tierSales []struct {
		TierID  string `bun:"tier_id"`
		Tickets int    `bun:"tickets"`
	}
	err = s.db.NewSelect().
		TableExpr("order_tickets AS ot").
		Join("JOIN orders AS o ON o.id = ot.order_id").
		ColumnExpr("ot.tier_id").
		ColumnExpr("SUM(ot.qty) AS tickets").
		Where("o.status = ?", models.OrderPaid).
		GroupExpr("ot.tier_id").
		OrderExpr("ot.tier_id ASC").
		Scan(ctx, &tierSales)
	if err != nil {
		return nil, fmt.Errorf("sum tickets by tier: %w", err)
	}

	for _, ts := range tierSales {
		m := TierSalesMetrics{TierID: ts.TierID, TierName: ts.TierID, TicketsSold: ts.Tickets, ListRevenue: decimal.Zero}
		if tier, ok := s.catalog.Tier(ts.TierID); ok {
			m.TierName = tier.Name
			m.ListRevenue = decimal.NewFromInt(tier.UnitPrice).Mul(decimal.NewFromInt(int64(ts.Tickets)))
		}
		summary.TicketsSold += ts.Tickets
		summary.SalesByTier = append(summary.SalesByTier, m)
	}

	return summary, nil
}
