package pricing

import (
	"fmt"

	"kafila-ticketing/internal/catalog"
	"kafila-ticketing/internal/models"

	"github.com/shopspring/decimal"
)

// MaxLineQty caps a single cart line.
const MaxLineQty = 100

var (
	taxRate = decimal.NewFromInt(18).Div(decimal.NewFromInt(100))
	hundred = decimal.NewFromInt(100)

	// orders.amount is numeric(12,2)
	maxTotal = decimal.New(1, 10)
)

// Bulk discount brackets, highest first. Exactly one applies.
var brackets = []struct {
	minQty  int
	percent int64
}{
	{minQty: 10, percent: 10},
	{minQty: 5, percent: 5},
}

type Item struct {
	TierID string
	Qty    int
}

type Line struct {
	TierID    string          `json:"tierId"`
	Qty       int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// Quote is a full price breakdown. Total is in major units rounded to two
// places; TotalMinor is what the payment gateway is charged.
type Quote struct {
	Lines           []Line          `json:"lines"`
	TotalQty        int             `json:"totalQty"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountPercent int64           `json:"discountPercent"`
	Discount        decimal.Decimal `json:"discount"`
	Taxable         decimal.Decimal `json:"taxable"`
	Tax             decimal.Decimal `json:"tax"`
	Total           decimal.Decimal `json:"total"`
	TotalMinor      int64           `json:"totalMinor"`
}

func ItemsFromCart(cart []models.CartItem) []Item {
	items := make([]Item, len(cart))
	for i, c := range cart {
		items[i] = Item{TierID: c.TierID, Qty: c.Qty}
	}
	return items
}

// DiscountPercent returns the bulk discount for a total ticket count.
func DiscountPercent(totalQty int) int64 {
	for _, b := range brackets {
		if totalQty >= b.minQty {
			return b.percent
		}
	}
	return 0
}

// Calculate prices a cart against the catalog. Any unknown tier, a quantity
// outside 1..MaxLineQty or a total the order table cannot hold rejects the
// whole cart.
func Calculate(cat *catalog.Catalog, items []Item) (*Quote, error) {
	if len(items) == 0 {
		return nil, models.ErrEmptyCart
	}

	q := &Quote{Lines: make([]Line, 0, len(items)), Subtotal: decimal.Zero}

	for _, item := range items {
		tier, ok := cat.Tier(item.TierID)
		if !ok {
			return nil, fmt.Errorf("%w: unknown tier %q", models.ErrInvalidSelection, item.TierID)
		}
		if item.Qty < 1 || item.Qty > MaxLineQty {
			return nil, fmt.Errorf("%w: quantity %d for %s", models.ErrInvalidSelection, item.Qty, item.TierID)
		}

		unit := decimal.NewFromInt(tier.UnitPrice)
		lineTotal := unit.Mul(decimal.NewFromInt(int64(item.Qty)))

		q.Lines = append(q.Lines, Line{
			TierID:    item.TierID,
			Qty:       item.Qty,
			UnitPrice: unit,
			LineTotal: lineTotal,
		})
		q.Subtotal = q.Subtotal.Add(lineTotal)
		q.TotalQty += item.Qty
	}

	q.DiscountPercent = DiscountPercent(q.TotalQty)
	q.Discount = q.Subtotal.Mul(decimal.NewFromInt(q.DiscountPercent)).Div(hundred)
	q.Taxable = q.Subtotal.Sub(q.Discount)
	q.Tax = q.Taxable.Mul(taxRate)
	q.Total = q.Taxable.Add(q.Tax).Round(2)
	if q.Total.GreaterThanOrEqual(maxTotal) {
		return nil, fmt.Errorf("%w: total %s exceeds order limit", models.ErrInvalidSelection, q.Total.StringFixed(2))
	}
	q.TotalMinor = q.Total.Mul(hundred).Round(0).IntPart()

	return q, nil
}
