package pricing_test

import (
	"testing"

	"kafila-ticketing/internal/catalog"
	"kafila-ticketing/internal/models"
	"kafila-ticketing/internal/order/pricing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	return c
}

func TestCalculateMixedCart(t *testing.T) {
	cat := loadCatalog(t)

	q, err := pricing.Calculate(cat, []pricing.Item{
		{TierID: "silver", Qty: 3},
		{TierID: "gold", Qty: 2},
	})
	require.NoError(t, err)

	assert.Equal(t, 5, q.TotalQty)
	assert.Equal(t, "7395", q.Subtotal.String())
	assert.Equal(t, int64(5), q.DiscountPercent)
	assert.Equal(t, "369.75", q.Discount.String())
	assert.Equal(t, "7025.25", q.Taxable.String())
	assert.Equal(t, "1264.545", q.Tax.String())
	assert.Equal(t, "8289.80", q.Total.StringFixed(2))
	assert.Equal(t, int64(828980), q.TotalMinor)

	require.Len(t, q.Lines, 2)
	assert.Equal(t, "silver", q.Lines[0].TierID)
	assert.Equal(t, "2997", q.Lines[0].LineTotal.String())
	assert.Equal(t, "4398", q.Lines[1].LineTotal.String())
}

func TestDiscountBrackets(t *testing.T) {
	cases := []struct {
		qty     int
		percent int64
	}{
		{1, 0},
		{4, 0},
		{5, 5},
		{9, 5},
		{10, 10},
		{25, 10},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.percent, pricing.DiscountPercent(tc.qty), "qty=%d", tc.qty)
	}
}

func TestCalculateAppliesBracketAcrossLines(t *testing.T) {
	cat := loadCatalog(t)

	// 4 silver alone: no discount. 999*4 = 3996, tax 719.28
	q, err := pricing.Calculate(cat, []pricing.Item{{TierID: "silver", Qty: 4}})
	require.NoError(t, err)
	assert.Equal(t, int64(0), q.DiscountPercent)
	assert.True(t, decimal.RequireFromString("4715.28").Equal(q.Total))
	assert.Equal(t, int64(471528), q.TotalMinor)

	// 10 across two tiers: 10%
	q, err = pricing.Calculate(cat, []pricing.Item{
		{TierID: "silver", Qty: 6},
		{TierID: "fanpit", Qty: 4},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), q.DiscountPercent)
	// (5994 + 13996) * 0.9 * 1.18 = 21229.38
	assert.Equal(t, "21229.38", q.Total.StringFixed(2))
	assert.Equal(t, int64(2122938), q.TotalMinor)
}

func TestCalculateIsDeterministic(t *testing.T) {
	cat := loadCatalog(t)
	items := []pricing.Item{{TierID: "vip", Qty: 2}, {TierID: "gold", Qty: 7}}

	first, err := pricing.Calculate(cat, items)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := pricing.Calculate(cat, items)
		require.NoError(t, err)
		assert.True(t, first.Total.Equal(again.Total))
		assert.Equal(t, first.TotalMinor, again.TotalMinor)
	}
}

func TestCalculateRejectsBadCarts(t *testing.T) {
	cat := loadCatalog(t)

	_, err := pricing.Calculate(cat, nil)
	assert.ErrorIs(t, err, models.ErrEmptyCart)

	_, err = pricing.Calculate(cat, []pricing.Item{{TierID: "platinum", Qty: 1}})
	assert.ErrorIs(t, err, models.ErrInvalidSelection)

	_, err = pricing.Calculate(cat, []pricing.Item{{TierID: "silver", Qty: 0}})
	assert.ErrorIs(t, err, models.ErrInvalidSelection)

	_, err = pricing.Calculate(cat, []pricing.Item{{TierID: "silver", Qty: 2}, {TierID: "gold", Qty: -1}})
	assert.ErrorIs(t, err, models.ErrInvalidSelection)
}

func TestCalculateBoundsQuantities(t *testing.T) {
	cat := loadCatalog(t)

	q, err := pricing.Calculate(cat, []pricing.Item{{TierID: "vvip", Qty: pricing.MaxLineQty}})
	require.NoError(t, err)
	assert.Equal(t, "2655000.00", q.Total.StringFixed(2))
	assert.Equal(t, int64(265500000), q.TotalMinor)

	_, err = pricing.Calculate(cat, []pricing.Item{{TierID: "vvip", Qty: pricing.MaxLineQty + 1}})
	assert.ErrorIs(t, err, models.ErrInvalidSelection)

	_, err = pricing.Calculate(cat, []pricing.Item{{TierID: "vvip", Qty: 1 << 50}})
	assert.ErrorIs(t, err, models.ErrInvalidSelection)

	// many capped lines still cannot exceed what orders.amount holds
	huge := make([]pricing.Item, 4000)
	for i := range huge {
		huge[i] = pricing.Item{TierID: "vvip", Qty: pricing.MaxLineQty}
	}
	_, err = pricing.Calculate(cat, huge)
	assert.ErrorIs(t, err, models.ErrInvalidSelection)
}

func TestItemsFromCart(t *testing.T) {
	items := pricing.ItemsFromCart([]models.CartItem{{TierID: "gold", Qty: 2}})
	assert.Equal(t, []pricing.Item{{TierID: "gold", Qty: 2}}, items)
}
