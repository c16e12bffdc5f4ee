// Package pricing computes unit prices and order totals. It is pure: results
// depend only on the product snapshot and quantity passed in.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/regaloamor/storefront-backend/pkg/db/models"
)

var oneHundred = decimal.NewFromInt(100)

// UnitPrice applies the product's discount chain to its base price for the
// requested quantity. Discounts compound in a fixed order: the flat
// percentage first, then the best-matching quantity tier on the already
// discounted price. Each step rounds half-up to a whole peso; the rounding
// error that can accumulate across steps is part of the published prices and
// is kept as-is.
func UnitPrice(product models.Product, qty int) int {
	if qty < 1 {
		panic(fmt.Sprintf("pricing: quantity must be >= 1, got %d", qty))
	}
	if product.PriceCLP < 0 {
		panic(fmt.Sprintf("pricing: product %s has negative base price %d", product.ID, product.PriceCLP))
	}

	price := product.PriceCLP

	if product.DiscountPercent > 0 {
		price = applyPercent(price, product.DiscountPercent)
	}

	if tier, ok := applicableTier(product.QuantityDiscounts, qty); ok {
		price = applyPercent(price, tier.Percent)
	}

	// A discount can only lower the price. Anything else is a programming
	// error and must fail the request loudly rather than be clamped.
	if price < 0 || price > product.PriceCLP {
		panic(fmt.Sprintf("pricing: computed unit price %d outside [0, %d] for product %s", price, product.PriceCLP, product.ID))
	}
	return price
}

// applicableTier selects the tier with the highest MinQty that the requested
// quantity still satisfies. Tiers are unique by MinQty, so there are no ties.
func applicableTier(tiers []models.ProductQuantityDiscount, qty int) (models.ProductQuantityDiscount, bool) {
	var best models.ProductQuantityDiscount
	found := false
	for _, tier := range tiers {
		if tier.MinQty > qty {
			continue
		}
		if !found || tier.MinQty > best.MinQty {
			best = tier
			found = true
		}
	}
	return best, found
}

// applyPercent discounts price by percent, rounding half-up to a whole peso.
func applyPercent(price, percent int) int {
	if percent <= 0 {
		return price
	}
	discounted := decimal.NewFromInt(int64(price)).
		Mul(oneHundred.Sub(decimal.NewFromInt(int64(percent)))).
		Div(oneHundred).
		Round(0)
	return int(discounted.IntPart())
}

// LineTotal is the charged amount for one snapshot line.
func LineTotal(unitPrice, qty int) int {
	return unitPrice * qty
}

// Line is a priced cart or order line used for total computation.
type Line struct {
	UnitPriceCLP int
	Qty          int
}

// OrderTotal sums line totals and adds the shipping cost.
func OrderTotal(lines []Line, shippingCostCLP int) int {
	total := shippingCostCLP
	for _, line := range lines {
		total += LineTotal(line.UnitPriceCLP, line.Qty)
	}
	return total
}
