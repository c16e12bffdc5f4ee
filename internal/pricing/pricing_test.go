package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regaloamor/storefront-backend/pkg/db/models"
)

func productWith(price, flatPercent int, tiers ...models.ProductQuantityDiscount) models.Product {
	return models.Product{
		ID:                uuid.New(),
		Name:              "Taza personalizada",
		PriceCLP:          price,
		DiscountPercent:   flatPercent,
		QuantityDiscounts: tiers,
		Active:            true,
	}
}

func tier(minQty, percent int) models.ProductQuantityDiscount {
	return models.ProductQuantityDiscount{ID: uuid.New(), MinQty: minQty, Percent: percent}
}

func TestUnitPriceNoDiscounts(t *testing.T) {
	p := productWith(10000, 0)
	assert.Equal(t, 10000, UnitPrice(p, 1))
	assert.Equal(t, 10000, UnitPrice(p, 50))
}

func TestUnitPriceFlatDiscountOnly(t *testing.T) {
	p := productWith(10000, 10)
	assert.Equal(t, 9000, UnitPrice(p, 1))
}

func TestUnitPriceCompoundsFlatThenTier(t *testing.T) {
	// round(round(10000*0.9)*0.8) = round(9000*0.8) = 7200
	p := productWith(10000, 10, tier(3, 20))
	assert.Equal(t, 7200, UnitPrice(p, 3))

	// Below the tier threshold only the flat discount applies.
	assert.Equal(t, 9000, UnitPrice(p, 2))
}

func TestUnitPricePicksHighestSatisfiedTier(t *testing.T) {
	p := productWith(10000, 0, tier(3, 10), tier(6, 20), tier(12, 30))

	assert.Equal(t, 10000, UnitPrice(p, 2))
	assert.Equal(t, 9000, UnitPrice(p, 3))
	assert.Equal(t, 9000, UnitPrice(p, 5))
	assert.Equal(t, 8000, UnitPrice(p, 6))
	assert.Equal(t, 7000, UnitPrice(p, 12))
	assert.Equal(t, 7000, UnitPrice(p, 100))
}

func TestUnitPriceTierOrderDoesNotMatter(t *testing.T) {
	ascending := productWith(10000, 0, tier(3, 10), tier(6, 20))
	descending := productWith(10000, 0, tier(6, 20), tier(3, 10))

	for qty := 1; qty <= 10; qty++ {
		assert.Equal(t, UnitPrice(ascending, qty), UnitPrice(descending, qty), "qty=%d", qty)
	}
}

func TestUnitPriceRoundsHalfUpEachStep(t *testing.T) {
	// 1111 * 0.85 = 944.35 -> 944
	assert.Equal(t, 944, UnitPrice(productWith(1111, 15), 1))
	// 990 * 0.95 = 940.5 -> 941
	assert.Equal(t, 941, UnitPrice(productWith(990, 5), 1))
	// Compounded: round(round(999*0.9)*0.75) = round(899*0.75) = round(674.25) = 674
	assert.Equal(t, 674, UnitPrice(productWith(999, 10, tier(2, 25)), 2))
}

func TestUnitPriceNeverExceedsBaseAndNeverNegative(t *testing.T) {
	products := []models.Product{
		productWith(10000, 0),
		productWith(10000, 100),
		productWith(7990, 35, tier(2, 10), tier(5, 50)),
		productWith(1, 99, tier(2, 99)),
		productWith(0, 50),
	}
	for _, p := range products {
		for qty := 1; qty <= 20; qty++ {
			price := UnitPrice(p, qty)
			assert.GreaterOrEqual(t, price, 0)
			assert.LessOrEqual(t, price, p.PriceCLP)
		}
	}
}

func TestUnitPriceMonotoneAcrossTierBoundaries(t *testing.T) {
	// With tier percentages increasing in quantity, raising the quantity
	// can only hold or lower the unit price.
	p := productWith(15990, 10, tier(2, 5), tier(4, 12), tier(8, 25))
	prev := UnitPrice(p, 1)
	for qty := 2; qty <= 16; qty++ {
		current := UnitPrice(p, qty)
		assert.LessOrEqual(t, current, prev, "qty=%d", qty)
		prev = current
	}
}

func TestUnitPricePanicsOnInvalidInput(t *testing.T) {
	require.Panics(t, func() { UnitPrice(productWith(1000, 0), 0) })
	require.Panics(t, func() { UnitPrice(productWith(-1, 0), 1) })
}

func TestLineTotal(t *testing.T) {
	assert.Equal(t, 21600, LineTotal(7200, 3))
	assert.Equal(t, 0, LineTotal(0, 5))
}

func TestOrderTotal(t *testing.T) {
	lines := []Line{
		{UnitPriceCLP: 7200, Qty: 3},
		{UnitPriceCLP: 4990, Qty: 1},
	}
	assert.Equal(t, 7200*3+4990+3000, OrderTotal(lines, 3000))
	assert.Equal(t, 3000, OrderTotal(nil, 3000))
}
