// Package cart models the in-session cart aggregate. A cart never caches
// prices: every read re-derives unit prices from the catalog snapshot it was
// built against, which the callers fetch fresh per request.
package cart

import (
	"github.com/google/uuid"

	"github.com/regaloamor/storefront-backend/internal/pricing"
	"github.com/regaloamor/storefront-backend/pkg/db/models"
)

// Line is one priced cart entry.
type Line struct {
	ProductID    uuid.UUID
	Name         string
	Qty          int
	UnitPriceCLP int
	TotalCLP     int
}

type entry struct {
	productID uuid.UUID
	qty       int
}

// Cart accumulates product quantities in insertion order. Insertion order is
// display-only; pricing is order-independent.
type Cart struct {
	catalog map[uuid.UUID]models.Product
	entries []entry
}

// New builds a cart bound to the current catalog state. Only products present
// in the catalog can enter the cart.
func New(catalog map[uuid.UUID]models.Product) *Cart {
	if catalog == nil {
		catalog = map[uuid.UUID]models.Product{}
	}
	return &Cart{catalog: catalog}
}

// Add increments the product's quantity by one, inserting a new line at
// quantity one when absent. Unknown or inactive products are a silent no-op.
func (c *Cart) Add(productID uuid.UUID) {
	c.SetQuantity(productID, 1)
}

// SetQuantity adjusts the product's quantity by delta. A resulting quantity
// of zero or less removes the line. Unknown products are a silent no-op.
func (c *Cart) SetQuantity(productID uuid.UUID, delta int) {
	product, ok := c.catalog[productID]
	if !ok || !product.Active {
		return
	}

	for i := range c.entries {
		if c.entries[i].productID != productID {
			continue
		}
		c.entries[i].qty += delta
		if c.entries[i].qty <= 0 {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
		}
		return
	}

	if delta > 0 {
		c.entries = append(c.entries, entry{productID: productID, qty: delta})
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.entries = nil
}

// IsEmpty reports whether the cart holds no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.entries) == 0
}

// Lines prices every entry against the bound catalog. Unit prices are always
// recomputed here; a client-supplied price never survives into a line.
func (c *Cart) Lines() []Line {
	lines := make([]Line, 0, len(c.entries))
	for _, e := range c.entries {
		product := c.catalog[e.productID]
		unitPrice := pricing.UnitPrice(product, e.qty)
		lines = append(lines, Line{
			ProductID:    e.productID,
			Name:         product.Name,
			Qty:          e.qty,
			UnitPriceCLP: unitPrice,
			TotalCLP:     pricing.LineTotal(unitPrice, e.qty),
		})
	}
	return lines
}

// Total recomputes the order total from current catalog state plus shipping.
func (c *Cart) Total(shippingCostCLP int) int {
	lines := c.Lines()
	priced := make([]pricing.Line, 0, len(lines))
	for _, line := range lines {
		priced = append(priced, pricing.Line{UnitPriceCLP: line.UnitPriceCLP, Qty: line.Qty})
	}
	return pricing.OrderTotal(priced, shippingCostCLP)
}
