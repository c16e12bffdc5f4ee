package cart

import (
	"context"

	"github.com/google/uuid"

	"github.com/regaloamor/storefront-backend/pkg/db/models"
	pkgerrors "github.com/regaloamor/storefront-backend/pkg/errors"
)

// ProductSource yields the current catalog state for a set of products.
type ProductSource interface {
	FindActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

// ShippingSource yields the currently configured base shipping cost.
type ShippingSource interface {
	BaseCostCLP(ctx context.Context) (int, error)
}

// QuoteItem is one requested cart line. Quantities at or below zero drop the
// line; unknown products drop silently.
type QuoteItem struct {
	ProductID uuid.UUID `json:"producto_id"`
	Qty       int       `json:"cantidad"`
}

// Quote is a fully server-priced view of a cart.
type Quote struct {
	Lines       []Line `json:"items"`
	SubtotalCLP int    `json:"subtotal"`
	ShippingCLP int    `json:"costo_envio"`
	TotalCLP    int    `json:"total"`
}

// Service prices carts against live catalog and shipping data.
type Service interface {
	Quote(ctx context.Context, items []QuoteItem) (*Quote, error)

	// Build assembles a cart aggregate from request lines against the
	// current catalog. Checkout reuses this so submissions and quotes
	// price identically.
	Build(ctx context.Context, items []QuoteItem) (*Cart, error)
}

type service struct {
	products ProductSource
	shipping ShippingSource
}

func NewService(products ProductSource, shipping ShippingSource) (Service, error) {
	if products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart service requires a product source")
	}
	if shipping == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart service requires a shipping source")
	}
	return &service{products: products, shipping: shipping}, nil
}

func (s *service) Build(ctx context.Context, items []QuoteItem) (*Cart, error) {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	catalog := map[uuid.UUID]models.Product{}
	if len(ids) > 0 {
		found, err := s.products.FindActiveByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			catalog[p.ID] = p
		}
	}

	c := New(catalog)
	for _, item := range items {
		c.SetQuantity(item.ProductID, item.Qty)
	}
	return c, nil
}

func (s *service) Quote(ctx context.Context, items []QuoteItem) (*Quote, error) {
	c, err := s.Build(ctx, items)
	if err != nil {
		return nil, err
	}

	shippingCost, err := s.shipping.BaseCostCLP(ctx)
	if err != nil {
		return nil, err
	}

	lines := c.Lines()
	subtotal := 0
	for _, line := range lines {
		subtotal += line.TotalCLP
	}

	shipping := shippingCost
	if c.IsEmpty() {
		shipping = 0
	}

	return &Quote{
		Lines:       lines,
		SubtotalCLP: subtotal,
		ShippingCLP: shipping,
		TotalCLP:    subtotal + shipping,
	}, nil
}
