package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/regaloamor/storefront-backend/pkg/db"
	"github.com/regaloamor/storefront-backend/pkg/db/models"
	pkgerrors "github.com/regaloamor/storefront-backend/pkg/errors"
)

// Service exposes catalog reads plus admin product management.
type Service interface {
	ListCatalog(ctx context.Context) ([]models.Product, error)
	ListAll(ctx context.Context) ([]models.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Create(ctx context.Context, input CreateProductInput) (*models.Product, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// QuantityDiscountInput defines one quantity tier: ordering MinQty or more
// units unlocks Percent off the unit price.
type QuantityDiscountInput struct {
	MinQty  int `json:"cantidad" validate:"required"`
	Percent int `json:"porcentaje" validate:"required"`
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name              string                  `json:"nombre" validate:"required"`
	Description       *string                 `json:"descripcion"`
	Category          string                  `json:"categoria"`
	PriceCLP          int                     `json:"precio" validate:"required,gt=0"`
	Stock             int                     `json:"stock" validate:"gte=0"`
	DiscountPercent   int                     `json:"descuento" validate:"gte=0,lte=100"`
	ImageURL          *string                 `json:"imagen_url"`
	Active            *bool                   `json:"activo"`
	QuantityDiscounts []QuantityDiscountInput `json:"descuentos_cantidad" validate:"dive"`
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name              *string                  `json:"nombre"`
	Description       *string                  `json:"descripcion"`
	Category          *string                  `json:"categoria"`
	PriceCLP          *int                     `json:"precio"`
	Stock             *int                     `json:"stock"`
	DiscountPercent   *int                     `json:"descuento"`
	ImageURL          *string                  `json:"imagen_url"`
	Active            *bool                    `json:"activo"`
	QuantityDiscounts *[]QuantityDiscountInput `json:"descuentos_cantidad"`
}

type service struct {
	repo     *Repository
	dbClient *db.Client
}

// NewService constructs the catalog service.
func NewService(repo *Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

// ListCatalog returns the public catalog of active products.
func (s *service) ListCatalog(ctx context.Context) ([]models.Product, error) {
	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list active products")
	}
	return rows, nil
}

// ListAll returns the full catalog for the admin panel.
func (s *service) ListAll(ctx context.Context) ([]models.Product, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}
	return rows, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	return product, nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	if err := validatePrice(input.PriceCLP); err != nil {
		return nil, err
	}
	if err := validatePercent(input.DiscountPercent, true); err != nil {
		return nil, err
	}
	if err := validateTiers(input.QuantityDiscounts); err != nil {
		return nil, err
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}

	product := &models.Product{
		Name:            strings.TrimSpace(input.Name),
		Description:     input.Description,
		Category:        strings.TrimSpace(input.Category),
		PriceCLP:        input.PriceCLP,
		Stock:           input.Stock,
		DiscountPercent: input.DiscountPercent,
		ImageURL:        input.ImageURL,
		Active:          active,
	}
	for _, tier := range input.QuantityDiscounts {
		product.QuantityDiscounts = append(product.QuantityDiscounts, models.ProductQuantityDiscount{
			MinQty:  tier.MinQty,
			Percent: tier.Percent,
		})
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}
	return s.Get(ctx, created.ID)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	if input.PriceCLP != nil {
		if err := validatePrice(*input.PriceCLP); err != nil {
			return nil, err
		}
	}
	if input.DiscountPercent != nil {
		if err := validatePercent(*input.DiscountPercent, true); err != nil {
			return nil, err
		}
	}
	if input.QuantityDiscounts != nil {
		if err := validateTiers(*input.QuantityDiscounts); err != nil {
			return nil, err
		}
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		applyUpdate(product, input)
		if _, err := txRepo.Update(ctx, product); err != nil {
			return err
		}

		if input.QuantityDiscounts != nil {
			tiers := make([]models.ProductQuantityDiscount, len(*input.QuantityDiscounts))
			for i, tier := range *input.QuantityDiscounts {
				tiers[i] = models.ProductQuantityDiscount{
					ProductID: product.ID,
					MinQty:    tier.MinQty,
					Percent:   tier.Percent,
				}
			}
			if err := txRepo.ReplaceQuantityDiscounts(ctx, product.ID, tiers); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
	}

	return s.Get(ctx, product.ID)
}

// Deactivate hides a product from the catalog without deleting the row.
func (s *service) Deactivate(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: deactivate product")
	}
	return nil
}

func validatePrice(value int) error {
	if value <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "precio must be positive")
	}
	return nil
}

func validatePercent(value int, allowZero bool) error {
	if value > 100 || value < 0 || (value == 0 && !allowZero) {
		return pkgerrors.New(pkgerrors.CodeValidation, "porcentaje must be between 1 and 100")
	}
	return nil
}

func validateTiers(tiers []QuantityDiscountInput) error {
	seen := make(map[int]struct{}, len(tiers))
	for _, tier := range tiers {
		if tier.MinQty < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cantidad must be at least 1")
		}
		if err := validatePercent(tier.Percent, false); err != nil {
			return err
		}
		if _, ok := seen[tier.MinQty]; ok {
			return pkgerrors.New(pkgerrors.CodeValidation, "duplicate tier cantidad")
		}
		seen[tier.MinQty] = struct{}{}
	}
	return nil
}

func applyUpdate(product *models.Product, input UpdateProductInput) {
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.Category != nil {
		product.Category = strings.TrimSpace(*input.Category)
	}
	if input.PriceCLP != nil {
		product.PriceCLP = *input.PriceCLP
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.DiscountPercent != nil {
		product.DiscountPercent = *input.DiscountPercent
	}
	if input.ImageURL != nil {
		product.ImageURL = input.ImageURL
	}
	if input.Active != nil {
		product.Active = *input.Active
	}
}
