package shipping

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/regaloamor/storefront-backend/pkg/db/models"
	pkgerrors "github.com/regaloamor/storefront-backend/pkg/errors"
)

// UpdateConfigInput holds optional mutation values for the delivery setup.
type UpdateConfigInput struct {
	OpenDays    *[]string `json:"dias_abiertos"`
	TimeWindows *[]string `json:"horarios"`
	Communes    *[]string `json:"comunas"`
	BaseCostCLP *int      `json:"costo_base"`
}

// Service exposes delivery configuration reads and admin updates.
type Service interface {
	Get(ctx context.Context) (*models.ShippingConfig, error)
	Update(ctx context.Context, input UpdateConfigInput) (*models.ShippingConfig, error)

	// BaseCostCLP is the narrow read used when pricing carts. It falls
	// back to the configured default when no row exists yet.
	BaseCostCLP(ctx context.Context) (int, error)
}

type service struct {
	repo           *Repository
	defaultCostCLP int
}

func NewService(repo *Repository, defaultCostCLP int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("shipping repository required")
	}
	if defaultCostCLP < 0 {
		return nil, fmt.Errorf("default shipping cost must be non-negative")
	}
	return &service{repo: repo, defaultCostCLP: defaultCostCLP}, nil
}

func (s *service) Get(ctx context.Context) (*models.ShippingConfig, error) {
	cfg, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.ShippingConfig{BaseCostCLP: s.defaultCostCLP}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load shipping config")
	}
	return cfg, nil
}

func (s *service) BaseCostCLP(ctx context.Context) (int, error) {
	cfg, err := s.Get(ctx)
	if err != nil {
		return 0, err
	}
	return cfg.BaseCostCLP, nil
}

func (s *service) Update(ctx context.Context, input UpdateConfigInput) (*models.ShippingConfig, error) {
	if input.BaseCostCLP != nil && *input.BaseCostCLP < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "costo_base must be non-negative")
	}
	if input.Communes != nil {
		for _, commune := range *input.Communes {
			if strings.TrimSpace(commune) == "" {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "comunas cannot contain empty entries")
			}
		}
	}

	cfg, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	if input.OpenDays != nil {
		cfg.OpenDays = append([]string(nil), *input.OpenDays...)
	}
	if input.TimeWindows != nil {
		cfg.TimeWindows = append([]string(nil), *input.TimeWindows...)
	}
	if input.Communes != nil {
		cfg.Communes = append([]string(nil), *input.Communes...)
	}
	if input.BaseCostCLP != nil {
		cfg.BaseCostCLP = *input.BaseCostCLP
	}

	saved, err := s.repo.Save(ctx, cfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save shipping config")
	}
	return saved, nil
}
