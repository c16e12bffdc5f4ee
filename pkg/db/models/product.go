package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalog listing. Deactivation is a soft delete: the row stays
// so historical order snapshots keep referring to a real product.
type Product struct {
	ID                uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name              string                    `gorm:"column:nombre;not null" json:"nombre"`
	Description       *string                   `gorm:"column:descripcion" json:"descripcion,omitempty"`
	Category          string                    `gorm:"column:categoria;not null;default:''" json:"categoria"`
	PriceCLP          int                       `gorm:"column:precio;not null" json:"precio"`
	Stock             int                       `gorm:"column:stock;not null;default:0" json:"stock"`
	DiscountPercent   int                       `gorm:"column:descuento;not null;default:0" json:"descuento"`
	ImageURL          *string                   `gorm:"column:imagen_url" json:"imagen_url,omitempty"`
	Active            bool                      `gorm:"column:activo;not null;default:true" json:"activo"`
	QuantityDiscounts []ProductQuantityDiscount `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"descuentos_cantidad"`
	CreatedAt         time.Time                 `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time                 `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName maps to the storefront's legacy table name.
func (Product) TableName() string { return "productos" }

// ProductQuantityDiscount is one quantity-break tier: ordering MinQty units or
// more unlocks Percent off the (already flat-discounted) unit price.
type ProductQuantityDiscount struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductID uuid.UUID `gorm:"column:producto_id;type:uuid;not null" json:"producto_id"`
	MinQty    int       `gorm:"column:cantidad;not null" json:"cantidad"`
	Percent   int       `gorm:"column:porcentaje;not null" json:"porcentaje"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (ProductQuantityDiscount) TableName() string { return "producto_descuentos" }
