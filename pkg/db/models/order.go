package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/regaloamor/storefront-backend/pkg/enums"
)

// Order is a submitted purchase. Items and TotalCLP are an immutable snapshot
// captured at submission: the total is the amount the payment gateway was
// asked to charge, and later catalog or discount edits must never change it.
type Order struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CustomerID      uuid.UUID         `gorm:"column:cliente_id;type:uuid;not null" json:"cliente_id"`
	Customer        *Customer         `gorm:"foreignKey:CustomerID" json:"cliente,omitempty"`
	Status          enums.OrderStatus `gorm:"column:estado;not null;default:'pendiente_pago'" json:"estado"`
	Items           []OrderLineItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	SubtotalCLP     int               `gorm:"column:subtotal;not null" json:"subtotal"`
	ShippingCostCLP int               `gorm:"column:costo_envio;not null" json:"costo_envio"`
	TotalCLP        int               `gorm:"column:total;not null" json:"total"`
	DeliveryDate    string            `gorm:"column:fecha_envio;not null;default:''" json:"fecha_envio"`
	DeliveryWindow  string            `gorm:"column:horario_envio;not null;default:''" json:"horario_envio"`
	Address         string            `gorm:"column:direccion;not null;default:''" json:"direccion"`
	Commune         string            `gorm:"column:comuna;not null;default:''" json:"comuna"`
	Message         *string           `gorm:"column:mensaje_personalizacion" json:"mensaje_personalizacion,omitempty"`
	DesignType      *string           `gorm:"column:tipo_diseno" json:"tipo_diseno,omitempty"`
	ImageRef        *string           `gorm:"column:imagen_ref" json:"imagen_ref,omitempty"`
	StatusChangedAt time.Time         `gorm:"column:estado_cambiado_at;not null" json:"estado_cambiado_at"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Order) TableName() string { return "pedidos" }

// OrderLineItem is one snapshot row: product name and the unit price actually
// charged, denormalized so product edits cannot rewrite order history.
type OrderLineItem struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID      uuid.UUID  `gorm:"column:pedido_id;type:uuid;not null" json:"pedido_id"`
	ProductID    *uuid.UUID `gorm:"column:producto_id;type:uuid" json:"producto_id,omitempty"`
	Name         string     `gorm:"column:nombre;not null" json:"nombre"`
	Qty          int        `gorm:"column:cantidad;not null" json:"cantidad"`
	UnitPriceCLP int        `gorm:"column:precio_unitario;not null" json:"precio_unitario"`
	TotalCLP     int        `gorm:"column:total;not null" json:"total"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (OrderLineItem) TableName() string { return "pedido_items" }
