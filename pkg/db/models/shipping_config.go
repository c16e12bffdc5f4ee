package models

import (
	"time"

	"github.com/lib/pq"
)

// ShippingConfig is a process-wide singleton row (ID 1). Read by the checkout
// flow to populate delivery choices, written only by an administrator.
type ShippingConfig struct {
	ID          int            `gorm:"column:id;primaryKey" json:"-"`
	OpenDays    pq.StringArray `gorm:"column:dias_abiertos;type:text[]" json:"dias_abiertos"`
	TimeWindows pq.StringArray `gorm:"column:horarios;type:text[]" json:"horarios"`
	Communes    pq.StringArray `gorm:"column:comunas;type:text[]" json:"comunas"`
	BaseCostCLP int            `gorm:"column:costo_base;not null" json:"costo_base"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (ShippingConfig) TableName() string { return "config_envios" }
