package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer identity is keyed by national tax ID (RUT); every order submission
// upserts the row. Loyalty points accumulate on paid orders only.
type Customer struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RUT           string    `gorm:"column:rut;not null;uniqueIndex" json:"rut"`
	Name          string    `gorm:"column:nombre;not null" json:"nombre"`
	Email         string    `gorm:"column:email;not null" json:"email"`
	PhoneWhatsApp string    `gorm:"column:telefono_wsp;not null;default:''" json:"telefono_wsp"`
	PhoneCall     string    `gorm:"column:telefono_llamada;not null;default:''" json:"telefono_llamada"`
	Address       string    `gorm:"column:direccion;not null;default:''" json:"direccion"`
	Commune       string    `gorm:"column:comuna;not null;default:''" json:"comuna"`
	LoyaltyPoints int       `gorm:"column:puntos;not null;default:0" json:"puntos"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Customer) TableName() string { return "clientes" }
