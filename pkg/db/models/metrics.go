package models

import (
	"time"

	"github.com/google/uuid"
)

// DailyMetric aggregates confirmed revenue per calendar day. One row per day,
// written on payment confirmation only.
type DailyMetric struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Date       string    `gorm:"column:fecha;not null;uniqueIndex" json:"fecha"`
	RevenueCLP int       `gorm:"column:ingresos;not null;default:0" json:"ingresos"`
	OrderCount int       `gorm:"column:pedidos;not null;default:0" json:"pedidos"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (DailyMetric) TableName() string { return "metricas_diarias" }

// SIIPayment tracks whether the month's estimated VAT was declared and paid.
type SIIPayment struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Month     string     `gorm:"column:mes;not null;uniqueIndex" json:"mes"`
	AmountCLP int        `gorm:"column:monto;not null;default:0" json:"monto"`
	Paid      bool       `gorm:"column:pagado;not null;default:false" json:"pagado"`
	PaidAt    *time.Time `gorm:"column:pagado_at" json:"pagado_at,omitempty"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (SIIPayment) TableName() string { return "sii_pagos" }
