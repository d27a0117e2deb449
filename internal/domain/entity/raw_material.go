package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawMaterial materia prima o insumo controlado por el libro de stock.
// MinLevel nil significa que no se configuró nivel mínimo.
type RawMaterial struct {
	ID        string
	CompanyID string
	SKU       string
	Name      string
	Unit      string // kg, lt, und, m3...
	MinLevel  *decimal.Decimal
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
