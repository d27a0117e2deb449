package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LocationInventory representa el stock actual de un material en una ubicación
// (vista materializada del libro stock_transactions).
type LocationInventory struct {
	CompanyID   string
	LocationID  string
	MaterialID  string
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal // costo promedio ponderado vigente
	ExpiryDate  *time.Time
	BatchNumber string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StockValue valor del stock al costo vigente.
func (l *LocationInventory) StockValue() decimal.Decimal {
	return l.Quantity.Mul(l.UnitCost)
}
