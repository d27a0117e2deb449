package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un traslado.
const (
	DistributionStatusCompleted = "Completed"
	DistributionStatusCancelled = "Cancelled"
)

// Distribution es el registro de un traslado de material entre dos ubicaciones,
// con las cantidades antes/después de ambos lados.
type Distribution struct {
	ID             string
	CompanyID      string
	Number         string // DIST-YYYYMMDD-NNNN
	FromLocationID string
	ToLocationID   string
	MaterialID     string
	Quantity       decimal.Decimal
	Unit           string
	CostPrice      decimal.Decimal
	TotalCost      decimal.Decimal
	Status         string
	FromBefore     decimal.Decimal
	FromAfter      decimal.Decimal
	ToBefore       decimal.Decimal
	ToAfter        decimal.Decimal
	Notes          string
	Date           time.Time
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	CancelledAt    *time.Time
	CancelledBy    string
	CancelReason   string
}

// IsCancelled indica si el traslado ya fue revertido.
func (d *Distribution) IsCancelled() bool {
	return d.Status == DistributionStatusCancelled
}
