package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro de stock.
const (
	MovementKindInward     = "inward"     // entrada (compra, GRN, traslado recibido)
	MovementKindOutward    = "outward"    // salida (traslado enviado, venta)
	MovementKindTransfer   = "transfer"   // traslado directo entre ubicaciones
	MovementKindAdjustment = "adjustment" // ajuste manual
	MovementKindConsumed   = "consumed"   // consumo en cocina u obra
)

// Sentido del efecto sobre la cantidad disponible.
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// ValidMovementKind indica si kind es un tipo de movimiento conocido.
func ValidMovementKind(kind string) bool {
	switch kind {
	case MovementKindInward, MovementKindOutward, MovementKindTransfer, MovementKindAdjustment, MovementKindConsumed:
		return true
	}
	return false
}

// StockTransaction es una entrada inmutable del libro de stock.
// Quantity siempre es positiva; Direction indica si suma o resta.
// Nunca se actualiza ni se elimina: una cancelación agrega entradas inversas.
type StockTransaction struct {
	ID                    string
	CompanyID             string
	Kind                  string
	Direction             string
	LocationID            string
	MaterialID            string
	Quantity              decimal.Decimal
	UnitCost              decimal.Decimal
	TotalCost             decimal.Decimal
	PreviousQuantity      decimal.Decimal
	NewQuantity           decimal.Decimal
	Reference             string
	Source                string
	Notes                 string
	DestinationLocationID string
	DistributionID        string
	DistributionNumber    string
	OrderID               string
	RecipeID              string
	ExpiryDate            *time.Time
	BatchNumber           string
	CreatedAt             time.Time
	CreatedBy             string
}

// SignedQuantity efecto con signo sobre la cantidad de la ubicación.
func (t *StockTransaction) SignedQuantity() decimal.Decimal {
	if t.Direction == DirectionOut {
		return t.Quantity.Neg()
	}
	return t.Quantity
}
