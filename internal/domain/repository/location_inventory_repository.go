package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// LocationInventoryRepository define el puerto para consultar/actualizar el stock por ubicación+material.
// Usado dentro de transacciones para garantizar consistencia; la única escritura la hace el Mutator.
type LocationInventoryRepository interface {
	Get(ctx context.Context, locationID, materialID string) (*entity.LocationInventory, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE). Devuelve nil si la fila no existe.
	GetForUpdate(ctx context.Context, companyID, locationID, materialID string) (*entity.LocationInventory, error)
	Upsert(ctx context.Context, inv *entity.LocationInventory) error
	ListByLocation(ctx context.Context, companyID, locationID string) ([]*entity.LocationInventory, error)
	// TotalsByMaterial suma la cantidad por material en todas las ubicaciones de la empresa,
	// o solo en locationID si no es vacío.
	TotalsByMaterial(ctx context.Context, companyID, locationID string) (map[string]decimal.Decimal, error)
}
