package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// LocationRepository define el puerto de persistencia para ubicaciones (DIP).
// Los métodos Get* devuelven (nil, nil) cuando el registro no existe.
type LocationRepository interface {
	Create(ctx context.Context, location *entity.Location) error
	GetByID(ctx context.Context, id string) (*entity.Location, error)
	GetByBranch(ctx context.Context, companyID, branchID string) (*entity.Location, error)
	FirstActive(ctx context.Context, companyID string) (*entity.Location, error)
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Location, error)
	// Deactivate da de baja la ubicación y borra sus filas de inventario en cero.
	// Devuelve domain.ErrConflict si alguna fila tiene cantidad distinta de cero.
	Deactivate(ctx context.Context, id string) error
}
