package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// DistributionFilter filtros de listado de traslados.
type DistributionFilter struct {
	CompanyID      string
	LocationID     string // origen o destino
	FromLocationID string
	ToLocationID   string
	MaterialID     string
	Status         string
	DateFrom       *time.Time
	DateTo         *time.Time
	Limit          int
	Offset         int
}

// DistributionStatRow agregado de traslados para una clave (ubicación o material).
type DistributionStatRow struct {
	Key      string
	Count    int
	Quantity decimal.Decimal
	Value    decimal.Decimal
}

// DistributionStats totales de traslados completados.
type DistributionStats struct {
	Totals         DistributionStatRow
	ByFromLocation []DistributionStatRow
	ByToLocation   []DistributionStatRow
	ByMaterial     []DistributionStatRow
}

// DistributionRepository define el puerto de persistencia para traslados.
// Los traslados nunca se borran; la cancelación solo cambia el estado.
type DistributionRepository interface {
	// NextSequence reserva el siguiente consecutivo del día para la empresa.
	NextSequence(ctx context.Context, companyID string, day time.Time) (int, error)
	Create(ctx context.Context, d *entity.Distribution) error
	GetByID(ctx context.Context, id string) (*entity.Distribution, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Distribution, error)
	MarkCancelled(ctx context.Context, d *entity.Distribution) error
	List(ctx context.Context, filter DistributionFilter) ([]*entity.Distribution, int, error)
	Stats(ctx context.Context, filter DistributionFilter) (*DistributionStats, error)
}
