package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// RawMaterialRepository define el puerto de persistencia para materias primas (DIP).
type RawMaterialRepository interface {
	Create(ctx context.Context, material *entity.RawMaterial) error
	GetByID(ctx context.Context, id string) (*entity.RawMaterial, error)
	Update(ctx context.Context, material *entity.RawMaterial) error
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.RawMaterial, error)
	ListActive(ctx context.Context, companyID string) ([]*entity.RawMaterial, error)
}
