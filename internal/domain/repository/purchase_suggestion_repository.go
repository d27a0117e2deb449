package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// PurchaseSuggestionRepository puerto de persistencia de sugerencias de compra.
type PurchaseSuggestionRepository interface {
	FindOpenByMaterial(ctx context.Context, companyID, materialID string) (*entity.PurchaseSuggestion, error)
	// Create devuelve domain.ErrDuplicate si ya existe una sugerencia abierta para el material.
	Create(ctx context.Context, s *entity.PurchaseSuggestion) error
	ListByCompany(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.PurchaseSuggestion, error)
}
