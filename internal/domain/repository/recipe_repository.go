package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// RecipeRepository puerto de persistencia de recetas.
type RecipeRepository interface {
	// Create guarda la receta con sus ingredientes; si está activa desactiva las demás del mismo ítem.
	Create(ctx context.Context, recipe *entity.Recipe) error
	GetByID(ctx context.Context, id string) (*entity.Recipe, error)
	GetActiveByMenuItem(ctx context.Context, companyID, menuItemID string) (*entity.Recipe, error)
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Recipe, error)
}
