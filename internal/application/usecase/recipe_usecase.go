package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// RecipeUseCase casos de uso para recetas de ítems del menú.
type RecipeUseCase struct {
	repo         repository.RecipeRepository
	materialRepo repository.RawMaterialRepository
}

// NewRecipeUseCase construye el caso de uso.
func NewRecipeUseCase(repo repository.RecipeRepository, materialRepo repository.RawMaterialRepository) *RecipeUseCase {
	return &RecipeUseCase{repo: repo, materialRepo: materialRepo}
}

// Create registra la receta activa del ítem; la anterior queda inactiva.
// Todos los insumos deben existir en la empresa y no pueden repetirse.
func (uc *RecipeUseCase) Create(ctx context.Context, companyID string, in dto.CreateRecipeRequest) (*dto.RecipeResponse, error) {
	if len(in.Ingredients) == 0 {
		return nil, domain.Invalid("la receta debe tener al menos un insumo")
	}
	seen := make(map[string]bool, len(in.Ingredients))
	ingredients := make([]entity.RecipeIngredient, 0, len(in.Ingredients))
	for i, ing := range in.Ingredients {
		if !ing.Quantity.IsPositive() {
			return nil, domain.Invalid("ingredients[%d].quantity debe ser mayor que cero", i)
		}
		if seen[ing.MaterialID] {
			return nil, domain.Invalid("ingredients[%d]: material %s repetido", i, ing.MaterialID)
		}
		seen[ing.MaterialID] = true
		m, err := uc.materialRepo.GetByID(ctx, ing.MaterialID)
		if err != nil {
			return nil, err
		}
		if m == nil || m.CompanyID != companyID {
			return nil, fmt.Errorf("%w: material %s", domain.ErrNotFound, ing.MaterialID)
		}
		unit := ing.Unit
		if unit == "" {
			unit = m.Unit
		}
		ingredients = append(ingredients, entity.RecipeIngredient{
			MaterialID: ing.MaterialID,
			Quantity:   ing.Quantity,
			Unit:       unit,
		})
	}

	now := time.Now()
	recipe := &entity.Recipe{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		MenuItemID:  strings.TrimSpace(in.MenuItemID),
		Name:        strings.TrimSpace(in.Name),
		IsActive:    true,
		Ingredients: ingredients,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, recipe); err != nil {
		return nil, err
	}
	return toRecipeResponse(recipe), nil
}

// GetActiveByMenuItem receta activa del ítem del menú.
func (uc *RecipeUseCase) GetActiveByMenuItem(ctx context.Context, companyID, menuItemID string) (*dto.RecipeResponse, error) {
	recipe, err := uc.repo.GetActiveByMenuItem(ctx, companyID, menuItemID)
	if err != nil {
		return nil, err
	}
	if recipe == nil {
		return nil, domain.ErrNotFound
	}
	return toRecipeResponse(recipe), nil
}

// List lista recetas por empresa con paginación.
func (uc *RecipeUseCase) List(ctx context.Context, companyID string, limit, offset int) (*dto.RecipeListResponse, error) {
	list, err := uc.repo.ListByCompany(ctx, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.RecipeResponse, 0, len(list))
	for _, r := range list {
		items = append(items, *toRecipeResponse(r))
	}
	return &dto.RecipeListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func toRecipeResponse(r *entity.Recipe) *dto.RecipeResponse {
	if r == nil {
		return nil
	}
	ingredients := make([]dto.RecipeIngredientResponse, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		ingredients = append(ingredients, dto.RecipeIngredientResponse{
			MaterialID: ing.MaterialID,
			Quantity:   ing.Quantity,
			Unit:       ing.Unit,
		})
	}
	return &dto.RecipeResponse{
		ID:          r.ID,
		CompanyID:   r.CompanyID,
		MenuItemID:  r.MenuItemID,
		Name:        r.Name,
		IsActive:    r.IsActive,
		Ingredients: ingredients,
		CreatedAt:   r.CreatedAt,
	}
}
