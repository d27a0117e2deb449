package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateLocationRequest entrada para crear una ubicación (tienda, cocina, bodega u obra).
type CreateLocationRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Type     string `json:"type" validate:"required,oneof=store kitchen warehouse site"`
	BranchID string `json:"branch_id" validate:"omitempty,max=100"`
	Address  string `json:"address" validate:"max=300"`
}

// LocationResponse salida de una ubicación.
type LocationResponse struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	BranchID  string    `json:"branch_id,omitempty"`
	Address   string    `json:"address,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LocationListResponse lista paginada de ubicaciones.
type LocationListResponse struct {
	Items []LocationResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// CreateMaterialRequest entrada para crear una materia prima.
type CreateMaterialRequest struct {
	SKU      string           `json:"sku" validate:"omitempty,max=100"`
	Name     string           `json:"name" validate:"required,min=1,max=200"`
	Unit     string           `json:"unit" validate:"required,max=20"`
	MinLevel *decimal.Decimal `json:"min_level" validate:"omitempty,gte=0"`
}

// UpdateMinLevelRequest fija o borra (null) el nivel mínimo de un material.
type UpdateMinLevelRequest struct {
	MinLevel *decimal.Decimal `json:"min_level" validate:"omitempty,gte=0"`
}

// MaterialResponse salida de una materia prima.
type MaterialResponse struct {
	ID        string           `json:"id"`
	CompanyID string           `json:"company_id"`
	SKU       string           `json:"sku,omitempty"`
	Name      string           `json:"name"`
	Unit      string           `json:"unit"`
	MinLevel  *decimal.Decimal `json:"min_level"`
	IsActive  bool             `json:"is_active"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// MaterialListResponse lista paginada de materiales.
type MaterialListResponse struct {
	Items []MaterialResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// RecipeIngredientRequest insumo por porción.
type RecipeIngredientRequest struct {
	MaterialID string          `json:"material_id" validate:"required"`
	Quantity   decimal.Decimal `json:"quantity" validate:"gt=0"`
	Unit       string          `json:"unit" validate:"max=20"`
}

// CreateRecipeRequest entrada para crear la receta de un ítem del menú.
// La nueva receta reemplaza a la activa del mismo ítem.
type CreateRecipeRequest struct {
	MenuItemID  string                    `json:"menu_item_id" validate:"required,max=100"`
	Name        string                    `json:"name" validate:"required,max=200"`
	Ingredients []RecipeIngredientRequest `json:"ingredients" validate:"required,min=1,dive"`
}

// RecipeIngredientResponse insumo de una receta.
type RecipeIngredientResponse struct {
	MaterialID string          `json:"material_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	Unit       string          `json:"unit,omitempty"`
}

// RecipeResponse salida de una receta.
type RecipeResponse struct {
	ID          string                     `json:"id"`
	CompanyID   string                     `json:"company_id"`
	MenuItemID  string                     `json:"menu_item_id"`
	Name        string                     `json:"name"`
	IsActive    bool                       `json:"is_active"`
	Ingredients []RecipeIngredientResponse `json:"ingredients"`
	CreatedAt   time.Time                  `json:"created_at"`
}

// RecipeListResponse lista paginada de recetas.
type RecipeListResponse struct {
	Items []RecipeResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}
