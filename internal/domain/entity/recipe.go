package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recipe receta de un ítem del menú: lista de insumos por porción.
type Recipe struct {
	ID          string
	CompanyID   string
	MenuItemID  string
	Name        string
	IsActive    bool
	Ingredients []RecipeIngredient
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RecipeIngredient cantidad de un material requerida por porción.
type RecipeIngredient struct {
	MaterialID string
	Quantity   decimal.Decimal
	Unit       string
}
