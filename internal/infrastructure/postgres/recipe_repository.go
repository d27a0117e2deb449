package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.RecipeRepository = (*RecipeRepo)(nil)

// RecipeRepo recetas con sus ingredientes (tablas recipes y recipe_ingredients).
type RecipeRepo struct {
	q Querier
}

// NewRecipeRepository construye el adaptador.
func NewRecipeRepository(q Querier) *RecipeRepo {
	return &RecipeRepo{q: q}
}

const recipeColumns = `id, company_id, menu_item_id, name, is_active, created_at, updated_at`

func scanRecipe(row pgx.Row) (*entity.Recipe, error) {
	var rec entity.Recipe
	if err := row.Scan(&rec.ID, &rec.CompanyID, &rec.MenuItemID, &rec.Name, &rec.IsActive, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Create guarda la receta y sus ingredientes en una sola transacción.
// Una receta activa desactiva antes a las demás del mismo ítem.
func (r *RecipeRepo) Create(ctx context.Context, rec *entity.Recipe) error {
	return pgx.BeginFunc(ctx, r.q, func(tx pgx.Tx) error {
		if rec.IsActive {
			_, err := tx.Exec(ctx, `
				UPDATE recipes SET is_active = FALSE, updated_at = $3
				WHERE company_id = $1 AND menu_item_id = $2 AND is_active`,
				rec.CompanyID, rec.MenuItemID, rec.UpdatedAt)
			if err != nil {
				return fmt.Errorf("deactivate recipes: %w", err)
			}
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO recipes (`+recipeColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			rec.ID, rec.CompanyID, rec.MenuItemID, rec.Name, rec.IsActive, rec.CreatedAt, rec.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicate
			}
			return fmt.Errorf("insert recipe: %w", err)
		}

		batch := &pgx.Batch{}
		for i, ing := range rec.Ingredients {
			batch.Queue(`
				INSERT INTO recipe_ingredients (recipe_id, material_id, quantity, unit, position)
				VALUES ($1, $2, $3, $4, $5)`,
				rec.ID, ing.MaterialID, ing.Quantity, ing.Unit, i)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			if isUniqueViolation(err) {
				return domain.Invalid("insumo repetido en la receta")
			}
			return fmt.Errorf("insert recipe ingredients: %w", err)
		}
		return nil
	})
}

// GetByID receta con ingredientes.
func (r *RecipeRepo) GetByID(ctx context.Context, id string) (*entity.Recipe, error) {
	return r.getOne(ctx, `SELECT `+recipeColumns+` FROM recipes WHERE id = $1`, id)
}

// GetActiveByMenuItem receta activa del ítem del menú.
func (r *RecipeRepo) GetActiveByMenuItem(ctx context.Context, companyID, menuItemID string) (*entity.Recipe, error) {
	return r.getOne(ctx, `
		SELECT `+recipeColumns+`
		FROM recipes
		WHERE company_id = $1 AND menu_item_id = $2 AND is_active`, companyID, menuItemID)
}

// ListByCompany recetas de la empresa, más recientes primero.
func (r *RecipeRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Recipe, error) {
	limit, offset = pageArgs(limit, offset)
	rows, err := r.q.Query(ctx, `
		SELECT `+recipeColumns+`
		FROM recipes
		WHERE company_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	var list []*entity.Recipe
	for rows.Next() {
		rec, err := scanRecipe(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		list = append(list, rec)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}

	for _, rec := range list {
		if rec.Ingredients, err = r.ingredients(ctx, rec.ID); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (r *RecipeRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Recipe, error) {
	rec, err := scanRecipe(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	if rec.Ingredients, err = r.ingredients(ctx, rec.ID); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *RecipeRepo) ingredients(ctx context.Context, recipeID string) ([]entity.RecipeIngredient, error) {
	rows, err := r.q.Query(ctx, `
		SELECT material_id, quantity, unit
		FROM recipe_ingredients
		WHERE recipe_id = $1
		ORDER BY position`, recipeID)
	if err != nil {
		return nil, fmt.Errorf("list recipe ingredients: %w", err)
	}
	defer rows.Close()

	var out []entity.RecipeIngredient
	for rows.Next() {
		var ing entity.RecipeIngredient
		if err := rows.Scan(&ing.MaterialID, &ing.Quantity, &ing.Unit); err != nil {
			return nil, fmt.Errorf("scan recipe ingredient: %w", err)
		}
		out = append(out, ing)
	}
	return out, rows.Err()
}
