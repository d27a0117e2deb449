package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)

// LocationRepo implementación de LocationRepository (usable con pool o tx).
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

const locationColumns = `id, company_id, name, type, branch_id, address, is_active, created_at, updated_at`

func scanLocation(row pgx.Row) (*entity.Location, error) {
	var l entity.Location
	err := row.Scan(&l.ID, &l.CompanyID, &l.Name, &l.Type, &l.BranchID, &l.Address, &l.IsActive, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Create persiste una nueva ubicación.
func (r *LocationRepo) Create(ctx context.Context, l *entity.Location) error {
	query := `
		INSERT INTO locations (id, company_id, name, type, branch_id, address, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		l.ID, l.CompanyID, l.Name, l.Type, l.BranchID, l.Address, l.IsActive, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert location: %w", err)
	}
	return nil
}

// GetByID obtiene una ubicación por ID.
func (r *LocationRepo) GetByID(ctx context.Context, id string) (*entity.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE id = $1`
	l, err := scanLocation(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return l, nil
}

// GetByBranch ubicación activa enlazada a la sucursal.
func (r *LocationRepo) GetByBranch(ctx context.Context, companyID, branchID string) (*entity.Location, error) {
	query := `
		SELECT ` + locationColumns + `
		FROM locations
		WHERE company_id = $1 AND branch_id = $2 AND is_active
		ORDER BY created_at
		LIMIT 1`
	l, err := scanLocation(r.q.QueryRow(ctx, query, companyID, branchID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location by branch: %w", err)
	}
	return l, nil
}

// FirstActive primera ubicación activa de la empresa por fecha de creación.
func (r *LocationRepo) FirstActive(ctx context.Context, companyID string) (*entity.Location, error) {
	query := `
		SELECT ` + locationColumns + `
		FROM locations
		WHERE company_id = $1 AND is_active
		ORDER BY created_at, id
		LIMIT 1`
	l, err := scanLocation(r.q.QueryRow(ctx, query, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("first active location: %w", err)
	}
	return l, nil
}

// ListByCompany lista ubicaciones de una empresa con paginación.
func (r *LocationRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Location, error) {
	limit, offset = pageArgs(limit, offset)
	query := `
		SELECT ` + locationColumns + `
		FROM locations
		WHERE company_id = $1
		ORDER BY created_at, id
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	var list []*entity.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// Deactivate da de baja la ubicación si todas sus filas de inventario están en cero.
func (r *LocationRepo) Deactivate(ctx context.Context, id string) error {
	return pgx.BeginFunc(ctx, r.q, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT quantity FROM location_inventories
			WHERE location_id = $1
			FOR UPDATE`, id)
		if err != nil {
			return fmt.Errorf("lock location stock: %w", err)
		}
		nonZero := false
		for rows.Next() {
			var qty decimal.Decimal
			if err := rows.Scan(&qty); err != nil {
				rows.Close()
				return fmt.Errorf("scan location stock: %w", err)
			}
			if !qty.IsZero() {
				nonZero = true
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("lock location stock: %w", err)
		}
		if nonZero {
			return fmt.Errorf("%w: la ubicación tiene stock distinto de cero", domain.ErrConflict)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM location_inventories WHERE location_id = $1`, id); err != nil {
			return fmt.Errorf("delete location inventories: %w", err)
		}
		tag, err := tx.Exec(ctx, `UPDATE locations SET is_active = FALSE, updated_at = now() WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("deactivate location: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}
