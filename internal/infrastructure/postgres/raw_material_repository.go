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

var _ repository.RawMaterialRepository = (*RawMaterialRepo)(nil)

// RawMaterialRepo implementación de RawMaterialRepository.
type RawMaterialRepo struct {
	q Querier
}

// NewRawMaterialRepository construye el adaptador.
func NewRawMaterialRepository(q Querier) *RawMaterialRepo {
	return &RawMaterialRepo{q: q}
}

const materialColumns = `id, company_id, sku, name, unit, min_level, is_active, created_at, updated_at`

func scanMaterial(row pgx.Row) (*entity.RawMaterial, error) {
	var m entity.RawMaterial
	err := row.Scan(&m.ID, &m.CompanyID, &m.SKU, &m.Name, &m.Unit, &m.MinLevel, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create persiste la materia prima. SKU repetido en la empresa devuelve domain.ErrDuplicate.
func (r *RawMaterialRepo) Create(ctx context.Context, m *entity.RawMaterial) error {
	query := `
		INSERT INTO raw_materials (id, company_id, sku, name, unit, min_level, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.CompanyID, m.SKU, m.Name, m.Unit, m.MinLevel, m.IsActive, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert raw material: %w", err)
	}
	return nil
}

// GetByID obtiene una materia prima por ID.
func (r *RawMaterialRepo) GetByID(ctx context.Context, id string) (*entity.RawMaterial, error) {
	query := `SELECT ` + materialColumns + ` FROM raw_materials WHERE id = $1`
	m, err := scanMaterial(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get raw material: %w", err)
	}
	return m, nil
}

// Update actualiza datos descriptivos y nivel mínimo.
func (r *RawMaterialRepo) Update(ctx context.Context, m *entity.RawMaterial) error {
	query := `
		UPDATE raw_materials
		SET sku = $2, name = $3, unit = $4, min_level = $5, is_active = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, m.ID, m.SKU, m.Name, m.Unit, m.MinLevel, m.IsActive, m.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update raw material: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByCompany lista materias primas de la empresa con paginación.
func (r *RawMaterialRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.RawMaterial, error) {
	limit, offset = pageArgs(limit, offset)
	query := `
		SELECT ` + materialColumns + `
		FROM raw_materials
		WHERE company_id = $1
		ORDER BY name, id
		LIMIT $2 OFFSET $3`
	return r.list(ctx, query, companyID, limit, offset)
}

// ListActive todas las materias primas activas de la empresa.
func (r *RawMaterialRepo) ListActive(ctx context.Context, companyID string) ([]*entity.RawMaterial, error) {
	query := `
		SELECT ` + materialColumns + `
		FROM raw_materials
		WHERE company_id = $1 AND is_active
		ORDER BY name, id`
	return r.list(ctx, query, companyID)
}

func (r *RawMaterialRepo) list(ctx context.Context, query string, args ...any) ([]*entity.RawMaterial, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list raw materials: %w", err)
	}
	defer rows.Close()

	var list []*entity.RawMaterial
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, fmt.Errorf("scan raw material: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
