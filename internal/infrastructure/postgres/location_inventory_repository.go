package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.LocationInventoryRepository = (*LocationInventoryRepo)(nil)

// LocationInventoryRepo implementación de LocationInventoryRepository (usable con pool o tx).
type LocationInventoryRepo struct {
	q Querier
}

// NewLocationInventoryRepository construye el adaptador.
func NewLocationInventoryRepository(q Querier) *LocationInventoryRepo {
	return &LocationInventoryRepo{q: q}
}

const inventoryColumns = `company_id, location_id, material_id, quantity, unit_cost, expiry_date, batch_number, created_at, updated_at`

func scanInventory(row pgx.Row) (*entity.LocationInventory, error) {
	var inv entity.LocationInventory
	err := row.Scan(&inv.CompanyID, &inv.LocationID, &inv.MaterialID, &inv.Quantity, &inv.UnitCost,
		&inv.ExpiryDate, &inv.BatchNumber, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Get obtiene el stock de un material en una ubicación sin bloquear.
func (r *LocationInventoryRepo) Get(ctx context.Context, locationID, materialID string) (*entity.LocationInventory, error) {
	query := `SELECT ` + inventoryColumns + ` FROM location_inventories WHERE location_id = $1 AND material_id = $2`
	inv, err := scanInventory(r.q.QueryRow(ctx, query, locationID, materialID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location inventory: %w", err)
	}
	return inv, nil
}

// GetForUpdate bloquea la fila (SELECT ... FOR UPDATE). Si no existe inserta una fila en cero
// y la bloquea, así dos transacciones concurrentes sobre un par nuevo también se serializan.
// Si la transacción termina en Rollback la fila en cero desaparece con ella.
func (r *LocationInventoryRepo) GetForUpdate(ctx context.Context, companyID, locationID, materialID string) (*entity.LocationInventory, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO location_inventories (company_id, location_id, material_id, quantity, unit_cost)
		VALUES ($1, $2, $3, 0, 0)
		ON CONFLICT (location_id, material_id) DO NOTHING`,
		companyID, locationID, materialID,
	)
	if err != nil {
		return nil, fmt.Errorf("ensure location inventory: %w", err)
	}
	query := `
		SELECT ` + inventoryColumns + `
		FROM location_inventories
		WHERE location_id = $1 AND material_id = $2 AND company_id = $3
		FOR UPDATE`
	inv, err := scanInventory(r.q.QueryRow(ctx, query, locationID, materialID, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location inventory for update: %w", err)
	}
	return inv, nil
}

// Upsert crea o actualiza la fila de stock.
func (r *LocationInventoryRepo) Upsert(ctx context.Context, inv *entity.LocationInventory) error {
	query := `
		INSERT INTO location_inventories (company_id, location_id, material_id, quantity, unit_cost, expiry_date, batch_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (location_id, material_id) DO UPDATE SET
			quantity = EXCLUDED.quantity,
			unit_cost = EXCLUDED.unit_cost,
			expiry_date = EXCLUDED.expiry_date,
			batch_number = EXCLUDED.batch_number,
			updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query,
		inv.CompanyID, inv.LocationID, inv.MaterialID, inv.Quantity, inv.UnitCost,
		inv.ExpiryDate, inv.BatchNumber, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert location inventory: %w", err)
	}
	return nil
}

// ListByLocation stock de todos los materiales de una ubicación.
func (r *LocationInventoryRepo) ListByLocation(ctx context.Context, companyID, locationID string) ([]*entity.LocationInventory, error) {
	query := `
		SELECT ` + inventoryColumns + `
		FROM location_inventories
		WHERE company_id = $1 AND location_id = $2
		ORDER BY material_id`
	rows, err := r.q.Query(ctx, query, companyID, locationID)
	if err != nil {
		return nil, fmt.Errorf("list location inventory: %w", err)
	}
	defer rows.Close()

	var list []*entity.LocationInventory
	for rows.Next() {
		inv, err := scanInventory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan location inventory: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

// TotalsByMaterial suma de cantidades por material (toda la empresa o una ubicación).
func (r *LocationInventoryRepo) TotalsByMaterial(ctx context.Context, companyID, locationID string) (map[string]decimal.Decimal, error) {
	query := `
		SELECT material_id, SUM(quantity)
		FROM location_inventories
		WHERE company_id = $1 AND ($2::text = '' OR location_id = $2)
		GROUP BY material_id`
	rows, err := r.q.Query(ctx, query, companyID, locationID)
	if err != nil {
		return nil, fmt.Errorf("totals by material: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]decimal.Decimal)
	for rows.Next() {
		var materialID string
		var total decimal.Decimal
		if err := rows.Scan(&materialID, &total); err != nil {
			return nil, fmt.Errorf("scan totals: %w", err)
		}
		totals[materialID] = total
	}
	return totals, rows.Err()
}
