package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.StockTransactionRepository = (*StockTransactionRepo)(nil)

// StockTransactionRepo libro de stock en PostgreSQL. Solo INSERT; un trigger rechaza UPDATE/DELETE.
type StockTransactionRepo struct {
	q Querier
}

// NewStockTransactionRepository construye el adaptador.
func NewStockTransactionRepository(q Querier) *StockTransactionRepo {
	return &StockTransactionRepo{q: q}
}

const transactionColumns = `id, company_id, kind, direction, location_id, material_id, quantity, unit_cost, total_cost,
	previous_quantity, new_quantity, reference, source, notes, destination_location_id, distribution_id,
	distribution_number, order_id, recipe_id, expiry_date, batch_number, created_at, created_by`

func scanTransaction(row pgx.Row) (*entity.StockTransaction, error) {
	var t entity.StockTransaction
	err := row.Scan(
		&t.ID, &t.CompanyID, &t.Kind, &t.Direction, &t.LocationID, &t.MaterialID, &t.Quantity, &t.UnitCost, &t.TotalCost,
		&t.PreviousQuantity, &t.NewQuantity, &t.Reference, &t.Source, &t.Notes, &t.DestinationLocationID, &t.DistributionID,
		&t.DistributionNumber, &t.OrderID, &t.RecipeID, &t.ExpiryDate, &t.BatchNumber, &t.CreatedAt, &t.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create agrega una entrada al libro.
func (r *StockTransactionRepo) Create(ctx context.Context, t *entity.StockTransaction) error {
	query := `
		INSERT INTO stock_transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.CompanyID, t.Kind, t.Direction, t.LocationID, t.MaterialID, t.Quantity, t.UnitCost, t.TotalCost,
		t.PreviousQuantity, t.NewQuantity, t.Reference, t.Source, t.Notes, t.DestinationLocationID, t.DistributionID,
		t.DistributionNumber, t.OrderID, t.RecipeID, t.ExpiryDate, t.BatchNumber, t.CreatedAt, t.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("insert stock transaction: %w", err)
	}
	return nil
}

// ListByLocation entradas de una ubicación, más recientes primero.
func (r *StockTransactionRepo) ListByLocation(ctx context.Context, companyID, locationID string, f repository.TransactionFilter) ([]*entity.StockTransaction, error) {
	limit, offset := pageArgs(f.Limit, f.Offset)
	query := `
		SELECT ` + transactionColumns + `
		FROM stock_transactions
		WHERE company_id = $1 AND location_id = $2
		  AND ($3::text = '' OR material_id = $3)
		  AND ($4::text = '' OR kind = $4)
		  AND ($5::timestamptz IS NULL OR created_at >= $5)
		  AND ($6::timestamptz IS NULL OR created_at <= $6)
		ORDER BY created_at DESC, id DESC
		LIMIT $7 OFFSET $8`
	return r.list(ctx, query, companyID, locationID, f.MaterialID, f.Kind, f.From, f.To, limit, offset)
}

// ListByDistribution entradas generadas por un traslado y su cancelación, en orden de registro.
func (r *StockTransactionRepo) ListByDistribution(ctx context.Context, distributionID string) ([]*entity.StockTransaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM stock_transactions
		WHERE distribution_id = $1
		ORDER BY created_at, id`
	return r.list(ctx, query, distributionID)
}

// SignedTotalsByMaterial suma con signo de las entradas de la ubicación por material.
func (r *StockTransactionRepo) SignedTotalsByMaterial(ctx context.Context, companyID, locationID string) (map[string]decimal.Decimal, error) {
	query := `
		SELECT material_id, SUM(CASE WHEN direction = 'out' THEN -quantity ELSE quantity END)
		FROM stock_transactions
		WHERE company_id = $1 AND location_id = $2
		GROUP BY material_id`
	rows, err := r.q.Query(ctx, query, companyID, locationID)
	if err != nil {
		return nil, fmt.Errorf("signed totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]decimal.Decimal)
	for rows.Next() {
		var materialID string
		var total decimal.Decimal
		if err := rows.Scan(&materialID, &total); err != nil {
			return nil, fmt.Errorf("scan signed totals: %w", err)
		}
		totals[materialID] = total
	}
	return totals, rows.Err()
}

func (r *StockTransactionRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockTransaction, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock transactions: %w", err)
	}
	defer rows.Close()

	list := make([]*entity.StockTransaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock transaction: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}
