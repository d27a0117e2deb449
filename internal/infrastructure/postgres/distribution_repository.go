package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.DistributionRepository = (*DistributionRepo)(nil)

// DistributionRepo implementación de DistributionRepository (usable con pool o tx).
type DistributionRepo struct {
	q Querier
}

// NewDistributionRepository construye el adaptador.
func NewDistributionRepository(q Querier) *DistributionRepo {
	return &DistributionRepo{q: q}
}

const distributionColumns = `id, company_id, number, from_location_id, to_location_id, material_id, quantity, unit,
	cost_price, total_cost, status, from_before, from_after, to_before, to_after, notes, date, created_by,
	created_at, updated_at, cancelled_at, cancelled_by, cancel_reason`

func scanDistribution(row pgx.Row) (*entity.Distribution, error) {
	var d entity.Distribution
	err := row.Scan(
		&d.ID, &d.CompanyID, &d.Number, &d.FromLocationID, &d.ToLocationID, &d.MaterialID, &d.Quantity, &d.Unit,
		&d.CostPrice, &d.TotalCost, &d.Status, &d.FromBefore, &d.FromAfter, &d.ToBefore, &d.ToAfter, &d.Notes, &d.Date, &d.CreatedBy,
		&d.CreatedAt, &d.UpdatedAt, &d.CancelledAt, &d.CancelledBy, &d.CancelReason,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// NextSequence incrementa el contador del día para la empresa. Dentro de una tx la fila del
// contador queda bloqueada hasta el Commit; si la tx falla el número no se consume.
func (r *DistributionRepo) NextSequence(ctx context.Context, companyID string, day time.Time) (int, error) {
	query := `
		INSERT INTO distribution_counters (company_id, day, seq)
		VALUES ($1, $2::date, 1)
		ON CONFLICT (company_id, day) DO UPDATE SET seq = distribution_counters.seq + 1
		RETURNING seq`
	var seq int
	if err := r.q.QueryRow(ctx, query, companyID, day.Format("2006-01-02")).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next distribution sequence: %w", err)
	}
	return seq, nil
}

// Create persiste el traslado. Número repetido en la empresa devuelve domain.ErrDuplicate.
func (r *DistributionRepo) Create(ctx context.Context, d *entity.Distribution) error {
	query := `
		INSERT INTO distributions (` + distributionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`
	_, err := r.q.Exec(ctx, query,
		d.ID, d.CompanyID, d.Number, d.FromLocationID, d.ToLocationID, d.MaterialID, d.Quantity, d.Unit,
		d.CostPrice, d.TotalCost, d.Status, d.FromBefore, d.FromAfter, d.ToBefore, d.ToAfter, d.Notes, d.Date, d.CreatedBy,
		d.CreatedAt, d.UpdatedAt, d.CancelledAt, d.CancelledBy, d.CancelReason,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert distribution: %w", err)
	}
	return nil
}

// GetByID obtiene un traslado por ID.
func (r *DistributionRepo) GetByID(ctx context.Context, id string) (*entity.Distribution, error) {
	return r.get(ctx, `SELECT `+distributionColumns+` FROM distributions WHERE id = $1`, id)
}

// GetForUpdate obtiene y bloquea el traslado (cancelaciones concurrentes se serializan).
func (r *DistributionRepo) GetForUpdate(ctx context.Context, id string) (*entity.Distribution, error) {
	return r.get(ctx, `SELECT `+distributionColumns+` FROM distributions WHERE id = $1 FOR UPDATE`, id)
}

func (r *DistributionRepo) get(ctx context.Context, query, id string) (*entity.Distribution, error) {
	d, err := scanDistribution(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get distribution: %w", err)
	}
	return d, nil
}

// MarkCancelled cambia el estado a Cancelled con los datos de auditoría.
func (r *DistributionRepo) MarkCancelled(ctx context.Context, d *entity.Distribution) error {
	query := `
		UPDATE distributions
		SET status = $2, cancelled_at = $3, cancelled_by = $4, cancel_reason = $5, updated_at = $6
		WHERE id = $1 AND status = $7`
	tag, err := r.q.Exec(ctx, query,
		d.ID, entity.DistributionStatusCancelled, d.CancelledAt, d.CancelledBy, d.CancelReason, d.UpdatedAt,
		entity.DistributionStatusCompleted,
	)
	if err != nil {
		return fmt.Errorf("cancel distribution: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadyCancelled
	}
	return nil
}

// distributionWhere filtro común de List y Stats ($1..$8).
const distributionWhere = `
	WHERE company_id = $1
	  AND ($2::text = '' OR from_location_id = $2 OR to_location_id = $2)
	  AND ($3::text = '' OR from_location_id = $3)
	  AND ($4::text = '' OR to_location_id = $4)
	  AND ($5::text = '' OR material_id = $5)
	  AND ($6::text = '' OR status = $6)
	  AND ($7::timestamptz IS NULL OR date >= $7)
	  AND ($8::timestamptz IS NULL OR date <= $8)`

func distributionArgs(f repository.DistributionFilter) []any {
	return []any{f.CompanyID, f.LocationID, f.FromLocationID, f.ToLocationID, f.MaterialID, f.Status, f.DateFrom, f.DateTo}
}

// List traslados filtrados, más recientes primero, y el total sin paginar.
func (r *DistributionRepo) List(ctx context.Context, f repository.DistributionFilter) ([]*entity.Distribution, int, error) {
	args := distributionArgs(f)

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM distributions`+distributionWhere, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count distributions: %w", err)
	}

	limit, offset := pageArgs(f.Limit, f.Offset)
	query := `SELECT ` + distributionColumns + ` FROM distributions` + distributionWhere + `
		ORDER BY created_at DESC, number DESC
		LIMIT $9 OFFSET $10`
	rows, err := r.q.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list distributions: %w", err)
	}
	defer rows.Close()

	list := make([]*entity.Distribution, 0)
	for rows.Next() {
		d, err := scanDistribution(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan distribution: %w", err)
		}
		list = append(list, d)
	}
	return list, total, rows.Err()
}

// Stats totales de traslados filtrados, agrupados por origen, destino y material.
func (r *DistributionRepo) Stats(ctx context.Context, f repository.DistributionFilter) (*repository.DistributionStats, error) {
	args := distributionArgs(f)
	stats := &repository.DistributionStats{}

	totals, err := r.statRows(ctx, "''", args)
	if err != nil {
		return nil, err
	}
	if len(totals) > 0 {
		stats.Totals = totals[0]
		stats.Totals.Key = ""
	}
	if stats.ByFromLocation, err = r.statRows(ctx, "from_location_id", args); err != nil {
		return nil, err
	}
	if stats.ByToLocation, err = r.statRows(ctx, "to_location_id", args); err != nil {
		return nil, err
	}
	if stats.ByMaterial, err = r.statRows(ctx, "material_id", args); err != nil {
		return nil, err
	}
	return stats, nil
}

// statRows agrupa por keyExpr, que siempre es una columna fija del código, nunca entrada del usuario.
func (r *DistributionRepo) statRows(ctx context.Context, keyExpr string, args []any) ([]repository.DistributionStatRow, error) {
	query := `
		SELECT ` + keyExpr + ` AS key, COUNT(*), COALESCE(SUM(quantity), 0), COALESCE(SUM(total_cost), 0)
		FROM distributions` + distributionWhere + `
		GROUP BY 1
		ORDER BY 1`
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("distribution stats: %w", err)
	}
	defer rows.Close()

	out := make([]repository.DistributionStatRow, 0)
	for rows.Next() {
		var row repository.DistributionStatRow
		if err := rows.Scan(&row.Key, &row.Count, &row.Quantity, &row.Value); err != nil {
			return nil, fmt.Errorf("scan distribution stats: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
