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

var _ repository.PurchaseSuggestionRepository = (*PurchaseSuggestionRepo)(nil)

// PurchaseSuggestionRepo implementación de PurchaseSuggestionRepository.
// El índice único parcial uq_purchase_suggestions_open garantiza una sola sugerencia abierta por material.
type PurchaseSuggestionRepo struct {
	q Querier
}

// NewPurchaseSuggestionRepository construye el adaptador.
func NewPurchaseSuggestionRepository(q Querier) *PurchaseSuggestionRepo {
	return &PurchaseSuggestionRepo{q: q}
}

const suggestionColumns = `id, company_id, material_id, suggested_quantity, priority, status, notes, created_at, updated_at`

func scanSuggestion(row pgx.Row) (*entity.PurchaseSuggestion, error) {
	var s entity.PurchaseSuggestion
	err := row.Scan(&s.ID, &s.CompanyID, &s.MaterialID, &s.SuggestedQuantity, &s.Priority, &s.Status, &s.Notes, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// FindOpenByMaterial sugerencia Draft o Pending del material, si existe.
func (r *PurchaseSuggestionRepo) FindOpenByMaterial(ctx context.Context, companyID, materialID string) (*entity.PurchaseSuggestion, error) {
	query := `
		SELECT ` + suggestionColumns + `
		FROM purchase_suggestions
		WHERE company_id = $1 AND material_id = $2 AND status IN ($3, $4)
		LIMIT 1`
	s, err := scanSuggestion(r.q.QueryRow(ctx, query, companyID, materialID,
		entity.SuggestionStatusDraft, entity.SuggestionStatusPending))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find open suggestion: %w", err)
	}
	return s, nil
}

// Create persiste la sugerencia; si ya hay una abierta para el material devuelve domain.ErrDuplicate.
func (r *PurchaseSuggestionRepo) Create(ctx context.Context, s *entity.PurchaseSuggestion) error {
	query := `
		INSERT INTO purchase_suggestions (` + suggestionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.CompanyID, s.MaterialID, s.SuggestedQuantity, s.Priority, s.Status, s.Notes, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert purchase suggestion: %w", err)
	}
	return nil
}

// ListByCompany sugerencias de la empresa, más recientes primero; status vacío = todas.
func (r *PurchaseSuggestionRepo) ListByCompany(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.PurchaseSuggestion, error) {
	limit, offset = pageArgs(limit, offset)
	query := `
		SELECT ` + suggestionColumns + `
		FROM purchase_suggestions
		WHERE company_id = $1 AND ($2::text = '' OR status = $2)
		ORDER BY created_at DESC, id
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, companyID, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list purchase suggestions: %w", err)
	}
	defer rows.Close()

	list := make([]*entity.PurchaseSuggestion, 0)
	for rows.Next() {
		s, err := scanSuggestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase suggestion: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
