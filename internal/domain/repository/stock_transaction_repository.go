package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// TransactionFilter filtros para listar el libro de una ubicación.
type TransactionFilter struct {
	MaterialID string
	Kind       string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// StockTransactionRepository puerto del libro de stock. Solo agrega: no hay Update ni Delete.
type StockTransactionRepository interface {
	Create(ctx context.Context, tx *entity.StockTransaction) error
	ListByLocation(ctx context.Context, companyID, locationID string, filter TransactionFilter) ([]*entity.StockTransaction, error)
	ListByDistribution(ctx context.Context, distributionID string) ([]*entity.StockTransaction, error)
	// SignedTotalsByMaterial suma los efectos con signo del libro para cada material de la ubicación.
	SignedTotalsByMaterial(ctx context.Context, companyID, locationID string) (map[string]decimal.Decimal, error)
}
