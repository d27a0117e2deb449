package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback y ninguna escritura queda visible.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		ctx context.Context,
		inventoryRepo repository.LocationInventoryRepository,
		ledgerRepo repository.StockTransactionRepository,
		distributionRepo repository.DistributionRepository,
	) error) error
}

// OrderGuard evita descontar dos veces el mismo pedido cuando el evento llega repetido.
type OrderGuard interface {
	// Acquire marca el pedido como en proceso/procesado. Devuelve false si ya estaba marcado.
	Acquire(ctx context.Context, companyID, orderID string) (bool, error)
	// Release libera la marca para permitir un reintento.
	Release(ctx context.Context, companyID, orderID string) error
}

// DistributionSlip datos necesarios para imprimir el comprobante de un traslado.
type DistributionSlip struct {
	CompanyID    string
	Distribution *entity.Distribution
	From         *entity.Location
	To           *entity.Location
	Material     *entity.RawMaterial
	Transactions []*entity.StockTransaction
}

// SlipGenerator genera el PDF del comprobante de traslado.
type SlipGenerator interface {
	GenerateDistributionSlip(ctx context.Context, slip *DistributionSlip) ([]byte, error)
}

// Recorder recibe métricas de negocio del motor de inventario.
type Recorder interface {
	MovementApplied(kind, direction string)
	MovementRejected(kind, reason string)
	DistributionRecorded(status string)
	SuggestionsCreated(n int)
	IngredientDeductionFailed(n int)
}

type nopRecorder struct{}

func (nopRecorder) MovementApplied(string, string)  {}
func (nopRecorder) MovementRejected(string, string) {}
func (nopRecorder) DistributionRecorded(string)     {}
func (nopRecorder) SuggestionsCreated(int)          {}
func (nopRecorder) IngredientDeductionFailed(int)   {}

func recorderOrNop(r Recorder) Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}
