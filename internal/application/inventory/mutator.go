package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// MovementRef datos de referencia que quedan en la entrada del libro.
type MovementRef struct {
	Reference             string
	Source                string
	Notes                 string
	DestinationLocationID string
	DistributionID        string
	DistributionNumber    string
	OrderID               string
	RecipeID              string
	ExpiryDate            *time.Time
	BatchNumber           string
}

// MovementInput entrada del Mutator.
// Delta es con signo (positivo entra, negativo sale). Si Target no es nil se ignora Delta
// y la cantidad se fija en Target; el delta se calcula con la fila bloqueada.
type MovementInput struct {
	CompanyID  string
	UserID     string
	LocationID string
	MaterialID string
	Kind       string
	Delta      decimal.Decimal
	Target     *decimal.Decimal
	UnitCost   decimal.Decimal
	Ref        MovementRef
}

// MovementResult estado de la fila y entrada del libro producidas por un movimiento.
type MovementResult struct {
	Inventory   *entity.LocationInventory
	Transaction *entity.StockTransaction
}

// Mutator es el único punto por el que cambia la cantidad disponible de una ubicación.
// Cada movimiento escribe exactamente una fila de location_inventories y agrega una
// entrada a stock_transactions, o no escribe nada.
type Mutator struct {
	txRunner TxRunner
	recorder Recorder
	log      zerolog.Logger
	now      func() time.Time
}

// NewMutator construye el Mutator.
func NewMutator(txRunner TxRunner, recorder Recorder, log zerolog.Logger) *Mutator {
	return &Mutator{
		txRunner: txRunner,
		recorder: recorderOrNop(recorder),
		log:      log.With().Str("component", "inventory_mutator").Logger(),
		now:      time.Now,
	}
}

// ApplyMovement valida la entrada, abre una transacción y aplica el movimiento.
func (m *Mutator) ApplyMovement(ctx context.Context, in MovementInput) (*MovementResult, error) {
	if err := validateMovement(in); err != nil {
		return nil, err
	}
	now := m.now()
	var res *MovementResult
	err := m.txRunner.Run(ctx, func(
		ctx context.Context,
		inventoryRepo repository.LocationInventoryRepository,
		ledgerRepo repository.StockTransactionRepository,
		_ repository.DistributionRepository,
	) error {
		r, err := m.ApplyInTx(ctx, inventoryRepo, ledgerRepo, in, now)
		if err != nil {
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		m.rejected(in, err)
		return nil, err
	}
	m.applied(res)
	return res, nil
}

// ApplyInTx aplica el movimiento con los repositorios de la transacción del caller.
// No hace Commit: si devuelve error el caller debe abortar su transacción.
func (m *Mutator) ApplyInTx(
	ctx context.Context,
	inventoryRepo repository.LocationInventoryRepository,
	ledgerRepo repository.StockTransactionRepository,
	in MovementInput,
	now time.Time,
) (*MovementResult, error) {
	// Bloquea la fila (SELECT FOR UPDATE) para serializar movimientos concurrentes sobre el par
	inv, err := inventoryRepo.GetForUpdate(ctx, in.CompanyID, in.LocationID, in.MaterialID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		inv = &entity.LocationInventory{
			CompanyID:  in.CompanyID,
			LocationID: in.LocationID,
			MaterialID: in.MaterialID,
			Quantity:   decimal.Zero,
			UnitCost:   decimal.Zero,
			CreatedAt:  now,
		}
	}

	delta := in.Delta
	if in.Target != nil {
		delta = in.Target.Sub(inv.Quantity)
	}
	if delta.IsZero() {
		return nil, domain.Invalid("el movimiento no cambia la cantidad (actual %s)", inv.Quantity.String())
	}

	before := inv.Quantity
	after := before.Add(delta)
	if after.IsNegative() {
		return nil, &domain.InsufficientStockError{
			LocationID: in.LocationID,
			MaterialID: in.MaterialID,
			Available:  before,
			Requested:  delta.Abs(),
		}
	}

	unitCost := in.UnitCost
	direction := entity.DirectionIn
	if delta.IsPositive() {
		if unitCost.IsZero() && in.Kind != entity.MovementKindInward {
			unitCost = inv.UnitCost
		}
		inv.UnitCost = domaininv.WeightedAverageCost(before, inv.UnitCost, delta, unitCost)
		if in.Ref.ExpiryDate != nil {
			inv.ExpiryDate = in.Ref.ExpiryDate
		}
		if in.Ref.BatchNumber != "" {
			inv.BatchNumber = in.Ref.BatchNumber
		}
	} else {
		direction = entity.DirectionOut
		// Las salidas se valoran al costo vigente de la ubicación
		if unitCost.IsZero() {
			unitCost = inv.UnitCost
		}
	}

	inv.Quantity = after
	inv.UpdatedAt = now
	if err := inventoryRepo.Upsert(ctx, inv); err != nil {
		return nil, err
	}

	qty := delta.Abs()
	tx := &entity.StockTransaction{
		ID:                    uuid.New().String(),
		CompanyID:             in.CompanyID,
		Kind:                  in.Kind,
		Direction:             direction,
		LocationID:            in.LocationID,
		MaterialID:            in.MaterialID,
		Quantity:              qty,
		UnitCost:              unitCost,
		TotalCost:             qty.Mul(unitCost),
		PreviousQuantity:      before,
		NewQuantity:           after,
		Reference:             in.Ref.Reference,
		Source:                in.Ref.Source,
		Notes:                 in.Ref.Notes,
		DestinationLocationID: in.Ref.DestinationLocationID,
		DistributionID:        in.Ref.DistributionID,
		DistributionNumber:    in.Ref.DistributionNumber,
		OrderID:               in.Ref.OrderID,
		RecipeID:              in.Ref.RecipeID,
		ExpiryDate:            in.Ref.ExpiryDate,
		BatchNumber:           in.Ref.BatchNumber,
		CreatedAt:             now,
		CreatedBy:             in.UserID,
	}
	if err := ledgerRepo.Create(ctx, tx); err != nil {
		return nil, err
	}
	return &MovementResult{Inventory: inv, Transaction: tx}, nil
}

func validateMovement(in MovementInput) error {
	if in.CompanyID == "" || in.LocationID == "" || in.MaterialID == "" {
		return domain.Invalid("ubicación y material son requeridos")
	}
	if !entity.ValidMovementKind(in.Kind) {
		return domain.Invalid("tipo de movimiento desconocido: %q", in.Kind)
	}
	if in.UnitCost.IsNegative() {
		return domain.Invalid("unit_cost no puede ser negativo")
	}
	if in.Target != nil {
		if in.Target.IsNegative() {
			return domain.Invalid("la cantidad objetivo no puede ser negativa")
		}
		return nil
	}
	if in.Delta.IsZero() {
		return domain.Invalid("quantity debe ser distinta de cero")
	}
	return nil
}

func (m *Mutator) applied(res *MovementResult) {
	if res == nil || res.Transaction == nil {
		return
	}
	m.recorder.MovementApplied(res.Transaction.Kind, res.Transaction.Direction)
}

func (m *Mutator) rejected(in MovementInput, err error) {
	reason := rejectReason(err)
	if reason == "error" {
		m.log.Error().Err(err).
			Str("location_id", in.LocationID).
			Str("material_id", in.MaterialID).
			Str("kind", in.Kind).
			Msg("movimiento abortado")
	}
	m.recorder.MovementRejected(in.Kind, reason)
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrCancellationConflict):
		return "cancellation_conflict"
	case errors.Is(err, domain.ErrInvalidInput):
		return "validation"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	}
	return "error"
}
