package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// Modos de ajuste manual.
const (
	AdjustIncrease = "increase"
	AdjustDecrease = "decrease"
	AdjustSet      = "set"
)

// Origen de los movimientos manuales.
const (
	SourcePurchase    = "purchase"
	SourceAdjustment  = "manual_adjustment"
	SourceConsumption = "consumption"
)

// InwardInput entrada de mercancía (compra/GRN).
type InwardInput struct {
	CompanyID   string
	UserID      string
	LocationID  string
	MaterialID  string
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal
	Reference   string
	Notes       string
	ExpiryDate  *time.Time
	BatchNumber string
}

// AdjustInput ajuste manual de cantidad.
type AdjustInput struct {
	CompanyID  string
	UserID     string
	LocationID string
	MaterialID string
	Mode       string
	Quantity   decimal.Decimal
	UnitCost   decimal.Decimal
	Reason     string
}

// ConsumeInput consumo en cocina u obra.
type ConsumeInput struct {
	CompanyID  string
	UserID     string
	LocationID string
	MaterialID string
	Quantity   decimal.Decimal
	Reference  string
	Notes      string
}

// ReconcileLine compara la cantidad disponible con la suma del libro para un material.
type ReconcileLine struct {
	MaterialID  string
	OnHand      decimal.Decimal
	LedgerTotal decimal.Decimal
	Difference  decimal.Decimal
}

// StoreInventoryUseCase operaciones de stock sobre una ubicación.
type StoreInventoryUseCase struct {
	mutator       *Mutator
	locationRepo  repository.LocationRepository
	materialRepo  repository.RawMaterialRepository
	inventoryRepo repository.LocationInventoryRepository
	ledgerRepo    repository.StockTransactionRepository
}

// NewStoreInventoryUseCase construye el caso de uso.
func NewStoreInventoryUseCase(
	mutator *Mutator,
	locationRepo repository.LocationRepository,
	materialRepo repository.RawMaterialRepository,
	inventoryRepo repository.LocationInventoryRepository,
	ledgerRepo repository.StockTransactionRepository,
) *StoreInventoryUseCase {
	return &StoreInventoryUseCase{
		mutator:       mutator,
		locationRepo:  locationRepo,
		materialRepo:  materialRepo,
		inventoryRepo: inventoryRepo,
		ledgerRepo:    ledgerRepo,
	}
}

// RecordInward registra una entrada de stock y recalcula el costo promedio.
func (uc *StoreInventoryUseCase) RecordInward(ctx context.Context, in InwardInput) (*MovementResult, error) {
	if !in.Quantity.IsPositive() {
		return nil, domain.Invalid("quantity debe ser mayor que cero")
	}
	if in.UnitCost.IsNegative() {
		return nil, domain.Invalid("unit_cost no puede ser negativo")
	}
	if err := uc.checkPair(ctx, in.CompanyID, in.LocationID, in.MaterialID); err != nil {
		return nil, err
	}
	return uc.mutator.ApplyMovement(ctx, MovementInput{
		CompanyID:  in.CompanyID,
		UserID:     in.UserID,
		LocationID: in.LocationID,
		MaterialID: in.MaterialID,
		Kind:       entity.MovementKindInward,
		Delta:      in.Quantity,
		UnitCost:   in.UnitCost,
		Ref: MovementRef{
			Reference:   in.Reference,
			Source:      SourcePurchase,
			Notes:       in.Notes,
			ExpiryDate:  in.ExpiryDate,
			BatchNumber: in.BatchNumber,
		},
	})
}

// Adjust aplica un ajuste manual: sumar, restar o fijar la cantidad. El motivo es obligatorio.
func (uc *StoreInventoryUseCase) Adjust(ctx context.Context, in AdjustInput) (*MovementResult, error) {
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, domain.Invalid("reason es requerido")
	}
	mv := MovementInput{
		CompanyID:  in.CompanyID,
		UserID:     in.UserID,
		LocationID: in.LocationID,
		MaterialID: in.MaterialID,
		Kind:       entity.MovementKindAdjustment,
		UnitCost:   in.UnitCost,
		Ref: MovementRef{
			Source: SourceAdjustment,
			Notes:  reason,
		},
	}
	switch in.Mode {
	case AdjustIncrease:
		if !in.Quantity.IsPositive() {
			return nil, domain.Invalid("quantity debe ser mayor que cero")
		}
		mv.Delta = in.Quantity
	case AdjustDecrease:
		if !in.Quantity.IsPositive() {
			return nil, domain.Invalid("quantity debe ser mayor que cero")
		}
		mv.Delta = in.Quantity.Neg()
	case AdjustSet:
		if in.Quantity.IsNegative() {
			return nil, domain.Invalid("quantity no puede ser negativa")
		}
		target := in.Quantity
		mv.Target = &target
	default:
		return nil, domain.Invalid("mode debe ser increase, decrease o set")
	}
	if in.UnitCost.IsNegative() {
		return nil, domain.Invalid("unit_cost no puede ser negativo")
	}
	if err := uc.checkPair(ctx, in.CompanyID, in.LocationID, in.MaterialID); err != nil {
		return nil, err
	}
	return uc.mutator.ApplyMovement(ctx, mv)
}

// Consume descuenta consumo interno de la ubicación.
func (uc *StoreInventoryUseCase) Consume(ctx context.Context, in ConsumeInput) (*MovementResult, error) {
	if !in.Quantity.IsPositive() {
		return nil, domain.Invalid("quantity debe ser mayor que cero")
	}
	if err := uc.checkPair(ctx, in.CompanyID, in.LocationID, in.MaterialID); err != nil {
		return nil, err
	}
	return uc.mutator.ApplyMovement(ctx, MovementInput{
		CompanyID:  in.CompanyID,
		UserID:     in.UserID,
		LocationID: in.LocationID,
		MaterialID: in.MaterialID,
		Kind:       entity.MovementKindConsumed,
		Delta:      in.Quantity.Neg(),
		Ref: MovementRef{
			Reference: in.Reference,
			Source:    SourceConsumption,
			Notes:     in.Notes,
		},
	})
}

// ListInventory stock disponible por material en la ubicación.
func (uc *StoreInventoryUseCase) ListInventory(ctx context.Context, companyID, locationID string) ([]*entity.LocationInventory, error) {
	if _, err := uc.location(ctx, companyID, locationID); err != nil {
		return nil, err
	}
	return uc.inventoryRepo.ListByLocation(ctx, companyID, locationID)
}

// ListTransactions libro de la ubicación, más reciente primero.
func (uc *StoreInventoryUseCase) ListTransactions(ctx context.Context, companyID, locationID string, filter repository.TransactionFilter) ([]*entity.StockTransaction, error) {
	if _, err := uc.location(ctx, companyID, locationID); err != nil {
		return nil, err
	}
	if filter.Kind != "" && !entity.ValidMovementKind(filter.Kind) {
		return nil, domain.Invalid("tipo de movimiento desconocido: %q", filter.Kind)
	}
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return uc.ledgerRepo.ListByLocation(ctx, companyID, locationID, filter)
}

// Reconcile compara, por material, la cantidad disponible con la suma con signo del libro.
// Una diferencia distinta de cero indica una escritura fuera del Mutator.
func (uc *StoreInventoryUseCase) Reconcile(ctx context.Context, companyID, locationID string) ([]ReconcileLine, error) {
	if _, err := uc.location(ctx, companyID, locationID); err != nil {
		return nil, err
	}
	onHand, err := uc.inventoryRepo.TotalsByMaterial(ctx, companyID, locationID)
	if err != nil {
		return nil, err
	}
	ledger, err := uc.ledgerRepo.SignedTotalsByMaterial(ctx, companyID, locationID)
	if err != nil {
		return nil, err
	}
	keys := make(map[string]struct{}, len(onHand)+len(ledger))
	for k := range onHand {
		keys[k] = struct{}{}
	}
	for k := range ledger {
		keys[k] = struct{}{}
	}
	lines := make([]ReconcileLine, 0, len(keys))
	for k := range keys {
		q, l := onHand[k], ledger[k]
		lines = append(lines, ReconcileLine{MaterialID: k, OnHand: q, LedgerTotal: l, Difference: q.Sub(l)})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].MaterialID < lines[j].MaterialID })
	return lines, nil
}

func (uc *StoreInventoryUseCase) checkPair(ctx context.Context, companyID, locationID, materialID string) error {
	if locationID == "" || materialID == "" {
		return domain.Invalid("store_id y material_id son requeridos")
	}
	loc, err := uc.location(ctx, companyID, locationID)
	if err != nil {
		return err
	}
	if !loc.IsActive {
		return domain.Invalid("la ubicación %s está inactiva", locationID)
	}
	m, err := uc.materialRepo.GetByID(ctx, materialID)
	if err != nil {
		return err
	}
	if m == nil || m.CompanyID != companyID {
		return fmt.Errorf("%w: material %s", domain.ErrNotFound, materialID)
	}
	return nil
}

func (uc *StoreInventoryUseCase) location(ctx context.Context, companyID, locationID string) (*entity.Location, error) {
	if locationID == "" {
		return nil, domain.Invalid("store_id es requerido")
	}
	loc, err := uc.locationRepo.GetByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if loc == nil || loc.CompanyID != companyID {
		return nil, fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, locationID)
	}
	return loc, nil
}
