package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// Origen de los movimientos generados por traslados.
const (
	SourceDistribution             = "distribution"
	SourceDistributionCancellation = "distribution_cancellation"
)

// CreateDistributionInput datos para registrar un traslado.
type CreateDistributionInput struct {
	CompanyID      string
	UserID         string
	FromLocationID string
	ToLocationID   string
	MaterialID     string
	Quantity       decimal.Decimal
	Date           *time.Time
	Notes          string
}

// CancelDistributionInput datos para revertir un traslado.
type CancelDistributionInput struct {
	CompanyID      string
	UserID         string
	DistributionID string
	Reason         string
}

// DistributionDetail traslado con sus entradas del libro.
type DistributionDetail struct {
	Distribution *entity.Distribution
	Transactions []*entity.StockTransaction
}

// DistributionUseCase orquesta traslados entre ubicaciones.
// Las dos mitades del traslado y el registro se escriben en una sola transacción.
type DistributionUseCase struct {
	txRunner         TxRunner
	mutator          *Mutator
	locationRepo     repository.LocationRepository
	materialRepo     repository.RawMaterialRepository
	distributionRepo repository.DistributionRepository
	ledgerRepo       repository.StockTransactionRepository
	slips            SlipGenerator
	recorder         Recorder
	log              zerolog.Logger
	now              func() time.Time
}

// NewDistributionUseCase construye el caso de uso. slips puede ser nil si no se exponen PDFs.
func NewDistributionUseCase(
	txRunner TxRunner,
	mutator *Mutator,
	locationRepo repository.LocationRepository,
	materialRepo repository.RawMaterialRepository,
	distributionRepo repository.DistributionRepository,
	ledgerRepo repository.StockTransactionRepository,
	slips SlipGenerator,
	recorder Recorder,
	log zerolog.Logger,
) *DistributionUseCase {
	return &DistributionUseCase{
		txRunner:         txRunner,
		mutator:          mutator,
		locationRepo:     locationRepo,
		materialRepo:     materialRepo,
		distributionRepo: distributionRepo,
		ledgerRepo:       ledgerRepo,
		slips:            slips,
		recorder:         recorderOrNop(recorder),
		log:              log.With().Str("component", "distributions").Logger(),
		now:              time.Now,
	}
}

// Create registra un traslado: descuenta en origen, suma en destino al mismo costo
// y guarda el registro con las cantidades antes/después. Todo o nada.
func (uc *DistributionUseCase) Create(ctx context.Context, in CreateDistributionInput) (*entity.Distribution, error) {
	if in.FromLocationID == "" || in.ToLocationID == "" {
		return nil, domain.Invalid("from_location_id y to_location_id son requeridos")
	}
	if in.MaterialID == "" {
		return nil, domain.Invalid("material_id es requerido")
	}
	if in.FromLocationID == in.ToLocationID {
		return nil, domain.Invalid("la ubicación de origen y destino deben ser distintas")
	}
	if !in.Quantity.IsPositive() {
		return nil, domain.Invalid("quantity debe ser mayor que cero")
	}

	if _, err := uc.activeLocation(ctx, in.CompanyID, in.FromLocationID); err != nil {
		return nil, err
	}
	if _, err := uc.activeLocation(ctx, in.CompanyID, in.ToLocationID); err != nil {
		return nil, err
	}
	material, err := uc.material(ctx, in.CompanyID, in.MaterialID)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	date := now
	if in.Date != nil && !in.Date.IsZero() {
		date = *in.Date
	}

	d := &entity.Distribution{
		ID:             uuid.New().String(),
		CompanyID:      in.CompanyID,
		FromLocationID: in.FromLocationID,
		ToLocationID:   in.ToLocationID,
		MaterialID:     in.MaterialID,
		Quantity:       in.Quantity,
		Unit:           material.Unit,
		Status:         entity.DistributionStatusCompleted,
		Notes:          strings.TrimSpace(in.Notes),
		Date:           date,
		CreatedBy:      in.UserID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = uc.txRunner.Run(ctx, func(
		ctx context.Context,
		inventoryRepo repository.LocationInventoryRepository,
		ledgerRepo repository.StockTransactionRepository,
		distributionRepo repository.DistributionRepository,
	) error {
		// 1. Snapshot bajo bloqueo, siempre en el mismo orden de ubicaciones
		locked, err := lockPairs(ctx, inventoryRepo, in.CompanyID, in.MaterialID, in.FromLocationID, in.ToLocationID)
		if err != nil {
			return err
		}
		src, dst := locked[in.FromLocationID], locked[in.ToLocationID]
		fromBefore, toBefore := quantityOf(src), quantityOf(dst)

		// 2. Disponibilidad en origen
		if fromBefore.LessThan(in.Quantity) {
			return &domain.InsufficientStockError{
				LocationID: in.FromLocationID,
				MaterialID: in.MaterialID,
				Available:  fromBefore,
				Requested:  in.Quantity,
			}
		}
		costPrice := src.UnitCost

		// 3. Número del día
		seq, err := distributionRepo.NextSequence(ctx, in.CompanyID, domaininv.DayOf(date))
		if err != nil {
			return err
		}
		d.Number = domaininv.DistributionNumber(date, seq)

		ref := MovementRef{
			Reference:             d.Number,
			Source:                SourceDistribution,
			Notes:                 d.Notes,
			DestinationLocationID: in.ToLocationID,
			DistributionID:        d.ID,
			DistributionNumber:    d.Number,
		}

		// 4. Salida en origen y entrada en destino al costo del origen
		out, err := uc.mutator.ApplyInTx(ctx, inventoryRepo, ledgerRepo, MovementInput{
			CompanyID:  in.CompanyID,
			UserID:     in.UserID,
			LocationID: in.FromLocationID,
			MaterialID: in.MaterialID,
			Kind:       entity.MovementKindOutward,
			Delta:      in.Quantity.Neg(),
			UnitCost:   costPrice,
			Ref:        ref,
		}, now)
		if err != nil {
			return err
		}
		inward, err := uc.mutator.ApplyInTx(ctx, inventoryRepo, ledgerRepo, MovementInput{
			CompanyID:  in.CompanyID,
			UserID:     in.UserID,
			LocationID: in.ToLocationID,
			MaterialID: in.MaterialID,
			Kind:       entity.MovementKindInward,
			Delta:      in.Quantity,
			UnitCost:   costPrice,
			Ref:        ref,
		}, now)
		if err != nil {
			return err
		}

		// 5. Registro del traslado
		d.CostPrice = costPrice
		d.TotalCost = in.Quantity.Mul(costPrice)
		d.FromBefore = fromBefore
		d.FromAfter = out.Inventory.Quantity
		d.ToBefore = toBefore
		d.ToAfter = inward.Inventory.Quantity
		return distributionRepo.Create(ctx, d)
	})
	if err != nil {
		uc.recorder.MovementRejected(entity.MovementKindTransfer, rejectReason(err))
		return nil, err
	}
	uc.recorder.MovementApplied(entity.MovementKindOutward, entity.DirectionOut)
	uc.recorder.MovementApplied(entity.MovementKindInward, entity.DirectionIn)
	uc.recorder.DistributionRecorded(entity.DistributionStatusCompleted)
	uc.log.Info().
		Str("company_id", d.CompanyID).
		Str("number", d.Number).
		Str("material_id", d.MaterialID).
		Str("quantity", d.Quantity.String()).
		Msg("traslado registrado")
	return d, nil
}

// Cancel revierte un traslado completado. Falla si el destino ya no tiene la cantidad trasladada.
// Las entradas originales del libro no se tocan: se agrega un par inverso.
func (uc *DistributionUseCase) Cancel(ctx context.Context, in CancelDistributionInput) (*entity.Distribution, error) {
	if in.DistributionID == "" {
		return nil, domain.Invalid("id del traslado es requerido")
	}
	now := uc.now()
	var result *entity.Distribution

	err := uc.txRunner.Run(ctx, func(
		ctx context.Context,
		inventoryRepo repository.LocationInventoryRepository,
		ledgerRepo repository.StockTransactionRepository,
		distributionRepo repository.DistributionRepository,
	) error {
		d, err := distributionRepo.GetForUpdate(ctx, in.DistributionID)
		if err != nil {
			return err
		}
		if d == nil || d.CompanyID != in.CompanyID {
			return domain.ErrNotFound
		}
		if d.IsCancelled() {
			return domain.ErrAlreadyCancelled
		}

		locked, err := lockPairs(ctx, inventoryRepo, d.CompanyID, d.MaterialID, d.FromLocationID, d.ToLocationID)
		if err != nil {
			return err
		}
		available := quantityOf(locked[d.ToLocationID])
		if available.LessThan(d.Quantity) {
			return &domain.CancellationConflictError{
				DistributionID: d.ID,
				LocationID:     d.ToLocationID,
				Available:      available,
				Required:       d.Quantity,
			}
		}

		ref := MovementRef{
			Reference:             d.Number,
			Source:                SourceDistributionCancellation,
			Notes:                 in.Reason,
			DestinationLocationID: d.FromLocationID,
			DistributionID:        d.ID,
			DistributionNumber:    d.Number,
		}
		if _, err := uc.mutator.ApplyInTx(ctx, inventoryRepo, ledgerRepo, MovementInput{
			CompanyID:  d.CompanyID,
			UserID:     in.UserID,
			LocationID: d.ToLocationID,
			MaterialID: d.MaterialID,
			Kind:       entity.MovementKindOutward,
			Delta:      d.Quantity.Neg(),
			UnitCost:   d.CostPrice,
			Ref:        ref,
		}, now); err != nil {
			return err
		}
		if _, err := uc.mutator.ApplyInTx(ctx, inventoryRepo, ledgerRepo, MovementInput{
			CompanyID:  d.CompanyID,
			UserID:     in.UserID,
			LocationID: d.FromLocationID,
			MaterialID: d.MaterialID,
			Kind:       entity.MovementKindInward,
			Delta:      d.Quantity,
			UnitCost:   d.CostPrice,
			Ref:        ref,
		}, now); err != nil {
			return err
		}

		d.Status = entity.DistributionStatusCancelled
		d.CancelledAt = &now
		d.CancelledBy = in.UserID
		d.CancelReason = strings.TrimSpace(in.Reason)
		d.UpdatedAt = now
		if err := distributionRepo.MarkCancelled(ctx, d); err != nil {
			return err
		}
		result = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.recorder.DistributionRecorded(entity.DistributionStatusCancelled)
	uc.log.Info().
		Str("company_id", result.CompanyID).
		Str("number", result.Number).
		Msg("traslado cancelado")
	return result, nil
}

// GetByID obtiene un traslado con sus entradas del libro.
func (uc *DistributionUseCase) GetByID(ctx context.Context, companyID, id string) (*DistributionDetail, error) {
	d, err := uc.distributionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil || d.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	txs, err := uc.ledgerRepo.ListByDistribution(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	return &DistributionDetail{Distribution: d, Transactions: txs}, nil
}

// List lista traslados de la empresa con filtros y paginación. Devuelve también el total.
func (uc *DistributionUseCase) List(ctx context.Context, filter repository.DistributionFilter) ([]*entity.Distribution, int, error) {
	if filter.CompanyID == "" {
		return nil, 0, domain.Invalid("company_id es requerido")
	}
	if filter.Status != "" && filter.Status != entity.DistributionStatusCompleted && filter.Status != entity.DistributionStatusCancelled {
		return nil, 0, domain.Invalid("status inválido: %q", filter.Status)
	}
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return uc.distributionRepo.List(ctx, filter)
}

// Stats totales de traslados completados por tienda de origen, destino y material.
func (uc *DistributionUseCase) Stats(ctx context.Context, filter repository.DistributionFilter) (*repository.DistributionStats, error) {
	if filter.CompanyID == "" {
		return nil, domain.Invalid("company_id es requerido")
	}
	filter.Status = entity.DistributionStatusCompleted
	return uc.distributionRepo.Stats(ctx, filter)
}

// SlipPDF genera el comprobante del traslado. Devuelve los bytes y el nombre de archivo sugerido.
func (uc *DistributionUseCase) SlipPDF(ctx context.Context, companyID, id string) ([]byte, string, error) {
	if uc.slips == nil {
		return nil, "", fmt.Errorf("generador de comprobantes no configurado")
	}
	detail, err := uc.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, "", err
	}
	d := detail.Distribution
	from, err := uc.locationRepo.GetByID(ctx, d.FromLocationID)
	if err != nil {
		return nil, "", fmt.Errorf("comprobante: obtener origen: %w", err)
	}
	to, err := uc.locationRepo.GetByID(ctx, d.ToLocationID)
	if err != nil {
		return nil, "", fmt.Errorf("comprobante: obtener destino: %w", err)
	}
	material, err := uc.materialRepo.GetByID(ctx, d.MaterialID)
	if err != nil {
		return nil, "", fmt.Errorf("comprobante: obtener material: %w", err)
	}
	pdf, err := uc.slips.GenerateDistributionSlip(ctx, &DistributionSlip{
		CompanyID:    companyID,
		Distribution: d,
		From:         from,
		To:           to,
		Material:     material,
		Transactions: detail.Transactions,
	})
	if err != nil {
		return nil, "", fmt.Errorf("comprobante: generar pdf: %w", err)
	}
	return pdf, d.Number + ".pdf", nil
}

func (uc *DistributionUseCase) activeLocation(ctx context.Context, companyID, id string) (*entity.Location, error) {
	loc, err := uc.locationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loc == nil || loc.CompanyID != companyID || !loc.IsActive {
		return nil, fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, id)
	}
	return loc, nil
}

func (uc *DistributionUseCase) material(ctx context.Context, companyID, id string) (*entity.RawMaterial, error) {
	m, err := uc.materialRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil || m.CompanyID != companyID {
		return nil, fmt.Errorf("%w: material %s", domain.ErrNotFound, id)
	}
	return m, nil
}

// lockPairs bloquea (ubicación, material) para cada ubicación en orden de id,
// de modo que dos traslados en sentidos opuestos no se bloqueen mutuamente.
func lockPairs(
	ctx context.Context,
	inventoryRepo repository.LocationInventoryRepository,
	companyID, materialID string,
	locationIDs ...string,
) (map[string]*entity.LocationInventory, error) {
	ids := append([]string(nil), locationIDs...)
	sort.Strings(ids)
	out := make(map[string]*entity.LocationInventory, len(ids))
	for _, id := range ids {
		inv, err := inventoryRepo.GetForUpdate(ctx, companyID, id, materialID)
		if err != nil {
			return nil, err
		}
		out[id] = inv
	}
	return out, nil
}

func quantityOf(inv *entity.LocationInventory) decimal.Decimal {
	if inv == nil {
		return decimal.Zero
	}
	return inv.Quantity
}
