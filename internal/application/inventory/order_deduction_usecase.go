package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// SourceOrderCompletion origen de los descuentos por pedido pagado.
const SourceOrderCompletion = "order_completion"

// IngredientDeduction resultado del descuento de un insumo.
type IngredientDeduction struct {
	MenuItemID    string
	RecipeID      string
	MaterialID    string
	Required      decimal.Decimal
	TransactionID string
	Error         string
	Available     *decimal.Decimal
}

// OrderDeductionResult resultado de descontar un pedido.
type OrderDeductionResult struct {
	OrderID          string
	LocationID       string
	AlreadyProcessed bool
	Success          bool
	Deducted         []IngredientDeduction
	Failed           []IngredientDeduction
	SkippedItems     []string
	Errors           []string
}

// OrderDeductionUseCase traduce un pedido pagado en consumo de materias primas.
// Cada insumo es una llamada atómica al Mutator; un fallo en un insumo se registra y se sigue con el resto.
type OrderDeductionUseCase struct {
	mutator      *Mutator
	recipeRepo   repository.RecipeRepository
	locationRepo repository.LocationRepository
	guard        OrderGuard
	recorder     Recorder
	log          zerolog.Logger
}

// NewOrderDeductionUseCase construye el caso de uso. guard puede ser nil (sin deduplicación).
func NewOrderDeductionUseCase(
	mutator *Mutator,
	recipeRepo repository.RecipeRepository,
	locationRepo repository.LocationRepository,
	guard OrderGuard,
	recorder Recorder,
	log zerolog.Logger,
) *OrderDeductionUseCase {
	return &OrderDeductionUseCase{
		mutator:      mutator,
		recipeRepo:   recipeRepo,
		locationRepo: locationRepo,
		guard:        guard,
		recorder:     recorderOrNop(recorder),
		log:          log.With().Str("component", "order_deduction").Logger(),
	}
}

// DeductStockForOrder descuenta los insumos de cada ítem con receta activa.
// Devuelve error (y libera el guard) para fallos de entrada o de infraestructura previos al primer
// descuento; los fallos de negocio por insumo quedan en el resultado y Success es false.
// Si no se descontó nada el guard se libera para que el pedido pueda reprocesarse.
func (uc *OrderDeductionUseCase) DeductStockForOrder(ctx context.Context, companyID, userID string, order entity.Order) (*OrderDeductionResult, error) {
	if companyID == "" {
		return nil, domain.Invalid("company_id es requerido")
	}
	if order.ID == "" {
		return nil, domain.Invalid("order_id es requerido")
	}
	if len(order.Items) == 0 {
		return nil, domain.Invalid("el pedido no tiene ítems")
	}
	for i, item := range order.Items {
		if item.MenuItemID == "" {
			return nil, domain.Invalid("items[%d].menu_item_id es requerido", i)
		}
		if !item.Quantity.IsPositive() {
			return nil, domain.Invalid("items[%d].quantity debe ser mayor que cero", i)
		}
	}

	res := &OrderDeductionResult{OrderID: order.ID}
	log := uc.log.With().Str("company_id", companyID).Str("order_id", order.ID).Logger()

	if uc.guard != nil {
		ok, err := uc.guard.Acquire(ctx, companyID, order.ID)
		if err != nil {
			return nil, fmt.Errorf("descontar pedido: guard: %w", err)
		}
		if !ok {
			log.Info().Msg("pedido ya procesado, se omite")
			res.AlreadyProcessed = true
			res.Success = true
			return res, nil
		}
	}

	loc, err := uc.resolveLocation(ctx, companyID, order.BranchID)
	if err != nil {
		uc.release(ctx, companyID, order.ID)
		return nil, fmt.Errorf("descontar pedido: ubicación: %w", err)
	}
	if loc == nil {
		res.Errors = append(res.Errors, "no hay ubicación activa para despachar el pedido")
		log.Error().Str("branch_id", order.BranchID).Msg("no se pudo resolver la ubicación del pedido")
		uc.release(ctx, companyID, order.ID)
		return res, nil
	}
	res.LocationID = loc.ID

	// Recetas antes del primer descuento: un fallo de lectura se reintenta completo.
	recipes := make([]*entity.Recipe, len(order.Items))
	for i, item := range order.Items {
		recipe, err := uc.recipeRepo.GetActiveByMenuItem(ctx, companyID, item.MenuItemID)
		if err != nil {
			uc.release(ctx, companyID, order.ID)
			return nil, fmt.Errorf("descontar pedido: receta de %s: %w", item.MenuItemID, err)
		}
		recipes[i] = recipe
	}

	for i, item := range order.Items {
		recipe := recipes[i]
		if recipe == nil {
			log.Debug().Str("menu_item_id", item.MenuItemID).Str("name", item.Name).Msg("ítem sin receta, no se descuenta")
			res.SkippedItems = append(res.SkippedItems, item.MenuItemID)
			continue
		}
		for _, ing := range recipe.Ingredients {
			d := IngredientDeduction{
				MenuItemID: item.MenuItemID,
				RecipeID:   recipe.ID,
				MaterialID: ing.MaterialID,
				Required:   ing.Quantity.Mul(item.Quantity),
			}
			mv, err := uc.mutator.ApplyMovement(ctx, MovementInput{
				CompanyID:  companyID,
				UserID:     userID,
				LocationID: loc.ID,
				MaterialID: ing.MaterialID,
				Kind:       entity.MovementKindOutward,
				Delta:      d.Required.Neg(),
				Ref: MovementRef{
					Reference: order.ID,
					Source:    SourceOrderCompletion,
					Notes:     item.Name,
					OrderID:   order.ID,
					RecipeID:  recipe.ID,
				},
			})
			if err != nil {
				// Falla de infraestructura sin nada descontado: el pedido se puede reintentar entero.
				if !isBusinessError(err) && len(res.Deducted) == 0 {
					uc.release(ctx, companyID, order.ID)
					return nil, fmt.Errorf("descontar pedido: insumo %s: %w", ing.MaterialID, err)
				}
				d.Error = err.Error()
				var ise *domain.InsufficientStockError
				if errors.As(err, &ise) {
					available := ise.Available
					d.Available = &available
				}
				res.Failed = append(res.Failed, d)
				res.Errors = append(res.Errors, fmt.Sprintf("ítem %s, material %s: %v", item.MenuItemID, ing.MaterialID, err))
				log.Warn().Err(err).
					Str("menu_item_id", item.MenuItemID).
					Str("material_id", ing.MaterialID).
					Str("required", d.Required.String()).
					Msg("no se pudo descontar insumo")
				continue
			}
			d.TransactionID = mv.Transaction.ID
			res.Deducted = append(res.Deducted, d)
		}
	}

	res.Success = len(res.Errors) == 0
	if !res.Success {
		uc.recorder.IngredientDeductionFailed(len(res.Failed))
		if len(res.Deducted) == 0 {
			uc.release(ctx, companyID, order.ID)
		}
	}
	log.Info().
		Int("deducted", len(res.Deducted)).
		Int("failed", len(res.Failed)).
		Int("skipped", len(res.SkippedItems)).
		Msg("descuento de pedido terminado")
	return res, nil
}

// resolveLocation ubicación vinculada a la sucursal del pedido; si no hay, la primera activa.
func (uc *OrderDeductionUseCase) resolveLocation(ctx context.Context, companyID, branchID string) (*entity.Location, error) {
	if branchID != "" {
		loc, err := uc.locationRepo.GetByBranch(ctx, companyID, branchID)
		if err != nil {
			return nil, err
		}
		if loc != nil && loc.IsActive {
			return loc, nil
		}
	}
	return uc.locationRepo.FirstActive(ctx, companyID)
}

// release permite reprocesar el pedido cuando no se llegó a descontar nada.
func (uc *OrderDeductionUseCase) release(ctx context.Context, companyID, orderID string) {
	if uc.guard == nil {
		return
	}
	if err := uc.guard.Release(ctx, companyID, orderID); err != nil {
		uc.log.Warn().Err(err).Str("order_id", orderID).Msg("no se pudo liberar el guard del pedido")
	}
}

// isBusinessError fallos de regla de negocio de un insumo; reintentar no los resuelve.
func isBusinessError(err error) bool {
	return errors.Is(err, domain.ErrInsufficientStock) ||
		errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrConflict)
}
