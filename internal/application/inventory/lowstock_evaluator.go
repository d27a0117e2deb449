package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// LowStockConfig parámetros del evaluador.
type LowStockConfig struct {
	// DefaultMinLevel se usa para materiales sin nivel mínimo configurado.
	DefaultMinLevel decimal.Decimal
	// Parallelism máximo de materiales evaluados a la vez.
	Parallelism int
}

// LowStockItem material en o bajo su nivel mínimo.
type LowStockItem struct {
	MaterialID        string
	SKU               string
	Name              string
	Unit              string
	TotalQuantity     decimal.Decimal
	MinLevel          decimal.Decimal
	MinLevelDefaulted bool
	SuggestionID      string
	SuggestionCreated bool
}

// EvaluationError fallo al evaluar un material; no detiene a los demás.
type EvaluationError struct {
	MaterialID string
	Message    string
}

// LowStockReport resultado de una evaluación.
type LowStockReport struct {
	CompanyID            string
	EvaluatedAt          time.Time
	Items                []LowStockItem
	CreatedSuggestionIDs []string
	Errors               []EvaluationError
}

// CreatedCount cantidad de sugerencias nuevas.
func (r *LowStockReport) CreatedCount() int { return len(r.CreatedSuggestionIDs) }

// LowStockEvaluator detecta materiales bajo mínimo y propone reposición.
// Como máximo una sugerencia abierta por material: volver a ejecutarlo no duplica.
type LowStockEvaluator struct {
	materialRepo   repository.RawMaterialRepository
	inventoryRepo  repository.LocationInventoryRepository
	suggestionRepo repository.PurchaseSuggestionRepository
	cfg            LowStockConfig
	recorder       Recorder
	log            zerolog.Logger
	now            func() time.Time
}

// NewLowStockEvaluator construye el evaluador.
func NewLowStockEvaluator(
	materialRepo repository.RawMaterialRepository,
	inventoryRepo repository.LocationInventoryRepository,
	suggestionRepo repository.PurchaseSuggestionRepository,
	cfg LowStockConfig,
	recorder Recorder,
	log zerolog.Logger,
) *LowStockEvaluator {
	if !cfg.DefaultMinLevel.IsPositive() {
		cfg.DefaultMinLevel = decimal.NewFromInt(10)
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = 4
	}
	return &LowStockEvaluator{
		materialRepo:   materialRepo,
		inventoryRepo:  inventoryRepo,
		suggestionRepo: suggestionRepo,
		cfg:            cfg,
		recorder:       recorderOrNop(recorder),
		log:            log.With().Str("component", "lowstock_evaluator").Logger(),
		now:            time.Now,
	}
}

// EvaluateLowStock recorre los materiales activos de la empresa. Para cada uno cuyo stock total
// (todas las ubicaciones) esté en o bajo el mínimo crea una sugerencia Draft por 2 × mínimo,
// salvo que ya exista una abierta. Los errores por material se acumulan en el reporte.
func (e *LowStockEvaluator) EvaluateLowStock(ctx context.Context, companyID string) (*LowStockReport, error) {
	if companyID == "" {
		return nil, domain.Invalid("company_id es requerido")
	}
	materials, err := e.materialRepo.ListActive(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("evaluar stock bajo: materiales: %w", err)
	}
	totals, err := e.inventoryRepo.TotalsByMaterial(ctx, companyID, "")
	if err != nil {
		return nil, fmt.Errorf("evaluar stock bajo: totales: %w", err)
	}

	report := &LowStockReport{CompanyID: companyID, EvaluatedAt: e.now()}
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(e.cfg.Parallelism)
	for _, m := range materials {
		item, low := e.check(m, totals[m.ID])
		if !low {
			continue
		}
		g.Go(func() error {
			id, created, err := e.suggest(ctx, companyID, item)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Errors = append(report.Errors, EvaluationError{MaterialID: item.MaterialID, Message: err.Error()})
				e.log.Warn().Err(err).Str("company_id", companyID).Str("material_id", item.MaterialID).Msg("no se pudo evaluar material")
			}
			item.SuggestionID = id
			item.SuggestionCreated = created
			if created {
				report.CreatedSuggestionIDs = append(report.CreatedSuggestionIDs, id)
			}
			report.Items = append(report.Items, item)
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(report.Items, func(i, j int) bool { return report.Items[i].MaterialID < report.Items[j].MaterialID })
	sort.Strings(report.CreatedSuggestionIDs)
	e.recorder.SuggestionsCreated(report.CreatedCount())
	e.log.Info().
		Str("company_id", companyID).
		Int("low_stock", len(report.Items)).
		Int("created", report.CreatedCount()).
		Int("errors", len(report.Errors)).
		Msg("evaluación de stock bajo terminada")
	return report, nil
}

// ListAlerts materiales en o bajo su mínimo, sin crear sugerencias.
// Si locationID no es vacío se considera solo el stock de esa ubicación.
func (e *LowStockEvaluator) ListAlerts(ctx context.Context, companyID, locationID string) ([]LowStockItem, error) {
	if companyID == "" {
		return nil, domain.Invalid("company_id es requerido")
	}
	materials, err := e.materialRepo.ListActive(ctx, companyID)
	if err != nil {
		return nil, err
	}
	totals, err := e.inventoryRepo.TotalsByMaterial(ctx, companyID, locationID)
	if err != nil {
		return nil, err
	}
	items := make([]LowStockItem, 0)
	for _, m := range materials {
		if item, low := e.check(m, totals[m.ID]); low {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].MaterialID < items[j].MaterialID })
	return items, nil
}

// ListSuggestions sugerencias de compra de la empresa, opcionalmente por estado.
func (e *LowStockEvaluator) ListSuggestions(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.PurchaseSuggestion, error) {
	switch status {
	case "", entity.SuggestionStatusDraft, entity.SuggestionStatusPending, entity.SuggestionStatusApproved, entity.SuggestionStatusRejected:
	default:
		return nil, domain.Invalid("status inválido: %q", status)
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return e.suggestionRepo.ListByCompany(ctx, companyID, status, limit, offset)
}

func (e *LowStockEvaluator) check(m *entity.RawMaterial, total decimal.Decimal) (LowStockItem, bool) {
	minLevel := e.cfg.DefaultMinLevel
	defaulted := true
	if m.MinLevel != nil {
		minLevel = *m.MinLevel
		defaulted = false
	}
	item := LowStockItem{
		MaterialID:        m.ID,
		SKU:               m.SKU,
		Name:              m.Name,
		Unit:              m.Unit,
		TotalQuantity:     total,
		MinLevel:          minLevel,
		MinLevelDefaulted: defaulted,
	}
	// Mínimo 0 (o negativo) = material sin reposición automática.
	if !minLevel.IsPositive() {
		return item, false
	}
	return item, total.LessThanOrEqual(minLevel)
}

// suggest devuelve el id de la sugerencia abierta del material, creándola si no existe.
func (e *LowStockEvaluator) suggest(ctx context.Context, companyID string, item LowStockItem) (string, bool, error) {
	open, err := e.suggestionRepo.FindOpenByMaterial(ctx, companyID, item.MaterialID)
	if err != nil {
		return "", false, err
	}
	if open != nil {
		return open.ID, false, nil
	}
	now := e.now()
	s := &entity.PurchaseSuggestion{
		ID:                uuid.New().String(),
		CompanyID:         companyID,
		MaterialID:        item.MaterialID,
		SuggestedQuantity: item.MinLevel.Mul(decimal.NewFromInt(2)),
		Priority:          entity.SuggestionPriorityHigh,
		Status:            entity.SuggestionStatusDraft,
		Notes: fmt.Sprintf("Stock total %s %s en o bajo el mínimo %s",
			item.TotalQuantity.String(), item.Unit, item.MinLevel.String()),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.suggestionRepo.Create(ctx, s); err != nil {
		// Otra evaluación la creó entre la consulta y el insert
		if errors.Is(err, domain.ErrDuplicate) {
			existing, ferr := e.suggestionRepo.FindOpenByMaterial(ctx, companyID, item.MaterialID)
			if ferr != nil {
				return "", false, ferr
			}
			if existing == nil {
				return "", false, fmt.Errorf("sugerencia abierta del material %s no encontrada tras duplicado", item.MaterialID)
			}
			return existing.ID, false, nil
		}
		return "", false, err
	}
	return s.ID, true, nil
}
