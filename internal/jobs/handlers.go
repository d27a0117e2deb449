package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/metrics"
)

// LowStockEvaluator lo cumple *inventory.LowStockEvaluator.
type LowStockEvaluator interface {
	EvaluateLowStock(ctx context.Context, companyID string) (*inventory.LowStockReport, error)
}

// OrderDeductor lo cumple *inventory.OrderDeductionUseCase.
type OrderDeductor interface {
	DeductStockForOrder(ctx context.Context, companyID, userID string, order entity.Order) (*inventory.OrderDeductionResult, error)
}

// Handlers procesa las tareas del worker.
type Handlers struct {
	evaluator LowStockEvaluator
	deductor  OrderDeductor
	metrics   *metrics.Metrics
	log       zerolog.Logger
}

// NewHandlers construye los handlers; m puede ser nil.
func NewHandlers(evaluator LowStockEvaluator, deductor OrderDeductor, m *metrics.Metrics, log zerolog.Logger) *Handlers {
	return &Handlers{
		evaluator: evaluator,
		deductor:  deductor,
		metrics:   m,
		log:       log.With().Str("component", "jobs").Logger(),
	}
}

// HandleLowStock procesa TaskLowStockEvaluate.
func (h *Handlers) HandleLowStock(ctx context.Context, t *asynq.Task) error {
	var p LowStockPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil || p.CompanyID == "" {
		return fmt.Errorf("payload %s inválido: %w", TaskLowStockEvaluate, asynq.SkipRetry)
	}
	tracker := h.metrics.Track(TaskLowStockEvaluate)

	report, err := h.evaluator.EvaluateLowStock(ctx, p.CompanyID)
	if err != nil {
		h.log.Error().Err(err).Str("company_id", p.CompanyID).Msg("evaluación de stock bajo falló")
		return tracker.End(err)
	}
	h.log.Info().
		Str("company_id", p.CompanyID).
		Int("low_stock", len(report.Items)).
		Int("created", report.CreatedCount()).
		Int("errors", len(report.Errors)).
		Msg("evaluación de stock bajo terminada")
	return tracker.End(nil)
}

// HandleOrderCompleted procesa TaskOrderCompleted. Los fallos por insumo no se reintentan:
// quedan en el log y en las métricas; solo se reintenta si falla la guardia o la infraestructura.
func (h *Handlers) HandleOrderCompleted(ctx context.Context, t *asynq.Task) error {
	var p OrderCompletedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("payload %s inválido: %w", TaskOrderCompleted, asynq.SkipRetry)
	}
	tracker := h.metrics.Track(TaskOrderCompleted)

	res, err := h.deductor.DeductStockForOrder(ctx, p.CompanyID, p.UserID, p.Order())
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			h.log.Warn().Err(err).Str("order_id", p.OrderID).Msg("pedido inválido, se descarta")
			return tracker.End(fmt.Errorf("%v: %w", err, asynq.SkipRetry))
		}
		return tracker.End(err)
	}
	ev := h.log.Info()
	if !res.Success {
		ev = h.log.Warn().Strs("errors", res.Errors)
	}
	ev.Str("company_id", p.CompanyID).
		Str("order_id", p.OrderID).
		Bool("already_processed", res.AlreadyProcessed).
		Int("deducted", len(res.Deducted)).
		Int("failed", len(res.Failed)).
		Msg("pedido procesado")
	return tracker.End(nil)
}
