package http

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/internal/jobs"
)

// OrderEnqueuer encola el descuento de un pedido para el worker.
type OrderEnqueuer interface {
	EnqueueOrderCompleted(ctx context.Context, p jobs.OrderCompletedPayload) (string, error)
}

// StoreInventoryHandler stock por ubicación, alertas y descuento por pedido (protegido).
type StoreInventoryHandler struct {
	stock     *inventory.StoreInventoryUseCase
	evaluator *inventory.LowStockEvaluator
	deductor  *inventory.OrderDeductionUseCase
	enqueuer  OrderEnqueuer
	errors    errorMapper
}

// NewStoreInventoryHandler construye el handler. Con enqueuer no nulo los pedidos
// completados se descuentan en el worker y la respuesta es 202.
func NewStoreInventoryHandler(
	stock *inventory.StoreInventoryUseCase,
	evaluator *inventory.LowStockEvaluator,
	deductor *inventory.OrderDeductionUseCase,
	enqueuer OrderEnqueuer,
	log zerolog.Logger,
) *StoreInventoryHandler {
	return &StoreInventoryHandler{
		stock:     stock,
		evaluator: evaluator,
		deductor:  deductor,
		enqueuer:  enqueuer,
		errors:    errorMapper{log: log},
	}
}

// Inward godoc
// @Summary      Registrar entrada de stock
// @Description  Compra o recepción (GRN). Recalcula el costo promedio ponderado.
// @Tags         store-inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.InwardRequest  true  "Entrada"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.Envelope
// @Failure      404   {object}  dto.Envelope
// @Router       /api/store-inventory/inward [post]
func (h *StoreInventoryHandler) Inward(c *fiber.Ctx) error {
	companyID, err := requireCompany(c)
	if err != nil {
		return h.errors.fail(c, err)
	}
	var in dto.InwardRequest
	if err := bindJSON(c, &in); err != nil {
		return h.errors.fail(c, err)
	}
	expiry, err := dto.ParseDate(in.ExpiryDate)
	if err != nil {
		return h.errors.fail(c, domain.Invalid("expiry_date: %s", err.Error()))
	}
	res, err := h.stock.RecordInward(c.UserContext(), inventory.InwardInput{
		CompanyID:   companyID,
		UserID:      GetUserID(c),
		LocationID:  in.StoreID,
		MaterialID:  in.MaterialID,
		Quantity:    in.Quantity,
		UnitCost:    in.UnitCost,
		Reference:   in.Reference,
		Notes:       in.Notes,
		ExpiryDate:  expiry,
		BatchNumber: in.BatchNumber,
	})
	if err != nil {
		return h.errors.fail(c, err)
	}
	return ok(c, fiber.StatusCreated, toMovementResponse(res), "entrada registrada")
}

// Adjust godoc
// @Summary      Ajuste manual de stock
// @Description  mode=increase suma, decrease resta (sin quedar negativo) y set fija la cantidad.
// @Tags         store-inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustRequest  true  "Ajuste"
// @Success      200   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.Envelope
// @Router       /api/store-inventory/adjust [post]
func (h *StoreInventoryHandler) Adjust(c *fiber.Ctx) error {
	companyID, err := requireCompany(c)
	if err != nil {
		return h.errors.fail(c, err)
	}
	var in dto.AdjustRequest
	if err := bindJSON(c, &in); err != nil {
		return h.errors.fail(c, err)
	}
	unitCost := decimal.Zero
	if in.UnitCost != nil {
		unitCost = *in.UnitCost
	}
	res, err := h.stock.Adjust(c.UserContext(), inventory.AdjustInput{
		CompanyID:  companyID,
		UserID:     GetUserID(c),
		LocationID: in.StoreID,
		MaterialID: in.MaterialID,
		Mode:       in.Mode,
		Quantity:   in.Quantity,
		UnitCost:   unitCost,
		Reason:     in.Reason,
	})
	if err != nil {
		return h.errors.fail(c, err)
	}
	return ok(c, fiber.StatusOK, toMovementResponse(res), "ajuste registrado")
}

// Consume godoc
// @Summary      Registrar consumo
// @Tags         store-inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ConsumeRequest  true  "Consumo"
// @Success      200   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.Envelope
// @Router       /api/store-inventory/consume [post]
func (h *StoreInventoryHandler) Consume(c *fiber.Ctx) error {
	companyID, err := requireCompany(c)
	if err != nil {
		return h.errors.fail(c, err)
	}
	var in dto.ConsumeRequest
	if err := bindJSON(c, &in); err != nil {
		return h.errors.fail(c, err)
	}
	res, err := h.stock.Consume(c.UserContext(), inventory.ConsumeInput{
		CompanyID:  companyID,
		UserID:     GetUserID(c),
		LocationID: in.StoreID,
		MaterialID: in.MaterialID,
		Quantity:   in.Quantity,
		Reference:  in.Reference,
		Notes:      in.Notes,
	})
	if err != nil {
		return h.errors.fail(c, err)
	}
	return ok(c, fiber.StatusOK, toMovementResponse(res), "consumo registrado")
}

// ListInventory godoc
// @Summary      Stock de una ubicación
// @Tags         store-inventory
// @Security     Bearer
// @Produce      json
// @Param        storeId  path  string  true  "ID de la ubicación"
// @Success      200  {array}   dto.LocationInventoryResponse
// @Failure      404  {object}  dto.Envelope
// @Router       /api/store-inventory/store/{storeId} [get]
func (h *StoreInventoryHandler) ListInventory(c *fiber.Ctx) error {
	companyID, err := requireCompany(c)
	if err != nil {
		return h.errors.fail(c, err)
	}
	list, err := h.stock.ListInventory(c.UserContext(), companyID, c.Params("storeId"))
	if err != nil {
		return h.errors.fail(c, err)
	}
	out := make([]dto.LocationInventoryResponse, 0, len(list))
	for _, inv := range list {
		out = append(out, toInventoryResponse(inv))
	}
	return ok(c, fiber.StatusOK, out, "")
}

// ListTransactions godoc
// @Summary      Libro de stock de una ubicación
// @Tags         store-inventory
// @Security     Bearer
// @Produce      json
// @Param        storeId      path   string  true   "ID de la ubicación"
// @Param        material_id  query  string  false  "Material"
// @Param        type         query  string  false  "inward | outward | transfer | adjustment | consumed"
// @Param        from         query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to           query  string  false  "Hasta (YYYY-MM-DD)"
// @Param        limit        query  int     false  "Límite"  default(50)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.TransactionListResponse
// @Router       /api/store-inventory/store/{storeId}/transactions [get]
func (h *StoreInventoryHandler) ListTransactions(c *fiber.Ctx) error {
	companyID, err := requireCompany(c)
	if err != nil {
		return h.errors.fail(c, err)
	}
	from, to, err := dateRangeQuery(c)
	if err != nil {
		return h.errors.fail(c, err)
	}
	kind := c.Query("type")
	if kind != "" && !entity.ValidMovementKind(kind) {
		return h.errors.fail(c, domain.Invalid("type inválido: %q", kind))
	}
	page := pageQuery(c)
	txs, err := h.stock.ListTransactions(c.UserContext(), companyID, c.Params("storeId"), repository.TransactionFilter{
		MaterialID: c.Query("material_id"),
		Kind:       kind,
		From:       from,
		To:         to,
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		return h.errors.fail(c, err)
	}
	return ok(c, fiber.StatusOK, dto.TransactionListResponse{Items: toTransactionList(txs), Page: page}, "")
}

// Reconcile godoc
// @Summary      Conciliar stock contra el libro
// @Description  Para cada material compara la cantidad disponible con la suma con signo del libro.
// @Tags         store-inventory
// @Security     Bearer
// @Produce      json
// @Param        storeId  path  string  true  "ID de la ubicación"
// @Success      200  {array}  dto.ReconcileLineResponse
// @Router       /api/store-inventory/store/{storeId}/reconcile [get]
func (h *StoreInventoryHandler) Reconcile(c *fiber.Ctx) error {
	companyID, err := requireCompany(c)
	if err != nil {
		return h.errors.fail(c, err)
	}
	lines, err := h.stock.Reconcile(c.UserContext(), companyID, c.Params("storeId"))
	if err != nil {
		return h.errors.fail(c, err)
	}
	out := make([]dto.ReconcileLineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, dto.ReconcileLineResponse{
			MaterialID:  l.MaterialID,
			OnHand:      l.OnHand,
			LedgerTotal: l.LedgerTotal,
			Difference:  l.Difference,
		})
	}
	return ok(c, fiber.StatusOK, out, "")
}

// LowStockAlerts godoc
// @Summary      Materiales en o bajo su mínimo
// @Tags         store-inventory
// @Security     Bearer
// @Produce      json
// @Param        store_id  query  string  false  "Solo el stock de esta ubicación"
// @Success      200  {array}  dto.LowStockItemResponse
// @Router       /api/store-inventory/alerts/low-stock [get]
func (h *StoreInventoryHandler) LowStockAlerts(c *fiber.Ctx) error {
	companyID, err := requireCompany(c)
	if err != nil {
		return h.errors.fail(c, err)
	}
	items, err := h.evaluator.ListAlerts(c.UserContext(), companyID, c.Query("store_id"))
	if err != nil {
		return h.errors.fail(c, err)
	}
	return ok(c, fiber.StatusOK, toLowStockItems(items), "")
}

// EvaluateLowStock godoc
// @Summary      Evaluar stock bajo
// @Description  Crea una sugerencia de compra por material bajo su mínimo si no tiene una abierta.
// @Tags         store-inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.LowStockReportResponse
// @Router       /api/store-inventory/alerts/low-stock/evaluate [post]
func (h *StoreInventoryHandler) EvaluateLowStock(c *fiber.Ctx) error {
	companyID, err := requireCompany(c)
	if err != nil {
		return h.errors.fail(c, err)
	}
	report, err := h.evaluator.EvaluateLowStock(c.UserContext(), companyID)
	if err != nil {
		return h.errors.fail(c, err)
	}
	return ok(c, fiber.StatusOK, toLowStockReport(report), "")
}

// ListSuggestions godoc
// @Summary      Sugerencias de compra
// @Tags         store-inventory
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "Draft | Pending | Approved | Rejected"
// @Param        limit   query  int     false  "Límite"  default(50)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {array}  dto.PurchaseSuggestionResponse
// @Router       /api/store-inventory/suggestions [get]
func (h *StoreInventoryHandler) ListSuggestions(c *fiber.Ctx) error {
	companyID, err := requireCompany(c)
	if err != nil {
		return h.errors.fail(c, err)
	}
	page := pageQuery(c)
	list, err := h.evaluator.ListSuggestions(c.UserContext(), companyID, c.Query("status"), page.Limit, page.Offset)
	if err != nil {
		return h.errors.fail(c, err)
	}
	out := make([]dto.PurchaseSuggestionResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toSuggestionResponse(s))
	}
	return ok(c, fiber.StatusOK, out, "")
}

// OrderCompleted godoc
// @Summary      Descontar insumos de un pedido pagado
// @Description  Descuenta por receta los insumos de cada ítem. Un pedido se procesa una sola vez.
// @Description  Si el descuento asíncrono está activo responde 202 con el id de la tarea.
// @Tags         store-inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OrderCompletedRequest  true  "Pedido"
// @Success      200   {object}  dto.OrderDeductionResponse
// @Success      202   {object}  dto.OrderEnqueuedResponse
// @Failure      400   {object}  dto.Envelope
// @Router       /api/store-inventory/orders/completed [post]
func (h *StoreInventoryHandler) OrderCompleted(c *fiber.Ctx) error {
	companyID, err := requireCompany(c)
	if err != nil {
		return h.errors.fail(c, err)
	}
	var in dto.OrderCompletedRequest
	if err := bindJSON(c, &in); err != nil {
		return h.errors.fail(c, err)
	}
	payload := orderPayload(companyID, GetUserID(c), in)

	if h.enqueuer != nil {
		taskID, err := h.enqueuer.EnqueueOrderCompleted(c.UserContext(), payload)
		if err != nil {
			return h.errors.fail(c, err)
		}
		return ok(c, fiber.StatusAccepted, dto.OrderEnqueuedResponse{OrderID: payload.OrderID, TaskID: taskID}, "pedido encolado")
	}

	res, err := h.deductor.DeductStockForOrder(c.UserContext(), companyID, payload.UserID, payload.Order())
	if err != nil {
		return h.errors.fail(c, err)
	}
	msg := "insumos descontados"
	switch {
	case res.AlreadyProcessed:
		msg = "el pedido ya fue procesado"
	case !res.Success:
		msg = "descuento parcial: revisar insumos fallidos"
	}
	return ok(c, fiber.StatusOK, toOrderDeductionResponse(res), msg)
}

func orderPayload(companyID, userID string, in dto.OrderCompletedRequest) jobs.OrderCompletedPayload {
	completedAt := time.Now().UTC()
	if in.CompletedAt != nil {
		completedAt = *in.CompletedAt
	}
	items := make([]jobs.OrderItemPayload, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, jobs.OrderItemPayload{
			MenuItemID: strings.TrimSpace(it.MenuItemID),
			Name:       it.Name,
			Quantity:   it.Quantity,
		})
	}
	return jobs.OrderCompletedPayload{
		CompanyID:   companyID,
		UserID:      userID,
		OrderID:     strings.TrimSpace(in.OrderID),
		BranchID:    strings.TrimSpace(in.BranchID),
		CompletedAt: completedAt,
		Items:       items,
	}
}
