package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// DistributionHandler traslados entre ubicaciones (protegido).
type DistributionHandler struct {
	uc     *inventory.DistributionUseCase
	errors errorMapper
}

// NewDistributionHandler construye el handler.
func NewDistributionHandler(uc *inventory.DistributionUseCase, log zerolog.Logger) *DistributionHandler {
	return &DistributionHandler{uc: uc, errors: errorMapper{log: log}}
}

// Create godoc
// @Summary      Crear traslado
// @Description  Mueve stock de una ubicación a otra en una sola transacción y genera el número DIST-YYYYMMDD-NNNN.
// @Tags         distributions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateDistributionRequest  true  "Traslado"
// @Success      201   {object}  dto.DistributionResponse
// @Failure      400   {object}  dto.Envelope
// @Failure      404   {object}  dto.Envelope
// @Router       /api/distributions [post]
func (h *DistributionHandler) Create(c *fiber.Ctx) error {
	companyID, err := requireCompany(c)
	if err != nil {
		return h.errors.fail(c, err)
	}
	var in dto.CreateDistributionRequest
	if err := bindJSON(c, &in); err != nil {
		return h.errors.fail(c, err)
	}
	date, err := dto.ParseDate(in.Date)
	if err != nil {
		return h.errors.fail(c, domain.Invalid("date: %s", err.Error()))
	}
	d, err := h.uc.Create(c.UserContext(), inventory.CreateDistributionInput{
		CompanyID:      companyID,
		UserID:         GetUserID(c),
		FromLocationID: in.FromLocationID,
		ToLocationID:   in.ToLocationID,
		MaterialID:     in.MaterialID,
		Quantity:       in.Quantity,
		Date:           date,
		Notes:          in.Notes,
	})
	if err != nil {
		return h.errors.fail(c, err)
	}
	return ok(c, fiber.StatusCreated, toDistributionResponse(d), "traslado "+d.Number+" registrado")
}

// List godoc
// @Summary      Listar traslados
// @Tags         distributions
// @Security     Bearer
// @Produce      json
// @Param        location_id       query  string  false  "Origen o destino"
// @Param        from_location_id  query  string  false  "Origen"
// @Param        to_location_id    query  string  false  "Destino"
// @Param        material_id       query  string  false  "Material"
// @Param        status            query  string  false  "Completed | Cancelled"
// @Param        from              query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to                query  string  false  "Hasta (YYYY-MM-DD)"
// @Param        limit             query  int     false  "Límite"  default(50)
// @Param        offset            query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.DistributionListResponse
// @Router       /api/distributions [get]
func (h *DistributionHandler) List(c *fiber.Ctx) error {
	filter, err := distributionFilter(c)
	if err != nil {
		return h.errors.fail(c, err)
	}
	list, total, err := h.uc.List(c.UserContext(), filter)
	if err != nil {
		return h.errors.fail(c, err)
	}
	items := make([]dto.DistributionResponse, 0, len(list))
	for _, d := range list {
		items = append(items, toDistributionResponse(d))
	}
	return ok(c, fiber.StatusOK, dto.DistributionListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset, Total: total},
	}, "")
}

// GetByID godoc
// @Summary      Obtener traslado
// @Tags         distributions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {object}  dto.DistributionDetailResponse
// @Failure      404  {object}  dto.Envelope
// @Router       /api/distributions/{id} [get]
func (h *DistributionHandler) GetByID(c *fiber.Ctx) error {
	companyID, err := requireCompany(c)
	if err != nil {
		return h.errors.fail(c, err)
	}
	detail, err := h.uc.GetByID(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return h.errors.fail(c, err)
	}
	return ok(c, fiber.StatusOK, dto.DistributionDetailResponse{
		DistributionResponse: toDistributionResponse(detail.Distribution),
		Transactions:         toTransactionList(detail.Transactions),
	}, "")
}

// Cancel godoc
// @Summary      Cancelar traslado
// @Description  Devuelve la cantidad al origen con entradas inversas. Falla si el destino ya no la tiene.
// @Tags         distributions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                          true   "ID del traslado"
// @Param        body  body  dto.CancelDistributionRequest  false  "Motivo"
// @Success      200   {object}  dto.DistributionResponse
// @Failure      400   {object}  dto.Envelope
// @Failure      404   {object}  dto.Envelope
// @Router       /api/distributions/{id}/cancel [put]
func (h *DistributionHandler) Cancel(c *fiber.Ctx) error {
	companyID, err := requireCompany(c)
	if err != nil {
		return h.errors.fail(c, err)
	}
	var in dto.CancelDistributionRequest
	if len(c.Body()) > 0 {
		if err := bindJSON(c, &in); err != nil {
			return h.errors.fail(c, err)
		}
	}
	d, err := h.uc.Cancel(c.UserContext(), inventory.CancelDistributionInput{
		CompanyID:      companyID,
		UserID:         GetUserID(c),
		DistributionID: c.Params("id"),
		Reason:         strings.TrimSpace(in.Reason),
	})
	if err != nil {
		return h.errors.fail(c, err)
	}
	return ok(c, fiber.StatusOK, toDistributionResponse(d), "traslado "+d.Number+" cancelado")
}

// Stats godoc
// @Summary      Totales de traslados
// @Description  Cantidad y valor de traslados completados por origen, destino y material.
// @Tags         distributions
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  string  false  "Origen o destino"
// @Param        material_id  query  string  false  "Material"
// @Param        from         query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to           query  string  false  "Hasta (YYYY-MM-DD)"
// @Success      200  {object}  dto.DistributionStatsResponse
// @Router       /api/distributions/summary/stats [get]
func (h *DistributionHandler) Stats(c *fiber.Ctx) error {
	filter, err := distributionFilter(c)
	if err != nil {
		return h.errors.fail(c, err)
	}
	stats, err := h.uc.Stats(c.UserContext(), filter)
	if err != nil {
		return h.errors.fail(c, err)
	}
	return ok(c, fiber.StatusOK, dto.DistributionStatsResponse{
		Totals:         toStatRow(stats.Totals),
		ByFromLocation: toStatRows(stats.ByFromLocation),
		ByToLocation:   toStatRows(stats.ByToLocation),
		ByMaterial:     toStatRows(stats.ByMaterial),
	}, "")
}

// SlipPDF godoc
// @Summary      Comprobante PDF del traslado
// @Tags         distributions
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.Envelope
// @Router       /api/distributions/{id}/pdf [get]
func (h *DistributionHandler) SlipPDF(c *fiber.Ctx) error {
	companyID, err := requireCompany(c)
	if err != nil {
		return h.errors.fail(c, err)
	}
	pdf, filename, err := h.uc.SlipPDF(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return h.errors.fail(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Status(fiber.StatusOK).Send(pdf)
}

func distributionFilter(c *fiber.Ctx) (repository.DistributionFilter, error) {
	companyID, err := requireCompany(c)
	if err != nil {
		return repository.DistributionFilter{}, err
	}
	from, to, err := dateRangeQuery(c)
	if err != nil {
		return repository.DistributionFilter{}, err
	}
	page := pageQuery(c)
	return repository.DistributionFilter{
		CompanyID:      companyID,
		LocationID:     c.Query("location_id", c.Query("store_id")),
		FromLocationID: c.Query("from_location_id"),
		ToLocationID:   c.Query("to_location_id"),
		MaterialID:     c.Query("material_id"),
		Status:         c.Query("status"),
		DateFrom:       from,
		DateTo:         to,
		Limit:          page.Limit,
		Offset:         page.Offset,
	}, nil
}
