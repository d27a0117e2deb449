package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
)

// requireCompany devuelve el CompanyID del token o ErrUnauthorized.
func requireCompany(c *fiber.Ctx) (string, error) {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return "", domain.ErrUnauthorized
	}
	return companyID, nil
}

// pageQuery lee limit/offset del query string con tope 200 y valor por defecto 50.
func pageQuery(c *fiber.Ctx) dto.PageResponse {
	p := dto.PageRequest{
		Limit:  c.QueryInt("limit", dto.DefaultPageLimit),
		Offset: c.QueryInt("offset", 0),
	}
	p.DefaultPage()
	return dto.PageResponse{Limit: p.Limit, Offset: p.Offset}
}

// dateRangeQuery lee from/to como fechas; "to" sin hora incluye el día completo.
func dateRangeQuery(c *fiber.Ctx) (from, to *time.Time, err error) {
	if from, err = dto.ParseDate(c.Query("from")); err != nil {
		return nil, nil, domain.Invalid("from: %s", err.Error())
	}
	raw := c.Query("to")
	if to, err = dto.ParseDate(raw); err != nil {
		return nil, nil, domain.Invalid("to: %s", err.Error())
	}
	to = dto.EndOfDay(raw, to)
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, domain.Invalid("to no puede ser anterior a from")
	}
	return from, to, nil
}
