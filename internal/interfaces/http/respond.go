package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
)

// Códigos de error del sobre de respuesta.
const (
	CodeValidation           = "VALIDATION_ERROR"
	CodeNotFound             = "NOT_FOUND"
	CodeInsufficientStock    = "INSUFFICIENT_STOCK"
	CodeCancellationConflict = "CANCELLATION_CONFLICT"
	CodeAlreadyCancelled     = "ALREADY_CANCELLED"
	CodeConflict             = "CONFLICT"
	CodeDuplicate            = "DUPLICATE"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeForbidden            = "FORBIDDEN"
	CodeInternal             = "INTERNAL_ERROR"
)

// ok escribe {success: true, data, message}.
func ok(c *fiber.Ctx, status int, data any, message string) error {
	return c.Status(status).JSON(dto.Envelope{Success: true, Data: data, Message: message})
}

// failWith escribe {success: false, error: {code, message, details}}.
func failWith(c *fiber.Ctx, status int, code, message string, details any) error {
	return c.Status(status).JSON(dto.Envelope{
		Success: false,
		Error:   &dto.ErrorResponse{Code: code, Message: message, Details: details},
	})
}

// errorMapper traduce errores de dominio a estado HTTP y sobre. Los inesperados se registran
// y se responden con un mensaje genérico.
type errorMapper struct {
	log zerolog.Logger
}

func (m errorMapper) fail(c *fiber.Ctx, err error) error {
	var (
		stockErr  *domain.InsufficientStockError
		cancelErr *domain.CancellationConflictError
		validErr  *ValidationError
	)
	switch {
	case errors.As(err, &validErr):
		return failWith(c, fiber.StatusBadRequest, CodeValidation, err.Error(), fiber.Map{"fields": validErr.Fields})
	case errors.As(err, &stockErr):
		return failWith(c, fiber.StatusBadRequest, CodeInsufficientStock, err.Error(), stockDetails(stockErr.LocationID, stockErr.MaterialID, stockErr.Available, stockErr.Requested))
	case errors.As(err, &cancelErr):
		return failWith(c, fiber.StatusBadRequest, CodeCancellationConflict, err.Error(), fiber.Map{
			"distribution_id": cancelErr.DistributionID,
			"store_id":        cancelErr.LocationID,
			"available":       cancelErr.Available,
			"required":        cancelErr.Required,
		})
	case errors.Is(err, domain.ErrInvalidInput):
		return failWith(c, fiber.StatusBadRequest, CodeValidation, err.Error(), nil)
	case errors.Is(err, domain.ErrInsufficientStock):
		return failWith(c, fiber.StatusBadRequest, CodeInsufficientStock, err.Error(), nil)
	case errors.Is(err, domain.ErrCancellationConflict):
		return failWith(c, fiber.StatusBadRequest, CodeCancellationConflict, err.Error(), nil)
	case errors.Is(err, domain.ErrAlreadyCancelled):
		return failWith(c, fiber.StatusBadRequest, CodeAlreadyCancelled, err.Error(), nil)
	case errors.Is(err, domain.ErrConflict):
		return failWith(c, fiber.StatusBadRequest, CodeConflict, err.Error(), nil)
	case errors.Is(err, domain.ErrDuplicate):
		return failWith(c, fiber.StatusBadRequest, CodeDuplicate, err.Error(), nil)
	case errors.Is(err, domain.ErrNotFound):
		return failWith(c, fiber.StatusNotFound, CodeNotFound, err.Error(), nil)
	case errors.Is(err, domain.ErrUnauthorized):
		return failWith(c, fiber.StatusUnauthorized, CodeUnauthorized, err.Error(), nil)
	case errors.Is(err, domain.ErrForbidden):
		return failWith(c, fiber.StatusForbidden, CodeForbidden, err.Error(), nil)
	}
	m.log.Error().Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Str("company_id", GetCompanyID(c)).
		Msg("error inesperado")
	return failWith(c, fiber.StatusInternalServerError, CodeInternal, "error interno", nil)
}

func stockDetails(locationID, materialID string, available, requested decimal.Decimal) fiber.Map {
	return fiber.Map{
		"store_id":    locationID,
		"material_id": materialID,
		"available":   available,
		"requested":   requested,
	}
}

// ErrorHandler manejador global de Fiber: errores de ruteo (404/405) y panics recuperados
// también salen con el sobre.
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	m := errorMapper{log: log}
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code := CodeInternal
			switch fe.Code {
			case fiber.StatusNotFound:
				code = CodeNotFound
			case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity, fiber.StatusMethodNotAllowed:
				code = CodeValidation
			case fiber.StatusUnauthorized:
				code = CodeUnauthorized
			case fiber.StatusForbidden:
				code = CodeForbidden
			}
			return failWith(c, fe.Code, code, fe.Message, nil)
		}
		return m.fail(c, err)
	}
}
