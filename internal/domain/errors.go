package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrDuplicate            = errors.New("recurso duplicado")
	ErrUnauthorized         = errors.New("no autorizado")
	ErrForbidden            = errors.New("acceso denegado")
	ErrConflict             = errors.New("conflicto con el estado actual")
	ErrInsufficientStock    = errors.New("stock insuficiente")
	ErrCancellationConflict = errors.New("el traslado no puede revertirse: el destino ya consumió parte del stock")
	ErrAlreadyCancelled     = errors.New("el traslado ya fue cancelado")
)

// InsufficientStockError detalla un movimiento rechazado por falta de stock.
// errors.Is(err, ErrInsufficientStock) es verdadero.
type InsufficientStockError struct {
	LocationID string
	MaterialID string
	Available  decimal.Decimal
	Requested  decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente en ubicación %s para material %s: disponible %s, solicitado %s",
		e.LocationID, e.MaterialID, e.Available.String(), e.Requested.String())
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// Shortfall cantidad faltante para cubrir lo solicitado.
func (e *InsufficientStockError) Shortfall() decimal.Decimal {
	return e.Requested.Sub(e.Available)
}

// CancellationConflictError se devuelve cuando el destino de un traslado ya no tiene
// la cantidad original disponible para devolverla al origen.
type CancellationConflictError struct {
	DistributionID string
	LocationID     string
	Available      decimal.Decimal
	Required       decimal.Decimal
}

func (e *CancellationConflictError) Error() string {
	return fmt.Sprintf("no se puede cancelar el traslado %s: el destino %s tiene %s y se requieren %s",
		e.DistributionID, e.LocationID, e.Available.String(), e.Required.String())
}

func (e *CancellationConflictError) Unwrap() error { return ErrCancellationConflict }

// Invalid construye un error de validación con el detalle del campo.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
