package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateDistributionRequest body para POST /api/distributions.
type CreateDistributionRequest struct {
	FromLocationID string          `json:"from_location_id" validate:"required"`
	ToLocationID   string          `json:"to_location_id" validate:"required,nefield=FromLocationID"`
	MaterialID     string          `json:"material_id" validate:"required"`
	Quantity       decimal.Decimal `json:"quantity" validate:"gt=0"`
	Date           string          `json:"date"`
	Notes          string          `json:"notes" validate:"max=500"`
}

// CancelDistributionRequest body opcional para PUT /api/distributions/:id/cancel.
type CancelDistributionRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// DistributionResponse salida de un traslado.
type DistributionResponse struct {
	ID             string          `json:"id"`
	Number         string          `json:"distribution_number"`
	FromLocationID string          `json:"from_location_id"`
	ToLocationID   string          `json:"to_location_id"`
	MaterialID     string          `json:"material_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	Unit           string          `json:"unit"`
	CostPrice      decimal.Decimal `json:"cost_price"`
	TotalCost      decimal.Decimal `json:"total_cost"`
	Status         string          `json:"status"`
	FromBefore     decimal.Decimal `json:"from_quantity_before"`
	FromAfter      decimal.Decimal `json:"from_quantity_after"`
	ToBefore       decimal.Decimal `json:"to_quantity_before"`
	ToAfter        decimal.Decimal `json:"to_quantity_after"`
	Notes          string          `json:"notes,omitempty"`
	Date           time.Time       `json:"date"`
	CreatedBy      string          `json:"created_by,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	CancelledAt    *time.Time      `json:"cancelled_at,omitempty"`
	CancelledBy    string          `json:"cancelled_by,omitempty"`
	CancelReason   string          `json:"cancel_reason,omitempty"`
}

// DistributionDetailResponse traslado con sus entradas del libro.
type DistributionDetailResponse struct {
	DistributionResponse
	Transactions []StockTransactionResponse `json:"transactions"`
}

// DistributionListResponse lista paginada de traslados.
type DistributionListResponse struct {
	Items []DistributionResponse `json:"items"`
	Page  PageResponse           `json:"page"`
}

// DistributionStatRowResponse totales para una clave.
type DistributionStatRowResponse struct {
	Key      string          `json:"key,omitempty"`
	Count    int             `json:"count"`
	Quantity decimal.Decimal `json:"quantity"`
	Value    decimal.Decimal `json:"value"`
}

// DistributionStatsResponse salida de GET /api/distributions/summary/stats.
type DistributionStatsResponse struct {
	Totals         DistributionStatRowResponse   `json:"totals"`
	ByFromLocation []DistributionStatRowResponse `json:"by_from_store"`
	ByToLocation   []DistributionStatRowResponse `json:"by_to_store"`
	ByMaterial     []DistributionStatRowResponse `json:"by_material"`
}
