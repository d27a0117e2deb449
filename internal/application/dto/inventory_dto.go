package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// InwardRequest body para POST /api/store-inventory/inward.
type InwardRequest struct {
	StoreID     string          `json:"store_id" validate:"required"`
	MaterialID  string          `json:"material_id" validate:"required"`
	Quantity    decimal.Decimal `json:"quantity" validate:"gt=0"`
	UnitCost    decimal.Decimal `json:"unit_cost" validate:"gte=0"`
	Reference   string          `json:"reference" validate:"max=100"`
	Notes       string          `json:"notes" validate:"max=500"`
	ExpiryDate  string          `json:"expiry_date"`
	BatchNumber string          `json:"batch_number" validate:"max=100"`
}

// AdjustRequest body para POST /api/store-inventory/adjust.
type AdjustRequest struct {
	StoreID    string           `json:"store_id" validate:"required"`
	MaterialID string           `json:"material_id" validate:"required"`
	Mode       string           `json:"mode" validate:"required,oneof=increase decrease set"`
	Quantity   decimal.Decimal  `json:"quantity" validate:"gte=0"`
	UnitCost   *decimal.Decimal `json:"unit_cost" validate:"omitempty,gte=0"`
	Reason     string           `json:"reason" validate:"required,max=500"`
}

// ConsumeRequest body para POST /api/store-inventory/consume.
type ConsumeRequest struct {
	StoreID    string          `json:"store_id" validate:"required"`
	MaterialID string          `json:"material_id" validate:"required"`
	Quantity   decimal.Decimal `json:"quantity" validate:"gt=0"`
	Reference  string          `json:"reference" validate:"max=100"`
	Notes      string          `json:"notes" validate:"max=500"`
}

// LocationInventoryResponse stock de un material en una ubicación.
type LocationInventoryResponse struct {
	LocationID  string          `json:"store_id"`
	MaterialID  string          `json:"material_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	StockValue  decimal.Decimal `json:"stock_value"`
	ExpiryDate  *time.Time      `json:"expiry_date,omitempty"`
	BatchNumber string          `json:"batch_number,omitempty"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// StockTransactionResponse entrada del libro de stock.
type StockTransactionResponse struct {
	ID                    string          `json:"id"`
	Type                  string          `json:"type"`
	Direction             string          `json:"direction"`
	LocationID            string          `json:"store_id"`
	MaterialID            string          `json:"material_id"`
	Quantity              decimal.Decimal `json:"quantity"`
	UnitCost              decimal.Decimal `json:"unit_cost"`
	TotalCost             decimal.Decimal `json:"total_cost"`
	PreviousQuantity      decimal.Decimal `json:"previous_quantity"`
	NewQuantity           decimal.Decimal `json:"new_quantity"`
	Reference             string          `json:"reference,omitempty"`
	Source                string          `json:"source,omitempty"`
	Notes                 string          `json:"notes,omitempty"`
	DestinationLocationID string          `json:"destination_store_id,omitempty"`
	DistributionID        string          `json:"distribution_id,omitempty"`
	DistributionNumber    string          `json:"distribution_number,omitempty"`
	OrderID               string          `json:"order_id,omitempty"`
	RecipeID              string          `json:"recipe_id,omitempty"`
	ExpiryDate            *time.Time      `json:"expiry_date,omitempty"`
	BatchNumber           string          `json:"batch_number,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	CreatedBy             string          `json:"created_by,omitempty"`
}

// MovementResponse resultado de un movimiento: stock resultante y entrada del libro.
type MovementResponse struct {
	Inventory   LocationInventoryResponse `json:"inventory"`
	Transaction StockTransactionResponse  `json:"transaction"`
}

// TransactionListResponse libro paginado de una ubicación.
type TransactionListResponse struct {
	Items []StockTransactionResponse `json:"items"`
	Page  PageResponse               `json:"page"`
}

// ReconcileLineResponse disponible vs libro para un material.
type ReconcileLineResponse struct {
	MaterialID  string          `json:"material_id"`
	OnHand      decimal.Decimal `json:"on_hand"`
	LedgerTotal decimal.Decimal `json:"ledger_total"`
	Difference  decimal.Decimal `json:"difference"`
}

// LowStockItemResponse material en o bajo su mínimo.
type LowStockItemResponse struct {
	MaterialID        string          `json:"material_id"`
	SKU               string          `json:"sku,omitempty"`
	Name              string          `json:"name"`
	Unit              string          `json:"unit"`
	TotalQuantity     decimal.Decimal `json:"total_quantity"`
	MinLevel          decimal.Decimal `json:"min_level"`
	MinLevelDefaulted bool            `json:"min_level_defaulted"`
	SuggestionID      string          `json:"suggestion_id,omitempty"`
	SuggestionCreated bool            `json:"suggestion_created"`
}

// EvaluationErrorResponse fallo al evaluar un material.
type EvaluationErrorResponse struct {
	MaterialID string `json:"material_id"`
	Message    string `json:"message"`
}

// LowStockReportResponse salida de POST /api/store-inventory/alerts/low-stock/evaluate.
type LowStockReportResponse struct {
	EvaluatedAt          time.Time                 `json:"evaluated_at"`
	Items                []LowStockItemResponse    `json:"items"`
	CreatedCount         int                       `json:"created_count"`
	CreatedSuggestionIDs []string                  `json:"created_suggestion_ids"`
	Errors               []EvaluationErrorResponse `json:"errors,omitempty"`
}

// PurchaseSuggestionResponse sugerencia de compra.
type PurchaseSuggestionResponse struct {
	ID                string          `json:"id"`
	MaterialID        string          `json:"material_id"`
	SuggestedQuantity decimal.Decimal `json:"suggested_quantity"`
	Priority          string          `json:"priority"`
	Status            string          `json:"status"`
	Notes             string          `json:"notes,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// OrderItemRequest línea de un pedido pagado.
type OrderItemRequest struct {
	MenuItemID string          `json:"menu_item_id" validate:"required"`
	Name       string          `json:"name"`
	Quantity   decimal.Decimal `json:"quantity" validate:"gt=0"`
}

// OrderItems acepta un arreglo JSON o un string que contiene un arreglo JSON
// (algunos POS envían los ítems serializados).
type OrderItems []OrderItemRequest

// UnmarshalJSON normaliza ambas formas a un slice tipado.
func (o *OrderItems) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*o = nil
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("items: %w", err)
		}
		b = []byte(s)
	}
	var items []OrderItemRequest
	if err := json.Unmarshal(b, &items); err != nil {
		return fmt.Errorf("items: se esperaba un arreglo JSON: %w", err)
	}
	*o = items
	return nil
}

// OrderCompletedRequest evento de pedido pagado (POST /api/store-inventory/orders/completed).
type OrderCompletedRequest struct {
	OrderID     string     `json:"order_id" validate:"required,max=100"`
	BranchID    string     `json:"branch_id" validate:"max=100"`
	CompletedAt *time.Time `json:"completed_at"`
	Items       OrderItems `json:"items" validate:"required,min=1,dive"`
}

// IngredientDeductionResponse resultado de un insumo.
type IngredientDeductionResponse struct {
	MenuItemID    string           `json:"menu_item_id"`
	RecipeID      string           `json:"recipe_id"`
	MaterialID    string           `json:"material_id"`
	Required      decimal.Decimal  `json:"required"`
	TransactionID string           `json:"transaction_id,omitempty"`
	Error         string           `json:"error,omitempty"`
	Available     *decimal.Decimal `json:"available,omitempty"`
}

// OrderDeductionResponse resultado del descuento de un pedido.
type OrderDeductionResponse struct {
	OrderID          string                        `json:"order_id"`
	StoreID          string                        `json:"store_id,omitempty"`
	AlreadyProcessed bool                          `json:"already_processed"`
	Success          bool                          `json:"success"`
	Deducted         []IngredientDeductionResponse `json:"deducted"`
	Failed           []IngredientDeductionResponse `json:"failed"`
	SkippedItems     []string                      `json:"skipped_items"`
	Errors           []string                      `json:"errors"`
}

// OrderEnqueuedResponse respuesta cuando el descuento se procesa en el worker.
type OrderEnqueuedResponse struct {
	OrderID string `json:"order_id"`
	TaskID  string `json:"task_id"`
}
