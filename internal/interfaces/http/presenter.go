package http

import (
	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

func toInventoryResponse(inv *entity.LocationInventory) dto.LocationInventoryResponse {
	return dto.LocationInventoryResponse{
		LocationID:  inv.LocationID,
		MaterialID:  inv.MaterialID,
		Quantity:    inv.Quantity,
		UnitCost:    inv.UnitCost,
		StockValue:  inv.StockValue(),
		ExpiryDate:  inv.ExpiryDate,
		BatchNumber: inv.BatchNumber,
		UpdatedAt:   inv.UpdatedAt,
	}
}

func toTransactionResponse(t *entity.StockTransaction) dto.StockTransactionResponse {
	return dto.StockTransactionResponse{
		ID:                    t.ID,
		Type:                  t.Kind,
		Direction:             t.Direction,
		LocationID:            t.LocationID,
		MaterialID:            t.MaterialID,
		Quantity:              t.Quantity,
		UnitCost:              t.UnitCost,
		TotalCost:             t.TotalCost,
		PreviousQuantity:      t.PreviousQuantity,
		NewQuantity:           t.NewQuantity,
		Reference:             t.Reference,
		Source:                t.Source,
		Notes:                 t.Notes,
		DestinationLocationID: t.DestinationLocationID,
		DistributionID:        t.DistributionID,
		DistributionNumber:    t.DistributionNumber,
		OrderID:               t.OrderID,
		RecipeID:              t.RecipeID,
		ExpiryDate:            t.ExpiryDate,
		BatchNumber:           t.BatchNumber,
		CreatedAt:             t.CreatedAt,
		CreatedBy:             t.CreatedBy,
	}
}

func toTransactionList(txs []*entity.StockTransaction) []dto.StockTransactionResponse {
	out := make([]dto.StockTransactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionResponse(t))
	}
	return out
}

func toMovementResponse(res *inventory.MovementResult) dto.MovementResponse {
	return dto.MovementResponse{
		Inventory:   toInventoryResponse(res.Inventory),
		Transaction: toTransactionResponse(res.Transaction),
	}
}

func toDistributionResponse(d *entity.Distribution) dto.DistributionResponse {
	return dto.DistributionResponse{
		ID:             d.ID,
		Number:         d.Number,
		FromLocationID: d.FromLocationID,
		ToLocationID:   d.ToLocationID,
		MaterialID:     d.MaterialID,
		Quantity:       d.Quantity,
		Unit:           d.Unit,
		CostPrice:      d.CostPrice,
		TotalCost:      d.TotalCost,
		Status:         d.Status,
		FromBefore:     d.FromBefore,
		FromAfter:      d.FromAfter,
		ToBefore:       d.ToBefore,
		ToAfter:        d.ToAfter,
		Notes:          d.Notes,
		Date:           d.Date,
		CreatedBy:      d.CreatedBy,
		CreatedAt:      d.CreatedAt,
		CancelledAt:    d.CancelledAt,
		CancelledBy:    d.CancelledBy,
		CancelReason:   d.CancelReason,
	}
}

func toStatRows(rows []repository.DistributionStatRow) []dto.DistributionStatRowResponse {
	out := make([]dto.DistributionStatRowResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, toStatRow(r))
	}
	return out
}

func toStatRow(r repository.DistributionStatRow) dto.DistributionStatRowResponse {
	return dto.DistributionStatRowResponse{Key: r.Key, Count: r.Count, Quantity: r.Quantity, Value: r.Value}
}

func toLowStockItems(items []inventory.LowStockItem) []dto.LowStockItemResponse {
	out := make([]dto.LowStockItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.LowStockItemResponse{
			MaterialID:        it.MaterialID,
			SKU:               it.SKU,
			Name:              it.Name,
			Unit:              it.Unit,
			TotalQuantity:     it.TotalQuantity,
			MinLevel:          it.MinLevel,
			MinLevelDefaulted: it.MinLevelDefaulted,
			SuggestionID:      it.SuggestionID,
			SuggestionCreated: it.SuggestionCreated,
		})
	}
	return out
}

func toLowStockReport(r *inventory.LowStockReport) dto.LowStockReportResponse {
	out := dto.LowStockReportResponse{
		EvaluatedAt:          r.EvaluatedAt,
		Items:                toLowStockItems(r.Items),
		CreatedCount:         r.CreatedCount(),
		CreatedSuggestionIDs: r.CreatedSuggestionIDs,
	}
	if out.CreatedSuggestionIDs == nil {
		out.CreatedSuggestionIDs = []string{}
	}
	for _, e := range r.Errors {
		out.Errors = append(out.Errors, dto.EvaluationErrorResponse{MaterialID: e.MaterialID, Message: e.Message})
	}
	return out
}

func toSuggestionResponse(s *entity.PurchaseSuggestion) dto.PurchaseSuggestionResponse {
	return dto.PurchaseSuggestionResponse{
		ID:                s.ID,
		MaterialID:        s.MaterialID,
		SuggestedQuantity: s.SuggestedQuantity,
		Priority:          s.Priority,
		Status:            s.Status,
		Notes:             s.Notes,
		CreatedAt:         s.CreatedAt,
	}
}

func toDeductions(in []inventory.IngredientDeduction) []dto.IngredientDeductionResponse {
	out := make([]dto.IngredientDeductionResponse, 0, len(in))
	for _, d := range in {
		out = append(out, dto.IngredientDeductionResponse{
			MenuItemID:    d.MenuItemID,
			RecipeID:      d.RecipeID,
			MaterialID:    d.MaterialID,
			Required:      d.Required,
			TransactionID: d.TransactionID,
			Error:         d.Error,
			Available:     d.Available,
		})
	}
	return out
}

func toOrderDeductionResponse(r *inventory.OrderDeductionResult) dto.OrderDeductionResponse {
	out := dto.OrderDeductionResponse{
		OrderID:          r.OrderID,
		StoreID:          r.LocationID,
		AlreadyProcessed: r.AlreadyProcessed,
		Success:          r.Success,
		Deducted:         toDeductions(r.Deducted),
		Failed:           toDeductions(r.Failed),
		SkippedItems:     r.SkippedItems,
		Errors:           r.Errors,
	}
	if out.SkippedItems == nil {
		out.SkippedItems = []string{}
	}
	if out.Errors == nil {
		out.Errors = []string{}
	}
	return out
}
