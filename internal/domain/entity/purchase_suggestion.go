package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una sugerencia de compra.
const (
	SuggestionStatusDraft    = "Draft"
	SuggestionStatusPending  = "Pending"
	SuggestionStatusApproved = "Approved"
	SuggestionStatusRejected = "Rejected"
)

// Prioridades.
const (
	SuggestionPriorityHigh   = "High"
	SuggestionPriorityMedium = "Medium"
	SuggestionPriorityLow    = "Low"
)

// PurchaseSuggestion propuesta de reposición generada por el evaluador de stock bajo.
// Como máximo una abierta (Draft/Pending) por material.
type PurchaseSuggestion struct {
	ID                string
	CompanyID         string
	MaterialID        string
	SuggestedQuantity decimal.Decimal
	Priority          string
	Status            string
	Notes             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsOpen indica si la sugerencia aún no fue resuelta por compras.
func (s *PurchaseSuggestion) IsOpen() bool {
	return s.Status == SuggestionStatusDraft || s.Status == SuggestionStatusPending
}
