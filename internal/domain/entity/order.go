package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order pedido pagado que llega desde el POS; no se persiste en este servicio.
type Order struct {
	ID          string
	BranchID    string
	Items       []OrderItem
	CompletedAt time.Time
}

// OrderItem línea del pedido.
type OrderItem struct {
	MenuItemID string
	Name       string
	Quantity   decimal.Decimal
}
