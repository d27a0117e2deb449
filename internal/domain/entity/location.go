package entity

import "time"

// Tipos de ubicación.
const (
	LocationTypeStore     = "store"
	LocationTypeKitchen   = "kitchen"
	LocationTypeWarehouse = "warehouse"
	LocationTypeSite      = "site" // obra (vertical construcción)
)

// Location representa un punto donde se almacena stock: tienda, cocina, bodega u obra.
// BranchID enlaza la ubicación con la sucursal del restaurante que despacha pedidos.
type Location struct {
	ID        string
	CompanyID string
	Name      string
	Type      string
	BranchID  string
	Address   string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
