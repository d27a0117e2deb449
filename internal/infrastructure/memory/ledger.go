package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var (
	_ repository.LocationInventoryRepository = (*InventoryRepo)(nil)
	_ repository.StockTransactionRepository  = (*LedgerRepo)(nil)
)

// InventoryRepo stock por ubicación en memoria. tx no es nil dentro de Store.Run.
type InventoryRepo struct {
	store *Store
	tx    *state
}

func (r *InventoryRepo) Get(_ context.Context, locationID, materialID string) (*entity.LocationInventory, error) {
	var out *entity.LocationInventory
	err := r.store.read(r.tx, func(st *state) error {
		if inv, ok := st.inventories[invKey{locationID, materialID}]; ok {
			out = &inv
		}
		return nil
	})
	return out, err
}

// GetForUpdate dentro de Run el lock del store ya serializa la transacción completa.
func (r *InventoryRepo) GetForUpdate(_ context.Context, companyID, locationID, materialID string) (*entity.LocationInventory, error) {
	var out *entity.LocationInventory
	err := r.store.read(r.tx, func(st *state) error {
		if inv, ok := st.inventories[invKey{locationID, materialID}]; ok && inv.CompanyID == companyID {
			out = &inv
		}
		return nil
	})
	return out, err
}

func (r *InventoryRepo) Upsert(_ context.Context, inv *entity.LocationInventory) error {
	return r.store.write(r.tx, func(st *state) error {
		st.inventories[invKey{inv.LocationID, inv.MaterialID}] = *inv
		return nil
	})
}

func (r *InventoryRepo) ListByLocation(_ context.Context, companyID, locationID string) ([]*entity.LocationInventory, error) {
	out := make([]*entity.LocationInventory, 0)
	err := r.store.read(r.tx, func(st *state) error {
		for k, inv := range st.inventories {
			if k.location == locationID && inv.CompanyID == companyID {
				out = append(out, &inv)
			}
		}
		return nil
	})
	sortInventories(out)
	return out, err
}

func (r *InventoryRepo) TotalsByMaterial(_ context.Context, companyID, locationID string) (map[string]decimal.Decimal, error) {
	out := map[string]decimal.Decimal{}
	err := r.store.read(r.tx, func(st *state) error {
		for k, inv := range st.inventories {
			if inv.CompanyID != companyID || (locationID != "" && k.location != locationID) {
				continue
			}
			out[k.material] = out[k.material].Add(inv.Quantity)
		}
		return nil
	})
	return out, err
}

func sortInventories(list []*entity.LocationInventory) {
	sort.Slice(list, func(i, j int) bool { return list[i].MaterialID < list[j].MaterialID })
}

// LedgerRepo libro de stock en memoria; solo agrega.
type LedgerRepo struct {
	store *Store
	tx    *state
}

func (r *LedgerRepo) Create(_ context.Context, t *entity.StockTransaction) error {
	return r.store.write(r.tx, func(st *state) error {
		st.ledger = append(st.ledger, *t)
		return nil
	})
}

// ListByLocation más reciente primero.
func (r *LedgerRepo) ListByLocation(_ context.Context, companyID, locationID string, f repository.TransactionFilter) ([]*entity.StockTransaction, error) {
	matched := make([]*entity.StockTransaction, 0)
	err := r.store.read(r.tx, func(st *state) error {
		for i := len(st.ledger) - 1; i >= 0; i-- {
			t := st.ledger[i]
			if t.CompanyID != companyID || t.LocationID != locationID {
				continue
			}
			if f.MaterialID != "" && t.MaterialID != f.MaterialID {
				continue
			}
			if f.Kind != "" && t.Kind != f.Kind {
				continue
			}
			if !inRange(t.CreatedAt, f.From, f.To) {
				continue
			}
			matched = append(matched, &t)
		}
		return nil
	})
	return page(matched, f.Limit, f.Offset), err
}

// ListByDistribution en orden de registro.
func (r *LedgerRepo) ListByDistribution(_ context.Context, distributionID string) ([]*entity.StockTransaction, error) {
	out := make([]*entity.StockTransaction, 0)
	err := r.store.read(r.tx, func(st *state) error {
		for _, t := range st.ledger {
			if t.DistributionID == distributionID {
				out = append(out, &t)
			}
		}
		return nil
	})
	return out, err
}

func (r *LedgerRepo) SignedTotalsByMaterial(_ context.Context, companyID, locationID string) (map[string]decimal.Decimal, error) {
	out := map[string]decimal.Decimal{}
	err := r.store.read(r.tx, func(st *state) error {
		for _, t := range st.ledger {
			if t.CompanyID == companyID && t.LocationID == locationID {
				out[t.MaterialID] = out[t.MaterialID].Add(t.SignedQuantity())
			}
		}
		return nil
	})
	return out, err
}
