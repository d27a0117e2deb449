package inventory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	appinv "github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testCompanyID = "company-1"
	testUserID    = "user-1"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	v := dec(s)
	return &v
}

type fixture struct {
	store     *memory.Store
	mutator   *appinv.Mutator
	dist      *appinv.DistributionUseCase
	stock     *appinv.StoreInventoryUseCase
	evaluator *appinv.LowStockEvaluator
	orders    *appinv.OrderDeductionUseCase
	seq       int
}

func newFixture(t *testing.T, guard appinv.OrderGuard) *fixture {
	t.Helper()
	store := memory.New()
	log := zerolog.Nop()
	mutator := appinv.NewMutator(store, nil, log)
	return &fixture{
		store:   store,
		mutator: mutator,
		dist: appinv.NewDistributionUseCase(
			store, mutator, store.Locations(), store.Materials(), store.Distributions(), store.Ledger(), nil, nil, log,
		),
		stock: appinv.NewStoreInventoryUseCase(mutator, store.Locations(), store.Materials(), store.Inventories(), store.Ledger()),
		evaluator: appinv.NewLowStockEvaluator(
			store.Materials(), store.Inventories(), store.Suggestions(),
			appinv.LowStockConfig{DefaultMinLevel: dec("10"), Parallelism: 2}, nil, log,
		),
		orders: appinv.NewOrderDeductionUseCase(mutator, store.Recipes(), store.Locations(), guard, nil, log),
	}
}

// location crea una ubicación activa; las creadas antes quedan primero en FirstActive.
func (f *fixture) location(t *testing.T, name, branchID string) string {
	t.Helper()
	f.seq++
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(f.seq) * time.Minute)
	loc := &entity.Location{
		ID:        uuid.New().String(),
		CompanyID: testCompanyID,
		Name:      name,
		Type:      entity.LocationTypeStore,
		BranchID:  branchID,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, f.store.Locations().Create(context.Background(), loc))
	return loc.ID
}

func (f *fixture) material(t *testing.T, name string, minLevel *decimal.Decimal) string {
	t.Helper()
	m := &entity.RawMaterial{
		ID:        uuid.New().String(),
		CompanyID: testCompanyID,
		Name:      name,
		Unit:      "kg",
		MinLevel:  minLevel,
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, f.store.Materials().Create(context.Background(), m))
	return m.ID
}

func (f *fixture) inward(t *testing.T, locationID, materialID, qty, cost string) {
	t.Helper()
	_, err := f.stock.RecordInward(context.Background(), appinv.InwardInput{
		CompanyID:  testCompanyID,
		UserID:     testUserID,
		LocationID: locationID,
		MaterialID: materialID,
		Quantity:   dec(qty),
		UnitCost:   dec(cost),
	})
	require.NoError(t, err)
}

// onHand cantidad disponible; cero si la fila no existe.
func (f *fixture) onHand(t *testing.T, locationID, materialID string) decimal.Decimal {
	t.Helper()
	inv, err := f.store.Inventories().Get(context.Background(), locationID, materialID)
	require.NoError(t, err)
	if inv == nil {
		return decimal.Zero
	}
	return inv.Quantity
}

func (f *fixture) costBasis(t *testing.T, locationID, materialID string) decimal.Decimal {
	t.Helper()
	inv, err := f.store.Inventories().Get(context.Background(), locationID, materialID)
	require.NoError(t, err)
	require.NotNil(t, inv)
	return inv.UnitCost
}

func (f *fixture) ledger(t *testing.T, locationID string) []*entity.StockTransaction {
	t.Helper()
	txs, err := f.store.Ledger().ListByLocation(context.Background(), testCompanyID, locationID, repository.TransactionFilter{})
	require.NoError(t, err)
	return txs
}

// memGuard guard de pedidos en memoria.
type memGuard struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newMemGuard() *memGuard { return &memGuard{seen: map[string]bool{}} }

func (g *memGuard) Acquire(_ context.Context, companyID, orderID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	k := companyID + ":" + orderID
	if g.seen[k] {
		return false, nil
	}
	g.seen[k] = true
	return true, nil
}

func (g *memGuard) Release(_ context.Context, companyID, orderID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.seen, companyID+":"+orderID)
	return nil
}
