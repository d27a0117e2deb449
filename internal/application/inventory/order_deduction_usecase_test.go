package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinv "github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

func (f *fixture) recipe(t *testing.T, menuItemID string, ingredients ...entity.RecipeIngredient) string {
	t.Helper()
	rec := &entity.Recipe{
		ID:          uuid.New().String(),
		CompanyID:   testCompanyID,
		MenuItemID:  menuItemID,
		Name:        "Receta " + menuItemID,
		IsActive:    true,
		Ingredients: ingredients,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	require.NoError(t, f.store.Recipes().Create(context.Background(), rec))
	return rec.ID
}

func ingredient(materialID, qty string) entity.RecipeIngredient {
	return entity.RecipeIngredient{MaterialID: materialID, Quantity: dec(qty), Unit: "kg"}
}

func order(id, branchID string, items ...entity.OrderItem) entity.Order {
	return entity.Order{ID: id, BranchID: branchID, Items: items, CompletedAt: time.Now()}
}

func item(menuItemID, qty string) entity.OrderItem {
	return entity.OrderItem{MenuItemID: menuItemID, Name: menuItemID, Quantity: dec(qty)}
}

func TestDeductStockForOrder_DescuentaIngredientes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	kitchen := f.location(t, "Cocina", "branch-1")
	flour := f.material(t, "Harina", nil)
	sugar := f.material(t, "Azúcar", nil)
	f.inward(t, kitchen, flour, "10", "2")
	f.inward(t, kitchen, sugar, "5", "4")
	recipeID := f.recipe(t, "pastel", ingredient(flour, "0.2"), ingredient(sugar, "0.05"))

	res, err := f.orders.DeductStockForOrder(ctx, testCompanyID, testUserID, order("ord-1", "branch-1", item("pastel", "3")))
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, kitchen, res.LocationID)
	assert.Len(t, res.Deducted, 2)
	assert.Empty(t, res.Errors)

	assert.True(t, f.onHand(t, kitchen, flour).Equal(dec("9.4")))
	assert.True(t, f.onHand(t, kitchen, sugar).Equal(dec("4.85")))

	txs := f.ledger(t, kitchen)
	require.NotEmpty(t, txs)
	last := txs[0]
	assert.Equal(t, entity.MovementKindOutward, last.Kind)
	assert.Equal(t, "ord-1", last.OrderID)
	assert.Equal(t, recipeID, last.RecipeID)
	assert.Equal(t, appinv.SourceOrderCompletion, last.Source)
}

func TestDeductStockForOrder_ItemSinRecetaSeOmite(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.location(t, "Cocina", "")

	res, err := f.orders.DeductStockForOrder(ctx, testCompanyID, testUserID, order("ord-2", "", item("gaseosa", "2")))
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, []string{"gaseosa"}, res.SkippedItems)
	assert.Empty(t, res.Deducted)
}

// Un insumo sin stock se reporta y el resto del pedido se sigue descontando.
func TestDeductStockForOrder_FalloParcialContinua(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	kitchen := f.location(t, "Cocina", "")
	flour := f.material(t, "Harina", nil)
	cheese := f.material(t, "Queso", nil)
	tomato := f.material(t, "Tomate", nil)
	f.inward(t, kitchen, flour, "10", "2")
	f.inward(t, kitchen, cheese, "0.1", "30")
	f.inward(t, kitchen, tomato, "5", "1")
	f.recipe(t, "pizza", ingredient(flour, "0.3"), ingredient(cheese, "0.2"))
	f.recipe(t, "ensalada", ingredient(tomato, "0.5"))

	res, err := f.orders.DeductStockForOrder(ctx, testCompanyID, testUserID,
		order("ord-3", "", item("pizza", "1"), item("ensalada", "2")))
	require.NoError(t, err)
	assert.False(t, res.Success)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, cheese, res.Failed[0].MaterialID)
	require.NotNil(t, res.Failed[0].Available)
	assert.True(t, res.Failed[0].Available.Equal(dec("0.1")))
	assert.Len(t, res.Deducted, 2)
	assert.Len(t, res.Errors, 1)

	assert.True(t, f.onHand(t, kitchen, flour).Equal(dec("9.7")))
	assert.True(t, f.onHand(t, kitchen, cheese).Equal(dec("0.1")), "el insumo fallido no se toca")
	assert.True(t, f.onHand(t, kitchen, tomato).Equal(dec("4")))
}

func TestDeductStockForOrder_UbicacionPorSucursalOPrimera(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	first := f.location(t, "Principal", "")
	branch := f.location(t, "Sucursal Norte", "norte")
	mat := f.material(t, "Pan", nil)
	f.inward(t, first, mat, "10", "1")
	f.inward(t, branch, mat, "10", "1")
	f.recipe(t, "sandwich", ingredient(mat, "1"))

	res, err := f.orders.DeductStockForOrder(ctx, testCompanyID, testUserID, order("o-norte", "norte", item("sandwich", "1")))
	require.NoError(t, err)
	assert.Equal(t, branch, res.LocationID)

	res, err = f.orders.DeductStockForOrder(ctx, testCompanyID, testUserID, order("o-sur", "sur", item("sandwich", "1")))
	require.NoError(t, err)
	assert.Equal(t, first, res.LocationID, "sin ubicación de la sucursal se usa la primera activa")

	assert.True(t, f.onHand(t, branch, mat).Equal(dec("9")))
	assert.True(t, f.onHand(t, first, mat).Equal(dec("9")))
}

func TestDeductStockForOrder_EventoRepetidoNoDescuentaDosVeces(t *testing.T) {
	ctx := context.Background()
	guard := newMemGuard()
	f := newFixture(t, guard)
	kitchen := f.location(t, "Cocina", "")
	mat := f.material(t, "Café", nil)
	f.inward(t, kitchen, mat, "1", "50")
	f.recipe(t, "tinto", ingredient(mat, "0.01"))

	o := order("ord-dup", "", item("tinto", "10"))
	res, err := f.orders.DeductStockForOrder(ctx, testCompanyID, testUserID, o)
	require.NoError(t, err)
	assert.False(t, res.AlreadyProcessed)

	res, err = f.orders.DeductStockForOrder(ctx, testCompanyID, testUserID, o)
	require.NoError(t, err)
	assert.True(t, res.AlreadyProcessed)
	assert.Empty(t, res.Deducted)

	assert.True(t, f.onHand(t, kitchen, mat).Equal(dec("0.9")))
}

func TestDeductStockForOrder_SinUbicacionLiberaGuard(t *testing.T) {
	ctx := context.Background()
	guard := newMemGuard()
	f := newFixture(t, guard)

	res, err := f.orders.DeductStockForOrder(ctx, testCompanyID, testUserID, order("ord-x", "", item("pizza", "1")))
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Errors)

	ok, err := guard.Acquire(ctx, testCompanyID, "ord-x")
	require.NoError(t, err)
	assert.True(t, ok, "el pedido debe poder reprocesarse")
}

// Sin stock para ningún insumo nada se descuenta: el guard se libera y, tras reponer,
// el mismo pedido se descuenta normalmente.
func TestDeductStockForOrder_TodoFallaPermiteReintentar(t *testing.T) {
	ctx := context.Background()
	guard := newMemGuard()
	f := newFixture(t, guard)
	kitchen := f.location(t, "Cocina", "")
	mat := f.material(t, "Queso", nil)
	f.recipe(t, "arepa", ingredient(mat, "0.1"))

	o := order("ord-sin-stock", "", item("arepa", "1"))
	res, err := f.orders.DeductStockForOrder(ctx, testCompanyID, testUserID, o)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Empty(t, res.Deducted)
	require.Len(t, res.Failed, 1)

	f.inward(t, kitchen, mat, "5", "10")

	res, err = f.orders.DeductStockForOrder(ctx, testCompanyID, testUserID, o)
	require.NoError(t, err)
	assert.False(t, res.AlreadyProcessed)
	assert.True(t, res.Success)
	assert.Len(t, res.Deducted, 1)
	assert.True(t, f.onHand(t, kitchen, mat).Equal(dec("4.9")))
}

type failingRecipes struct {
	repository.RecipeRepository
	err error
}

func (r failingRecipes) GetActiveByMenuItem(context.Context, string, string) (*entity.Recipe, error) {
	return nil, r.err
}

// Un fallo al leer recetas se devuelve como error (el worker reintenta) y libera el guard.
func TestDeductStockForOrder_FalloDeRecetasSeDevuelve(t *testing.T) {
	ctx := context.Background()
	guard := newMemGuard()
	f := newFixture(t, guard)
	kitchen := f.location(t, "Cocina", "")
	mat := f.material(t, "Pan", nil)
	f.inward(t, kitchen, mat, "3", "1")

	dbDown := errors.New("conexión rechazada")
	orders := appinv.NewOrderDeductionUseCase(
		f.mutator, failingRecipes{RecipeRepository: f.store.Recipes(), err: dbDown},
		f.store.Locations(), guard, nil, zerolog.Nop(),
	)

	res, err := orders.DeductStockForOrder(ctx, testCompanyID, testUserID, order("ord-db", "", item("sandwich", "1")))
	require.ErrorIs(t, err, dbDown)
	assert.Nil(t, res)
	assert.False(t, errors.Is(err, domain.ErrInvalidInput))
	assert.True(t, f.onHand(t, kitchen, mat).Equal(dec("3")))

	ok, err := guard.Acquire(ctx, testCompanyID, "ord-db")
	require.NoError(t, err)
	assert.True(t, ok, "el pedido debe poder reprocesarse")
}

func TestDeductStockForOrder_Validaciones(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	tests := []struct {
		name string
		o    entity.Order
	}{
		{"sin id", order("", "", item("x", "1"))},
		{"sin ítems", order("o", "")},
		{"cantidad cero", order("o", "", item("x", "0"))},
		{"sin menu item", order("o", "", item("", "1"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.orders.DeductStockForOrder(ctx, testCompanyID, testUserID, tt.o)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput), "got %v", err)
		})
	}
}
