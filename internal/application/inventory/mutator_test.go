package inventory_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinv "github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

func TestApplyMovement_RechazaStockNegativo(t *testing.T) {
	f := newFixture(t, nil)
	loc := f.location(t, "Tienda Centro", "")
	mat := f.material(t, "Harina", nil)
	f.inward(t, loc, mat, "10", "5")

	_, err := f.mutator.ApplyMovement(context.Background(), appinv.MovementInput{
		CompanyID:  testCompanyID,
		LocationID: loc,
		MaterialID: mat,
		Kind:       entity.MovementKindOutward,
		Delta:      dec("-15"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.True(t, ise.Available.Equal(dec("10")))
	assert.True(t, ise.Requested.Equal(dec("15")))
	assert.True(t, ise.Shortfall().Equal(dec("5")))

	assert.True(t, f.onHand(t, loc, mat).Equal(dec("10")), "la cantidad no debe cambiar")
	assert.Len(t, f.ledger(t, loc), 1, "no se debe agregar entrada al libro")
}

func TestApplyMovement_SalidaSinFilaDevuelveDisponibleCero(t *testing.T) {
	f := newFixture(t, nil)
	loc := f.location(t, "Cocina", "")
	mat := f.material(t, "Azúcar", nil)

	_, err := f.mutator.ApplyMovement(context.Background(), appinv.MovementInput{
		CompanyID:  testCompanyID,
		LocationID: loc,
		MaterialID: mat,
		Kind:       entity.MovementKindConsumed,
		Delta:      dec("-1"),
	})
	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.True(t, ise.Available.IsZero())

	inv, err := f.store.Inventories().Get(context.Background(), loc, mat)
	require.NoError(t, err)
	assert.Nil(t, inv, "no se debe crear la fila")
}

func TestApplyMovement_CostoPromedioPonderado(t *testing.T) {
	f := newFixture(t, nil)
	loc := f.location(t, "Bodega", "")
	mat := f.material(t, "Aceite", nil)

	f.inward(t, loc, mat, "100", "10")
	f.inward(t, loc, mat, "50", "20")
	assert.True(t, f.costBasis(t, loc, mat).Equal(dec("13.333333")))

	res, err := f.mutator.ApplyMovement(context.Background(), appinv.MovementInput{
		CompanyID:  testCompanyID,
		LocationID: loc,
		MaterialID: mat,
		Kind:       entity.MovementKindOutward,
		Delta:      dec("-30"),
	})
	require.NoError(t, err)
	assert.True(t, res.Inventory.Quantity.Equal(dec("120")))
	assert.True(t, res.Inventory.UnitCost.Equal(dec("13.333333")), "la salida no cambia el costo")
	assert.True(t, res.Transaction.UnitCost.Equal(dec("13.333333")), "la salida se valora al costo vigente")
	assert.Equal(t, entity.DirectionOut, res.Transaction.Direction)
	assert.True(t, res.Transaction.PreviousQuantity.Equal(dec("150")))
	assert.True(t, res.Transaction.NewQuantity.Equal(dec("120")))
}

func TestApplyMovement_ModoObjetivo(t *testing.T) {
	f := newFixture(t, nil)
	loc := f.location(t, "Tienda Norte", "")
	mat := f.material(t, "Sal", nil)
	f.inward(t, loc, mat, "10", "1")

	res, err := f.mutator.ApplyMovement(context.Background(), appinv.MovementInput{
		CompanyID:  testCompanyID,
		LocationID: loc,
		MaterialID: mat,
		Kind:       entity.MovementKindAdjustment,
		Target:     decPtr("4"),
	})
	require.NoError(t, err)
	assert.True(t, res.Transaction.Quantity.Equal(dec("6")))
	assert.Equal(t, entity.DirectionOut, res.Transaction.Direction)
	assert.True(t, f.onHand(t, loc, mat).Equal(dec("4")))

	// Fijar la misma cantidad no es un movimiento
	_, err = f.mutator.ApplyMovement(context.Background(), appinv.MovementInput{
		CompanyID:  testCompanyID,
		LocationID: loc,
		MaterialID: mat,
		Kind:       entity.MovementKindAdjustment,
		Target:     decPtr("4"),
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestApplyMovement_Validaciones(t *testing.T) {
	f := newFixture(t, nil)
	loc := f.location(t, "Tienda", "")
	mat := f.material(t, "Leche", nil)

	tests := []struct {
		name string
		in   appinv.MovementInput
	}{
		{"tipo desconocido", appinv.MovementInput{CompanyID: testCompanyID, LocationID: loc, MaterialID: mat, Kind: "robo", Delta: dec("1")}},
		{"delta cero", appinv.MovementInput{CompanyID: testCompanyID, LocationID: loc, MaterialID: mat, Kind: entity.MovementKindInward}},
		{"sin ubicación", appinv.MovementInput{CompanyID: testCompanyID, MaterialID: mat, Kind: entity.MovementKindInward, Delta: dec("1")}},
		{"costo negativo", appinv.MovementInput{CompanyID: testCompanyID, LocationID: loc, MaterialID: mat, Kind: entity.MovementKindInward, Delta: dec("1"), UnitCost: dec("-1")}},
		{"objetivo negativo", appinv.MovementInput{CompanyID: testCompanyID, LocationID: loc, MaterialID: mat, Kind: entity.MovementKindAdjustment, Target: decPtr("-1")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.mutator.ApplyMovement(context.Background(), tt.in)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput), "got %v", err)
		})
	}
	assert.Empty(t, f.ledger(t, loc))
}

// La cantidad disponible siempre coincide con la suma con signo del libro y nunca es negativa.
func TestApplyMovement_ConservacionDelLibro(t *testing.T) {
	f := newFixture(t, nil)
	loc := f.location(t, "Tienda", "")
	mats := []string{f.material(t, "Arroz", nil), f.material(t, "Frijol", nil)}

	rng := rand.New(rand.NewSource(42))
	kinds := []string{entity.MovementKindInward, entity.MovementKindOutward, entity.MovementKindConsumed, entity.MovementKindAdjustment}
	for i := 0; i < 200; i++ {
		mat := mats[rng.Intn(len(mats))]
		kind := kinds[rng.Intn(len(kinds))]
		delta := decimal.NewFromInt(int64(1 + rng.Intn(9)))
		if kind != entity.MovementKindInward && rng.Intn(2) == 0 {
			delta = delta.Neg()
		}
		if kind == entity.MovementKindOutward || kind == entity.MovementKindConsumed {
			delta = delta.Abs().Neg()
		}
		before := f.onHand(t, loc, mat)
		_, err := f.mutator.ApplyMovement(context.Background(), appinv.MovementInput{
			CompanyID:  testCompanyID,
			LocationID: loc,
			MaterialID: mat,
			Kind:       kind,
			Delta:      delta,
			UnitCost:   dec("2"),
		})
		after := f.onHand(t, loc, mat)
		if err != nil {
			require.True(t, errors.Is(err, domain.ErrInsufficientStock), "error inesperado: %v", err)
			require.True(t, after.Equal(before), "un movimiento rechazado no cambia la cantidad")
		}
		require.False(t, after.IsNegative())
	}

	lines, err := f.stock.Reconcile(context.Background(), testCompanyID, loc)
	require.NoError(t, err)
	for _, l := range lines {
		assert.True(t, l.Difference.IsZero(), "material %s: disponible %s, libro %s", l.MaterialID, l.OnHand, l.LedgerTotal)
	}
}
