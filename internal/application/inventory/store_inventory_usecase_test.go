package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinv "github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

func TestRecordInward_GuardaLoteYVencimiento(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	loc := f.location(t, "Tienda", "")
	mat := f.material(t, "Yogur", nil)
	expiry := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	res, err := f.stock.RecordInward(ctx, appinv.InwardInput{
		CompanyID:   testCompanyID,
		UserID:      testUserID,
		LocationID:  loc,
		MaterialID:  mat,
		Quantity:    dec("12"),
		UnitCost:    dec("1.5"),
		Reference:   "GRN-001",
		ExpiryDate:  &expiry,
		BatchNumber: "L-77",
	})
	require.NoError(t, err)
	assert.Equal(t, "L-77", res.Inventory.BatchNumber)
	require.NotNil(t, res.Inventory.ExpiryDate)
	assert.True(t, res.Inventory.ExpiryDate.Equal(expiry))
	assert.Equal(t, "GRN-001", res.Transaction.Reference)
	assert.Equal(t, appinv.SourcePurchase, res.Transaction.Source)
	assert.True(t, res.Transaction.TotalCost.Equal(dec("18")))

	_, err = f.stock.RecordInward(ctx, appinv.InwardInput{CompanyID: testCompanyID, LocationID: loc, MaterialID: mat, Quantity: dec("1"), UnitCost: dec("-1")})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	_, err = f.stock.RecordInward(ctx, appinv.InwardInput{CompanyID: testCompanyID, LocationID: loc, MaterialID: "nope", Quantity: dec("1")})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestAdjust_Modos(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	loc := f.location(t, "Tienda", "")
	mat := f.material(t, "Huevos", nil)
	f.inward(t, loc, mat, "30", "0.5")

	adjust := func(mode, qty, reason string) (*appinv.MovementResult, error) {
		return f.stock.Adjust(ctx, appinv.AdjustInput{
			CompanyID:  testCompanyID,
			UserID:     testUserID,
			LocationID: loc,
			MaterialID: mat,
			Mode:       mode,
			Quantity:   dec(qty),
			Reason:     reason,
		})
	}

	res, err := adjust(appinv.AdjustIncrease, "6", "conteo físico")
	require.NoError(t, err)
	assert.Equal(t, entity.DirectionIn, res.Transaction.Direction)
	assert.True(t, res.Inventory.UnitCost.Equal(dec("0.5")), "un ajuste sin costo conserva el costo vigente")

	_, err = adjust(appinv.AdjustDecrease, "10", "rotos")
	require.NoError(t, err)
	assert.True(t, f.onHand(t, loc, mat).Equal(dec("26")))

	res, err = adjust(appinv.AdjustSet, "20", "inventario anual")
	require.NoError(t, err)
	assert.Equal(t, entity.MovementKindAdjustment, res.Transaction.Kind)
	assert.True(t, res.Transaction.Quantity.Equal(dec("6")))
	assert.True(t, f.onHand(t, loc, mat).Equal(dec("20")))

	_, err = adjust(appinv.AdjustDecrease, "21", "merma")
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	_, err = adjust(appinv.AdjustIncrease, "1", "  ")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "el motivo es obligatorio")

	_, err = adjust("duplicar", "1", "x")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	assert.True(t, f.onHand(t, loc, mat).Equal(dec("20")))
}

func TestListTransactions_FiltraPorTipo(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	loc := f.location(t, "Tienda", "")
	mat := f.material(t, "Arroz", nil)
	f.inward(t, loc, mat, "10", "1")
	_, err := f.stock.Consume(ctx, appinv.ConsumeInput{CompanyID: testCompanyID, LocationID: loc, MaterialID: mat, Quantity: dec("2")})
	require.NoError(t, err)

	txs, err := f.stock.ListTransactions(ctx, testCompanyID, loc, repository.TransactionFilter{Kind: entity.MovementKindConsumed})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.True(t, txs[0].NewQuantity.Equal(dec("8")))

	all, err := f.stock.ListTransactions(ctx, testCompanyID, loc, repository.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, entity.MovementKindConsumed, all[0].Kind, "más reciente primero")

	_, err = f.stock.ListTransactions(ctx, testCompanyID, loc, repository.TransactionFilter{Kind: "x"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	_, err = f.stock.ListTransactions(ctx, testCompanyID, "no-existe", repository.TransactionFilter{})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	inv, err := f.stock.ListInventory(ctx, testCompanyID, loc)
	require.NoError(t, err)
	require.Len(t, inv, 1)
	assert.True(t, inv[0].Quantity.Equal(dec("8")))
}
