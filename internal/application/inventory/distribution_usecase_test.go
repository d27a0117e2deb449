package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinv "github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var transferDay = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func transfer(from, to, mat, qty string) appinv.CreateDistributionInput {
	day := transferDay
	return appinv.CreateDistributionInput{
		CompanyID:      testCompanyID,
		UserID:         testUserID,
		FromLocationID: from,
		ToLocationID:   to,
		MaterialID:     mat,
		Quantity:       dec(qty),
		Date:           &day,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenario harina: 50kg a 20/kg en A, traslado de 30kg a B y cancelación
// ──────────────────────────────────────────────────────────────────────────────

func TestDistribution_EscenarioHarina(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	a := f.location(t, "Tienda A", "")
	b := f.location(t, "Tienda B", "")
	flour := f.material(t, "Harina", nil)
	f.inward(t, a, flour, "50", "20")

	d, err := f.dist.Create(ctx, transfer(a, b, flour, "30"))
	require.NoError(t, err)

	assert.Equal(t, "DIST-20240315-0001", d.Number)
	assert.Equal(t, entity.DistributionStatusCompleted, d.Status)
	assert.True(t, d.FromBefore.Equal(dec("50")))
	assert.True(t, d.FromAfter.Equal(dec("20")))
	assert.True(t, d.ToBefore.IsZero())
	assert.True(t, d.ToAfter.Equal(dec("30")))
	assert.True(t, d.CostPrice.Equal(dec("20")))
	assert.True(t, d.TotalCost.Equal(dec("600")))

	assert.True(t, f.onHand(t, a, flour).Equal(dec("20")))
	assert.True(t, f.onHand(t, b, flour).Equal(dec("30")))
	assert.True(t, f.costBasis(t, b, flour).Equal(dec("20")), "el destino hereda el costo del origen")

	detail, err := f.dist.GetByID(ctx, testCompanyID, d.ID)
	require.NoError(t, err)
	require.Len(t, detail.Transactions, 2)
	out, in := detail.Transactions[0], detail.Transactions[1]
	assert.Equal(t, entity.MovementKindOutward, out.Kind)
	assert.Equal(t, a, out.LocationID)
	assert.Equal(t, b, out.DestinationLocationID)
	assert.Equal(t, entity.MovementKindInward, in.Kind)
	assert.Equal(t, b, in.LocationID)
	for _, tx := range detail.Transactions {
		assert.Equal(t, d.Number, tx.DistributionNumber)
		assert.True(t, tx.Quantity.Equal(dec("30")))
	}

	cancelled, err := f.dist.Cancel(ctx, appinv.CancelDistributionInput{
		CompanyID:      testCompanyID,
		UserID:         testUserID,
		DistributionID: d.ID,
		Reason:         "error de digitación",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.DistributionStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)
	assert.True(t, f.onHand(t, a, flour).Equal(dec("50")))
	assert.True(t, f.onHand(t, b, flour).IsZero())
	assert.True(t, f.costBasis(t, a, flour).Equal(dec("20")))

	// Las entradas originales se conservan y se agrega el par inverso
	detail, err = f.dist.GetByID(ctx, testCompanyID, d.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Transactions, 4)
	assert.Equal(t, appinv.SourceDistribution, detail.Transactions[0].Source)
	assert.Equal(t, appinv.SourceDistributionCancellation, detail.Transactions[3].Source)

	// Segunda cancelación: falla y no cambia nada
	_, err = f.dist.Cancel(ctx, appinv.CancelDistributionInput{CompanyID: testCompanyID, DistributionID: d.ID})
	assert.True(t, errors.Is(err, domain.ErrAlreadyCancelled))
	assert.True(t, f.onHand(t, a, flour).Equal(dec("50")))
	assert.True(t, f.onHand(t, b, flour).IsZero())
	assert.Len(t, f.ledger(t, a), 3)
}

func TestDistribution_Validaciones(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	a := f.location(t, "A", "")
	b := f.location(t, "B", "")
	mat := f.material(t, "Queso", nil)
	f.inward(t, a, mat, "5", "3")

	tests := []struct {
		name string
		in   appinv.CreateDistributionInput
		want error
	}{
		{"misma ubicación", transfer(a, a, mat, "1"), domain.ErrInvalidInput},
		{"cantidad cero", transfer(a, b, mat, "0"), domain.ErrInvalidInput},
		{"cantidad negativa", transfer(a, b, mat, "-2"), domain.ErrInvalidInput},
		{"sin material", transfer(a, b, "", "1"), domain.ErrInvalidInput},
		{"origen inexistente", transfer("no-existe", b, mat, "1"), domain.ErrNotFound},
		{"destino inexistente", transfer(a, "no-existe", mat, "1"), domain.ErrNotFound},
		{"material inexistente", transfer(a, b, "no-existe", "1"), domain.ErrNotFound},
		{"stock insuficiente", transfer(a, b, mat, "6"), domain.ErrInsufficientStock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.dist.Create(ctx, tt.in)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}

	// Ningún intento fallido deja escrituras
	assert.True(t, f.onHand(t, a, mat).Equal(dec("5")))
	assert.True(t, f.onHand(t, b, mat).IsZero())
	list, total, err := f.dist.List(ctx, repository.DistributionFilter{CompanyID: testCompanyID})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)

	// El faltante se informa al caller
	_, err = f.dist.Create(ctx, transfer(a, b, mat, "8"))
	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, a, ise.LocationID)
	assert.True(t, ise.Shortfall().Equal(dec("3")))
}

func TestDistribution_NumeracionPorDia(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	a := f.location(t, "A", "")
	b := f.location(t, "B", "")
	mat := f.material(t, "Tomate", nil)
	f.inward(t, a, mat, "100", "1")

	d1, err := f.dist.Create(ctx, transfer(a, b, mat, "1"))
	require.NoError(t, err)
	d2, err := f.dist.Create(ctx, transfer(b, a, mat, "1"))
	require.NoError(t, err)

	next := transfer(a, b, mat, "1")
	nextDay := transferDay.AddDate(0, 0, 1)
	next.Date = &nextDay
	d3, err := f.dist.Create(ctx, next)
	require.NoError(t, err)

	assert.Equal(t, "DIST-20240315-0001", d1.Number)
	assert.Equal(t, "DIST-20240315-0002", d2.Number)
	assert.Equal(t, "DIST-20240316-0001", d3.Number)

	// Un intento fallido no consume consecutivo
	_, err = f.dist.Create(ctx, transfer(a, b, mat, "1000"))
	require.Error(t, err)
	d4, err := f.dist.Create(ctx, transfer(a, b, mat, "1"))
	require.NoError(t, err)
	assert.Equal(t, "DIST-20240315-0003", d4.Number)
}

func TestDistribution_CancelacionConConsumoEnDestino(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	a := f.location(t, "A", "")
	b := f.location(t, "B", "")
	mat := f.material(t, "Carne", nil)
	f.inward(t, a, mat, "50", "20")

	d, err := f.dist.Create(ctx, transfer(a, b, mat, "30"))
	require.NoError(t, err)

	_, err = f.stock.Consume(ctx, appinv.ConsumeInput{
		CompanyID:  testCompanyID,
		LocationID: b,
		MaterialID: mat,
		Quantity:   dec("10"),
	})
	require.NoError(t, err)

	_, err = f.dist.Cancel(ctx, appinv.CancelDistributionInput{CompanyID: testCompanyID, DistributionID: d.ID})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCancellationConflict))
	var cce *domain.CancellationConflictError
	require.True(t, errors.As(err, &cce))
	assert.True(t, cce.Available.Equal(dec("20")))
	assert.True(t, cce.Required.Equal(dec("30")))

	detail, err := f.dist.GetByID(ctx, testCompanyID, d.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.DistributionStatusCompleted, detail.Distribution.Status)
	assert.Len(t, detail.Transactions, 2)
	assert.True(t, f.onHand(t, a, mat).Equal(dec("20")))
	assert.True(t, f.onHand(t, b, mat).Equal(dec("20")))
}

func TestDistribution_OtraEmpresaNoLoVe(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	a := f.location(t, "A", "")
	b := f.location(t, "B", "")
	mat := f.material(t, "Pan", nil)
	f.inward(t, a, mat, "5", "1")
	d, err := f.dist.Create(ctx, transfer(a, b, mat, "2"))
	require.NoError(t, err)

	_, err = f.dist.GetByID(ctx, "otra-empresa", d.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	_, err = f.dist.Cancel(ctx, appinv.CancelDistributionInput{CompanyID: "otra-empresa", DistributionID: d.ID})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	_, err = f.dist.Cancel(ctx, appinv.CancelDistributionInput{CompanyID: testCompanyID, DistributionID: "no-existe"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// Dos traslados concurrentes que en conjunto superan el stock: exactamente uno debe fallar.
func TestDistribution_TrasladosConcurrentes(t *testing.T) {
	ctx := context.Background()
	for round := 0; round < 20; round++ {
		f := newFixture(t, nil)
		a := f.location(t, "A", "")
		b := f.location(t, "B", "")
		c := f.location(t, "C", "")
		mat := f.material(t, "Harina", nil)
		f.inward(t, a, mat, "50", "20")

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i, dst := range []string{b, c} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = f.dist.Create(ctx, transfer(a, dst, mat, "30"))
			}()
		}
		wg.Wait()

		var ok, insufficient int
		for _, err := range errs {
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrInsufficientStock):
				insufficient++
			default:
				t.Fatalf("error inesperado: %v", err)
			}
		}
		require.Equal(t, 1, ok)
		require.Equal(t, 1, insufficient)
		require.True(t, f.onHand(t, a, mat).Equal(dec("20")))
		require.True(t, f.onHand(t, b, mat).Add(f.onHand(t, c, mat)).Equal(dec("30")))
	}
}

func TestDistribution_ListarYTotales(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	a := f.location(t, "A", "")
	b := f.location(t, "B", "")
	c := f.location(t, "C", "")
	flour := f.material(t, "Harina", nil)
	sugar := f.material(t, "Azúcar", nil)
	f.inward(t, a, flour, "100", "2")
	f.inward(t, a, sugar, "100", "3")

	_, err := f.dist.Create(ctx, transfer(a, b, flour, "10"))
	require.NoError(t, err)
	_, err = f.dist.Create(ctx, transfer(a, c, flour, "5"))
	require.NoError(t, err)
	d3, err := f.dist.Create(ctx, transfer(a, b, sugar, "4"))
	require.NoError(t, err)
	_, err = f.dist.Cancel(ctx, appinv.CancelDistributionInput{CompanyID: testCompanyID, DistributionID: d3.ID})
	require.NoError(t, err)

	list, total, err := f.dist.List(ctx, repository.DistributionFilter{CompanyID: testCompanyID, ToLocationID: b})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, list, 2)

	list, total, err = f.dist.List(ctx, repository.DistributionFilter{CompanyID: testCompanyID, Status: entity.DistributionStatusCancelled})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, d3.ID, list[0].ID)

	list, total, err = f.dist.List(ctx, repository.DistributionFilter{CompanyID: testCompanyID, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, list, 1)

	_, _, err = f.dist.List(ctx, repository.DistributionFilter{CompanyID: testCompanyID, Status: "Borrador"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	// Los totales solo cuentan traslados completados
	stats, err := f.dist.Stats(ctx, repository.DistributionFilter{CompanyID: testCompanyID})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Totals.Count)
	assert.True(t, stats.Totals.Quantity.Equal(dec("15")))
	assert.True(t, stats.Totals.Value.Equal(dec("30")))
	require.Len(t, stats.ByFromLocation, 1)
	assert.Equal(t, a, stats.ByFromLocation[0].Key)
	assert.Len(t, stats.ByToLocation, 2)
	require.Len(t, stats.ByMaterial, 1)
	assert.Equal(t, flour, stats.ByMaterial[0].Key)
}
