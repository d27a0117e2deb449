package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinv "github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// minLevel=10 y stock total 8 repartido en dos ubicaciones: una sugerencia Draft por 20.
func TestEvaluateLowStock_SugerenciaIdempotente(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	a := f.location(t, "A", "")
	b := f.location(t, "B", "")
	flour := f.material(t, "Harina", decPtr("10"))
	f.inward(t, a, flour, "5", "2")
	f.inward(t, b, flour, "3", "2")

	report, err := f.evaluator.EvaluateLowStock(ctx, testCompanyID)
	require.NoError(t, err)
	require.Len(t, report.Items, 1)
	item := report.Items[0]
	assert.Equal(t, flour, item.MaterialID)
	assert.True(t, item.TotalQuantity.Equal(dec("8")))
	assert.True(t, item.MinLevel.Equal(dec("10")))
	assert.True(t, item.SuggestionCreated)
	assert.Equal(t, 1, report.CreatedCount())
	assert.Empty(t, report.Errors)

	suggestions, err := f.evaluator.ListSuggestions(ctx, testCompanyID, "", 0, 0)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	s := suggestions[0]
	assert.Equal(t, item.SuggestionID, s.ID)
	assert.True(t, s.SuggestedQuantity.Equal(dec("20")))
	assert.Equal(t, entity.SuggestionPriorityHigh, s.Priority)
	assert.Equal(t, entity.SuggestionStatusDraft, s.Status)

	// Segunda ejecución sin acción de compras: ninguna nueva
	again, err := f.evaluator.EvaluateLowStock(ctx, testCompanyID)
	require.NoError(t, err)
	require.Len(t, again.Items, 1)
	assert.Zero(t, again.CreatedCount())
	assert.False(t, again.Items[0].SuggestionCreated)
	assert.Equal(t, s.ID, again.Items[0].SuggestionID)

	suggestions, err = f.evaluator.ListSuggestions(ctx, testCompanyID, "", 0, 0)
	require.NoError(t, err)
	assert.Len(t, suggestions, 1)
}

func TestEvaluateLowStock_MinimoPorDefecto(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	a := f.location(t, "A", "")
	unset := f.material(t, "Sin mínimo", nil)
	f.inward(t, a, unset, "10", "1")

	report, err := f.evaluator.EvaluateLowStock(ctx, testCompanyID)
	require.NoError(t, err)
	require.Len(t, report.Items, 1)
	assert.True(t, report.Items[0].MinLevelDefaulted)

	suggestions, err := f.evaluator.ListSuggestions(ctx, testCompanyID, entity.SuggestionStatusDraft, 0, 0)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.True(t, suggestions[0].SuggestedQuantity.Equal(dec("20")))
}

func TestEvaluateLowStock_SobreElMinimoNoSeMarca(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	a := f.location(t, "A", "")
	mat := f.material(t, "Aceite", decPtr("5"))
	f.inward(t, a, mat, "5.5", "1")

	report, err := f.evaluator.EvaluateLowStock(ctx, testCompanyID)
	require.NoError(t, err)
	assert.Empty(t, report.Items)
	assert.Zero(t, report.CreatedCount())
}

// Mínimo explícito 0: el material no se repone automáticamente, ni con stock en cero.
func TestEvaluateLowStock_MinimoCeroNoSugiere(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.location(t, "A", "")
	f.material(t, "Servilletas", decPtr("0"))

	report, err := f.evaluator.EvaluateLowStock(ctx, testCompanyID)
	require.NoError(t, err)
	assert.Empty(t, report.Items)
	assert.Empty(t, report.Errors)
	assert.Zero(t, report.CreatedCount())

	alerts, err := f.evaluator.ListAlerts(ctx, testCompanyID, "")
	require.NoError(t, err)
	assert.Empty(t, alerts)

	suggestions, err := f.evaluator.ListSuggestions(ctx, testCompanyID, "", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

func TestSuggestionRepo_RechazaCantidadNoPositiva(t *testing.T) {
	f := newFixture(t, nil)
	err := f.store.Suggestions().Create(context.Background(), &entity.PurchaseSuggestion{
		ID: "s-0", CompanyID: testCompanyID, MaterialID: "m-0",
		SuggestedQuantity: dec("0"), Status: entity.SuggestionStatusDraft,
	})
	assert.Error(t, err)
}

// racingSuggestions simula que otra evaluación insertó la sugerencia entre la consulta
// y el insert, y que la relectura falla.
type racingSuggestions struct {
	repository.PurchaseSuggestionRepository
	findErr error
	calls   int
}

func (r *racingSuggestions) FindOpenByMaterial(ctx context.Context, companyID, materialID string) (*entity.PurchaseSuggestion, error) {
	r.calls++
	if r.calls == 1 {
		return nil, nil
	}
	return nil, r.findErr
}

func (r *racingSuggestions) Create(context.Context, *entity.PurchaseSuggestion) error {
	return domain.ErrDuplicate
}

func TestEvaluateLowStock_DuplicadoConRelecturaFallidaSeReporta(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	mat := f.material(t, "Sal", decPtr("3"))

	suggestions := &racingSuggestions{
		PurchaseSuggestionRepository: f.store.Suggestions(),
		findErr:                      errors.New("conexión perdida"),
	}
	evaluator := appinv.NewLowStockEvaluator(
		f.store.Materials(), f.store.Inventories(), suggestions,
		appinv.LowStockConfig{DefaultMinLevel: dec("10"), Parallelism: 1}, nil, zerolog.Nop(),
	)

	report, err := evaluator.EvaluateLowStock(ctx, testCompanyID)
	require.NoError(t, err)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, mat, report.Errors[0].MaterialID)
	assert.Contains(t, report.Errors[0].Message, "conexión perdida")
	assert.Zero(t, report.CreatedCount())
}

// Una vez resuelta la sugerencia por compras, una nueva evaluación vuelve a proponer.
func TestEvaluateLowStock_NuevaSugerenciaTrasResolver(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	mat := f.material(t, "Levadura", decPtr("2"))

	first, err := f.evaluator.EvaluateLowStock(ctx, testCompanyID)
	require.NoError(t, err)
	require.Equal(t, 1, first.CreatedCount())

	require.NoError(t, f.store.SetSuggestionStatus(first.CreatedSuggestionIDs[0], entity.SuggestionStatusRejected))

	second, err := f.evaluator.EvaluateLowStock(ctx, testCompanyID)
	require.NoError(t, err)
	require.Equal(t, 1, second.CreatedCount())
	assert.NotEqual(t, first.CreatedSuggestionIDs[0], second.CreatedSuggestionIDs[0])
	assert.Equal(t, mat, second.Items[0].MaterialID)

	open, err := f.evaluator.ListSuggestions(ctx, testCompanyID, entity.SuggestionStatusDraft, 0, 0)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.True(t, open[0].SuggestedQuantity.Equal(dec("4")))
}

func TestListAlerts_PorUbicacion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	a := f.location(t, "A", "")
	b := f.location(t, "B", "")
	mat := f.material(t, "Café", decPtr("10"))
	f.inward(t, a, mat, "4", "1")
	f.inward(t, b, mat, "20", "1")

	all, err := f.evaluator.ListAlerts(ctx, testCompanyID, "")
	require.NoError(t, err)
	assert.Empty(t, all, "el total de la empresa está sobre el mínimo")

	inA, err := f.evaluator.ListAlerts(ctx, testCompanyID, a)
	require.NoError(t, err)
	require.Len(t, inA, 1)
	assert.True(t, inA[0].TotalQuantity.Equal(dec("4")))

	suggestions, err := f.evaluator.ListSuggestions(ctx, testCompanyID, "", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, suggestions, "listar alertas no crea sugerencias")

	_, err = f.evaluator.ListAlerts(ctx, "", "")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}
