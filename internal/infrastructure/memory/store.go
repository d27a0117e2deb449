// Package memory implementa los repositorios en memoria para modo desarrollo y tests.
// Una transacción toma el lock del store completo y trabaja sobre una copia del estado;
// Commit reemplaza el estado, un error descarta la copia.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	appinv "github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ appinv.TxRunner = (*Store)(nil)

type invKey struct {
	location string
	material string
}

type counterKey struct {
	company string
	day     string
}

type state struct {
	locations     map[string]entity.Location
	materials     map[string]entity.RawMaterial
	recipes       map[string]entity.Recipe
	inventories   map[invKey]entity.LocationInventory
	ledger        []entity.StockTransaction
	distributions map[string]entity.Distribution
	counters      map[counterKey]int
	suggestions   map[string]entity.PurchaseSuggestion
}

func newState() *state {
	return &state{
		locations:     map[string]entity.Location{},
		materials:     map[string]entity.RawMaterial{},
		recipes:       map[string]entity.Recipe{},
		inventories:   map[invKey]entity.LocationInventory{},
		distributions: map[string]entity.Distribution{},
		counters:      map[counterKey]int{},
		suggestions:   map[string]entity.PurchaseSuggestion{},
	}
}

// clone copia los mapas; el libro se comparte con capacidad recortada para que
// los append de la transacción no escriban sobre el arreglo original.
func (s *state) clone() *state {
	return &state{
		locations:     maps.Clone(s.locations),
		materials:     maps.Clone(s.materials),
		recipes:       maps.Clone(s.recipes),
		inventories:   maps.Clone(s.inventories),
		ledger:        s.ledger[:len(s.ledger):len(s.ledger)],
		distributions: maps.Clone(s.distributions),
		counters:      maps.Clone(s.counters),
		suggestions:   maps.Clone(s.suggestions),
	}
}

// Store estado en memoria protegido por un único mutex.
type Store struct {
	mu sync.RWMutex
	st *state
}

// New crea un store vacío.
func New() *Store {
	return &Store{st: newState()}
}

// Run ejecuta fn con repositorios atados a una copia del estado. Si fn devuelve nil la copia
// pasa a ser el estado del store; si no, se descarta y no queda ninguna escritura.
func (s *Store) Run(ctx context.Context, fn func(
	ctx context.Context,
	inventoryRepo repository.LocationInventoryRepository,
	ledgerRepo repository.StockTransactionRepository,
	distributionRepo repository.DistributionRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := s.st.clone()
	if err := fn(ctx,
		&InventoryRepo{store: s, tx: tx},
		&LedgerRepo{store: s, tx: tx},
		&DistributionRepo{store: s, tx: tx},
	); err != nil {
		return err
	}
	s.st = tx
	return nil
}

// Locations repositorio de ubicaciones.
func (s *Store) Locations() *LocationRepo { return &LocationRepo{store: s} }

// Materials repositorio de materias primas.
func (s *Store) Materials() *MaterialRepo { return &MaterialRepo{store: s} }

// Recipes repositorio de recetas.
func (s *Store) Recipes() *RecipeRepo { return &RecipeRepo{store: s} }

// Inventories repositorio de stock por ubicación (fuera de transacción).
func (s *Store) Inventories() *InventoryRepo { return &InventoryRepo{store: s} }

// Ledger repositorio del libro (fuera de transacción).
func (s *Store) Ledger() *LedgerRepo { return &LedgerRepo{store: s} }

// Distributions repositorio de traslados (fuera de transacción).
func (s *Store) Distributions() *DistributionRepo { return &DistributionRepo{store: s} }

// Suggestions repositorio de sugerencias de compra.
func (s *Store) Suggestions() *SuggestionRepo { return &SuggestionRepo{store: s} }

// read ejecuta fn sobre tx si está dentro de una transacción, o sobre el estado con lock de lectura.
func (s *Store) read(tx *state, fn func(st *state) error) error {
	if tx != nil {
		return fn(tx)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.st)
}

// write igual que read pero con lock exclusivo.
func (s *Store) write(tx *state, fn func(st *state) error) error {
	if tx != nil {
		return fn(tx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}
