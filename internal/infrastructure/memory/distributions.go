package memory

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var (
	_ repository.DistributionRepository       = (*DistributionRepo)(nil)
	_ repository.PurchaseSuggestionRepository = (*SuggestionRepo)(nil)
)

// DistributionRepo traslados en memoria.
type DistributionRepo struct {
	store *Store
	tx    *state
}

func (r *DistributionRepo) NextSequence(_ context.Context, companyID string, day time.Time) (int, error) {
	var seq int
	err := r.store.write(r.tx, func(st *state) error {
		k := counterKey{company: companyID, day: day.Format("2006-01-02")}
		st.counters[k]++
		seq = st.counters[k]
		return nil
	})
	return seq, err
}

func (r *DistributionRepo) Create(_ context.Context, d *entity.Distribution) error {
	return r.store.write(r.tx, func(st *state) error {
		if _, ok := st.distributions[d.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, other := range st.distributions {
			if other.CompanyID == d.CompanyID && other.Number == d.Number {
				return domain.ErrDuplicate
			}
		}
		st.distributions[d.ID] = *d
		return nil
	})
}

func (r *DistributionRepo) GetByID(_ context.Context, id string) (*entity.Distribution, error) {
	var out *entity.Distribution
	err := r.store.read(r.tx, func(st *state) error {
		if d, ok := st.distributions[id]; ok {
			out = &d
		}
		return nil
	})
	return out, err
}

func (r *DistributionRepo) GetForUpdate(ctx context.Context, id string) (*entity.Distribution, error) {
	return r.GetByID(ctx, id)
}

func (r *DistributionRepo) MarkCancelled(_ context.Context, d *entity.Distribution) error {
	return r.store.write(r.tx, func(st *state) error {
		cur, ok := st.distributions[d.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Status = entity.DistributionStatusCancelled
		cur.CancelledAt = d.CancelledAt
		cur.CancelledBy = d.CancelledBy
		cur.CancelReason = d.CancelReason
		cur.UpdatedAt = d.UpdatedAt
		st.distributions[d.ID] = cur
		return nil
	})
}

func (r *DistributionRepo) List(_ context.Context, f repository.DistributionFilter) ([]*entity.Distribution, int, error) {
	var (
		out   []*entity.Distribution
		total int
	)
	err := r.store.read(r.tx, func(st *state) error {
		list := filterDistributions(st, f)
		sort.Slice(list, func(i, j int) bool {
			if list[i].CreatedAt.Equal(list[j].CreatedAt) {
				return list[i].Number > list[j].Number
			}
			return list[i].CreatedAt.After(list[j].CreatedAt)
		})
		total = len(list)
		out = make([]*entity.Distribution, 0)
		for _, d := range page(list, f.Limit, f.Offset) {
			out = append(out, &d)
		}
		return nil
	})
	return out, total, err
}

func (r *DistributionRepo) Stats(_ context.Context, f repository.DistributionFilter) (*repository.DistributionStats, error) {
	stats := &repository.DistributionStats{}
	err := r.store.read(r.tx, func(st *state) error {
		byFrom := map[string]*repository.DistributionStatRow{}
		byTo := map[string]*repository.DistributionStatRow{}
		byMaterial := map[string]*repository.DistributionStatRow{}
		for _, d := range filterDistributions(st, f) {
			addStat(&stats.Totals, d)
			addStat(statRow(byFrom, d.FromLocationID), d)
			addStat(statRow(byTo, d.ToLocationID), d)
			addStat(statRow(byMaterial, d.MaterialID), d)
		}
		stats.ByFromLocation = statRows(byFrom)
		stats.ByToLocation = statRows(byTo)
		stats.ByMaterial = statRows(byMaterial)
		return nil
	})
	return stats, err
}

func filterDistributions(st *state, f repository.DistributionFilter) []entity.Distribution {
	list := make([]entity.Distribution, 0)
	for _, d := range st.distributions {
		if d.CompanyID != f.CompanyID {
			continue
		}
		if f.LocationID != "" && d.FromLocationID != f.LocationID && d.ToLocationID != f.LocationID {
			continue
		}
		if f.FromLocationID != "" && d.FromLocationID != f.FromLocationID {
			continue
		}
		if f.ToLocationID != "" && d.ToLocationID != f.ToLocationID {
			continue
		}
		if f.MaterialID != "" && d.MaterialID != f.MaterialID {
			continue
		}
		if f.Status != "" && d.Status != f.Status {
			continue
		}
		if !inRange(d.Date, f.DateFrom, f.DateTo) {
			continue
		}
		list = append(list, d)
	}
	return list
}

func statRow(m map[string]*repository.DistributionStatRow, key string) *repository.DistributionStatRow {
	row, ok := m[key]
	if !ok {
		row = &repository.DistributionStatRow{Key: key, Quantity: decimal.Zero, Value: decimal.Zero}
		m[key] = row
	}
	return row
}

func addStat(row *repository.DistributionStatRow, d entity.Distribution) {
	row.Count++
	row.Quantity = row.Quantity.Add(d.Quantity)
	row.Value = row.Value.Add(d.TotalCost)
}

func statRows(m map[string]*repository.DistributionStatRow) []repository.DistributionStatRow {
	rows := make([]repository.DistributionStatRow, 0, len(m))
	for _, row := range m {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })
	return rows
}

// SuggestionRepo sugerencias de compra en memoria.
type SuggestionRepo struct {
	store *Store
}

func (r *SuggestionRepo) FindOpenByMaterial(_ context.Context, companyID, materialID string) (*entity.PurchaseSuggestion, error) {
	var out *entity.PurchaseSuggestion
	err := r.store.read(nil, func(st *state) error {
		for _, s := range st.suggestions {
			if s.CompanyID == companyID && s.MaterialID == materialID && s.IsOpen() {
				out = &s
				return nil
			}
		}
		return nil
	})
	return out, err
}

// Create rechaza una segunda sugerencia abierta para el mismo material, igual que el índice único parcial.
func (r *SuggestionRepo) Create(_ context.Context, s *entity.PurchaseSuggestion) error {
	if !s.SuggestedQuantity.IsPositive() {
		return errors.New("insert purchase suggestion: suggested_quantity debe ser > 0")
	}
	return r.store.write(nil, func(st *state) error {
		if s.IsOpen() {
			for _, other := range st.suggestions {
				if other.CompanyID == s.CompanyID && other.MaterialID == s.MaterialID && other.IsOpen() {
					return domain.ErrDuplicate
				}
			}
		}
		st.suggestions[s.ID] = *s
		return nil
	})
}

func (r *SuggestionRepo) ListByCompany(_ context.Context, companyID, status string, limit, offset int) ([]*entity.PurchaseSuggestion, error) {
	out := make([]*entity.PurchaseSuggestion, 0)
	err := r.store.read(nil, func(st *state) error {
		list := make([]entity.PurchaseSuggestion, 0)
		for _, s := range st.suggestions {
			if s.CompanyID == companyID && (status == "" || s.Status == status) {
				list = append(list, s)
			}
		}
		sort.Slice(list, func(i, j int) bool {
			if list[i].CreatedAt.Equal(list[j].CreatedAt) {
				return list[i].ID < list[j].ID
			}
			return list[i].CreatedAt.After(list[j].CreatedAt)
		})
		for _, s := range page(list, limit, offset) {
			out = append(out, &s)
		}
		return nil
	})
	return out, err
}

// SetSuggestionStatus cambia el estado de una sugerencia (lo hace el flujo de compras, fuera de este servicio).
func (s *Store) SetSuggestionStatus(id, status string) error {
	return s.write(nil, func(st *state) error {
		sg, ok := st.suggestions[id]
		if !ok {
			return domain.ErrNotFound
		}
		sg.Status = status
		sg.UpdatedAt = time.Now()
		st.suggestions[id] = sg
		return nil
	})
}
