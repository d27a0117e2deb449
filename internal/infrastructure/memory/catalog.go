package memory

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var (
	_ repository.LocationRepository    = (*LocationRepo)(nil)
	_ repository.RawMaterialRepository = (*MaterialRepo)(nil)
	_ repository.RecipeRepository      = (*RecipeRepo)(nil)
)

// LocationRepo ubicaciones en memoria.
type LocationRepo struct {
	store *Store
}

func (r *LocationRepo) Create(_ context.Context, l *entity.Location) error {
	return r.store.write(nil, func(st *state) error {
		if _, ok := st.locations[l.ID]; ok {
			return domain.ErrDuplicate
		}
		st.locations[l.ID] = *l
		return nil
	})
}

func (r *LocationRepo) GetByID(_ context.Context, id string) (*entity.Location, error) {
	var out *entity.Location
	err := r.store.read(nil, func(st *state) error {
		if l, ok := st.locations[id]; ok {
			out = &l
		}
		return nil
	})
	return out, err
}

func (r *LocationRepo) GetByBranch(_ context.Context, companyID, branchID string) (*entity.Location, error) {
	var out *entity.Location
	err := r.store.read(nil, func(st *state) error {
		for _, l := range sortedLocations(st, companyID) {
			if l.BranchID == branchID && l.IsActive {
				out = &l
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *LocationRepo) FirstActive(_ context.Context, companyID string) (*entity.Location, error) {
	var out *entity.Location
	err := r.store.read(nil, func(st *state) error {
		for _, l := range sortedLocations(st, companyID) {
			if l.IsActive {
				out = &l
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *LocationRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Location, error) {
	var out []*entity.Location
	err := r.store.read(nil, func(st *state) error {
		list := sortedLocations(st, companyID)
		for _, l := range page(list, limit, offset) {
			out = append(out, &l)
		}
		return nil
	})
	return out, err
}

func (r *LocationRepo) Deactivate(_ context.Context, id string) error {
	return r.store.write(nil, func(st *state) error {
		l, ok := st.locations[id]
		if !ok {
			return domain.ErrNotFound
		}
		for k, inv := range st.inventories {
			if k.location == id && !inv.Quantity.IsZero() {
				return domain.ErrConflict
			}
		}
		for k := range st.inventories {
			if k.location == id {
				delete(st.inventories, k)
			}
		}
		l.IsActive = false
		l.UpdatedAt = time.Now()
		st.locations[id] = l
		return nil
	})
}

// sortedLocations ubicaciones de la empresa por fecha de creación.
func sortedLocations(st *state, companyID string) []entity.Location {
	list := make([]entity.Location, 0)
	for _, l := range st.locations {
		if l.CompanyID == companyID {
			list = append(list, l)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list
}

// MaterialRepo materias primas en memoria.
type MaterialRepo struct {
	store *Store
}

func (r *MaterialRepo) Create(_ context.Context, m *entity.RawMaterial) error {
	return r.store.write(nil, func(st *state) error {
		for _, existing := range st.materials {
			if existing.CompanyID == m.CompanyID && m.SKU != "" && existing.SKU == m.SKU {
				return domain.ErrDuplicate
			}
		}
		st.materials[m.ID] = *m
		return nil
	})
}

func (r *MaterialRepo) GetByID(_ context.Context, id string) (*entity.RawMaterial, error) {
	var out *entity.RawMaterial
	err := r.store.read(nil, func(st *state) error {
		if m, ok := st.materials[id]; ok {
			out = &m
		}
		return nil
	})
	return out, err
}

func (r *MaterialRepo) Update(_ context.Context, m *entity.RawMaterial) error {
	return r.store.write(nil, func(st *state) error {
		if _, ok := st.materials[m.ID]; !ok {
			return domain.ErrNotFound
		}
		st.materials[m.ID] = *m
		return nil
	})
}

func (r *MaterialRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.RawMaterial, error) {
	var out []*entity.RawMaterial
	err := r.store.read(nil, func(st *state) error {
		for _, m := range page(sortedMaterials(st, companyID, false), limit, offset) {
			out = append(out, &m)
		}
		return nil
	})
	return out, err
}

func (r *MaterialRepo) ListActive(_ context.Context, companyID string) ([]*entity.RawMaterial, error) {
	var out []*entity.RawMaterial
	err := r.store.read(nil, func(st *state) error {
		for _, m := range sortedMaterials(st, companyID, true) {
			out = append(out, &m)
		}
		return nil
	})
	return out, err
}

func sortedMaterials(st *state, companyID string, activeOnly bool) []entity.RawMaterial {
	list := make([]entity.RawMaterial, 0)
	for _, m := range st.materials {
		if m.CompanyID != companyID || (activeOnly && !m.IsActive) {
			continue
		}
		list = append(list, m)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name == list[j].Name {
			return list[i].ID < list[j].ID
		}
		return list[i].Name < list[j].Name
	})
	return list
}

// RecipeRepo recetas en memoria.
type RecipeRepo struct {
	store *Store
}

func (r *RecipeRepo) Create(_ context.Context, rec *entity.Recipe) error {
	return r.store.write(nil, func(st *state) error {
		if rec.IsActive {
			for id, other := range st.recipes {
				if other.CompanyID == rec.CompanyID && other.MenuItemID == rec.MenuItemID && other.IsActive {
					other.IsActive = false
					st.recipes[id] = other
				}
			}
		}
		cp := *rec
		cp.Ingredients = slices.Clone(rec.Ingredients)
		st.recipes[rec.ID] = cp
		return nil
	})
}

func (r *RecipeRepo) GetByID(_ context.Context, id string) (*entity.Recipe, error) {
	var out *entity.Recipe
	err := r.store.read(nil, func(st *state) error {
		if rec, ok := st.recipes[id]; ok {
			out = copyRecipe(rec)
		}
		return nil
	})
	return out, err
}

func (r *RecipeRepo) GetActiveByMenuItem(_ context.Context, companyID, menuItemID string) (*entity.Recipe, error) {
	var out *entity.Recipe
	err := r.store.read(nil, func(st *state) error {
		for _, rec := range st.recipes {
			if rec.CompanyID == companyID && rec.MenuItemID == menuItemID && rec.IsActive {
				out = copyRecipe(rec)
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *RecipeRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Recipe, error) {
	var out []*entity.Recipe
	err := r.store.read(nil, func(st *state) error {
		list := make([]entity.Recipe, 0)
		for _, rec := range st.recipes {
			if rec.CompanyID == companyID {
				list = append(list, rec)
			}
		}
		sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
		for _, rec := range page(list, limit, offset) {
			out = append(out, copyRecipe(rec))
		}
		return nil
	})
	return out, err
}

func copyRecipe(rec entity.Recipe) *entity.Recipe {
	rec.Ingredients = slices.Clone(rec.Ingredients)
	return &rec
}
