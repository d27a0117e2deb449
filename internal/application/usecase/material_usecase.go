package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// MaterialUseCase casos de uso para materias primas.
type MaterialUseCase struct {
	repo repository.RawMaterialRepository
}

// NewMaterialUseCase construye el caso de uso.
func NewMaterialUseCase(repo repository.RawMaterialRepository) *MaterialUseCase {
	return &MaterialUseCase{repo: repo}
}

// Create crea una materia prima activa.
func (uc *MaterialUseCase) Create(ctx context.Context, companyID string, in dto.CreateMaterialRequest) (*dto.MaterialResponse, error) {
	if in.MinLevel != nil && in.MinLevel.IsNegative() {
		return nil, domain.Invalid("min_level no puede ser negativo")
	}
	now := time.Now()
	material := &entity.RawMaterial{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		SKU:       strings.TrimSpace(in.SKU),
		Name:      strings.TrimSpace(in.Name),
		Unit:      strings.TrimSpace(in.Unit),
		MinLevel:  in.MinLevel,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, material); err != nil {
		return nil, err
	}
	return toMaterialResponse(material), nil
}

// GetByID obtiene una materia prima de la empresa.
func (uc *MaterialUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.MaterialResponse, error) {
	material, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return toMaterialResponse(material), nil
}

// List lista materias primas por empresa con paginación.
func (uc *MaterialUseCase) List(ctx context.Context, companyID string, limit, offset int) (*dto.MaterialListResponse, error) {
	list, err := uc.repo.ListByCompany(ctx, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MaterialResponse, 0, len(list))
	for _, m := range list {
		items = append(items, *toMaterialResponse(m))
	}
	return &dto.MaterialListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// UpdateMinLevel fija el nivel mínimo; nil lo borra y el evaluador usará el mínimo por defecto.
func (uc *MaterialUseCase) UpdateMinLevel(ctx context.Context, companyID, id string, in dto.UpdateMinLevelRequest) (*dto.MaterialResponse, error) {
	if in.MinLevel != nil && in.MinLevel.IsNegative() {
		return nil, domain.Invalid("min_level no puede ser negativo")
	}
	material, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	material.MinLevel = in.MinLevel
	material.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, material); err != nil {
		return nil, err
	}
	return toMaterialResponse(material), nil
}

func (uc *MaterialUseCase) get(ctx context.Context, companyID, id string) (*entity.RawMaterial, error) {
	material, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if material == nil || material.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return material, nil
}

func toMaterialResponse(m *entity.RawMaterial) *dto.MaterialResponse {
	if m == nil {
		return nil
	}
	return &dto.MaterialResponse{
		ID:        m.ID,
		CompanyID: m.CompanyID,
		SKU:       m.SKU,
		Name:      m.Name,
		Unit:      m.Unit,
		MinLevel:  m.MinLevel,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
