package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// LocationUseCase casos de uso CRUD para ubicaciones.
type LocationUseCase struct {
	repo repository.LocationRepository
}

// NewLocationUseCase construye el caso de uso.
func NewLocationUseCase(repo repository.LocationRepository) *LocationUseCase {
	return &LocationUseCase{repo: repo}
}

// Create crea una nueva ubicación activa.
func (uc *LocationUseCase) Create(ctx context.Context, companyID string, in dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	now := time.Now()
	location := &entity.Location{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Name:      strings.TrimSpace(in.Name),
		Type:      in.Type,
		BranchID:  strings.TrimSpace(in.BranchID),
		Address:   in.Address,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, location); err != nil {
		return nil, err
	}
	return toLocationResponse(location), nil
}

// GetByID obtiene una ubicación de la empresa.
func (uc *LocationUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.LocationResponse, error) {
	location, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return toLocationResponse(location), nil
}

// List lista ubicaciones por empresa con paginación.
func (uc *LocationUseCase) List(ctx context.Context, companyID string, limit, offset int) (*dto.LocationListResponse, error) {
	list, err := uc.repo.ListByCompany(ctx, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LocationResponse, 0, len(list))
	for _, l := range list {
		items = append(items, *toLocationResponse(l))
	}
	return &dto.LocationListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Delete da de baja la ubicación. Solo se permite si todo su stock está exactamente en cero.
func (uc *LocationUseCase) Delete(ctx context.Context, companyID, id string) error {
	if _, err := uc.get(ctx, companyID, id); err != nil {
		return err
	}
	if err := uc.repo.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("eliminar ubicación: %w", err)
	}
	return nil
}

func (uc *LocationUseCase) get(ctx context.Context, companyID, id string) (*entity.Location, error) {
	location, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if location == nil || location.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return location, nil
}

func toLocationResponse(l *entity.Location) *dto.LocationResponse {
	if l == nil {
		return nil
	}
	return &dto.LocationResponse{
		ID:        l.ID,
		CompanyID: l.CompanyID,
		Name:      l.Name,
		Type:      l.Type,
		BranchID:  l.BranchID,
		Address:   l.Address,
		IsActive:  l.IsActive,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}
