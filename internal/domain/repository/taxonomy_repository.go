package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/entity"
)

type TaxonomyRepository interface {
	ListTypes(ctx context.Context, onlyActive bool) ([]*entity.IncidentType, error)
	FindTypeByID(ctx context.Context, id uuid.UUID) (*entity.IncidentType, error)
	FindTypeBySlug(ctx context.Context, slug string) (*entity.IncidentType, error)
	CreateType(ctx context.Context, t *entity.IncidentType) error
	UpdateType(ctx context.Context, t *entity.IncidentType) error

	ListSubtypes(ctx context.Context, typeID uuid.UUID, onlyActive bool) ([]*entity.IncidentSubtype, error)
	FindSubtypeByID(ctx context.Context, id uuid.UUID) (*entity.IncidentSubtype, error)
	FindSubtypeBySlug(ctx context.Context, typeID uuid.UUID, slug string) (*entity.IncidentSubtype, error)
	CreateSubtype(ctx context.Context, s *entity.IncidentSubtype) error
	UpdateSubtype(ctx context.Context, s *entity.IncidentSubtype) error
	CountActiveSubtypes(ctx context.Context, typeID uuid.UUID) (int, error)
}
