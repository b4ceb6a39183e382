package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/entity"
	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/valueobject"
)

type ReportRepository interface {
	Create(ctx context.Context, report *entity.Report) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Report, error)
	List(ctx context.Context, filter ReportFilter) ([]*entity.Report, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status valueobject.ReportStatus) error

	AddImage(ctx context.Context, img *entity.ReportImage) error
	FindImages(ctx context.Context, reportID uuid.UUID) ([]entity.ReportImage, error)

	CountByStatus(ctx context.Context) (map[valueobject.ReportStatus]int, error)
	CountByType(ctx context.Context) ([]TypeCount, error)
}

type ReportFilter struct {
	Status         *valueobject.ReportStatus
	IncidentTypeID *uuid.UUID
	Limit          int
	Offset         int
}

// TypeCount: число сообщений по типу инцидента для дашборда.
type TypeCount struct {
	IncidentTypeID uuid.UUID `db:"incident_type_id"`
	Slug           string    `db:"slug"`
	NameDE         string    `db:"name_de"`
	NameEN         string    `db:"name_en"`
	Count          int       `db:"count"`
}
