package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/entity"
)

type AdminRepository interface {
	Create(ctx context.Context, admin *entity.AdminUser) error
	FindByEmail(ctx context.Context, email string) (*entity.AdminUser, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.AdminUser, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID) error
}
