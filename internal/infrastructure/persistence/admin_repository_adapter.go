package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/entity"
	"github.com/Studio-Zurich/fix-app-sub000/internal/pkg/apperror"
	"github.com/Studio-Zurich/fix-app-sub000/internal/repository/common"
)

type AdminRepositoryAdapter struct {
	db *sqlx.DB
}

func NewAdminRepositoryAdapter(db *sqlx.DB) *AdminRepositoryAdapter {
	return &AdminRepositoryAdapter{db: db}
}

func (r *AdminRepositoryAdapter) Create(ctx context.Context, admin *entity.AdminUser) error {
	query := `
		INSERT INTO admin_users (id, email, password_hash, display_name, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		admin.ID, strings.ToLower(admin.Email), admin.PasswordHash, admin.DisplayName, admin.IsActive, admin.CreatedAt)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать администратора")
	}
	return nil
}

func (r *AdminRepositoryAdapter) FindByEmail(ctx context.Context, email string) (*entity.AdminUser, error) {
	row, err := common.GetByField[adminRow](ctx, r.db, "admin_users", "email", strings.ToLower(strings.TrimSpace(email)), apperror.ErrAdminNotFound)
	if err != nil {
		return nil, wrapLookup(err, "не удалось получить администратора")
	}
	return row.toEntity(), nil
}

func (r *AdminRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.AdminUser, error) {
	row, err := common.GetByID[adminRow](ctx, r.db, "admin_users", id, apperror.ErrAdminNotFound)
	if err != nil {
		return nil, wrapLookup(err, "не удалось получить администратора")
	}
	return row.toEntity(), nil
}

func (r *AdminRepositoryAdapter) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE admin_users SET last_login_at = $2 WHERE id = $1`, id, time.Now().UTC()); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить время входа")
	}
	return nil
}

func wrapLookup(err error, message string) error {
	if apperror.IsNotFound(err) {
		return err
	}
	return apperror.Wrap(err, apperror.ErrCodeDatabaseError, message)
}

type adminRow struct {
	ID           uuid.UUID  `db:"id"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	DisplayName  string     `db:"display_name"`
	IsActive     bool       `db:"is_active"`
	LastLoginAt  *time.Time `db:"last_login_at"`
	CreatedAt    time.Time  `db:"created_at"`
}

func (a *adminRow) toEntity() *entity.AdminUser {
	return &entity.AdminUser{
		ID:           a.ID,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		DisplayName:  a.DisplayName,
		IsActive:     a.IsActive,
		LastLoginAt:  a.LastLoginAt,
		CreatedAt:    a.CreatedAt,
	}
}
