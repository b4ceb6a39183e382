package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/entity"
	"github.com/Studio-Zurich/fix-app-sub000/internal/pkg/apperror"
)

const (
	typeColumns    = `id, slug, name_de, name_en, description_de, description_en, active, sort_order, created_at, updated_at`
	subtypeColumns = `id, type_id, slug, name_de, name_en, description_de, description_en, active, sort_order, created_at, updated_at`
)

type TaxonomyRepositoryAdapter struct {
	db *sqlx.DB
}

func NewTaxonomyRepositoryAdapter(db *sqlx.DB) *TaxonomyRepositoryAdapter {
	return &TaxonomyRepositoryAdapter{db: db}
}

func (r *TaxonomyRepositoryAdapter) ListTypes(ctx context.Context, onlyActive bool) ([]*entity.IncidentType, error) {
	query := `SELECT ` + typeColumns + ` FROM incident_types`
	if onlyActive {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY sort_order, name_de`

	var rows []typeRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить типы инцидентов")
	}
	result := make([]*entity.IncidentType, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

func (r *TaxonomyRepositoryAdapter) FindTypeByID(ctx context.Context, id uuid.UUID) (*entity.IncidentType, error) {
	return r.findType(ctx, `SELECT `+typeColumns+` FROM incident_types WHERE id = $1`, id)
}

func (r *TaxonomyRepositoryAdapter) FindTypeBySlug(ctx context.Context, slug string) (*entity.IncidentType, error) {
	return r.findType(ctx, `SELECT `+typeColumns+` FROM incident_types WHERE slug = $1`, slug)
}

func (r *TaxonomyRepositoryAdapter) findType(ctx context.Context, query string, arg interface{}) (*entity.IncidentType, error) {
	var row typeRow
	if err := r.db.GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrIncidentTypeNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить тип инцидента")
	}
	return row.toEntity(), nil
}

func (r *TaxonomyRepositoryAdapter) CreateType(ctx context.Context, t *entity.IncidentType) error {
	query := `INSERT INTO incident_types (` + typeColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.Slug, t.NameDE, t.NameEN, t.DescriptionDE, t.DescriptionEN, t.Active, t.SortOrder, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать тип инцидента")
	}
	return nil
}

func (r *TaxonomyRepositoryAdapter) UpdateType(ctx context.Context, t *entity.IncidentType) error {
	query := `
		UPDATE incident_types SET slug = $2, name_de = $3, name_en = $4, description_de = $5,
		description_en = $6, active = $7, sort_order = $8, updated_at = $9
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		t.ID, t.Slug, t.NameDE, t.NameEN, t.DescriptionDE, t.DescriptionEN, t.Active, t.SortOrder, t.UpdatedAt)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить тип инцидента")
	}
	return expectOneRow(res, apperror.ErrIncidentTypeNotFound)
}

func (r *TaxonomyRepositoryAdapter) ListSubtypes(ctx context.Context, typeID uuid.UUID, onlyActive bool) ([]*entity.IncidentSubtype, error) {
	query := `SELECT ` + subtypeColumns + ` FROM incident_subtypes WHERE type_id = $1`
	if onlyActive {
		query += ` AND active = TRUE`
	}
	query += ` ORDER BY sort_order, name_de`

	var rows []subtypeRow
	if err := r.db.SelectContext(ctx, &rows, query, typeID); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить подтипы инцидентов")
	}
	result := make([]*entity.IncidentSubtype, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

func (r *TaxonomyRepositoryAdapter) FindSubtypeByID(ctx context.Context, id uuid.UUID) (*entity.IncidentSubtype, error) {
	return r.findSubtype(ctx, `SELECT `+subtypeColumns+` FROM incident_subtypes WHERE id = $1`, id)
}

func (r *TaxonomyRepositoryAdapter) FindSubtypeBySlug(ctx context.Context, typeID uuid.UUID, slug string) (*entity.IncidentSubtype, error) {
	return r.findSubtype(ctx, `SELECT `+subtypeColumns+` FROM incident_subtypes WHERE type_id = $1 AND slug = $2`, typeID, slug)
}

func (r *TaxonomyRepositoryAdapter) findSubtype(ctx context.Context, query string, args ...interface{}) (*entity.IncidentSubtype, error) {
	var row subtypeRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrIncidentSubtypeNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить подтип инцидента")
	}
	return row.toEntity(), nil
}

func (r *TaxonomyRepositoryAdapter) CreateSubtype(ctx context.Context, s *entity.IncidentSubtype) error {
	query := `INSERT INTO incident_subtypes (` + subtypeColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.TypeID, s.Slug, s.NameDE, s.NameEN, s.DescriptionDE, s.DescriptionEN, s.Active, s.SortOrder, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать подтип инцидента")
	}
	return nil
}

func (r *TaxonomyRepositoryAdapter) UpdateSubtype(ctx context.Context, s *entity.IncidentSubtype) error {
	query := `
		UPDATE incident_subtypes SET type_id = $2, slug = $3, name_de = $4, name_en = $5,
		description_de = $6, description_en = $7, active = $8, sort_order = $9, updated_at = $10
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		s.ID, s.TypeID, s.Slug, s.NameDE, s.NameEN, s.DescriptionDE, s.DescriptionEN, s.Active, s.SortOrder, s.UpdatedAt)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить подтип инцидента")
	}
	return expectOneRow(res, apperror.ErrIncidentSubtypeNotFound)
}

func (r *TaxonomyRepositoryAdapter) CountActiveSubtypes(ctx context.Context, typeID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM incident_subtypes WHERE type_id = $1 AND active = TRUE`
	if err := r.db.GetContext(ctx, &count, query, typeID); err != nil {
		return 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать подтипы")
	}
	return count, nil
}

func expectOneRow(res sql.Result, notFound error) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить результат обновления")
	}
	if rows == 0 {
		return notFound
	}
	return nil
}

type typeRow struct {
	ID            uuid.UUID `db:"id"`
	Slug          string    `db:"slug"`
	NameDE        string    `db:"name_de"`
	NameEN        string    `db:"name_en"`
	DescriptionDE string    `db:"description_de"`
	DescriptionEN string    `db:"description_en"`
	Active        bool      `db:"active"`
	SortOrder     int       `db:"sort_order"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (t *typeRow) toEntity() *entity.IncidentType {
	return &entity.IncidentType{
		ID: t.ID, Slug: t.Slug, NameDE: t.NameDE, NameEN: t.NameEN,
		DescriptionDE: t.DescriptionDE, DescriptionEN: t.DescriptionEN,
		Active: t.Active, SortOrder: t.SortOrder, CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt,
	}
}

type subtypeRow struct {
	typeRow
	TypeID uuid.UUID `db:"type_id"`
}

func (s *subtypeRow) toEntity() *entity.IncidentSubtype {
	return &entity.IncidentSubtype{
		ID: s.ID, TypeID: s.TypeID, Slug: s.Slug, NameDE: s.NameDE, NameEN: s.NameEN,
		DescriptionDE: s.DescriptionDE, DescriptionEN: s.DescriptionEN,
		Active: s.Active, SortOrder: s.SortOrder, CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt,
	}
}
