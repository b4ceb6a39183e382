package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/entity"
	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/repository"
	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/valueobject"
	"github.com/Studio-Zurich/fix-app-sub000/internal/pkg/apperror"
	"github.com/Studio-Zurich/fix-app-sub000/internal/repository/common"
)

const reportColumns = `id, first_name, last_name, email, phone, incident_type_id, incident_subtype_id,
	description, latitude, longitude, address, status, locale, created_at, updated_at`

type ReportRepositoryAdapter struct {
	db *sqlx.DB
}

func NewReportRepositoryAdapter(db *sqlx.DB) *ReportRepositoryAdapter {
	return &ReportRepositoryAdapter{db: db}
}

func (r *ReportRepositoryAdapter) Create(ctx context.Context, report *entity.Report) error {
	query := `
		INSERT INTO reports (` + reportColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.db.ExecContext(ctx, query,
		report.ID, report.FirstName, report.LastName, report.Email, report.Phone,
		report.IncidentTypeID, report.IncidentSubtypeID, report.Description,
		report.Location.Latitude, report.Location.Longitude, report.Address,
		string(report.Status), string(report.Locale), report.CreatedAt, report.UpdatedAt,
	)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать сообщение")
	}
	return nil
}

func (r *ReportRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Report, error) {
	var row reportRow
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrReportNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить сообщение")
	}
	return row.toEntity(), nil
}

func (r *ReportRepositoryAdapter) List(ctx context.Context, filter repository.ReportFilter) ([]*entity.Report, int, error) {
	baseQuery := `FROM reports WHERE 1=1`
	args := []interface{}{}
	argNum := 1

	if filter.Status != nil {
		baseQuery += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, string(*filter.Status))
		argNum++
	}
	if filter.IncidentTypeID != nil {
		baseQuery += fmt.Sprintf(" AND incident_type_id = $%d", argNum)
		args = append(args, *filter.IncidentTypeID)
		argNum++
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+baseQuery, args...); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать сообщения")
	}

	selectQuery := fmt.Sprintf(`SELECT %s %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		reportColumns, baseQuery, argNum, argNum+1)
	args = append(args, filter.Limit, filter.Offset)

	var rows []reportRow
	if err := r.db.SelectContext(ctx, &rows, selectQuery, args...); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить сообщения")
	}

	reports := make([]*entity.Report, len(rows))
	for i := range rows {
		reports[i] = rows[i].toEntity()
	}
	return reports, total, nil
}

// UpdateStatus меняет статус и пишет запись в историю в одной транзакции.
func (r *ReportRepositoryAdapter) UpdateStatus(ctx context.Context, id uuid.UUID, status valueobject.ReportStatus) error {
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var previous string
		if err := tx.GetContext(ctx, &previous, `SELECT status FROM reports WHERE id = $1 FOR UPDATE`, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperror.ErrReportNotFound
			}
			return err
		}

		now := time.Now().UTC()
		if _, err := tx.ExecContext(ctx, `UPDATE reports SET status = $2, updated_at = $3 WHERE id = $1`,
			id, string(status), now); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO report_status_history (id, report_id, from_status, to_status, changed_at)
			VALUES ($1, $2, $3, $4, $5)`,
			uuid.New(), id, previous, string(status), now)
		return err
	})
	if err != nil {
		if apperror.IsNotFound(err) {
			return err
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить статус сообщения")
	}
	return nil
}

func (r *ReportRepositoryAdapter) AddImage(ctx context.Context, img *entity.ReportImage) error {
	query := `
		INSERT INTO report_images (id, report_id, file_path, preview_path, content_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		img.ID, img.ReportID, img.FilePath, img.PreviewPath, img.ContentType, img.CreatedAt)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить изображение сообщения")
	}
	return nil
}

func (r *ReportRepositoryAdapter) FindImages(ctx context.Context, reportID uuid.UUID) ([]entity.ReportImage, error) {
	var images []entity.ReportImage
	query := `
		SELECT id, report_id, file_path, preview_path, content_type, created_at
		FROM report_images WHERE report_id = $1 ORDER BY created_at
	`
	rows, err := r.db.QueryxContext(ctx, query, reportID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить изображения")
	}
	defer rows.Close()

	for rows.Next() {
		var img entity.ReportImage
		if err := rows.Scan(&img.ID, &img.ReportID, &img.FilePath, &img.PreviewPath, &img.ContentType, &img.CreatedAt); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось прочитать изображение")
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить изображения")
	}
	return images, nil
}

func (r *ReportRepositoryAdapter) CountByStatus(ctx context.Context) (map[valueobject.ReportStatus]int, error) {
	var rows []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &rows, `SELECT status, COUNT(*) AS count FROM reports GROUP BY status`); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать сообщения по статусам")
	}

	result := make(map[valueobject.ReportStatus]int, len(valueobject.AllReportStatuses()))
	for _, s := range valueobject.AllReportStatuses() {
		result[s] = 0
	}
	for _, row := range rows {
		result[valueobject.ReportStatus(row.Status)] = row.Count
	}
	return result, nil
}

func (r *ReportRepositoryAdapter) CountByType(ctx context.Context) ([]repository.TypeCount, error) {
	query := `
		SELECT t.id AS incident_type_id, t.slug, t.name_de, t.name_en, COUNT(r.id) AS count
		FROM incident_types t
		LEFT JOIN reports r ON r.incident_type_id = t.id
		GROUP BY t.id, t.slug, t.name_de, t.name_en
		ORDER BY count DESC, t.sort_order
	`
	var counts []repository.TypeCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать сообщения по типам")
	}
	return counts, nil
}

type reportRow struct {
	ID                uuid.UUID  `db:"id"`
	FirstName         string     `db:"first_name"`
	LastName          string     `db:"last_name"`
	Email             string     `db:"email"`
	Phone             *string    `db:"phone"`
	IncidentTypeID    uuid.UUID  `db:"incident_type_id"`
	IncidentSubtypeID *uuid.UUID `db:"incident_subtype_id"`
	Description       *string    `db:"description"`
	Latitude          float64    `db:"latitude"`
	Longitude         float64    `db:"longitude"`
	Address           string     `db:"address"`
	Status            string     `db:"status"`
	Locale            string     `db:"locale"`
	CreatedAt         time.Time  `db:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
}

func (r *reportRow) toEntity() *entity.Report {
	status, _ := valueobject.NewReportStatus(r.Status)
	return &entity.Report{
		ID:                r.ID,
		FirstName:         r.FirstName,
		LastName:          r.LastName,
		Email:             r.Email,
		Phone:             r.Phone,
		IncidentTypeID:    r.IncidentTypeID,
		IncidentSubtypeID: r.IncidentSubtypeID,
		Description:       r.Description,
		Location:          valueobject.Coordinates{Latitude: r.Latitude, Longitude: r.Longitude},
		Address:           r.Address,
		Status:            status,
		Locale:            valueobject.Locale(r.Locale),
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}
