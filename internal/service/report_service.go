package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/entity"
	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/repository"
	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/valueobject"
	"github.com/Studio-Zurich/fix-app-sub000/internal/logger"
	"github.com/Studio-Zurich/fix-app-sub000/internal/pkg/apperror"
	"github.com/Studio-Zurich/fix-app-sub000/internal/repository/common"
	"github.com/Studio-Zurich/fix-app-sub000/internal/storage"
)

// EventReportStatusChanged уходит администраторам после смены статуса.
const EventReportStatusChanged = "report.status_changed"

const (
	defaultPageSize = 20
	maxPageSize     = 100
	statsCacheTTL   = 30 * time.Second
)

// EventPublisher рассылает события в админку.
type EventPublisher interface {
	Broadcast(event string, data any) error
}

type ReportListInput struct {
	Status         string
	IncidentTypeID string
	Limit          int
	Offset         int
}

type ReportPage struct {
	Reports []*entity.Report
	Total   int
	Limit   int
	Offset  int
}

// FileLink: файл сообщения с публичной ссылкой.
type FileLink struct {
	Path string `json:"path"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

type ReportDetails struct {
	Report *entity.Report
	Files  []FileLink
}

// DashboardStats: агрегаты для дашборда.
type DashboardStats struct {
	Total    int                              `json:"total"`
	ByStatus map[valueobject.ReportStatus]int `json:"by_status"`
	ByType   []repository.TypeCount           `json:"by_type"`
}

// ReportService: работа администраторов с сообщениями.
type ReportService struct {
	repo      repository.ReportRepository
	files     storage.ObjectStorage
	cache     *CacheService
	publisher EventPublisher
}

func NewReportService(repo repository.ReportRepository, files storage.ObjectStorage, cache *CacheService, publisher EventPublisher) *ReportService {
	if cache == nil {
		cache = NewCacheService()
	}
	return &ReportService{repo: repo, files: files, cache: cache, publisher: publisher}
}

func (s *ReportService) List(ctx context.Context, in ReportListInput) (*ReportPage, error) {
	limit, offset := common.Paginate(in.Limit, in.Offset, defaultPageSize, maxPageSize)
	filter := repository.ReportFilter{Limit: limit, Offset: offset}

	if in.Status != "" {
		status, err := valueobject.NewReportStatus(in.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = &status
	}
	if in.IncidentTypeID != "" {
		id, err := uuid.Parse(in.IncidentTypeID)
		if err != nil {
			return nil, apperror.New(apperror.ErrCodeBadRequest, "некорректный идентификатор типа")
		}
		filter.IncidentTypeID = &id
	}

	reports, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить список сообщений")
	}
	return &ReportPage{Reports: reports, Total: total, Limit: limit, Offset: offset}, nil
}

// Get возвращает сообщение с изображениями и всеми файлами из его префикса.
func (s *ReportService) Get(ctx context.Context, id uuid.UUID) (*ReportDetails, error) {
	report, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapLookup(err, "не удалось загрузить сообщение")
	}
	images, err := s.repo.FindImages(ctx, id)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось загрузить изображения")
	}
	report.Images = images

	details := &ReportDetails{Report: report}
	objects, err := s.files.List(ctx, storage.ReportPrefix(id))
	if err != nil {
		// Без списка файлов карточка всё равно полезна.
		logger.Component("reports").WithError(err).WithField("report_id", id).Warn("не удалось получить файлы сообщения")
		return details, nil
	}
	for _, o := range objects {
		details.Files = append(details.Files, FileLink{Path: o.Path, URL: s.files.PublicURL(o.Path), Size: o.Size})
	}
	return details, nil
}

// PublicURL отдаёт ссылку на файл хранилища.
func (s *ReportService) PublicURL(path string) string {
	return s.files.PublicURL(path)
}

// ChangeStatus переводит сообщение в новый статус по допустимому переходу.
func (s *ReportService) ChangeStatus(ctx context.Context, id uuid.UUID, rawStatus string, adminID uuid.UUID) (*entity.Report, error) {
	status, err := valueobject.NewReportStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	report, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapLookup(err, "не удалось загрузить сообщение")
	}

	previous := report.Status
	if err := report.ChangeStatus(status); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, wrapLookup(err, "не удалось обновить статус")
	}
	s.cache.Delete(StatsCacheKey())

	logger.Component("reports").WithFields(map[string]interface{}{
		"report_id": id,
		"admin_id":  adminID,
		"from":      previous,
		"to":        status,
	}).Info("статус сообщения изменён")

	if s.publisher != nil {
		_ = s.publisher.Broadcast(EventReportStatusChanged, map[string]any{
			"report_id": id,
			"from":      previous,
			"to":        status,
			"admin_id":  adminID,
		})
	}
	return report, nil
}

// Stats считает сообщения по статусам и типам; результат кэшируется ненадолго.
func (s *ReportService) Stats(ctx context.Context) (*DashboardStats, error) {
	v, err := s.cache.GetOrSet(ctx, StatsCacheKey(), statsCacheTTL, func(ctx context.Context) (interface{}, error) {
		byStatus, err := s.repo.CountByStatus(ctx)
		if err != nil {
			return nil, err
		}
		byType, err := s.repo.CountByType(ctx)
		if err != nil {
			return nil, err
		}
		stats := &DashboardStats{ByStatus: make(map[valueobject.ReportStatus]int), ByType: byType}
		for _, st := range valueobject.AllReportStatuses() {
			stats.ByStatus[st] = byStatus[st]
			stats.Total += byStatus[st]
		}
		return stats, nil
	})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать статистику")
	}
	return v.(*DashboardStats), nil
}

// InvalidateStats сбрасывает кэш после нового сообщения.
func (s *ReportService) InvalidateStats() {
	s.cache.Delete(StatsCacheKey())
}
