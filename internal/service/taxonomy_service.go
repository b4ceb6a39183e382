package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/entity"
	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/repository"
	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/valueobject"
	"github.com/Studio-Zurich/fix-app-sub000/internal/pkg/apperror"
	"github.com/Studio-Zurich/fix-app-sub000/internal/validation"
)

const taxonomyCacheTTL = 5 * time.Minute

// TaxonomyOption: тип или подтип в выбранной локали.
type TaxonomyOption struct {
	ID          uuid.UUID `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
}

// TaxonomyInput: поля типа или подтипа, которые правит администратор.
// Пустые строки и nil при обновлении оставляют прежнее значение.
type TaxonomyInput struct {
	Slug          string
	NameDE        string
	NameEN        string
	DescriptionDE *string
	DescriptionEN *string
	SortOrder     *int
	Active        *bool
}

// TaxonomyService отдаёт справочник мастеру и администраторам.
type TaxonomyService struct {
	repo  repository.TaxonomyRepository
	cache *CacheService
}

func NewTaxonomyService(repo repository.TaxonomyRepository, cache *CacheService) *TaxonomyService {
	if cache == nil {
		cache = NewCacheService()
	}
	return &TaxonomyService{repo: repo, cache: cache}
}

// ListActiveTypes возвращает активные типы, отфильтрованные по подстроке
// названия в локали (без учёта регистра, с Unicode case folding).
func (s *TaxonomyService) ListActiveTypes(ctx context.Context, locale valueobject.Locale, query string) ([]TaxonomyOption, error) {
	v, err := s.cache.GetOrSet(ctx, ActiveTypesCacheKey(), taxonomyCacheTTL, func(ctx context.Context) (interface{}, error) {
		return s.repo.ListTypes(ctx, true)
	})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось загрузить типы инцидентов")
	}
	types := v.([]*entity.IncidentType)

	query = validation.TruncateRunes(strings.TrimSpace(query), validation.MaxSearchQueryLength)
	match := foldMatcher(query)

	out := make([]TaxonomyOption, 0, len(types))
	for _, t := range types {
		name := t.DisplayName(locale)
		if !match(name) {
			continue
		}
		out = append(out, TaxonomyOption{ID: t.ID, Slug: t.Slug, Name: name, Description: t.DisplayDescription(locale)})
	}
	return out, nil
}

// ListActiveSubtypes возвращает активные подтипы активного типа.
func (s *TaxonomyService) ListActiveSubtypes(ctx context.Context, typeID uuid.UUID, locale valueobject.Locale) ([]TaxonomyOption, error) {
	subtypes, err := s.activeSubtypes(ctx, typeID)
	if err != nil {
		return nil, err
	}
	out := make([]TaxonomyOption, 0, len(subtypes))
	for _, st := range subtypes {
		if !st.BelongsTo(typeID) {
			continue
		}
		out = append(out, TaxonomyOption{ID: st.ID, Slug: st.Slug, Name: st.DisplayName(locale), Description: st.DisplayDescription(locale)})
	}
	return out, nil
}

// CountActiveSubtypes: вход условия пропуска шага подтипа.
func (s *TaxonomyService) CountActiveSubtypes(ctx context.Context, typeID uuid.UUID) (int, error) {
	subtypes, err := s.activeSubtypes(ctx, typeID)
	if err != nil {
		return 0, err
	}
	return len(subtypes), nil
}

// ActiveType находит активный тип; неактивный считается отсутствующим.
func (s *TaxonomyService) ActiveType(ctx context.Context, id uuid.UUID) (*entity.IncidentType, error) {
	t, err := s.repo.FindTypeByID(ctx, id)
	if err != nil {
		return nil, wrapLookup(err, "не удалось загрузить тип инцидента")
	}
	if !t.Active {
		return nil, apperror.ErrIncidentTypeNotFound
	}
	return t, nil
}

// ActiveSubtype находит активный подтип указанного типа.
func (s *TaxonomyService) ActiveSubtype(ctx context.Context, typeID, id uuid.UUID) (*entity.IncidentSubtype, error) {
	st, err := s.repo.FindSubtypeByID(ctx, id)
	if err != nil {
		return nil, wrapLookup(err, "не удалось загрузить подтип инцидента")
	}
	if !st.Active || !st.BelongsTo(typeID) {
		return nil, apperror.ErrIncidentSubtypeNotFound
	}
	return st, nil
}

func (s *TaxonomyService) activeSubtypes(ctx context.Context, typeID uuid.UUID) ([]*entity.IncidentSubtype, error) {
	if _, err := s.ActiveType(ctx, typeID); err != nil {
		return nil, err
	}
	v, err := s.cache.GetOrSet(ctx, ActiveSubtypesCacheKey(typeID), taxonomyCacheTTL, func(ctx context.Context) (interface{}, error) {
		return s.repo.ListSubtypes(ctx, typeID, true)
	})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось загрузить подтипы")
	}
	return v.([]*entity.IncidentSubtype), nil
}

// ListAllTypes: полный справочник для админки, включая неактивные.
func (s *TaxonomyService) ListAllTypes(ctx context.Context) ([]*entity.IncidentType, error) {
	types, err := s.repo.ListTypes(ctx, false)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось загрузить типы инцидентов")
	}
	return types, nil
}

func (s *TaxonomyService) ListAllSubtypes(ctx context.Context, typeID uuid.UUID) ([]*entity.IncidentSubtype, error) {
	if _, err := s.repo.FindTypeByID(ctx, typeID); err != nil {
		return nil, wrapLookup(err, "не удалось загрузить тип инцидента")
	}
	subtypes, err := s.repo.ListSubtypes(ctx, typeID, false)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось загрузить подтипы")
	}
	return subtypes, nil
}

func (s *TaxonomyService) CreateType(ctx context.Context, in TaxonomyInput) (*entity.IncidentType, error) {
	t, err := entity.NewIncidentType(in.Slug, in.NameDE, in.NameEN)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.FindTypeBySlug(ctx, t.Slug); err == nil {
		return nil, apperror.New(apperror.ErrCodeConflict, "тип с таким slug уже существует")
	} else if !apperror.IsNotFound(err) {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить slug")
	}

	applyTypeInput(t, in)
	if err := s.repo.CreateType(ctx, t); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать тип инцидента")
	}
	s.cache.InvalidateTaxonomy()
	return t, nil
}

func (s *TaxonomyService) UpdateType(ctx context.Context, id uuid.UUID, in TaxonomyInput) (*entity.IncidentType, error) {
	t, err := s.repo.FindTypeByID(ctx, id)
	if err != nil {
		return nil, wrapLookup(err, "не удалось загрузить тип инцидента")
	}
	if in.Slug == "" {
		in.Slug = t.Slug
	}
	if in.NameDE == "" {
		in.NameDE = t.NameDE
	}
	if in.NameEN == "" {
		in.NameEN = t.NameEN
	}
	t.Slug = strings.TrimSpace(in.Slug)
	t.NameDE = strings.TrimSpace(in.NameDE)
	t.NameEN = strings.TrimSpace(in.NameEN)
	applyTypeInput(t, in)
	t.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateType(ctx, t); err != nil {
		return nil, wrapLookup(err, "не удалось обновить тип инцидента")
	}
	s.cache.InvalidateTaxonomy()
	return t, nil
}

func (s *TaxonomyService) CreateSubtype(ctx context.Context, typeID uuid.UUID, in TaxonomyInput) (*entity.IncidentSubtype, error) {
	if _, err := s.repo.FindTypeByID(ctx, typeID); err != nil {
		return nil, wrapLookup(err, "не удалось загрузить тип инцидента")
	}
	st, err := entity.NewIncidentSubtype(typeID, in.Slug, in.NameDE, in.NameEN)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.FindSubtypeBySlug(ctx, typeID, st.Slug); err == nil {
		return nil, apperror.New(apperror.ErrCodeConflict, "подтип с таким slug уже существует")
	} else if !apperror.IsNotFound(err) {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить slug")
	}

	applySubtypeInput(st, in)
	if err := s.repo.CreateSubtype(ctx, st); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать подтип")
	}
	s.cache.InvalidateTaxonomy()
	return st, nil
}

func (s *TaxonomyService) UpdateSubtype(ctx context.Context, id uuid.UUID, in TaxonomyInput) (*entity.IncidentSubtype, error) {
	st, err := s.repo.FindSubtypeByID(ctx, id)
	if err != nil {
		return nil, wrapLookup(err, "не удалось загрузить подтип")
	}
	if slug := strings.TrimSpace(in.Slug); slug != "" {
		st.Slug = slug
	}
	if n := strings.TrimSpace(in.NameDE); n != "" {
		st.NameDE = n
	}
	if n := strings.TrimSpace(in.NameEN); n != "" {
		st.NameEN = n
	}
	applySubtypeInput(st, in)
	st.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateSubtype(ctx, st); err != nil {
		return nil, wrapLookup(err, "не удалось обновить подтип")
	}
	s.cache.InvalidateTaxonomy()
	return st, nil
}

func applyTypeInput(t *entity.IncidentType, in TaxonomyInput) {
	applyOptional(&t.DescriptionDE, &t.DescriptionEN, &t.SortOrder, &t.Active, in)
}

func applySubtypeInput(st *entity.IncidentSubtype, in TaxonomyInput) {
	applyOptional(&st.DescriptionDE, &st.DescriptionEN, &st.SortOrder, &st.Active, in)
}

func applyOptional(descDE, descEN *string, sortOrder *int, active *bool, in TaxonomyInput) {
	if in.DescriptionDE != nil {
		*descDE = strings.TrimSpace(*in.DescriptionDE)
	}
	if in.DescriptionEN != nil {
		*descEN = strings.TrimSpace(*in.DescriptionEN)
	}
	if in.SortOrder != nil {
		*sortOrder = *in.SortOrder
	}
	if in.Active != nil {
		*active = *in.Active
	}
}

// foldMatcher ищет подстроку после Unicode case folding: "STRASSE" находит "Straße".
func foldMatcher(query string) func(string) bool {
	if query == "" {
		return func(string) bool { return true }
	}
	folder := cases.Fold()
	needle := folder.String(query)
	return func(name string) bool {
		return strings.Contains(folder.String(name), needle)
	}
}

// wrapLookup оставляет not found как есть и помечает остальное как ошибку БД.
func wrapLookup(err error, message string) error {
	if apperror.IsNotFound(err) {
		return err
	}
	return apperror.Wrap(err, apperror.ErrCodeDatabaseError, message)
}
