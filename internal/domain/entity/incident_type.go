package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/valueobject"
	"github.com/Studio-Zurich/fix-app-sub000/internal/pkg/apperror"
)

// IncidentType: справочник категорий инцидентов.
type IncidentType struct {
	ID            uuid.UUID
	Slug          string
	NameDE        string
	NameEN        string
	DescriptionDE string
	DescriptionEN string
	Active        bool
	SortOrder     int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IncidentSubtype: подкатегория, принадлежащая одному IncidentType.
type IncidentSubtype struct {
	ID            uuid.UUID
	TypeID        uuid.UUID
	Slug          string
	NameDE        string
	NameEN        string
	DescriptionDE string
	DescriptionEN string
	Active        bool
	SortOrder     int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func NewIncidentType(slug, nameDE, nameEN string) (*IncidentType, error) {
	if err := validateTaxonomyNames(slug, nameDE, nameEN); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &IncidentType{
		ID:        uuid.New(),
		Slug:      strings.TrimSpace(slug),
		NameDE:    strings.TrimSpace(nameDE),
		NameEN:    strings.TrimSpace(nameEN),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func NewIncidentSubtype(typeID uuid.UUID, slug, nameDE, nameEN string) (*IncidentSubtype, error) {
	if typeID == uuid.Nil {
		return nil, apperror.New(apperror.ErrCodeValidation, "родительский тип обязателен")
	}
	if err := validateTaxonomyNames(slug, nameDE, nameEN); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &IncidentSubtype{
		ID:        uuid.New(),
		TypeID:    typeID,
		Slug:      strings.TrimSpace(slug),
		NameDE:    strings.TrimSpace(nameDE),
		NameEN:    strings.TrimSpace(nameEN),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (t *IncidentType) DisplayName(locale valueobject.Locale) string {
	return pickLocalized(locale, t.NameDE, t.NameEN)
}

func (t *IncidentType) DisplayDescription(locale valueobject.Locale) string {
	return pickLocalized(locale, t.DescriptionDE, t.DescriptionEN)
}

func (s *IncidentSubtype) DisplayName(locale valueobject.Locale) string {
	return pickLocalized(locale, s.NameDE, s.NameEN)
}

func (s *IncidentSubtype) DisplayDescription(locale valueobject.Locale) string {
	return pickLocalized(locale, s.DescriptionDE, s.DescriptionEN)
}

// BelongsTo проверяет, что подтип можно выбрать для указанного типа.
func (s *IncidentSubtype) BelongsTo(typeID uuid.UUID) bool {
	return s.TypeID == typeID
}

func pickLocalized(locale valueobject.Locale, de, en string) string {
	if locale == valueobject.LocaleEN && en != "" {
		return en
	}
	if de != "" {
		return de
	}
	return en
}

func validateTaxonomyNames(slug, nameDE, nameEN string) error {
	if strings.TrimSpace(slug) == "" {
		return apperror.New(apperror.ErrCodeValidation, "slug обязателен")
	}
	if strings.TrimSpace(nameDE) == "" && strings.TrimSpace(nameEN) == "" {
		return apperror.New(apperror.ErrCodeValidation, "нужно хотя бы одно название")
	}
	return nil
}
