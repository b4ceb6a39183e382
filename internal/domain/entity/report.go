package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/valueobject"
	"github.com/Studio-Zurich/fix-app-sub000/internal/pkg/apperror"
)

type Report struct {
	ID                uuid.UUID
	FirstName         string
	LastName          string
	Email             string
	Phone             *string
	IncidentTypeID    uuid.UUID
	IncidentSubtypeID *uuid.UUID
	Description       *string
	Location          valueobject.Coordinates
	Address           string
	Status            valueobject.ReportStatus
	Locale            valueobject.Locale
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Images []ReportImage
}

type ReportImage struct {
	ID          uuid.UUID
	ReportID    uuid.UUID
	FilePath    string
	PreviewPath *string
	ContentType string
	CreatedAt   time.Time
}

// NewReportParams: данные, собранные мастером к моменту отправки.
type NewReportParams struct {
	FirstName         string
	LastName          string
	Email             string
	Phone             string
	IncidentTypeID    uuid.UUID
	IncidentSubtypeID *uuid.UUID
	Description       string
	Latitude          float64
	Longitude         float64
	Address           string
	Locale            valueobject.Locale
}

func NewReport(p NewReportParams) (*Report, error) {
	if p.IncidentTypeID == uuid.Nil {
		return nil, apperror.New(apperror.ErrCodeValidation, "тип инцидента обязателен")
	}
	if strings.TrimSpace(p.FirstName) == "" || strings.TrimSpace(p.LastName) == "" || strings.TrimSpace(p.Email) == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "контактные данные заявителя обязательны")
	}

	coords, err := valueobject.NewCoordinates(p.Latitude, p.Longitude)
	if err != nil {
		return nil, err
	}

	locale := p.Locale
	if !locale.IsValid() {
		locale = valueobject.DefaultLocale
	}

	now := time.Now().UTC()
	r := &Report{
		ID:                uuid.New(),
		FirstName:         strings.TrimSpace(p.FirstName),
		LastName:          strings.TrimSpace(p.LastName),
		Email:             strings.TrimSpace(p.Email),
		IncidentTypeID:    p.IncidentTypeID,
		IncidentSubtypeID: p.IncidentSubtypeID,
		Location:          coords,
		Address:           strings.TrimSpace(p.Address),
		Status:            valueobject.ReportStatusOpen,
		Locale:            locale,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if phone := strings.TrimSpace(p.Phone); phone != "" {
		r.Phone = &phone
	}
	if desc := strings.TrimSpace(p.Description); desc != "" {
		r.Description = &desc
	}
	return r, nil
}

func (r *Report) ChangeStatus(status valueobject.ReportStatus) error {
	if !status.IsValid() {
		return apperror.New(apperror.ErrCodeValidation, "некорректный статус сообщения")
	}
	if !r.Status.CanTransitionTo(status) {
		return apperror.New(apperror.ErrCodeBadRequest, "недопустимый переход статуса")
	}
	r.Status = status
	r.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *Report) ReporterName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}
