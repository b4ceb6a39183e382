// Package wizard содержит состояние черновика сообщения и граф шагов мастера.
package wizard

import (
	"strings"

	"github.com/google/uuid"

	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/valueobject"
	"github.com/Studio-Zurich/fix-app-sub000/internal/validation"
)

type Step string

const (
	StepImage           Step = "image"
	StepLocation        Step = "location"
	StepIncidentType    Step = "incident_type"
	StepIncidentSubtype Step = "incident_subtype"
	StepDescription     Step = "description"
	StepContact         Step = "contact"
	StepSummary         Step = "summary"
	StepConfirmation    Step = "confirmation"
)

// DefaultMaxDescriptionLength используется, когда лимит не задан конфигурацией.
const DefaultMaxDescriptionLength = validation.MaxDescriptionLength

var orderedSteps = []Step{
	StepImage,
	StepLocation,
	StepIncidentType,
	StepIncidentSubtype,
	StepDescription,
	StepContact,
	StepSummary,
}

func (s Step) IsValid() bool {
	return s == StepConfirmation || s.index() >= 0
}

func (s Step) index() int {
	for i, step := range orderedSteps {
		if step == s {
			return i
		}
	}
	return -1
}

func ParseStep(raw string) (Step, bool) {
	s := Step(strings.TrimSpace(raw))
	return s, s.IsValid()
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
}

// DraftImage: загруженный во временный префикс файл.
type DraftImage struct {
	TemporaryReference string    `json:"temporary_reference"`
	PreviewReference   string    `json:"preview_reference,omitempty"`
	PreviewURL         string    `json:"preview_url,omitempty"`
	ContentType        string    `json:"content_type"`
	Suggested          *Location `json:"suggested_location,omitempty"`
}

type Choice struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type Reporter struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

// Draft: черновик сообщения одного экземпляра мастера.
// Поля-указатели всегда заменяются целиком, поэтому копия по значению
// не разделяет изменяемые данные с оригиналом.
type Draft struct {
	Step               Step
	Image              *DraftImage
	Location           *Location
	IncidentType       *Choice
	IncidentSubtype    *Choice
	ActiveSubtypeCount int
	Description        string
	Reporter           Reporter
	Locale             valueobject.Locale
	EditingFromSummary bool
	ReportID           *uuid.UUID
}

func NewDraft(locale valueobject.Locale) *Draft {
	if !locale.IsValid() {
		locale = valueobject.DefaultLocale
	}
	return &Draft{Step: StepImage, Locale: locale}
}

// HasSubtypeStep: условие ребра incident_type → incident_subtype.
func (d *Draft) HasSubtypeStep() bool {
	return d.IncidentType != nil && d.ActiveSubtypeCount > 0
}

// Complete сообщает, можно ли отправлять черновик.
func (d *Draft) Complete() bool {
	return summaryStep{}.Validate(d) == nil
}

func (d *Draft) Submitted() bool {
	return d.Step == StepConfirmation
}
