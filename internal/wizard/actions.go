package wizard

import (
	"strings"

	"github.com/google/uuid"

	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/valueobject"
	"github.com/Studio-Zurich/fix-app-sub000/internal/pkg/apperror"
	"github.com/Studio-Zurich/fix-app-sub000/internal/validation"
)

// Action: именованный переход черновика. Все изменения проходят через Apply.
type Action interface {
	actionName() string
}

type SetImage struct{ Image DraftImage }

type ClearImage struct{}

type SetLocation struct{ Location Location }

// SetIncidentType выбирает тип; ActiveSubtypes равно числу активных подтипов
// выбранного типа на момент выбора, оно управляет ребром к шагу подтипа.
type SetIncidentType struct {
	Type           Choice
	ActiveSubtypes int
}

// SetIncidentSubtype игнорируется, если ParentID не совпадает с выбранным типом.
type SetIncidentSubtype struct {
	Subtype  Choice
	ParentID uuid.UUID
}

type SetDescription struct {
	Text      string
	MaxLength int
}

type SetReporter struct{ Reporter Reporter }

type SetLocale struct{ Locale valueobject.Locale }

type Advance struct{}

type Back struct{}

type GoTo struct{ Step Step }

type MarkSubmitted struct{ ReportID uuid.UUID }

type Reset struct{}

func (SetImage) actionName() string           { return "set_image" }
func (ClearImage) actionName() string         { return "clear_image" }
func (SetLocation) actionName() string        { return "set_location" }
func (SetIncidentType) actionName() string    { return "set_incident_type" }
func (SetIncidentSubtype) actionName() string { return "set_incident_subtype" }
func (SetDescription) actionName() string     { return "set_description" }
func (SetReporter) actionName() string        { return "set_reporter" }
func (SetLocale) actionName() string          { return "set_locale" }
func (Advance) actionName() string            { return "advance" }
func (Back) actionName() string               { return "back" }
func (GoTo) actionName() string               { return "goto" }
func (MarkSubmitted) actionName() string      { return "mark_submitted" }
func (Reset) actionName() string              { return "reset" }

// ActionName возвращает имя действия для логов.
func ActionName(a Action) string {
	return a.actionName()
}

var errFinished = apperror.New(apperror.ErrCodeInvalidStateOp, "мастер завершён, доступен только сброс")

// Apply применяет действие к черновику. Сеттеры не возвращают ошибок;
// ошибки возможны только у навигации. При ошибке черновик не меняется.
func Apply(d *Draft, a Action) error {
	if d.Step == StepConfirmation {
		if _, ok := a.(Reset); !ok {
			return errFinished
		}
	}

	switch act := a.(type) {
	case SetImage:
		img := act.Image
		if img.Suggested != nil {
			s := *img.Suggested
			img.Suggested = &s
		}
		d.Image = &img

	case ClearImage:
		d.Image = nil

	case SetLocation:
		loc := act.Location
		loc.Address = validation.TruncateRunes(strings.TrimSpace(loc.Address), validation.MaxAddressLength)
		d.Location = &loc

	case SetIncidentType:
		t := act.Type
		if d.IncidentType == nil || d.IncidentType.ID != t.ID || act.ActiveSubtypes <= 0 {
			d.IncidentSubtype = nil
		}
		d.IncidentType = &t
		d.ActiveSubtypeCount = max(act.ActiveSubtypes, 0)

	case SetIncidentSubtype:
		if d.IncidentType == nil || d.IncidentType.ID != act.ParentID || d.ActiveSubtypeCount == 0 {
			return nil
		}
		s := act.Subtype
		d.IncidentSubtype = &s

	case SetDescription:
		limit := act.MaxLength
		if limit <= 0 {
			limit = DefaultMaxDescriptionLength
		}
		d.Description = validation.TruncateRunes(act.Text, limit)

	case SetReporter:
		d.Reporter = Reporter{
			FirstName: strings.TrimSpace(act.Reporter.FirstName),
			LastName:  strings.TrimSpace(act.Reporter.LastName),
			Email:     strings.TrimSpace(act.Reporter.Email),
			Phone:     strings.TrimSpace(act.Reporter.Phone),
		}

	case SetLocale:
		if act.Locale.IsValid() {
			d.Locale = act.Locale
		}

	case Advance:
		return advance(d)

	case Back:
		d.Step = Prev(d)

	case GoTo:
		return goTo(d, act.Step)

	case MarkSubmitted:
		if d.Step != StepSummary {
			return apperror.New(apperror.ErrCodeInvalidStateOp, "отправка возможна только со сводки")
		}
		if act.ReportID == uuid.Nil {
			return apperror.New(apperror.ErrCodeBadRequest, "пустой идентификатор сообщения")
		}
		id := act.ReportID
		d.ReportID = &id
		d.Step = StepConfirmation
		d.EditingFromSummary = false

	case Reset:
		*d = *NewDraft(d.Locale)

	default:
		return apperror.New(apperror.ErrCodeBadRequest, "неизвестное действие мастера")
	}
	return nil
}

func advance(d *Draft) error {
	if d.Step == StepSummary {
		return apperror.New(apperror.ErrCodeInvalidStateOp, "со сводки можно только отправить сообщение")
	}
	if err := HandlerFor(d.Step).Validate(d); err != nil {
		return err
	}
	if d.EditingFromSummary && d.Complete() {
		d.Step = StepSummary
		d.EditingFromSummary = false
		return nil
	}
	d.Step = Next(d)
	if d.Step == StepSummary {
		d.EditingFromSummary = false
	}
	return nil
}

func goTo(d *Draft, step Step) error {
	if d.Step != StepSummary {
		return apperror.New(apperror.ErrCodeInvalidStateOp, "переход к шагу доступен только со сводки")
	}
	if step == StepSummary {
		return nil
	}
	if !isReachable(d, step) {
		return apperror.New(apperror.ErrCodeBadRequest, "шаг недоступен для текущего черновика")
	}
	d.Step = step
	d.EditingFromSummary = true
	return nil
}
