package wizard

import (
	"errors"
	"strconv"
	"unicode/utf8"

	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/valueobject"
	"github.com/Studio-Zurich/fix-app-sub000/internal/pkg/apperror"
	"github.com/Studio-Zurich/fix-app-sub000/internal/validation"
)

// Translator: каталог переводов, из которого шаги берут подписи.
type Translator interface {
	T(locale valueobject.Locale, key string, args ...string) string
}

// StepHandler: общая способность всех шагов мастера.
type StepHandler interface {
	Step() Step
	// Validate возвращает ошибку валидации с ключами перевода по полям.
	Validate(d *Draft) error
	CanAdvance(d *Draft) bool
	View(d *Draft, tr Translator) StepView
}

type StepView struct {
	Step               Step                   `json:"step"`
	Title              string                 `json:"title"`
	Hint               string                 `json:"hint,omitempty"`
	Position           int                    `json:"position"`
	Total              int                    `json:"total"`
	Labels             map[string]string      `json:"labels"`
	Values             map[string]interface{} `json:"values,omitempty"`
	Errors             map[string]string      `json:"errors,omitempty"`
	Sections           []SummarySection       `json:"sections,omitempty"`
	CanGoBack          bool                   `json:"can_go_back"`
	CanAdvance         bool                   `json:"can_advance"`
	CanSubmit          bool                   `json:"can_submit"`
	EditingFromSummary bool                   `json:"editing_from_summary"`
}

// SummarySection: блок сводки со ссылкой на редактирование шага.
type SummarySection struct {
	Step      Step     `json:"step"`
	Title     string   `json:"title"`
	Lines     []string `json:"lines"`
	EditLabel string   `json:"edit_label"`
}

var handlers = map[Step]StepHandler{
	StepImage:           imageStep{},
	StepLocation:        locationStep{},
	StepIncidentType:    incidentTypeStep{},
	StepIncidentSubtype: incidentSubtypeStep{},
	StepDescription:     descriptionStep{},
	StepContact:         contactStep{},
	StepSummary:         summaryStep{},
	StepConfirmation:    confirmationStep{},
}

func HandlerFor(step Step) StepHandler {
	if h, ok := handlers[step]; ok {
		return h
	}
	return handlers[StepImage]
}

// Render строит представление текущего шага.
func Render(d *Draft, tr Translator) StepView {
	return HandlerFor(d.Step).View(d, tr)
}

// TranslateErrors переводит ошибки полей из AppError в строки локали.
func TranslateErrors(err error, locale valueobject.Locale, tr Translator) map[string]string {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || len(appErr.Fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(appErr.Fields))
	for field, key := range appErr.Fields {
		out[field] = tr.T(locale, key)
	}
	return out
}

func baseView(d *Draft, tr Translator, h StepHandler) StepView {
	pos, total := Position(d)
	prefix := "wizard.steps." + string(d.Step) + "."
	return StepView{
		Step:     d.Step,
		Title:    tr.T(d.Locale, prefix+"title"),
		Hint:     tr.T(d.Locale, prefix+"hint"),
		Position: pos,
		Total:    total,
		Labels: map[string]string{
			"back": tr.T(d.Locale, "wizard.nav.back"),
			"next": tr.T(d.Locale, "wizard.nav.next"),
		},
		Values:             map[string]interface{}{},
		CanGoBack:          d.Step != StepImage && d.Step != StepConfirmation,
		CanAdvance:         h.CanAdvance(d),
		EditingFromSummary: d.EditingFromSummary,
	}
}

func fieldErrors(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return apperror.Validation("черновик заполнен не полностью", fields)
}

// errorKey сопоставляет ошибку пакета validation с ключом перевода.
func errorKey(field string, err error) string {
	switch {
	case errors.Is(err, validation.ErrRequired):
		return "wizard.errors." + field + "_required"
	case errors.Is(err, validation.ErrInvalidEmail):
		return "wizard.errors.email_invalid"
	case errors.Is(err, validation.ErrInvalidPhone):
		return "wizard.errors.phone_invalid"
	case errors.Is(err, validation.ErrTooLong):
		return "wizard.errors.too_long"
	default:
		return "wizard.errors.invalid"
	}
}

type imageStep struct{}

func (imageStep) Step() Step             { return StepImage }
func (imageStep) Validate(*Draft) error  { return nil }
func (imageStep) CanAdvance(*Draft) bool { return true }

func (s imageStep) View(d *Draft, tr Translator) StepView {
	v := baseView(d, tr, s)
	v.Labels["upload"] = tr.T(d.Locale, "wizard.fields.image")
	v.Labels["remove"] = tr.T(d.Locale, "wizard.nav.remove")
	v.Labels["skip"] = tr.T(d.Locale, "wizard.nav.skip")
	if d.Image != nil {
		v.Values["preview_url"] = d.Image.PreviewURL
		v.Values["content_type"] = d.Image.ContentType
		if d.Image.Suggested != nil {
			v.Values["suggested_location"] = d.Image.Suggested
			v.Labels["use_suggested"] = tr.T(d.Locale, "wizard.fields.use_image_location")
		}
	}
	return v
}

type locationStep struct{}

func (locationStep) Step() Step { return StepLocation }

func (locationStep) Validate(d *Draft) error {
	if d.Location == nil {
		return fieldErrors(map[string]string{"location": "wizard.errors.location_required"})
	}
	if _, err := valueobject.NewCoordinates(d.Location.Latitude, d.Location.Longitude); err != nil {
		return fieldErrors(map[string]string{"location": "wizard.errors.location_invalid"})
	}
	return nil
}

func (s locationStep) CanAdvance(d *Draft) bool { return s.Validate(d) == nil }

func (s locationStep) View(d *Draft, tr Translator) StepView {
	v := baseView(d, tr, s)
	v.Labels["search"] = tr.T(d.Locale, "wizard.fields.address_search")
	v.Labels["address"] = tr.T(d.Locale, "wizard.fields.address")
	v.Labels["pin"] = tr.T(d.Locale, "wizard.fields.map_pin")
	if d.Location != nil {
		v.Values["location"] = d.Location
	}
	if d.Image != nil && d.Image.Suggested != nil {
		v.Values["suggested_location"] = d.Image.Suggested
		v.Labels["use_suggested"] = tr.T(d.Locale, "wizard.fields.use_image_location")
	}
	return v
}

type incidentTypeStep struct{}

func (incidentTypeStep) Step() Step { return StepIncidentType }

func (incidentTypeStep) Validate(d *Draft) error {
	if d.IncidentType == nil {
		return fieldErrors(map[string]string{"incident_type": "wizard.errors.incident_type_required"})
	}
	return nil
}

func (s incidentTypeStep) CanAdvance(d *Draft) bool { return s.Validate(d) == nil }

func (s incidentTypeStep) View(d *Draft, tr Translator) StepView {
	v := baseView(d, tr, s)
	v.Labels["search"] = tr.T(d.Locale, "wizard.fields.type_search")
	if d.IncidentType != nil {
		v.Values["incident_type"] = d.IncidentType
	}
	return v
}

type incidentSubtypeStep struct{}

func (incidentSubtypeStep) Step() Step { return StepIncidentSubtype }

func (incidentSubtypeStep) Validate(d *Draft) error {
	if d.HasSubtypeStep() && d.IncidentSubtype == nil {
		return fieldErrors(map[string]string{"incident_subtype": "wizard.errors.incident_subtype_required"})
	}
	return nil
}

func (s incidentSubtypeStep) CanAdvance(d *Draft) bool { return s.Validate(d) == nil }

func (s incidentSubtypeStep) View(d *Draft, tr Translator) StepView {
	v := baseView(d, tr, s)
	if d.IncidentType != nil {
		v.Values["incident_type"] = d.IncidentType
	}
	if d.IncidentSubtype != nil {
		v.Values["incident_subtype"] = d.IncidentSubtype
	}
	return v
}

type descriptionStep struct{}

func (descriptionStep) Step() Step             { return StepDescription }
func (descriptionStep) Validate(*Draft) error  { return nil }
func (descriptionStep) CanAdvance(*Draft) bool { return true }

func (s descriptionStep) View(d *Draft, tr Translator) StepView {
	v := baseView(d, tr, s)
	v.Labels["description"] = tr.T(d.Locale, "wizard.fields.description")
	v.Values["description"] = d.Description
	v.Values["length"] = utf8.RuneCountInString(d.Description)
	return v
}

type contactStep struct{}

func (contactStep) Step() Step { return StepContact }

func (contactStep) Validate(d *Draft) error {
	fields := make(map[string]string)
	r := d.Reporter
	if err := validation.ValidateName("first_name", r.FirstName); err != nil {
		fields["first_name"] = errorKey("first_name", err)
	}
	if err := validation.ValidateName("last_name", r.LastName); err != nil {
		fields["last_name"] = errorKey("last_name", err)
	}
	if err := validation.ValidateEmail(r.Email); err != nil {
		fields["email"] = errorKey("email", err)
	}
	if err := validation.ValidatePhone(r.Phone); err != nil {
		fields["phone"] = errorKey("phone", err)
	}
	return fieldErrors(fields)
}

func (s contactStep) CanAdvance(d *Draft) bool { return s.Validate(d) == nil }

func (s contactStep) View(d *Draft, tr Translator) StepView {
	v := baseView(d, tr, s)
	for _, f := range []string{"first_name", "last_name", "email", "phone"} {
		v.Labels[f] = tr.T(d.Locale, "wizard.fields."+f)
	}
	v.Labels["optional"] = tr.T(d.Locale, "wizard.fields.optional")
	v.Values["reporter"] = d.Reporter
	return v
}

type summaryStep struct{}

func (summaryStep) Step() Step { return StepSummary }

// Validate на сводке проверяет весь черновик: это и есть проверка перед отправкой.
func (summaryStep) Validate(d *Draft) error {
	fields := make(map[string]string)
	for _, step := range Reachable(d) {
		if step == StepSummary {
			continue
		}
		var appErr *apperror.AppError
		if err := HandlerFor(step).Validate(d); errors.As(err, &appErr) {
			for k, v := range appErr.Fields {
				fields[k] = v
			}
		}
	}
	if !d.HasSubtypeStep() && d.IncidentSubtype != nil {
		fields["incident_subtype"] = "wizard.errors.incident_subtype_unexpected"
	}
	return fieldErrors(fields)
}

func (s summaryStep) CanAdvance(*Draft) bool { return false }

func (s summaryStep) View(d *Draft, tr Translator) StepView {
	v := baseView(d, tr, s)
	v.CanSubmit = s.Validate(d) == nil
	v.Labels["submit"] = tr.T(d.Locale, "wizard.nav.submit")
	edit := tr.T(d.Locale, "wizard.nav.edit")
	section := func(step Step, lines ...string) SummarySection {
		return SummarySection{
			Step:      step,
			Title:     tr.T(d.Locale, "wizard.steps."+string(step)+".title"),
			Lines:     lines,
			EditLabel: edit,
		}
	}

	imageLine := tr.T(d.Locale, "wizard.summary.no_image")
	if d.Image != nil {
		imageLine = d.Image.PreviewURL
	}
	v.Sections = append(v.Sections, section(StepImage, imageLine))

	if d.Location != nil {
		v.Sections = append(v.Sections, section(StepLocation, d.Location.Address,
			strconv.FormatFloat(d.Location.Latitude, 'f', 6, 64)+", "+strconv.FormatFloat(d.Location.Longitude, 'f', 6, 64)))
	}
	if d.IncidentType != nil {
		v.Sections = append(v.Sections, section(StepIncidentType, d.IncidentType.Name))
	}
	if d.HasSubtypeStep() && d.IncidentSubtype != nil {
		v.Sections = append(v.Sections, section(StepIncidentSubtype, d.IncidentSubtype.Name))
	}

	descLine := d.Description
	if descLine == "" {
		descLine = tr.T(d.Locale, "wizard.summary.no_description")
	}
	v.Sections = append(v.Sections, section(StepDescription, descLine))

	r := d.Reporter
	phone := r.Phone
	if phone == "" {
		phone = tr.T(d.Locale, "wizard.summary.no_phone")
	}
	v.Sections = append(v.Sections, section(StepContact, r.FirstName+" "+r.LastName, r.Email, phone))
	return v
}

type confirmationStep struct{}

func (confirmationStep) Step() Step             { return StepConfirmation }
func (confirmationStep) Validate(*Draft) error  { return nil }
func (confirmationStep) CanAdvance(*Draft) bool { return false }

func (s confirmationStep) View(d *Draft, tr Translator) StepView {
	v := baseView(d, tr, s)
	v.Labels = map[string]string{"new_report": tr.T(d.Locale, "wizard.nav.new_report")}
	if d.ReportID != nil {
		id := d.ReportID.String()
		v.Values["report_id"] = id
		v.Hint = tr.T(d.Locale, "wizard.steps.confirmation.hint", "id", id)
	}
	return v
}
