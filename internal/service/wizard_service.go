package service

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/repository"
	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/valueobject"
	"github.com/Studio-Zurich/fix-app-sub000/internal/geocoding"
	"github.com/Studio-Zurich/fix-app-sub000/internal/logger"
	"github.com/Studio-Zurich/fix-app-sub000/internal/pkg/apperror"
	"github.com/Studio-Zurich/fix-app-sub000/internal/usecase/submission"
	"github.com/Studio-Zurich/fix-app-sub000/internal/usecase/upload"
	"github.com/Studio-Zurich/fix-app-sub000/internal/validation"
	"github.com/Studio-Zurich/fix-app-sub000/internal/wizard"
)

type ImageUploader interface {
	Execute(ctx context.Context, in upload.UploadImageInput) (*wizard.DraftImage, error)
}

type ReportSubmitter interface {
	Execute(ctx context.Context, d wizard.Draft) (*submission.Result, error)
}

type Geocoder interface {
	Search(ctx context.Context, query string, locale valueobject.Locale) ([]geocoding.Place, error)
	Reverse(ctx context.Context, lat, lng float64, locale valueobject.Locale) (geocoding.Place, error)
}

// WizardState: ответ мастера: сессия и представление текущего шага.
type WizardState struct {
	SessionID uuid.UUID          `json:"session_id"`
	Locale    valueobject.Locale `json:"locale"`
	View      wizard.StepView    `json:"view"`
	ReportID  *uuid.UUID         `json:"report_id,omitempty"`
}

type WizardDeps struct {
	Sessions             *wizard.SessionStore
	Taxonomy             *TaxonomyService
	Uploader             ImageUploader
	Submitter            ReportSubmitter
	Geocoder             Geocoder
	Reports              repository.ReportRepository
	Translator           wizard.Translator
	MaxDescriptionLength int
	// OnSubmitted вызывается после успешной отправки (сброс кэша статистики).
	OnSubmitted func(reportID uuid.UUID)
}

// WizardService связывает сессии мастера со справочником, загрузкой,
// геокодером и отправкой.
type WizardService struct {
	deps WizardDeps
	log  *logrus.Entry
}

func NewWizardService(deps WizardDeps) *WizardService {
	if deps.MaxDescriptionLength <= 0 {
		deps.MaxDescriptionLength = wizard.DefaultMaxDescriptionLength
	}
	return &WizardService{deps: deps, log: logger.Component("wizard")}
}

func (s *WizardService) Start(locale valueobject.Locale) *WizardState {
	sess := s.deps.Sessions.Create(locale)
	s.log.WithField("session_id", sess.ID).Debug("мастер запущен")
	return s.state(sess.ID, sess.Snapshot(), nil)
}

func (s *WizardService) State(id uuid.UUID) (*WizardState, error) {
	sess, err := s.deps.Sessions.Get(id)
	if err != nil {
		return nil, err
	}
	return s.state(id, sess.Snapshot(), nil), nil
}

// Abandon удаляет черновик; временные файлы остаются до sweep-temp.
func (s *WizardService) Abandon(id uuid.UUID) error {
	if _, err := s.deps.Sessions.Get(id); err != nil {
		return err
	}
	s.deps.Sessions.Delete(id)
	return nil
}

func (s *WizardService) SetLocale(id uuid.UUID, locale valueobject.Locale) (*WizardState, error) {
	return s.dispatch(id, wizard.SetLocale{Locale: locale})
}

func (s *WizardService) UploadImage(ctx context.Context, id uuid.UUID, filename string, r io.Reader) (*WizardState, error) {
	sess, err := s.deps.Sessions.Get(id)
	if err != nil {
		return nil, err
	}
	d := sess.Snapshot()
	img, err := s.deps.Uploader.Execute(ctx, upload.UploadImageInput{Filename: filename, Content: r, Locale: d.Locale})
	if err != nil {
		err = stepError(err, "image", "wizard.errors.upload_failed")
		return s.state(id, d, err), err
	}
	return s.apply(sess, wizard.SetImage{Image: *img})
}

func (s *WizardService) ClearImage(id uuid.UUID) (*WizardState, error) {
	return s.dispatch(id, wizard.ClearImage{})
}

func (s *WizardService) SetLocation(id uuid.UUID, loc wizard.Location) (*WizardState, error) {
	if _, err := valueobject.NewCoordinates(loc.Latitude, loc.Longitude); err != nil {
		sess, gerr := s.deps.Sessions.Get(id)
		if gerr != nil {
			return nil, gerr
		}
		verr := apperror.Validation("некорректные координаты", map[string]string{"location": "wizard.errors.location_invalid"})
		return s.state(id, sess.Snapshot(), verr), verr
	}
	return s.dispatch(id, wizard.SetLocation{Location: loc})
}

// UseImageLocation принимает координаты, найденные в EXIF фото.
func (s *WizardService) UseImageLocation(id uuid.UUID) (*WizardState, error) {
	sess, err := s.deps.Sessions.Get(id)
	if err != nil {
		return nil, err
	}
	d := sess.Snapshot()
	if d.Image == nil || d.Image.Suggested == nil {
		verr := apperror.Validation("в фото нет координат", map[string]string{"location": "wizard.errors.location_unavailable"})
		return s.state(id, d, verr), verr
	}
	return s.apply(sess, wizard.SetLocation{Location: *d.Image.Suggested})
}

// SearchAddress ищет адрес. Ошибки геокодера остаются ошибками шага места.
func (s *WizardService) SearchAddress(ctx context.Context, id uuid.UUID, query string) ([]geocoding.Place, error) {
	sess, err := s.deps.Sessions.Get(id)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateLength("q", query, 2, validation.MaxSearchQueryLength); err != nil {
		return nil, apperror.Validation(err.Error(), map[string]string{"location": "wizard.errors.invalid"})
	}
	places, err := s.deps.Geocoder.Search(ctx, query, sess.Snapshot().Locale)
	if err != nil {
		return nil, geocodingError(err)
	}
	return places, nil
}

func (s *WizardService) ReverseGeocode(ctx context.Context, id uuid.UUID, lat, lng float64) (*geocoding.Place, error) {
	sess, err := s.deps.Sessions.Get(id)
	if err != nil {
		return nil, err
	}
	if _, err := valueobject.NewCoordinates(lat, lng); err != nil {
		return nil, apperror.Validation("некорректные координаты", map[string]string{"location": "wizard.errors.location_invalid"})
	}
	place, err := s.deps.Geocoder.Reverse(ctx, lat, lng, sess.Snapshot().Locale)
	if err != nil {
		return nil, geocodingError(err)
	}
	return &place, nil
}

func (s *WizardService) ListTypes(ctx context.Context, id uuid.UUID, query string) ([]TaxonomyOption, error) {
	sess, err := s.deps.Sessions.Get(id)
	if err != nil {
		return nil, err
	}
	return s.deps.Taxonomy.ListActiveTypes(ctx, sess.Snapshot().Locale, query)
}

// SelectType выбирает тип и, если мастер стоит на шаге типа, переходит дальше.
func (s *WizardService) SelectType(ctx context.Context, id, typeID uuid.UUID) (*WizardState, error) {
	sess, err := s.deps.Sessions.Get(id)
	if err != nil {
		return nil, err
	}
	locale := sess.Snapshot().Locale

	t, err := s.deps.Taxonomy.ActiveType(ctx, typeID)
	if err != nil {
		return nil, err
	}
	count, err := s.deps.Taxonomy.CountActiveSubtypes(ctx, typeID)
	if err != nil {
		return nil, err
	}

	action := wizard.SetIncidentType{Type: wizard.Choice{ID: t.ID, Name: t.DisplayName(locale)}, ActiveSubtypes: count}
	return s.applyAndAdvance(sess, action, wizard.StepIncidentType)
}

func (s *WizardService) ListSubtypes(ctx context.Context, id uuid.UUID) ([]TaxonomyOption, error) {
	sess, err := s.deps.Sessions.Get(id)
	if err != nil {
		return nil, err
	}
	d := sess.Snapshot()
	if d.IncidentType == nil {
		return nil, apperror.Validation("тип не выбран", map[string]string{"incident_type": "wizard.errors.incident_type_required"})
	}
	return s.deps.Taxonomy.ListActiveSubtypes(ctx, d.IncidentType.ID, d.Locale)
}

func (s *WizardService) SelectSubtype(ctx context.Context, id, subtypeID uuid.UUID) (*WizardState, error) {
	sess, err := s.deps.Sessions.Get(id)
	if err != nil {
		return nil, err
	}
	d := sess.Snapshot()
	if d.IncidentType == nil {
		verr := apperror.Validation("тип не выбран", map[string]string{"incident_type": "wizard.errors.incident_type_required"})
		return s.state(id, d, verr), verr
	}

	st, err := s.deps.Taxonomy.ActiveSubtype(ctx, d.IncidentType.ID, subtypeID)
	if err != nil {
		return nil, err
	}
	action := wizard.SetIncidentSubtype{Subtype: wizard.Choice{ID: st.ID, Name: st.DisplayName(d.Locale)}, ParentID: st.TypeID}
	return s.applyAndAdvance(sess, action, wizard.StepIncidentSubtype)
}

func (s *WizardService) SetDescription(id uuid.UUID, text string) (*WizardState, error) {
	return s.dispatch(id, wizard.SetDescription{Text: text, MaxLength: s.deps.MaxDescriptionLength})
}

func (s *WizardService) SetContact(id uuid.UUID, r wizard.Reporter) (*WizardState, error) {
	return s.dispatch(id, wizard.SetReporter{Reporter: r})
}

func (s *WizardService) Advance(id uuid.UUID) (*WizardState, error) {
	return s.dispatch(id, wizard.Advance{})
}

func (s *WizardService) Back(id uuid.UUID) (*WizardState, error) {
	return s.dispatch(id, wizard.Back{})
}

func (s *WizardService) GoTo(id uuid.UUID, step wizard.Step) (*WizardState, error) {
	return s.dispatch(id, wizard.GoTo{Step: step})
}

// Submit отправляет черновик. Мьютекс сессии удерживается на время отправки,
// поэтому повторное нажатие в той же сессии ждёт и получает ошибку шага.
func (s *WizardService) Submit(ctx context.Context, id uuid.UUID) (*WizardState, *submission.Result, error) {
	sess, err := s.deps.Sessions.Get(id)
	if err != nil {
		return nil, nil, err
	}

	var result *submission.Result
	d, err := sess.Update(func(d *wizard.Draft) error {
		if d.Step != wizard.StepSummary {
			return apperror.New(apperror.ErrCodeInvalidStateOp, "отправка возможна только со сводки")
		}
		res, err := s.deps.Submitter.Execute(ctx, *d)
		if err != nil {
			return err
		}
		result = res
		return wizard.Apply(d, wizard.MarkSubmitted{ReportID: res.ReportID})
	})
	if err != nil {
		s.log.WithError(err).WithField("session_id", id).Warn("отправка сообщения не удалась")
		if apperror.IsPersistence(err) {
			err = stepError(err, "submit", "wizard.errors.submit_failed")
		}
		return s.state(id, d, err), nil, err
	}

	s.deps.Sessions.Delete(id)
	if s.deps.OnSubmitted != nil {
		s.deps.OnSubmitted(result.ReportID)
	}
	s.log.WithFields(logrus.Fields{"session_id": id, "report_id": result.ReportID}).Info("сообщение отправлено")
	return s.state(id, d, nil), result, nil
}

// Confirmation строит экран подтверждения для уже сохранённого сообщения.
func (s *WizardService) Confirmation(ctx context.Context, reportID uuid.UUID, locale valueobject.Locale) (*wizard.StepView, error) {
	if s.deps.Reports != nil {
		if _, err := s.deps.Reports.FindByID(ctx, reportID); err != nil {
			return nil, wrapLookup(err, "не удалось загрузить сообщение")
		}
	}
	d := wizard.NewDraft(locale)
	d.Step = wizard.StepConfirmation
	d.ReportID = &reportID
	view := wizard.Render(d, s.deps.Translator)
	return &view, nil
}

func (s *WizardService) dispatch(id uuid.UUID, a wizard.Action) (*WizardState, error) {
	sess, err := s.deps.Sessions.Get(id)
	if err != nil {
		return nil, err
	}
	return s.apply(sess, a)
}

func (s *WizardService) apply(sess *wizard.Session, a wizard.Action) (*WizardState, error) {
	d, err := sess.Dispatch(a)
	if err != nil {
		s.log.WithFields(logrus.Fields{"session_id": sess.ID, "action": wizard.ActionName(a)}).WithError(err).Debug("действие мастера отклонено")
	}
	return s.state(sess.ID, d, err), err
}

// applyAndAdvance применяет выбор и переходит дальше одной транзакцией черновика.
func (s *WizardService) applyAndAdvance(sess *wizard.Session, a wizard.Action, on wizard.Step) (*WizardState, error) {
	d, err := sess.Update(func(d *wizard.Draft) error {
		if err := wizard.Apply(d, a); err != nil {
			return err
		}
		if d.Step == on {
			return wizard.Apply(d, wizard.Advance{})
		}
		return nil
	})
	return s.state(sess.ID, d, err), err
}

func (s *WizardService) state(id uuid.UUID, d wizard.Draft, err error) *WizardState {
	view := wizard.Render(&d, s.deps.Translator)
	if errs := wizard.TranslateErrors(err, d.Locale, s.deps.Translator); errs != nil {
		view.Errors = errs
	}
	return &WizardState{SessionID: id, Locale: d.Locale, View: view, ReportID: d.ReportID}
}

func geocodingError(err error) error {
	if errors.Is(err, geocoding.ErrNotFound) {
		return apperror.Validation(err.Error(), map[string]string{"location": "wizard.errors.address_not_found"})
	}
	e := apperror.Wrap(err, apperror.ErrCodeUpstream, "геокодер недоступен")
	e.Fields = map[string]string{"location": "wizard.errors.location_unavailable"}
	return e
}

// stepError добавляет к ошибке без полей ключ перевода для шага.
func stepError(err error, field, key string) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		if len(appErr.Fields) > 0 {
			return err
		}
		wrapped := *appErr
		wrapped.Fields = map[string]string{field: key}
		return &wrapped
	}
	e := apperror.Wrap(err, apperror.ErrCodeInternal, err.Error())
	e.Fields = map[string]string{field: key}
	return e
}
