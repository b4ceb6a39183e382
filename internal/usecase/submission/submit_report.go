// Package submission превращает завершённый черновик в сохранённое сообщение.
package submission

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/entity"
	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/repository"
	"github.com/Studio-Zurich/fix-app-sub000/internal/logger"
	"github.com/Studio-Zurich/fix-app-sub000/internal/mail"
	"github.com/Studio-Zurich/fix-app-sub000/internal/notification"
	"github.com/Studio-Zurich/fix-app-sub000/internal/pkg/apperror"
	"github.com/Studio-Zurich/fix-app-sub000/internal/storage"
	"github.com/Studio-Zurich/fix-app-sub000/internal/wizard"
)

// EventReportCreated уходит администраторам после сохранения сообщения.
const EventReportCreated = "report.created"

const defaultMaxAttempts = 3

type OutcomeStatus string

const (
	OutcomeSuccess         OutcomeStatus = "success"
	OutcomeFailedRetryable OutcomeStatus = "failed_retryable"
	OutcomeFailedPermanent OutcomeStatus = "failed_permanent"
)

// Адресаты побочных эффектов.
const (
	TargetImage    = "image"
	TargetInternal = "internal_email"
	TargetReporter = "reporter_email"
)

// Outcome: итог одного побочного эффекта отправки.
type Outcome struct {
	Kind     apperror.Kind
	Target   string
	Status   OutcomeStatus
	Attempts int
	Err      error
}

type Result struct {
	ReportID uuid.UUID
	Outcomes []Outcome
}

// Outcome возвращает итог по адресату.
func (r *Result) Outcome(target string) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Target == target {
			return o, true
		}
	}
	return Outcome{}, false
}

type Composer interface {
	Internal(s notification.ReportSummary) (mail.Message, error)
	Reporter(s notification.ReportSummary) (mail.Message, error)
}

// Publisher рассылает события подключённым администраторам.
type Publisher interface {
	Broadcast(event string, data any) error
}

// SleepFunc ждёт d или отмены контекста.
type SleepFunc func(ctx context.Context, d time.Duration) error

type SubmitReportUseCase struct {
	reports      repository.ReportRepository
	files        storage.ObjectStorage
	mailer       mail.Sender
	composer     Composer
	publisher    Publisher
	sleep        SleepFunc
	maxAttempts  int
	sendInternal bool
	log          *logrus.Entry
}

type Options struct {
	// SendInternal отключается, когда не настроены внутренние адресаты.
	SendInternal bool
	MaxAttempts  int
	Sleep        SleepFunc
	Publisher    Publisher
}

func NewSubmitReportUseCase(
	reports repository.ReportRepository,
	files storage.ObjectStorage,
	mailer mail.Sender,
	composer Composer,
	opts Options,
) *SubmitReportUseCase {
	uc := &SubmitReportUseCase{
		reports:      reports,
		files:        files,
		mailer:       mailer,
		composer:     composer,
		publisher:    opts.Publisher,
		sleep:        opts.Sleep,
		maxAttempts:  opts.MaxAttempts,
		sendInternal: opts.SendInternal,
		log:          logger.Component("submission"),
	}
	if uc.sleep == nil {
		uc.sleep = sleepContext
	}
	if uc.maxAttempts <= 0 {
		uc.maxAttempts = defaultMaxAttempts
	}
	return uc
}

// Execute проверяет черновик, сохраняет сообщение и выполняет побочные эффекты.
// Наружу возвращаются только ошибки валидации и сохранения: перенос файла
// и письма фиксируются в Result.Outcomes.
func (uc *SubmitReportUseCase) Execute(ctx context.Context, d wizard.Draft) (*Result, error) {
	if err := wizard.HandlerFor(wizard.StepSummary).Validate(&d); err != nil {
		return nil, err
	}

	report, err := entity.NewReport(paramsFromDraft(d))
	if err != nil {
		return nil, err
	}

	if err := uc.reports.Create(ctx, report); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить сообщение")
	}

	log := uc.log.WithField("report_id", report.ID)
	log.Info("сообщение сохранено")

	// Побочные эффекты не должны обрываться, если клиент ушёл.
	bg := context.WithoutCancel(ctx)
	summary := summaryFromDraft(report.ID, d)

	var (
		mu       sync.Mutex
		outcomes []Outcome
	)
	record := func(o Outcome) {
		mu.Lock()
		outcomes = append(outcomes, o)
		mu.Unlock()
	}

	var g errgroup.Group
	if d.Image != nil {
		img := *d.Image
		g.Go(func() error {
			record(uc.relocate(bg, report.ID, img))
			return nil
		})
	}
	if uc.sendInternal {
		g.Go(func() error {
			record(uc.notify(bg, TargetInternal, func() (mail.Message, error) {
				return uc.composer.Internal(summary)
			}))
			return nil
		})
	}
	g.Go(func() error {
		record(uc.notify(bg, TargetReporter, func() (mail.Message, error) {
			return uc.composer.Reporter(summary)
		}))
		return nil
	})
	_ = g.Wait()

	for _, o := range outcomes {
		entry := log.WithFields(logrus.Fields{"target": o.Target, "attempts": o.Attempts, "status": o.Status})
		if o.Err != nil {
			entry.WithError(o.Err).Warn("побочный эффект отправки не выполнен")
		} else {
			entry.Debug("побочный эффект отправки выполнен")
		}
	}

	if uc.publisher != nil {
		event := map[string]any{
			"report_id":        report.ID,
			"incident_type_id": report.IncidentTypeID,
			"incident_type":    summary.TypeName,
			"address":          report.Address,
			"status":           report.Status,
			"created_at":       report.CreatedAt,
		}
		if err := uc.publisher.Broadcast(EventReportCreated, event); err != nil {
			log.WithError(err).Warn("не удалось разослать событие о новом сообщении")
		}
	}

	return &Result{ReportID: report.ID, Outcomes: outcomes}, nil
}

// relocate переносит фото из временного префикса в префикс сообщения.
func (uc *SubmitReportUseCase) relocate(ctx context.Context, reportID uuid.UUID, img wizard.DraftImage) Outcome {
	out := Outcome{Kind: apperror.KindRelocation, Target: TargetImage, Attempts: 1}
	fail := func(err error, message string) Outcome {
		out.Status = OutcomeFailedRetryable
		if errors.Is(err, storage.ErrNotFound) {
			out.Status = OutcomeFailedPermanent
		}
		out.Err = apperror.Wrap(err, apperror.ErrCodeRelocation, message)
		return out
	}

	dst := storage.ReportPath(reportID, storage.BaseName(img.TemporaryReference))
	if err := uc.files.Copy(ctx, img.TemporaryReference, dst); err != nil {
		return fail(err, "не удалось перенести фото")
	}

	var previewPath *string
	if img.PreviewReference != "" {
		p := storage.ReportPath(reportID, storage.BaseName(img.PreviewReference))
		if err := uc.files.Copy(ctx, img.PreviewReference, p); err != nil {
			return fail(err, "не удалось перенести превью")
		}
		previewPath = &p
	}

	row := &entity.ReportImage{
		ID:          uuid.New(),
		ReportID:    reportID,
		FilePath:    dst,
		PreviewPath: previewPath,
		ContentType: img.ContentType,
		CreatedAt:   time.Now().UTC(),
	}
	if err := uc.reports.AddImage(ctx, row); err != nil {
		return fail(err, "не удалось сохранить запись о фото")
	}

	for _, p := range []string{img.TemporaryReference, img.PreviewReference} {
		if p == "" {
			continue
		}
		if err := uc.files.Delete(ctx, p); err != nil && !errors.Is(err, storage.ErrNotFound) {
			uc.log.WithError(err).WithField("path", p).Warn("временный файл не удалён")
		}
	}

	out.Status = OutcomeSuccess
	return out
}

// notify собирает письмо и отправляет его с повторами: 1с, 2с, ...
// Постоянная ошибка провайдера прекращает попытки.
func (uc *SubmitReportUseCase) notify(ctx context.Context, target string, compose func() (mail.Message, error)) Outcome {
	out := Outcome{Kind: apperror.KindNotification, Target: target}

	msg, err := compose()
	if err != nil {
		out.Status = OutcomeFailedPermanent
		out.Err = apperror.Wrap(err, apperror.ErrCodeNotification, "не удалось собрать письмо")
		return out
	}

	backoff := time.Second
	for attempt := 1; attempt <= uc.maxAttempts; attempt++ {
		out.Attempts = attempt
		err = uc.mailer.Send(ctx, msg)
		if err == nil {
			out.Status = OutcomeSuccess
			return out
		}
		if !mail.IsRetryable(err) {
			out.Status = OutcomeFailedPermanent
			break
		}
		out.Status = OutcomeFailedRetryable
		if attempt == uc.maxAttempts {
			break
		}
		uc.log.WithFields(logrus.Fields{"target": target, "attempt": attempt}).WithError(err).Debug("повтор отправки письма")
		if serr := uc.sleep(ctx, backoff); serr != nil {
			break
		}
		backoff *= 2
	}
	out.Err = apperror.Wrap(err, apperror.ErrCodeNotification, "не удалось отправить письмо")
	return out
}

func paramsFromDraft(d wizard.Draft) entity.NewReportParams {
	p := entity.NewReportParams{
		FirstName:   d.Reporter.FirstName,
		LastName:    d.Reporter.LastName,
		Email:       d.Reporter.Email,
		Phone:       d.Reporter.Phone,
		Description: d.Description,
		Locale:      d.Locale,
	}
	if d.IncidentType != nil {
		p.IncidentTypeID = d.IncidentType.ID
	}
	if d.HasSubtypeStep() && d.IncidentSubtype != nil {
		id := d.IncidentSubtype.ID
		p.IncidentSubtypeID = &id
	}
	if d.Location != nil {
		p.Latitude = d.Location.Latitude
		p.Longitude = d.Location.Longitude
		p.Address = d.Location.Address
	}
	return p
}

func summaryFromDraft(id uuid.UUID, d wizard.Draft) notification.ReportSummary {
	s := notification.ReportSummary{
		ReportID:      id,
		Description:   d.Description,
		ReporterName:  d.Reporter.FirstName + " " + d.Reporter.LastName,
		ReporterEmail: d.Reporter.Email,
		ReporterPhone: d.Reporter.Phone,
		Locale:        d.Locale,
	}
	if d.IncidentType != nil {
		s.TypeName = d.IncidentType.Name
	}
	if d.HasSubtypeStep() && d.IncidentSubtype != nil {
		s.SubtypeName = d.IncidentSubtype.Name
	}
	if d.Location != nil {
		s.Address = d.Location.Address
		s.Latitude = d.Location.Latitude
		s.Longitude = d.Location.Longitude
	}
	return s
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
