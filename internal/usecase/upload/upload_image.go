// Package upload принимает фото мастера во временное хранилище.
package upload

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/valueobject"
	"github.com/Studio-Zurich/fix-app-sub000/internal/geocoding"
	"github.com/Studio-Zurich/fix-app-sub000/internal/imaging"
	"github.com/Studio-Zurich/fix-app-sub000/internal/logger"
	"github.com/Studio-Zurich/fix-app-sub000/internal/pkg/apperror"
	"github.com/Studio-Zurich/fix-app-sub000/internal/storage"
	"github.com/Studio-Zurich/fix-app-sub000/internal/wizard"
)

// ReverseGeocoder подбирает адрес для координат из EXIF.
type ReverseGeocoder interface {
	Reverse(ctx context.Context, lat, lng float64, locale valueobject.Locale) (geocoding.Place, error)
}

type UploadImageInput struct {
	Filename string
	Content  io.Reader
	Locale   valueobject.Locale
}

type UploadImageUseCase struct {
	files    storage.ObjectStorage
	geocoder ReverseGeocoder
	maxBytes int64
	log      *logrus.Entry
}

func NewUploadImageUseCase(files storage.ObjectStorage, geocoder ReverseGeocoder, maxUploadMB int64) *UploadImageUseCase {
	return &UploadImageUseCase{
		files:    files,
		geocoder: geocoder,
		maxBytes: maxUploadMB * 1024 * 1024,
		log:      logger.Component("upload"),
	}
}

// Execute проверяет файл, кладёт оригинал и превью в temp/ и возвращает
// ссылку для черновика. Координаты из EXIF предлагаются как кандидат места.
func (uc *UploadImageUseCase) Execute(ctx context.Context, in UploadImageInput) (*wizard.DraftImage, error) {
	data, err := io.ReadAll(io.LimitReader(in.Content, uc.maxBytes+1))
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeBadRequest, "не удалось прочитать файл")
	}
	if int64(len(data)) > uc.maxBytes {
		return nil, apperror.Validation("файл слишком большой", map[string]string{"image": "wizard.errors.upload_too_large"})
	}

	analysis, err := imaging.Analyze(data, in.Filename)
	if err != nil {
		return nil, apperror.Validation(err.Error(), map[string]string{"image": "wizard.errors.upload_invalid"})
	}

	base := uuid.NewString()
	img := &wizard.DraftImage{
		TemporaryReference: storage.TempPath(base + analysis.Format.Extension()),
		ContentType:        analysis.Format.MIME,
	}
	if err := uc.files.Upload(ctx, img.TemporaryReference, bytes.NewReader(data), int64(len(data)), img.ContentType); err != nil {
		return nil, uploadError(err)
	}

	if analysis.Preview != nil {
		previewPath := storage.TempPath(base + "_preview.jpg")
		err := uc.files.Upload(ctx, previewPath, bytes.NewReader(analysis.Preview), int64(len(analysis.Preview)), "image/jpeg")
		if err != nil {
			uc.log.WithError(err).Warn("превью не сохранено")
		} else {
			img.PreviewReference = previewPath
		}
	}
	if img.PreviewReference != "" {
		img.PreviewURL = uc.files.PublicURL(img.PreviewReference)
	} else {
		img.PreviewURL = uc.files.PublicURL(img.TemporaryReference)
	}

	if analysis.GPS != nil {
		img.Suggested = uc.suggest(ctx, *analysis.GPS, in.Locale)
	}

	uc.log.WithFields(logrus.Fields{
		"path":    img.TemporaryReference,
		"type":    img.ContentType,
		"has_gps": img.Suggested != nil,
	}).Debug("фото загружено")
	return img, nil
}

// suggest дополняет координаты адресом; сбой геокодера не мешает загрузке.
func (uc *UploadImageUseCase) suggest(ctx context.Context, c valueobject.Coordinates, locale valueobject.Locale) *wizard.Location {
	loc := &wizard.Location{Latitude: c.Latitude, Longitude: c.Longitude}
	if uc.geocoder == nil {
		return loc
	}
	place, err := uc.geocoder.Reverse(ctx, c.Latitude, c.Longitude, locale)
	if err != nil {
		uc.log.WithError(err).Debug("адрес для координат фото не найден")
		return loc
	}
	loc.Address = strings.TrimSpace(place.DisplayName)
	return loc
}

func uploadError(err error) error {
	if errors.Is(err, storage.ErrTooLarge) {
		return apperror.Validation("файл слишком большой", map[string]string{"image": "wizard.errors.upload_too_large"})
	}
	return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сохранить файл")
}
