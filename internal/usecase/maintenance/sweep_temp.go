// Package maintenance содержит служебные операции над хранилищем, запускаемые из reportctl.
package maintenance

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Studio-Zurich/fix-app-sub000/internal/logger"
	"github.com/Studio-Zurich/fix-app-sub000/internal/storage"
)

const deleteConcurrency = 4

// ErrYoungerThanDraftTTL: порог удаления короче жизни черновика, файлы живых черновиков пострадали бы.
var ErrYoungerThanDraftTTL = errors.New("maintenance: порог меньше времени жизни черновика")

type SweepTempInput struct {
	OlderThan time.Duration
	// MinAge: время жизни черновика; удаление с меньшим OlderThan запрещено.
	MinAge time.Duration
	// Delete выключен: только отчёт о найденных файлах.
	Delete bool
}

type SweepTempResult struct {
	Stale   []storage.Object
	Deleted int
}

// SweepTempUseCase находит загрузки брошенных черновиков во временном префиксе.
type SweepTempUseCase struct {
	files storage.ObjectStorage
	now   func() time.Time
}

func NewSweepTempUseCase(files storage.ObjectStorage) *SweepTempUseCase {
	return &SweepTempUseCase{files: files, now: time.Now}
}

func (uc *SweepTempUseCase) Execute(ctx context.Context, in SweepTempInput) (*SweepTempResult, error) {
	if in.OlderThan <= 0 {
		return nil, fmt.Errorf("maintenance: возраст должен быть положительным, получено %s", in.OlderThan)
	}
	if in.Delete && in.OlderThan < in.MinAge {
		return nil, fmt.Errorf("%w: %s < %s", ErrYoungerThanDraftTTL, in.OlderThan, in.MinAge)
	}

	objects, err := uc.files.List(ctx, storage.TempPrefix)
	if err != nil {
		return nil, fmt.Errorf("maintenance: не удалось получить временные файлы: %w", err)
	}

	cutoff := uc.now().Add(-in.OlderThan)
	result := &SweepTempResult{}
	for _, obj := range objects {
		if obj.ModTime.Before(cutoff) {
			result.Stale = append(result.Stale, obj)
		}
	}
	if !in.Delete || len(result.Stale) == 0 {
		return result, nil
	}

	log := logger.Component("maintenance")
	var deleted atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(deleteConcurrency)
	for _, obj := range result.Stale {
		g.Go(func() error {
			if err := uc.files.Delete(gctx, obj.Path); err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					return nil
				}
				return fmt.Errorf("maintenance: не удалось удалить %s: %w", obj.Path, err)
			}
			deleted.Add(1)
			log.WithField("path", obj.Path).Debug("временный файл удалён")
			return nil
		})
	}
	err = g.Wait()
	result.Deleted = int(deleted.Load())
	if err != nil {
		return result, err
	}
	return result, nil
}
