package maintenance

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Studio-Zurich/fix-app-sub000/internal/storage"
)

func seedFile(t *testing.T, files *storage.LocalStorage, objectPath string, modTime time.Time) {
	t.Helper()
	require.NoError(t, files.Upload(context.Background(), objectPath, strings.NewReader("x"), 1, "image/jpeg"))
	require.NoError(t, os.Chtimes(filepath.Join(files.Root(), filepath.FromSlash(objectPath)), modTime, modTime))
}

func TestSweepTemp(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	files, err := storage.NewLocalStorage(t.TempDir(), "/media", 1)
	require.NoError(t, err)

	seedFile(t, files, "temp/old.jpg", now.Add(-48*time.Hour))
	seedFile(t, files, "temp/old_preview.jpg", now.Add(-48*time.Hour))
	seedFile(t, files, "temp/fresh.jpg", now.Add(-time.Hour))
	// файлы сообщений не трогаем
	seedFile(t, files, "8b0e3c1e-7a39-4d6b-9c55-0d2f6f1a4e10/photo.jpg", now.Add(-72*time.Hour))

	uc := NewSweepTempUseCase(files)
	uc.now = func() time.Time { return now }

	t.Run("dry run reports only", func(t *testing.T) {
		res, err := uc.Execute(context.Background(), SweepTempInput{OlderThan: 24 * time.Hour})
		require.NoError(t, err)
		require.Len(t, res.Stale, 2)
		assert.Equal(t, "temp/old.jpg", res.Stale[0].Path)
		assert.Zero(t, res.Deleted)

		left, err := files.List(context.Background(), storage.TempPrefix)
		require.NoError(t, err)
		assert.Len(t, left, 3)
	})

	t.Run("delete removes stale files", func(t *testing.T) {
		res, err := uc.Execute(context.Background(), SweepTempInput{OlderThan: 24 * time.Hour, Delete: true})
		require.NoError(t, err)
		assert.Equal(t, 2, res.Deleted)

		left, err := files.List(context.Background(), storage.TempPrefix)
		require.NoError(t, err)
		require.Len(t, left, 1)
		assert.Equal(t, "temp/fresh.jpg", left[0].Path)

		kept, err := files.List(context.Background(), "8b0e3c1e-7a39-4d6b-9c55-0d2f6f1a4e10/")
		require.NoError(t, err)
		assert.Len(t, kept, 1)
	})
}

func TestSweepTemp_DeleteRefusesAgeBelowDraftTTL(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	files, err := storage.NewLocalStorage(t.TempDir(), "/media", 1)
	require.NoError(t, err)
	seedFile(t, files, "temp/live.jpg", now.Add(-90*time.Minute))

	uc := NewSweepTempUseCase(files)
	uc.now = func() time.Time { return now }

	_, err = uc.Execute(context.Background(), SweepTempInput{OlderThan: time.Hour, MinAge: 2 * time.Hour, Delete: true})
	assert.ErrorIs(t, err, ErrYoungerThanDraftTTL)

	left, err := files.List(context.Background(), storage.TempPrefix)
	require.NoError(t, err)
	assert.Len(t, left, 1)

	res, err := uc.Execute(context.Background(), SweepTempInput{OlderThan: time.Hour, MinAge: 2 * time.Hour})
	require.NoError(t, err)
	assert.Len(t, res.Stale, 1)
}

func TestSweepTemp_RejectsNonPositiveAge(t *testing.T) {
	files, err := storage.NewLocalStorage(t.TempDir(), "/media", 1)
	require.NoError(t, err)

	_, err = NewSweepTempUseCase(files).Execute(context.Background(), SweepTempInput{})
	assert.Error(t, err)
}
