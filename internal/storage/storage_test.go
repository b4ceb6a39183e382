package storage

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanPath(t *testing.T) {
	p, err := CleanPath("temp/./a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "temp/a.jpg", p)

	for _, bad := range []string{"", "/etc/passwd", "temp/../../x", "..", "."} {
		_, err := CleanPath(bad)
		assert.ErrorIs(t, err, ErrInvalidPath, bad)
	}
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "passwd", SanitizeFilename("../../etc/passwd"))
	assert.Equal(t, "Foto_vom_M_rz.jpg", SanitizeFilename("Foto vom März.jpg"))
	assert.Equal(t, "file", SanitizeFilename(""))
}

func TestReportPath(t *testing.T) {
	id := uuid.MustParse("0b0c5f4e-8d4c-4f7e-9a53-2d7f5b0b2e11")
	assert.Equal(t, "0b0c5f4e-8d4c-4f7e-9a53-2d7f5b0b2e11/a.jpg", ReportPath(id, "a.jpg"))
	assert.Equal(t, "temp/a.jpg", TempPath("a.jpg"))
}

func TestLocalStorage_UploadCopyListDelete(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir(), "/media/", 1)
	require.NoError(t, err)

	require.NoError(t, s.Upload(ctx, "temp/a.jpg", strings.NewReader("jpeg-bytes"), 10, "image/jpeg"))
	require.NoError(t, s.Copy(ctx, "temp/a.jpg", "r1/a.jpg"))

	objs, err := s.List(ctx, "r1/")
	require.NoError(t, err)
	require.Len(t, objs, 1)
	assert.Equal(t, "r1/a.jpg", objs[0].Path)
	assert.Equal(t, int64(10), objs[0].Size)
	assert.Equal(t, "/media/r1/a.jpg", s.PublicURL(objs[0].Path))

	require.NoError(t, s.Delete(ctx, "temp/a.jpg"))
	require.NoError(t, s.Delete(ctx, "temp/a.jpg"))
	objs, err = s.List(ctx, "temp/")
	require.NoError(t, err)
	assert.Empty(t, objs)
}

func TestLocalStorage_CopyMissingSource(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "/media", 1)
	require.NoError(t, err)

	err = s.Copy(context.Background(), "temp/missing.jpg", "r1/missing.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorage_RejectsOversizedUpload(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "/media", 1)
	require.NoError(t, err)

	big := bytes.Repeat([]byte{0xff}, 1024*1024+1)
	err = s.Upload(context.Background(), "temp/big.jpg", bytes.NewReader(big), int64(len(big)), "image/jpeg")
	assert.ErrorIs(t, err, ErrTooLarge)

	objs, err := s.List(context.Background(), "temp/")
	require.NoError(t, err)
	assert.Empty(t, objs)
}

func TestLocalStorage_ListMissingPrefix(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "/media", 1)
	require.NoError(t, err)

	objs, err := s.List(context.Background(), "nothing-here/")
	require.NoError(t, err)
	assert.Empty(t, objs)
}
