// Package storage описывает объектное хранилище файлов сообщений.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Префиксы ключей: загрузки мастера живут во временном префиксе,
// после отправки файлы переносятся в префикс сообщения.
const TempPrefix = "temp/"

var (
	ErrNotFound    = errors.New("storage: объект не найден")
	ErrTooLarge    = errors.New("storage: размер файла превышает лимит")
	ErrInvalidPath = errors.New("storage: некорректный путь")
)

type Object struct {
	Path    string
	Size    int64
	ModTime time.Time
}

type ObjectStorage interface {
	Upload(ctx context.Context, objectPath string, r io.Reader, size int64, contentType string) error
	Copy(ctx context.Context, srcPath, dstPath string) error
	List(ctx context.Context, prefix string) ([]Object, error)
	PublicURL(objectPath string) string
	Delete(ctx context.Context, objectPath string) error
}

// TempPath возвращает ключ во временном префиксе.
func TempPath(name string) string {
	return TempPrefix + SanitizeFilename(name)
}

// ReportPath возвращает постоянный ключ файла сообщения.
func ReportPath(reportID uuid.UUID, name string) string {
	return reportID.String() + "/" + SanitizeFilename(name)
}

// ReportPrefix: префикс всех файлов сообщения.
func ReportPrefix(reportID uuid.UUID) string {
	return reportID.String() + "/"
}

// BaseName возвращает имя файла из ключа.
func BaseName(objectPath string) string {
	return path.Base(objectPath)
}

// CleanPath нормализует ключ и запрещает выход за корень хранилища.
func CleanPath(objectPath string) (string, error) {
	p := strings.TrimSpace(strings.ReplaceAll(objectPath, "\\", "/"))
	if p == "" || strings.HasPrefix(p, "/") {
		return "", ErrInvalidPath
	}
	for _, part := range strings.Split(p, "/") {
		if part == ".." {
			return "", ErrInvalidPath
		}
	}
	cleaned := path.Clean(p)
	if cleaned == "." {
		return "", ErrInvalidPath
	}
	return cleaned, nil
}

// SanitizeFilename удаляет потенциально опасные символы.
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "")
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" || name == "." || name == "/" {
		name = "file"
	}
	return name
}
