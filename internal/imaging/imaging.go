// Package imaging проверяет загруженные фото, достаёт GPS из EXIF и строит превью.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"

	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/valueobject"
)

// MaxDimension: максимальная сторона превью.
const MaxDimension = 1024

// JPEGQuality: качество JPEG для превью.
const JPEGQuality = 85

// MaxPreviewPixels: предел площади исходника, который декодируется для превью.
const MaxPreviewPixels = 40_000_000

// sniffBytes: сколько байт нужно filetype для определения формата.
const sniffBytes = 512

var (
	ErrEmpty             = errors.New("imaging: пустой файл")
	ErrUnsupportedFormat = errors.New("imaging: неподдерживаемый формат файла")
	ErrExtensionMismatch = errors.New("imaging: расширение не соответствует содержимому")
	ErrTooManyPixels     = errors.New("imaging: слишком большое разрешение для превью")
)

// Format: распознанный формат изображения.
type Format struct {
	Name       string
	MIME       string
	Extensions []string
	previewer  bool
}

var formats = map[string]Format{
	"jpg":  {Name: "jpeg", MIME: "image/jpeg", Extensions: []string{".jpg", ".jpeg"}, previewer: true},
	"png":  {Name: "png", MIME: "image/png", Extensions: []string{".png"}, previewer: true},
	"webp": {Name: "webp", MIME: "image/webp", Extensions: []string{".webp"}, previewer: true},
	"heif": {Name: "heic", MIME: "image/heic", Extensions: []string{".heic", ".heif"}},
}

// Extension возвращает каноническое расширение формата.
func (f Format) Extension() string {
	return f.Extensions[0]
}

// Analysis: результат разбора загруженного фото.
type Analysis struct {
	Format Format
	// GPS заполнен, если в EXIF есть корректные координаты.
	GPS *valueobject.Coordinates
	// Preview: JPEG не больше MaxDimension; nil, если формат не декодируется.
	Preview []byte
}

// Detect определяет формат по сигнатуре и сверяет его с расширением имени файла.
func Detect(data []byte, filename string) (Format, error) {
	if len(data) == 0 {
		return Format{}, ErrEmpty
	}

	head := data
	if len(head) > sniffBytes {
		head = head[:sniffBytes]
	}
	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return Format{}, ErrUnsupportedFormat
	}
	format, ok := formats[kind.Extension]
	if !ok {
		return Format{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, kind.MIME.Value)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range format.Extensions {
		if ext == allowed {
			return format, nil
		}
	}
	return Format{}, fmt.Errorf("%w: %s для %s", ErrExtensionMismatch, ext, format.MIME)
}

// Analyze проверяет файл, извлекает GPS и строит превью.
// Ошибки EXIF и превью не фатальны: фото остаётся пригодным без них.
func Analyze(data []byte, filename string) (*Analysis, error) {
	format, err := Detect(data, filename)
	if err != nil {
		return nil, err
	}

	a := &Analysis{Format: format}
	a.GPS = ExtractGPS(data)
	if format.previewer {
		if preview, err := Preview(data, format); err == nil {
			a.Preview = preview
		}
	}
	return a, nil
}

// ExtractGPS возвращает координаты из EXIF или nil.
func ExtractGPS(data []byte) *valueobject.Coordinates {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	lat, lng, err := x.LatLong()
	if err != nil {
		return nil
	}
	// Камеры без фикса пишут нули.
	if lat == 0 && lng == 0 {
		return nil
	}
	coords, err := valueobject.NewCoordinates(lat, lng)
	if err != nil {
		return nil
	}
	return &coords
}

// Preview декодирует изображение, уменьшает и кодирует в JPEG.
func Preview(data []byte, format Format) ([]byte, error) {
	cfg, err := decodeConfig(data, format)
	if err != nil {
		return nil, fmt.Errorf("imaging: не удалось прочитать заголовок %s: %w", format.Name, err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPreviewPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooManyPixels, cfg.Width, cfg.Height)
	}

	img, err := decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("imaging: не удалось декодировать %s: %w", format.Name, err)
	}

	img = downscale(img, MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("imaging: не удалось закодировать JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeConfig(data []byte, format Format) (image.Config, error) {
	r := bytes.NewReader(data)
	switch format.Name {
	case "jpeg":
		return jpeg.DecodeConfig(r)
	case "png":
		return png.DecodeConfig(r)
	case "webp":
		return webp.DecodeConfig(r)
	default:
		return image.Config{}, ErrUnsupportedFormat
	}
}

func decode(data []byte, format Format) (image.Image, error) {
	r := bytes.NewReader(data)
	switch format.Name {
	case "jpeg":
		return jpeg.Decode(r)
	case "png":
		return png.Decode(r)
	case "webp":
		return webp.Decode(r)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// downscale уменьшает изображение так, чтобы стороны не превышали maxDim.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	newW, newH := maxDim, maxDim
	if w > h {
		newH = max(1, int(float64(h)*float64(maxDim)/float64(w)))
	} else {
		newW = max(1, int(float64(w)*float64(maxDim)/float64(h)))
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
