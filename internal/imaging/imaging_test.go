package imaging

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{200, 30, 30, 255})
		}
	}
	return img
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testImage(w, h), &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage(w, h)))
	return buf.Bytes()
}

func TestDetect(t *testing.T) {
	jpg := encodeJPEG(t, 10, 10)

	f, err := Detect(jpg, "IMG_0001.JPG")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", f.MIME)
	assert.Equal(t, ".jpg", f.Extension())

	_, err = Detect(jpg, "photo.png")
	assert.ErrorIs(t, err, ErrExtensionMismatch)

	_, err = Detect([]byte("%PDF-1.7 not an image"), "photo.jpg")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Detect(nil, "photo.jpg")
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestDetect_GIFIsRejected(t *testing.T) {
	gif := []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;")
	_, err := Detect(gif, "anim.gif")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestAnalyze_DownscalesPreview(t *testing.T) {
	a, err := Analyze(encodeJPEG(t, 2048, 1024), "big.jpeg")
	require.NoError(t, err)
	require.NotNil(t, a.Preview)
	assert.Nil(t, a.GPS)

	img, err := jpeg.Decode(bytes.NewReader(a.Preview))
	require.NoError(t, err)
	assert.Equal(t, MaxDimension, img.Bounds().Dx())
	assert.Equal(t, 512, img.Bounds().Dy())
}

func TestAnalyze_PNGPreviewNotUpscaled(t *testing.T) {
	a, err := Analyze(encodePNG(t, 100, 50), "shot.png")
	require.NoError(t, err)
	require.NotNil(t, a.Preview)

	img, err := jpeg.Decode(bytes.NewReader(a.Preview))
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())
}

func TestExtractGPS_NoEXIF(t *testing.T) {
	assert.Nil(t, ExtractGPS(encodeJPEG(t, 8, 8)))
	assert.Nil(t, ExtractGPS([]byte("garbage")))
}

// gpsSegment собирает APP1 с минимальным TIFF: IFD0 -> GPS IFD (N/E).
func gpsSegment(lat, lng float64) []byte {
	le := binary.LittleEndian
	buf := make([]byte, 128)
	copy(buf, "II")
	le.PutUint16(buf[2:], 42)
	le.PutUint32(buf[4:], 8)

	entry := func(off int, tag, typ uint16, count, value uint32) {
		le.PutUint16(buf[off:], tag)
		le.PutUint16(buf[off+2:], typ)
		le.PutUint32(buf[off+4:], count)
		le.PutUint32(buf[off+8:], value)
	}
	rational := func(off int, v float64) {
		le.PutUint32(buf[off:], uint32(math.Round(v*1e6)))
		le.PutUint32(buf[off+4:], 1e6)
		le.PutUint32(buf[off+12:], 1)
		le.PutUint32(buf[off+20:], 1)
	}

	le.PutUint16(buf[8:], 1)
	entry(10, 0x8825, 4, 1, 26)

	le.PutUint16(buf[26:], 4)
	entry(28, 0x0001, 2, 2, 0)
	copy(buf[36:], "N")
	entry(40, 0x0002, 5, 3, 80)
	entry(52, 0x0003, 2, 2, 0)
	copy(buf[60:], "E")
	entry(64, 0x0004, 5, 3, 104)

	rational(80, lat)
	rational(104, lng)

	payload := append([]byte("Exif\x00\x00"), buf...)
	seg := []byte{0xFF, 0xE1, 0, 0}
	binary.BigEndian.PutUint16(seg[2:], uint16(len(payload)+2))
	return append(seg, payload...)
}

func withGPS(jpg []byte, lat, lng float64) []byte {
	out := append([]byte{}, jpg[:2]...)
	out = append(out, gpsSegment(lat, lng)...)
	return append(out, jpg[2:]...)
}

func TestAnalyze_ExtractsGPS(t *testing.T) {
	data := withGPS(encodeJPEG(t, 64, 48), 47.1662, 8.5155)

	a, err := Analyze(data, "postplatz.jpg")
	require.NoError(t, err)
	require.NotNil(t, a.GPS)
	assert.InDelta(t, 47.1662, a.GPS.Latitude, 1e-6)
	assert.InDelta(t, 8.5155, a.GPS.Longitude, 1e-6)
	assert.NotNil(t, a.Preview)
}

func TestExtractGPS_IgnoresNullIsland(t *testing.T) {
	assert.Nil(t, ExtractGPS(withGPS(encodeJPEG(t, 8, 8), 0, 0)))
}

// pngHeaderOnly возвращает PNG с сигнатурой и IHDR заданного размера без данных.
func pngHeaderOnly(w, h uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // глубина
	ihdr[9] = 0 // оттенки серого

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	chunk := append([]byte("IHDR"), ihdr...)
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestPreview_RejectsHugeResolution(t *testing.T) {
	data := pngHeaderOnly(16000, 16000)

	f, err := Detect(data, "plan.png")
	require.NoError(t, err)

	_, err = Preview(data, f)
	assert.ErrorIs(t, err, ErrTooManyPixels)

	a, err := Analyze(data, "plan.png")
	require.NoError(t, err)
	assert.Nil(t, a.Preview)
	assert.Equal(t, "image/png", a.Format.MIME)
}
