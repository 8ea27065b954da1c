package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{200, 120, 40, 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solid(w, h)))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, solid(w, h), &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func TestProcessPNGBecomesJPEG(t *testing.T) {
	res, err := Process(bytes.NewReader(encodePNG(t, 64, 48)), 5<<20)
	require.NoError(t, err)

	assert.Equal(t, "image/jpeg", res.MIME)
	assert.Equal(t, ".jpg", res.Ext)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(res.Data))
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Width)
	assert.Equal(t, 48, cfg.Height)
}

func TestProcessDownscalesLargeImages(t *testing.T) {
	res, err := Process(bytes.NewReader(encodeJPEG(t, 2560, 1280)), 20<<20)
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(res.Data))
	require.NoError(t, err)
	assert.Equal(t, MaxDimension, cfg.Width)
	assert.Equal(t, MaxDimension/2, cfg.Height)
}

func TestProcessRejectsNonImages(t *testing.T) {
	_, err := Process(bytes.NewReader([]byte("hello, this is plain text")), 5<<20)
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestProcessRejectsOversizedUploads(t *testing.T) {
	data := encodePNG(t, 32, 32)
	_, err := Process(bytes.NewReader(data), int64(len(data)-1))
	assert.ErrorIs(t, err, ErrImageTooLarge)
}
