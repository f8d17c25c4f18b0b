// imageprocessor_test.go - Preprocessing and raw-read tests

package processor

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestImage(t *testing.T, name string, width, height int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	var err error
	switch filepath.Ext(name) {
	case ".png":
		err = png.Encode(&buf, img)
	default:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	}
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func TestPreprocessImageQuickResizesLargeImages(t *testing.T) {
	path := writeTestImage(t, "big.jpg", 2000, 1000)

	data, mimeType, err := PreprocessImageQuick(path)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mimeType)

	decoded, _, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1500, decoded.Bounds().Dx(), "quick mode caps the long edge at 1500px")
}

func TestPreprocessImageHighQualityKeepsFormat(t *testing.T) {
	path := writeTestImage(t, "label.png", 300, 200)

	data, mimeType, err := PreprocessImageHighQuality(path)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)

	decoded, _, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	// small images are enhanced but not resized
	assert.Equal(t, 300, decoded.Bounds().Dx())
	assert.Equal(t, 200, decoded.Bounds().Dy())
}

func TestPreprocessImageOpenFailure(t *testing.T) {
	_, _, err := PreprocessImageQuick(filepath.Join(t.TempDir(), "missing.jpg"))
	assert.Error(t, err)
}

func TestReadRawImageSniffsMIME(t *testing.T) {
	path := writeTestImage(t, "photo.png", 10, 10)

	data, mimeType, err := ReadRawImage(path)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Equal(t, "image/png", mimeType)

	// extension-based sniffing, not content inspection
	webpPath := filepath.Join(t.TempDir(), "photo.webp")
	require.NoError(t, os.WriteFile(webpPath, []byte("RIFF"), 0644))
	_, mimeType, err = ReadRawImage(webpPath)
	require.NoError(t, err)
	assert.Equal(t, "image/webp", mimeType)
}
