// imageprocessor.go - Image preprocessing for better vision-model accuracy

package processor

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// PreprocessMode defines the level of image preprocessing
type PreprocessMode int

const (
	// FastMode: light processing for quick name identification (speed priority)
	FastMode PreprocessMode = iota
	// HighQualityMode: aggressive processing for comprehensive extraction.
	// Pill imprints and fine package print need the extra sharpening.
	HighQualityMode
)

// preprocessImageWithMode processes image with specified quality mode
func preprocessImageWithMode(imagePath string, mode PreprocessMode) ([]byte, string, error) {
	img, err := imaging.Open(imagePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open image: %w", err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	maxDimension := 1500
	if mode == HighQualityMode {
		maxDimension = 2500
	}

	if width > maxDimension || height > maxDimension {
		if width > height {
			img = imaging.Resize(img, maxDimension, 0, imaging.Lanczos)
		} else {
			img = imaging.Resize(img, 0, maxDimension, imaging.Lanczos)
		}
	}

	switch mode {
	case FastMode:
		img = imaging.Sharpen(img, 1.5)
		img = imaging.AdjustContrast(img, 20)

	case HighQualityMode:
		// Color stays: pill color is an identification signal, so no
		// grayscale pass here unlike document OCR pipelines.
		img = imaging.Sharpen(img, 3.0)
		img = imaging.AdjustContrast(img, 35)
		img = imaging.AdjustBrightness(img, 10)
		img = imaging.AdjustGamma(img, 1.1)
		// Extra sharpening pass for embossed imprint codes
		img = imaging.Sharpen(img, 1.0)
	}

	var buf bytes.Buffer
	ext := strings.ToLower(filepath.Ext(imagePath))
	mimeType := "image/jpeg"
	quality := 90
	if mode == HighQualityMode {
		quality = 95
	}

	switch ext {
	case ".png":
		err = png.Encode(&buf, img)
		mimeType = "image/png"
	default:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	}

	if err != nil {
		return nil, "", fmt.Errorf("failed to encode processed image: %w", err)
	}

	return buf.Bytes(), mimeType, nil
}

// PreprocessImageQuick applies light processing for quick-mode analysis
func PreprocessImageQuick(imagePath string) ([]byte, string, error) {
	return preprocessImageWithMode(imagePath, FastMode)
}

// PreprocessImageHighQuality applies aggressive processing for
// comprehensive-mode analysis
func PreprocessImageHighQuality(imagePath string) ([]byte, string, error) {
	return preprocessImageWithMode(imagePath, HighQualityMode)
}

// ReadRawImage reads an image file without preprocessing and sniffs the MIME
// type from the extension. Used when preprocessing is disabled or fails.
func ReadRawImage(imagePath string) ([]byte, string, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file: %w", err)
	}

	mimeType := "image/jpeg"
	switch strings.ToLower(filepath.Ext(imagePath)) {
	case ".png":
		mimeType = "image/png"
	case ".gif":
		mimeType = "image/gif"
	case ".webp":
		mimeType = "image/webp"
	}

	return data, mimeType, nil
}
