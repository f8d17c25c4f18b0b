// handlers.go - HTTP handlers for the identification endpoints

package api

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/snapmed/medicine_id_gemini/configs"
	"github.com/snapmed/medicine_id_gemini/internal/ai"
	"github.com/snapmed/medicine_id_gemini/internal/pipeline"
	"github.com/snapmed/medicine_id_gemini/internal/processor"
)

// allowedExtensions for uploaded photos
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// Handler serves the identification endpoints over one pipeline service
type Handler struct {
	Pipeline *pipeline.Service
}

func NewHandler(svc *pipeline.Service) *Handler {
	return &Handler{Pipeline: svc}
}

// QuickIdentifyHandler handles POST /api/v1/identify/quick.
// Accepts multipart "images" and returns the fast name-only analysis the
// user confirms before the full pipeline runs.
func (h *Handler) QuickIdentifyHandler(c *gin.Context) {
	files, ok := h.uploadedImages(c)
	if !ok {
		return
	}

	images, cleanup, err := h.prepareImages(files, processor.PreprocessImageQuick)
	defer cleanup()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to process uploaded images",
			"details": err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Minute)
	defer cancel()

	c.JSON(http.StatusOK, h.Pipeline.IdentifyQuick(ctx, images))
}

// ComprehensiveIdentifyHandler handles POST /api/v1/identify.
// Requires the user-verified medicine name alongside the images; the full
// aggregation run is anchored on that name.
func (h *Handler) ComprehensiveIdentifyHandler(c *gin.Context) {
	verifiedName := strings.TrimSpace(c.PostForm("verified_name"))
	if verifiedName == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "verified_name form field is required",
		})
		return
	}

	files, ok := h.uploadedImages(c)
	if !ok {
		return
	}

	images, cleanup, err := h.prepareImages(files, processor.PreprocessImageHighQuality)
	defer cleanup()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to process uploaded images",
			"details": err.Error(),
		})
		return
	}

	// Aggregation fans out to several external sources; give the run room
	ctx, cancel := context.WithTimeout(c.Request.Context(), 4*time.Minute)
	defer cancel()

	c.JSON(http.StatusOK, h.Pipeline.IdentifyComprehensive(ctx, images, verifiedName))
}

// uploadedImages extracts and validates the multipart image set. Writes the
// 400 response itself when validation fails.
func (h *Handler) uploadedImages(c *gin.Context) ([]*multipart.FileHeader, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":    "Invalid multipart form",
			"details":  err.Error(),
			"expected": "multipart form with one or more files under \"images\"",
		})
		return nil, false
	}

	files := form.File["images"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "At least one image is required under the \"images\" field",
		})
		return nil, false
	}

	maxImages := configs.MAX_IMAGES_PER_REQUEST
	if maxImages <= 0 {
		maxImages = 6
	}
	if len(files) > maxImages {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Too many images: %d (maximum %d)", len(files), maxImages),
		})
		return nil, false
	}

	maxSizeMB := configs.MAX_IMAGE_SIZE_MB
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	maxBytes := int64(maxSizeMB) << 20

	for i, f := range files {
		ext := strings.ToLower(filepath.Ext(f.Filename))
		if !allowedExtensions[ext] {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":       fmt.Sprintf("Unsupported file type %q in images[%d]", ext, i),
				"allowed":     []string{".jpg", ".jpeg", ".png", ".webp"},
				"image_index": i,
			})
			return nil, false
		}
		if f.Size > maxBytes {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":       fmt.Sprintf("images[%d] exceeds the %d MB size limit", i, maxSizeMB),
				"image_index": i,
			})
			return nil, false
		}
	}

	return files, true
}

// prepareImages saves the uploads, runs preprocessing and returns the model
// inputs. Preprocessing failure falls back to the raw bytes rather than
// rejecting the request. The returned cleanup removes the temp files.
func (h *Handler) prepareImages(files []*multipart.FileHeader, preprocess func(string) ([]byte, string, error)) ([]ai.ImageInput, func(), error) {
	var saved []string
	cleanup := func() {
		for _, path := range saved {
			os.Remove(path)
		}
	}

	var images []ai.ImageInput
	for _, f := range files {
		ext := strings.ToLower(filepath.Ext(f.Filename))
		path := filepath.Join(configs.UPLOAD_DIR, uuid.New().String()+ext)

		if err := saveUploadedFile(f, path); err != nil {
			return nil, cleanup, fmt.Errorf("saving upload %q: %w", f.Filename, err)
		}
		saved = append(saved, path)

		var data []byte
		var mimeType string
		var err error
		if configs.ENABLE_IMAGE_PREPROCESSING {
			data, mimeType, err = preprocess(path)
		}
		if !configs.ENABLE_IMAGE_PREPROCESSING || err != nil {
			data, mimeType, err = processor.ReadRawImage(path)
			if err != nil {
				return nil, cleanup, fmt.Errorf("reading upload %q: %w", f.Filename, err)
			}
		}

		images = append(images, ai.ImageInput{Data: data, MIMEType: mimeType})
	}

	return images, cleanup, nil
}

// saveUploadedFile mirrors gin's SaveUploadedFile without needing the context
func saveUploadedFile(f *multipart.FileHeader, dst string) error {
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}
