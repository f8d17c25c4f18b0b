// factory.go - Vision provider factory

package ai

import (
	"fmt"
	"log"

	"github.com/snapmed/medicine_id_gemini/configs"
)

// CreateVisionProvider creates the configured vision provider.
// Gemini is the only backing today; the seam exists so another
// vision-capable model can drop in behind VisionProvider.
func CreateVisionProvider() (VisionProvider, error) {
	if configs.GEMINI_API_KEY == "" {
		return nil, fmt.Errorf("no vision provider configured (GEMINI_API_KEY is empty)")
	}

	log.Printf("🔵 Creating Gemini vision provider (quick: %s, full: %s)",
		configs.QUICK_MODEL_NAME, configs.FULL_MODEL_NAME)

	return NewGeminiProvider(configs.GEMINI_API_KEY, configs.QUICK_MODEL_NAME, configs.FULL_MODEL_NAME), nil
}
