// config.go - Configuration loaded from environment variables

package configs

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	// Gemini AI Configuration
	GEMINI_API_KEY string

	// Model selection per analysis mode.
	// Quick mode is latency-sensitive (the user is waiting to confirm a name),
	// comprehensive mode favors extraction quality.
	QUICK_MODEL_NAME string
	FULL_MODEL_NAME  string

	// Gemini Pricing Configuration (per 1M tokens in USD)
	GEMINI_INPUT_PRICE_PER_MILLION  float64
	GEMINI_OUTPUT_PRICE_PER_MILLION float64

	// Server Configuration
	PORT            string
	UPLOAD_DIR      string
	ALLOWED_ORIGINS string

	// MongoDB Configuration (optional - the fallback catalog degrades to
	// the static seed when no Mongo is configured)
	MONGO_URI     string
	MONGO_DB_NAME string

	// Image preprocessing settings
	ENABLE_IMAGE_PREPROCESSING bool
	MAX_IMAGE_DIMENSION        int

	// External source settings
	SOURCE_TIMEOUT_SECONDS int // per-adapter call timeout
	PRIMARY_TERM_LIMIT     int // terms queried in the primary identification phase
	SECONDARY_TERM_LIMIT   int // terms queried in subsequent phases

	// Adverse-event bucketing thresholds (report counts).
	// Heuristics, not a clinical classification - kept configurable so
	// deployments can tune them without a rebuild.
	ADVERSE_COMMON_THRESHOLD  int
	ADVERSE_SERIOUS_THRESHOLD int

	// Accuracy heuristic parameters. The score is a relative confidence
	// proxy, not a validated accuracy figure.
	ACCURACY_BASELINE           int
	ACCURACY_BONUS_THREE_SOURCE int
	ACCURACY_BONUS_FIVE_SOURCE  int
	ACCURACY_BONUS_AGREEMENT    int

	// Upload limits
	MAX_IMAGES_PER_REQUEST int
	MAX_IMAGE_SIZE_MB      int
)

// LoadConfig loads configuration from environment variables
func LoadConfig() {
	// Load .env file if exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Required: Gemini API Key
	GEMINI_API_KEY = getEnv("GEMINI_API_KEY", "")
	if GEMINI_API_KEY == "" {
		log.Fatal("GEMINI_API_KEY environment variable is required")
	}

	// Optional with defaults
	QUICK_MODEL_NAME = getEnv("QUICK_MODEL_NAME", "gemini-2.5-flash-lite")
	FULL_MODEL_NAME = getEnv("FULL_MODEL_NAME", "gemini-2.5-flash")

	GEMINI_INPUT_PRICE_PER_MILLION = getEnvFloat("GEMINI_INPUT_PRICE_PER_MILLION", 0.10)
	GEMINI_OUTPUT_PRICE_PER_MILLION = getEnvFloat("GEMINI_OUTPUT_PRICE_PER_MILLION", 0.40)

	PORT = getEnv("PORT", "8080")
	UPLOAD_DIR = getEnv("UPLOAD_DIR", "uploads")
	ALLOWED_ORIGINS = getEnv("ALLOWED_ORIGINS", "*")

	MONGO_URI = getEnv("MONGO_URI", "")
	MONGO_DB_NAME = getEnv("MONGO_DB_NAME", "snapmed")

	ENABLE_IMAGE_PREPROCESSING = getEnvBool("ENABLE_IMAGE_PREPROCESSING", true)
	MAX_IMAGE_DIMENSION = getEnvInt("MAX_IMAGE_DIMENSION", 2500)

	SOURCE_TIMEOUT_SECONDS = getEnvInt("SOURCE_TIMEOUT_SECONDS", 12)
	PRIMARY_TERM_LIMIT = getEnvInt("PRIMARY_TERM_LIMIT", 5)
	SECONDARY_TERM_LIMIT = getEnvInt("SECONDARY_TERM_LIMIT", 3)

	ADVERSE_COMMON_THRESHOLD = getEnvInt("ADVERSE_COMMON_THRESHOLD", 1000)
	ADVERSE_SERIOUS_THRESHOLD = getEnvInt("ADVERSE_SERIOUS_THRESHOLD", 100)

	ACCURACY_BASELINE = getEnvInt("ACCURACY_BASELINE", 85)
	ACCURACY_BONUS_THREE_SOURCE = getEnvInt("ACCURACY_BONUS_THREE_SOURCE", 10)
	ACCURACY_BONUS_FIVE_SOURCE = getEnvInt("ACCURACY_BONUS_FIVE_SOURCE", 5)
	ACCURACY_BONUS_AGREEMENT = getEnvInt("ACCURACY_BONUS_AGREEMENT", 10)

	MAX_IMAGES_PER_REQUEST = getEnvInt("MAX_IMAGES_PER_REQUEST", 6)
	MAX_IMAGE_SIZE_MB = getEnvInt("MAX_IMAGE_SIZE_MB", 10)

	log.Println("✓ Configuration loaded successfully")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
