package common

import (
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Recognizer RecognizerConfig
	Preprocess PreprocessConfig
	Extraction ExtractionConfig
}

// RecognizerConfig holds settings for the external text-recognition engine.
type RecognizerConfig struct {
	Tesseract   string // binary name or absolute path; if empty -> "tesseract"
	Language    string // default "eng"
	TessdataDir string
	PSM         int // e.g., 6 is good for uniform block of text
	OEM         int // 1 = LSTM; leave 0 to use default
}

// PreprocessConfig holds image preprocessing settings.
type PreprocessConfig struct {
	ContrastFactor float64 // default 1.5
	TempDir        string  // "" -> os.TempDir()
}

// ExtractionConfig collects every tuning constant of the extraction engine
// in one place so behavior is tunable and independently testable.
type ExtractionConfig struct {
	// Confidence bands. Keyword-anchored hits land in [0.90, 0.95],
	// fallbacks in [0.60, 0.70).
	AmountKeywordSameLine float32
	AmountKeywordNearby   float32
	DateKeywordConfidence float32
	TimeConfidence        float32
	FallbackConfidence    float32

	// Combined date+time confidence factors.
	DateOnlyFactor float32
	TimeOnlyFactor float32

	// Line-distance weights for keyword-anchored amount search: same line,
	// +1 line, +2 lines.
	ProximityWeights [3]float64

	// Amount bounds after normalization.
	MinAmount float64
	MaxAmount float64

	// Enhanced mode removes exclusion-keyword lines from the amount
	// candidate pool and validates merchants against the database.
	Enhanced bool

	// Merchant fuzzy-match thresholds.
	ValidationThreshold float64
	SuggestionThreshold float64

	// How many leading lines the merchant extractor inspects.
	MerchantHeaderLines int

	// Date fallback window: candidates older than this many years (or after
	// "now") are excluded.
	DateWindowYears int

	// Below this recognition quality the orchestrator retries with rotated
	// preprocessing passes.
	RetryQualityThreshold float32
}

// DefaultExtractionConfig returns the tuned defaults.
func DefaultExtractionConfig() ExtractionConfig {
	return ExtractionConfig{
		AmountKeywordSameLine: 0.95,
		AmountKeywordNearby:   0.90,
		DateKeywordConfidence: 0.90,
		TimeConfidence:        0.90,
		FallbackConfidence:    0.65,
		DateOnlyFactor:        0.8,
		TimeOnlyFactor:        0.5,
		ProximityWeights:      [3]float64{1.0, 0.8, 0.6},
		MinAmount:             0.01,
		MaxAmount:             999999.99,
		Enhanced:              true,
		ValidationThreshold:   0.7,
		SuggestionThreshold:   0.6,
		MerchantHeaderLines:   10,
		DateWindowYears:       1,
		RetryQualityThreshold: 0.45,
	}
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	ext := DefaultExtractionConfig()
	ext.Enhanced = getEnvAsBool("EXTRACT_ENHANCED", ext.Enhanced)
	ext.ValidationThreshold = getEnvAsFloat("MERCHANT_VALIDATION_THRESHOLD", ext.ValidationThreshold)
	ext.SuggestionThreshold = getEnvAsFloat("MERCHANT_SUGGESTION_THRESHOLD", ext.SuggestionThreshold)
	ext.DateWindowYears = getEnvAsInt("DATE_WINDOW_YEARS", ext.DateWindowYears)

	return &Config{
		Recognizer: RecognizerConfig{
			Tesseract:   getEnv("TESSERACT_BIN", "tesseract"),
			Language:    getEnv("TESSERACT_LANG", "eng"),
			TessdataDir: getEnv("TESSDATA_PREFIX", ""),
			PSM:         getEnvAsInt("TESSERACT_PSM", 0),
			OEM:         getEnvAsInt("TESSERACT_OEM", 0),
		},
		Preprocess: PreprocessConfig{
			ContrastFactor: getEnvAsFloat("PREP_CONTRAST", 1.5),
			TempDir:        getEnv("PREP_TEMP_DIR", ""),
		},
		Extraction: ext,
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
