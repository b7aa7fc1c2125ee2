package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultExtractionConfig(t *testing.T) {
	t.Parallel()
	cfg := DefaultExtractionConfig()

	// keyword band [0.90, 0.95], fallback band [0.60, 0.70)
	assert.Equal(t, float32(0.95), cfg.AmountKeywordSameLine)
	assert.Equal(t, float32(0.90), cfg.AmountKeywordNearby)
	assert.Equal(t, float32(0.90), cfg.DateKeywordConfidence)
	assert.Equal(t, float32(0.65), cfg.FallbackConfidence)

	assert.Equal(t, 0.01, cfg.MinAmount)
	assert.Equal(t, 999999.99, cfg.MaxAmount)
	assert.Equal(t, [3]float64{1.0, 0.8, 0.6}, cfg.ProximityWeights)
	assert.Equal(t, 10, cfg.MerchantHeaderLines)
	assert.True(t, cfg.Enhanced)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, "tesseract", cfg.Recognizer.Tesseract)
	assert.Equal(t, "eng", cfg.Recognizer.Language)
	assert.Equal(t, 1.5, cfg.Preprocess.ContrastFactor)
	assert.Equal(t, DefaultExtractionConfig(), cfg.Extraction)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("TESSERACT_BIN", "/opt/bin/tesseract")
	t.Setenv("TESSERACT_LANG", "deu")
	t.Setenv("TESSERACT_PSM", "6")
	t.Setenv("PREP_CONTRAST", "2.0")
	t.Setenv("EXTRACT_ENHANCED", "false")
	t.Setenv("MERCHANT_VALIDATION_THRESHOLD", "0.8")
	t.Setenv("DATE_WINDOW_YEARS", "2")

	cfg := LoadConfig()
	assert.Equal(t, "/opt/bin/tesseract", cfg.Recognizer.Tesseract)
	assert.Equal(t, "deu", cfg.Recognizer.Language)
	assert.Equal(t, 6, cfg.Recognizer.PSM)
	assert.Equal(t, 2.0, cfg.Preprocess.ContrastFactor)
	assert.False(t, cfg.Extraction.Enhanced)
	assert.Equal(t, 0.8, cfg.Extraction.ValidationThreshold)
	assert.Equal(t, 2, cfg.Extraction.DateWindowYears)
}

func TestLoadConfigIgnoresMalformedValues(t *testing.T) {
	t.Setenv("TESSERACT_PSM", "six")
	t.Setenv("PREP_CONTRAST", "very high")
	t.Setenv("EXTRACT_ENHANCED", "yep")

	cfg := LoadConfig()
	assert.Equal(t, 0, cfg.Recognizer.PSM)
	assert.Equal(t, 1.5, cfg.Preprocess.ContrastFactor)
	assert.True(t, cfg.Extraction.Enhanced)
}

func TestAppError(t *testing.T) {
	t.Parallel()

	err := NewAppError("PREP_DECODE", "open broken.png", ErrDecode)
	assert.Equal(t, "PREP_DECODE: open broken.png: image decode failed", err.Error())
	assert.True(t, errors.Is(err, ErrDecode))

	bare := NewAppError("X", "no cause", nil)
	assert.Equal(t, "X: no cause", bare.Error())
	require.NoError(t, bare.Unwrap())
}

func TestWrapError(t *testing.T) {
	t.Parallel()

	require.NoError(t, WrapError(nil, "ignored"))

	wrapped := WrapError(ErrResource, "create temp image")
	require.Error(t, wrapped)
	assert.True(t, errors.Is(wrapped, ErrResource))
	assert.Equal(t, "create temp image: resource exhausted", wrapped.Error())
}
