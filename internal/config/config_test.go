package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"FLOORPLAN_LOG_LEVEL", "FLOORPLAN_TEXT_MASK", "FLOORPLAN_OCR_LANG",
		"FLOORPLAN_METRICS_ADDR", "FLOORPLAN_DETECT_SYMBOLS",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, TextMaskOCR, cfg.TextMask)
	assert.Equal(t, "eng", cfg.OCRLanguage)
	assert.Empty(t, cfg.MetricsAddr)
	assert.True(t, cfg.DetectSymbols)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("FLOORPLAN_LOG_LEVEL", "DEBUG")
	t.Setenv("FLOORPLAN_TEXT_MASK", "none")
	t.Setenv("FLOORPLAN_OCR_LANG", "deu")
	t.Setenv("FLOORPLAN_METRICS_ADDR", ":9100")
	t.Setenv("FLOORPLAN_DETECT_SYMBOLS", "false")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, TextMaskNone, cfg.TextMask)
	assert.Equal(t, "deu", cfg.OCRLanguage)
	assert.Equal(t, ":9100", cfg.MetricsAddr)
	assert.False(t, cfg.DetectSymbols)
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"FLOORPLAN_LOG_LEVEL", "chatty"},
		{"FLOORPLAN_TEXT_MASK", "magic"},
		{"FLOORPLAN_METRICS_ADDR", "not-an-address"},
		{"FLOORPLAN_DETECT_SYMBOLS", "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			_, err := LoadFromEnv()
			assert.Error(t, err)
		})
	}
}

func TestLoadFromEnv_HeuristicTextMask(t *testing.T) {
	clearEnv(t)
	t.Setenv("FLOORPLAN_TEXT_MASK", "Heuristic")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, TextMaskHeuristic, cfg.TextMask)
}
