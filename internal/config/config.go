// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
)

// Text mask modes.
const (
	TextMaskOCR       = "ocr"
	TextMaskHeuristic = "heuristic" // edge-density label finder, no Tesseract
	TextMaskNone      = "none"
)

type Config struct {
	LogLevel      string
	TextMask      string
	OCRLanguage   string
	MetricsAddr   string
	DetectSymbols bool
}

// LoadFromEnv reads FLOORPLAN_* variables, applying defaults for unset ones.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		LogLevel:      strings.ToLower(getEnvOrDefault("FLOORPLAN_LOG_LEVEL", "info")),
		TextMask:      strings.ToLower(getEnvOrDefault("FLOORPLAN_TEXT_MASK", TextMaskOCR)),
		OCRLanguage:   getEnvOrDefault("FLOORPLAN_OCR_LANG", "eng"),
		MetricsAddr:   strings.TrimSpace(os.Getenv("FLOORPLAN_METRICS_ADDR")),
		DetectSymbols: true,
	}

	if v := os.Getenv("FLOORPLAN_DETECT_SYMBOLS"); v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("invalid FLOORPLAN_DETECT_SYMBOLS: %q", v)
		}
		cfg.DetectSymbols = b
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field for a usable value.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid FLOORPLAN_LOG_LEVEL: %q", c.LogLevel)
	}
	switch c.TextMask {
	case TextMaskOCR, TextMaskHeuristic, TextMaskNone:
	default:
		return fmt.Errorf("invalid FLOORPLAN_TEXT_MASK: %q (want %s, %s or %s)",
			c.TextMask, TextMaskOCR, TextMaskHeuristic, TextMaskNone)
	}
	if strings.TrimSpace(c.OCRLanguage) == "" {
		return fmt.Errorf("FLOORPLAN_OCR_LANG must not be empty")
	}
	if c.MetricsAddr != "" {
		if _, port, err := net.SplitHostPort(c.MetricsAddr); err != nil || port == "" {
			return fmt.Errorf("invalid FLOORPLAN_METRICS_ADDR: %q", c.MetricsAddr)
		}
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}
