// Package config loads service configuration from an optional fuelsnap.yaml
// plus FUELSNAP_-prefixed environment variables, env winning.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Backend selection values.
const (
	BackendTesseract = "tesseract"
	BackendGemini    = "gemini"
)

// Config holds everything the server and debug CLI need.
type Config struct {
	ListenAddr string

	Backend       string
	TesseractLang string
	GeminiAPIKey  string
	GeminiModel   string

	OCRTimeout     time.Duration
	OCRRatePerSec  float64
	RetryAttempts  int
	RetryBaseDelay time.Duration

	TargetWidth  int
	ContrastGain float64
	JPEGQuality  int

	MaxPhotos     int
	MaxPhotoBytes int64
}

// Load reads configuration with sane defaults for a local Tesseract setup.
func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("listen_addr", ":8081")
	v.SetDefault("backend", BackendTesseract)
	v.SetDefault("tesseract_lang", "eng")
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("gemini_model", "gemini-2.5-flash")
	v.SetDefault("ocr_timeout", 30*time.Second)
	v.SetDefault("ocr_rate_per_sec", 2.0)
	v.SetDefault("retry_attempts", 3)
	v.SetDefault("retry_base_delay", time.Second)
	v.SetDefault("target_width", 2000)
	v.SetDefault("contrast_gain", 1.5)
	v.SetDefault("jpeg_quality", 95)
	v.SetDefault("max_photos", 4)
	v.SetDefault("max_photo_bytes", int64(10*1024*1024))

	v.SetEnvPrefix("FUELSNAP")
	v.AutomaticEnv()

	v.SetConfigName("fuelsnap")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		ListenAddr:     v.GetString("listen_addr"),
		Backend:        v.GetString("backend"),
		TesseractLang:  v.GetString("tesseract_lang"),
		GeminiAPIKey:   v.GetString("gemini_api_key"),
		GeminiModel:    v.GetString("gemini_model"),
		OCRTimeout:     v.GetDuration("ocr_timeout"),
		OCRRatePerSec:  v.GetFloat64("ocr_rate_per_sec"),
		RetryAttempts:  v.GetInt("retry_attempts"),
		RetryBaseDelay: v.GetDuration("retry_base_delay"),
		TargetWidth:    v.GetInt("target_width"),
		ContrastGain:   v.GetFloat64("contrast_gain"),
		JPEGQuality:    v.GetInt("jpeg_quality"),
		MaxPhotos:      v.GetInt("max_photos"),
		MaxPhotoBytes:  v.GetInt64("max_photo_bytes"),
	}

	switch cfg.Backend {
	case BackendTesseract:
	case BackendGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("backend %q requires FUELSNAP_GEMINI_API_KEY", cfg.Backend)
		}
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
	if cfg.OCRTimeout <= 0 || cfg.MaxPhotos < 1 || cfg.MaxPhotoBytes <= 0 {
		return nil, fmt.Errorf("invalid limits: timeout=%s photos=%d bytes=%d",
			cfg.OCRTimeout, cfg.MaxPhotos, cfg.MaxPhotoBytes)
	}
	return cfg, nil
}
