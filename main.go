package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fuelsnap/internal/config"
	"fuelsnap/pkg/backend"
	"fuelsnap/pkg/pipeline"
	"fuelsnap/pkg/preprocess"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	b, err := buildBackend(context.Background(), cfg)
	if err != nil {
		logger.Fatal("backend", zap.Error(err))
	}

	p := pipeline.New(b, logger, pipeline.Options{
		OCRTimeout: cfg.OCRTimeout,
		Preprocess: preprocess.Options{
			TargetWidth:  cfg.TargetWidth,
			ContrastGain: cfg.ContrastGain,
			JPEGQuality:  cfg.JPEGQuality,
		},
	})
	defer p.Close()

	s := &server{
		pipe:          p,
		logger:        logger,
		maxPhotos:     cfg.MaxPhotos,
		maxPhotoBytes: cfg.MaxPhotoBytes,
	}

	r := gin.Default()
	s.setupRoutes(r)

	logger.Info("listening", zap.String("addr", cfg.ListenAddr), zap.String("backend", cfg.Backend))
	if err := r.Run(cfg.ListenAddr); err != nil {
		logger.Fatal("server", zap.Error(err))
	}
}

// buildBackend constructs the configured OCR engine and wraps it with the
// client-side rate gate and rate-limit retry policy.
func buildBackend(ctx context.Context, cfg *config.Config) (backend.Backend, error) {
	var inner backend.Backend
	switch cfg.Backend {
	case config.BackendGemini:
		g, err := backend.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		inner = g
	default:
		inner = backend.NewTesseract(cfg.TesseractLang)
	}
	policy := backend.RetryPolicy{
		MaxAttempts: cfg.RetryAttempts,
		BaseDelay:   cfg.RetryBaseDelay,
	}
	return backend.NewThrottled(inner, cfg.OCRRatePerSec, policy), nil
}
