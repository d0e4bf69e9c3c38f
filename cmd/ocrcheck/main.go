// ocrcheck runs the extraction pipeline over local image files and prints
// the JSON result. Useful for tuning preprocessing and parser heuristics
// against real pump and dashboard photos.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"fuelsnap/internal/config"
	"fuelsnap/pkg/backend"
	"fuelsnap/pkg/pipeline"
	"fuelsnap/pkg/preprocess"
)

func main() {
	backendName := flag.String("backend", "", "ocr backend: tesseract or gemini (default from config)")
	rawText := flag.Bool("raw", false, "also print the raw OCR text per photo")
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: ocrcheck [-backend tesseract|gemini] [-raw] photo.jpg [photo2.jpg ...]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if *backendName != "" {
		cfg.Backend = *backendName
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	ctx := context.Background()
	var inner backend.Backend
	switch cfg.Backend {
	case config.BackendGemini:
		inner, err = backend.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			fmt.Fprintln(os.Stderr, "gemini:", err)
			os.Exit(1)
		}
	default:
		inner = backend.NewTesseract(cfg.TesseractLang)
	}
	b := backend.NewThrottled(inner, cfg.OCRRatePerSec, backend.RetryPolicy{
		MaxAttempts: cfg.RetryAttempts,
		BaseDelay:   cfg.RetryBaseDelay,
	})

	popts := preprocess.Options{
		TargetWidth:  cfg.TargetWidth,
		ContrastGain: cfg.ContrastGain,
		JPEGQuality:  cfg.JPEGQuality,
	}

	if *rawText {
		for _, path := range flag.Args() {
			data, err := os.ReadFile(path)
			if err != nil {
				fmt.Fprintln(os.Stderr, path, err)
				continue
			}
			img, err := preprocess.Decode(data)
			if err != nil {
				fmt.Fprintln(os.Stderr, path, err)
				continue
			}
			buf, err := preprocess.Preprocess(img, popts)
			if err != nil {
				fmt.Fprintln(os.Stderr, path, err)
				continue
			}
			res, err := b.Recognize(ctx, buf)
			if err != nil {
				fmt.Fprintln(os.Stderr, path, err)
				continue
			}
			fmt.Printf("--- %s\n%s\n", path, res.Text)
			for _, ln := range res.Lines {
				fmt.Printf("  %5.1f  %s\n", ln.Confidence, ln.Text)
			}
		}
	}

	p := pipeline.New(b, logger, pipeline.Options{
		OCRTimeout: cfg.OCRTimeout,
		Preprocess: popts,
	})
	defer p.Close()

	photos := make([][]byte, 0, flag.NArg())
	for _, path := range flag.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, path, err)
			os.Exit(1)
		}
		photos = append(photos, data)
	}

	res, err := p.Extract(ctx, photos)
	if err != nil {
		fmt.Fprintln(os.Stderr, "extract:", err)
		os.Exit(1)
	}
	out, _ := json.MarshalIndent(res, "", "  ")
	fmt.Println(string(out))
}
