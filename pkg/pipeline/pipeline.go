// Package pipeline orchestrates one extraction request: decode and
// preprocess each photo, run OCR per photo concurrently, then classify the
// complete result set into pump and odometer readings.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"fuelsnap/pkg/backend"
	"fuelsnap/pkg/extract"
	"fuelsnap/pkg/preprocess"
)

// ErrNoPhotos is returned for an empty request.
var ErrNoPhotos = errors.New("no photos submitted")

// ErrNoResults is returned when every photo failed to decode or OCR; the
// caller should request clearer photos.
var ErrNoResults = errors.New("no photo produced an ocr result")

// Result is the validated field set for one request. Warnings record
// per-photo failures that did not abort the request.
type Result struct {
	Pump     extract.PumpData     `json:"pump"`
	Odometer extract.OdometerData `json:"odometer"`
	Warnings []string             `json:"warnings,omitempty"`
}

// Options bound per-call OCR behavior.
type Options struct {
	// OCRTimeout caps each backend call. Zero means 30s.
	OCRTimeout time.Duration
	// Preprocess tunes the image transform shared by all photos.
	Preprocess preprocess.Options
}

// Pipeline owns the backend handle for its lifetime; construct it in main,
// Close it on shutdown. No package-level state is involved, so concurrent
// requests against one Pipeline are independent.
type Pipeline struct {
	backend backend.Backend
	logger  *zap.Logger
	opts    Options
}

// New wires a pipeline to an OCR backend.
func New(b backend.Backend, logger *zap.Logger, opts Options) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.OCRTimeout <= 0 {
		opts.OCRTimeout = 30 * time.Second
	}
	return &Pipeline{backend: b, logger: logger, opts: opts}
}

// Close releases the backend handle.
func (p *Pipeline) Close() error { return p.backend.Close() }

// Extract runs the full pipeline over the uploaded photos. Per-photo
// failures (undecodable image, exhausted OCR retries) become warnings and
// leave that photo out of classification; only a fully failed set is an
// error. Classification is a single atomic step once every OCR call has
// settled.
func (p *Pipeline) Extract(ctx context.Context, photos [][]byte) (Result, error) {
	if len(photos) == 0 {
		return Result{}, ErrNoPhotos
	}

	type slot struct {
		res backend.OcrResult
		err error
	}
	slots := make([]slot, len(photos))

	var wg sync.WaitGroup
	for i, raw := range photos {
		wg.Add(1)
		go func(i int, raw []byte) {
			defer wg.Done()
			slots[i].res, slots[i].err = p.recognizeOne(ctx, raw)
		}(i, raw)
	}
	wg.Wait()

	var out Result
	results := make([]backend.OcrResult, 0, len(photos))
	for i, s := range slots {
		if s.err != nil {
			p.logger.Warn("photo failed",
				zap.Int("photo", i),
				zap.Error(s.err))
			out.Warnings = append(out.Warnings, fmt.Sprintf("photo %d: %v", i+1, s.err))
			continue
		}
		results = append(results, s.res)
	}
	if len(results) == 0 {
		return out, ErrNoResults
	}

	out.Pump, out.Odometer = extract.Classify(results)
	p.logger.Info("extraction complete",
		zap.Int("photos", len(photos)),
		zap.Int("recognized", len(results)),
		zap.Bool("has_gallons", out.Pump.Gallons.Value != nil),
		zap.Bool("has_total", out.Pump.Total.Value != nil),
		zap.Bool("has_miles", out.Odometer.Miles.Value != nil))
	return out, nil
}

// recognizeOne decodes, preprocesses and OCRs a single photo. The
// preprocessed buffer is computed once; rate-limit retries inside a
// throttled backend reuse it rather than recomputing the transform.
func (p *Pipeline) recognizeOne(ctx context.Context, raw []byte) (backend.OcrResult, error) {
	img, err := preprocess.Decode(raw)
	if err != nil {
		return backend.OcrResult{}, err
	}
	buf, err := preprocess.Preprocess(img, p.opts.Preprocess)
	if err != nil {
		return backend.OcrResult{}, err
	}

	callCtx, cancel := context.WithTimeout(ctx, p.opts.OCRTimeout)
	defer cancel()
	res, err := p.backend.Recognize(callCtx, buf)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return backend.OcrResult{}, backend.ErrTimeout
		}
		return backend.OcrResult{}, err
	}
	return res, nil
}
