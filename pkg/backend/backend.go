// Package backend defines the OCR backend adapter consumed by the extraction
// pipeline. A backend takes a preprocessed JPEG buffer and returns the raw
// recognized text plus the recognized fragments with per-line confidence.
package backend

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// OcrLine is one recognized text fragment. Confidence is 0-100; 0 means the
// backend did not score the fragment, not that it is worthless.
type OcrLine struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// OcrResult is the full output of one recognition call. Text may contain
// newlines; Lines preserve the backend's segmentation order.
type OcrResult struct {
	Text  string    `json:"text"`
	Lines []OcrLine `json:"lines"`
}

// Backend is the adapter interface for an external OCR engine.
type Backend interface {
	Recognize(ctx context.Context, jpegData []byte) (OcrResult, error)
	Close() error
}

// ErrUnavailable is returned when the OCR engine cannot be reached at all.
var ErrUnavailable = errors.New("ocr backend unavailable")

// ErrTimeout is returned when a recognition call exceeded its deadline.
var ErrTimeout = errors.New("ocr backend timed out")

// ErrInvalidInput is returned when the backend rejected the image payload.
var ErrInvalidInput = errors.New("ocr backend rejected input image")

// RateLimitedError signals that the backend throttled the call. RetryAfter
// is a hint; zero means the backend gave none.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("ocr backend rate limited, retry after %s", e.RetryAfter)
	}
	return "ocr backend rate limited"
}

// IsRateLimited reports whether err carries a rate-limit signal.
func IsRateLimited(err error) (*RateLimitedError, bool) {
	var rl *RateLimitedError
	if errors.As(err, &rl) {
		return rl, true
	}
	return nil, false
}
