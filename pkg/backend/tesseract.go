package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// pumpWhitelist keeps Tesseract away from glyphs that never appear on pump
// or dashboard displays. The bar is deliberately allowed: LCD segment gaps
// are commonly recognized as '|' and the parser repairs them downstream.
const pumpWhitelist = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz$.,|/- "

// Tesseract runs OCR through a local Tesseract install via gosseract.
type Tesseract struct {
	language string
}

// NewTesseract returns a local OCR backend. language defaults to "eng".
func NewTesseract(language string) *Tesseract {
	if language == "" {
		language = "eng"
	}
	return &Tesseract{language: language}
}

// Recognize performs a single OCR pass over the preprocessed JPEG buffer.
// A fresh gosseract client is created per call; the native API is not safe
// for concurrent use of one client.
func (t *Tesseract) Recognize(ctx context.Context, jpegData []byte) (OcrResult, error) {
	if len(jpegData) == 0 {
		return OcrResult{}, ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return OcrResult{}, ErrTimeout
	}

	client := gosseract.NewClient()
	defer client.Close()
	_ = client.SetLanguage(t.language)
	_ = client.SetWhitelist(pumpWhitelist)
	_ = client.SetPageSegMode(gosseract.PSM_SPARSE_TEXT)
	if err := client.SetImageFromBytes(jpegData); err != nil {
		return OcrResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	text, err := client.Text()
	if err != nil {
		return OcrResult{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	res := OcrResult{Text: text}
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		// Confidence detail is optional: fall back to unscored lines so the
		// parser still gets the backend's segmentation.
		for _, ln := range strings.Split(text, "\n") {
			if s := strings.TrimSpace(ln); s != "" {
				res.Lines = append(res.Lines, OcrLine{Text: s})
			}
		}
		return res, nil
	}
	for _, b := range boxes {
		word := strings.TrimSpace(b.Word)
		if word == "" {
			continue
		}
		res.Lines = append(res.Lines, OcrLine{Text: word, Confidence: b.Confidence})
	}
	return res, nil
}

// Close implements Backend. The per-call clients are already closed.
func (t *Tesseract) Close() error { return nil }
