package extract

import (
	"strings"

	"fuelsnap/pkg/backend"
)

// A match pulled only from the concatenated full text has no line of its
// own; that says nothing about reliability, so it gets a neutral default
// instead of 0.
const fallbackConfidence = 70

// lineConfidence returns the confidence of the first OCR line containing the
// matched substring. Lines are checked both raw and artifact-cleaned, since
// the match came out of cleaned text. A matched but unscored line (confidence
// 0, e.g. from a backend that does not score fragments) also falls back.
func lineConfidence(ocr backend.OcrResult, matched string) float64 {
	if matched == "" {
		return 0
	}
	for _, ln := range ocr.Lines {
		if strings.Contains(ln.Text, matched) {
			return scoreOrFallback(ln.Confidence)
		}
	}
	for _, ln := range ocr.Lines {
		if strings.Contains(CleanupArtifacts(ln.Text), matched) {
			return scoreOrFallback(ln.Confidence)
		}
	}
	return fallbackConfidence
}

func scoreOrFallback(conf float64) float64 {
	if conf <= 0 {
		return fallbackConfidence
	}
	return conf
}
