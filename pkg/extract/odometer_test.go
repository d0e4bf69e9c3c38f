package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuelsnap/pkg/backend"
)

func TestParseOdometerData(t *testing.T) {
	got := ParseOdometerData(backend.OcrResult{
		Text:  "168237",
		Lines: []backend.OcrLine{{Text: "168237", Confidence: 84}},
	})
	require.NotNil(t, got.Miles.Value)
	assert.Equal(t, int64(168237), *got.Miles.Value)
	assert.Equal(t, 84.0, got.Miles.Confidence)
}

func TestOdometerPicksLargestCandidate(t *testing.T) {
	// Trip meter, clock digits and the odometer all in frame.
	got := ParseOdometerData(backend.OcrResult{Text: "12345 99999 54321"})
	require.NotNil(t, got.Miles.Value)
	assert.Equal(t, int64(99999), *got.Miles.Value)
}

func TestOdometerSkipsDecimalIntegerPart(t *testing.T) {
	// 123456.7 is a trip reading, not the odometer.
	got := ParseOdometerData(backend.OcrResult{Text: "123456.7 88888"})
	require.NotNil(t, got.Miles.Value)
	assert.Equal(t, int64(88888), *got.Miles.Value)
}

func TestOdometerNoMatch(t *testing.T) {
	for _, text := range []string{"", "1234", "1234567", "SPEED 65"} {
		got := ParseOdometerData(backend.OcrResult{Text: text})
		assert.Nil(t, got.Miles.Value, "text %q", text)
		assert.Equal(t, 0.0, got.Miles.Confidence, "text %q", text)
	}
}

func TestOdometerIdempotent(t *testing.T) {
	ocr := backend.OcrResult{Text: "ODO 168237 TRIP 412.6"}
	assert.Equal(t, ParseOdometerData(ocr), ParseOdometerData(ocr))
}

func TestOdometerFallbackConfidence(t *testing.T) {
	got := ParseOdometerData(backend.OcrResult{Text: "168237"})
	require.NotNil(t, got.Miles.Value)
	assert.Equal(t, float64(fallbackConfidence), got.Miles.Confidence)
}
