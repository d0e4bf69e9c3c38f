// Package extract recovers structured pump and odometer readings from noisy
// OCR output. All parsers are pure functions of their OcrResult input:
// a failed match is a nil value with confidence 0, never an error.
package extract

// FieldValue is one extracted datum. Value is nil when extraction failed;
// Confidence is 0 for nil values, otherwise 0-100. A derived field carries
// the minimum of its source confidences.
type FieldValue[T any] struct {
	Value      *T      `json:"value"`
	Confidence float64 `json:"confidence"`
}

// NewField builds a populated FieldValue.
func NewField[T any](v T, confidence float64) FieldValue[T] {
	return FieldValue[T]{Value: &v, Confidence: confidence}
}

// PumpData holds the three sale readings from a fuel-pump display.
// Soft invariant: Total ≈ Gallons × PricePerGallon. The relation is used to
// fill a missing price, never to reject pattern-matched values.
type PumpData struct {
	Gallons        FieldValue[float64] `json:"gallons"`
	PricePerGallon FieldValue[float64] `json:"price_per_gallon"`
	Total          FieldValue[float64] `json:"total"`
}

// OdometerData holds the mileage reading from a dashboard photo.
type OdometerData struct {
	Miles FieldValue[int64] `json:"miles"`
}

// ConfidenceBand is a presentation-level classification of a numeric
// confidence. It is layered on top of extraction, which only ever deals in
// the raw 0-100 score.
type ConfidenceBand string

const (
	BandLow    ConfidenceBand = "low"
	BandMedium ConfidenceBand = "medium"
	BandHigh   ConfidenceBand = "high"
)

// Band maps a 0-100 confidence to its presentation band.
func Band(confidence float64) ConfidenceBand {
	switch {
	case confidence < 60:
		return BandLow
	case confidence < 80:
		return BandMedium
	default:
		return BandHigh
	}
}
