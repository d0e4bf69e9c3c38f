package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"fuelsnap/pkg/backend"
)

// Plausible bounds for a single consumer fill-up. Values outside are almost
// certainly a different field (an odometer reading, a clock).
const (
	gallonsMin = 1.0
	gallonsMax = 25.0
	totalMin   = 10.0
	totalMax   = 500.0
)

var (
	// Gas-pump gallons displays always show exactly 3 decimals.
	gallonsRE = regexp.MustCompile(`\b\d{1,2}\.\d{3}\b`)

	// Sale totals: 1-3 integer digits, exactly 2 decimals, optional $.
	totalRE = regexp.MustCompile(`\$?[ ]?\b\d{1,3}\.\d{2}\b`)

	digitRunRE = regexp.MustCompile(`\d+`)
)

// insertionRule reconstructs a decimal reading from a bare digit run whose
// decimal point the OCR dropped. Positions are tried left to right; the
// first candidate inside [min,max] wins.
type insertionRule struct {
	minDigits, maxDigits int
	positions            []int
	min, max             float64
	// threeDecimal additionally requires digit count == position+3, i.e.
	// the reconstruction is consistent with a 3-decimal display.
	threeDecimal bool
}

var (
	gallonsReconstruct = insertionRule{
		minDigits: 4, maxDigits: 5,
		positions:    []int{1, 2},
		min:          gallonsMin,
		max:          gallonsMax,
		threeDecimal: true,
	}
	totalReconstruct = insertionRule{
		minDigits: 4, maxDigits: 4,
		positions: []int{2, 3},
		min:       totalMin,
		max:       totalMax,
	}
)

// apply scans the tokens in order and returns the reconstructed value plus
// the token it consumed. Tokens equal to skip are never considered.
func (r insertionRule) apply(tokens []string, skip string) (float64, string, bool) {
	for _, tok := range tokens {
		if tok == skip {
			continue
		}
		if len(tok) < r.minDigits || len(tok) > r.maxDigits {
			continue
		}
		for _, pos := range r.positions {
			if pos >= len(tok) {
				continue
			}
			if r.threeDecimal && len(tok) != pos+3 {
				continue
			}
			v, err := strconv.ParseFloat(tok[:pos]+"."+tok[pos:], 64)
			if err != nil {
				continue
			}
			if v >= r.min && v <= r.max {
				return v, tok, true
			}
		}
	}
	return 0, "", false
}

// ParsePumpData parses raw OCR text into the three pump sale fields.
// Deterministic given identical input; non-matches are nil fields.
func ParsePumpData(ocr backend.OcrResult) PumpData {
	cleaned := CleanupArtifacts(ocr.Text)

	var out PumpData
	consumed := ""

	// Gallons: direct 3-decimal match first, reconstruction second.
	if m := gallonsRE.FindString(cleaned); m != "" {
		if v, err := strconv.ParseFloat(m, 64); err == nil {
			out.Gallons = NewField(v, lineConfidence(ocr, m))
		}
	}
	if out.Gallons.Value == nil {
		if v, tok, ok := gallonsReconstruct.apply(standaloneIntTokens(cleaned), ""); ok {
			consumed = tok
			out.Gallons = NewField(v, lineConfidence(ocr, tok))
		}
	}

	// Total: first 2-decimal candidate inside the plausible fill-up range.
	for _, m := range totalRE.FindAllString(cleaned, -1) {
		num := strings.TrimSpace(strings.TrimPrefix(m, "$"))
		v, err := strconv.ParseFloat(num, 64)
		if err != nil || v < totalMin || v > totalMax {
			continue
		}
		out.Total = NewField(v, lineConfidence(ocr, num))
		break
	}
	if out.Total.Value == nil {
		if v, tok, ok := totalReconstruct.apply(standaloneIntTokens(cleaned), consumed); ok {
			out.Total = NewField(v, lineConfidence(ocr, tok))
		}
	}

	// Price per gallon is never pattern-matched (pump price fonts OCR too
	// poorly); it is derived when the other two fields are known. The
	// derived confidence propagates the weaker source signal.
	if out.Gallons.Value != nil && out.Total.Value != nil && *out.Gallons.Value > 0 {
		price := *out.Total.Value / *out.Gallons.Value
		conf := math.Min(out.Total.Confidence, out.Gallons.Confidence)
		out.PricePerGallon = NewField(price, conf)
	}

	return out
}

// standaloneIntTokens returns maximal digit runs that are not part of a
// decimal number (neither the integer part of "9811.2" nor the fraction of
// ".9811").
func standaloneIntTokens(text string) []string {
	var out []string
	for _, loc := range digitRunRE.FindAllStringIndex(text, -1) {
		if loc[0] > 0 && text[loc[0]-1] == '.' {
			continue
		}
		if loc[1]+1 < len(text) && text[loc[1]] == '.' && isDigit(text[loc[1]+1]) {
			continue
		}
		out = append(out, text[loc[0]:loc[1]])
	}
	return out
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
