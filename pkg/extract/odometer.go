package extract

import (
	"regexp"
	"strconv"

	"fuelsnap/pkg/backend"
)

// Odometer readings on consumer vehicles sit in the 5-6 digit range.
var odometerRunRE = regexp.MustCompile(`\d+`)

// ParseOdometerData extracts a mileage reading from raw OCR text.
//
// Candidates are standalone 5-6 digit runs; a run immediately followed by a
// decimal point and digit is the integer part of some unrelated decimal and
// is skipped. The numerically largest candidate wins: dashboard photos also
// show trip meters, clocks and speed readouts, and the odometer is rarely
// the smallest plausible integer in frame.
func ParseOdometerData(ocr backend.OcrResult) OdometerData {
	text := ocr.Text
	var best *int64
	bestRaw := ""
	for _, loc := range odometerRunRE.FindAllStringIndex(text, -1) {
		tok := text[loc[0]:loc[1]]
		if len(tok) < 5 || len(tok) > 6 {
			continue
		}
		if loc[0] > 0 && text[loc[0]-1] == '.' {
			continue
		}
		if loc[1]+1 < len(text) && text[loc[1]] == '.' && isDigit(text[loc[1]+1]) {
			continue
		}
		v, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			continue
		}
		if best == nil || v > *best {
			best = &v
			bestRaw = tok
		}
	}
	if best == nil {
		return OdometerData{}
	}
	return OdometerData{Miles: NewField(*best, lineConfidence(ocr, bestRaw))}
}
