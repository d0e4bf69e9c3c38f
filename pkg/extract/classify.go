package extract

import (
	"regexp"
	"strings"

	"github.com/arbovm/levenshtein"

	"fuelsnap/pkg/backend"
)

// Uploaded photos carry no role label; the classifier decides which OCR
// result is the pump reading and which is the odometer from lexical cues,
// with a parse-everything fallback when the cues are absent.

var (
	pumpKeywords     = []string{"gallon", "gal", "sale", "price"}
	odometerKeywords = []string{"odometer", "odo"}

	// A bare 5-6 digit run is itself an odometer indicator, independent of
	// any keyword.
	mileageRunRE = regexp.MustCompile(`\b\d{5,6}\b`)
)

// Classify assigns pump and odometer roles across one or more OCR results.
//
// Pass 1 runs the matching parser on every result that shows the role's
// lexical indicators; a parse counts only when its primary value (gallons or
// miles) is non-nil, and a later success overwrites an earlier one. A single
// result may legitimately feed both roles.
//
// Pass 2 runs only when pass 1 populated neither primary value: both parsers
// are tried against every result in input order, and each role independently
// takes the first result that parses for it.
func Classify(results []backend.OcrResult) (PumpData, OdometerData) {
	var pump PumpData
	var odometer OdometerData

	for _, r := range results {
		if hasPumpIndicator(r.Text) {
			if p := ParsePumpData(r); p.Gallons.Value != nil {
				pump = p
			}
		}
		if hasOdometerIndicator(r.Text) {
			if o := ParseOdometerData(r); o.Miles.Value != nil {
				odometer = o
			}
		}
	}

	if pump.Gallons.Value == nil && odometer.Miles.Value == nil {
		for _, r := range results {
			if pump.Gallons.Value == nil {
				if p := ParsePumpData(r); p.Gallons.Value != nil {
					pump = p
				}
			}
			if odometer.Miles.Value == nil {
				if o := ParseOdometerData(r); o.Miles.Value != nil {
					odometer = o
				}
			}
		}
	}

	return pump, odometer
}

func hasPumpIndicator(text string) bool {
	low := strings.ToLower(text)
	if strings.Contains(low, "$") {
		return true
	}
	for _, kw := range pumpKeywords {
		if strings.Contains(low, kw) {
			return true
		}
	}
	// OCR mangles keywords too ("GALL0NS", "5ALE"); a small edit distance
	// still counts. Additive only: it can add an indicator, never veto one.
	return fuzzyHasWord(low, "gallons", 1) || fuzzyHasWord(low, "sale", 1) ||
		fuzzyHasWord(low, "price", 1)
}

func hasOdometerIndicator(text string) bool {
	low := strings.ToLower(text)
	for _, kw := range odometerKeywords {
		if strings.Contains(low, kw) {
			return true
		}
	}
	if mileageRunRE.MatchString(low) {
		return true
	}
	return fuzzyHasWord(low, "odometer", 2)
}

// fuzzyHasWord reports whether any whitespace-delimited token of low sits
// within maxDist edits of keyword.
func fuzzyHasWord(low, keyword string, maxDist int) bool {
	for _, f := range strings.Fields(low) {
		tok := strings.Trim(f, ".,:;$#")
		if len(tok) < len(keyword)-maxDist || len(tok) > len(keyword)+maxDist {
			continue
		}
		if levenshtein.Distance(tok, keyword) <= maxDist {
			return true
		}
	}
	return false
}
