package extract

import (
	"regexp"
	"strings"
)

// LCD segment gaps come back from OCR as a vertical bar sitting where a
// digit belongs, typically splitting a 3-decimal gallons reading
// (true 9.811 read as "9.8 | 1" or "9.81 1"). The repairs below run in a
// fixed order: the GALLONS-context rule first, then the general shape
// repairs, then a blanket bar-to-one substitution.
var (
	// digit.digit(s) | digit — the bar is a misread '1'; splice the stray
	// trailing digit back onto the decimal run.
	barSplitRE = regexp.MustCompile(`(\d{1,2}\.\d{1,2})\s*\|\s*(\d)\b`)

	// digit.digit(s) digit — a decimal run split by whitespace only.
	spaceSplitRE = regexp.MustCompile(`(\d{1,2}\.\d{1,2})[ \t]+(\d)\b`)

	// "10. 19" — a 2-decimal number with the fraction drifted off the point.
	driftedFractionRE = regexp.MustCompile(`(\d{1,3})\.[ \t]+(\d{2})\b`)
)

// CleanupArtifacts normalizes known OCR display artifacts before any pattern
// matching. Deterministic; safe to apply to already-clean text.
func CleanupArtifacts(text string) string {
	// (a) context-aware repair inside the region following "GALLONS", where
	// split 3-decimal readings are near-certain.
	if idx := strings.Index(strings.ToLower(text), "gallons"); idx != -1 {
		head, tail := text[:idx], text[idx:]
		tail = barSplitRE.ReplaceAllString(tail, "${1}1${2}")
		tail = spaceSplitRE.ReplaceAllString(tail, "${1}${2}")
		text = head + tail
	}

	// (b) general-purpose shape repairs over the whole text.
	text = barSplitRE.ReplaceAllString(text, "${1}1${2}")
	text = spaceSplitRE.ReplaceAllString(text, "${1}${2}")
	text = driftedFractionRE.ReplaceAllString(text, "${1}.${2}")

	// (c) any bar still standing is the most common misread of '1'.
	return strings.ReplaceAll(text, "|", "1")
}
