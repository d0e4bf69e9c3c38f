package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuelsnap/pkg/backend"
)

func TestClassifyTwoPhotos(t *testing.T) {
	pump, odo := Classify([]backend.OcrResult{
		{Text: "GALLONS\n9.811\nSALE $35.51"},
		{Text: "168237"},
	})

	require.NotNil(t, pump.Gallons.Value)
	assert.Equal(t, 9.811, *pump.Gallons.Value)
	require.NotNil(t, pump.Total.Value)
	assert.Equal(t, 35.51, *pump.Total.Value)

	// The bare 5-6 digit run is itself an odometer indicator: no "odometer"
	// keyword needed.
	require.NotNil(t, odo.Miles.Value)
	assert.Equal(t, int64(168237), *odo.Miles.Value)
}

func TestClassifySinglePhotoBothRoles(t *testing.T) {
	// One combined photo may legitimately feed both roles.
	pump, odo := Classify([]backend.OcrResult{
		{Text: "GALLONS 9.811 SALE $35.51\nODO 168237"},
	})
	require.NotNil(t, pump.Gallons.Value)
	require.NotNil(t, odo.Miles.Value)
	assert.Equal(t, int64(168237), *odo.Miles.Value)
}

func TestClassifySinglePhotoOneRole(t *testing.T) {
	// One pump photo, no odometer shot: valid result with miles left null,
	// signaling the missing reading instead of erroring.
	pump, odo := Classify([]backend.OcrResult{
		{Text: "GALLONS\n9.811\nSALE $35.51"},
	})
	require.NotNil(t, pump.Gallons.Value)
	assert.Nil(t, odo.Miles.Value)
}

func TestClassifyLaterSuccessOverwrites(t *testing.T) {
	pump, _ := Classify([]backend.OcrResult{
		{Text: "GALLONS 5.000 SALE $20.00"},
		{Text: "GALLONS 9.811 SALE $35.51"},
	})
	require.NotNil(t, pump.Gallons.Value)
	assert.Equal(t, 9.811, *pump.Gallons.Value)
}

func TestClassifyFallbackWithoutIndicators(t *testing.T) {
	// No keywords, no dollar sign, no 5-6 digit run: the lexical pass finds
	// nothing, so both parsers run against everything.
	pump, odo := Classify([]backend.OcrResult{
		{Text: "9.811"},
	})
	require.NotNil(t, pump.Gallons.Value)
	assert.Equal(t, 9.811, *pump.Gallons.Value)
	assert.Nil(t, odo.Miles.Value)
}

func TestClassifyEmptyInput(t *testing.T) {
	pump, odo := Classify(nil)
	assert.Nil(t, pump.Gallons.Value)
	assert.Nil(t, odo.Miles.Value)
}

func TestPumpIndicatorFuzzyKeyword(t *testing.T) {
	// OCR-mangled "GALLONS" still counts as a pump cue.
	assert.True(t, hasPumpIndicator("GALL0NS 9.811"))
	assert.True(t, hasPumpIndicator("SALE 35.51"))
	assert.False(t, hasPumpIndicator("PLEASE PAY INSIDE"))
}

func TestOdometerIndicatorVariants(t *testing.T) {
	assert.True(t, hasOdometerIndicator("ODOMETER 168237"))
	assert.True(t, hasOdometerIndicator("od0meter reading"))
	assert.True(t, hasOdometerIndicator("168237"))
	assert.False(t, hasOdometerIndicator("TRIP 41.2"))
}
