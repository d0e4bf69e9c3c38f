package pipeline

import (
	"bytes"
	"context"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuelsnap/pkg/backend"
)

// widthKeyedBackend maps the preprocessed image width to a scripted result,
// so concurrent OCR completion order cannot affect the test. Widths >= 2000
// pass through preprocessing unscaled.
type widthKeyedBackend struct {
	byWidth map[int]backend.OcrResult
	closed  bool
}

func (f *widthKeyedBackend) Recognize(ctx context.Context, jpegData []byte) (backend.OcrResult, error) {
	img, err := imaging.Decode(bytes.NewReader(jpegData))
	if err != nil {
		return backend.OcrResult{}, backend.ErrInvalidInput
	}
	res, ok := f.byWidth[img.Bounds().Dx()]
	if !ok {
		return backend.OcrResult{}, backend.ErrUnavailable
	}
	return res, nil
}

func (f *widthKeyedBackend) Close() error {
	f.closed = true
	return nil
}

func photoOfWidth(t *testing.T, w int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(w, 24, color.NRGBA{230, 230, 230, 255}), imaging.PNG))
	return buf.Bytes()
}

func TestExtractTwoPhotos(t *testing.T) {
	b := &widthKeyedBackend{byWidth: map[int]backend.OcrResult{
		2001: {Text: "GALLONS\n9.811\nSALE $35.51"},
		2002: {Text: "168237"},
	}}
	p := New(b, nil, Options{})

	res, err := p.Extract(context.Background(), [][]byte{
		photoOfWidth(t, 2001),
		photoOfWidth(t, 2002),
	})
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)

	require.NotNil(t, res.Pump.Gallons.Value)
	assert.Equal(t, 9.811, *res.Pump.Gallons.Value)
	require.NotNil(t, res.Pump.Total.Value)
	assert.Equal(t, 35.51, *res.Pump.Total.Value)
	require.NotNil(t, res.Odometer.Miles.Value)
	assert.Equal(t, int64(168237), *res.Odometer.Miles.Value)
}

func TestExtractBadPhotoBecomesWarning(t *testing.T) {
	b := &widthKeyedBackend{byWidth: map[int]backend.OcrResult{
		2001: {Text: "GALLONS 9.811 SALE $35.51"},
	}}
	p := New(b, nil, Options{})

	res, err := p.Extract(context.Background(), [][]byte{
		[]byte("definitely not an image"),
		photoOfWidth(t, 2001),
	})
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	require.NotNil(t, res.Pump.Gallons.Value)
	assert.Equal(t, 9.811, *res.Pump.Gallons.Value)
}

func TestExtractAllPhotosFailed(t *testing.T) {
	p := New(&widthKeyedBackend{}, nil, Options{})

	res, err := p.Extract(context.Background(), [][]byte{[]byte("junk")})
	assert.ErrorIs(t, err, ErrNoResults)
	assert.Len(t, res.Warnings, 1)
}

func TestExtractNoPhotos(t *testing.T) {
	p := New(&widthKeyedBackend{}, nil, Options{})
	_, err := p.Extract(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoPhotos)
}

func TestCloseReleasesBackend(t *testing.T) {
	b := &widthKeyedBackend{}
	p := New(b, nil, Options{})
	require.NoError(t, p.Close())
	assert.True(t, b.closed)
}
