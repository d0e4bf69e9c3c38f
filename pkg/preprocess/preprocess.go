// Package preprocess turns a raw photograph into a form OCR engines read
// reliably: upscale, grayscale, contrast stretch, sharpen, JPEG encode.
// The transform is pure; identical input bytes yield identical output bytes.
package preprocess

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// ErrDecode is returned for input that no registered image format accepts.
var ErrDecode = errors.New("image decode failed")

// Options tune the transform. Zero values take the defaults below.
type Options struct {
	// TargetWidth is the upscale floor: images narrower than this are
	// resized to it (Lanczos), wider ones pass through. OCR engines lose
	// accuracy on small source text.
	TargetWidth int
	// ContrastGain is the linear stretch factor applied around midtone 128.
	// ~1.5 separates LCD glyph pixels from the backlit background well.
	ContrastGain float64
	// SharpenSigma drives the unsharp-style edge boost that crispens digit
	// boundaries after upscale-introduced blur.
	SharpenSigma float64
	// JPEGQuality bounds payload size while keeping recognition detail.
	JPEGQuality int
}

func (o Options) withDefaults() Options {
	if o.TargetWidth <= 0 {
		o.TargetWidth = 2000
	}
	if o.ContrastGain <= 0 {
		o.ContrastGain = 1.5
	}
	if o.SharpenSigma <= 0 {
		o.SharpenSigma = 1.0
	}
	if o.JPEGQuality <= 0 {
		o.JPEGQuality = 95
	}
	return o
}

// Decode parses an uploaded photo into an in-memory bitmap.
func Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, nil
}

// Preprocess applies the full transform chain and returns an encoded JPEG
// buffer ready for the OCR backend's transport.
func Preprocess(img image.Image, opts Options) ([]byte, error) {
	o := opts.withDefaults()

	if img.Bounds().Dx() < o.TargetWidth {
		img = imaging.Resize(img, o.TargetWidth, 0, imaging.Lanczos)
	}
	gray := imaging.Grayscale(img)
	gray = stretchContrast(gray, o.ContrastGain)
	gray = imaging.Sharpen(gray, o.SharpenSigma)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, gray, imaging.JPEG, imaging.JPEGQuality(o.JPEGQuality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// stretchContrast applies out = clamp(gain*(v-128)+128, 0, 255) per channel.
// The input is already grayscale, so all channels move together.
func stretchContrast(img *image.NRGBA, gain float64) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		v := clamp255(gain*(float64(c.R)-128) + 128)
		return color.NRGBA{R: v, G: v, B: v, A: c.A}
	})
}

func clamp255(f float64) uint8 {
	if f < 0 {
		return 0
	}
	if f > 255 {
		return 255
	}
	return uint8(f + 0.5)
}
