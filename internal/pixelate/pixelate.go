package pixelate

import (
	"bytes"
	"fmt"
	"image"
	"math"

	_ "image/jpeg" // jpeg source decoding
	_ "image/png"  // png source decoding

	"golang.org/x/image/draw"
)

// Parameter domains
const (
	MinPixelSize = 0
	MaxPixelSize = 50

	MinBrightness = 0.5
	MaxBrightness = 2.0

	MinContrast = 0.5
	MaxContrast = 2.0

	MinShadowRadius = 0
	MaxShadowRadius = 30
)

// Params holds the numeric parameters for a render.
// The zero value is not useful, use DefaultParams as a starting point.
type Params struct {
	PixelSize    int     // Block edge length in source pixels, 0 disables pixelation
	Brightness   float64 // Multiplicative brightness
	Contrast     float64 // Multiplicative contrast, pivoting at mid-gray
	ShadowRadius int     // Drop-shadow blur radius in pixels, 0 disables the shadow
}

// DefaultParams returns the default render parameters
func DefaultParams() Params {
	return Params{
		PixelSize:  10,
		Brightness: 1.0,
		Contrast:   1.0,
	}
}

// Clamp returns a copy of the params with every field clamped to its domain
func (p Params) Clamp() Params {
	p.PixelSize = clampInt(p.PixelSize, MinPixelSize, MaxPixelSize)
	p.Brightness = clampFloat(p.Brightness, MinBrightness, MaxBrightness)
	p.Contrast = clampFloat(p.Contrast, MinContrast, MaxContrast)
	p.ShadowRadius = clampInt(p.ShadowRadius, MinShadowRadius, MaxShadowRadius)
	return p
}

// Source is an immutable, fully-decoded bitmap
type Source struct {
	img *image.NRGBA
}

// Decode decodes image data into a Source
func Decode(data []byte) (*Source, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("error decoding source image: %w", err)
	}

	return FromImage(img), nil
}

// FromImage creates a Source from a decoded image, copying the pixel data
func FromImage(img image.Image) *Source {
	bounds := img.Bounds()
	copied := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(copied, copied.Bounds(), img, bounds.Min, draw.Src)

	return &Source{
		img: copied,
	}
}

// Image returns the decoded bitmap. The caller must not modify it.
func (s *Source) Image() image.Image {
	return s.img
}

// Width returns the width of the source image
func (s *Source) Width() int {
	return s.img.Bounds().Dx()
}

// Height returns the height of the source image
func (s *Source) Height() int {
	return s.img.Bounds().Dy()
}

// Render derives a new bitmap from the source and the given parameters.
// The output always has the same dimensions as the source, and the source
// is never mutated. Identical inputs produce byte-identical output.
func Render(src *Source, p Params) *image.NRGBA {
	p = p.Clamp()

	width, height := src.Width(), src.Height()

	var out *image.NRGBA
	if p.PixelSize > 0 {
		// Reduce to one sample per block, then scale back up so every block
		// renders as a flat color. NearestNeighbor picks a single source
		// pixel per destination pixel in both directions, it never averages.
		blocksX := ceilDiv(width, p.PixelSize)
		blocksY := ceilDiv(height, p.PixelSize)

		small := image.NewNRGBA(image.Rect(0, 0, blocksX, blocksY))
		draw.NearestNeighbor.Scale(small, small.Bounds(), src.img, src.img.Bounds(), draw.Src, nil)

		out = image.NewNRGBA(image.Rect(0, 0, width, height))
		draw.NearestNeighbor.Scale(out, out.Bounds(), small, small.Bounds(), draw.Src, nil)
	} else {
		out = image.NewNRGBA(image.Rect(0, 0, width, height))
		copy(out.Pix, src.img.Pix)
	}

	applyColor(out, p.Contrast, p.Brightness)

	if p.ShadowRadius > 0 {
		out = compositeShadow(out, p.ShadowRadius)
	}

	return out
}

// applyColor applies the contrast and brightness transform to every pixel,
// in place. Contrast is applied before brightness, pivoting at mid-gray.
// Alpha is left untouched.
func applyColor(img *image.NRGBA, contrast, brightness float64) {
	if contrast == 1 && brightness == 1 {
		return
	}

	var lut [256]uint8
	for i := range lut {
		v := (contrast*(float64(i)/255-0.5) + 0.5) * brightness * 255
		lut[i] = uint8(math.Round(math.Min(255, math.Max(0, v))))
	}

	pix := img.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i] = lut[pix[i]]
		pix[i+1] = lut[pix[i+1]]
		pix[i+2] = lut[pix[i+2]]
	}
}

func ceilDiv(value, divisor int) int {
	return (value + divisor - 1) / divisor
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func clampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
