package pixelate

import (
	"image"
	"image/color"
	"image/draw"
)

// Shadow color, 60%-opaque black
const shadowAlpha = 153

// compositeShadow composites a blurred drop shadow of the image's alpha
// silhouette underneath the image. The output canvas keeps the source
// dimensions, so shadow bleeding past the edge is cropped.
// The silhouette is carried in an image.Alpha, DrawMask composites
// through the mask's alpha channel.
func compositeShadow(img *image.NRGBA, radius int) *image.NRGBA {
	bounds := img.Bounds()

	mask := image.NewAlpha(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		srcRow := y * img.Stride
		maskRow := y * mask.Stride
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			mask.Pix[maskRow+x] = img.Pix[srcRow+x*4+3]
		}
	}

	blurred := boxBlurAlpha(mask, radius)

	out := image.NewNRGBA(bounds)
	draw.DrawMask(out, bounds, image.NewUniform(color.NRGBA{A: shadowAlpha}), image.Point{}, blurred, bounds.Min, draw.Over)
	draw.Draw(out, bounds, img, bounds.Min, draw.Over)

	return out
}

// boxBlurAlpha blurs an alpha mask with a separable box filter,
// using prefix sums per row/column
func boxBlurAlpha(src *image.Alpha, radius int) *image.Alpha {
	if radius <= 0 {
		out := image.NewAlpha(src.Bounds())
		copy(out.Pix, src.Pix)
		return out
	}

	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	tmp := image.NewAlpha(bounds)
	dst := image.NewAlpha(bounds)

	for y := 0; y < height; y++ {
		srcRow := y * src.Stride
		tmpRow := y * tmp.Stride
		prefix := make([]int, width+1)
		for x := 0; x < width; x++ {
			prefix[x+1] = prefix[x] + int(src.Pix[srcRow+x])
		}
		for x := 0; x < width; x++ {
			x0 := maxInt(x-radius, 0)
			x1 := minInt(x+radius, width-1)
			sum := prefix[x1+1] - prefix[x0]
			tmp.Pix[tmpRow+x] = uint8(sum / (x1 - x0 + 1))
		}
	}

	for x := 0; x < width; x++ {
		prefix := make([]int, height+1)
		for y := 0; y < height; y++ {
			prefix[y+1] = prefix[y] + int(tmp.Pix[y*tmp.Stride+x])
		}
		for y := 0; y < height; y++ {
			y0 := maxInt(y-radius, 0)
			y1 := minInt(y+radius, height-1)
			sum := prefix[y1+1] - prefix[y0]
			dst.Pix[y*dst.Stride+x] = uint8(sum / (y1 - y0 + 1))
		}
	}

	return dst
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
