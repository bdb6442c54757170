// Package imageio writes the FrameBuffer's accumulated linear radiance out
// as a gamma-corrected LDR PNG. Multi-channel/EXR output is left
// unimplemented for now. Uses golang.org/x/image/draw to resample/composite
// before encoding with the standard library's image/png (x/image does not
// itself provide a PNG encoder; draw is the piece of that module this
// writer exercises).
package imageio

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"

	"github.com/kestrelrender/bdpt/pkg/framebuffer"
)

const defaultGamma = 2.2

// WritePNG tone-maps (clamp to [0,1]) and gamma-corrects every pixel of fb
// before encoding it as an 8-bit PNG.
func WritePNG(w io.Writer, fb *framebuffer.FrameBuffer) error {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	invGamma := 1.0 / defaultGamma
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			c := fb.Color(x, y)
			img.Set(x, y, color.RGBA{
				R: toByte(c.X, invGamma),
				G: toByte(c.Y, invGamma),
				B: toByte(c.Z, invGamma),
				A: 255,
			})
		}
	}
	return png.Encode(w, img)
}

// WritePNGScaled resamples fb to (width, height) using x/image/draw's
// high-quality interpolator before writing. The live-preview sink does
// not call it; it sends progress events only.
func WritePNGScaled(w io.Writer, fb *framebuffer.FrameBuffer, width, height int) error {
	full := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	invGamma := 1.0 / defaultGamma
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			c := fb.Color(x, y)
			full.Set(x, y, color.RGBA{
				R: toByte(c.X, invGamma),
				G: toByte(c.Y, invGamma),
				B: toByte(c.Z, invGamma),
				A: 255,
			})
		}
	}
	scaled := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), full, full.Bounds(), draw.Over, nil)
	return png.Encode(w, scaled)
}

func toByte(linear, invGamma float64) uint8 {
	if math.IsNaN(linear) || linear < 0 {
		linear = 0
	}
	if linear > 1 {
		linear = 1
	}
	v := math.Pow(linear, invGamma)
	return uint8(math.Round(v * 255))
}
