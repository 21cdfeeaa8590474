package sim

import (
	"image"
	"image/color"
	"math"
)

// Frame is a packed RGB image: each pixel is R<<16 | G<<8 | B.
type Frame struct {
	W, H int
	Pix  []uint32
}

// At returns the packed pixel at (x, y).
func (f *Frame) At(x, y int) uint32 { return f.Pix[y*f.W+x] }

// RGB unpacks the pixel at (x, y).
func (f *Frame) RGB(x, y int) (r, g, b uint8) {
	p := f.At(x, y)
	return uint8(p >> 16), uint8(p >> 8), uint8(p)
}

// Image converts the frame to an opaque RGBA image.
func (f *Frame) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.W, f.H))
	for y := 0; y < f.H; y++ {
		for x := 0; x < f.W; x++ {
			r, g, b := f.RGB(x, y)
			img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return img
}

// Render channel scales.
const (
	nutrientFullScale = 3  // summed nutrient mapping to full green
	agentBrightness   = 25 // blue per agent in a cell
)

// RenderFrame maps the current state to colour. Red is trail density
// relative to max_density (or 1 when uncapped), green is total nutrient,
// blue is agent count. Each channel saturates at 255.
func (e *Engine) RenderFrame() *Frame {
	w, h := e.width, e.height
	fr := &Frame{W: w, H: h, Pix: make([]uint32, w*h)}

	trailScale := float64(e.kernel.maxDensity)
	if trailScale <= 0 {
		trailScale = 1
	}
	density := e.AgentDensityMap()
	c := e.field.Channels

	for i := range fr.Pix {
		r := channel(255 * float64(e.field.Trail[i]) / trailScale)

		var g uint32
		if c > 0 {
			var sum float64
			for _, v := range e.field.Nutrient[i*c : (i+1)*c] {
				sum += float64(v)
			}
			g = channel(255 * sum / nutrientFullScale)
		}

		b := channel(agentBrightness * float64(density[i]))
		fr.Pix[i] = r<<16 | g<<8 | b
	}
	return fr
}

func channel(v float64) uint32 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint32(v)
}
