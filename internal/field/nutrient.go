package field

import "math"

// Source is a Gaussian nutrient blob centred at a fraction of the grid.
type Source struct {
	FX, FY float64
	Peak   float64
}

// DefaultSources places one blob per channel.
var DefaultSources = []Source{
	{FX: 0.25, FY: 0.25, Peak: 1},
	{FX: 0.75, FY: 0.35, Peak: 1},
	{FX: 0.50, FY: 0.75, Peak: 1},
}

// sigmaFraction scales blob width with the smaller grid side.
const sigmaFraction = 0.08

// SeedNutrient fills channel c from DefaultSources[c]. Distances are
// toroidal so blobs near an edge continue on the opposite side.
func (f *Field) SeedNutrient() {
	f.SeedNutrientFrom(DefaultSources)
}

// SeedNutrientFrom fills channel c from sources[c]; channels without a
// source stay zero.
func (f *Field) SeedNutrientFrom(sources []Source) {
	if f.Channels == 0 {
		return
	}
	sigma := sigmaFraction * float64(min(f.W, f.H))
	if sigma < 1 {
		sigma = 1
	}

	for c := 0; c < f.Channels && c < len(sources); c++ {
		src := sources[c]
		cx := src.FX * float64(f.W)
		cy := src.FY * float64(f.H)
		for y := 0; y < f.H; y++ {
			dy := torusDelta(float64(y)-cy, f.H)
			for x := 0; x < f.W; x++ {
				dx := torusDelta(float64(x)-cx, f.W)
				f.Nutrient[(y*f.W+x)*f.Channels+c] = float32(src.Peak) * gaussian(dx*dx+dy*dy, sigma)
			}
		}
	}
}

func torusDelta(d float64, size int) float64 {
	d = math.Abs(d)
	s := float64(size)
	d = math.Mod(d, s)
	return math.Min(d, s-d)
}
