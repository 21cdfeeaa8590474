// Package field holds the shared environment agents sense and mark: a
// trail density grid and, in nutrient profiles, a per-channel attractant
// grid. Both are float32, row-major (index y*W + x), allocated once and
// never resized.
//
// Lookups use the nearest cell with toroidal wraparound; see
// [slime.Cell].
package field

import (
	"math"
	"math/rand"

	"github.com/san-kum/physarum/internal/slime"
	"gonum.org/v1/gonum/blas/blas32"
)

// Field owns the trail and nutrient grids.
type Field struct {
	W, H     int
	Channels int

	// Trail density per cell.
	Trail []float32
	// Nutrient per cell and channel, interleaved: (y*W+x)*Channels + c.
	Nutrient []float32
}

// New allocates a zeroed field. channels is 0 for trail-only fields.
func New(w, h, channels int) *Field {
	f := &Field{
		W:        w,
		H:        h,
		Channels: channels,
		Trail:    make([]float32, w*h),
	}
	if channels > 0 {
		f.Nutrient = make([]float32, w*h*channels)
	}
	return f
}

// Len returns the number of cells.
func (f *Field) Len() int { return f.W * f.H }

// Index returns the row-major index of (x, y), wrapping both coordinates.
func (f *Field) Index(x, y int) int {
	return slime.ModInt(y, f.H)*f.W + slime.ModInt(x, f.W)
}

// SeedTrail fills the trail with uniform noise in [0, 1).
func (f *Field) SeedTrail(rng *rand.Rand) {
	for i := range f.Trail {
		f.Trail[i] = rng.Float32()
	}
}

// Decay multiplies every trail cell by 1-rate. rate must be in [0, 1].
func (f *Field) Decay(rate float32) error {
	if err := checkRate("trail_decay", rate); err != nil {
		return err
	}
	scale(f.Trail, 1-rate)
	return nil
}

// DecayNutrient applies the same exponential form to the nutrient grid.
func (f *Field) DecayNutrient(rate float32) error {
	if err := checkRate("nutrient_decay", rate); err != nil {
		return err
	}
	if len(f.Nutrient) > 0 && rate > 0 {
		scale(f.Nutrient, 1-rate)
	}
	return nil
}

func scale(data []float32, k float32) {
	if k == 1 || len(data) == 0 {
		return
	}
	blas32.Scal(k, blas32.Vector{N: len(data), Inc: 1, Data: data})
}

func checkRate(name string, rate float32) error {
	if !(rate >= 0 && rate <= 1) {
		return &slime.BoundsError{Name: name, Value: float64(rate), Min: 0, Max: 1}
	}
	return nil
}

// Deposit adds amount to the cell at (x, y) in place. A positive
// maxDensity caps the result. The engine does not call this during a step;
// it accumulates into [Deposits] and applies them in one pass.
func (f *Field) Deposit(x, y int, amount, maxDensity float32) {
	i := f.Index(x, y)
	f.Trail[i] = capDensity(float64(f.Trail[i])+float64(amount), maxDensity)
}

// SampleTrail returns the trail at the nearest cell to (x, y).
func (f *Field) SampleTrail(x, y float64) float32 {
	return f.Trail[slime.CellIndex(x, y, f.W, f.H)]
}

// SampleNutrient writes the nutrient vector nearest to (x, y) into dst and
// returns it. dst must hold Channels values. Trail-only fields return dst
// unchanged.
func (f *Field) SampleNutrient(x, y float64, dst []float32) []float32 {
	if f.Channels == 0 {
		return dst
	}
	base := slime.CellIndex(x, y, f.W, f.H) * f.Channels
	copy(dst[:f.Channels], f.Nutrient[base:base+f.Channels])
	return dst
}

// NutrientAt returns the nutrient of channel c at cell i.
func (f *Field) NutrientAt(i, c int) float32 {
	return f.Nutrient[i*f.Channels+c]
}

// Check returns a SimulationDivergedError for the first non-finite cell.
func (f *Field) Check(step int) error {
	for i, v := range f.Trail {
		if !slime.Finite(float64(v)) {
			return &slime.SimulationDivergedError{Step: step, Grid: "trail", X: i % f.W, Y: i / f.W, Value: v}
		}
	}
	for i, v := range f.Nutrient {
		if !slime.Finite(float64(v)) {
			cell := i / f.Channels
			return &slime.SimulationDivergedError{Step: step, Grid: "nutrient", X: cell % f.W, Y: cell / f.W, Value: v}
		}
	}
	return nil
}

// Clone returns a deep copy.
func (f *Field) Clone() *Field {
	c := &Field{W: f.W, H: f.H, Channels: f.Channels, Trail: make([]float32, len(f.Trail))}
	copy(c.Trail, f.Trail)
	if f.Nutrient != nil {
		c.Nutrient = make([]float32, len(f.Nutrient))
		copy(c.Nutrient, f.Nutrient)
	}
	return c
}

// capDensity clamps an accumulated value to [0, maxDensity], or to the
// largest finite float32 when uncapped.
func capDensity(v float64, maxDensity float32) float32 {
	switch {
	case v < 0:
		return 0
	case maxDensity > 0 && v > float64(maxDensity):
		return maxDensity
	case v > math.MaxFloat32:
		return math.MaxFloat32
	}
	return float32(v)
}

func gaussian(d2, sigma float64) float32 {
	return float32(math.Exp(-d2 / (2 * sigma * sigma)))
}
