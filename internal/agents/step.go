package agents

import (
	"math"

	"github.com/san-kum/physarum/internal/field"
	"github.com/san-kum/physarum/internal/slime"
)

// Direction is the sensor that won a steering decision.
type Direction int

const (
	Forward Direction = iota
	Left
	Right
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "forward"
	}
}

// Params are the per-step values the update reads, resolved from the
// engine's parameter set.
type Params struct {
	SensorAngle   float64
	SensorOffset  float64
	RotationAngle float64
	StepSize      float64
	Attraction    float64
	PickupRate    float64
	CarryDecay    float64
	CarryMax      float64
}

// SensorPoints returns the forward, left and right probe locations of an
// agent at (x, y) facing heading. Left is at heading+SensorAngle. The
// points are not wrapped; sampling wraps them.
func SensorPoints(x, y, heading float64, p Params) [3][2]float64 {
	var pts [3][2]float64
	for d, off := range [3]float64{0, p.SensorAngle, -p.SensorAngle} {
		s, c := math.Sincos(heading + off)
		pts[d] = [2]float64{x + p.SensorOffset*c, y + p.SensorOffset*s}
	}
	return pts
}

// Choose picks the strictly greatest score. Ties go to forward, then left.
func Choose(scores [3]float64) Direction {
	best, dir := scores[Forward], Forward
	if scores[Left] > best {
		best, dir = scores[Left], Left
	}
	if scores[Right] > best {
		dir = Right
	}
	return dir
}

// Turn returns the heading change for dir: toward the winning sensor.
func Turn(dir Direction, rotation float64) float64 {
	switch dir {
	case Left:
		return rotation
	case Right:
		return -rotation
	default:
		return 0
	}
}

// scratch holds per-worker buffers so the hot loop does not allocate.
type scratch struct {
	nutrient []float32
	affinity []float32
}

func newScratch(channels int) *scratch {
	return &scratch{
		nutrient: make([]float32, channels),
		affinity: make([]float32, channels),
	}
}

// Score evaluates one sensor point: trail plus attraction times the dot
// product of local nutrient and the agent's affinity (its carried nutrient,
// or all ones while it carries nothing).
func (p *Population) Score(f *field.Field, i int, x, y float64, prm Params) float64 {
	return p.score(f, i, x, y, prm, newScratch(f.Channels))
}

func (p *Population) score(f *field.Field, i int, x, y float64, prm Params, s *scratch) float64 {
	v := float64(f.SampleTrail(x, y))
	if f.Channels == 0 || p.Channels == 0 || prm.Attraction == 0 {
		return v
	}
	local := f.SampleNutrient(x, y, s.nutrient)
	aff := p.affinity(i, s.affinity)
	var dot float64
	for c := range local {
		dot += float64(local[c]) * float64(aff[c])
	}
	return v + prm.Attraction*dot
}

func (p *Population) affinity(i int, dst []float32) []float32 {
	carried := p.carried(i)
	var sum float32
	for _, v := range carried {
		sum += v
	}
	if sum > 0 {
		copy(dst, carried)
		return dst
	}
	for c := range dst {
		dst[c] = 1
	}
	return dst
}

// Sense returns the forward, left and right scores of agent i.
func (p *Population) Sense(f *field.Field, i int, prm Params) [3]float64 {
	return p.sense(f, i, prm, newScratch(f.Channels))
}

func (p *Population) sense(f *field.Field, i int, prm Params, s *scratch) [3]float64 {
	pts := SensorPoints(float64(p.X[i]), float64(p.Y[i]), float64(p.Heading[i]), prm)
	var scores [3]float64
	for d := range pts {
		scores[d] = p.score(f, i, pts[d][0], pts[d][1], prm, s)
	}
	return scores
}

// UpdateRange advances agents [start, end) one step against f, which must
// not change during the pass, and records each agent's deposit cell in d.
func (p *Population) UpdateRange(f *field.Field, prm Params, d *field.Deposits, start, end int) {
	s := newScratch(f.Channels)
	for i := start; i < end; i++ {
		dir := Choose(p.sense(f, i, prm, s))
		h := float64(p.Heading[i]) + Turn(dir, prm.RotationAngle)

		sin, cos := math.Sincos(h)
		x := float64(p.X[i]) + prm.StepSize*cos
		y := float64(p.Y[i]) + prm.StepSize*sin

		p.X[i] = slime.Wrap32(x, f.W)
		p.Y[i] = slime.Wrap32(y, f.H)
		p.Heading[i] = slime.WrapAngle(h)

		d.Add(slime.CellIndex(float64(p.X[i]), float64(p.Y[i]), f.W, f.H))

		if p.Channels > 0 && f.Channels > 0 {
			p.pickup(f, i, prm, s)
		}
	}
}

// pickup blends locally sampled nutrient into the agent's carried vector.
func (p *Population) pickup(f *field.Field, i int, prm Params, s *scratch) {
	local := f.SampleNutrient(float64(p.X[i]), float64(p.Y[i]), s.nutrient)
	keep := float32(1 - prm.CarryDecay)
	rate := float32(prm.PickupRate)
	limit := float32(prm.CarryMax)
	carried := p.carried(i)
	for c := range carried {
		v := carried[c]*keep + rate*local[c]
		if v > limit {
			v = limit
		}
		if v < 0 {
			v = 0
		}
		carried[c] = v
	}
}
