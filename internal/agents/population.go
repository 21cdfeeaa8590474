// Package agents holds the Physarum agent population and the per-step
// sense, steer, move and deposit algorithm.
//
// State is stored as parallel slices. An agent's update reads only the
// field (frozen for the whole pass) and its own state, and writes only its
// own state plus a deposit count, so any partition of the population
// across workers yields the same result.
package agents

import (
	"math"
	"math/rand"

	"github.com/san-kum/physarum/internal/slime"
)

// Agent is a copy of one agent's state.
type Agent struct {
	X, Y    float32
	Heading float32
	Carried []float32
}

// Population owns the state of a fixed number of agents.
type Population struct {
	X, Y     []float32
	Heading  []float32
	Channels int
	// Carried nutrient, interleaved: i*Channels + c.
	Carried []float32
}

// Count returns ceil(w*h*fraction).
func Count(w, h int, fraction float64) int {
	return int(math.Ceil(float64(w) * float64(h) * fraction))
}

// New allocates n agents at the origin with heading 0.
func New(n, channels int) *Population {
	p := &Population{
		X:        make([]float32, n),
		Y:        make([]float32, n),
		Heading:  make([]float32, n),
		Channels: channels,
	}
	if channels > 0 {
		p.Carried = make([]float32, n*channels)
	}
	return p
}

// Seed draws uniform positions over a w×h grid and uniform headings in
// [0, 2π). All x are drawn first, then all y, then all headings.
func (p *Population) Seed(rng *rand.Rand, w, h int) {
	for i := range p.X {
		p.X[i] = slime.Wrap32(float64(w)*rng.Float64(), w)
	}
	for i := range p.Y {
		p.Y[i] = slime.Wrap32(float64(h)*rng.Float64(), h)
	}
	for i := range p.Heading {
		p.Heading[i] = slime.WrapAngle(slime.TwoPi * rng.Float64())
	}
	clear(p.Carried)
}

// FromAgents builds a population from explicit agents, wrapping each into
// the grid. Carried values beyond channels are ignored.
func FromAgents(list []Agent, channels, w, h int) *Population {
	p := New(len(list), channels)
	for i, a := range list {
		p.Set(i, a, w, h)
	}
	return p
}

// Len returns the number of agents.
func (p *Population) Len() int { return len(p.X) }

// At returns a copy of agent i.
func (p *Population) At(i int) Agent {
	a := Agent{X: p.X[i], Y: p.Y[i], Heading: p.Heading[i]}
	if p.Channels > 0 {
		a.Carried = make([]float32, p.Channels)
		copy(a.Carried, p.carried(i))
	}
	return a
}

// Set overwrites agent i, wrapping position and heading.
func (p *Population) Set(i int, a Agent, w, h int) {
	p.X[i] = slime.Wrap32(float64(a.X), w)
	p.Y[i] = slime.Wrap32(float64(a.Y), h)
	p.Heading[i] = slime.WrapAngle(float64(a.Heading))
	if p.Channels > 0 {
		c := p.carried(i)
		clear(c)
		copy(c, a.Carried)
	}
}

func (p *Population) carried(i int) []float32 {
	return p.Carried[i*p.Channels : (i+1)*p.Channels]
}

// Clone returns a deep copy.
func (p *Population) Clone() *Population {
	c := New(p.Len(), p.Channels)
	copy(c.X, p.X)
	copy(c.Y, p.Y)
	copy(c.Heading, p.Heading)
	copy(c.Carried, p.Carried)
	return c
}

// Density counts agents per cell of a w×h grid at their nearest cell.
func (p *Population) Density(w, h int) []float32 {
	out := make([]float32, w*h)
	for i := range p.X {
		out[slime.CellIndex(float64(p.X[i]), float64(p.Y[i]), w, h)]++
	}
	return out
}

// CarriedMean returns the mean carried nutrient over agents and channels.
func (p *Population) CarriedMean() float64 {
	if len(p.Carried) == 0 {
		return 0
	}
	var sum float64
	for _, v := range p.Carried {
		sum += float64(v)
	}
	return sum / float64(len(p.Carried))
}
