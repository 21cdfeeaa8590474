// Package sim runs the Physarum simulation: it owns the field, the agent
// population and the parameter set, and advances them one step at a time.
//
// An Engine is not safe for concurrent use. Step, parameter updates and
// snapshots must be called from one goroutine; Step itself fans the agent
// and deposit passes out over its compute backend.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/san-kum/physarum/internal/agents"
	"github.com/san-kum/physarum/internal/compute"
	"github.com/san-kum/physarum/internal/field"
	"github.com/san-kum/physarum/internal/metrics"
	"github.com/san-kum/physarum/internal/params"
	"github.com/san-kum/physarum/internal/slime"
)

// DefaultSeed seeds engines built without WithSeed.
const DefaultSeed int64 = 1

// kernel is the parameter set resolved into the types the step reads.
type kernel struct {
	agents        agents.Params
	trailDecay    float32
	nutrientDecay float32
	deposit       float32
	maxDensity    float32
}

func resolve(s *params.Set) kernel {
	return kernel{
		agents: agents.Params{
			SensorAngle:   s.GetOr(params.SensorAngle, 0),
			SensorOffset:  s.GetOr(params.SensorOffset, 0),
			RotationAngle: s.GetOr(params.RotationAngle, 0),
			StepSize:      s.GetOr(params.StepSize, 0),
			Attraction:    s.GetOr(params.Attraction, 0),
			PickupRate:    s.GetOr(params.PickupRate, 0),
			CarryDecay:    s.GetOr(params.CarryDecay, 0),
			CarryMax:      s.GetOr(params.CarryMax, 0),
		},
		trailDecay:    float32(s.GetOr(params.TrailDecay, 0)),
		nutrientDecay: float32(s.GetOr(params.NutrientDecay, 0)),
		deposit:       float32(s.GetOr(params.DepositAmount, 0)),
		maxDensity:    float32(s.GetOr(params.MaxDensity, 0)),
	}
}

// Engine is one simulation instance.
type Engine struct {
	width, height int
	seed          int64
	initial       []agents.Agent // nil when agents were seeded randomly
	count         int

	params *params.Set
	kernel kernel

	field    *field.Field
	agents   *agents.Population
	deposits *field.Deposits

	backend compute.Backend
	logger  *slog.Logger

	step     int
	diverged error
}

// New creates an engine with ceil(width*height*agentFraction) randomly
// placed agents. Overrides replace profile defaults by name.
func New(width, height int, agentFraction float64, overrides map[string]float64, opts ...Option) (*Engine, error) {
	if err := validateSize(width, height); err != nil {
		return nil, err
	}
	if !(agentFraction > 0 && agentFraction <= 1) {
		return nil, &slime.ConfigError{Field: "agent_fraction", Value: agentFraction, Reason: "must be in (0, 1]"}
	}
	return build(width, height, agents.Count(width, height, agentFraction), nil, overrides, opts)
}

// NewFromAgents creates an engine whose population is exactly list,
// which may be empty. Positions are wrapped onto the grid.
func NewFromAgents(width, height int, list []agents.Agent, overrides map[string]float64, opts ...Option) (*Engine, error) {
	if err := validateSize(width, height); err != nil {
		return nil, err
	}
	initial := make([]agents.Agent, len(list))
	copy(initial, list)
	return build(width, height, len(list), initial, overrides, opts)
}

func validateSize(width, height int) error {
	if width <= 0 {
		return &slime.ConfigError{Field: "width", Value: width, Reason: "must be positive"}
	}
	if height <= 0 {
		return &slime.ConfigError{Field: "height", Value: height, Reason: "must be positive"}
	}
	return nil
}

func build(width, height, count int, initial []agents.Agent, overrides map[string]float64, opts []Option) (*Engine, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	set, err := params.New(o.profile, overrides)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", slime.ErrConfig, err)
	}

	e := &Engine{
		width:   width,
		height:  height,
		seed:    o.seed,
		initial: initial,
		count:   count,
		params:  set,
		kernel:  resolve(set),
		backend: o.backend,
		logger:  o.logger,
	}
	e.seedState()

	e.logger.Debug("engine created",
		"width", width,
		"height", height,
		"agents", count,
		"profile", set.Profile().Name,
		"backend", e.backend.Name(),
		"seed", e.seed,
	)
	return e, nil
}

// seedState allocates and seeds the field and population from the seed.
// The trail noise is drawn first, then agent x, y and heading.
func (e *Engine) seedState() {
	rng := rand.New(rand.NewSource(e.seed))
	channels := e.params.Profile().Channels

	f := field.New(e.width, e.height, channels)
	f.SeedTrail(rng)
	if channels > 0 {
		f.SeedNutrient()
	}

	var pop *agents.Population
	if e.initial != nil {
		pop = agents.FromAgents(e.initial, channels, e.width, e.height)
	} else {
		pop = agents.New(e.count, channels)
		pop.Seed(rng, e.width, e.height)
	}

	e.field = f
	e.agents = pop
	e.deposits = field.NewDeposits(f.Len())
	e.step = 0
	e.diverged = nil
}

// Reset reseeds the field and agents from the original seed. The current
// parameter values are kept.
func (e *Engine) Reset() {
	e.seedState()
	e.logger.Debug("engine reset", "seed", e.seed)
}

// Step advances the simulation by one time step: every agent senses the
// field as it was at the start of the step, turns, moves and records a
// deposit; deposits are applied and clamped, then both grids decay.
//
// Once a step has diverged every later call returns the same error.
func (e *Engine) Step() error {
	if e.diverged != nil {
		return e.diverged
	}
	k := e.kernel

	e.deposits.Reset()
	e.backend.For(e.agents.Len(), func(_, start, end int) {
		e.agents.UpdateRange(e.field, k.agents, e.deposits, start, end)
	})
	e.backend.For(e.field.Len(), func(_, start, end int) {
		e.field.ApplyDeposits(e.deposits, k.deposit, k.maxDensity, start, end)
	})

	if err := e.field.Decay(k.trailDecay); err != nil {
		return err
	}
	if e.field.Channels > 0 {
		if err := e.field.DecayNutrient(k.nutrientDecay); err != nil {
			return err
		}
	}

	e.step++
	if err := e.field.Check(e.step); err != nil {
		e.diverged = err
		e.logger.Error("simulation diverged", "error", err)
		return err
	}
	return nil
}

// Run calls Step n times, stopping early when ctx is done or callback
// returns false. The callback may be nil.
func (e *Engine) Run(ctx context.Context, n int, callback func(e *Engine) bool) error {
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := e.Step(); err != nil {
			return err
		}
		if callback != nil && !callback(e) {
			return nil
		}
	}
	return nil
}

// Parameters returns the current values in iteration order.
func (e *Engine) Parameters() []params.Param { return e.params.Params() }

// ParameterSet returns the current set. It is immutable.
func (e *Engine) ParameterSet() *params.Set { return e.params }

// UpdateParameters replaces the named values. The update is applied in
// full or not at all; on error the engine is unchanged.
func (e *Engine) UpdateParameters(overrides map[string]float64) error {
	next, err := e.params.With(overrides)
	if err != nil {
		return err
	}
	e.params = next
	e.kernel = resolve(next)
	e.logger.Debug("parameters updated", "values", overrides)
	return nil
}

// AdjustParameter nudges one parameter up (sign > 0) or down (sign < 0)
// by its nudge rule, clamped to its range.
func (e *Engine) AdjustParameter(name string, sign int) error {
	v, err := e.params.Adjusted(name, sign)
	if err != nil {
		return err
	}
	return e.UpdateParameters(map[string]float64{name: v})
}

// TrailMap returns a copy of the trail grid, row-major.
func (e *Engine) TrailMap() []float32 {
	out := make([]float32, len(e.field.Trail))
	copy(out, e.field.Trail)
	return out
}

// NutrientMap returns a copy of the nutrient grid, (y*W+x)*C+c, or nil
// when the profile has no nutrient channels.
func (e *Engine) NutrientMap() []float32 {
	if e.field.Nutrient == nil {
		return nil
	}
	out := make([]float32, len(e.field.Nutrient))
	copy(out, e.field.Nutrient)
	return out
}

// AgentDensityMap returns the number of agents in each cell.
func (e *Engine) AgentDensityMap() []float32 {
	return e.agents.Density(e.width, e.height)
}

// Stats summarises the current state.
func (e *Engine) Stats() metrics.Stats {
	return metrics.Collect(metrics.Sample{
		Step:        e.step,
		Trail:       e.field.Trail,
		Density:     e.AgentDensityMap(),
		Nutrient:    e.field.Nutrient,
		CarriedMean: e.agents.CarriedMean(),
	})
}

// Spectrum returns the radial power spectrum of the trail.
func (e *Engine) Spectrum() metrics.Spectrum {
	return metrics.TrailSpectrum(e.field.Trail, e.width, e.height)
}

func (e *Engine) Width() int  { return e.width }
func (e *Engine) Height() int { return e.height }

// StepCount returns the number of completed steps.
func (e *Engine) StepCount() int { return e.step }

func (e *Engine) Seed() int64 { return e.seed }

func (e *Engine) Profile() params.Profile { return e.params.Profile() }

func (e *Engine) Backend() compute.Backend { return e.backend }

// AgentCount returns the population size.
func (e *Engine) AgentCount() int { return e.agents.Len() }

// Agent returns a copy of agent i.
func (e *Engine) Agent(i int) agents.Agent { return e.agents.At(i) }

// Field exposes the live field. Writes between steps are seen by the next
// step; callers use it to set up scenarios.
func (e *Engine) Field() *field.Field { return e.field }
