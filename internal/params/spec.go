package params

import "math"

// Parameter names. Iteration order of a Set follows the profile's key list,
// which follows the order of this block.
const (
	TrailDecay    = "trail_decay"
	NutrientDecay = "nutrient_decay"
	Attraction    = "attraction"
	SensorAngle   = "sensor_angle"
	SensorOffset  = "sensor_offset"
	RotationAngle = "rotation_angle"
	StepSize      = "step_size"
	DepositAmount = "deposit_amount"
	MaxDensity    = "max_density"
	PickupRate    = "pickup_rate"
	CarryDecay    = "carry_decay"
	CarryMax      = "carry_max"
)

// Nudge is how AdjustParameter moves a value.
type Nudge int

const (
	// Relative scales by ±10%.
	Relative Nudge = iota
	// Step adds ±1.
	Step
)

const relativeStep = 0.1

func (n Nudge) String() string {
	if n == Step {
		return "±1"
	}
	return "±10%"
}

// Spec describes one parameter: its default, the domain adjustments are
// clamped to, and whether updates are range-checked.
type Spec struct {
	Name    string
	Default float64
	Min     float64
	Max     float64
	Nudge   Nudge
	// Floor is where a relative nudge upward starts from when the value is 0.
	Floor float64
	// Checked specs reject out-of-domain values on update (decay rates).
	Checked bool
	Help    string
}

var catalog = []Spec{
	{Name: TrailDecay, Default: 0.3, Min: 0, Max: 1, Nudge: Relative, Floor: 0.01, Checked: true,
		Help: "fraction of trail removed per step"},
	{Name: NutrientDecay, Default: 0.001, Min: 0, Max: 1, Nudge: Relative, Floor: 0.001, Checked: true,
		Help: "fraction of nutrient removed per step"},
	{Name: Attraction, Default: 1.0, Min: 0, Max: 100, Nudge: Relative, Floor: 0.1,
		Help: "weight of nutrient in the sensor score"},
	{Name: SensorAngle, Default: math.Pi / 3, Min: 0, Max: math.Pi, Nudge: Relative, Floor: 0.01,
		Help: "angle between forward and side sensors (rad)"},
	{Name: SensorOffset, Default: 5, Min: 0, Max: 64, Nudge: Step,
		Help: "distance from agent to sensor points"},
	{Name: RotationAngle, Default: math.Pi / 8, Min: 0, Max: math.Pi, Nudge: Relative, Floor: 0.01,
		Help: "heading change when a side sensor wins (rad)"},
	{Name: StepSize, Default: 1, Min: 0, Max: 64, Nudge: Step,
		Help: "distance moved per step"},
	{Name: DepositAmount, Default: 3, Min: 0, Max: 1000, Nudge: Step,
		Help: "trail added per agent per step"},
	{Name: MaxDensity, Default: 2, Min: 0, Max: 1000, Nudge: Step,
		Help: "trail cap per cell, 0 disables"},
	{Name: PickupRate, Default: 0.05, Min: 0, Max: 1, Nudge: Relative, Floor: 0.01,
		Help: "fraction of local nutrient picked up per step"},
	{Name: CarryDecay, Default: 0.01, Min: 0, Max: 1, Nudge: Relative, Floor: 0.01, Checked: true,
		Help: "fraction of carried nutrient lost per step"},
	{Name: CarryMax, Default: 1, Min: 0, Max: 100, Nudge: Relative, Floor: 0.1,
		Help: "upper bound on carried nutrient per channel"},
}

var catalogIndex = func() map[string]int {
	m := make(map[string]int, len(catalog))
	for i, s := range catalog {
		m[s.Name] = i
	}
	return m
}()

// Lookup returns the catalog entry for name.
func Lookup(name string) (Spec, bool) {
	i, ok := catalogIndex[name]
	if !ok {
		return Spec{}, false
	}
	return catalog[i], true
}

// Clamp limits v to the spec's domain.
func (s Spec) Clamp(v float64) float64 {
	return math.Min(math.Max(v, s.Min), s.Max)
}

// Adjust returns v nudged by sign (+1, -1 or 0) and clamped.
func (s Spec) Adjust(v float64, sign int) float64 {
	switch {
	case sign > 0:
		sign = 1
	case sign < 0:
		sign = -1
	default:
		return v
	}

	var next float64
	if s.Nudge == Step {
		next = v + float64(sign)
	} else if v == 0 && sign > 0 {
		next = s.Floor
	} else {
		next = v * (1 + relativeStep*float64(sign))
	}
	return s.Clamp(next)
}
