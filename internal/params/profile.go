package params

import (
	"fmt"
	"sort"
)

// NutrientChannels is the channel count of profiles that carry nutrient.
const NutrientChannels = 3

// Profile fixes the parameter keys of a run and whether the field carries
// nutrient channels.
type Profile struct {
	Name     string
	Channels int
	Keys     []string
	// Defaults overrides catalog defaults for this profile.
	Defaults map[string]float64
}

var minimalKeys = []string{TrailDecay, SensorAngle, SensorOffset, RotationAngle, StepSize, DepositAmount}

var (
	// Minimal is trail only, uncapped.
	Minimal = Profile{
		Name: "minimal",
		Keys: minimalKeys,
	}

	// Classic is trail only with the density cap.
	Classic = Profile{
		Name: "classic",
		Keys: []string{TrailDecay, SensorAngle, SensorOffset, RotationAngle, StepSize, DepositAmount, MaxDensity},
	}

	// Extended adds three nutrient channels, nutrient transport and the cap.
	Extended = Profile{
		Name:     "extended",
		Channels: NutrientChannels,
		Keys: []string{
			TrailDecay, NutrientDecay, Attraction, SensorAngle, SensorOffset, RotationAngle,
			StepSize, DepositAmount, MaxDensity, PickupRate, CarryDecay, CarryMax,
		},
		// slower trail decay and longer sensors let carried nutrient travel
		// between the food sources before the network fades
		Defaults: map[string]float64{
			TrailDecay:    0.1,
			SensorOffset:  9,
			DepositAmount: 1,
		},
	}
)

var profiles = map[string]Profile{
	Minimal.Name:  Minimal,
	Classic.Name:  Classic,
	Extended.Name: Extended,
}

// GetProfile returns the named profile.
func GetProfile(name string) (Profile, error) {
	p, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown profile: %s (available: %v)", name, ListProfiles())
	}
	return p, nil
}

// ListProfiles returns profile names in sorted order.
func ListProfiles() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether the profile carries key.
func (p Profile) Has(key string) bool {
	for _, k := range p.Keys {
		if k == key {
			return true
		}
	}
	return false
}

func (p Profile) defaultFor(s Spec) float64 {
	if v, ok := p.Defaults[s.Name]; ok {
		return v
	}
	return s.Default
}
