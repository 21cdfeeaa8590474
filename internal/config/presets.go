package config

import (
	"math"
	"sort"
)

var Presets = map[string]*Config{
	"classic": {
		Profile: "classic", Width: 256, Height: 256, AgentFraction: 0.08,
		Steps: 1000, Backend: DefaultBackend, StatsEvery: DefaultStatsEvery,
	},
	"minimal": {
		Profile: "minimal", Width: 256, Height: 256, AgentFraction: 0.08,
		Steps: 1000, Backend: DefaultBackend, StatsEvery: DefaultStatsEvery,
		Params: map[string]float64{"trail_decay": 0.1, "deposit_amount": 1},
	},
	"extended": {
		Profile: "extended", Width: 256, Height: 256, AgentFraction: 0.08,
		Steps: 2000, Backend: DefaultBackend, StatsEvery: DefaultStatsEvery,
	},
	"dense": {
		Profile: "classic", Width: 200, Height: 200, AgentFraction: 0.3,
		Steps: 1000, Backend: DefaultBackend, StatsEvery: DefaultStatsEvery,
		Params: map[string]float64{"sensor_offset": 9, "sensor_angle": math.Pi / 4},
	},
	"sparse": {
		Profile: "classic", Width: 320, Height: 240, AgentFraction: 0.02,
		Steps: 1500, Backend: DefaultBackend, StatsEvery: DefaultStatsEvery,
		Params: map[string]float64{"trail_decay": 0.05, "rotation_angle": math.Pi / 4},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return p.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
