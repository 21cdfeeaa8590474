// Package metrics summarises simulation snapshots into per-step
// statistics for logging, CSV output and plotting.
package metrics

import (
	"log/slog"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// CoverageThreshold is the trail level above which a cell counts as covered.
const CoverageThreshold = 0.1

// Sample is the raw data a Stats is computed from.
type Sample struct {
	Step        int
	Trail       []float32
	Density     []float32
	Nutrient    []float32
	CarriedMean float64
}

// Stats holds aggregated statistics for one step.
type Stats struct {
	Step             int     `csv:"step" json:"step"`
	TrailMean        float64 `csv:"trail_mean" json:"trail_mean"`
	TrailStd         float64 `csv:"trail_std" json:"trail_std"`
	TrailMax         float64 `csv:"trail_max" json:"trail_max"`
	Coverage         float64 `csv:"coverage" json:"coverage"`
	OccupiedCells    int     `csv:"occupied_cells" json:"occupied_cells"`
	MaxAgentsPerCell int     `csv:"max_agents_per_cell" json:"max_agents_per_cell"`
	NutrientTotal    float64 `csv:"nutrient_total" json:"nutrient_total"`
	CarriedMean      float64 `csv:"carried_mean" json:"carried_mean"`
}

// Collect computes Stats from a sample.
func Collect(s Sample) Stats {
	out := Stats{Step: s.Step, CarriedMean: s.CarriedMean}

	if len(s.Trail) > 0 {
		trail := widen(s.Trail)
		out.TrailMean, out.TrailStd = stat.PopMeanStdDev(trail, nil)
		out.TrailMax = floats.Max(trail)

		covered := 0
		for _, v := range trail {
			if v > CoverageThreshold {
				covered++
			}
		}
		out.Coverage = float64(covered) / float64(len(trail))
	}

	for _, d := range s.Density {
		if d > 0 {
			out.OccupiedCells++
		}
		if int(d) > out.MaxAgentsPerCell {
			out.MaxAgentsPerCell = int(d)
		}
	}

	if len(s.Nutrient) > 0 {
		out.NutrientTotal = floats.Sum(widen(s.Nutrient))
	}

	return out
}

func widen(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

// LogValue implements slog.LogValuer for structured logging.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("step", s.Step),
		slog.Float64("trail_mean", s.TrailMean),
		slog.Float64("trail_std", s.TrailStd),
		slog.Float64("trail_max", s.TrailMax),
		slog.Float64("coverage", s.Coverage),
		slog.Int("occupied_cells", s.OccupiedCells),
		slog.Int("max_agents_per_cell", s.MaxAgentsPerCell),
		slog.Float64("nutrient_total", s.NutrientTotal),
		slog.Float64("carried_mean", s.CarriedMean),
	)
}
