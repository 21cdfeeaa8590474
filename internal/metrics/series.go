package metrics

import (
	"fmt"
	"sort"
)

// columns maps each plottable Stats field to its accessor.
var columns = map[string]func(Stats) float64{
	"trail_mean":          func(s Stats) float64 { return s.TrailMean },
	"trail_std":           func(s Stats) float64 { return s.TrailStd },
	"trail_max":           func(s Stats) float64 { return s.TrailMax },
	"coverage":            func(s Stats) float64 { return s.Coverage },
	"occupied_cells":      func(s Stats) float64 { return float64(s.OccupiedCells) },
	"max_agents_per_cell": func(s Stats) float64 { return float64(s.MaxAgentsPerCell) },
	"nutrient_total":      func(s Stats) float64 { return s.NutrientTotal },
	"carried_mean":        func(s Stats) float64 { return s.CarriedMean },
}

// Columns returns the names accepted by Series.Column, sorted.
func Columns() []string {
	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Series is a bounded history of Stats. A capacity of 0 keeps everything.
type Series struct {
	capacity int
	items    []Stats
}

func NewSeries(capacity int) *Series {
	return &Series{capacity: capacity}
}

// Add appends s, dropping the oldest entry when full.
func (r *Series) Add(s Stats) {
	if r.capacity > 0 && len(r.items) >= r.capacity {
		copy(r.items, r.items[1:])
		r.items = r.items[:len(r.items)-1]
	}
	r.items = append(r.items, s)
}

func (r *Series) Len() int { return len(r.items) }

// Items returns the recorded stats, oldest first.
func (r *Series) Items() []Stats { return r.items }

// Last returns the most recent entry.
func (r *Series) Last() (Stats, bool) {
	if len(r.items) == 0 {
		return Stats{}, false
	}
	return r.items[len(r.items)-1], true
}

func (r *Series) Reset() { r.items = r.items[:0] }

// Column extracts one field across the series.
func (r *Series) Column(name string) ([]float64, error) {
	return Column(r.items, name)
}

// Column extracts one field from stats.
func Column(stats []Stats, name string) ([]float64, error) {
	get, ok := columns[name]
	if !ok {
		return nil, fmt.Errorf("unknown column: %s (available: %v)", name, Columns())
	}
	out := make([]float64, len(stats))
	for i, s := range stats {
		out[i] = get(s)
	}
	return out, nil
}
