// Package optim searches parameter grids for the configuration that
// scores best on a statistics column.
package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/physarum/internal/metrics"
	"github.com/san-kum/physarum/internal/sim"
)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	steps      int
	maximize   bool
}

// NewGridSearch searches every combination of ranges[i] for params[i],
// running each for steps steps.
func NewGridSearch(params []string, ranges [][]float64, steps int, maximize bool) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("grid search: %d params but %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("grid search: empty range for %s", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges, steps: steps, maximize: maximize}, nil
}

// Trial is one evaluated grid point.
type Trial struct {
	Params map[string]float64
	Score  float64
	Err    error
}

// Size returns the number of grid points.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search evaluates every grid point and returns the best one along with
// all trials in grid order. Points whose build or run fails are recorded
// with their error and never win.
func (g *GridSearch) Search(
	ctx context.Context,
	build func(params map[string]float64) (*sim.Engine, error),
	column string,
) (Trial, []Trial, error) {
	if _, err := metrics.Column(nil, column); err != nil {
		return Trial{}, nil, err
	}

	best := Trial{Score: math.Inf(1)}
	if g.maximize {
		best.Score = math.Inf(-1)
	}
	trials := make([]Trial, 0, g.Size())

	err := g.searchRecursive(ctx, 0, make(map[string]float64), func(current map[string]float64) {
		t := evaluate(ctx, g.steps, current, build, column)
		trials = append(trials, t)
		if t.Err == nil && g.better(t.Score, best.Score) {
			best = t
		}
	})
	if err != nil {
		return best, trials, err
	}
	if best.Params == nil {
		return best, trials, fmt.Errorf("grid search: no grid point completed")
	}
	return best, trials, nil
}

func (g *GridSearch) better(a, b float64) bool {
	if g.maximize {
		return a > b
	}
	return a < b
}

// evaluate builds an engine for current, runs it and scores its final
// stats. column must already be known to metrics.Column.
func evaluate(
	ctx context.Context,
	steps int,
	current map[string]float64,
	build func(map[string]float64) (*sim.Engine, error),
	column string,
) Trial {
	t := Trial{Params: current}
	e, err := build(current)
	if err != nil {
		t.Err = err
		return t
	}
	if err := e.Run(ctx, steps, nil); err != nil {
		t.Err = err
		return t
	}
	values, _ := metrics.Column([]metrics.Stats{e.Stats()}, column)
	t.Score = values[0]
	return t
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	visit func(map[string]float64),
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		visit(current)
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, visit); err != nil {
			return err
		}
	}
	return nil
}
