package optim

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/san-kum/physarum/internal/metrics"
	"github.com/san-kum/physarum/internal/params"
	"github.com/san-kum/physarum/internal/sim"
	"github.com/san-kum/physarum/internal/slime"
)

// failedScore is what a failed evaluation costs the minimiser.
const failedScore = math.MaxFloat64 / 4

// Refiner polishes a starting point with CMA-ES. Each parameter is searched
// in its catalog range, normalised to [0, 1].
type Refiner struct {
	specs       []params.Spec
	steps       int
	evaluations int
	maximize    bool
}

func NewRefiner(names []string, steps, evaluations int, maximize bool) (*Refiner, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("refine: no parameters")
	}
	if evaluations < 1 {
		return nil, fmt.Errorf("refine: evaluations must be positive, got %d", evaluations)
	}
	specs := make([]params.Spec, len(names))
	for i, name := range names {
		spec, ok := params.Lookup(name)
		if !ok {
			return nil, &slime.UnknownParameterError{Name: name}
		}
		specs[i] = spec
	}
	return &Refiner{specs: specs, steps: steps, evaluations: evaluations, maximize: maximize}, nil
}

func (r *Refiner) normalize(start map[string]float64) []float64 {
	x := make([]float64, len(r.specs))
	for i, s := range r.specs {
		v, ok := start[s.Name]
		if !ok {
			v = s.Default
		}
		x[i] = (s.Clamp(v) - s.Min) / (s.Max - s.Min)
	}
	return x
}

func (r *Refiner) denormalize(x []float64) map[string]float64 {
	out := make(map[string]float64, len(r.specs))
	for i, s := range r.specs {
		out[s.Name] = s.Clamp(s.Min + x[i]*(s.Max-s.Min))
	}
	return out
}

// Refine evaluates start, then spends the evaluation budget searching
// around it. It returns the best trial seen and how many evaluations ran.
// The result is never worse than start.
func (r *Refiner) Refine(
	ctx context.Context,
	start map[string]float64,
	build func(params map[string]float64) (*sim.Engine, error),
	column string,
) (Trial, int, error) {
	if _, err := metrics.Column(nil, column); err != nil {
		return Trial{}, 0, err
	}

	var (
		best  Trial
		found bool
		evals int
	)
	cost := func(p map[string]float64) float64 {
		evals++
		t := evaluate(ctx, r.steps, p, build, column)
		if t.Err != nil {
			return failedScore
		}
		if !found || (r.maximize && t.Score > best.Score) || (!r.maximize && t.Score < best.Score) {
			best, found = t, true
		}
		if r.maximize {
			return -t.Score
		}
		return t.Score
	}

	initX := r.normalize(start)
	cost(r.denormalize(initX))

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			if ctx.Err() != nil {
				return failedScore
			}
			return cost(r.denormalize(x))
		},
	}
	settings := &optimize.Settings{
		FuncEvaluations: r.evaluations,
		Concurrent:      1,
	}
	method := &optimize.CmaEsChol{
		InitStepSize: 0.1,
		Population:   4 + int(3*math.Log(float64(len(r.specs)))),
	}

	res, err := optimize.Minimize(problem, initX, settings, method)
	if cerr := ctx.Err(); cerr != nil {
		return best, evals, cerr
	}
	if err := minimizeErr(res, err); err != nil {
		return best, evals, fmt.Errorf("refine: %w", err)
	}
	if !found {
		return best, evals, fmt.Errorf("refine: no evaluation completed")
	}
	return best, evals, nil
}

// minimizeErr drops the error Minimize reports when it stops on a budget.
// The best trial is tracked in cost, so running out of budget is success.
func minimizeErr(res *optimize.Result, err error) error {
	if err == nil || res == nil {
		return err
	}
	switch res.Status {
	case optimize.FunctionEvaluationLimit, optimize.IterationLimit, optimize.RuntimeLimit:
		return nil
	}
	return err
}
